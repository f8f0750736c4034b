package repository_test

import (
	"context"
	"errors"
	"testing"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/repository"
)

func TestOrderQueryRepositoryGetByIDIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewOrderQueryRepository(db)

	orderID := seedOrder(t, db, 250)

	for i, entry := range []struct {
		count   int
		message string
	}{
		{10, "Transferred 10/250 members. Failed: 0"},
		{20, "Transferred 20/250 members. Failed: 0"},
	} {
		err := db.Exec(`
INSERT INTO order_progress (order_id, count, message, created_at)
VALUES (?, ?, ?, NOW() + (? * INTERVAL '1 millisecond'))
`, orderID, entry.count, entry.message, i).Error
		if err != nil {
			t.Fatalf("failed to seed progress: %v", err)
		}
	}

	order, entries, err := repo.GetByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if order.ID != orderID {
		t.Fatalf("order id = %s, want %s", order.ID, orderID)
	}
	if order.TargetCount != 250 {
		t.Fatalf("target count = %d, want 250", order.TargetCount)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", order.Status)
	}
	if len(entries) != 2 {
		t.Fatalf("progress entries = %d, want 2", len(entries))
	}
	if entries[0].Count != 10 || entries[1].Count != 20 {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestOrderQueryRepositoryCapsProgressIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewOrderQueryRepository(db)

	orderID := seedOrder(t, db, 1000)

	for i := 1; i <= 60; i++ {
		err := db.Exec(`
INSERT INTO order_progress (order_id, count, message, created_at)
VALUES (?, ?, ?, NOW() + (? * INTERVAL '1 millisecond'))
`, orderID, i*10, "Transferred members", i).Error
		if err != nil {
			t.Fatalf("failed to seed progress: %v", err)
		}
	}

	_, entries, err := repo.GetByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if len(entries) != 50 {
		t.Fatalf("progress entries = %d, want the 50 most recent", len(entries))
	}
	if entries[0].Count != 110 {
		t.Fatalf("oldest retained count = %d, want 110", entries[0].Count)
	}
	if entries[len(entries)-1].Count != 600 {
		t.Fatalf("newest count = %d, want 600", entries[len(entries)-1].Count)
	}
}

func TestOrderQueryRepositoryNotFoundIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewOrderQueryRepository(db)

	_, _, err := repo.GetByID(context.Background(), "00000000-0000-4000-8000-000000000000")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

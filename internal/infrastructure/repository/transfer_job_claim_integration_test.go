package repository_test

import (
	"context"
	"testing"
	"time"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/repository"
)

func TestTransferJobRepositoryClaimAndLifecycleIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewTransferJobRepository(db)

	orderID := seedOrder(t, db, 100)

	jobID, err := repo.Enqueue(context.Background(), orderID, "https://t.me/sourcegroup", "https://t.me/targetgroup", 100)
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	status, err := repo.OrderStatus(context.Background(), orderID)
	if err != nil {
		t.Fatalf("order status failed: %v", err)
	}
	if status != domain.OrderStatusProcessing {
		t.Fatalf("order status = %s, want PROCESSING after enqueue", status)
	}

	claimed, err := repo.ClaimNext(context.Background(), 30*time.Second)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed == nil {
		t.Fatal("expected claimed job")
	}
	if claimed.ID != jobID {
		t.Fatalf("unexpected job id: %s", claimed.ID)
	}
	if claimed.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1 after first claim", claimed.Attempts)
	}

	second, err := repo.ClaimNext(context.Background(), 30*time.Second)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if second != nil {
		t.Fatal("a leased job must not be claimable")
	}

	if err := repo.Heartbeat(context.Background(), claimed.ID, 30*time.Second); err != nil {
		t.Fatalf("heartbeat failed: %v", err)
	}

	final := domain.Snapshot{Total: 100, Completed: 95, Failed: 3, Skipped: 2, Status: domain.StatusCompleted}
	if err := repo.Complete(context.Background(), claimed.ID, final); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	status, err = repo.OrderStatus(context.Background(), orderID)
	if err != nil {
		t.Fatalf("order status failed: %v", err)
	}
	if status != domain.OrderStatusCompleted {
		t.Fatalf("order status = %s, want COMPLETED", status)
	}
}

func TestTransferJobRepositoryExpiredLeaseReclaimIntegration(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewTransferJobRepository(db)

	orderID := seedOrder(t, db, 50)
	if _, err := repo.Enqueue(context.Background(), orderID, "https://t.me/sourcegroup", "https://t.me/targetgroup", 50); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	claimed, err := repo.ClaimNext(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed == nil {
		t.Fatal("expected claimed job")
	}

	// Let the lease lapse, simulating a dead worker.
	time.Sleep(1100 * time.Millisecond)

	reclaimed, err := repo.ClaimNext(context.Background(), 30*time.Second)
	if err != nil {
		t.Fatalf("reclaim failed: %v", err)
	}
	if reclaimed == nil {
		t.Fatal("expected expired lease to be claimable")
	}
	if reclaimed.ID != claimed.ID {
		t.Fatalf("reclaimed job id = %s, want %s", reclaimed.ID, claimed.ID)
	}
	if reclaimed.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2 after reclaim", reclaimed.Attempts)
	}
}

package transfer_test

import (
	"context"
	"errors"
	"testing"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

const testOrderID = "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e"

type fakeOrderQueryRepo struct {
	order     *domain.Order
	entries   []domain.ProgressEntry
	returnErr error
}

func (f *fakeOrderQueryRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, []domain.ProgressEntry, error) {
	if f.returnErr != nil {
		return nil, nil, f.returnErr
	}
	return f.order, f.entries, nil
}

func TestGetOrderSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeOrderQueryRepo{
		order: &domain.Order{
			ID:              testOrderID,
			SourceGroupLink: "https://t.me/sourcegroup",
			TargetGroupLink: "https://t.me/targetgroup",
			TargetCount:     5000,
			CurrentCount:    1200,
			Status:          domain.OrderStatusProcessing,
		},
		entries: []domain.ProgressEntry{
			{Count: 1200, Message: "Transferred 1200/5000 members. Failed: 3"},
		},
	}

	uc := app.NewGetOrder(repo)

	out, err := uc.Execute(context.Background(), app.GetOrderInput{ID: testOrderID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.ID != testOrderID {
		t.Fatalf("unexpected id: %s", out.ID)
	}
	if out.CurrentCount != 1200 {
		t.Fatalf("unexpected current count: %d", out.CurrentCount)
	}
	if len(out.Progress) != 1 {
		t.Fatalf("expected 1 progress entry, got %d", len(out.Progress))
	}
	if out.Status != string(domain.OrderStatusProcessing) {
		t.Fatalf("unexpected status: %s", out.Status)
	}
}

func TestGetOrderInvalidID(t *testing.T) {
	t.Parallel()

	uc := app.NewGetOrder(&fakeOrderQueryRepo{})

	_, err := uc.Execute(context.Background(), app.GetOrderInput{ID: "not-a-uuid"})
	if !errors.Is(err, app.ErrInvalidOrderID) {
		t.Fatalf("expected ErrInvalidOrderID, got %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	t.Parallel()

	uc := app.NewGetOrder(&fakeOrderQueryRepo{returnErr: domain.ErrOrderNotFound})

	_, err := uc.Execute(context.Background(), app.GetOrderInput{ID: testOrderID})
	if !errors.Is(err, app.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrderRepositoryError(t *testing.T) {
	t.Parallel()

	uc := app.NewGetOrder(&fakeOrderQueryRepo{returnErr: errors.New("db down")})

	_, err := uc.Execute(context.Background(), app.GetOrderInput{ID: testOrderID})
	if !errors.Is(err, app.ErrGetOrder) {
		t.Fatalf("expected ErrGetOrder, got %v", err)
	}
}

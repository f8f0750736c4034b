package transfer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

type CancelOrderInput struct {
	ID string
}

type CancelOrderOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CancelOrder interface {
	Execute(ctx context.Context, in CancelOrderInput) (CancelOrderOutput, error)
}

type orderCanceller interface {
	Cancel(ctx context.Context, orderID string) error
}

type cancelOrder struct {
	repo orderCanceller
}

func NewCancelOrder(repo orderCanceller) CancelOrder {
	return &cancelOrder{repo: repo}
}

// Execute moves a PENDING or PROCESSING order to CANCELLED. A running
// transfer notices the new status at its next batch boundary and stops
// before starting another batch.
func (uc *cancelOrder) Execute(ctx context.Context, in CancelOrderInput) (CancelOrderOutput, error) {
	if !orderIDPattern.MatchString(in.ID) {
		return CancelOrderOutput{}, ErrInvalidOrderID
	}

	if err := uc.repo.Cancel(ctx, in.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return CancelOrderOutput{}, ErrOrderNotFound
		case errors.Is(err, domain.ErrOrderNotCancellable):
			return CancelOrderOutput{}, ErrOrderNotCancellable
		}
		return CancelOrderOutput{}, fmt.Errorf("cancel order: %w", err)
	}

	return CancelOrderOutput{
		ID:     in.ID,
		Status: string(domain.OrderStatusCancelled),
	}, nil
}

package transfer

import "context"

type TransferJobRepository interface {
	Enqueue(ctx context.Context, orderID, sourceLink, targetLink string, memberLimit int) (string, error)
}

type OrderQueryRepository interface {
	GetByID(ctx context.Context, orderID string) (*Order, []ProgressEntry, error)
}

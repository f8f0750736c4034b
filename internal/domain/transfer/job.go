package transfer

import "time"

// OrderStatus is the lifecycle state of a purchased transfer order. The
// engine never writes it directly; the worker maps run outcomes onto it.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Order is the persisted record of a member-transfer purchase. CurrentCount
// mirrors the completed counter of the latest run.
type Order struct {
	ID              string
	UserID          string
	SourceGroupLink string
	TargetGroupLink string
	TargetCount     int
	CurrentCount    int
	Status          OrderStatus
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// ProgressEntry is one persisted progress-log row for an order.
type ProgressEntry struct {
	Count     int
	Message   string
	CreatedAt time.Time
}

// TransferJob is one claimed unit of transfer work. A job is retried up to
// MaxAttempts times on transient failures (connection loss, lease expiry);
// engine-level failures finish the job and the order immediately.
type TransferJob struct {
	ID              string
	OrderID         string
	SourceGroupLink string
	TargetGroupLink string
	MemberLimit     int
	Attempts        int
	MaxAttempts     int
}

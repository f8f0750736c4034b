package transfer

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

// Member limits accepted for one transfer request, matching the order form.
const (
	MinMemberLimit = 1
	MaxMemberLimit = 100000
)

type StartTransferInput struct {
	OrderID         string
	SourceGroupLink string
	TargetGroupLink string
	MemberLimit     int
}

type StartTransferOutput struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type StartTransfer interface {
	Execute(ctx context.Context, in StartTransferInput) (StartTransferOutput, error)
}

type transferJobEnqueuer interface {
	Enqueue(ctx context.Context, orderID, sourceLink, targetLink string, memberLimit int) (string, error)
}

type startTransfer struct {
	jobs transferJobEnqueuer
}

func NewStartTransfer(jobs transferJobEnqueuer) StartTransfer {
	return &startTransfer{jobs: jobs}
}

// Execute validates the request and enqueues a transfer job. Enqueueing
// atomically moves a PENDING order to PROCESSING; orders in any other state
// are rejected.
func (uc *startTransfer) Execute(ctx context.Context, in StartTransferInput) (StartTransferOutput, error) {
	if !orderIDPattern.MatchString(in.OrderID) {
		return StartTransferOutput{}, ErrInvalidOrderID
	}
	if _, err := domain.ParseGroupLink(in.SourceGroupLink); err != nil {
		return StartTransferOutput{}, fmt.Errorf("%w: source link", ErrInvalidGroupLink)
	}
	if _, err := domain.ParseGroupLink(in.TargetGroupLink); err != nil {
		return StartTransferOutput{}, fmt.Errorf("%w: target link", ErrInvalidGroupLink)
	}
	if in.SourceGroupLink == in.TargetGroupLink {
		return StartTransferOutput{}, ErrSameGroup
	}
	if in.MemberLimit < MinMemberLimit || in.MemberLimit > MaxMemberLimit {
		return StartTransferOutput{}, ErrInvalidMemberLimit
	}

	jobID, err := uc.jobs.Enqueue(ctx, in.OrderID, in.SourceGroupLink, in.TargetGroupLink, in.MemberLimit)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrOrderNotPending) {
			return StartTransferOutput{}, ErrOrderNotPending
		}
		return StartTransferOutput{}, fmt.Errorf("%w: %v", ErrEnqueueTransfer, err)
	}

	return StartTransferOutput{
		JobID:  jobID,
		Status: "queued",
	}, nil
}

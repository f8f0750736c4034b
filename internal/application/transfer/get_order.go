package transfer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

var orderIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

type GetOrderInput struct {
	ID string
}

type GetOrderProgressOutput struct {
	Count     int       `json:"count"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type GetOrderOutput struct {
	ID              string                   `json:"id"`
	SourceGroupLink string                   `json:"source_group_link"`
	TargetGroupLink string                   `json:"target_group_link"`
	TargetCount     int                      `json:"target_count"`
	CurrentCount    int                      `json:"current_count"`
	Status          string                   `json:"status"`
	StartedAt       *time.Time               `json:"started_at,omitempty"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`
	Progress        []GetOrderProgressOutput `json:"progress"`
}

type GetOrder interface {
	Execute(ctx context.Context, in GetOrderInput) (GetOrderOutput, error)
}

type getOrder struct {
	repo domain.OrderQueryRepository
}

func NewGetOrder(repo domain.OrderQueryRepository) GetOrder {
	return &getOrder{repo: repo}
}

func (uc *getOrder) Execute(ctx context.Context, in GetOrderInput) (GetOrderOutput, error) {
	if !orderIDPattern.MatchString(in.ID) {
		return GetOrderOutput{}, ErrInvalidOrderID
	}

	order, entries, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return GetOrderOutput{}, ErrOrderNotFound
		}
		return GetOrderOutput{}, fmt.Errorf("%w: %v", ErrGetOrder, err)
	}

	progress := make([]GetOrderProgressOutput, 0, len(entries))
	for _, entry := range entries {
		progress = append(progress, GetOrderProgressOutput{
			Count:     entry.Count,
			Message:   entry.Message,
			CreatedAt: entry.CreatedAt,
		})
	}

	return GetOrderOutput{
		ID:              order.ID,
		SourceGroupLink: order.SourceGroupLink,
		TargetGroupLink: order.TargetGroupLink,
		TargetCount:     order.TargetCount,
		CurrentCount:    order.CurrentCount,
		Status:          string(order.Status),
		StartedAt:       order.StartedAt,
		CompletedAt:     order.CompletedAt,
		Progress:        progress,
	}, nil
}

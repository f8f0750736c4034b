package transfer

import "errors"

var (
	ErrInvalidOrderID      = errors.New("invalid order id")
	ErrInvalidGroupLink    = errors.New("invalid telegram group link")
	ErrSameGroup           = errors.New("source and target groups must be different")
	ErrInvalidMemberLimit  = errors.New("member limit out of range")
	ErrOrderNotPending     = errors.New("order not found or not in pending status")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
	ErrEnqueueTransfer     = errors.New("failed to enqueue transfer job")
	ErrGetOrder            = errors.New("failed to get order")
	ErrGroupValidation     = errors.New("group validation failed")
)

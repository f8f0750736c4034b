package transfer

import "errors"

var (
	// ErrInvalidReference marks a group link that is not a t.me or
	// telegram.me URL. Not retryable; no network call is made for it.
	ErrInvalidReference = errors.New("invalid group reference")

	// ErrGroupNotFound means the reference parsed but the entity could not
	// be loaded.
	ErrGroupNotFound = errors.New("group not found")

	// ErrAccessDenied means the client cannot read membership or admin data
	// for the group.
	ErrAccessDenied = errors.New("group access denied")

	// ErrEmptySource means the source group yielded zero members. A transfer
	// with nothing to transfer is an error, not a silent success.
	ErrEmptySource = errors.New("no members found in source group")

	// ErrEnumerationFailed wraps a mid-enumeration break. Counts accumulated
	// before the failure remain valid.
	ErrEnumerationFailed = errors.New("member enumeration failed")

	// ErrConnectionFailed means the messaging client could not connect at
	// all; nothing was attempted.
	ErrConnectionFailed = errors.New("telegram connection failed")

	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotPending     = errors.New("order is not pending")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
)

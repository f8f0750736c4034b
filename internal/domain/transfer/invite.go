package transfer

import "time"

// InviteOutcome is the kind tag of an InviteResult. Switching over it keeps
// result handling exhaustive instead of comparing error strings.
type InviteOutcome int

const (
	// OutcomeInvited means the member was added to the target group.
	OutcomeInvited InviteOutcome = iota
	// OutcomeSkipped means no invite was attempted (bots, existing members).
	OutcomeSkipped
	// OutcomeFailed means the invite was attempted and permanently rejected.
	OutcomeFailed
	// OutcomeThrottled means flood control demanded a wait; the caller owns
	// the backoff and the single retry.
	OutcomeThrottled
)

// InviteResult is the outcome of one single-shot invite attempt. The inviter
// never retries internally; throttling is surfaced so the engine can back
// off with full knowledge of the run state.
type InviteResult struct {
	Outcome    InviteOutcome
	Reason     string
	RetryAfter time.Duration
}

func Invited() InviteResult {
	return InviteResult{Outcome: OutcomeInvited}
}

func Skipped(reason string) InviteResult {
	return InviteResult{Outcome: OutcomeSkipped, Reason: reason}
}

func FailedInvite(reason string) InviteResult {
	return InviteResult{Outcome: OutcomeFailed, Reason: reason}
}

func Throttled(retryAfter time.Duration) InviteResult {
	return InviteResult{Outcome: OutcomeThrottled, RetryAfter: retryAfter}
}

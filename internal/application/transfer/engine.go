package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

type groupResolver interface {
	Resolve(ctx context.Context, link string) (domain.GroupHandle, error)
}

type memberEnumerator interface {
	// Enumerate lists up to limit members of the source group, most recent
	// participants first. A fresh call re-enumerates from the start; there
	// is no resumption token.
	Enumerate(ctx context.Context, source domain.GroupHandle, limit int) ([]domain.Member, error)
}

type memberInviter interface {
	// Invite is single-shot: no internal retry. Throttling comes back as a
	// distinct outcome so the engine owns the backoff.
	Invite(ctx context.Context, target domain.GroupHandle, member domain.Member) domain.InviteResult
}

type progressSink interface {
	AppendSnapshot(ctx context.Context, orderID string, completed int, message string) error
	UpdateCurrentCount(ctx context.Context, orderID string, completed int) error
}

// ProgressFunc receives a snapshot at each emission point. It is invoked
// synchronously from the run loop and must not block for unbounded time.
type ProgressFunc func(domain.Snapshot)

type EngineConfig struct {
	BatchSize   int
	InviteDelay time.Duration
	BatchDelay  time.Duration
	MaxErrors   int
}

// DefaultEngineConfig is the production pacing: ten invites per batch, a
// tenth of a second between invites, two seconds between batches. Tuned
// against Telegram's flood control, not for throughput.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BatchSize:   10,
		InviteDelay: 100 * time.Millisecond,
		BatchDelay:  2 * time.Second,
		MaxErrors:   domain.DefaultMaxErrors,
	}
}

// RunParams identifies one transfer run.
type RunParams struct {
	OrderID     string
	SourceLink  string
	TargetLink  string
	MemberLimit int
}

// Engine drives one member transfer: resolve both groups, enumerate the
// source, invite in fixed-size batches with pacing delays, and stream
// progress to the sink and the caller. One Engine serves one run; members
// are processed strictly in order with no internal parallelism, because
// parallel invites would trip flood control immediately.
type Engine struct {
	resolver   groupResolver
	enumerator memberEnumerator
	inviter    memberInviter
	sink       progressSink
	cfg        EngineConfig

	runID string
	gate  pauseGate
	log   zerolog.Logger
}

func NewEngine(resolver groupResolver, enumerator memberEnumerator, inviter memberInviter, sink progressSink, cfg EngineConfig, logger zerolog.Logger) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.InviteDelay < 0 {
		cfg.InviteDelay = 0
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = domain.DefaultMaxErrors
	}

	runID := uuid.NewString()
	return &Engine{
		resolver:   resolver,
		enumerator: enumerator,
		inviter:    inviter,
		sink:       sink,
		cfg:        cfg,
		runID:      runID,
		log:        logger.With().Str("run_id", runID).Logger(),
	}
}

// RunID identifies this engine's single run in logs and snapshots.
func (e *Engine) RunID() string { return e.runID }

// Pause suspends the run at the next batch boundary. Resume releases it.
func (e *Engine) Pause()  { e.gate.pause() }
func (e *Engine) Resume() { e.gate.resume() }

// Run executes the transfer. Per-member failures are absorbed into the
// aggregate and never abort the run; only resolution, enumeration, and
// empty-source conditions do, and then the partial progress is persisted
// before the error is returned. Cancellation via ctx stops the loop at the
// next batch boundary, leaving the status as last observed.
func (e *Engine) Run(ctx context.Context, params RunParams, onProgress ProgressFunc) (domain.Snapshot, error) {
	progress := domain.NewProgress(e.cfg.MaxErrors)
	e.emit(ctx, params.OrderID, progress, onProgress)

	source, err := e.resolver.Resolve(ctx, params.SourceLink)
	if err != nil {
		return e.fail(ctx, params.OrderID, progress, onProgress, fmt.Errorf("resolve source group: %w", err))
	}
	target, err := e.resolver.Resolve(ctx, params.TargetLink)
	if err != nil {
		return e.fail(ctx, params.OrderID, progress, onProgress, fmt.Errorf("resolve target group: %w", err))
	}

	if params.MemberLimit <= 0 {
		return e.fail(ctx, params.OrderID, progress, onProgress, domain.ErrEmptySource)
	}

	members, err := e.enumerator.Enumerate(ctx, source, params.MemberLimit)
	if err != nil {
		return e.fail(ctx, params.OrderID, progress, onProgress, fmt.Errorf("%w: %v", domain.ErrEnumerationFailed, err))
	}
	if len(members) == 0 {
		return e.fail(ctx, params.OrderID, progress, onProgress, domain.ErrEmptySource)
	}

	total := min(len(members), params.MemberLimit)
	progress.SetTotal(total)
	progress.Begin()
	e.emit(ctx, params.OrderID, progress, onProgress)

	e.log.Info().
		Str("order_id", params.OrderID).
		Str("source", source.Title).
		Str("target", target.Title).
		Int("total", total).
		Msg("transfer started")

	var limiter *rate.Limiter
	if e.cfg.InviteDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(e.cfg.InviteDelay), 1)
	}

	for start := 0; start < total; start += e.cfg.BatchSize {
		if err := e.waitResume(ctx, params.OrderID, progress, onProgress); err != nil {
			return e.cancelled(ctx, params.OrderID, progress, onProgress, err)
		}
		if ctx.Err() != nil {
			return e.cancelled(ctx, params.OrderID, progress, onProgress, ctx.Err())
		}

		end := min(start+e.cfg.BatchSize, total)
		progress.BeginBatch()

		for _, member := range members[start:end] {
			if member.Bot {
				progress.RecordSkipped()
				continue
			}

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return e.cancelled(ctx, params.OrderID, progress, onProgress, err)
				}
			}

			result := e.inviter.Invite(ctx, target, member)
			if result.Outcome == domain.OutcomeThrottled {
				e.log.Warn().
					Int64("member_id", member.ID).
					Dur("retry_after", result.RetryAfter).
					Msg("flood control, backing off")
				if !sleepWithContext(ctx, result.RetryAfter) {
					return e.cancelled(ctx, params.OrderID, progress, onProgress, ctx.Err())
				}
				result = e.inviter.Invite(ctx, target, member)
				if result.Outcome == domain.OutcomeThrottled {
					result = domain.FailedInvite("persistent rate limit")
				}
			}

			switch result.Outcome {
			case domain.OutcomeInvited:
				progress.RecordInvited()
			case domain.OutcomeSkipped:
				progress.RecordSkipped()
			case domain.OutcomeFailed:
				progress.RecordFailure(member.ID, result.Reason)
			case domain.OutcomeThrottled:
				// Unreachable: throttling is resolved above.
			}
		}

		e.emit(ctx, params.OrderID, progress, onProgress)

		if end < total {
			if !sleepWithContext(ctx, e.cfg.BatchDelay) {
				return e.cancelled(ctx, params.OrderID, progress, onProgress, ctx.Err())
			}
		}
	}

	progress.MarkCompleted()
	snap := e.emit(ctx, params.OrderID, progress, onProgress)
	e.log.Info().
		Str("order_id", params.OrderID).
		Int("completed", snap.Completed).
		Int("failed", snap.Failed).
		Int("skipped", snap.Skipped).
		Msg("transfer finished")
	return snap, nil
}

// emit hands the current snapshot to the callback and the sink. Sink
// failures are logged, not retried: the engine does not own durability of
// the progress log.
func (e *Engine) emit(ctx context.Context, orderID string, progress *domain.Progress, onProgress ProgressFunc) domain.Snapshot {
	snap := progress.Snapshot()
	if onProgress != nil {
		onProgress(snap)
	}

	message := fmt.Sprintf("Transferred %d/%d members. Failed: %d", snap.Completed, snap.Total, snap.Failed)
	if err := e.sink.AppendSnapshot(ctx, orderID, snap.Completed, message); err != nil {
		e.log.Error().Err(err).Str("order_id", orderID).Msg("append progress snapshot failed")
	}
	if err := e.sink.UpdateCurrentCount(ctx, orderID, snap.Completed); err != nil {
		e.log.Error().Err(err).Str("order_id", orderID).Msg("update current count failed")
	}
	return snap
}

func (e *Engine) fail(ctx context.Context, orderID string, progress *domain.Progress, onProgress ProgressFunc, err error) (domain.Snapshot, error) {
	progress.RecordSystemError(err.Error())
	progress.MarkFailed()
	snap := e.emit(ctx, orderID, progress, onProgress)
	e.log.Error().Err(err).Str("order_id", orderID).Msg("transfer failed")
	return snap, err
}

// cancelled persists the partial progress without forcing a terminal status;
// the caller decides what the order becomes.
func (e *Engine) cancelled(ctx context.Context, orderID string, progress *domain.Progress, onProgress ProgressFunc, err error) (domain.Snapshot, error) {
	snap := e.emit(context.WithoutCancel(ctx), orderID, progress, onProgress)
	e.log.Info().Str("order_id", orderID).Int("completed", snap.Completed).Msg("transfer cancelled")
	return snap, err
}

func (e *Engine) waitResume(ctx context.Context, orderID string, progress *domain.Progress, onProgress ProgressFunc) error {
	ch := e.gate.waitChan()
	if ch == nil {
		return nil
	}

	progress.Pause()
	e.emit(ctx, orderID, progress, onProgress)
	e.log.Info().Str("order_id", orderID).Msg("transfer paused")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
	}

	progress.Resume()
	e.emit(ctx, orderID, progress, onProgress)
	return nil
}

// pauseGate blocks the run loop at batch boundaries while paused. The zero
// value is an open gate.
type pauseGate struct {
	mu       sync.Mutex
	resumeCh chan struct{}
}

func (g *pauseGate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resumeCh == nil {
		g.resumeCh = make(chan struct{})
	}
}

func (g *pauseGate) resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resumeCh != nil {
		close(g.resumeCh)
		g.resumeCh = nil
	}
}

// waitChan returns nil when the gate is open, or a channel closed on resume.
func (g *pauseGate) waitChan() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resumeCh == nil {
		return nil
	}
	return g.resumeCh
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

// TransferClient is one exclusively-owned messaging connection. The worker
// connects one per run and closes it on every exit path; runs never share a
// connection.
type TransferClient interface {
	Resolve(ctx context.Context, link string) (domain.GroupHandle, error)
	ValidateAccess(ctx context.Context, link string, intent domain.AccessIntent) domain.AccessCheck
	Enumerate(ctx context.Context, source domain.GroupHandle, limit int) ([]domain.Member, error)
	Invite(ctx context.Context, target domain.GroupHandle, member domain.Member) domain.InviteResult
	Close(ctx context.Context) error
}

// ClientFactory dials a fresh messaging connection for one run.
type ClientFactory interface {
	Connect(ctx context.Context) (TransferClient, error)
}

type workerJobRepo interface {
	ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.TransferJob, error)
	Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error
	Complete(ctx context.Context, jobID string, final domain.Snapshot) error
	Requeue(ctx context.Context, jobID string, reason string) error
	Fail(ctx context.Context, jobID string, reason string) error
	MarkCancelled(ctx context.Context, jobID string) error
	OrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
}

type notifier interface {
	NotifyOrder(ctx context.Context, orderID, title, message, kind string) error
}

const (
	notifySuccess = "SUCCESS"
	notifyError   = "ERROR"
)

type WorkerConfig struct {
	Workers           int
	PollInterval      time.Duration
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	Engine            EngineConfig
}

// Worker claims transfer jobs and runs one engine per claimed job, each in
// its own goroutine with its own connection. It maps engine outcomes onto
// the order lifecycle and emits the user-facing notification.
type Worker struct {
	jobs    workerJobRepo
	sink    progressSink
	notify  notifier
	factory ClientFactory
	cfg     WorkerConfig
	log     zerolog.Logger

	once sync.Once
}

func NewWorker(jobs workerJobRepo, sink progressSink, notify notifier, factory ClientFactory, cfg WorkerConfig, logger zerolog.Logger) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 5 * time.Minute
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 2
	}

	return &Worker{
		jobs:    jobs,
		sink:    sink,
		notify:  notify,
		factory: factory,
		cfg:     cfg,
		log:     logger.With().Str("component", "transfer-worker").Logger(),
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.once.Do(func() {
		for i := 0; i < w.cfg.Workers; i++ {
			go w.workerLoop(ctx)
		}
	})
}

func (w *Worker) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.jobs.ClaimNext(ctx, w.cfg.LeaseDuration)
		if err != nil {
			w.log.Error().Err(err).Msg("claim next transfer job failed")
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if job == nil {
			if !sleepWithContext(ctx, w.cfg.PollInterval) {
				return
			}
			continue
		}

		if err := w.ProcessJob(ctx, *job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Str("order_id", job.OrderID).Msg("process transfer job failed")
		}
	}
}

// ProcessJob runs one claimed job end to end: connect, pre-flight both
// groups, run the engine, reconcile the order. Connection problems are
// retryable and requeue the job; engine-level failures finish the order as
// FAILED.
func (w *Worker) ProcessJob(ctx context.Context, job domain.TransferJob) error {
	// The lease must stay alive through flood-control waits and pauses,
	// which block the run loop between batch boundaries for longer than the
	// lease. The ticker runs beside the engine for the whole job.
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go w.heartbeatLoop(hbCtx, job.ID)

	client, err := w.factory.Connect(ctx)
	if err != nil {
		return w.onProcessingError(ctx, job, fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err))
	}
	defer func() {
		if cerr := client.Close(context.WithoutCancel(ctx)); cerr != nil {
			w.log.Warn().Err(cerr).Str("job_id", job.ID).Msg("close telegram client failed")
		}
	}()

	if check := client.ValidateAccess(ctx, job.SourceGroupLink, domain.AccessIntentRead); !check.Allowed {
		return w.failJob(ctx, job, fmt.Errorf("cannot access source group: %s", check.Reason))
	}
	if check := client.ValidateAccess(ctx, job.TargetGroupLink, domain.AccessIntentInvite); !check.Allowed {
		return w.failJob(ctx, job, fmt.Errorf("cannot invite members to target group: %s", check.Reason))
	}

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()

	engine := NewEngine(client, client, client, w.sink, w.cfg.Engine, w.log)

	onProgress := func(snap domain.Snapshot) {
		status, err := w.jobs.OrderStatus(ctx, job.OrderID)
		if err != nil {
			w.log.Warn().Err(err).Str("order_id", job.OrderID).Msg("order status check failed")
			return
		}
		if status == domain.OrderStatusCancelled {
			stopRun()
		}
	}

	final, runErr := engine.Run(runCtx, RunParams{
		OrderID:     job.OrderID,
		SourceLink:  job.SourceGroupLink,
		TargetLink:  job.TargetGroupLink,
		MemberLimit: job.MemberLimit,
	}, onProgress)

	switch {
	case runErr == nil:
		if err := w.jobs.Complete(ctx, job.ID, final); err != nil {
			return fmt.Errorf("complete job: %w", err)
		}
		w.notifyOutcome(ctx, job.OrderID, true, final, "")
		return nil

	case errors.Is(runErr, context.Canceled):
		// Either the order was cancelled or the process is shutting down.
		// Only the former finishes the job; after a shutdown the lease
		// expires and another worker picks the job up.
		bg := context.WithoutCancel(ctx)
		status, err := w.jobs.OrderStatus(bg, job.OrderID)
		if err == nil && status == domain.OrderStatusCancelled {
			if err := w.jobs.MarkCancelled(bg, job.ID); err != nil {
				return fmt.Errorf("mark job cancelled: %w", err)
			}
			w.log.Info().Str("job_id", job.ID).Str("order_id", job.OrderID).Int("completed", final.Completed).Msg("transfer job cancelled")
			return nil
		}
		return runErr

	default:
		return w.failJob(ctx, job, runErr)
	}
}

func (w *Worker) heartbeatLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.jobs.Heartbeat(ctx, jobID, w.cfg.LeaseDuration); err != nil {
				w.log.Warn().Err(err).Str("job_id", jobID).Msg("heartbeat failed")
			}
		}
	}
}

// failJob finishes the job and the order as FAILED and tells the user. The
// engine has already persisted the partial progress by the time this runs.
func (w *Worker) failJob(ctx context.Context, job domain.TransferJob, cause error) error {
	reason := truncateReason(cause.Error())
	if err := w.jobs.Fail(ctx, job.ID, reason); err != nil {
		return fmt.Errorf("%v; fail update failed: %w", cause, err)
	}
	w.notifyOutcome(ctx, job.OrderID, false, domain.Snapshot{}, reason)
	return cause
}

// onProcessingError requeues transient failures until the attempt budget is
// exhausted, then finishes the job as failed.
func (w *Worker) onProcessingError(ctx context.Context, job domain.TransferJob, err error) error {
	reason := truncateReason(err.Error())
	if job.Attempts < job.MaxAttempts {
		if requeueErr := w.jobs.Requeue(ctx, job.ID, reason); requeueErr != nil {
			return fmt.Errorf("%v; requeue failed: %w", err, requeueErr)
		}
		return err
	}

	if failErr := w.jobs.Fail(ctx, job.ID, reason); failErr != nil {
		return fmt.Errorf("%v; fail update failed: %w", err, failErr)
	}
	w.notifyOutcome(ctx, job.OrderID, false, domain.Snapshot{}, reason)
	return err
}

func (w *Worker) notifyOutcome(ctx context.Context, orderID string, succeeded bool, final domain.Snapshot, reason string) {
	var title, message, kind string
	if succeeded {
		title = "Transfer Completed!"
		message = fmt.Sprintf("Member transfer completed. Transferred: %d/%d members.", final.Completed, final.Total)
		kind = notifySuccess
	} else {
		title = "Transfer Failed"
		message = fmt.Sprintf("Member transfer failed: %s", reason)
		kind = notifyError
	}

	if err := w.notify.NotifyOrder(ctx, orderID, title, message, kind); err != nil {
		w.log.Error().Err(err).Str("order_id", orderID).Msg("create notification failed")
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	return reason[:maxLen]
}

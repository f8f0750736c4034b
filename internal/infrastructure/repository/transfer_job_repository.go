package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/db/models"
)

// Job statuses. "queued" covers both fresh jobs and requeued ones; a running
// job whose lease expired is claimable again without a status flip.
const (
	jobStatusQueued    = "queued"
	jobStatusRunning   = "running"
	jobStatusSucceeded = "succeeded"
	jobStatusFailed    = "failed"
	jobStatusCancelled = "cancelled"
)

type TransferJobRepository struct {
	db *gorm.DB
}

func NewTransferJobRepository(db *gorm.DB) *TransferJobRepository {
	return &TransferJobRepository{db: db}
}

// Enqueue creates a job for a pending order and moves the order to
// PROCESSING in the same transaction, so an order can never carry two live
// jobs.
func (r *TransferJobRepository) Enqueue(ctx context.Context, orderID, sourceLink, targetLink string, memberLimit int) (string, error) {
	var jobID string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, string(domain.OrderStatusPending)).
			Updates(map[string]any{
				"status":     string(domain.OrderStatusProcessing),
				"started_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("mark order processing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return fmt.Errorf("check order existence: %w", err)
			}
			if count == 0 {
				return domain.ErrOrderNotFound
			}
			return domain.ErrOrderNotPending
		}

		job := models.TransferJob{
			OrderID:         orderID,
			SourceGroupLink: sourceLink,
			TargetGroupLink: targetLink,
			MemberLimit:     memberLimit,
			Status:          jobStatusQueued,
		}
		if err := tx.Create(&job).Error; err != nil {
			return fmt.Errorf("create transfer job: %w", err)
		}
		jobID = job.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return jobID, nil
}

// ClaimNext atomically claims one runnable job: either queued, or running
// with an expired lease (its worker died). SKIP LOCKED keeps concurrent
// workers from fighting over the same row.
func (r *TransferJobRepository) ClaimNext(ctx context.Context, leaseDuration time.Duration) (*domain.TransferJob, error) {
	var row models.TransferJob

	res := r.db.WithContext(ctx).Raw(`
UPDATE transfer_jobs
SET status = ?,
    attempts = attempts + 1,
    heartbeat_at = NOW(),
    lease_expires_at = NOW() + (? * INTERVAL '1 second'),
    started_at = COALESCE(started_at, NOW()),
    updated_at = NOW()
WHERE id = (
    SELECT id FROM transfer_jobs
    WHERE status = ?
       OR (status = ? AND lease_expires_at < NOW())
    ORDER BY created_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING *
`, jobStatusRunning, leaseDuration.Seconds(), jobStatusQueued, jobStatusRunning).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("claim transfer job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &domain.TransferJob{
		ID:              row.ID,
		OrderID:         row.OrderID,
		SourceGroupLink: row.SourceGroupLink,
		TargetGroupLink: row.TargetGroupLink,
		MemberLimit:     row.MemberLimit,
		Attempts:        row.Attempts,
		MaxAttempts:     row.MaxAttempts,
	}, nil
}

// Heartbeat extends the lease of a running job. A no-op on jobs that are no
// longer running; the caller finds out when the claim goes to someone else.
func (r *TransferJobRepository) Heartbeat(ctx context.Context, jobID string, leaseDuration time.Duration) error {
	err := r.db.WithContext(ctx).Exec(`
UPDATE transfer_jobs
SET heartbeat_at = NOW(),
    lease_expires_at = NOW() + (? * INTERVAL '1 second'),
    updated_at = NOW()
WHERE id = ? AND status = ?
`, leaseDuration.Seconds(), jobID, jobStatusRunning).Error
	if err != nil {
		return fmt.Errorf("heartbeat transfer job: %w", err)
	}
	return nil
}

// Complete finishes the job and its order in one transaction, folding the
// final counters into both rows.
func (r *TransferJobRepository) Complete(ctx context.Context, jobID string, final domain.Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, jobID)
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&models.TransferJob{}).Where("id = ?", jobID).Updates(map[string]any{
			"status":          jobStatusSucceeded,
			"total_count":     final.Total,
			"completed_count": final.Completed,
			"failed_count":    final.Failed,
			"skipped_count":   final.Skipped,
			"finished_at":     now,
		}).Error
		if err != nil {
			return fmt.Errorf("complete transfer job: %w", err)
		}

		err = tx.Model(&models.Order{}).Where("id = ?", job.OrderID).Updates(map[string]any{
			"status":        string(domain.OrderStatusCompleted),
			"current_count": final.Completed,
			"completed_at":  now,
		}).Error
		if err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		return nil
	})
}

// Fail finishes the job and its order as failed. Partial progress stays on
// the order; only the statuses flip.
func (r *TransferJobRepository) Fail(ctx context.Context, jobID string, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockJob(tx, jobID)
		if err != nil {
			return err
		}

		err = tx.Model(&models.TransferJob{}).Where("id = ?", jobID).Updates(map[string]any{
			"status":        jobStatusFailed,
			"error_message": reason,
			"finished_at":   time.Now(),
		}).Error
		if err != nil {
			return fmt.Errorf("fail transfer job: %w", err)
		}

		err = tx.Model(&models.Order{}).Where("id = ?", job.OrderID).
			Update("status", string(domain.OrderStatusFailed)).Error
		if err != nil {
			return fmt.Errorf("fail order: %w", err)
		}
		return nil
	})
}

// Requeue puts a job back in the queue after a transient failure. The order
// stays in PROCESSING; the next claim resumes the work from scratch.
func (r *TransferJobRepository) Requeue(ctx context.Context, jobID string, reason string) error {
	err := r.db.WithContext(ctx).Model(&models.TransferJob{}).Where("id = ?", jobID).Updates(map[string]any{
		"status":           jobStatusQueued,
		"error_message":    reason,
		"heartbeat_at":     nil,
		"lease_expires_at": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("requeue transfer job: %w", err)
	}
	return nil
}

// MarkCancelled finishes a job whose order was cancelled mid-run.
func (r *TransferJobRepository) MarkCancelled(ctx context.Context, jobID string) error {
	err := r.db.WithContext(ctx).Model(&models.TransferJob{}).Where("id = ?", jobID).Updates(map[string]any{
		"status":      jobStatusCancelled,
		"finished_at": time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("mark transfer job cancelled: %w", err)
	}
	return nil
}

// OrderStatus reads the current order status. Polled by the worker between
// batches to observe cancellation.
func (r *TransferJobRepository) OrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	var status string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Pluck("status", &status).Error
	if err != nil {
		return "", fmt.Errorf("get order status: %w", err)
	}
	if status == "" {
		return "", domain.ErrOrderNotFound
	}
	return domain.OrderStatus(status), nil
}

// Cancel moves an order to CANCELLED and drops any not-yet-running job. A
// running job observes the order status at the next batch boundary and stops
// on its own.
func (r *TransferJobRepository) Cancel(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, []string{
				string(domain.OrderStatusPending),
				string(domain.OrderStatusProcessing),
			}).
			Update("status", string(domain.OrderStatusCancelled))
		if res.Error != nil {
			return fmt.Errorf("cancel order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return fmt.Errorf("check order existence: %w", err)
			}
			if count == 0 {
				return domain.ErrOrderNotFound
			}
			return domain.ErrOrderNotCancellable
		}

		err := tx.Model(&models.TransferJob{}).
			Where("order_id = ? AND status = ?", orderID, jobStatusQueued).
			Updates(map[string]any{
				"status":      jobStatusCancelled,
				"finished_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("cancel queued job: %w", err)
		}
		return nil
	})
}

func lockJob(tx *gorm.DB, jobID string) (*models.TransferJob, error) {
	var job models.TransferJob
	err := tx.Raw("SELECT * FROM transfer_jobs WHERE id = ? FOR UPDATE", jobID).Scan(&job).Error
	if err != nil {
		return nil, fmt.Errorf("lock transfer job: %w", err)
	}
	if job.ID == "" {
		return nil, errors.New("transfer job not found")
	}
	return &job, nil
}

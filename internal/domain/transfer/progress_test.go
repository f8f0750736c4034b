package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/boostgram/transfer-service/internal/domain/transfer"
)

func TestProgressCountInvariant(t *testing.T) {
	t.Parallel()

	p := domain.NewProgress(0)
	p.SetTotal(5)
	p.Begin()

	p.RecordInvited()
	p.RecordInvited()
	p.RecordSkipped()
	p.RecordFailure(42, "USER_PRIVACY_RESTRICTED")
	p.RecordInvited()

	snap := p.Snapshot()
	assert.Equal(t, 3, snap.Completed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, snap.Total, snap.Processed())
}

func TestProgressTerminalOnce(t *testing.T) {
	t.Parallel()

	p := domain.NewProgress(0)
	p.Begin()
	p.MarkCompleted()
	assert.Equal(t, domain.StatusCompleted, p.Status())

	// A later failure must not reopen a terminal run.
	p.MarkFailed()
	assert.Equal(t, domain.StatusCompleted, p.Status())

	p.Pause()
	assert.Equal(t, domain.StatusCompleted, p.Status())
}

func TestProgressPauseResume(t *testing.T) {
	t.Parallel()

	p := domain.NewProgress(0)
	assert.Equal(t, domain.StatusPreparing, p.Status())

	// Pause is only reachable from Transferring.
	p.Pause()
	assert.Equal(t, domain.StatusPreparing, p.Status())

	p.Begin()
	p.Pause()
	assert.Equal(t, domain.StatusPaused, p.Status())
	p.Resume()
	assert.Equal(t, domain.StatusTransferring, p.Status())
}

func TestProgressErrorListBounded(t *testing.T) {
	t.Parallel()

	p := domain.NewProgress(3)
	for i := int64(1); i <= 5; i++ {
		p.RecordFailure(i, "rejected")
	}

	snap := p.Snapshot()
	assert.Equal(t, 5, snap.Failed, "failed counter stays exact")
	assert.Len(t, snap.Errors, 3)
	// Most recent entries survive.
	assert.Equal(t, int64(3), snap.Errors[0].MemberID)
	assert.Equal(t, int64(5), snap.Errors[2].MemberID)
}

func TestProgressSnapshotIsolation(t *testing.T) {
	t.Parallel()

	p := domain.NewProgress(0)
	p.RecordFailure(1, "first")
	snap := p.Snapshot()
	p.RecordFailure(2, "second")

	assert.Len(t, snap.Errors, 1)
	assert.Len(t, p.Snapshot().Errors, 2)
}

package transfer

import "time"

// Status is the state of one transfer run. Transitions are monotonic except
// the Transferring<->Paused pair, and a run reaches a terminal state exactly
// once.
type Status string

const (
	StatusPreparing    Status = "preparing"
	StatusTransferring Status = "transferring"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusPaused       Status = "paused"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TransferError records one failed invite, in encounter order.
type TransferError struct {
	MemberID  int64
	Message   string
	Timestamp time.Time
}

// SystemMemberID marks a TransferError that belongs to the run as a whole
// (resolution, enumeration, connection) rather than to a single member.
const SystemMemberID int64 = 0

// DefaultMaxErrors bounds the stored error list per run. Long runs against
// uninvitable audiences would otherwise grow it without limit.
const DefaultMaxErrors = 100

// Progress is the mutable aggregate tracked for one transfer run. It is
// written only by the engine's single control loop; everyone else sees
// immutable Snapshot copies.
type Progress struct {
	total        int
	completed    int
	failed       int
	skipped      int
	currentBatch int
	status       Status

	errors    []TransferError
	maxErrors int
	now       func() time.Time
}

// Snapshot is an immutable point-in-time copy of a run's progress, emitted
// at batch boundaries and on finalization.
type Snapshot struct {
	Total        int
	Completed    int
	Failed       int
	Skipped      int
	CurrentBatch int
	Status       Status
	Errors       []TransferError
}

// Processed is the number of members accounted for so far.
func (s Snapshot) Processed() int {
	return s.Completed + s.Failed + s.Skipped
}

func NewProgress(maxErrors int) *Progress {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Progress{
		status:    StatusPreparing,
		maxErrors: maxErrors,
		now:       time.Now,
	}
}

// SetTotal fixes the run's ceiling once the source has been enumerated.
func (p *Progress) SetTotal(total int) {
	p.total = total
}

// Begin moves the run from Preparing to Transferring.
func (p *Progress) Begin() {
	if p.status == StatusPreparing {
		p.status = StatusTransferring
	}
}

// BeginBatch advances the 1-based batch counter.
func (p *Progress) BeginBatch() {
	p.currentBatch++
}

func (p *Progress) RecordInvited() {
	p.completed++
}

func (p *Progress) RecordSkipped() {
	p.skipped++
}

// RecordFailure counts a failed member and appends its error. The error list
// keeps only the most recent maxErrors entries; the failed counter is exact
// regardless.
func (p *Progress) RecordFailure(memberID int64, message string) {
	p.failed++
	p.appendError(memberID, message)
}

// RecordSystemError appends a run-level error without touching the member
// counters.
func (p *Progress) RecordSystemError(message string) {
	p.appendError(SystemMemberID, message)
}

func (p *Progress) appendError(memberID int64, message string) {
	if len(p.errors) >= p.maxErrors {
		copy(p.errors, p.errors[1:])
		p.errors = p.errors[:len(p.errors)-1]
	}
	p.errors = append(p.errors, TransferError{
		MemberID:  memberID,
		Message:   message,
		Timestamp: p.now(),
	})
}

// Pause suspends a transferring run. No-op in any other state.
func (p *Progress) Pause() {
	if p.status == StatusTransferring {
		p.status = StatusPaused
	}
}

// Resume returns a paused run to Transferring.
func (p *Progress) Resume() {
	if p.status == StatusPaused {
		p.status = StatusTransferring
	}
}

// MarkCompleted finalizes the run as Completed. Partial success is still
// Completed; only run-level failures finalize as Failed. No-op once terminal.
func (p *Progress) MarkCompleted() {
	if !p.status.Terminal() {
		p.status = StatusCompleted
	}
}

// MarkFailed finalizes the run as Failed. No-op once terminal.
func (p *Progress) MarkFailed() {
	if !p.status.Terminal() {
		p.status = StatusFailed
	}
}

func (p *Progress) Status() Status { return p.status }

// Processed is the number of members accounted for so far.
func (p *Progress) Processed() int {
	return p.completed + p.failed + p.skipped
}

// Snapshot copies the current state, including the error list, so callers
// can hold it across further mutation.
func (p *Progress) Snapshot() Snapshot {
	errs := make([]TransferError, len(p.errors))
	copy(errs, p.errors)
	return Snapshot{
		Total:        p.total,
		Completed:    p.completed,
		Failed:       p.failed,
		Skipped:      p.skipped,
		CurrentBatch: p.currentBatch,
		Status:       p.status,
		Errors:       errs,
	}
}

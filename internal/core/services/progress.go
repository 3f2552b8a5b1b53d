package services

import (
	"fmt"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

// progress is the run accumulator threaded through the window loop. It is an
// explicit struct rather than module state: the orchestrator owns exactly one
// per run and persists it through the audit store after every window.
type progress struct {
	processed int
	total     int
	message   string
	errors    []domain.RecordError
}

// addWindow counts a window's eligible items into the total.
func (p *progress) addWindow(items int) {
	p.total += items
}

// recordDone counts one successful reconciliation.
func (p *progress) recordDone() {
	p.processed++
}

// recordFailed logs one per-record failure without aborting the run.
func (p *progress) recordFailed(externalID string, err error) {
	p.errors = append(p.errors, domain.RecordError{ExternalID: externalID, Message: err.Error()})
}

// windowFailed annotates the audit message with an irrecoverable window
// fetch failure. The window's items never entered the total.
func (p *progress) windowFailed(window domain.ImportWindow, err error) {
	note := fmt.Sprintf("window %s failed: %v", window.Start.Format("2006-01-02"), err)
	if p.message != "" {
		p.message += "; "
	}
	p.message += note
}

// patch snapshots the accumulator into a task patch for durable reporting.
func (p *progress) patch() domain.TaskPatch {
	processed := p.processed
	total := p.total
	patch := domain.TaskPatch{
		ItemsProcessed: &processed,
		ItemTotal:      &total,
		RecordErrors:   p.errors,
	}
	if p.message != "" {
		msg := p.message
		patch.Message = &msg
	}
	return patch
}

package dto

import "time"

// SyncStatus tags the outcome of one entity kind's sync pass.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "SUCCESS"
	SyncSkipped SyncStatus = "SKIPPED" // nothing local to push and nothing remote to pull
	SyncFailed  SyncStatus = "FAILED"
)

// SyncOutcome reports what happened for a single entity kind. Failures carry
// the cause instead of being silently discarded.
type SyncOutcome struct {
	Kind       string     `json:"kind"`
	Status     SyncStatus `json:"status"`
	Uploaded   int        `json:"uploaded"`
	Downloaded int        `json:"downloaded"`
	Merged     int        `json:"merged"`
	Error      string     `json:"error,omitempty"`
}

// SyncReport aggregates per-kind outcomes for one sync run.
type SyncReport struct {
	RunID      string        `json:"runID"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Outcomes   []SyncOutcome `json:"outcomes"`
}

// Failed reports whether any kind's pass failed.
func (r *SyncReport) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Status == SyncFailed {
			return true
		}
	}
	return false
}

// FullSyncResponse is returned by the upload-only full sync endpoint.
type FullSyncResponse struct {
	SyncedAt time.Time `json:"syncedAt"`
	Uploaded int       `json:"uploaded"`
}

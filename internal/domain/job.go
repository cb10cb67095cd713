package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the closed set of states a durable queue row moves through.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is a durable queue row: one per accepted webhook delivery that needs a
// worker to fetch authoritative state and run the pipeline. Created once per
// event_id, mutated by claim/complete/fail/reap, never deleted — terminal
// rows remain as history.
type Job struct {
	ID          uuid.UUID
	EventID     string
	ObjectID    string
	EventType   string
	ProviderTS  int64
	RawEvent    json.RawMessage
	Status      JobStatus
	Attempts    int
	MaxAttempts int
	LastError   *string
	ScheduledAt time.Time
	UpdatedAt   time.Time
}

package delivery

import (
	"errors"
	"time"

	"carouselbot-api/internal/common"
)

// Repository errors
var (
	ErrJobNotFound = errors.New("delivery job not found")
)

// JobRepository defines the interface for delivery job persistence.
// ClaimDue must provide at-most-once dequeue semantics: a claimed job is
// invisible to other claimers until it is finished or requeued as stale.
type JobRepository interface {
	Enqueue(job *DeliveryJob) error
	GetByID(jobID common.JobID) (*DeliveryJob, error)
	ClaimDue(now time.Time, limit int) ([]*DeliveryJob, error)
	MarkSent(jobID common.JobID, messageID int, attempts int) error
	MarkFailed(jobID common.JobID, errMsg string, attempts int) error
	// Requeue returns a claimed job to queued with its attempt count
	// recorded, for deliveries interrupted before a terminal outcome
	Requeue(jobID common.JobID, attempts int) error
	RequeueStale(staleBefore time.Time) (int64, error)
}

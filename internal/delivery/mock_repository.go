package delivery

import (
	"sync"
	"time"

	"carouselbot-api/internal/common"
)

// MockJobRepository provides an in-memory implementation for testing
type MockJobRepository struct {
	mu           sync.Mutex
	jobs         map[common.JobID]*DeliveryJob
	order        []common.JobID
	enqueueError error
	claimError   error
}

// NewMockJobRepository creates a new mock repository
func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		jobs: make(map[common.JobID]*DeliveryJob),
	}
}

func (m *MockJobRepository) Enqueue(job *DeliveryJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enqueueError != nil {
		return m.enqueueError
	}

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	return nil
}

func (m *MockJobRepository) GetByID(jobID common.JobID) (*DeliveryJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		return job, nil
	}
	return nil, ErrJobNotFound
}

func (m *MockJobRepository) ClaimDue(now time.Time, limit int) ([]*DeliveryJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimError != nil {
		return nil, m.claimError
	}

	var claimed []*DeliveryJob
	for _, id := range m.order {
		if len(claimed) >= limit {
			break
		}
		job := m.jobs[id]
		if job.Status != common.DeliveryStatusQueued {
			continue
		}
		if job.NextAttemptAt != nil && job.NextAttemptAt.After(now) {
			continue
		}
		lockedAt := now
		job.Status = common.DeliveryStatusSending
		job.LockedAt = &lockedAt
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (m *MockJobRepository) MarkSent(jobID common.JobID, messageID int, attempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	job.Status = common.DeliveryStatusSent
	job.MessageID = &messageID
	job.Attempts = attempts
	job.LockedAt = nil
	return nil
}

func (m *MockJobRepository) MarkFailed(jobID common.JobID, errMsg string, attempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	job.Status = common.DeliveryStatusFailed
	job.LastError = errMsg
	job.Attempts = attempts
	job.LockedAt = nil
	return nil
}

func (m *MockJobRepository) Requeue(jobID common.JobID, attempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	job.Status = common.DeliveryStatusQueued
	job.Attempts = attempts
	job.LockedAt = nil
	return nil
}

func (m *MockJobRepository) RequeueStale(staleBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, job := range m.jobs {
		if job.Status == common.DeliveryStatusSending && job.LockedAt != nil && job.LockedAt.Before(staleBefore) {
			job.Status = common.DeliveryStatusQueued
			job.LockedAt = nil
			count++
		}
	}
	return count, nil
}

// SetEnqueueError makes subsequent Enqueue calls fail with err
func (m *MockJobRepository) SetEnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueueError = err
}

// JobCount returns the number of stored jobs
func (m *MockJobRepository) JobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

package delivery

import (
	"errors"
	"time"

	"carouselbot-api/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormJobRepository implements the JobRepository interface using GORM
type gormJobRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormJobRepository creates a new GORM-based delivery job repository
func NewGormJobRepository(db *gorm.DB, logger *zap.Logger) JobRepository {
	return &gormJobRepository{
		db:     db,
		logger: logger,
	}
}

// Enqueue inserts a new queued job
func (r *gormJobRepository) Enqueue(job *DeliveryJob) error {
	r.logger.Debug("Enqueuing delivery job",
		zap.String("job_id", string(job.ID)),
		zap.Int64("chat_id", job.ChatID))

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = common.DeliveryStatusQueued
	}

	if err := r.db.Create(job).Error; err != nil {
		return WrapRepositoryError(err, "enqueue job")
	}

	return nil
}

// GetByID retrieves a job by its ID
func (r *gormJobRepository) GetByID(jobID common.JobID) (*DeliveryJob, error) {
	var job DeliveryJob
	err := r.db.Where("id = ?", jobID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, WrapRepositoryError(err, "get job by ID")
	}
	return &job, nil
}

// ClaimDue atomically marks up to limit due queued jobs as sending and
// returns them. Row locking with SKIP LOCKED keeps concurrent workers from
// claiming the same job twice.
func (r *gormJobRepository) ClaimDue(now time.Time, limit int) ([]*DeliveryJob, error) {
	var claimed []*DeliveryJob

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var jobs []*DeliveryJob
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)",
				common.DeliveryStatusQueued, now).
			Order("created_at").
			Limit(limit).
			Find(&jobs).Error
		if err != nil {
			return err
		}

		for _, job := range jobs {
			lockedAt := now
			err := tx.Model(job).Updates(map[string]interface{}{
				"status":     common.DeliveryStatusSending,
				"locked_at":  &lockedAt,
				"updated_at": now,
			}).Error
			if err != nil {
				return err
			}
			job.Status = common.DeliveryStatusSending
			job.LockedAt = &lockedAt
		}

		claimed = jobs
		return nil
	})

	if err != nil {
		return nil, WrapRepositoryError(err, "claim due jobs")
	}

	return claimed, nil
}

// MarkSent marks a job as successfully delivered
func (r *gormJobRepository) MarkSent(jobID common.JobID, messageID int, attempts int) error {
	result := r.db.Model(&DeliveryJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     common.DeliveryStatusSent,
			"message_id": messageID,
			"attempts":   attempts,
			"locked_at":  nil,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "mark job sent")
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	r.logger.Debug("Delivery job marked sent",
		zap.String("job_id", string(jobID)),
		zap.Int("message_id", messageID))
	return nil
}

// MarkFailed records a terminal delivery failure
func (r *gormJobRepository) MarkFailed(jobID common.JobID, errMsg string, attempts int) error {
	result := r.db.Model(&DeliveryJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     common.DeliveryStatusFailed,
			"last_error": errMsg,
			"attempts":   attempts,
			"locked_at":  nil,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "mark job failed")
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// Requeue returns a claimed job to the queue, keeping its attempt count.
// Used when shutdown interrupts a delivery before a terminal outcome.
func (r *gormJobRepository) Requeue(jobID common.JobID, attempts int) error {
	result := r.db.Model(&DeliveryJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     common.DeliveryStatusQueued,
			"attempts":   attempts,
			"locked_at":  nil,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return WrapRepositoryError(result.Error, "requeue job")
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	r.logger.Debug("Delivery job requeued",
		zap.String("job_id", string(jobID)),
		zap.Int("attempts", attempts))
	return nil
}

// RequeueStale resets jobs stuck in sending since before staleBefore back
// to queued (crash recovery)
func (r *gormJobRepository) RequeueStale(staleBefore time.Time) (int64, error) {
	result := r.db.Model(&DeliveryJob{}).
		Where("status = ? AND locked_at < ?", common.DeliveryStatusSending, staleBefore).
		Updates(map[string]interface{}{
			"status":     common.DeliveryStatusQueued,
			"locked_at":  nil,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return 0, WrapRepositoryError(result.Error, "requeue stale jobs")
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Requeued stale delivery jobs", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

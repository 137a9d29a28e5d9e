package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/common"
	"carouselbot-api/internal/config"
	"carouselbot-api/internal/events"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// CompletionHook observes the terminal outcome of a delivery job. It is
// invoked after the job row reaches sent or failed; submission and execution
// are decoupled, so this is the only completion signal callers get.
type CompletionHook func(result JobResult)

// Queue defines the interface for the asynchronous message delivery queue
type Queue interface {
	// Enqueue persists a job and returns its handle immediately; the send
	// happens out of band on the worker pool
	Enqueue(req SendRequest) (common.JobID, error)
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

// queue implements the Queue interface
type queue struct {
	config     config.DeliveryConfig
	repository JobRepository
	provider   chatbot.TelegramProvider
	eventBus   events.EventBus
	logger     *zap.Logger
	hook       CompletionHook

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	ticker  *time.Ticker
	running atomic.Bool
}

// NewQueue creates a new delivery queue instance. A nil hook falls back to
// publishing delivery outcomes on the event bus.
func NewQueue(cfg config.DeliveryConfig, repository JobRepository, provider chatbot.TelegramProvider, eventBus events.EventBus, logger *zap.Logger, hook CompletionHook) (Queue, error) {
	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.WorkerCount <= 0 {
		return nil, NewConfigurationError("worker_count", cfg.WorkerCount, "must be greater than 0")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, NewConfigurationError("max_attempts", cfg.MaxAttempts, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}

	q := &queue{
		config:     cfg,
		repository: repository,
		provider:   provider,
		eventBus:   eventBus,
		logger:     logger,
	}

	if hook == nil {
		hook = q.publishResult
	}
	q.hook = hook

	return q, nil
}

// Enqueue persists a new delivery job and returns its ID
func (q *queue) Enqueue(req SendRequest) (common.JobID, error) {
	job, err := NewJob(req)
	if err != nil {
		return "", NewQueueError(ErrExecutionFailed, "failed to serialize job keyboard")
	}

	if err := q.repository.Enqueue(job); err != nil {
		return "", err
	}

	q.logger.Info("Delivery job enqueued",
		zap.String("job_id", string(job.ID)),
		zap.Int64("chat_id", job.ChatID),
		zap.Bool("pin_message", job.PinMessage))

	return job.ID, nil
}

// Start begins the queue operation with worker goroutines
func (q *queue) Start(ctx context.Context) error {
	if q.running.Load() {
		return NewQueueError(ErrQueueAlreadyRunning, "delivery queue is already running")
	}

	q.ctx, q.cancel = context.WithCancel(ctx)
	q.ticker = time.NewTicker(time.Duration(q.config.PollInterval) * time.Second)
	q.running.Store(true)

	// Crash recovery: jobs claimed by a previous process go back to queued
	staleBefore := time.Now().Add(-time.Duration(q.config.StaleAfter) * time.Second)
	if _, err := q.repository.RequeueStale(staleBefore); err != nil {
		q.logger.Warn("Failed to requeue stale delivery jobs", zap.Error(err))
	}

	q.logger.Info("Starting delivery queue",
		zap.Int("poll_interval_seconds", q.config.PollInterval),
		zap.Int("worker_count", q.config.WorkerCount),
		zap.Int("max_attempts", q.config.MaxAttempts))

	for i := 0; i < q.config.WorkerCount; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	return nil
}

// Stop gracefully shuts down the queue
func (q *queue) Stop() error {
	if !q.running.Load() {
		return NewQueueError(ErrQueueNotRunning, "delivery queue is not running")
	}

	q.logger.Info("Stopping delivery queue...")

	if q.cancel != nil {
		q.cancel()
	}
	if q.ticker != nil {
		q.ticker.Stop()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("All delivery workers stopped successfully")
	case <-time.After(time.Duration(q.config.ShutdownTimeout) * time.Second):
		q.logger.Warn("Delivery queue shutdown timed out, some workers may still be running")
	}

	q.running.Store(false)
	return nil
}

// IsRunning returns true if the queue is currently running
func (q *queue) IsRunning() bool {
	return q.running.Load()
}

// worker is the main worker goroutine that claims and executes due jobs
func (q *queue) worker(workerID int) {
	defer q.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Delivery worker panic recovered, restarting worker",
				zap.Int("worker_id", workerID),
				zap.Any("panic", r))
			if q.running.Load() {
				q.wg.Add(1)
				go q.worker(workerID)
			}
		}
	}()

	workerLogger := q.logger.With(zap.Int("worker_id", workerID))
	workerLogger.Info("Starting delivery worker")

	for {
		select {
		case <-q.ctx.Done():
			workerLogger.Info("Delivery worker stopping due to context cancellation")
			return
		case <-q.ticker.C:
			if err := q.processDueJobs(workerLogger); err != nil {
				workerLogger.Error("Failed to process delivery jobs", zap.Error(err))
			}
		}
	}
}

// processDueJobs claims a batch of due jobs and executes them
func (q *queue) processDueJobs(logger *zap.Logger) error {
	jobs, err := q.repository.ClaimDue(time.Now(), q.config.WorkerCount*2)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		return nil
	}

	logger.Debug("Claimed delivery jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		q.executeJob(logger, job)
	}
	return nil
}

// executeJob runs the bounded-retry send for one claimed job and reports
// the outcome to the repository and the completion hook
func (q *queue) executeJob(logger *zap.Logger, job *DeliveryJob) {
	keyboard, err := job.Keyboard()
	if err != nil {
		// Corrupt payload is not retryable
		q.finishFailed(logger, job, 1, NewExecutionError(string(job.ID), err))
		return
	}

	opts := chatbot.SendOptions{
		ParseMode:         job.ParseMode,
		DisableWebPreview: job.DisableWebPreview,
	}

	attempts := 0
	var messageID int

	operation := func() error {
		attempts++

		var sendErr error
		if keyboard.IsEmpty() {
			messageID, sendErr = q.provider.SendMessage(q.ctx, job.ChatID, job.Text, opts)
		} else {
			messageID, sendErr = q.provider.SendMessageWithKeyboard(q.ctx, job.ChatID, job.Text, keyboard, opts)
		}

		if sendErr != nil {
			logger.Warn("Delivery attempt failed",
				zap.String("job_id", string(job.ID)),
				zap.Int("attempt", attempts),
				zap.Error(sendErr))
		}
		return sendErr
	}

	policy := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(time.Duration(q.config.RetryDelay)*time.Second),
		uint64(q.config.MaxAttempts-1),
	)

	if err := backoff.Retry(operation, backoff.WithContext(policy, q.ctx)); err != nil {
		// Shutdown aborting the retry wait is not a delivery verdict: the
		// job keeps its remaining attempts and goes back to the queue
		if q.ctx.Err() != nil && attempts < q.config.MaxAttempts {
			q.releaseInterrupted(logger, job, attempts)
			return
		}
		q.finishFailed(logger, job, attempts, err)
		return
	}

	// Pin is a non-critical side effect; a failure only costs the pin
	if job.PinMessage && messageID != 0 {
		if err := q.provider.PinMessage(q.ctx, job.ChatID, messageID); err != nil {
			logger.Warn("Failed to pin delivered message",
				zap.String("job_id", string(job.ID)),
				zap.Int("message_id", messageID),
				zap.Error(err))
		}
	}

	if err := q.repository.MarkSent(job.ID, messageID, attempts); err != nil {
		logger.Error("Failed to mark delivery job sent",
			zap.String("job_id", string(job.ID)),
			zap.Error(err))
	}

	logger.Info("Delivery job completed",
		zap.String("job_id", string(job.ID)),
		zap.Int64("chat_id", job.ChatID),
		zap.Int("message_id", messageID),
		zap.Int("attempts", attempts))

	q.hook(JobResult{
		JobID:     job.ID,
		ChatID:    job.ChatID,
		Success:   true,
		MessageID: messageID,
		Attempts:  attempts,
	})
}

// releaseInterrupted returns a job cut short by shutdown to the queue with
// its attempt count recorded. If the write fails the job stays in sending
// and the stale requeue on the next start recovers it.
func (q *queue) releaseInterrupted(logger *zap.Logger, job *DeliveryJob, attempts int) {
	logger.Info("Delivery interrupted by shutdown, requeuing job",
		zap.String("job_id", string(job.ID)),
		zap.Int("attempts", attempts))

	if err := q.repository.Requeue(job.ID, attempts); err != nil {
		logger.Error("Failed to requeue interrupted delivery job",
			zap.String("job_id", string(job.ID)),
			zap.Error(err))
	}
}

// finishFailed records a terminal failure and notifies the hook
func (q *queue) finishFailed(logger *zap.Logger, job *DeliveryJob, attempts int, cause error) {
	logger.Error("Delivery job failed permanently",
		zap.String("job_id", string(job.ID)),
		zap.Int64("chat_id", job.ChatID),
		zap.Int("attempts", attempts),
		zap.Error(cause))

	if err := q.repository.MarkFailed(job.ID, cause.Error(), attempts); err != nil {
		logger.Error("Failed to mark delivery job failed",
			zap.String("job_id", string(job.ID)),
			zap.Error(err))
	}

	q.hook(JobResult{
		JobID:    job.ID,
		ChatID:   job.ChatID,
		Success:  false,
		Attempts: attempts,
		Error:    cause.Error(),
	})
}

// publishResult is the default completion hook: delivery outcomes go onto
// the event bus for interested services
func (q *queue) publishResult(result JobResult) {
	if result.Success {
		event := events.MessageDelivered{
			Event:     events.NewEvent(),
			JobID:     string(result.JobID),
			ChatID:    result.ChatID,
			MessageID: result.MessageID,
			Attempts:  result.Attempts,
		}
		if err := q.eventBus.Publish(events.TopicMessageDelivered, event); err != nil {
			q.logger.Warn("Failed to publish delivery event", zap.Error(err))
		}
		return
	}

	event := events.MessageDeliveryFailed{
		Event:    events.NewEvent(),
		JobID:    string(result.JobID),
		ChatID:   result.ChatID,
		Error:    result.Error,
		Attempts: result.Attempts,
	}
	if err := q.eventBus.Publish(events.TopicMessageDeliveryFailed, event); err != nil {
		q.logger.Warn("Failed to publish delivery failure event", zap.Error(err))
	}
}

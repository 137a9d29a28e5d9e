package carousel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/common"
	"carouselbot-api/internal/config"
	"carouselbot-api/internal/events"

	"go.uber.org/zap"
)

// Scheduler drives the recurring broadcast cycle: every active config is
// sent once per its configured interval, and the single timer per config is
// replaced after each firing (success or failure).
type Scheduler interface {
	// Fire executes one send-and-reschedule cycle for the config
	Fire(ctx context.Context, configID uint) error
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

// scheduler implements the Scheduler interface
type scheduler struct {
	config     config.CarouselConfig
	repository Repository
	renderer   *Renderer
	provider   chatbot.TelegramProvider
	eventBus   events.EventBus
	logger     *zap.Logger
	clock      common.Clock

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	ticker  *time.Ticker
	running atomic.Bool
}

// NewScheduler creates a new carousel scheduler instance
func NewScheduler(cfg config.CarouselConfig, repository Repository, renderer *Renderer, provider chatbot.TelegramProvider, eventBus events.EventBus, logger *zap.Logger, clock common.Clock) (Scheduler, error) {
	if cfg.PollInterval <= 0 {
		return nil, NewConfigurationError("poll_interval", cfg.PollInterval, "must be greater than 0")
	}
	if cfg.WorkerCount <= 0 {
		return nil, NewConfigurationError("worker_count", cfg.WorkerCount, "must be greater than 0")
	}
	if cfg.SendTimeout <= 0 {
		return nil, NewConfigurationError("send_timeout", cfg.SendTimeout, "must be greater than 0")
	}
	if cfg.RetryDelay <= 0 {
		return nil, NewConfigurationError("retry_delay", cfg.RetryDelay, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}

	if clock == nil {
		clock = common.NewRealClock()
	}

	return &scheduler{
		config:     cfg,
		repository: repository,
		renderer:   renderer,
		provider:   provider,
		eventBus:   eventBus,
		logger:     logger,
		clock:      clock,
	}, nil
}

// Fire executes one send-and-reschedule cycle for the given config.
//
// A config that is missing or inactive aborts silently with no reschedule:
// a deleted or deactivated config must not resurrect its timer. Send
// failures do not advance the runtime state; they install a retry timer at
// a fixed short delay under the same deterministic name. State is persisted
// before the replacement timer so a crash between the two writes can only
// lose a reschedule, never double-advance the state.
func (s *scheduler) Fire(ctx context.Context, configID uint) error {
	fireLogger := s.logger.With(zap.Uint("config_id", configID))

	cfg, err := s.repository.GetActiveByID(configID)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			fireLogger.Warn("Carousel config missing or inactive, dropping timer")
			return nil
		}
		return err
	}

	result, err := s.renderer.Render(cfg, 1)
	if err != nil {
		if errors.Is(err, ErrFetcherNotRegistered) {
			// Administrator error, not a runtime fault: no reschedule
			fireLogger.Error("Carousel data fetcher unresolvable, not rescheduling",
				zap.String("data_fetcher", cfg.DataFetcher),
				zap.Error(err))
			return err
		}
		return s.rescheduleAfterFailure(fireLogger, cfg, err)
	}

	if cfg.DeletePrevious && cfg.LastMessageID != nil {
		s.deletePrevious(ctx, fireLogger, cfg)
	}

	sendCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.SendTimeout)*time.Second)
	defer cancel()

	opts := chatbot.SendOptions{
		ParseMode:         "Markdown",
		DisableWebPreview: true,
	}

	messageID, err := s.provider.SendMessageWithKeyboard(sendCtx, cfg.ChatID, result.Text, result.Keyboard, opts)
	if err != nil {
		return s.rescheduleAfterFailure(fireLogger, cfg, NewSendError(cfg.ID, err))
	}

	if cfg.IsPinned && messageID != 0 {
		s.pinMessage(ctx, fireLogger, cfg, messageID)
	}

	now := s.clock.Now()
	cfg.LastMessageID = &messageID
	cfg.LastSentAt = &now
	cfg.TotalSentCount++

	// Persist state before the replacement timer. The reverse order would
	// risk a crash leaving the config advanced but unscheduled.
	if err := s.repository.UpdateRuntimeState(cfg); err != nil {
		return err
	}

	nextRun := cfg.NextSendTime(now)
	if err := s.repository.ReplaceByName(cfg.TimerName(), cfg.ID, nextRun); err != nil {
		return err
	}

	fireLogger.Info("Carousel sent and rescheduled",
		zap.Int64("chat_id", cfg.ChatID),
		zap.Int("message_id", messageID),
		zap.Int("total_pages", result.TotalPages),
		zap.Int("total_sent_count", cfg.TotalSentCount),
		zap.Time("next_run", nextRun))

	s.publishSent(cfg, messageID)
	return nil
}

// rescheduleAfterFailure installs a retry timer at a fixed short delay
// without touching the config's runtime state
func (s *scheduler) rescheduleAfterFailure(logger *zap.Logger, cfg *Config, cause error) error {
	retryAt := s.clock.Now().Add(time.Duration(s.config.RetryDelay) * time.Minute)

	logger.Warn("Carousel fire failed, scheduling retry",
		zap.Int64("chat_id", cfg.ChatID),
		zap.Time("retry_at", retryAt),
		zap.Error(cause))

	if err := s.repository.ReplaceByName(cfg.TimerName(), cfg.ID, retryAt); err != nil {
		return err
	}

	s.publishSendFailed(cfg, cause, retryAt)
	return nil
}

// deletePrevious removes the prior sent message. Failure only means the old
// message lingers, so it is logged and swallowed.
func (s *scheduler) deletePrevious(ctx context.Context, logger *zap.Logger, cfg *Config) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.SendTimeout)*time.Second)
	defer cancel()

	if err := s.provider.DeleteMessage(callCtx, cfg.ChatID, *cfg.LastMessageID); err != nil {
		logger.Warn("Failed to delete previous carousel message",
			zap.Int("message_id", *cfg.LastMessageID),
			zap.Error(err))
		return
	}

	logger.Debug("Deleted previous carousel message", zap.Int("message_id", *cfg.LastMessageID))
}

// pinMessage pins the freshly sent message. Failure is non-critical and
// swallowed.
func (s *scheduler) pinMessage(ctx context.Context, logger *zap.Logger, cfg *Config, messageID int) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.SendTimeout)*time.Second)
	defer cancel()

	if err := s.provider.PinMessage(callCtx, cfg.ChatID, messageID); err != nil {
		logger.Warn("Failed to pin carousel message",
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

func (s *scheduler) publishSent(cfg *Config, messageID int) {
	event := events.CarouselSent{
		Event:        events.NewEvent(),
		ConfigID:     cfg.ID,
		FunctionName: cfg.FunctionName,
		ChatID:       cfg.ChatID,
		MessageID:    messageID,
		TotalSent:    cfg.TotalSentCount,
	}
	if err := s.eventBus.Publish(events.TopicCarouselSent, event); err != nil {
		s.logger.Warn("Failed to publish carousel sent event", zap.Error(err))
	}
}

func (s *scheduler) publishSendFailed(cfg *Config, cause error, retryAt time.Time) {
	event := events.CarouselSendFailed{
		Event:        events.NewEvent(),
		ConfigID:     cfg.ID,
		FunctionName: cfg.FunctionName,
		ChatID:       cfg.ChatID,
		Error:        cause.Error(),
		RetryAt:      retryAt,
	}
	if err := s.eventBus.Publish(events.TopicCarouselSendFailed, event); err != nil {
		s.logger.Warn("Failed to publish carousel failure event", zap.Error(err))
	}
}

// Start begins the scheduler operation with worker goroutines
func (s *scheduler) Start(ctx context.Context) error {
	if s.running.Load() {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.ticker = time.NewTicker(time.Duration(s.config.PollInterval) * time.Second)
	s.running.Store(true)

	s.logger.Info("Starting carousel scheduler",
		zap.Int("poll_interval_seconds", s.config.PollInterval),
		zap.Int("worker_count", s.config.WorkerCount),
		zap.Int("retry_delay_minutes", s.config.RetryDelay))

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("Carousel scheduler started successfully")
	return nil
}

// Stop gracefully shuts down the scheduler
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping carousel scheduler...")

	if s.cancel != nil {
		s.cancel()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All scheduler workers stopped successfully")
	case <-time.After(time.Duration(s.config.ShutdownTimeout) * time.Second):
		s.logger.Warn("Scheduler shutdown timed out, some workers may still be running")
		s.running.Store(false)
		return NewSchedulerError(ErrShutdownTimeout, "shutdown timeout exceeded")
	}

	s.running.Store(false)
	s.logger.Info("Carousel scheduler stopped successfully")
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

package carousel

import (
	"go.uber.org/zap"
)

// claimBatchSize caps how many due timers one worker tick processes
const claimBatchSize = 10

// worker is the main worker goroutine that polls for due timers
func (s *scheduler) worker(workerID int) {
	defer s.wg.Done()

	workerLogger := s.logger.With(zap.Int("worker_id", workerID))
	workerLogger.Debug("Scheduler worker started")

	defer func() {
		if r := recover(); r != nil {
			workerLogger.Error("Scheduler worker panicked, restarting", zap.Any("panic", r))
			// Restart the worker after a panic
			if s.running.Load() {
				s.wg.Add(1)
				go s.worker(workerID)
			}
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			workerLogger.Debug("Scheduler worker stopping due to context cancellation")
			return
		case <-s.ticker.C:
			s.processDueTimers(workerLogger)
		}
	}
}

// processDueTimers claims a batch of due timers and fires each one. A claim
// removes the timer row, so every fire path must install its own follow-up;
// a config whose fire errors out before any reschedule simply goes dormant
// until the next save.
func (s *scheduler) processDueTimers(logger *zap.Logger) {
	timers, err := s.repository.ClaimDue(s.clock.Now(), claimBatchSize)
	if err != nil {
		logger.Error("Failed to claim due timers", zap.Error(err))
		return
	}

	if len(timers) == 0 {
		return
	}

	logger.Debug("Claimed due timers", zap.Int("count", len(timers)))

	for _, timer := range timers {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		if err := s.Fire(s.ctx, timer.ConfigID); err != nil {
			logger.Error("Carousel fire failed",
				zap.Uint("config_id", timer.ConfigID),
				zap.String("timer_name", timer.Name),
				zap.Error(err))
		}
	}
}

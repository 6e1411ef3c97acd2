package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/models"
)

// Service runs the price check pipeline for tracked products on a cron
// schedule. Products run sequentially within one tick; a slow or
// failing product never cancels the remaining ones, and overlapping
// ticks are coalesced.
type Service struct {
	pipeline interfaces.PipelineRunner
	config   common.SchedulerConfig
	cron     *cron.Cron
	logger   arbor.ILogger

	mu        sync.Mutex
	running   bool
	inFlight  bool
	lastRun   *time.Time
	lastError string
}

// NewService creates a scheduler service.
func NewService(pipeline interfaces.PipelineRunner, config common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		pipeline: pipeline,
		config:   config,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the cron entry and begins scheduling. Disabled
// configuration or an empty product list is a no-op, not an error.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}
	if len(s.config.Products) == 0 {
		s.logger.Warn().Msg("Scheduler enabled but no tracked products configured")
		return nil
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 */6 * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.runTrackedProducts); err != nil {
		return fmt.Errorf("failed to register cron schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Int("products", len(s.config.Products)).
		Msg("Scheduler started")

	return nil
}

// Stop halts the scheduler and waits for an in-progress tick to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Timed out waiting for scheduled run to finish")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// RunNow triggers one pass over the tracked products outside the
// schedule.
func (s *Service) RunNow() {
	s.runTrackedProducts()
}

func (s *Service) runTrackedProducts() {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous scheduled run still in progress, skipping tick")
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		now := time.Now()
		s.mu.Lock()
		s.inFlight = false
		s.lastRun = &now
		s.mu.Unlock()
	}()

	s.logger.Info().Int("products", len(s.config.Products)).Msg("Scheduled price check starting")

	var failures int
	for _, product := range s.config.Products {
		if err := s.checkProduct(product); err != nil {
			failures++
			s.mu.Lock()
			s.lastError = err.Error()
			s.mu.Unlock()
			s.logger.Error().
				Err(err).
				Str("model", product.Model).
				Str("country", product.Country).
				Msg("Scheduled price check failed")
		}
	}

	s.logger.Info().
		Int("products", len(s.config.Products)).
		Int("failures", failures).
		Msg("Scheduled price check finished")
}

func (s *Service) checkProduct(product common.TrackedProduct) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.pipeline.Run(ctx, models.PipelineRequest{
		Model:   product.Model,
		Country: product.Country,
	})
	if err != nil {
		return err
	}
	if result.Err != "" {
		return fmt.Errorf("%s", result.Err)
	}

	s.logger.Info().
		Str("model", product.Model).
		Str("country", product.Country).
		Int("data_points", result.DataPoints).
		Int("alerts", len(result.Alerts)).
		Msg("Scheduled price check completed")

	return nil
}

// Status reports the scheduler's current state for diagnostics.
func (s *Service) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":   s.running,
		"in_flight": s.inFlight,
		"products":  len(s.config.Products),
		"schedule":  s.config.Schedule,
	}
	if s.lastRun != nil {
		status["last_run"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastError != "" {
		status["last_error"] = s.lastError
	}
	return status
}

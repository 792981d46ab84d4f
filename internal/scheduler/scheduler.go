package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-dashboard/internal/state"
)

// Refresher is the part of the dashboard controller the scheduler drives.
type Refresher interface {
	State() state.State
	FetchWeather(ctx context.Context)
	RefreshHistory(ctx context.Context)
}

// Scheduler periodically refreshes weather for the active location and the
// saved history.
type Scheduler struct {
	refresher Refresher
	logger    *zap.Logger
	spec      string
	cron      *cron.Cron
	entryID   cron.EntryID
	running   bool
	mu        sync.Mutex
	lastRun   time.Time
	runCount  int
	timeout   time.Duration
}

func NewScheduler(refresher Refresher, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		logger:    logger,
		spec:      spec,
		cron:      cron.New(),
		timeout:   60 * time.Second,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, s.runRefresh)
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", s.cron.Entry(id).Next))

	return nil
}

func (s *Scheduler) runRefresh() {
	s.mu.Lock()
	s.lastRun = time.Now()
	s.runCount++
	s.mu.Unlock()

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	location := strings.TrimSpace(s.refresher.State().Location)
	if location != "" {
		s.refresher.FetchWeather(ctx)
	} else {
		s.logger.Debug("No active location, skipping weather refresh")
	}
	s.refresher.RefreshHistory(ctx)

	if msg := s.refresher.State().Error; msg != "" {
		s.logger.Warn("Scheduled refresh finished with error",
			zap.String("location", location),
			zap.String("error", msg),
			zap.Duration("duration", time.Since(startTime)))
		return
	}

	s.logger.Info("Scheduled refresh completed",
		zap.String("location", location),
		zap.Duration("duration", time.Since(startTime)))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// ForceRun refreshes immediately and waits for it to finish.
func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering refresh")
	s.runRefresh()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":   s.running,
		"schedule":  s.spec,
		"last_run":  s.lastRun,
		"run_count": s.runCount,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}

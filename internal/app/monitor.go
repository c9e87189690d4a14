package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// CleanupMonitor periodically runs the session cleanup pass. It is owned by
// the composition root, not by the service: the core stays free of timers.
type CleanupMonitor struct {
	sessionSvc domain.SessionService
	logger     *zap.Logger
	cron       *cron.Cron
}

// NewCleanupMonitor creates a stopped monitor.
func NewCleanupMonitor(sessionSvc domain.SessionService, logger *zap.Logger) *CleanupMonitor {
	return &CleanupMonitor{
		sessionSvc: sessionSvc,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start schedules the cleanup pass. schedule accepts cron expressions and
// @every descriptors.
func (m *CleanupMonitor) Start(schedule string) error {
	_, err := m.cron.AddFunc(schedule, m.run)
	if err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("cleanup monitor started", zap.String("schedule", schedule))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (m *CleanupMonitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("cleanup monitor stopped")
}

func (m *CleanupMonitor) run() {
	result, err := m.sessionSvc.PerformSessionCleanup(context.Background())
	if err != nil {
		m.logger.Error("session cleanup failed", zap.Error(err))
		return
	}
	m.logger.Info("session cleanup finished",
		zap.Int64("expired_deleted", result.ExpiredSessionsDeleted),
		zap.Int("abandoned_marked", result.AbandonedSessionsMarked),
		zap.Int("errors", len(result.Errors)))
}

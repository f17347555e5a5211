package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/sweeparr/sweeparr/internal/controllers"
)

// Scheduler regenerates the unwatched report on a cron schedule
type Scheduler struct {
	cron        *cron.Cron
	analyzeCtrl *controllers.AnalyzeController
	months      int
	limit       int
	logger      *logrus.Logger
}

// NewScheduler creates a new report scheduler
func NewScheduler(analyzeCtrl *controllers.AnalyzeController, months, limit int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		analyzeCtrl: analyzeCtrl,
		months:      months,
		limit:       limit,
		logger:      logger,
	}
}

// Start registers the report job and starts the cron loop.
// An initial report is generated immediately.
func (s *Scheduler) Start(spec string) error {
	s.logger.WithField("schedule", spec).Info("Starting scheduler")

	_, err := s.cron.AddFunc(spec, func() {
		s.runReport()
	})
	if err != nil {
		return fmt.Errorf("failed to add report job: %w", err)
	}

	s.cron.Start()

	go s.runReport()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runReport executes one report generation
func (s *Scheduler) runReport() {
	s.logger.Info("Running scheduled report")
	ctx := context.Background()

	if _, err := s.analyzeCtrl.GenerateReport(ctx, s.months, s.limit); err != nil {
		s.logger.WithError(err).Error("Report job failed")
	} else {
		s.logger.Info("Report job completed successfully")
	}
}

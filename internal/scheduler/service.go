package scheduler

import (
	"github.com/accountdoctor/accountdoctor/internal/audit"
	"github.com/accountdoctor/accountdoctor/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service handles scheduling of watched-account refreshes
type Service struct {
	config       *config.Config
	auditService *audit.Service
	cron         *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, auditService *audit.Service) *Service {
	return &Service{
		config:       cfg,
		auditService: auditService,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled refreshes
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.RefreshSchedule {
	case "daily":
		// Run daily at 6 AM UTC, before business hours in most markets
		cronExpression = "0 0 6 * * *"
	case "weekly":
		// Run weekly on Monday at 6 AM UTC
		cronExpression = "0 0 6 * * MON"
	default:
		cronExpression = "0 0 6 * * *"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled watched-account refresh")
		if err := s.auditService.RefreshWatchedAccounts(); err != nil {
			logrus.Errorf("Scheduled refresh failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s refresh schedule", s.config.RefreshSchedule)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

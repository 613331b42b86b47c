package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/config"
	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/accountdoctor/accountdoctor/internal/notifications"
	"github.com/accountdoctor/accountdoctor/internal/scoring"
	"github.com/accountdoctor/accountdoctor/internal/scraper"
	"github.com/accountdoctor/accountdoctor/internal/storage"
	"github.com/accountdoctor/accountdoctor/internal/strategy"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service orchestrates account audits: cache lookup, scraping, scoring,
// strategy generation, persistence, and archival.
type Service struct {
	config    *config.Config
	provider  scraper.ProfileProvider
	engine    *scoring.Engine
	generator strategy.Generator // may be nil
	store     storage.Store
	archive   storage.Archive // may be nil
	notifier  notifications.NotificationInterface
	cache     *Cache
	metrics   *Metrics
	mu        sync.RWMutex
	now       func() time.Time
}

// Metrics holds audit metrics
type Metrics struct {
	TotalAudits     int            `json:"total_audits"`
	CacheHits       int            `json:"cache_hits"`
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	GradeBreakdown  map[string]int `json:"grade_breakdown"`
	AlertsSent      int            `json:"alerts_sent"`
	ErrorCount      int            `json:"error_count"`
}

// NewService creates a new audit service
func NewService(
	cfg *config.Config,
	provider scraper.ProfileProvider,
	engine *scoring.Engine,
	generator strategy.Generator,
	store storage.Store,
	archive storage.Archive,
	notifier notifications.NotificationInterface,
) *Service {
	return &Service{
		config:    cfg,
		provider:  provider,
		engine:    engine,
		generator: generator,
		store:     store,
		archive:   archive,
		notifier:  notifier,
		cache:     NewCache(time.Duration(cfg.CacheTTLHours) * time.Hour),
		metrics: &Metrics{
			GradeBreakdown: make(map[string]int),
		},
		now: time.Now,
	}
}

// AuditAccount returns the audit for a username, reusing a cached or recent
// stored audit inside the TTL unless force is set.
func (s *Service) AuditAccount(ctx context.Context, username string, force bool) (*models.AuditRecord, error) {
	if !force {
		if record, ok := s.cache.Get(username); ok {
			logrus.Debugf("Cache hit for %s", username)
			s.countCacheHit()
			return record, nil
		}

		// Warm cache from the store after a restart.
		ttl := time.Duration(s.config.CacheTTLHours) * time.Hour
		if record, err := s.store.LatestAudit(ctx, username); err == nil {
			if s.now().Sub(record.CreatedAt) < ttl {
				s.cache.Set(username, record)
				s.countCacheHit()
				return record, nil
			}
		}
	}

	record, err := s.runAudit(ctx, username)
	if err != nil {
		s.countError()
		return nil, err
	}

	s.cache.Set(username, record)
	s.updateMetrics(record)
	return record, nil
}

func (s *Service) runAudit(ctx context.Context, username string) (*models.AuditRecord, error) {
	start := s.now()
	logrus.Infof("Starting audit for %s", username)

	snapshot, raw, err := s.provider.FetchProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", username, err)
	}

	if s.archive != nil {
		if err := s.archive.ArchiveSnapshot(ctx, username, snapshot.TakenAt, raw); err != nil {
			logrus.Errorf("Failed to archive snapshot for %s: %v", username, err)
		}
	}

	result, err := s.engine.Evaluate(*snapshot, s.now())
	if err != nil {
		return nil, fmt.Errorf("score profile %s: %w", username, err)
	}

	record := &models.AuditRecord{
		ID:              uuid.New().String(),
		Username:        username,
		Result:          *result,
		Strategy:        s.generateStrategy(ctx, snapshot, result),
		SnapshotTakenAt: snapshot.TakenAt,
		CreatedAt:       s.now(),
	}

	if err := s.store.SaveAudit(ctx, record); err != nil {
		return nil, fmt.Errorf("persist audit for %s: %w", username, err)
	}

	logrus.Infof("Audit for %s completed in %v: score %d (%s)",
		username, s.now().Sub(start), result.Score, result.Grade)
	return record, nil
}

// generateStrategy is best-effort: a failed or disabled generation means the
// audit ships without a plan.
func (s *Service) generateStrategy(ctx context.Context, snapshot *models.ProfileSnapshot, result *models.AuditResult) *models.StrategyPlan {
	if s.generator == nil || !s.generator.IsEnabled() {
		return nil
	}

	plan, err := s.generator.GeneratePlan(ctx, snapshot, result)
	if err != nil {
		logrus.Errorf("Strategy generation failed for %s: %v", snapshot.Username, err)
		return nil
	}
	return plan
}

// History returns stored audits for a username, newest first.
func (s *Service) History(ctx context.Context, username string, limit int) ([]models.AuditRecord, error) {
	return s.store.ListAudits(ctx, username, limit)
}

// Watch adds a username to the scheduled refresh list.
func (s *Service) Watch(ctx context.Context, username string) error {
	return s.store.WatchAccount(ctx, username)
}

// Unwatch removes a username from the scheduled refresh list.
func (s *Service) Unwatch(ctx context.Context, username string) error {
	return s.store.UnwatchAccount(ctx, username)
}

// RefreshWatchedAccounts re-audits every watched account and alerts on grade
// drops. Accounts are processed sequentially; the scraper rate-limits hard.
func (s *Service) RefreshWatchedAccounts() error {
	start := s.now()
	logrus.Info("Starting scheduled refresh of watched accounts")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	accounts, err := s.store.ListWatchedAccounts(ctx)
	if err != nil {
		s.countError()
		return fmt.Errorf("list watched accounts: %w", err)
	}

	logrus.Infof("Refreshing %d watched accounts", len(accounts))

	refreshed := 0
	for _, account := range accounts {
		record, err := s.AuditAccount(ctx, account.Username, true)
		if err != nil {
			logrus.Errorf("Failed to refresh %s: %v", account.Username, err)
			continue
		}
		refreshed++

		s.maybeAlert(account, record)

		if err := s.store.UpdateWatchedScore(ctx, account.Username,
			record.Result.Score, string(record.Result.Grade)); err != nil {
			logrus.Errorf("Failed to update watched score for %s: %v", account.Username, err)
		}
	}

	s.mu.Lock()
	s.metrics.LastRun = s.now()
	s.metrics.LastRunDuration = s.now().Sub(start).String()
	s.mu.Unlock()

	logrus.Infof("Scheduled refresh completed in %v (%d/%d accounts)",
		s.now().Sub(start), refreshed, len(accounts))
	return nil
}

// maybeAlert notifies when a watched account falls into a lower grade band
// than its previous audit.
func (s *Service) maybeAlert(account models.WatchedAccount, record *models.AuditRecord) {
	if account.LastGrade == "" {
		return // first audit, nothing to compare against
	}

	current := record.Result.Grade
	if gradeRank(current) >= gradeRank(models.Grade(account.LastGrade)) {
		return
	}

	alert := &models.Alert{
		Username:      account.Username,
		Title:         fmt.Sprintf("@%s dropped from %s to %s", account.Username, account.LastGrade, current),
		Message:       record.Result.Summary,
		PreviousScore: account.LastScore,
		CurrentScore:  record.Result.Score,
		PreviousGrade: account.LastGrade,
		CurrentGrade:  string(current),
		CreatedAt:     s.now(),
	}

	if err := s.notifier.SendAlert(alert); err != nil {
		logrus.Errorf("Failed to send alert for %s: %v", account.Username, err)
		return
	}

	s.mu.Lock()
	s.metrics.AlertsSent++
	s.mu.Unlock()
}

func gradeRank(grade models.Grade) int {
	switch grade {
	case models.GradeExcellent:
		return 4
	case models.GradeGood:
		return 3
	case models.GradeNeedsWork:
		return 2
	case models.GradeWarning:
		return 1
	default:
		return 0
	}
}

func (s *Service) countCacheHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.CacheHits++
}

func (s *Service) countError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

func (s *Service) updateMetrics(record *models.AuditRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.TotalAudits++
	s.metrics.GradeBreakdown[string(record.Result.Grade)]++
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

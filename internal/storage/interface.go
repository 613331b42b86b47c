package storage

import (
	"context"
	"errors"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the contract for audit persistence.
type Store interface {
	SaveAudit(ctx context.Context, record *models.AuditRecord) error
	LatestAudit(ctx context.Context, username string) (*models.AuditRecord, error)
	ListAudits(ctx context.Context, username string, limit int) ([]models.AuditRecord, error)

	WatchAccount(ctx context.Context, username string) error
	UnwatchAccount(ctx context.Context, username string) error
	ListWatchedAccounts(ctx context.Context) ([]models.WatchedAccount, error)
	UpdateWatchedScore(ctx context.Context, username string, score int, grade string) error
}

// Archive stores raw scraper payloads for later reprocessing. Optional:
// a nil archive disables archival.
type Archive interface {
	ArchiveSnapshot(ctx context.Context, username string, takenAt time.Time, payload []byte) error
	ListSnapshots(ctx context.Context, username string) ([]string, error)
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/accountdoctor/accountdoctor/internal/models"

	// Postgres driver (Supabase exposes a plain Postgres connection string).
	_ "github.com/lib/pq"
)

// PostgresStore persists audits and watched accounts in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// Open connects to the database and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewPostgresStore creates a store over an open connection.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveAudit inserts a completed audit record.
func (s *PostgresStore) SaveAudit(ctx context.Context, record *models.AuditRecord) error {
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal audit result: %w", err)
	}

	var strategy []byte
	if record.Strategy != nil {
		strategy, err = json.Marshal(record.Strategy)
		if err != nil {
			return fmt.Errorf("marshal strategy plan: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audits (id, username, score, grade, result, strategy, snapshot_taken_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.Username, record.Result.Score, string(record.Result.Grade),
		result, nullableBytes(strategy), record.SnapshotTakenAt, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save audit for %s: %w", record.Username, err)
	}
	return nil
}

// LatestAudit returns the most recent audit for a username.
func (s *PostgresStore) LatestAudit(ctx context.Context, username string) (*models.AuditRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, result, strategy, snapshot_taken_at, created_at
		 FROM audits WHERE username = $1
		 ORDER BY created_at DESC LIMIT 1`,
		username,
	)

	record, err := scanAudit(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest audit for %s: %w", username, err)
	}
	return record, nil
}

// ListAudits returns up to limit audits for a username, newest first.
func (s *PostgresStore) ListAudits(ctx context.Context, username string, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, result, strategy, snapshot_taken_at, created_at
		 FROM audits WHERE username = $1
		 ORDER BY created_at DESC LIMIT $2`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audits for %s: %w", username, err)
	}
	defer rows.Close()

	var records []models.AuditRecord
	for rows.Next() {
		record, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// WatchAccount adds a username to the scheduled refresh list.
func (s *PostgresStore) WatchAccount(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watched_accounts (username) VALUES ($1)
		 ON CONFLICT (username) DO NOTHING`,
		username,
	)
	if err != nil {
		return fmt.Errorf("watch account %s: %w", username, err)
	}
	return nil
}

// UnwatchAccount removes a username from the scheduled refresh list.
func (s *PostgresStore) UnwatchAccount(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watched_accounts WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("unwatch account %s: %w", username, err)
	}
	return nil
}

// ListWatchedAccounts returns every watched account.
func (s *PostgresStore) ListWatchedAccounts(ctx context.Context) ([]models.WatchedAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, added_at, last_score, last_grade
		 FROM watched_accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list watched accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.WatchedAccount
	for rows.Next() {
		var a models.WatchedAccount
		if err := rows.Scan(&a.Username, &a.AddedAt, &a.LastScore, &a.LastGrade); err != nil {
			return nil, fmt.Errorf("scan watched account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateWatchedScore records the latest score for a watched account so the
// next refresh can detect drops.
func (s *PostgresStore) UpdateWatchedScore(ctx context.Context, username string, score int, grade string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE watched_accounts SET last_score = $2, last_grade = $3 WHERE username = $1`,
		username, score, grade,
	)
	if err != nil {
		return fmt.Errorf("update watched score for %s: %w", username, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (*models.AuditRecord, error) {
	var record models.AuditRecord
	var result, strategy []byte

	err := row.Scan(&record.ID, &record.Username, &result, &strategy,
		&record.SnapshotTakenAt, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(result, &record.Result); err != nil {
		return nil, fmt.Errorf("unmarshal audit result: %w", err)
	}
	if len(strategy) > 0 {
		record.Strategy = &models.StrategyPlan{}
		if err := json.Unmarshal(strategy, record.Strategy); err != nil {
			return nil, fmt.Errorf("unmarshal strategy plan: %w", err)
		}
	}
	return &record, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

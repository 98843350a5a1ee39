package tracker

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spigell/jobbot/internal/matching"
)

var (
	ErrDuplicate = errors.New("application already recorded")
	ErrNotFound  = errors.New("application not found")
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApplied     Status = "applied"
	StatusFailed      Status = "failed"
	StatusDuplicate   Status = "duplicate"
	StatusRejected    Status = "rejected"
	StatusInterviewed Status = "interviewed"
	StatusAccepted    Status = "accepted"
)

var statuses = []Status{
	StatusPending, StatusApplied, StatusFailed, StatusDuplicate,
	StatusRejected, StatusInterviewed, StatusAccepted,
}

func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, status := range statuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// Application is one tracked attempt to apply for a job.
type Application struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	JobID       string    `json:"job_id"`
	Platform    string    `json:"platform"`
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Score       float64   `json:"score"`
	Status      Status    `json:"status"`
	RunID       string    `json:"run_id,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Stats struct {
	Total    int
	ByStatus map[Status]int
	// ByPlatform counts only applications in the applied status.
	ByPlatform map[string]int
}

// Store keeps applications in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS applications (
	id          TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL UNIQUE,
	job_id      TEXT NOT NULL,
	platform    TEXT NOT NULL,
	company     TEXT NOT NULL,
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	score       REAL NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	run_id      TEXT NOT NULL DEFAULT '',
	applied_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS applications_job_id ON applications(job_id);`

// fixed width keeps text ordering chronological
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const columns = `id, fingerprint, job_id, platform, company, title, url, score, status, run_id, applied_at, updated_at`

// Open creates the database file and its parent directory when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("tracker: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracker: open db: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("tracker: init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint identifies a job across boards and runs.
func Fingerprint(job *matching.JobRecord) string {
	key := strings.Join([]string{
		normalize(job.Platform),
		normalize(job.Company),
		normalize(job.Title),
		normalize(job.URL),
	}, ":")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Record stores a new application. A job seen before returns ErrDuplicate
// and leaves the stored entry untouched, unless that entry failed: then it is
// replaced in place and keeps its id.
func (s *Store) Record(ctx context.Context, job *matching.JobRecord, status Status, runID string) (*Application, error) {
	if job == nil {
		return nil, fmt.Errorf("tracker: %w: job is nil", matching.ErrInvalidInput)
	}

	now := s.now().UTC()
	app := &Application{
		ID:          uuid.NewString(),
		Fingerprint: Fingerprint(job),
		JobID:       job.ID,
		Platform:    job.Platform,
		Company:     job.Company,
		Title:       job.Title,
		URL:         job.URL,
		Score:       job.Score(),
		Status:      status,
		RunID:       runID,
		AppliedAt:   now,
		UpdatedAt:   now,
	}

	// a failed attempt is overwritten so the job can be retried
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO applications (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
			job_id = excluded.job_id,
			score = excluded.score,
			status = excluded.status,
			run_id = excluded.run_id,
			applied_at = excluded.applied_at,
			updated_at = excluded.updated_at
		 WHERE applications.status = ?
		 RETURNING id`,
		app.ID, app.Fingerprint, app.JobID, app.Platform, app.Company, app.Title, app.URL,
		app.Score, string(app.Status), app.RunID, formatTime(now), formatTime(now),
		string(StatusFailed),
	).Scan(&app.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tracker: %s: %w", job.ID, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("tracker: insert: %w", err)
	}

	return app, nil
}

// IsApplied reports whether the job was already recorded in any status
// other than failed.
func (s *Store) IsApplied(ctx context.Context, job *matching.JobRecord) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE fingerprint = ? AND status != ?`,
		Fingerprint(job), string(StatusFailed),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("tracker: query: %w", err)
	}
	return n > 0, nil
}

// AppliedJobIDs returns the job ids of every non-failed application.
func (s *Store) AppliedJobIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT job_id FROM applications WHERE status != ? ORDER BY job_id`,
		string(StatusFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("tracker: query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("tracker: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns the newest applications first. An empty status lists all;
// a non-positive limit means no limit.
func (s *Store) List(ctx context.Context, status Status, limit int) ([]*Application, error) {
	query := `SELECT ` + columns + ` FROM applications`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY applied_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tracker: query: %w", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// UpdateStatus changes the status of the application with the given id.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(s.now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("tracker: update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tracker: update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tracker: %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStatus:   make(map[Status]int),
		ByPlatform: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT platform, status, COUNT(*) FROM applications GROUP BY platform, status`)
	if err != nil {
		return nil, fmt.Errorf("tracker: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			platform, status string
			n                int
		)
		if err := rows.Scan(&platform, &status, &n); err != nil {
			return nil, fmt.Errorf("tracker: scan: %w", err)
		}
		stats.Total += n
		stats.ByStatus[Status(status)] += n
		if Status(status) == StatusApplied {
			stats.ByPlatform[platform] += n
		}
	}

	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*Application, error) {
	var (
		app                  Application
		status               string
		appliedAt, updatedAt string
	)
	err := row.Scan(&app.ID, &app.Fingerprint, &app.JobID, &app.Platform, &app.Company, &app.Title,
		&app.URL, &app.Score, &status, &app.RunID, &appliedAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("tracker: scan: %w", err)
	}

	app.Status = Status(status)
	app.AppliedAt, _ = time.Parse(timeLayout, appliedAt)
	app.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	return &app, nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hydrosight/ipastat/internal/model"
)

// ErrNotFound is returned for lookups of unknown ids.
var ErrNotFound = eris.New("store: not found")

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens a SQLite database at the given DSN. The default ":memory:"
// DSN keeps everything in process memory; a single connection keeps the
// in-memory database from being dropped between pool connections.
func Open(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: busy_timeout")
	}
	return &SQLiteStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	cca        REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS thresholds (
	project_id TEXT PRIMARY KEY REFERENCES projects(id),
	payload    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	indicator  TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	result     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// Migrate creates the session tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, name string, cca float64) (*Project, error) {
	p := &Project{
		ID:        uuid.New().String(),
		Name:      name,
		CCA:       cca,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, cca, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.CCA, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
	}
	return p, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, cca, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CCA, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get project %s", id)
	}
	return &p, nil
}

func (s *SQLiteStore) SaveThresholds(ctx context.Context, projectID string, ts model.ThresholdSet) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(ts)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal thresholds")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO thresholds (project_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		projectID, string(payload), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save thresholds %s", projectID)
}

func (s *SQLiteStore) GetThresholds(ctx context.Context, projectID string) (model.ThresholdSet, error) {
	var ts model.ThresholdSet
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM thresholds WHERE project_id = ?`, projectID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return ts, ErrNotFound
	}
	if err != nil {
		return ts, eris.Wrapf(err, "sqlite: get thresholds %s", projectID)
	}
	if err := json.Unmarshal([]byte(payload), &ts); err != nil {
		return ts, eris.Wrap(err, "sqlite: unmarshal thresholds")
	}
	return ts, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, projectID, indicator string) (*Run, error) {
	now := time.Now().UTC()
	r := &Run{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Indicator: indicator,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project_id, indicator, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.Indicator, string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return r, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, resultJSON string) error {
	return s.updateRun(ctx, id,
		`UPDATE runs SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusComplete), resultJSON, time.Now().UTC(), id,
	)
}

func (s *SQLiteStore) FailRun(ctx context.Context, id string, msg string) error {
	return s.updateRun(ctx, id,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusFailed), msg, time.Now().UTC(), id,
	)
}

func (s *SQLiteStore) updateRun(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var result, errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, indicator, status, result, error, created_at, updated_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.ProjectID, &r.Indicator, &r.Status, &result, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	r.Result = result.String
	r.Error = errMsg.String
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, project_id, indicator, status, result, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.Indicator != "" {
		query += ` AND indicator = ?`
		args = append(args, filter.Indicator)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var result, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Indicator, &r.Status, &result, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Result = result.String
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// Package store keeps session state: projects, their threshold sets, and
// calculation runs. The default backend is an in-memory SQLite database
// that lives and dies with the process.
package store

import (
	"context"
	"time"

	"github.com/hydrosight/ipastat/internal/model"
)

// RunStatus tracks a calculation run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Project is one irrigation scheme under assessment.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CCA       float64   `json:"cca"`
	CreatedAt time.Time `json:"created_at"`
}

// Run is one calculation request and its outcome. Result holds the
// indicator result as JSON.
type Run struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Indicator string    `json:"indicator"`
	Status    RunStatus `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	ProjectID string
	Indicator string
	Status    RunStatus
	Limit     int
}

// Store is the session-state contract used by the serve boundary.
type Store interface {
	CreateProject(ctx context.Context, name string, cca float64) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)

	SaveThresholds(ctx context.Context, projectID string, ts model.ThresholdSet) error
	GetThresholds(ctx context.Context, projectID string) (model.ThresholdSet, error)

	CreateRun(ctx context.Context, projectID, indicator string) (*Run, error)
	CompleteRun(ctx context.Context, id string, resultJSON string) error
	FailRun(ctx context.Context, id string, msg string) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Close() error
}

// Package state records batch check runs in SQLite so that results can be
// listed and compared later.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/leapscan/internal/batch"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the outcome of a recorded run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one recorded batch check.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Source      string     `json:"source" yaml:"source"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Total       int        `json:"total" yaml:"total"`
	Failed      int        `json:"failed" yaml:"failed"`
}

// LineRecord is the stored outcome of one statement line.
type LineRecord struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Line      int    `json:"line" yaml:"line"`
	SQL       string `json:"sql" yaml:"sql"`
	OK        bool   `json:"ok" yaml:"ok"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorPos  int    `json:"error_pos" yaml:"error_pos"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Where     string `json:"where,omitempty" yaml:"where,omitempty"`
}

// Store persists run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(source string, startedAt time.Time) (*Run, error)
	CompleteRun(id string, total, failed int, completedAt time.Time) error
	RecordReport(report *batch.Report) (*Run, error)
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	ListLineResults(runID string) ([]*LineRecord, error)
}

var _ Store = (*SQLiteStore)(nil)

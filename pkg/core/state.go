package core

import "time"

// Store defines the interface for run history persistence.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(inputDir, format string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	ListRuns(limit int) ([]*Run, error)

	// File operations
	RecordFile(runID string, result *FileResult) error
	GetFileRuns(runID string) ([]*FileRun, error)
	GetWarnings(fileRunID string) ([]Warning, error)
}

// RunStatus represents the status of a batch run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents one batch conversion session.
type Run struct {
	ID          string     `json:"id"`
	InputDir    string     `json:"input_dir"`
	Format      string     `json:"format"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// FileStatus represents the outcome of converting one file.
type FileStatus string

// File status constants.
const (
	FileStatusSuccess FileStatus = "success"
	FileStatusFailed  FileStatus = "failed"
)

// FileResult is the outcome of converting one input file.
type FileResult struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Reader   ReaderKind    `json:"reader,omitempty"`
	Status   FileStatus    `json:"status"`
	Records  int           `json:"records"`
	Warnings []Warning     `json:"warnings,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed reports whether the file could not be converted.
func (r *FileResult) Failed() bool {
	return r.Status == FileStatusFailed
}

// FileRun is a persisted FileResult.
type FileRun struct {
	ID           string     `json:"id"`
	RunID        string     `json:"run_id"`
	InputPath    string     `json:"input_path"`
	OutputPath   string     `json:"output_path,omitempty"`
	Reader       ReaderKind `json:"reader,omitempty"`
	Status       FileStatus `json:"status"`
	Records      int        `json:"records"`
	WarningCount int        `json:"warning_count"`
	Error        string     `json:"error,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BatchResult aggregates the file results of one run.
type BatchResult struct {
	RunID string        `json:"run_id,omitempty"`
	Files []*FileResult `json:"files"`
}

// Failed returns the number of files that could not be converted.
func (b *BatchResult) Failed() int {
	n := 0
	for _, f := range b.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

// Records returns the total number of records written.
func (b *BatchResult) Records() int {
	n := 0
	for _, f := range b.Files {
		n += f.Records
	}
	return n
}

// Warnings returns the total number of warnings emitted.
func (b *BatchResult) Warnings() int {
	n := 0
	for _, f := range b.Files {
		n += len(f.Warnings)
	}
	return n
}

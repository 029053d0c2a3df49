package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/leapstack-labs/flatconv/pkg/core"
)

// RecordFile stores one file result and its warnings in a single
// transaction.
func (s *SQLiteStore) RecordFile(runID string, result *core.FileResult) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id := generateID()
	_, err = tx.Exec(
		`INSERT INTO file_runs (id, run_id, input_path, output_path, reader, status, records, warning_count, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, runID, result.Input, nullString(result.Output), nullString(string(result.Reader)),
		string(result.Status), result.Records, len(result.Warnings), nullString(result.Error),
		result.Duration.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record file %s: %w", result.Input, err)
	}

	for _, w := range result.Warnings {
		_, err = tx.Exec(
			`INSERT INTO file_warnings (file_run_id, line, field, code, message) VALUES (?, ?, ?, ?, ?)`,
			id, w.Line, nullString(w.Field), string(w.Code), w.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to record warning: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file record: %w", err)
	}
	return nil
}

// GetFileRuns returns the files of a run in the order they were recorded.
func (s *SQLiteStore) GetFileRuns(runID string) ([]*core.FileRun, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, input_path, output_path, reader, status, records, warning_count, error, duration_ms, created_at
		 FROM file_runs WHERE run_id = ? ORDER BY created_at, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file runs: %w", err)
	}
	defer rows.Close()

	var files []*core.FileRun
	for rows.Next() {
		f := &core.FileRun{}
		var output, reader, errMsg sql.NullString
		var status string
		if err := rows.Scan(&f.ID, &f.RunID, &f.InputPath, &output, &reader, &status,
			&f.Records, &f.WarningCount, &errMsg, &f.DurationMS, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file run: %w", err)
		}
		f.OutputPath = output.String
		f.Reader = core.ReaderKind(reader.String)
		f.Status = core.FileStatus(status)
		f.Error = errMsg.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetWarnings returns the warnings recorded for a file run in emission order.
func (s *SQLiteStore) GetWarnings(fileRunID string) ([]core.Warning, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT f.input_path, w.line, w.field, w.code, w.message
		 FROM file_warnings w JOIN file_runs f ON f.id = w.file_run_id
		 WHERE w.file_run_id = ? ORDER BY w.id`, fileRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings: %w", err)
	}
	defer rows.Close()

	var warnings []core.Warning
	for rows.Next() {
		var w core.Warning
		var field sql.NullString
		var code string
		if err := rows.Scan(&w.File, &w.Line, &field, &code, &w.Message); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		w.Field = field.String
		w.Code = core.WarningCode(code)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

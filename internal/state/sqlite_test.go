package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/flatconv/internal/testutil"
	"github.com/leapstack-labs/flatconv/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"), "failed to open store")
	require.NoError(t, store.InitSchema(), "failed to init schema")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	assert.EqualError(t, store.InitSchema(), "database not opened")
	_, err := store.CreateRun("input", "xml")
	assert.EqualError(t, err, "database not opened")
	assert.EqualError(t, store.RecordFile("x", &core.FileResult{}), "database not opened")
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_InitSchema(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "file_runs", "file_warnings"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if assert.NoError(t, err, "table %s does not exist", table) {
			_ = rows.Close()
		}
	}

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running migrations again is a no-op.
	require.NoError(t, store.InitSchema())
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".flatconv", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer store.Close()
	require.NoError(t, store.InitSchema())

	run, err := store.CreateRun("input", "json")
	require.NoError(t, err)
	_, err = store.GetRun(run.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("data/input", "xml")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, core.RunStatusRunning, run.Status)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "data/input", got.InputDir)
	assert.Equal(t, "xml", got.Format)
	assert.Equal(t, core.RunStatusRunning, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Second)

	require.NoError(t, store.CompleteRun(run.ID, core.RunStatusFailed, "1 file(s) failed"))

	got, err = store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusFailed, got.Status)
	assert.Equal(t, "1 file(s) failed", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun("missing")
	assert.EqualError(t, err, "run not found: missing")

	err = store.CompleteRun("missing", core.RunStatusCompleted, "")
	assert.EqualError(t, err, "run not found: missing")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for range 3 {
		run, err := store.CreateRun("input", "json")
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest run first")
	assert.Equal(t, ids[1], runs[1].ID)

	runs, err = store.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLiteStore_RecordFile(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("input", "xml")
	require.NoError(t, err)

	ok := &core.FileResult{
		Input:    "input/emp.txt",
		Output:   "output/emp.xml",
		Reader:   core.ReaderFixedWidth,
		Status:   core.FileStatusSuccess,
		Records:  12,
		Duration: 1500 * time.Millisecond,
		Warnings: []core.Warning{
			{File: "input/emp.txt", Line: 3, Field: "Name", Code: core.WarnTruncatedField, Message: "short"},
			{File: "input/emp.txt", Line: 7, Code: core.WarnLookupMiss, Message: "miss"},
		},
	}
	failed := &core.FileResult{
		Input:  "input/other.csv",
		Status: core.FileStatusFailed,
		Error:  "schema document not found",
	}
	require.NoError(t, store.RecordFile(run.ID, ok))
	require.NoError(t, store.RecordFile(run.ID, failed))

	files, err := store.GetFileRuns(run.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	first := files[0]
	assert.Equal(t, run.ID, first.RunID)
	assert.Equal(t, "input/emp.txt", first.InputPath)
	assert.Equal(t, "output/emp.xml", first.OutputPath)
	assert.Equal(t, core.ReaderFixedWidth, first.Reader)
	assert.Equal(t, core.FileStatusSuccess, first.Status)
	assert.Equal(t, 12, first.Records)
	assert.Equal(t, 2, first.WarningCount)
	assert.Equal(t, int64(1500), first.DurationMS)

	second := files[1]
	assert.Equal(t, core.FileStatusFailed, second.Status)
	assert.Equal(t, "schema document not found", second.Error)
	assert.Empty(t, second.OutputPath)

	warnings, err := store.GetWarnings(first.ID)
	require.NoError(t, err)
	assert.Equal(t, ok.Warnings, warnings)

	warnings, err = store.GetWarnings(second.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestSQLiteStore_RecordFileUnknownRun(t *testing.T) {
	store := setupTestStore(t)

	err := store.RecordFile("no-such-run", &core.FileResult{Input: "a.txt", Status: core.FileStatusSuccess})
	require.Error(t, err, "foreign key should reject unknown run")

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM file_runs").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteStore_RecordFileRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		errMsg string
	}{
		{
			name: "begin fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("locked"))
			},
			errMsg: "failed to begin transaction: locked",
		},
		{
			name: "file insert fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO file_runs").WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			errMsg: "failed to record file a.txt: disk full",
		},
		{
			name: "warning insert fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO file_runs").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO file_warnings").WillReturnError(errors.New("constraint"))
				mock.ExpectRollback()
			},
			errMsg: "failed to record warning: constraint",
		},
		{
			name: "commit fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO file_runs").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO file_warnings").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(errors.New("io"))
			},
			errMsg: "failed to commit file record: io",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			store := newWithDB(db)
			err = store.RecordFile("run-1", &core.FileResult{
				Input:    "a.txt",
				Status:   core.FileStatusSuccess,
				Warnings: []core.Warning{{Line: 1, Code: core.WarnShortLine, Message: "m"}},
			})
			assert.EqualError(t, err, tt.errMsg)
		})
	}
}

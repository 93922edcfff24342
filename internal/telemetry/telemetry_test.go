package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, path string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))

	return n
}

func snapshotAt(minute int) *Snapshot {
	ts := time.Date(2024, 7, 1, 12, minute, 0, 0, time.UTC)
	return FromOutcome("devices/campus/building/rtu1/all", econ.Outcome{Timestamp: ts, Stage: econ.StageFanOff})
}

func TestFromOutcome(t *testing.T) {
	ts := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	early := FromOutcome("t", econ.Outcome{Timestamp: ts, Stage: econ.StageMissingData})
	assert.Equal(t, econ.StageMissingData, early.Stage)
	assert.Nil(t, early.OAT)
	assert.Nil(t, early.FanSpeed)

	full := FromOutcome("t", econ.Outcome{
		Timestamp: ts,
		Stage:     econ.StageDiagnosed,
		Verdict:   econ.VerdictHealthy,
		Reading:   &econ.Reading{OAT: 60, RAT: 75, MAT: 70, OAD: 30, FanSpeed: 80, HasFanSpeed: true},
		Records:   make([]econ.Record, 3),
	})
	assert.Equal(t, 3, full.Records)
	require.NotNil(t, full.OAT)
	assert.InDelta(t, 60.0, *full.OAT, 1e-9)
	require.NotNil(t, full.FanSpeed)
	assert.InDelta(t, 80.0, *full.FanSpeed, 1e-9)

	noSpeed := FromOutcome("t", econ.Outcome{Reading: &econ.Reading{FanSpeed: 0}})
	assert.Nil(t, noSpeed.FanSpeed)
}

func TestRepositoryBatchesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	repo, err := NewRepository(Config{Enabled: true, DBPath: path, BatchSize: 2}, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, repo.Record(snapshotAt(0)))
	assert.Equal(t, 0, countRows(t, path), "buffered until batch size")

	require.NoError(t, repo.Record(snapshotAt(1)))
	assert.Equal(t, 2, countRows(t, path))

	require.NoError(t, repo.Record(snapshotAt(2)))
	require.NoError(t, repo.Close())
	assert.Equal(t, 3, countRows(t, path), "close flushes the buffer")
	require.NoError(t, repo.Close())
}

func TestRepositoryStoresNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	repo, err := NewRepository(Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)

	oat := 61.5
	require.NoError(t, repo.Record(&Snapshot{
		Timestamp: time.Unix(1719835200, 0),
		Topic:     "t",
		Stage:     econ.StageSensorPending,
		OAT:       &oat,
	}))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var (
		ts      int64
		stage   string
		verdict string
		gotOAT  sql.NullFloat64
		gotFan  sql.NullFloat64
	)
	require.NoError(t, db.QueryRow("SELECT timestamp, stage, verdict, oat, fan_speed FROM snapshots").
		Scan(&ts, &stage, &verdict, &gotOAT, &gotFan))
	assert.Equal(t, int64(1719835200), ts)
	assert.Equal(t, "sensor_pending", stage)
	assert.Equal(t, "unknown", verdict)
	assert.True(t, gotOAT.Valid)
	assert.InDelta(t, 61.5, gotOAT.Float64, 1e-9)
	assert.False(t, gotFan.Valid)
}

func TestSchemaVersionMismatchRecreates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telemetry.db")

	repo, err := NewRepository(Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Record(snapshotAt(0)))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_versions (version, applied_at) VALUES (99, datetime('now'))")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err = NewRepository(Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	assert.Equal(t, 0, countRows(t, path), "old rows dropped with the schema")

	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := NewRepository(Config{Enabled: true}, logger.Nop())
	code, ok := errors.Code(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidDBPath, code)
}

func TestServiceDisabled(t *testing.T) {
	c, err := NewService(DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	assert.IsType(t, &noopCollector{}, c)
	assert.NoError(t, c.Record(context.Background(), snapshotAt(0)))
	assert.NoError(t, c.Close())
}

func TestServiceRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")
	c, err := NewService(Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)

	code, ok := errors.Code(c.Record(context.Background(), nil))
	require.True(t, ok)
	assert.Equal(t, ErrInvalidSnapshot, code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, ok = errors.Code(c.Record(ctx, snapshotAt(0)))
	require.True(t, ok)
	assert.Equal(t, ErrOperationTimeout, code)

	require.NoError(t, c.Record(context.Background(), snapshotAt(1)))
	require.NoError(t, c.Close())
	assert.Equal(t, 1, countRows(t, path))
}

func TestRepositoryCapsBufferWhenFlushFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	repo, err := NewRepository(Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)
	r := repo.(*repository)
	require.NoError(t, r.db.Close())

	for minute := 0; minute < 150; minute++ {
		require.Error(t, r.Record(snapshotAt(minute)))
	}

	require.Len(t, r.buffer, minBufferLimit)
	assert.Equal(t, snapshotAt(50).Timestamp, r.buffer[0].Timestamp, "oldest snapshots dropped first")
	assert.Equal(t, snapshotAt(149).Timestamp, r.buffer[minBufferLimit-1].Timestamp)
}

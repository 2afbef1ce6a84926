package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/tuxedoctl/internal/telemetry"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, telemetry.Config{Enabled: false}.Validate())
	assert.NoError(t, telemetry.Config{Enabled: true, DBPath: "/tmp/t.db"}.Validate())
	assert.Error(t, telemetry.Config{Enabled: true}.Validate())
}

func TestDisabledServiceIsNoop(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	event := &telemetry.ControlEvent{Timestamp: time.Now(), FanID: "fan1", TargetDuty: 50}
	assert.NoError(t, collector.Record(context.Background(), event))
	assert.NoError(t, collector.Close())
}

func TestRecordPersistsControlEvent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	collector, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)

	event := &telemetry.ControlEvent{
		Timestamp:  time.Now(),
		Profile:    "Gaming",
		CPUTemp:    67.5,
		GPUTemp:    72.0,
		FanID:      "fan1",
		TargetDuty: 65,
	}
	require.NoError(t, collector.Record(context.Background(), event))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var profile, fanID string
	var duty int
	var cpuTemp float64
	row := db.QueryRow("SELECT profile, fan_id, target_duty, cpu_temp FROM control_events")
	require.NoError(t, row.Scan(&profile, &fanID, &duty, &cpuTemp))

	assert.Equal(t, "Gaming", profile)
	assert.Equal(t, "fan1", fanID)
	assert.Equal(t, 65, duty)
	assert.InDelta(t, 67.5, cpuTemp, 0.001)
}

func TestRecordNilEvent(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: true,
		DBPath:  filepath.Join(t.TempDir(), "telemetry.db"),
	})
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}

func TestRecordCancelledContext(t *testing.T) {
	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: true,
		DBPath:  filepath.Join(t.TempDir(), "telemetry.db"),
	})
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := &telemetry.ControlEvent{Timestamp: time.Now(), FanID: "fan1"}
	assert.Error(t, collector.Record(ctx, event))
}

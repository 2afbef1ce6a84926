// Package daemon runs the background control loops: periodic fan speed
// regulation from the active profile's curves, and process-triggered
// profile switching.
package daemon

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
	"codeberg.org/mutker/tuxedoctl/internal/sensors"
	"codeberg.org/mutker/tuxedoctl/internal/telemetry"
)

const (
	DefaultInterval = 2 * time.Second

	// fallbackTemp drives the curve when no usable sensor exists, so
	// fans keep a moderate speed instead of stopping
	fallbackTemp = 50.0

	stopTimeout = 5 * time.Second
)

// statsProvider yields per-tick hardware snapshots
type statsProvider interface {
	SystemStats() (sensors.SystemStats, error)
}

// fanWriter applies a duty percentage to a named fan
type fanWriter interface {
	SetFanSpeed(fanID string, duty int) error
}

// FanDaemon periodically evaluates the active profile's fan curves
// against current temperatures and writes the resulting duty cycles.
type FanDaemon struct {
	monitor   statsProvider
	writer    fanWriter
	collector telemetry.Collector
	interval  time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	current profile.Profile
}

func NewFanDaemon(monitor statsProvider, writer fanWriter, collector telemetry.Collector, interval time.Duration) *FanDaemon {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &FanDaemon{
		monitor:   monitor,
		writer:    writer,
		collector: collector,
		interval:  interval,
	}
}

// Start launches the control loop with the given profile. Calling Start
// while the loop is already running only swaps the profile.
func (d *FanDaemon) Start(p profile.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.current = p

	if d.running {
		logger.Debug().Str("profile", p.Name).Msg("Fan daemon already running, profile updated")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	go d.loop(ctx, d.done)

	logger.Info().Str("profile", p.Name).Dur("interval", d.interval).Msg("Fan daemon started")
}

// UpdateProfile swaps the profile driving the loop. The new curves take
// effect on the next tick.
func (d *FanDaemon) UpdateProfile(p profile.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.current = p
}

// Stop cancels the loop and waits for the current tick to finish, up to
// a bounded timeout. Stopping an idle daemon is a no-op.
func (d *FanDaemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}

	d.running = false
	cancel := d.cancel
	done := d.done
	d.mu.Unlock()

	cancel()

	select {
	case <-done:
		logger.Info().Msg("Fan daemon stopped")
	case <-time.After(stopTimeout):
		logger.Warn().Msg("Fan daemon did not stop within timeout")
	}
}

func (d *FanDaemon) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.running
}

func (d *FanDaemon) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *FanDaemon) tick(ctx context.Context) {
	d.mu.Lock()
	current := d.current
	d.mu.Unlock()

	if len(current.FanCurves) == 0 {
		return
	}

	stats, err := d.monitor.SystemStats()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read sensors, skipping tick")
		return
	}

	for fanID, curve := range current.FanCurves {
		temp := selectTemperature(fanID, stats)
		duty := curve.Speed(temp)

		if err := d.writer.SetFanSpeed(fanID, duty); err != nil {
			logger.Warn().Err(err).Str("fan", fanID).Msg("Failed to set fan speed")
			continue
		}

		logger.Debug().
			Str("fan", fanID).
			Float64("temp", temp).
			Int("duty", duty).
			Msg("Fan speed updated")

		d.record(ctx, current.Name, fanID, duty, stats)
	}
}

func (d *FanDaemon) record(ctx context.Context, profileName, fanID string, duty int, stats sensors.SystemStats) {
	if d.collector == nil {
		return
	}

	event := &telemetry.ControlEvent{
		Timestamp:  time.Now(),
		Profile:    profileName,
		FanID:      fanID,
		TargetDuty: duty,
	}
	if stats.CPU.PackageTemp != nil {
		event.CPUTemp = *stats.CPU.PackageTemp
	}
	if t := firstGPUTemperature(stats); t != nil {
		event.GPUTemp = *t
	}

	if err := d.collector.Record(ctx, event); err != nil {
		logger.Debug().Err(err).Msg("Failed to record control event")
	}
}

// selectTemperature maps a fan to the sensor that should drive it. CPU
// fans follow the package temperature, GPU fans the first GPU, and
// unrecognized fans the hotter of the two.
func selectTemperature(fanID string, stats sensors.SystemStats) float64 {
	id := strings.ToLower(fanID)

	switch {
	case strings.Contains(id, "cpu") || id == "fan1":
		if stats.CPU.PackageTemp != nil {
			return *stats.CPU.PackageTemp
		}
	case strings.Contains(id, "gpu") || id == "fan2":
		if t := firstGPUTemperature(stats); t != nil {
			return *t
		}
	default:
		return maxTemperature(stats)
	}

	return fallbackTemp
}

func firstGPUTemperature(stats sensors.SystemStats) *float64 {
	for _, gpu := range stats.GPUs {
		if gpu.Temperature != nil {
			return gpu.Temperature
		}
	}

	return nil
}

// maxTemperature takes the hotter of the CPU and GPU readings. Each
// missing reading counts as fallbackTemp so a lone cool sensor cannot
// idle a fan that may also cool an unmonitored component.
func maxTemperature(stats sensors.SystemStats) float64 {
	cpuTemp := fallbackTemp
	if stats.CPU.PackageTemp != nil {
		cpuTemp = *stats.CPU.PackageTemp
	}

	gpuTemp := fallbackTemp
	if t := firstGPUTemperature(stats); t != nil {
		gpuTemp = *t
	}

	return math.Max(cpuTemp, gpuTemp)
}

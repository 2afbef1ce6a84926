package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/tuxedoctl/internal/config"
	"codeberg.org/mutker/tuxedoctl/internal/controller"
	"codeberg.org/mutker/tuxedoctl/internal/hwctl"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
	"codeberg.org/mutker/tuxedoctl/internal/sensors"
	"codeberg.org/mutker/tuxedoctl/internal/sysfs"
	"codeberg.org/mutker/tuxedoctl/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	initLogger()
	logger.Debug().Msg("Config loaded")
}

func initLogger() {
	logger.Init(cfg.LogLevel == "debug", cfg.LogLevel == "info", logger.IsService())

	switch cfg.LogLevel {
	case "warning":
		logger.SetLogLevel(logger.WarnLevel)
	case "error":
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func main() {
	fs := sysfs.New()
	monitor := sensors.NewMonitor(fs)
	defer monitor.Close()

	hw := hwctl.New(fs)
	if !cfg.Monitor && !hw.HasControlPrivileges() {
		logger.Warn().Msg("Running without hardware write access, most controls will fail")
	}

	profilesPath := cfg.ProfilesPath
	if profilesPath == "" {
		var err error
		profilesPath, err = profile.DefaultPath()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to resolve profiles path")
		}
	}

	store, err := profile.NewStore(profilesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load profiles")
	}

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  telemetryDBPath(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer collector.Close()

	ctrl := controller.New(store, hw, monitor, collector,
		time.Duration(cfg.Interval)*time.Second,
		time.Duration(cfg.ScanInterval)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if cfg.Monitor {
		monitorLoop(ctx, ctrl)
		logger.Info().Msg("Exiting...")
		return
	}

	report := ctrl.ReapplyActive()
	if !report.OK() {
		for _, failure := range report.Failed() {
			logger.Warn().Err(failure.Err).Str("category", failure.Category).Msg("Profile category not applied")
		}
	}

	ctrl.StartFanControl()
	if anyAutoSwitch(store.Profiles()) {
		ctrl.StartAppMonitoring()
	}

	<-ctx.Done()

	ctrl.Shutdown()
	logger.Info().Msg("Exiting...")
}

func anyAutoSwitch(profiles []profile.Profile) bool {
	for i := range profiles {
		if profiles[i].AutoSwitchEnabled {
			return true
		}
	}

	return false
}

func telemetryDBPath() string {
	if cfg.TelemetryDB != "" {
		return cfg.TelemetryDB
	}

	return telemetry.DefaultConfig().DBPath
}

// monitorLoop logs hardware readings without touching any controls.
func monitorLoop(ctx context.Context, ctrl *controller.Controller) {
	logger.Info().Msg("Monitor mode activated. Logging hardware status...")

	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := ctrl.Stats()
			if err != nil {
				logger.Error().Err(err).Msg("failed to read sensors")
				continue
			}
			logStats(stats)
		}
	}
}

func logStats(stats sensors.SystemStats) {
	chain := logger.Info().Str("cpu_model", stats.CPU.Model)
	if stats.CPU.PackageTemp != nil {
		chain = chain.Float64("cpu_temp", *stats.CPU.PackageTemp)
	}
	for i, gpu := range stats.GPUs {
		if gpu.Temperature != nil {
			chain = chain.Float64(fmt.Sprintf("gpu%d_temp", i), *gpu.Temperature)
		}
	}
	for _, fan := range stats.Fans {
		if fan.SpeedRPM != nil {
			chain = chain.Int(fan.FanID+"_rpm", *fan.SpeedRPM)
		}
	}
	if stats.Battery.Present && stats.Battery.ChargePercent != nil {
		chain = chain.Int("battery_percent", *stats.Battery.ChargePercent)
	}

	chain.Str("active_gpu", string(stats.ActiveGPU)).Msg("")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

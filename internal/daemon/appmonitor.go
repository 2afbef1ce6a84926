package daemon

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
)

const DefaultScanInterval = 5 * time.Second

// watchedApps are the launcher signatures that can trigger a profile
// switch when they appear in a running process's command line
var watchedApps = []string{"steam", "lutris", "gamemode"}

// processLister returns the command lines of currently running processes
type processLister func() ([]string, error)

// AppMonitor scans the process table for trigger applications and
// switches to the matching profile when one appears. A profile switch is
// never reverted when the application exits.
type AppMonitor struct {
	store     *profile.Store
	switchTo  func(index int) error
	listProcs processLister
	interval  time.Duration

	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
	lastDetected string
}

func NewAppMonitor(store *profile.Store, switchTo func(index int) error, interval time.Duration) *AppMonitor {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	return &AppMonitor{
		store:     store,
		switchTo:  switchTo,
		listProcs: runningCommandLines,
		interval:  interval,
	}
}

// Start launches the scan loop. Calling Start on a running monitor is a
// no-op.
func (m *AppMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx, m.done)

	logger.Info().Dur("interval", m.interval).Msg("App monitor started")
}

// Stop cancels the scan loop and waits for it to finish, up to a
// bounded timeout.
func (m *AppMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}

	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()

	select {
	case <-done:
		logger.Info().Msg("App monitor stopped")
	case <-time.After(stopTimeout):
		logger.Warn().Msg("App monitor did not stop within timeout")
	}
}

func (m *AppMonitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

func (m *AppMonitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.scan()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scan()
		}
	}
}

func (m *AppMonitor) scan() {
	procs, err := m.listProcs()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to scan process table")
		return
	}

	detected := detectApp(procs)

	m.mu.Lock()
	changed := detected != m.lastDetected
	m.lastDetected = detected
	m.mu.Unlock()

	if !changed || detected == "" {
		return
	}

	index, found := m.store.FindProfileForApp(detected)
	if !found {
		logger.Debug().Str("app", detected).Msg("No profile registered for detected app")
		return
	}

	if index == m.store.ActiveIndex() {
		return
	}

	logger.Info().Str("app", detected).Msg("Trigger application detected, switching profile")

	if err := m.switchTo(index); err != nil {
		logger.Warn().Err(err).Str("app", detected).Msg("Failed to switch profile")
	}
}

// detectApp returns the first watched application found among the
// running processes, or empty when none is running.
func detectApp(procs []string) string {
	for _, app := range watchedApps {
		for _, proc := range procs {
			if strings.Contains(proc, app) {
				return app
			}
		}
	}

	return ""
}

// runningCommandLines enumerates the full command line of every
// running process. The command line is used rather than the comm name
// so a trigger buried in arguments, such as "sh -c steam://run", is
// still detected.
func runningCommandLines() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	cmdlines := make([]string, 0, len(procs))
	for _, p := range procs {
		cmdline, err := p.Cmdline()
		if err != nil || cmdline == "" {
			continue
		}
		cmdlines = append(cmdlines, strings.ToLower(cmdline))
	}

	return cmdlines, nil
}

// Package hwctl applies profile settings to hardware through sysfs,
// trying competing backend conventions in a fixed priority order.
// Full-profile application is best-effort: each settings category runs
// independently and a failing category never blocks the next one.
package hwctl

import (
	"os"
	"os/exec"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
	"codeberg.org/mutker/tuxedoctl/internal/sysfs"
)

const (
	cpuBasePath      = "/sys/devices/system/cpu"
	hwmonBasePath    = "/sys/class/hwmon"
	tuxedoBasePath   = "/sys/devices/platform/tuxedo_io"
	keyboardBasePath = "/sys/class/leds/rgb:kbd_backlight"
	backlightBase    = "/sys/class/backlight"
	procCPUInfoPath  = "/proc/cpuinfo"
)

// Controller writes control values to sysfs nodes
type Controller struct {
	fs *sysfs.FS

	cpuBase      string
	hwmonBase    string
	tuxedoBase   string
	keyboardBase string
	backlight    string
	procCPUInfo  string

	runCommand func(name string, args ...string) ([]byte, error)
}

func New(fs *sysfs.FS) *Controller {
	return &Controller{
		fs:           fs,
		cpuBase:      cpuBasePath,
		hwmonBase:    hwmonBasePath,
		tuxedoBase:   tuxedoBasePath,
		keyboardBase: keyboardBasePath,
		backlight:    backlightBase,
		procCPUInfo:  procCPUInfoPath,
		runCommand: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// CategoryResult records the outcome of applying one settings category
type CategoryResult struct {
	Category string
	Err      error
}

// ApplyReport aggregates per-category outcomes of a profile application
type ApplyReport struct {
	Profile string
	Results []CategoryResult
}

// OK reports whether every category applied cleanly
func (r ApplyReport) OK() bool {
	for _, result := range r.Results {
		if result.Err != nil {
			return false
		}
	}

	return true
}

// Failed returns the categories that did not apply
func (r ApplyReport) Failed() []CategoryResult {
	var failed []CategoryResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}

	return failed
}

// ApplyProfile applies every settings category of a profile, collecting
// outcomes instead of stopping at the first failure.
func (c *Controller) ApplyProfile(p profile.Profile) ApplyReport {
	logger.Info().Str("profile", p.Name).Msg("Applying profile")

	report := ApplyReport{Profile: p.Name}

	steps := []struct {
		category string
		apply    func() error
	}{
		{"keyboard", func() error { return c.ApplyKeyboard(p.KeyboardBacklight) }},
		{"fan_curves", func() error { return c.ApplyFanCurves(p.FanCurves) }},
		{"cpu", func() error { return c.ApplyCPUSettings(p.CPUSettings) }},
		{"screen", func() error { return c.ApplyScreenBrightness(p.ScreenSettings.Brightness) }},
	}

	for _, step := range steps {
		err := step.apply()
		if err != nil {
			logger.Warn().Err(err).Str("category", step.category).Msg("Failed to apply settings category")
		}
		report.Results = append(report.Results, CategoryResult{Category: step.category, Err: err})
	}

	return report
}

// HasControlPrivileges probes whether hardware writes are likely to
// succeed. Known control nodes must at least be readable, and sysfs
// writes generally require root.
func (c *Controller) HasControlPrivileges() bool {
	probes := []string{
		c.cpuBase + "/cpu0/cpufreq/scaling_governor",
		c.cpuBase + "/smt/control",
	}

	for _, path := range probes {
		if !c.fs.Exists(path) {
			continue
		}
		if _, err := c.fs.ReadString(path); err != nil {
			return false
		}
	}

	return os.Geteuid() == 0
}

// SwitchGPU selects the active GPU with prime-select. The change takes
// effect after a restart.
func (c *Controller) SwitchGPU(useDiscrete bool) error {
	errFactory := errors.New()

	mode := "intel"
	if useDiscrete {
		mode = "nvidia"
	}

	if _, err := c.runCommand("prime-select", mode); err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err).WithMessage("prime-select failed")
	}

	logger.Info().Str("mode", mode).Msg("GPU switched, restart required to take effect")

	return nil
}

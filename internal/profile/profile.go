// Package profile defines the persisted hardware-setting bundles and the
// store that owns them.
package profile

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
)

// RGBColor is one keyboard backlight color channel triple
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// KeyboardBacklight holds the RGB color and brightness percentage
type KeyboardBacklight struct {
	Color      RGBColor `json:"color"`
	Brightness int      `json:"brightness"`
}

// PerformanceProfile selects the CPU frequency-scaling policy
type PerformanceProfile string

const (
	PowerSave   PerformanceProfile = "PowerSave"
	Balanced    PerformanceProfile = "Balanced"
	Performance PerformanceProfile = "Performance"
)

// Governor returns the kernel governor name for the profile
func (p PerformanceProfile) Governor() string {
	switch p {
	case PowerSave:
		return "powersave"
	case Performance:
		return "performance"
	default:
		return "schedutil"
	}
}

func (p PerformanceProfile) IsValid() bool {
	switch p {
	case PowerSave, Balanced, Performance:
		return true
	default:
		return false
	}
}

// CPUSettings bundles frequency-scaling targets. Nil frequency bounds mean
// "leave unset". MinFreqMHz > MaxFreqMHz is deliberately not rejected; the
// kernel write path decides what to do with an inverted range.
type CPUSettings struct {
	PerformanceProfile PerformanceProfile `json:"performance_profile"`
	MinFreqMHz         *uint              `json:"min_freq_mhz"`
	MaxFreqMHz         *uint              `json:"max_freq_mhz"`
	DisableBoost       bool               `json:"disable_boost"`
	SMTEnabled         bool               `json:"smt_enabled"`
}

// ScreenSettings holds display brightness targets
type ScreenSettings struct {
	Brightness     int  `json:"brightness"`
	AutoBrightness bool `json:"auto_brightness"`
}

// Profile is a named bundle of hardware settings plus auto-switch triggers
type Profile struct {
	Name              string              `json:"name"`
	IsDefault         bool                `json:"is_default"`
	KeyboardBacklight KeyboardBacklight   `json:"keyboard_backlight"`
	FanCurves         map[string]FanCurve `json:"fan_curves"`
	CPUSettings       CPUSettings         `json:"cpu_settings"`
	ScreenSettings    ScreenSettings      `json:"screen_settings"`
	AutoSwitchEnabled bool                `json:"auto_switch_enabled"`
	TriggerApps       []string            `json:"trigger_apps"`
}

// Default returns the synthesized fallback profile used when the store is empty
func Default() Profile {
	return Profile{
		Name:      "Default",
		IsDefault: true,
		KeyboardBacklight: KeyboardBacklight{
			Color:      RGBColor{R: 255, G: 255, B: 255},
			Brightness: 50,
		},
		FanCurves: map[string]FanCurve{
			"fan1": DefaultCurve(),
			"fan2": DefaultCurve(),
		},
		CPUSettings: CPUSettings{
			PerformanceProfile: Balanced,
			DisableBoost:       false,
			SMTEnabled:         true,
		},
		ScreenSettings: ScreenSettings{
			Brightness:     70,
			AutoBrightness: false,
		},
		AutoSwitchEnabled: false,
		TriggerApps:       nil,
	}
}

func (p Profile) Validate() error {
	errFactory := errors.New()

	for fanID, curve := range p.FanCurves {
		if err := curve.Validate(); err != nil {
			return errFactory.Wrap(errors.ErrValidationFailed, err).
				WithMessage(fmt.Sprintf("invalid fan curve for %s", fanID))
		}
	}

	if p.KeyboardBacklight.Brightness < 0 || p.KeyboardBacklight.Brightness > 100 {
		return errFactory.WithMessage(errors.ErrValidationFailed, "keyboard brightness must be 0-100")
	}
	if p.ScreenSettings.Brightness < 0 || p.ScreenSettings.Brightness > 100 {
		return errFactory.WithMessage(errors.ErrValidationFailed, "screen brightness must be 0-100")
	}

	if !p.CPUSettings.PerformanceProfile.IsValid() {
		return errFactory.WithMessage(errors.ErrValidationFailed,
			fmt.Sprintf("unknown performance profile %q", p.CPUSettings.PerformanceProfile))
	}

	return nil
}

// MatchesApp reports whether the profile should auto-switch for the given
// application name. Matching is case-insensitive substring matching against
// each trigger entry.
func (p Profile) MatchesApp(appName string) bool {
	if !p.AutoSwitchEnabled {
		return false
	}

	lowered := strings.ToLower(appName)
	for _, trigger := range p.TriggerApps {
		if strings.Contains(lowered, strings.ToLower(trigger)) {
			return true
		}
	}

	return false
}

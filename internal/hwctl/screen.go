package hwctl

import (
	"math"
	"path/filepath"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
)

// backlightDevices are the known backlight device names, tried in order
var backlightDevices = []string{"intel_backlight", "amdgpu_bl0", "acpi_video0"}

// ApplyScreenBrightness writes the display brightness as a raw value
// scaled against the device's max_brightness. The first existing
// backlight device wins.
func (c *Controller) ApplyScreenBrightness(percent int) error {
	errFactory := errors.New()

	for _, device := range backlightDevices {
		basePath := filepath.Join(c.backlight, device)
		if !c.fs.Exists(basePath) {
			continue
		}

		maxBrightness, err := c.fs.ReadInt(filepath.Join(basePath, "max_brightness"))
		if err != nil {
			return err
		}

		raw := int(math.Round(float64(percent) / 100 * float64(maxBrightness)))
		if err := c.fs.WriteInt(filepath.Join(basePath, "brightness"), raw); err != nil {
			return err
		}

		logger.Debug().Str("device", device).Int("percent", percent).Msg("Screen brightness applied")

		return nil
	}

	return errFactory.WithMessage(errors.ErrNoBackend, "no backlight interface found")
}

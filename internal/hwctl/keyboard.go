package hwctl

import (
	"fmt"
	"math"
	"path/filepath"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
)

// ApplyKeyboard writes the RGB color and brightness to the LED-class
// keyboard device. A machine without the RGB driver skips the category
// with a warning instead of failing the whole profile.
func (c *Controller) ApplyKeyboard(kb profile.KeyboardBacklight) error {
	errFactory := errors.New()

	intensityPath := filepath.Join(c.keyboardBase, "multi_intensity")
	brightnessPath := filepath.Join(c.keyboardBase, "brightness")
	maxBrightnessPath := filepath.Join(c.keyboardBase, "max_brightness")

	if !c.fs.Exists(intensityPath) || !c.fs.Exists(brightnessPath) {
		logger.Warn().Msg("Keyboard backlight interface not available, skipping")
		return errFactory.New(errors.ErrUnavailable)
	}

	color := fmt.Sprintf("%d %d %d", kb.Color.R, kb.Color.G, kb.Color.B)
	if err := c.fs.WriteString(intensityPath, color); err != nil {
		return err
	}

	maxBrightness, err := c.fs.ReadInt(maxBrightnessPath)
	if err != nil {
		return err
	}

	raw := int(math.Round(float64(kb.Brightness) / 100 * float64(maxBrightness)))
	if err := c.fs.WriteInt(brightnessPath, raw); err != nil {
		return err
	}

	logger.Debug().
		Str("color", color).
		Int("brightness", kb.Brightness).
		Msg("Keyboard backlight applied")

	return nil
}

// KeyboardBrightness reads the current backlight level as a percentage
func (c *Controller) KeyboardBrightness() (int, error) {
	maxBrightness, err := c.fs.ReadInt(filepath.Join(c.keyboardBase, "max_brightness"))
	if err != nil {
		return 0, err
	}

	raw, err := c.fs.ReadInt(filepath.Join(c.keyboardBase, "brightness"))
	if err != nil {
		return 0, err
	}

	if maxBrightness <= 0 {
		return 0, nil
	}

	percent := int(float64(raw) / float64(maxBrightness) * 100)
	if percent > 100 {
		percent = 100
	}

	return percent, nil
}

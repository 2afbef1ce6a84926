package hwctl

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
)

// pwmPerPercent scales a 0-100 duty to the 0-255 range of generic pwm nodes
const pwmPerPercent = 2.55

// fanNumber extracts the trailing digits of a fan identifier.
// An unparsable identifier defaults to fan 1, mirroring the vendor
// tooling's behavior.
func fanNumber(fanID string) int {
	digits := strings.TrimLeftFunc(fanID, func(r rune) bool {
		return !unicode.IsDigit(r)
	})

	num, err := strconv.Atoi(digits)
	if err != nil || num < 1 {
		return 1
	}

	return num
}

// SetFanSpeed writes a duty cycle for one fan, preferring the tuxedo_io
// manual-speed node and falling back to any generic hwmon pwm node.
func (c *Controller) SetFanSpeed(fanID string, duty int) error {
	errFactory := errors.New()
	num := fanNumber(fanID)

	speedPath := filepath.Join(c.tuxedoBase, fmt.Sprintf("fan%d_manual_speed", num))
	if c.fs.Exists(speedPath) {
		return c.fs.WriteInt(speedPath, duty)
	}

	entries, err := c.fs.ReadDir(c.hwmonBase)
	if err == nil {
		for _, entry := range entries {
			pwmPath := filepath.Join(c.hwmonBase, entry.Name(), fmt.Sprintf("pwm%d", num))
			if !c.fs.Exists(pwmPath) {
				continue
			}

			enablePath := filepath.Join(c.hwmonBase, entry.Name(), fmt.Sprintf("pwm%d_enable", num))
			if c.fs.Exists(enablePath) {
				// 1 = manual control, 2 = automatic
				if err := c.fs.WriteString(enablePath, "1"); err != nil {
					return err
				}
			}

			return c.fs.WriteInt(pwmPath, int(float64(duty)*pwmPerPercent))
		}
	}

	return errFactory.WithData(errors.ErrNoBackend, fanID)
}

// ApplyFanCurves uploads every fan curve of a profile. Failures are
// collected per fan; a fan with no working backend does not block the
// remaining fans.
func (c *Controller) ApplyFanCurves(curves map[string]profile.FanCurve) error {
	var firstErr error

	for fanID, curve := range curves {
		if err := c.applyFanCurve(fanID, curve); err != nil {
			logger.Warn().Err(err).Str("fan", fanID).Msg("Failed to apply fan curve")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.Debug().Str("fan", fanID).Msg("Fan curve applied")
	}

	return firstErr
}

func (c *Controller) applyFanCurve(fanID string, curve profile.FanCurve) error {
	errFactory := errors.New()

	if err := c.applyFanCurveTuxedo(fanID, curve); err == nil {
		return nil
	}

	if err := c.applyFanCurveHwmon(fanID, curve); err == nil {
		return nil
	}

	return errFactory.WithData(errors.ErrNoBackend, fanID)
}

// applyFanCurveTuxedo writes the curve points to the vendor's native
// fan{n}_temp{idx}/fan{n}_speed{idx} nodes.
func (c *Controller) applyFanCurveTuxedo(fanID string, curve profile.FanCurve) error {
	errFactory := errors.New()

	if !c.fs.Exists(c.tuxedoBase) {
		return errFactory.New(errors.ErrUnavailable)
	}

	num := fanNumber(fanID)
	for idx, point := range curve.Points {
		tempPath := filepath.Join(c.tuxedoBase, fmt.Sprintf("fan%d_temp%d", num, idx))
		speedPath := filepath.Join(c.tuxedoBase, fmt.Sprintf("fan%d_speed%d", num, idx))

		if !c.fs.Exists(tempPath) || !c.fs.Exists(speedPath) {
			continue
		}

		if err := c.fs.WriteInt(tempPath, point.Temp); err != nil {
			return err
		}
		if err := c.fs.WriteInt(speedPath, point.Duty); err != nil {
			return err
		}
	}

	return nil
}

// applyFanCurveHwmon switches the fan to manual pwm mode and seeds it
// with the curve's midpoint duty. The running fan daemon keeps the duty
// tracking the live temperature afterwards.
func (c *Controller) applyFanCurveHwmon(fanID string, curve profile.FanCurve) error {
	errFactory := errors.New()
	num := fanNumber(fanID)

	entries, err := c.fs.ReadDir(c.hwmonBase)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		enablePath := filepath.Join(c.hwmonBase, entry.Name(), fmt.Sprintf("pwm%d_enable", num))
		pwmPath := filepath.Join(c.hwmonBase, entry.Name(), fmt.Sprintf("pwm%d", num))

		if !c.fs.Exists(enablePath) || !c.fs.Exists(pwmPath) {
			continue
		}

		if err := c.fs.WriteString(enablePath, "1"); err != nil {
			return err
		}

		midPoint := curve.Points[len(curve.Points)/2]

		return c.fs.WriteInt(pwmPath, int(float64(midPoint.Duty)*pwmPerPercent))
	}

	return errFactory.New(errors.ErrUnavailable)
}

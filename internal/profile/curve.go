package profile

import (
	"fmt"
	"math"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
)

// CurvePointCount is the fixed number of points in a fan curve
const CurvePointCount = 8

// FanCurvePoint maps a temperature in °C to a fan duty cycle in percent
type FanCurvePoint struct {
	Temp int `json:"temp"`
	Duty int `json:"speed"`
}

// FanCurve is an ordered piecewise-linear curve with exactly 8 points.
// Temperatures must be strictly ascending; duty values are percentages.
type FanCurve struct {
	Points []FanCurvePoint `json:"points"`
}

func (c FanCurve) Validate() error {
	errFactory := errors.New()

	if len(c.Points) != CurvePointCount {
		return errFactory.WithMessage(errors.ErrValidationFailed,
			fmt.Sprintf("fan curve must have exactly %d points, got %d", CurvePointCount, len(c.Points)))
	}

	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].Temp <= c.Points[i-1].Temp {
			return errFactory.WithMessage(errors.ErrValidationFailed,
				"fan curve temperatures must be in ascending order")
		}
	}

	for _, point := range c.Points {
		if point.Duty < 0 || point.Duty > 100 {
			return errFactory.WithMessage(errors.ErrValidationFailed,
				fmt.Sprintf("fan duty must be 0-100%%, got %d", point.Duty))
		}
	}

	return nil
}

// Speed returns the target duty cycle for a temperature. Temperatures
// outside the curve clamp to the first or last point; in between, the
// duty is linearly interpolated over the bracketing segment and rounded.
func (c FanCurve) Speed(temp float64) int {
	points := c.Points

	if temp <= float64(points[0].Temp) {
		return points[0].Duty
	}
	if temp >= float64(points[len(points)-1].Temp) {
		return points[len(points)-1].Duty
	}

	for i := 0; i < len(points)-1; i++ {
		p1, p2 := points[i], points[i+1]
		if temp >= float64(p1.Temp) && temp <= float64(p2.Temp) {
			tempRange := float64(p2.Temp - p1.Temp)
			dutyRange := float64(p2.Duty - p1.Duty)
			offset := temp - float64(p1.Temp)

			return int(math.Round(float64(p1.Duty) + dutyRange*(offset/tempRange)))
		}
	}

	// Unreachable: a validated curve always has exactly one bracket
	return points[len(points)-1].Duty
}

// DefaultCurve returns the stock 8-point curve used by new profiles
func DefaultCurve() FanCurve {
	return FanCurve{
		Points: []FanCurvePoint{
			{Temp: 40, Duty: 30},
			{Temp: 50, Duty: 40},
			{Temp: 60, Duty: 50},
			{Temp: 65, Duty: 60},
			{Temp: 70, Duty: 70},
			{Temp: 75, Duty: 80},
			{Temp: 80, Duty: 90},
			{Temp: 85, Duty: 100},
		},
	}
}

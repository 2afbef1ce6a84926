package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/tuxedoctl/internal/profile"
)

func TestDefaultCurveIsValid(t *testing.T) {
	require.NoError(t, profile.DefaultCurve().Validate())
}

func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name    string
		points  []profile.FanCurvePoint
		wantErr bool
	}{
		{
			name: "valid ascending curve",
			points: []profile.FanCurvePoint{
				{Temp: 40, Duty: 30}, {Temp: 50, Duty: 40}, {Temp: 60, Duty: 50}, {Temp: 65, Duty: 60},
				{Temp: 70, Duty: 70}, {Temp: 75, Duty: 80}, {Temp: 80, Duty: 90}, {Temp: 85, Duty: 100},
			},
			wantErr: false,
		},
		{
			name:    "too few points",
			points:  []profile.FanCurvePoint{{Temp: 40, Duty: 30}, {Temp: 85, Duty: 100}},
			wantErr: true,
		},
		{
			name: "temperatures not strictly ascending",
			points: []profile.FanCurvePoint{
				{Temp: 40, Duty: 30}, {Temp: 40, Duty: 40}, {Temp: 60, Duty: 50}, {Temp: 65, Duty: 60},
				{Temp: 70, Duty: 70}, {Temp: 75, Duty: 80}, {Temp: 80, Duty: 90}, {Temp: 85, Duty: 100},
			},
			wantErr: true,
		},
		{
			name: "duty above 100",
			points: []profile.FanCurvePoint{
				{Temp: 40, Duty: 30}, {Temp: 50, Duty: 40}, {Temp: 60, Duty: 50}, {Temp: 65, Duty: 60},
				{Temp: 70, Duty: 70}, {Temp: 75, Duty: 80}, {Temp: 80, Duty: 90}, {Temp: 85, Duty: 110},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := profile.FanCurve{Points: tt.points}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCurveSpeed(t *testing.T) {
	curve := profile.DefaultCurve()

	tests := []struct {
		name string
		temp float64
		want int
	}{
		{"below first point clamps to first duty", 30, 30},
		{"exactly on first point", 40, 30},
		{"midway between points interpolates", 45, 35},
		{"exactly on an inner point", 60, 50},
		{"interpolation rounds to nearest", 62, 54},
		{"exactly on last point", 85, 100},
		{"above last point clamps to last duty", 95, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, curve.Speed(tt.temp))
		})
	}
}

func TestCurveSpeedFractionalRounding(t *testing.T) {
	curve := profile.DefaultCurve()

	// Between (50,40) and (60,50): 55.5°C is 45.5 percent, rounded up
	assert.Equal(t, 46, curve.Speed(55.5))
	assert.Equal(t, 45, curve.Speed(55.4))
}

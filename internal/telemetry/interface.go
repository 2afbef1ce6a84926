package telemetry

import (
	"context"
	"time"
)

// Collector records control loop decisions for later inspection
type Collector interface {
	Record(ctx context.Context, event *ControlEvent) error
	Close() error
}

// ControlEvent captures one fan control decision
type ControlEvent struct {
	Timestamp  time.Time
	Profile    string
	CPUTemp    float64
	GPUTemp    float64
	FanID      string
	TargetDuty int
}

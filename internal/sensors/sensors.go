// Package sensors parses kernel virtual-filesystem nodes into typed
// hardware readings. Every read degrades to an absent field when the
// backing node is missing; a sensor that cannot be read never aborts a
// whole statistics snapshot.
package sensors

import (
	"os/exec"
	"strings"
	"sync"

	"codeberg.org/mutker/tuxedoctl/internal/sysfs"
)

const (
	cpuBasePath     = "/sys/devices/system/cpu"
	hwmonBasePath   = "/sys/class/hwmon"
	drmBasePath     = "/sys/class/drm"
	powerSupplyPath = "/sys/class/power_supply"
	procStatPath    = "/proc/stat"
	procCPUInfoPath = "/proc/cpuinfo"
)

type GPUType string

const (
	GPUIntegrated GPUType = "integrated"
	GPUDiscrete   GPUType = "discrete"
)

type CPUCoreInfo struct {
	CoreID       int
	FrequencyMHz uint
	LoadPercent  float64
	Temperature  *float64
}

type CPUInfo struct {
	Model             string
	Cores             []CPUCoreInfo
	PackageTemp       *float64
	PackagePowerWatts *float64
}

type GPUInfo struct {
	Name         string
	Type         GPUType
	FrequencyMHz *uint
	Temperature  *float64
	LoadPercent  *float64
	PowerWatts   *float64
}

type FanInfo struct {
	FanID    string
	Name     string
	SpeedRPM *int
}

type BatteryInfo struct {
	Present              bool
	VoltageMV            *int
	CurrentMA            *int
	ChargePercent        *int
	CapacityMAh          *int
	Manufacturer         string
	Model                string
	ChargeStartThreshold *int
	ChargeEndThreshold   *int
}

// SystemStats is the per-tick snapshot the fan daemon consumes
type SystemStats struct {
	CPU       CPUInfo
	GPUs      []GPUInfo
	Fans      []FanInfo
	Battery   BatteryInfo
	ActiveGPU GPUType
}

// Monitor reads sensors through a sysfs.FS. It keeps the previous
// /proc/stat sample needed for load-delta computation, guarded by a lock
// so concurrent snapshot calls stay consistent.
type Monitor struct {
	fs *sysfs.FS

	cpuBase     string
	hwmonBase   string
	drmBase     string
	powerSupply string
	procStat    string
	procCPUInfo string

	mu           sync.Mutex
	lastCPUStats []cpuStats

	nvidia     gpuProvider
	primeQuery func() (string, error)
}

// gpuProvider supplies metrics for GPUs that have no sysfs interface
type gpuProvider interface {
	Devices() []GPUInfo
}

func NewMonitor(fs *sysfs.FS) *Monitor {
	return &Monitor{
		fs:          fs,
		cpuBase:     cpuBasePath,
		hwmonBase:   hwmonBasePath,
		drmBase:     drmBasePath,
		powerSupply: powerSupplyPath,
		procStat:    procStatPath,
		procCPUInfo: procCPUInfoPath,
		nvidia:      newNVMLProvider(),
		primeQuery:  runPrimeQuery,
	}
}

// SystemStats assembles a full snapshot. Individual read failures are
// absorbed into absent fields and never surface as errors.
func (m *Monitor) SystemStats() (SystemStats, error) {
	cpu, err := m.CPUInfo()
	if err != nil {
		return SystemStats{}, err
	}

	return SystemStats{
		CPU:       cpu,
		GPUs:      m.GPUs(),
		Fans:      m.Fans(),
		Battery:   m.Battery(),
		ActiveGPU: m.ActiveGPU(),
	}, nil
}

// PackageTemperature returns the CPU die temperature or nil when no
// matching hwmon sensor exists.
func (m *Monitor) PackageTemperature() *float64 {
	return m.packageTemperature()
}

// ActiveGPU queries prime-select for the GPU currently driving the display.
// Without prime-select the integrated GPU is assumed.
func (m *Monitor) ActiveGPU() GPUType {
	out, err := m.primeQuery()
	if err != nil {
		return GPUIntegrated
	}

	if strings.Contains(out, "nvidia") {
		return GPUDiscrete
	}

	return GPUIntegrated
}

// Close releases resources held by GPU metric providers.
func (m *Monitor) Close() {
	if closer, ok := m.nvidia.(interface{ Shutdown() }); ok {
		closer.Shutdown()
	}
}

func runPrimeQuery() (string, error) {
	out, err := exec.Command("prime-select", "query").Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

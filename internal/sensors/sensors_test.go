package sensors

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/tuxedoctl/internal/sysfs"
)

func newTestMonitor(t *testing.T, files map[string]string) *Monitor {
	t.Helper()

	base := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(base, path, []byte(content), 0o644))
	}

	return &Monitor{
		fs:          sysfs.NewFromFs(base),
		cpuBase:     "/sys/devices/system/cpu",
		hwmonBase:   "/sys/class/hwmon",
		drmBase:     "/sys/class/drm",
		powerSupply: "/sys/class/power_supply",
		procStat:    "/proc/stat",
		procCPUInfo: "/proc/cpuinfo",
		primeQuery:  func() (string, error) { return "", assert.AnError },
	}
}

const testCPUInfo = `processor	: 0
model name	: Intel(R) Core(TM) i7-10750H CPU @ 2.60GHz
processor	: 1
model name	: Intel(R) Core(TM) i7-10750H CPU @ 2.60GHz
`

func TestCPUCountAndModel(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/proc/cpuinfo": testCPUInfo,
	})

	count, err := m.CPUCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Intel(R) Core(TM) i7-10750H CPU @ 2.60GHz", m.cpuModel())
}

func TestCPUFrequency(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq": "2600000\n",
	})

	freq, err := m.CPUFrequency(0)
	require.NoError(t, err)
	assert.Equal(t, uint(2600), freq)
}

func TestCalculateLoad(t *testing.T) {
	tests := []struct {
		name string
		prev cpuStats
		curr cpuStats
		want float64
	}{
		{
			name: "half busy",
			prev: cpuStats{user: 100, idle: 100},
			curr: cpuStats{user: 150, idle: 150},
			want: 50,
		},
		{
			name: "fully idle",
			prev: cpuStats{user: 100, idle: 100},
			curr: cpuStats{user: 100, idle: 200},
			want: 0,
		},
		{
			name: "fully busy",
			prev: cpuStats{user: 100, idle: 100},
			curr: cpuStats{user: 200, idle: 100},
			want: 100,
		},
		{
			name: "no delta",
			prev: cpuStats{user: 100, idle: 100},
			curr: cpuStats{user: 100, idle: 100},
			want: 0,
		},
		{
			name: "counter went backwards",
			prev: cpuStats{user: 200, idle: 200},
			curr: cpuStats{user: 100, idle: 100},
			want: 0,
		},
		{
			name: "iowait counts as idle",
			prev: cpuStats{user: 100, idle: 100, iowait: 0},
			curr: cpuStats{user: 100, idle: 100, iowait: 100},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculateLoad(tt.prev, tt.curr), 0.001)
		})
	}
}

func TestCPUInfoFirstSampleHasZeroLoad(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/proc/cpuinfo": testCPUInfo,
		"/proc/stat": "cpu  200 0 100 700 0 0 0 0 0 0\n" +
			"cpu0 100 0 50 350 0 0 0 0 0 0\n" +
			"cpu1 100 0 50 350 0 0 0 0 0 0\n",
	})

	info, err := m.CPUInfo()
	require.NoError(t, err)
	require.Len(t, info.Cores, 2)
	assert.Zero(t, info.Cores[0].LoadPercent)
	assert.Zero(t, info.Cores[1].LoadPercent)
}

func TestPackageTemperature(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/hwmon/hwmon0/name":        "acpitz\n",
		"/sys/class/hwmon/hwmon1/name":        "coretemp\n",
		"/sys/class/hwmon/hwmon1/temp1_label": "Package id 0\n",
		"/sys/class/hwmon/hwmon1/temp1_input": "67000\n",
		"/sys/class/hwmon/hwmon1/temp2_label": "Core 0\n",
		"/sys/class/hwmon/hwmon1/temp2_input": "61000\n",
	})

	temp := m.PackageTemperature()
	require.NotNil(t, temp)
	assert.InDelta(t, 67.0, *temp, 0.001)
}

func TestPackageTemperatureAMD(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/hwmon/hwmon0/name":        "k10temp\n",
		"/sys/class/hwmon/hwmon0/temp1_label": "Tdie\n",
		"/sys/class/hwmon/hwmon0/temp1_input": "72500\n",
	})

	temp := m.PackageTemperature()
	require.NotNil(t, temp)
	assert.InDelta(t, 72.5, *temp, 0.001)
}

func TestPackageTemperatureMissing(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/hwmon/hwmon0/name": "acpitz\n",
	})

	assert.Nil(t, m.PackageTemperature())
}

func TestCoreTemperatures(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/hwmon/hwmon0/name":        "coretemp\n",
		"/sys/class/hwmon/hwmon0/temp2_label": "Core 0\n",
		"/sys/class/hwmon/hwmon0/temp2_input": "55000\n",
		"/sys/class/hwmon/hwmon0/temp3_label": "Core 1\n",
		"/sys/class/hwmon/hwmon0/temp3_input": "58000\n",
	})

	temps := m.coreTemperatures()
	require.Len(t, temps, 2)
	assert.InDelta(t, 55.0, temps[0], 0.001)
	assert.InDelta(t, 58.0, temps[1], 0.001)
}

func TestFans(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/hwmon/hwmon0/fan1_input": "2400\n",
		"/sys/class/hwmon/hwmon0/fan1_label": "cpu_fan\n",
		"/sys/class/hwmon/hwmon0/fan2_input": "1800\n",
	})

	fans := m.Fans()
	require.Len(t, fans, 2)

	assert.Equal(t, "fan1", fans[0].FanID)
	assert.Equal(t, "cpu_fan", fans[0].Name)
	require.NotNil(t, fans[0].SpeedRPM)
	assert.Equal(t, 2400, *fans[0].SpeedRPM)

	assert.Equal(t, "fan2", fans[1].FanID)
	assert.Equal(t, "Fan 2", fans[1].Name)
}

func TestAMDGPUDiscovery(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/drm/card0/device/vendor":                   "0x1002\n",
		"/sys/class/drm/card0/device/uevent":                   "DRIVER=amdgpu\nPCI_ID=1002:73DF\n",
		"/sys/class/drm/card0/device/pp_dpm_sclk":              "0: 500Mhz\n1: 800Mhz *\n2: 2100Mhz\n",
		"/sys/class/drm/card0/device/gpu_busy_percent":         "42\n",
		"/sys/class/drm/card0/device/hwmon/hwmon3/temp1_input": "64000\n",
		"/sys/class/drm/card0/device/hwmon/hwmon3/power1_average": "85000000\n",
		// connector directories must be skipped
		"/sys/class/drm/card0-DP-1/status": "connected\n",
	})

	gpus := m.GPUs()
	require.Len(t, gpus, 1)

	gpu := gpus[0]
	assert.Equal(t, "GPU 1002:73DF", gpu.Name)
	assert.Equal(t, GPUDiscrete, gpu.Type)
	require.NotNil(t, gpu.FrequencyMHz)
	assert.Equal(t, uint(800), *gpu.FrequencyMHz)
	require.NotNil(t, gpu.Temperature)
	assert.InDelta(t, 64.0, *gpu.Temperature, 0.001)
	require.NotNil(t, gpu.LoadPercent)
	assert.InDelta(t, 42.0, *gpu.LoadPercent, 0.001)
	require.NotNil(t, gpu.PowerWatts)
	assert.InDelta(t, 85.0, *gpu.PowerWatts, 0.001)
}

func TestBattery(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/power_supply/AC/type":           "Mains\n",
		"/sys/class/power_supply/BAT0/type":         "Battery\n",
		"/sys/class/power_supply/BAT0/voltage_now":  "12500\n",
		"/sys/class/power_supply/BAT0/capacity":     "87\n",
		"/sys/class/power_supply/BAT0/manufacturer": "TUXEDO\n",
	})

	battery := m.Battery()
	assert.True(t, battery.Present)
	require.NotNil(t, battery.VoltageMV)
	assert.Equal(t, 12500, *battery.VoltageMV)
	require.NotNil(t, battery.ChargePercent)
	assert.Equal(t, 87, *battery.ChargePercent)
	assert.Equal(t, "TUXEDO", battery.Manufacturer)
	assert.Nil(t, battery.CurrentMA)
}

func TestBatteryAbsent(t *testing.T) {
	m := newTestMonitor(t, map[string]string{
		"/sys/class/power_supply/AC/type": "Mains\n",
	})

	battery := m.Battery()
	assert.False(t, battery.Present)
}

func TestActiveGPU(t *testing.T) {
	m := newTestMonitor(t, nil)

	m.primeQuery = func() (string, error) { return "nvidia", nil }
	assert.Equal(t, GPUDiscrete, m.ActiveGPU())

	m.primeQuery = func() (string, error) { return "intel", nil }
	assert.Equal(t, GPUIntegrated, m.ActiveGPU())

	m.primeQuery = func() (string, error) { return "", assert.AnError }
	assert.Equal(t, GPUIntegrated, m.ActiveGPU())
}

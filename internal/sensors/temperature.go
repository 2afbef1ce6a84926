package sensors

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	milliDegreesPerDegree = 1000
	maxHwmonTempIndex     = 32
	maxHwmonFanIndex      = 10
)

// cpuSensorNames are the hwmon chip names that expose CPU die temperatures
var cpuSensorNames = []string{"coretemp", "k10temp", "zenpower"}

func isCPUSensor(name string) bool {
	for _, candidate := range cpuSensorNames {
		if strings.Contains(name, candidate) {
			return true
		}
	}

	return false
}

func (m *Monitor) hwmonPaths() []string {
	entries, err := m.fs.ReadDir(m.hwmonBase)
	if err != nil {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(m.hwmonBase, entry.Name()))
	}

	return paths
}

// packageTemperature scans CPU hwmon chips for a "package" or "tdie"
// labeled input and converts millidegrees to degrees.
func (m *Monitor) packageTemperature() *float64 {
	return m.findHwmonTemperature(func(label string) bool {
		return strings.Contains(label, "package") || strings.Contains(label, "tdie")
	})
}

func (m *Monitor) findHwmonTemperature(labelMatch func(string) bool) *float64 {
	for _, hwmonPath := range m.hwmonPaths() {
		name, err := m.fs.ReadString(filepath.Join(hwmonPath, "name"))
		if err != nil || !isCPUSensor(name) {
			continue
		}

		for i := 1; i <= maxHwmonTempIndex; i++ {
			label, err := m.fs.ReadString(filepath.Join(hwmonPath, fmt.Sprintf("temp%d_label", i)))
			if err != nil || !labelMatch(strings.ToLower(label)) {
				continue
			}

			if milli, err := m.fs.ReadInt(filepath.Join(hwmonPath, fmt.Sprintf("temp%d_input", i))); err == nil {
				temp := float64(milli) / milliDegreesPerDegree
				return &temp
			}
		}
	}

	return nil
}

// coreTemperatures maps per-core sensor labels ("Core N") to degrees
func (m *Monitor) coreTemperatures() map[int]float64 {
	temps := make(map[int]float64)

	for _, hwmonPath := range m.hwmonPaths() {
		name, err := m.fs.ReadString(filepath.Join(hwmonPath, "name"))
		if err != nil || !isCPUSensor(name) {
			continue
		}

		for i := 1; i <= maxHwmonTempIndex; i++ {
			label, err := m.fs.ReadString(filepath.Join(hwmonPath, fmt.Sprintf("temp%d_label", i)))
			if err != nil {
				continue
			}

			lowered := strings.ToLower(label)
			if !strings.Contains(lowered, "core") {
				continue
			}

			coreNum, ok := extractCoreNumber(lowered)
			if !ok {
				continue
			}

			if milli, err := m.fs.ReadInt(filepath.Join(hwmonPath, fmt.Sprintf("temp%d_input", i))); err == nil {
				temps[coreNum] = float64(milli) / milliDegreesPerDegree
			}
		}
	}

	return temps
}

func extractCoreNumber(label string) (int, bool) {
	for _, field := range strings.Fields(label) {
		if num, err := strconv.Atoi(field); err == nil {
			return num, true
		}
	}

	return 0, false
}

// Fans reads hwmon fan telemetry (RPM plus optional label)
func (m *Monitor) Fans() []FanInfo {
	var fans []FanInfo

	for _, hwmonPath := range m.hwmonPaths() {
		for i := 1; i <= maxHwmonFanIndex; i++ {
			inputPath := filepath.Join(hwmonPath, fmt.Sprintf("fan%d_input", i))
			if !m.fs.Exists(inputPath) {
				continue
			}

			info := FanInfo{
				FanID: fmt.Sprintf("fan%d", i),
				Name:  fmt.Sprintf("Fan %d", i),
			}

			if rpm, err := m.fs.ReadInt(inputPath); err == nil {
				info.SpeedRPM = &rpm
			}
			if label, err := m.fs.ReadString(filepath.Join(hwmonPath, fmt.Sprintf("fan%d_label", i))); err == nil {
				info.Name = label
			}

			fans = append(fans, info)
		}
	}

	return fans
}

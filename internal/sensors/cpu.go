package sensors

import (
	"fmt"
	"strconv"
	"strings"
)

const kHzPerMHz = 1000

// cpuStats holds one sample of cumulative jiffie counters for a core
type cpuStats struct {
	user    uint64
	nice    uint64
	system  uint64
	idle    uint64
	iowait  uint64
	irq     uint64
	softirq uint64
}

func (s cpuStats) idleTotal() uint64 {
	return s.idle + s.iowait
}

func (s cpuStats) total() uint64 {
	return s.user + s.nice + s.system + s.idle + s.iowait + s.irq + s.softirq
}

// CPUInfo reads per-core frequency and load plus the package temperature.
// Load needs two consecutive samples; the first call after startup
// reports zero for every core.
func (m *Monitor) CPUInfo() (CPUInfo, error) {
	count, err := m.CPUCount()
	if err != nil {
		return CPUInfo{}, err
	}

	current, err := m.readCPUStats()
	if err != nil {
		return CPUInfo{}, err
	}

	m.mu.Lock()
	last := m.lastCPUStats
	m.lastCPUStats = current
	m.mu.Unlock()

	cores := make([]CPUCoreInfo, 0, count)
	for coreID := 0; coreID < count; coreID++ {
		load := 0.0
		if last != nil && coreID < len(last) && coreID < len(current) {
			load = calculateLoad(last[coreID], current[coreID])
		}

		freq, _ := m.CPUFrequency(coreID)

		cores = append(cores, CPUCoreInfo{
			CoreID:       coreID,
			FrequencyMHz: freq,
			LoadPercent:  load,
		})
	}

	for coreID, temp := range m.coreTemperatures() {
		if coreID < len(cores) {
			t := temp
			cores[coreID].Temperature = &t
		}
	}

	return CPUInfo{
		Model:       m.cpuModel(),
		Cores:       cores,
		PackageTemp: m.packageTemperature(),
	}, nil
}

// CPUCount counts "processor" lines in /proc/cpuinfo
func (m *Monitor) CPUCount() (int, error) {
	content, err := m.fs.ReadString(m.procCPUInfo)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "processor") {
			count++
		}
	}

	return count, nil
}

func (m *Monitor) cpuModel() string {
	content, err := m.fs.ReadString(m.procCPUInfo)
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "model name") {
			if _, value, found := strings.Cut(line, ":"); found {
				return strings.TrimSpace(value)
			}
		}
	}

	return ""
}

// CPUFrequency reads the current scaling frequency of a core in MHz
func (m *Monitor) CPUFrequency(coreID int) (uint, error) {
	path := fmt.Sprintf("%s/cpu%d/cpufreq/scaling_cur_freq", m.cpuBase, coreID)

	khz, err := m.fs.ReadInt(path)
	if err != nil {
		return 0, err
	}

	return uint(khz / kHzPerMHz), nil
}

// readCPUStats parses the per-core "cpuN" lines of /proc/stat
func (m *Monitor) readCPUStats() ([]cpuStats, error) {
	content, err := m.fs.ReadString(m.procStat)
	if err != nil {
		return nil, err
	}

	var stats []cpuStats
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "cpu") || strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}

		stats = append(stats, cpuStats{
			user:    parseJiffies(fields[1]),
			nice:    parseJiffies(fields[2]),
			system:  parseJiffies(fields[3]),
			idle:    parseJiffies(fields[4]),
			iowait:  parseJiffies(fields[5]),
			irq:     parseJiffies(fields[6]),
			softirq: parseJiffies(fields[7]),
		})
	}

	return stats, nil
}

func parseJiffies(field string) uint64 {
	value, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0
	}

	return value
}

// calculateLoad derives the load percentage from two cumulative samples.
// A zero total delta yields zero, guarding against stalled counters.
func calculateLoad(prev, curr cpuStats) float64 {
	totalDiff := curr.total() - prev.total()
	if curr.total() < prev.total() || totalDiff == 0 {
		return 0
	}

	idleDiff := curr.idleTotal() - prev.idleTotal()
	if curr.idleTotal() < prev.idleTotal() {
		idleDiff = 0
	}

	usage := float64(totalDiff-idleDiff) / float64(totalDiff) * 100

	return clampFloat(usage, 0, 100)
}

func clampFloat(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}

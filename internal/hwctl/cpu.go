package hwctl

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"codeberg.org/mutker/tuxedoctl/internal/profile"
)

const kHzPerMHz = 1000

// ApplyCPUSettings applies governor, frequency bounds, boost and SMT.
// Each step is attempted even when an earlier one fails.
func (c *Controller) ApplyCPUSettings(settings profile.CPUSettings) error {
	var firstErr error

	for _, step := range []func() error{
		func() error { return c.setGovernor(settings.PerformanceProfile.Governor()) },
		func() error { return c.setFrequencyLimits(settings.MinFreqMHz, settings.MaxFreqMHz) },
		func() error { return c.SetBoost(!settings.DisableBoost) },
		func() error { return c.SetSMT(settings.SMTEnabled) },
	} {
		if err := step(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *Controller) cpuCount() (int, error) {
	content, err := c.fs.ReadString(c.procCPUInfo)
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

// setGovernor writes the governor to every present per-core node.
// Per-core failures are logged, not escalated.
func (c *Controller) setGovernor(governor string) error {
	count, err := c.cpuCount()
	if err != nil {
		return err
	}

	for cpu := 0; cpu < count; cpu++ {
		path := fmt.Sprintf("%s/cpu%d/cpufreq/scaling_governor", c.cpuBase, cpu)
		if !c.fs.Exists(path) {
			continue
		}

		if err := c.fs.WriteString(path, governor); err != nil {
			logger.Warn().Err(err).Int("cpu", cpu).Msg("Failed to set governor")
		}
	}

	logger.Debug().Str("governor", governor).Msg("CPU governor applied")

	return nil
}

// setFrequencyLimits writes min and max scaling bounds independently.
// A nil bound means "leave unset".
func (c *Controller) setFrequencyLimits(minMHz, maxMHz *uint) error {
	count, err := c.cpuCount()
	if err != nil {
		return err
	}

	for cpu := 0; cpu < count; cpu++ {
		cpufreqPath := fmt.Sprintf("%s/cpu%d/cpufreq", c.cpuBase, cpu)

		if minMHz != nil {
			path := cpufreqPath + "/scaling_min_freq"
			if c.fs.Exists(path) {
				if err := c.fs.WriteInt(path, int(*minMHz)*kHzPerMHz); err != nil {
					logger.Warn().Err(err).Int("cpu", cpu).Msg("Failed to set min frequency")
				}
			}
		}

		if maxMHz != nil {
			path := cpufreqPath + "/scaling_max_freq"
			if c.fs.Exists(path) {
				if err := c.fs.WriteInt(path, int(*maxMHz)*kHzPerMHz); err != nil {
					logger.Warn().Err(err).Int("cpu", cpu).Msg("Failed to set max frequency")
				}
			}
		}
	}

	return nil
}

// SetBoost enables or disables turbo boost, trying the Intel node, the
// AMD node and the legacy per-core node in order. First success wins.
// The Intel no_turbo node has inverted polarity.
func (c *Controller) SetBoost(enable bool) error {
	intelPath := c.cpuBase + "/intel_pstate/no_turbo"
	if c.fs.Exists(intelPath) {
		value := "1"
		if enable {
			value = "0"
		}
		return c.fs.WriteString(intelPath, value)
	}

	amdPath := c.cpuBase + "/cpufreq/boost"
	if c.fs.Exists(amdPath) {
		value := "0"
		if enable {
			value = "1"
		}
		return c.fs.WriteString(amdPath, value)
	}

	count, err := c.cpuCount()
	if err != nil {
		return err
	}

	value := "0"
	if enable {
		value = "1"
	}
	for cpu := 0; cpu < count; cpu++ {
		path := fmt.Sprintf("%s/cpu%d/cpufreq/boost", c.cpuBase, cpu)
		if c.fs.Exists(path) {
			// Best-effort on legacy systems, keep trying remaining cores
			_ = c.fs.WriteString(path, value)
		}
	}

	return nil
}

// SetSMT toggles simultaneous multithreading. A missing control node
// means the platform does not support the toggle, which is not an error.
func (c *Controller) SetSMT(enable bool) error {
	path := c.cpuBase + "/smt/control"
	if !c.fs.Exists(path) {
		return nil
	}

	value := "off"
	if enable {
		value = "on"
	}

	return c.fs.WriteString(path, value)
}

// MaximumPerformance pins both scaling bounds to the hardware maximum,
// selects the performance governor and enables boost.
func (c *Controller) MaximumPerformance() error {
	count, err := c.cpuCount()
	if err != nil {
		return err
	}

	for cpu := 0; cpu < count; cpu++ {
		cpufreqPath := fmt.Sprintf("%s/cpu%d/cpufreq", c.cpuBase, cpu)

		maxFreqKHz, err := c.fs.ReadInt(cpufreqPath + "/cpuinfo_max_freq")
		if err != nil {
			continue
		}

		for _, node := range []string{"/scaling_min_freq", "/scaling_max_freq"} {
			path := cpufreqPath + node
			if c.fs.Exists(path) {
				_ = c.fs.WriteInt(path, maxFreqKHz)
			}
		}
	}

	if err := c.setGovernor(profile.Performance.Governor()); err != nil {
		return err
	}

	return c.SetBoost(true)
}

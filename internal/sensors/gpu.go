package sensors

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	amdVendorID   = "0x1002"
	intelVendorID = "0x8086"

	microWattsPerWatt = 1_000_000
)

// GPUs discovers graphics devices through the DRM sysfs tree, one entry
// per card. Vendor-specific attributes differ, so every metric field is
// independently optional. NVIDIA devices have no usable sysfs metrics and
// come from the NVML provider instead.
func (m *Monitor) GPUs() []GPUInfo {
	var gpus []GPUInfo

	entries, err := m.fs.ReadDir(m.drmBase)
	if err != nil {
		entries = nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "card") || strings.Contains(name, "-") {
			continue
		}

		devicePath := filepath.Join(m.drmBase, name, "device")

		vendor, err := m.fs.ReadString(filepath.Join(devicePath, "vendor"))
		if err != nil {
			continue
		}

		switch vendor {
		case amdVendorID:
			gpus = append(gpus, m.readAMDGPU(devicePath))
		case intelVendorID:
			gpus = append(gpus, GPUInfo{
				Name:         m.readGPUName(devicePath, "Intel GPU"),
				Type:         GPUIntegrated,
				FrequencyMHz: nil,
			})
		}
	}

	if m.nvidia != nil {
		gpus = append(gpus, m.nvidia.Devices()...)
	}

	return gpus
}

func (m *Monitor) readAMDGPU(devicePath string) GPUInfo {
	name := m.readGPUName(devicePath, "AMD GPU")

	gpuType := GPUDiscrete
	lowered := strings.ToLower(name)
	if strings.Contains(lowered, "radeon") && strings.Contains(lowered, "graphics") {
		gpuType = GPUIntegrated
	}

	return GPUInfo{
		Name:         name,
		Type:         gpuType,
		FrequencyMHz: m.readAMDGPUFrequency(devicePath),
		Temperature:  m.readDeviceTemperature(devicePath),
		LoadPercent:  m.readAMDGPULoad(devicePath),
		PowerWatts:   m.readAMDGPUPower(devicePath),
	}
}

func (m *Monitor) readGPUName(devicePath, fallback string) string {
	content, err := m.fs.ReadString(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return fallback
	}

	for _, line := range strings.Split(content, "\n") {
		if pciID, found := strings.CutPrefix(line, "PCI_ID="); found {
			return "GPU " + pciID
		}
	}

	return fallback
}

// readAMDGPUFrequency parses pp_dpm_sclk, where the active level is
// marked with an asterisk ("1: 800Mhz *").
func (m *Monitor) readAMDGPUFrequency(devicePath string) *uint {
	content, err := m.fs.ReadString(filepath.Join(devicePath, "pp_dpm_sclk"))
	if err != nil {
		return nil
	}

	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		raw := strings.TrimSuffix(fields[1], "Mhz")
		if mhz, err := strconv.ParseUint(raw, 10, 32); err == nil {
			freq := uint(mhz)
			return &freq
		}
	}

	return nil
}

// readDeviceTemperature looks for a temp1_input under the device's hwmon
// subdirectory. Shared with WiFi/NVMe style devices that follow the same
// convention.
func (m *Monitor) readDeviceTemperature(devicePath string) *float64 {
	hwmonDir := filepath.Join(devicePath, "hwmon")

	entries, err := m.fs.ReadDir(hwmonDir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		inputPath := filepath.Join(hwmonDir, entry.Name(), "temp1_input")
		if milli, err := m.fs.ReadInt(inputPath); err == nil {
			temp := float64(milli) / milliDegreesPerDegree
			return &temp
		}
	}

	return nil
}

func (m *Monitor) readAMDGPULoad(devicePath string) *float64 {
	busy, err := m.fs.ReadInt(filepath.Join(devicePath, "gpu_busy_percent"))
	if err != nil {
		return nil
	}

	load := float64(busy)

	return &load
}

func (m *Monitor) readAMDGPUPower(devicePath string) *float64 {
	hwmonDir := filepath.Join(devicePath, "hwmon")

	entries, err := m.fs.ReadDir(hwmonDir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		powerPath := filepath.Join(hwmonDir, entry.Name(), "power1_average")
		if microWatts, err := m.fs.ReadInt(powerPath); err == nil {
			watts := float64(microWatts) / microWattsPerWatt
			return &watts
		}
	}

	return nil
}

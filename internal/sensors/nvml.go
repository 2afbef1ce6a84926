package sensors

import (
	"codeberg.org/mutker/tuxedoctl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const milliWattsPerWatt = 1000

// nvmlProvider reads NVIDIA GPU metrics through NVML. DRM sysfs exposes
// no usable telemetry for the proprietary driver, so this is the only
// path to discrete NVIDIA readings. A machine without the library or a
// matching GPU simply contributes no devices.
type nvmlProvider struct {
	initialized bool
}

func newNVMLProvider() *nvmlProvider {
	p := &nvmlProvider{}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Debug().Msgf("NVML unavailable: %v", nvml.ErrorString(ret))
		return p
	}

	p.initialized = true

	return p
}

func (p *nvmlProvider) Devices() []GPUInfo {
	if !p.initialized {
		return nil
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil
	}

	var gpus []GPUInfo
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}

		info := GPUInfo{
			Name: "NVIDIA GPU",
			Type: GPUDiscrete,
		}

		if name, ret := device.GetName(); ret == nvml.SUCCESS {
			info.Name = name
		}
		if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
			t := float64(temp)
			info.Temperature = &t
		}
		if clock, ret := device.GetClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
			freq := uint(clock)
			info.FrequencyMHz = &freq
		}
		if util, ret := device.GetUtilizationRates(); ret == nvml.SUCCESS {
			load := float64(util.Gpu)
			info.LoadPercent = &load
		}
		if power, ret := device.GetPowerUsage(); ret == nvml.SUCCESS {
			watts := float64(power) / milliWattsPerWatt
			info.PowerWatts = &watts
		}

		gpus = append(gpus, info)
	}

	return gpus
}

// Shutdown releases the NVML handle
func (p *nvmlProvider) Shutdown() {
	if p.initialized {
		nvml.Shutdown()
		p.initialized = false
	}
}

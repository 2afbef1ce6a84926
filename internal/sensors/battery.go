package sensors

import (
	"fmt"
	"path/filepath"
)

const tuxedoPlatformPath = "/sys/devices/platform/tuxedo_io"

// Battery reads the first power-supply device of type "Battery".
// A machine without one reports present=false with every field empty;
// that is a normal outcome, not an error.
func (m *Monitor) Battery() BatteryInfo {
	entries, err := m.fs.ReadDir(m.powerSupply)
	if err != nil {
		return BatteryInfo{}
	}

	for _, entry := range entries {
		devicePath := filepath.Join(m.powerSupply, entry.Name())

		deviceType, err := m.fs.ReadString(filepath.Join(devicePath, "type"))
		if err != nil || deviceType != "Battery" {
			continue
		}

		info := BatteryInfo{Present: true}

		info.VoltageMV = m.readBatteryInt(devicePath, "voltage_now")
		info.CurrentMA = m.readBatteryInt(devicePath, "current_now")
		info.ChargePercent = m.readBatteryInt(devicePath, "capacity")
		info.CapacityMAh = m.readBatteryInt(devicePath, "charge_full")

		if manufacturer, err := m.fs.ReadString(filepath.Join(devicePath, "manufacturer")); err == nil {
			info.Manufacturer = manufacturer
		}
		if model, err := m.fs.ReadString(filepath.Join(devicePath, "model_name")); err == nil {
			info.Model = model
		}

		info.ChargeStartThreshold = m.readChargeThreshold(devicePath, "start")
		info.ChargeEndThreshold = m.readChargeThreshold(devicePath, "end")

		return info
	}

	return BatteryInfo{}
}

func (m *Monitor) readBatteryInt(devicePath, name string) *int {
	value, err := m.fs.ReadInt(filepath.Join(devicePath, name))
	if err != nil {
		return nil
	}

	return &value
}

// readChargeThreshold prefers the tuxedo_io platform node and falls back
// to the generic power-supply attribute.
func (m *Monitor) readChargeThreshold(devicePath, kind string) *int {
	node := fmt.Sprintf("charge_control_%s_threshold", kind)

	if value, err := m.fs.ReadInt(filepath.Join(tuxedoPlatformPath, node)); err == nil {
		return &value
	}
	if value, err := m.fs.ReadInt(filepath.Join(devicePath, node)); err == nil {
		return &value
	}

	return nil
}

package btmon

import (
	"context"
	"sort"
	"strings"

	"github.com/fako1024/btmon/bt"
)

// ConnectedDevices collects all connected devices with battery information,
// reading GATT Battery Service devices via the reader first and classic
// devices via the classic source afterwards. Devices are filtered by a case
// insensitive partial name match (an empty filter matches everything).
func ConnectedDevices(ctx context.Context, reader *Reader, classic bt.ClassicSource, filter string) []Device {
	logger := reader.logger

	levels := reader.DiscoverBatteryLevels()

	var classicDevices []bt.ClassicDevice
	if classic != nil {
		var err error
		if classicDevices, err = classic.PairedDevices(ctx); err != nil {
			logger.Warnf("failed to list paired classic devices: %s", err)
			classicDevices = nil
		}
	}

	return MergeDevices(levels, classicDevices, filter, logger)
}

// MergeDevices combines GATT battery levels and classic devices. Classic
// devices sharing a name with a GATT device are skipped.
func MergeDevices(levels map[string]uint8, classic []bt.ClassicDevice, filter string, logger Logger) []Device {
	if logger == nil {
		logger = &NullLogger{}
	}
	filter = strings.ToLower(filter)

	devices := gattDevices(levels, filter, logger)

	seen := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		seen[d.Name] = struct{}{}
	}

	return append(devices, classicDevices(classic, filter, seen, logger)...)
}

func gattDevices(levels map[string]uint8, filter string, logger Logger) []Device {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)

	devices := make([]Device, 0, len(names))
	for _, name := range names {
		if !matchesFilter(name, filter) {
			continue
		}

		raw := levels[name]
		level := batteryLevelRef(raw)
		if level == nil {
			logger.Debugf("invalid battery level %d from GATT device `%s`", raw, name)
			continue
		}
		logger.Infof("found GATT device `%s` with battery level %s", name, level)

		devices = append(devices, Device{
			Name:         name,
			Address:      BLEAddress(),
			BatteryLevel: level,
		})
	}

	return devices
}

func classicDevices(classic []bt.ClassicDevice, filter string, seen map[string]struct{}, logger Logger) []Device {
	var devices []Device
	for _, c := range classic {
		if c.Name == "" {
			continue
		}
		if _, exists := seen[c.Name]; exists {
			logger.Debugf("skipping device `%s` already found via GATT", c.Name)
			continue
		}
		if !matchesFilter(c.Name, filter) {
			continue
		}

		logger.Debugf("classic battery values of `%s`: single=%d left=%d right=%d case=%d",
			c.Name, c.Single, c.Left, c.Right, c.Case)

		address := c.Address
		if address == "" {
			address = "unknown"
		}

		dev := Device{
			Name:         c.Name,
			Address:      ClassicAddress(address),
			BatteryLevel: batteryLevelRef(c.Single),
			BatteryLeft:  batteryLevelRef(c.Left),
			BatteryRight: batteryLevelRef(c.Right),
			BatteryCase:  batteryLevelRef(c.Case),
		}
		if !dev.HasBatteryInfo() {
			logger.Debugf("no battery info available for `%s`", c.Name)
			continue
		}
		logger.Infof("found classic device `%s` (%s)", dev.Name, dev.Address)

		seen[c.Name] = struct{}{}
		devices = append(devices, dev)
	}

	return devices
}

func matchesFilter(name, filter string) bool {
	return filter == "" || strings.Contains(strings.ToLower(name), filter)
}

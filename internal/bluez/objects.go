package bluez

import (
	"sort"
	"strings"

	"github.com/fako1024/btmon/bt"
	dbus "github.com/godbus/dbus/v5"
)

// findAdapter returns the adapter with the given name (the last element of
// its object path) or, if name is empty, the first adapter in path order
func findAdapter(objs managedObjects, name string) (dbus.ObjectPath, map[string]dbus.Variant, bool) {
	for _, path := range sortedPaths(objs) {
		props, ok := objs[path][adapterIface]
		if !ok {
			continue
		}
		if name == "" || strings.HasSuffix(string(path), "/"+name) {
			return path, props, true
		}
	}
	return "", nil, false
}

func adapterState(props map[string]dbus.Variant) bt.State {
	if boolProp(props, "Powered") {
		return bt.StatePoweredOn
	}
	return bt.StatePoweredOff
}

// connectedPeripherals lists the connected devices of an adapter that
// advertise the given service
func connectedPeripherals(objs managedObjects, adapter dbus.ObjectPath, serviceUUID string) []bt.Peripheral {
	var res []bt.Peripheral
	for _, path := range sortedPaths(objs) {
		props, ok := objs[path][deviceIface]
		if !ok || !onAdapter(props, adapter) || !boolProp(props, "Connected") {
			continue
		}
		if !bt.ContainsUUID(stringsProp(props, "UUIDs"), serviceUUID) {
			continue
		}
		res = append(res, bt.Peripheral{
			ID:   string(path),
			Name: deviceName(props),
		})
	}
	return res
}

// gattServices lists the GATT services of a device matching the filter (all
// services if the filter is empty)
func gattServices(objs managedObjects, device dbus.ObjectPath, filter []string) []bt.Service {
	var res []bt.Service
	for _, path := range sortedPaths(objs) {
		props, ok := objs[path][gattServiceIface]
		if !ok || objectPathProp(props, "Device") != device {
			continue
		}
		uuid := stringProp(props, "UUID")
		if len(filter) > 0 && !bt.ContainsUUID(filter, uuid) {
			continue
		}
		res = append(res, bt.Service{UUID: uuid, Path: string(path)})
	}
	return res
}

// gattCharacteristics lists the characteristics of a service matching the
// filter (all characteristics if the filter is empty)
func gattCharacteristics(objs managedObjects, service dbus.ObjectPath, filter []string) []bt.Characteristic {
	var res []bt.Characteristic
	for _, path := range sortedPaths(objs) {
		props, ok := objs[path][gattCharacteristicIfc]
		if !ok || objectPathProp(props, "Service") != service {
			continue
		}
		uuid := stringProp(props, "UUID")
		if len(filter) > 0 && !bt.ContainsUUID(filter, uuid) {
			continue
		}
		res = append(res, bt.Characteristic{UUID: uuid, Path: string(path)})
	}
	return res
}

// pairedDevices lists all paired devices of an adapter along with the battery
// percentage BlueZ exposes for them
func pairedDevices(objs managedObjects, adapter dbus.ObjectPath) []bt.ClassicDevice {
	var res []bt.ClassicDevice
	for _, path := range sortedPaths(objs) {
		ifaces := objs[path]
		props, ok := ifaces[deviceIface]
		if !ok || !onAdapter(props, adapter) || !boolProp(props, "Paired") {
			continue
		}

		dev := bt.ClassicDevice{
			Name:      deviceName(props),
			Address:   stringProp(props, "Address"),
			Connected: boolProp(props, "Connected"),
		}
		if dev.Address == "" {
			dev.Address = macFromPath(path)
		}
		if battery, ok := ifaces[batteryIface]; ok {
			dev.Single = byteProp(battery, "Percentage")
		}
		res = append(res, dev)
	}
	return res
}

func deviceName(props map[string]dbus.Variant) string {
	if alias := stringProp(props, "Alias"); alias != "" {
		return alias
	}
	return stringProp(props, "Name")
}

func onAdapter(props map[string]dbus.Variant, adapter dbus.ObjectPath) bool {
	return adapter == "" || objectPathProp(props, "Adapter") == adapter
}

func macFromPath(p dbus.ObjectPath) string {
	s := string(p)
	// Expect .../dev_XX_XX_XX_XX_XX_XX
	idx := strings.LastIndex(s, "/dev_")
	if idx < 0 {
		return ""
	}
	return strings.ReplaceAll(s[idx+5:], "_", ":")
}

func sortedPaths(objs managedObjects) []dbus.ObjectPath {
	paths := make([]dbus.ObjectPath, 0, len(objs))
	for path := range objs {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i] < paths[j]
	})
	return paths
}

////////////////////////////////////////////////////////////////////////////////

func boolProp(props map[string]dbus.Variant, key string) bool {
	v, ok := props[key]
	if !ok {
		return false
	}
	b, _ := v.Value().(bool)
	return b
}

func stringProp(props map[string]dbus.Variant, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

func stringsProp(props map[string]dbus.Variant, key string) []string {
	v, ok := props[key]
	if !ok {
		return nil
	}
	s, _ := v.Value().([]string)
	return s
}

func byteProp(props map[string]dbus.Variant, key string) uint8 {
	v, ok := props[key]
	if !ok {
		return 0
	}
	b, _ := v.Value().(byte)
	return b
}

func objectPathProp(props map[string]dbus.Variant, key string) dbus.ObjectPath {
	v, ok := props[key]
	if !ok {
		return ""
	}
	p, _ := v.Value().(dbus.ObjectPath)
	return p
}

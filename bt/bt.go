//go:generate stringer -type=State -trimprefix=State

// Package bt defines the boundary between the battery discovery core and the
// platform Bluetooth stacks driving it.
//
// Adapters implement Central (outbound requests) and report the outcome of
// every request asynchronously by posting one of the Event types to the Inbox
// handed to Central.Init. Adapters must never call back into the core
// directly from their own goroutines.
package bt

import "strings"

const (

	// BatteryServiceUUID is the 16-bit UUID of the GATT Battery Service
	BatteryServiceUUID = "180f"

	// BatteryLevelUUID is the 16-bit UUID of the Battery Level characteristic
	BatteryLevelUUID = "2a19"

	// baseUUIDSuffix completes a 16-bit UUID to the Bluetooth base UUID
	baseUUIDSuffix = "-0000-1000-8000-00805f9b34fb"
)

// State denotes the state of the local Bluetooth radio
type State int

const (

	// StateUnknown is reported while the radio state has not been determined yet
	StateUnknown State = iota

	// StateResetting is reported while the radio is being reset
	StateResetting

	// StateUnsupported is reported if no usable radio exists
	StateUnsupported

	// StateUnauthorized is reported if access to the radio was denied
	StateUnauthorized

	// StatePoweredOff is reported while the radio is switched off
	StatePoweredOff

	// StatePoweredOn is reported once the radio is ready for use
	StatePoweredOn
)

// Peripheral denotes a remote device as surfaced by an adapter
type Peripheral struct {
	ID   string
	Name string
}

// Service denotes a discovered GATT service. Path is an adapter scoped key
// used to route follow-up requests.
type Service struct {
	UUID string
	Path string
}

// Characteristic denotes a discovered GATT characteristic
type Characteristic struct {
	UUID string
	Path string
}

// Inbox receives asynchronous protocol events. Post must be safe for
// concurrent use.
type Inbox interface {
	Post(ev Event)
}

// Central denotes the outbound side of a platform adapter. Apart from Init
// and ConnectedPeripherals, all requests complete asynchronously by posting
// an event to the Inbox passed to Init.
type Central interface {

	// Init attaches the inbox and returns the current radio state. Adapters
	// that only learn the state asynchronously return StateUnknown and post a
	// StateChanged event later.
	Init(inbox Inbox) (State, error)

	// ConnectedPeripherals lists peripherals already connected to the host
	// that expose the given service
	ConnectedPeripherals(serviceUUID string) ([]Peripheral, error)

	Connect(id string)
	DiscoverServices(id string, serviceUUIDs []string)
	DiscoverCharacteristics(id string, service Service, characteristicUUIDs []string)
	ReadValue(id string, characteristic Characteristic)

	Close() error
}

// ExpandUUID returns the canonical 128-bit form of a UUID. 16-bit and 32-bit
// UUIDs are expanded against the Bluetooth base UUID.
func ExpandUUID(uuid string) string {
	u := strings.TrimPrefix(strings.ToLower(uuid), "0x")
	switch len(u) {
	case 4:
		return "0000" + u + baseUUIDSuffix
	case 8:
		return u + baseUUIDSuffix
	case 32:
		return u[0:8] + "-" + u[8:12] + "-" + u[12:16] + "-" + u[16:20] + "-" + u[20:]
	}
	return u
}

// MatchUUID reports whether two UUIDs denote the same attribute, regardless
// of their notation
func MatchUUID(a, b string) bool {
	return ExpandUUID(a) == ExpandUUID(b)
}

// ContainsUUID reports whether uuid is part of list
func ContainsUUID(list []string, uuid string) bool {
	for _, u := range list {
		if MatchUUID(u, uuid) {
			return true
		}
	}
	return false
}

package btmon

import "fmt"

// BatteryLevel denotes a validated battery percentage (1-100)
type BatteryLevel uint8

// NewBatteryLevel validates a raw battery reading. Zero and values above 100
// denote "unavailable".
func NewBatteryLevel(value uint8) (BatteryLevel, bool) {
	if value == 0 || value > 100 {
		return 0, false
	}
	return BatteryLevel(value), true
}

// Percentage returns the battery level in percent
func (b BatteryLevel) Percentage() uint8 {
	return uint8(b)
}

// String fulfils the Stringer interface
func (b BatteryLevel) String() string {
	return fmt.Sprintf("%d%%", uint8(b))
}

func batteryLevelRef(value uint8) *BatteryLevel {
	b, ok := NewBatteryLevel(value)
	if !ok {
		return nil
	}
	return &b
}

// DeviceAddress denotes the address of a device: a MAC address for classic
// devices, while BLE addresses are not exposed by the platform
type DeviceAddress struct {
	classic string
	isBLE   bool
}

// ClassicAddress returns the address of a classic Bluetooth device
func ClassicAddress(addr string) DeviceAddress {
	return DeviceAddress{classic: addr}
}

// BLEAddress returns the (undisclosed) address of a BLE device
func BLEAddress() DeviceAddress {
	return DeviceAddress{isBLE: true}
}

// IsBLE returns if the address belongs to a BLE device
func (a DeviceAddress) IsBLE() bool {
	return a.isBLE
}

// String fulfils the Stringer interface
func (a DeviceAddress) String() string {
	if a.isBLE {
		return "BLE"
	}
	return a.classic
}

// MarshalText fulfils the encoding.TextMarshaler interface
func (a DeviceAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Device denotes a Bluetooth device with battery information. Multi component
// accessories (e.g. earbuds) report left / right / case levels instead of a
// single one.
type Device struct {
	Name    string        `json:"name" toml:"name"`
	Address DeviceAddress `json:"address" toml:"address"`

	BatteryLevel *BatteryLevel `json:"battery_level,omitempty" toml:"battery_level,omitempty"`
	BatteryLeft  *BatteryLevel `json:"battery_left,omitempty" toml:"battery_left,omitempty"`
	BatteryRight *BatteryLevel `json:"battery_right,omitempty" toml:"battery_right,omitempty"`
	BatteryCase  *BatteryLevel `json:"battery_case,omitempty" toml:"battery_case,omitempty"`
}

// HasBatteryInfo returns if at least one battery reading is available
func (d *Device) HasBatteryInfo() bool {
	return d.BatteryLevel != nil ||
		d.BatteryLeft != nil ||
		d.BatteryRight != nil ||
		d.BatteryCase != nil
}

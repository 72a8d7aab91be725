package bt

import "context"

// ClassicDevice denotes a paired classic Bluetooth device along with the raw
// battery readings the platform exposes for it. Readings of 0 or above 100
// mean "not available".
type ClassicDevice struct {
	Name      string
	Address   string
	Connected bool

	Single uint8
	Left   uint8
	Right  uint8
	Case   uint8
}

// ClassicSource provides a synchronous snapshot of paired classic devices
type ClassicSource interface {
	PairedDevices(ctx context.Context) ([]ClassicDevice, error)
}

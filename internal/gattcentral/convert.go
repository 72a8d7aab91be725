//go:build linux

package gattcentral

import (
	"fmt"
	"strings"

	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/gatt"
)

var defaultClientOptions = []gatt.Option{
	gatt.LnxMaxConnections(1),
	gatt.LnxDeviceID(-1, true),
}

func convertState(s gatt.State) bt.State {
	switch s {
	case gatt.StatePoweredOn:
		return bt.StatePoweredOn
	case gatt.StatePoweredOff:
		return bt.StatePoweredOff
	case gatt.StateUnauthorized:
		return bt.StateUnauthorized
	case gatt.StateUnsupported:
		return bt.StateUnsupported
	case gatt.StateResetting:
		return bt.StateResetting
	}
	return bt.StateUnknown
}

func parseUUIDs(uuids []string) []gatt.UUID {
	res := make([]gatt.UUID, 0, len(uuids))
	for _, u := range uuids {
		res = append(res, gatt.MustParseUUID(strings.ReplaceAll(u, "-", "")))
	}
	return res
}

// matchesFilter guards against devices reporting attributes outside of the
// requested set
func matchesFilter(filter []string, uuid string) bool {
	return len(filter) == 0 || bt.ContainsUUID(filter, uuid)
}

func attributePath(parent, kind string, idx int) string {
	return fmt.Sprintf("%s/%s%04d", parent, kind, idx)
}

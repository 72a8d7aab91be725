package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandUUID(t *testing.T) {
	assert.Equal(t, "0000180f-0000-1000-8000-00805f9b34fb", ExpandUUID(BatteryServiceUUID))
	assert.Equal(t, "00002a19-0000-1000-8000-00805f9b34fb", ExpandUUID("0x2A19"))
	assert.Equal(t, "0000180f-0000-1000-8000-00805f9b34fb", ExpandUUID("0000180F"))
	assert.Equal(t, "a75cc7fc-c956-488f-ac2a-2dbc08b63a04", ExpandUUID("a75cc7fcc956488fac2a2dbc08b63a04"))
	assert.Equal(t, "0000180f-0000-1000-8000-00805f9b34fb", ExpandUUID("0000180F-0000-1000-8000-00805F9B34FB"))
}

func TestMatchUUID(t *testing.T) {
	assert.True(t, MatchUUID("180F", "0000180f-0000-1000-8000-00805f9b34fb"))
	assert.True(t, MatchUUID("2a19", "2A19"))
	assert.False(t, MatchUUID("180f", "180a"))

	assert.True(t, ContainsUUID([]string{"00001800-0000-1000-8000-00805f9b34fb", "0000180f-0000-1000-8000-00805f9b34fb"}, BatteryServiceUUID))
	assert.False(t, ContainsUUID(nil, BatteryServiceUUID))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "PoweredOn", StatePoweredOn.String())
	assert.Equal(t, "Unauthorized", StateUnauthorized.String())
	assert.Equal(t, "State(42)", State(42).String())
}

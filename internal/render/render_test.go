package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fako1024/btmon"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(v uint8) *btmon.BatteryLevel {
	b, ok := btmon.NewBatteryLevel(v)
	if !ok {
		return nil
	}
	return &b
}

func testDevices() []btmon.Device {
	return []btmon.Device{
		{
			Name:         "Keyboard",
			Address:      btmon.BLEAddress(),
			BatteryLevel: level(76),
		},
		{
			Name:         "AirPods Pro",
			Address:      btmon.ClassicAddress("aa:bb:cc:dd:ee:ff"),
			BatteryLeft:  level(80),
			BatteryRight: level(90),
			BatteryCase:  level(100),
		},
	}
}

func TestFormatDevice(t *testing.T) {
	devices := testDevices()
	assert.Equal(t, "Keyboard: 76%", FormatDevice(devices[0], PlainStyles()))
	assert.Equal(t, "AirPods Pro: L:80% R:90% Case:100%", FormatDevice(devices[1], PlainStyles()))

	partial := btmon.Device{Name: "Buds", BatteryRight: level(40)}
	assert.Equal(t, "Buds: R:40%", FormatDevice(partial, PlainStyles()))
}

func TestText(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Text(buf, testDevices(), PlainStyles()))
	assert.Equal(t, "Keyboard: 76%\nAirPods Pro: L:80% R:90% Case:100%\n", buf.String())
}

func TestJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, JSON(buf, testDevices()))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, map[string]interface{}{
		"name":          "Keyboard",
		"address":       "BLE",
		"battery_level": float64(76),
	}, decoded[0])
	assert.Equal(t, map[string]interface{}{
		"name":          "AirPods Pro",
		"address":       "aa:bb:cc:dd:ee:ff",
		"battery_left":  float64(80),
		"battery_right": float64(90),
		"battery_case":  float64(100),
	}, decoded[1])

	buf.Reset()
	require.NoError(t, JSON(buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestTOML(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, TOML(buf, testDevices()))

	var decoded struct {
		Devices []struct {
			Name         string `toml:"name"`
			Address      string `toml:"address"`
			BatteryLevel *int   `toml:"battery_level"`
			BatteryCase  *int   `toml:"battery_case"`
		} `toml:"devices"`
	}
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Devices, 2)

	assert.Equal(t, "Keyboard", decoded.Devices[0].Name)
	assert.Equal(t, "BLE", decoded.Devices[0].Address)
	require.NotNil(t, decoded.Devices[0].BatteryLevel)
	assert.Equal(t, 76, *decoded.Devices[0].BatteryLevel)
	assert.Nil(t, decoded.Devices[0].BatteryCase)

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", decoded.Devices[1].Address)
	assert.Nil(t, decoded.Devices[1].BatteryLevel)
	require.NotNil(t, decoded.Devices[1].BatteryCase)
	assert.Equal(t, 100, *decoded.Devices[1].BatteryCase)
}

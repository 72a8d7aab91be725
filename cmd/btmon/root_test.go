package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fako1024/btmon"
	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/btmon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncCentral answers every request immediately by posting to the inbox
type syncCentral struct {
	state  bt.State
	levels map[string]byte
	inbox  bt.Inbox
	closed bool
}

func (c *syncCentral) Init(inbox bt.Inbox) (bt.State, error) {
	c.inbox = inbox
	return c.state, nil
}

func (c *syncCentral) ConnectedPeripherals(string) ([]bt.Peripheral, error) {
	var res []bt.Peripheral
	for name := range c.levels {
		res = append(res, bt.Peripheral{ID: "id-" + name, Name: name})
	}
	return res, nil
}

func (c *syncCentral) Connect(id string) {
	c.inbox.Post(bt.Connected{ID: id})
}

func (c *syncCentral) DiscoverServices(id string, _ []string) {
	c.inbox.Post(bt.ServicesDiscovered{ID: id, Services: []bt.Service{{UUID: bt.BatteryServiceUUID}}})
}

func (c *syncCentral) DiscoverCharacteristics(id string, svc bt.Service, _ []string) {
	c.inbox.Post(bt.CharacteristicsDiscovered{ID: id, Service: svc, Characteristics: []bt.Characteristic{{UUID: bt.BatteryLevelUUID}}})
}

func (c *syncCentral) ReadValue(id string, ch bt.Characteristic) {
	name := id[len("id-"):]
	c.inbox.Post(bt.ValueUpdated{ID: id, Characteristic: ch, Value: []byte{c.levels[name]}})
}

func (c *syncCentral) Close() error {
	c.closed = true
	return nil
}

type staticClassic []bt.ClassicDevice

func (s staticClassic) PairedDevices(context.Context) ([]bt.ClassicDevice, error) {
	return s, nil
}

func testFactory(central *syncCentral, classic bt.ClassicSource) backendFactory {
	return func(cfg config.Config, logger btmon.Logger) (*backend, error) {
		return &backend{
			central: central,
			classic: classic,
			closers: []func() error{central.Close},
		}, nil
	}
}

func executeCLI(t *testing.T, factory backendFactory, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd(factory)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func testBackend() (*syncCentral, backendFactory) {
	central := &syncCentral{
		state:  bt.StatePoweredOn,
		levels: map[string]byte{"MX Keys": 76},
	}
	classic := staticClassic{
		{Name: "AirPods Pro", Address: "AA:BB:CC:DD:EE:FF", Left: 80, Right: 90, Case: 100},
		{Name: "MX Keys", Address: "11:22:33:44:55:66", Single: 50},
	}
	return central, testFactory(central, classic)
}

func TestRootTextOutput(t *testing.T) {
	central, factory := testBackend()

	stdout, _, err := executeCLI(t, factory)
	require.NoError(t, err)
	assert.Equal(t, "MX Keys: 76%\nAirPods Pro: L:80% R:90% Case:100%\n", stdout)
	assert.True(t, central.closed)
}

func TestRootJSONOutput(t *testing.T) {
	_, factory := testBackend()

	stdout, _, err := executeCLI(t, factory, "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var devices []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &devices))
	require.Len(t, devices, 2)
	assert.Equal(t, "MX Keys", devices[0]["name"])
	assert.Equal(t, "BLE", devices[0]["address"])
	assert.EqualValues(t, 76, devices[0]["battery_level"])
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", devices[1]["address"])
	assert.NotContains(t, devices[1], "battery_level")
}

func TestRootTOMLOutput(t *testing.T) {
	_, factory := testBackend()

	stdout, _, err := executeCLI(t, factory, "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[[devices]]")
	assert.Contains(t, stdout, "MX Keys")
	assert.Contains(t, stdout, "battery_case = 100")
}

func TestRootDeviceFilter(t *testing.T) {
	_, factory := testBackend()

	stdout, _, err := executeCLI(t, factory, "-d", "airpods")
	require.NoError(t, err)
	assert.Equal(t, "AirPods Pro: L:80% R:90% Case:100%\n", stdout)
}

func TestRootNoMatchingDevices(t *testing.T) {
	_, factory := testBackend()

	stdout, stderr, err := executeCLI(t, factory, "--device", "headphones")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, "no devices found matching 'headphones'\n", stderr)
}

func TestRootNoDevices(t *testing.T) {
	central := &syncCentral{state: bt.StateUnsupported}

	stdout, stderr, err := executeCLI(t, testFactory(central, nil))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, "no devices with battery info found\n", stderr)
}

func TestRootBackendFailure(t *testing.T) {
	factory := func(config.Config, btmon.Logger) (*backend, error) {
		return nil, errors.New("no adapter")
	}

	_, stderr, err := executeCLI(t, factory)
	require.NoError(t, err)
	assert.Equal(t, "no devices with battery info found\n", stderr)
}

func TestRootInvalidFormat(t *testing.T) {
	_, factory := testBackend()

	_, _, err := executeCLI(t, factory, "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRootConfigFile(t *testing.T) {
	_, factory := testBackend()

	path := filepath.Join(t.TempDir(), "btmon.toml")
	require.NoError(t, os.WriteFile(path, []byte("format = \"json\"\n"), 0o600))

	stdout, _, err := executeCLI(t, factory, "--config", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

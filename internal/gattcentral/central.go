//go:build linux

// Package gattcentral implements battery discovery on top of a raw HCI
// device driven by github.com/fako1024/gatt.
//
// The HCI device owns its connections exclusively: only peripherals connected
// through the device (or registered via Track) are visible, connections held
// by the system Bluetooth daemon are not.
package gattcentral

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/gatt"
)

// Logger denotes the logging methods used by the central
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Debugf(format string, args ...interface{}) {}
func (nullLogger) Warnf(format string, args ...interface{})  {}

// Central adapts a gatt.Device to bt.Central
type Central struct {
	btDevice gatt.Device

	mu              sync.Mutex
	inbox           bt.Inbox
	known           map[string]gatt.Peripheral
	connected       map[string]bool
	pendingConnects map[string]bool

	// discovered attributes per peripheral, keyed by bt.Service.Path / bt.Characteristic.Path
	services        map[string]*gatt.Service
	characteristics map[string]*gatt.Characteristic

	logger Logger
}

var _ bt.Central = (*Central)(nil)

// WithDevice sets the Bluetooth device
func WithDevice(btDevice gatt.Device) func(*Central) {
	return func(c *Central) {
		c.btDevice = btDevice
	}
}

// WithLogger sets a logger
func WithLogger(logger Logger) func(*Central) {
	return func(c *Central) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newCentral() *Central {
	return &Central{
		known:           make(map[string]gatt.Peripheral),
		connected:       make(map[string]bool),
		pendingConnects: make(map[string]bool),
		services:        make(map[string]*gatt.Service),
		characteristics: make(map[string]*gatt.Characteristic),
		logger:          nullLogger{},
	}
}

// New instantiates a new Central, executing functional options, if any
func New(options ...func(*Central)) (*Central, error) {
	c := newCentral()

	for _, option := range options {
		option(c)
	}

	// Initialize a new GATT device (if not provided as option)
	if c.btDevice == nil {
		btDevice, err := gatt.NewDevice(defaultClientOptions...)
		if err != nil {
			return nil, fmt.Errorf("gattcentral: open device: %w", err)
		}
		c.btDevice = btDevice
	}

	// Register handlers
	c.btDevice.Handle(
		gatt.AddPeripheralConnected(c.onPeriphConnected),
		gatt.AddPeripheralDisconnected(c.onPeriphDisconnected),
	)

	return c, nil
}

// Track registers a peripheral that was connected outside of this central
func (c *Central) Track(p gatt.Peripheral) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.known[p.ID()] = p
	c.connected[p.ID()] = true
}

// Init attaches the inbox and initializes the device. The radio state is only
// known once the device reports it, it is posted as bt.StateChanged.
func (c *Central) Init(inbox bt.Inbox) (bt.State, error) {
	c.mu.Lock()
	c.inbox = inbox
	c.mu.Unlock()

	if err := c.btDevice.Init(c.onStateChanged); err != nil {
		return bt.StateUnknown, fmt.Errorf("gattcentral: init device: %w", err)
	}
	return bt.StateUnknown, nil
}

// ConnectedPeripherals lists the tracked connected peripherals. The gatt
// device cannot query advertised services without connecting, so every
// connected peripheral is a candidate and the service filter is applied
// during service discovery.
func (c *Central) ConnectedPeripherals(serviceUUID string) ([]bt.Peripheral, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]bt.Peripheral, 0, len(c.connected))
	for id := range c.connected {
		res = append(res, bt.Peripheral{
			ID:   id,
			Name: c.known[id].Name(),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})

	c.logger.Debugf("%d connected peripheral(s) are candidates for service %s", len(res), serviceUUID)
	return res, nil
}

// Connect connects a peripheral (if not connected already)
func (c *Central) Connect(id string) {
	c.mu.Lock()
	p, exists := c.known[id]
	isConnected := c.connected[id]
	if exists && !isConnected {
		c.pendingConnects[id] = true
	}
	c.mu.Unlock()

	switch {
	case !exists:
		c.goPost(bt.ConnectFailed{ID: id, Err: fmt.Errorf("gattcentral: unknown peripheral `%s`", id)})
	case isConnected:
		c.goPost(bt.Connected{ID: id, Name: p.Name()})
	default:
		go func() {
			if err := c.btDevice.Connect(p); err != nil {
				c.mu.Lock()
				delete(c.pendingConnects, id)
				c.mu.Unlock()
				c.post(bt.ConnectFailed{ID: id, Err: err})
			}
		}()
	}
}

// DiscoverServices discovers the services of a peripheral matching the filter
func (c *Central) DiscoverServices(id string, serviceUUIDs []string) {
	p, ok := c.peripheral(id)
	if !ok {
		c.goPost(bt.ServicesDiscovered{ID: id, Err: fmt.Errorf("gattcentral: unknown peripheral `%s`", id)})
		return
	}

	go func() {
		ss, err := p.DiscoverServices(parseUUIDs(serviceUUIDs))
		if err != nil {
			c.post(bt.ServicesDiscovered{ID: id, Err: fmt.Errorf("failed to discover services: %w", err)})
			return
		}

		res := make([]bt.Service, 0, len(ss))
		c.mu.Lock()
		for i, s := range ss {
			if !matchesFilter(serviceUUIDs, s.UUID().String()) {
				continue
			}
			path := attributePath(id, "service", i)
			c.services[path] = s
			res = append(res, bt.Service{UUID: s.UUID().String(), Path: path})
		}
		c.mu.Unlock()

		c.post(bt.ServicesDiscovered{ID: id, Services: res})
	}()
}

// DiscoverCharacteristics discovers the characteristics of a service matching
// the filter
func (c *Central) DiscoverCharacteristics(id string, service bt.Service, characteristicUUIDs []string) {
	p, ok := c.peripheral(id)
	c.mu.Lock()
	s, found := c.services[service.Path]
	c.mu.Unlock()
	if !ok || !found {
		c.goPost(bt.CharacteristicsDiscovered{ID: id, Service: service, Err: fmt.Errorf("gattcentral: unknown service `%s`", service.Path)})
		return
	}

	go func() {
		cs, err := p.DiscoverCharacteristics(parseUUIDs(characteristicUUIDs), s)
		if err != nil {
			c.post(bt.CharacteristicsDiscovered{ID: id, Service: service, Err: fmt.Errorf("failed to discover characteristics: %w", err)})
			return
		}

		res := make([]bt.Characteristic, 0, len(cs))
		c.mu.Lock()
		for i, ch := range cs {
			if !matchesFilter(characteristicUUIDs, ch.UUID().String()) {
				continue
			}
			path := attributePath(service.Path, "char", i)
			c.characteristics[path] = ch
			res = append(res, bt.Characteristic{UUID: ch.UUID().String(), Path: path})
		}
		c.mu.Unlock()

		c.post(bt.CharacteristicsDiscovered{ID: id, Service: service, Characteristics: res})
	}()
}

// ReadValue reads the value of a characteristic
func (c *Central) ReadValue(id string, characteristic bt.Characteristic) {
	p, ok := c.peripheral(id)
	c.mu.Lock()
	ch, found := c.characteristics[characteristic.Path]
	c.mu.Unlock()
	if !ok || !found {
		c.goPost(bt.ValueUpdated{ID: id, Characteristic: characteristic, Err: fmt.Errorf("gattcentral: unknown characteristic `%s`", characteristic.Path)})
		return
	}

	go func() {
		rawData, err := p.ReadCharacteristic(ch)
		if err != nil {
			c.post(bt.ValueUpdated{ID: id, Characteristic: characteristic, Err: fmt.Errorf("failed to read characteristic: %w", err)})
			return
		}
		c.post(bt.ValueUpdated{ID: id, Characteristic: characteristic, Value: rawData})
	}()
}

// Close stops the device
func (c *Central) Close() error {
	if err := c.btDevice.StopScanning(); err != nil {
		c.logger.Warnf("failed to stop scanning: %s", err)
	}
	return c.btDevice.RemoveAllServices()
}

////////////////////////////////////////////////////////////////////////////////

func (c *Central) onStateChanged(d gatt.Device, s gatt.State) {
	c.goPost(bt.StateChanged{State: convertState(s)})
}

func (c *Central) onPeriphConnected(p gatt.Peripheral, connErr error) {
	c.mu.Lock()
	requested := c.pendingConnects[p.ID()]
	delete(c.pendingConnects, p.ID())
	c.known[p.ID()] = p
	if connErr == nil {
		c.connected[p.ID()] = true
	}
	c.mu.Unlock()

	c.logger.Debugf("connected peripheral `%s/%s` (err: %v)", p.Name(), p.ID(), connErr)
	if !requested {
		return
	}

	if connErr != nil {
		c.post(bt.ConnectFailed{ID: p.ID(), Err: connErr})
		return
	}
	c.post(bt.Connected{ID: p.ID(), Name: p.Name()})
}

func (c *Central) onPeriphDisconnected(p gatt.Peripheral, err error) {
	c.mu.Lock()
	delete(c.connected, p.ID())
	c.mu.Unlock()

	c.logger.Debugf("disconnected peripheral `%s/%s`", p.Name(), p.ID())
}

func (c *Central) peripheral(id string) (gatt.Peripheral, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, exists := c.known[id]
	return p, exists
}

func (c *Central) post(ev bt.Event) {
	c.mu.Lock()
	inbox := c.inbox
	c.mu.Unlock()

	if inbox == nil {
		c.logger.Debugf("dropping %T, central not initialized", ev)
		return
	}
	inbox.Post(ev)
}

// goPost posts from a separate goroutine. Central methods run on the goroutine
// draining the inbox and must never block on it.
func (c *Central) goPost(ev bt.Event) {
	go c.post(ev)
}

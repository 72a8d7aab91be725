// Package bluez implements the platform side of battery discovery on top of
// the BlueZ D-Bus API: GATT reads from connected Bluetooth LE peripherals and
// a snapshot of paired classic devices.
//
// Requests are issued on short-lived goroutines. Their results are reported
// exclusively through the bt.Inbox passed to Init, never by calling into the
// discovery core directly.
package bluez

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fako1024/btmon/bt"
	dbus "github.com/godbus/dbus/v5"
)

const (
	bluezService          = "org.bluez"
	adapterIface          = "org.bluez.Adapter1"
	deviceIface           = "org.bluez.Device1"
	batteryIface          = "org.bluez.Battery1"
	gattServiceIface      = "org.bluez.GattService1"
	gattCharacteristicIfc = "org.bluez.GattCharacteristic1"
	objManagerIface       = "org.freedesktop.DBus.ObjectManager"

	errAlreadyConnected = "org.bluez.Error.AlreadyConnected"
	errAccessDenied     = "org.freedesktop.DBus.Error.AccessDenied"

	defaultResolveTimeout  = 5 * time.Second
	defaultResolveInterval = 50 * time.Millisecond
)

// Logger denotes the logging methods used by the adapter
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Debugf(format string, args ...interface{}) {}
func (nullLogger) Warnf(format string, args ...interface{})  {}

// Adapter talks to a single BlueZ adapter (e.g. hci0)
type Adapter struct {
	adapterName string
	busAddress  string

	resolveTimeout  time.Duration
	resolveInterval time.Duration

	bus         objectBus
	adapterPath dbus.ObjectPath

	mu    sync.Mutex
	inbox bt.Inbox

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error

	logger Logger
}

// WithAdapter restricts the adapter to the BlueZ adapter with the given name
// (e.g. hci0). By default the first adapter found is used.
func WithAdapter(name string) func(*Adapter) {
	return func(a *Adapter) {
		a.adapterName = name
	}
}

// WithBusAddress connects to the given D-Bus address instead of the system bus
func WithBusAddress(address string) func(*Adapter) {
	return func(a *Adapter) {
		a.busAddress = address
	}
}

// WithLogger sets a logger
func WithLogger(logger Logger) func(*Adapter) {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func withBus(bus objectBus) func(*Adapter) {
	return func(a *Adapter) {
		a.bus = bus
	}
}

// New connects to D-Bus and instantiates a new Adapter, executing functional
// options, if any
func New(options ...func(*Adapter)) (*Adapter, error) {
	a := &Adapter{
		resolveTimeout:  defaultResolveTimeout,
		resolveInterval: defaultResolveInterval,
		logger:          nullLogger{},
	}
	for _, option := range options {
		option(a)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	if a.bus == nil {
		bus, err := dialBus(a.busAddress)
		if err != nil {
			a.cancel()
			return nil, err
		}
		a.bus = bus
	}

	return a, nil
}

// Close aborts all in-flight requests and releases the D-Bus connection. It is
// safe to call more than once.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.cancel()
		a.wg.Wait()
		a.closeErr = a.bus.close()
	})
	return a.closeErr
}

// goRequest runs a request on a tracked goroutine
func (a *Adapter) goRequest(fn func(ctx context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(a.ctx)
	}()
}

// resolveAdapter selects the configured (or first) BlueZ adapter
func (a *Adapter) resolveAdapter(objs managedObjects) (dbus.ObjectPath, map[string]dbus.Variant, error) {
	path, props, ok := findAdapter(objs, a.adapterName)
	if !ok {
		if a.adapterName != "" {
			return "", nil, fmt.Errorf("bluez: adapter `%s` not found", a.adapterName)
		}
		return "", nil, errors.New("bluez: no adapter found")
	}
	return path, props, nil
}

func isDBusError(err error, name string) bool {
	var dbErr dbus.Error
	if errors.As(err, &dbErr) {
		return dbErr.Name == name
	}
	var dbErrPtr *dbus.Error
	if errors.As(err, &dbErrPtr) {
		return dbErrPtr.Name == name
	}
	return false
}

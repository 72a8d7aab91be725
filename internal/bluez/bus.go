package bluez

import (
	"context"
	"fmt"

	dbus "github.com/godbus/dbus/v5"
)

type managedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// objectBus is the subset of D-Bus functionality the adapter relies on
type objectBus interface {
	managedObjects(ctx context.Context) (managedObjects, error)
	call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call
	close() error
}

type systemBus struct {
	conn *dbus.Conn
}

func dialBus(address string) (*systemBus, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if address == "" {
		conn, err = dbus.ConnectSystemBus()
	} else {
		conn, err = dbus.Connect(address)
	}
	if err != nil {
		return nil, fmt.Errorf("bluez: connect bus: %w", err)
	}
	return &systemBus{conn: conn}, nil
}

func (b *systemBus) managedObjects(ctx context.Context) (managedObjects, error) {
	var objs managedObjects
	obj := b.conn.Object(bluezService, dbus.ObjectPath("/"))
	if call := obj.CallWithContext(ctx, objManagerIface+".GetManagedObjects", 0); call.Err != nil {
		return nil, fmt.Errorf("bluez: GetManagedObjects: %w", call.Err)
	} else if err := call.Store(&objs); err != nil {
		return nil, fmt.Errorf("bluez: decode GetManagedObjects: %w", err)
	}
	return objs, nil
}

func (b *systemBus) call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return b.conn.Object(bluezService, path).CallWithContext(ctx, method, 0, args...)
}

func (b *systemBus) close() error {
	return b.conn.Close()
}

package bluez

import (
	"context"
	"fmt"
	"time"

	"github.com/fako1024/btmon/bt"
	dbus "github.com/godbus/dbus/v5"
)

var _ bt.Central = (*Adapter)(nil)

// Init attaches the inbox and determines the state of the adapter
func (a *Adapter) Init(inbox bt.Inbox) (bt.State, error) {
	a.mu.Lock()
	a.inbox = inbox
	a.mu.Unlock()

	objs, err := a.bus.managedObjects(a.ctx)
	if err != nil {
		if isDBusError(err, errAccessDenied) {
			a.logger.Warnf("access to bluez denied: %s", err)
			return bt.StateUnauthorized, nil
		}
		return bt.StateUnknown, err
	}

	path, props, err := a.resolveAdapter(objs)
	if err != nil {
		a.logger.Warnf("%s", err)
		return bt.StateUnsupported, nil
	}
	a.adapterPath = path

	state := adapterState(props)
	a.logger.Debugf("using adapter `%s` (state: %s)", path, state)

	return state, nil
}

// ConnectedPeripherals lists the connected devices of the adapter exposing the
// given service
func (a *Adapter) ConnectedPeripherals(serviceUUID string) ([]bt.Peripheral, error) {
	objs, err := a.bus.managedObjects(a.ctx)
	if err != nil {
		return nil, err
	}
	return connectedPeripherals(objs, a.adapterPath, serviceUUID), nil
}

// Connect ensures the device is connected. Devices that are connected
// already are reported right away by BlueZ.
func (a *Adapter) Connect(id string) {
	a.goRequest(func(ctx context.Context) {
		call := a.bus.call(ctx, dbus.ObjectPath(id), deviceIface+".Connect")
		if call.Err != nil && !isDBusError(call.Err, errAlreadyConnected) {
			a.post(bt.ConnectFailed{ID: id, Err: fmt.Errorf("bluez: Connect: %w", call.Err)})
			return
		}

		var name string
		if objs, err := a.bus.managedObjects(ctx); err == nil {
			if props, ok := objs[dbus.ObjectPath(id)][deviceIface]; ok {
				name = deviceName(props)
			}
		}
		a.post(bt.Connected{ID: id, Name: name})
	})
}

// DiscoverServices waits until BlueZ has resolved the services of the device
// and reports those matching the filter
func (a *Adapter) DiscoverServices(id string, serviceUUIDs []string) {
	a.goRequest(func(ctx context.Context) {
		objs, err := a.waitServicesResolved(ctx, dbus.ObjectPath(id))
		if err != nil {
			a.post(bt.ServicesDiscovered{ID: id, Err: err})
			return
		}
		a.post(bt.ServicesDiscovered{
			ID:       id,
			Services: gattServices(objs, dbus.ObjectPath(id), serviceUUIDs),
		})
	})
}

// DiscoverCharacteristics reports the characteristics of a service matching
// the filter
func (a *Adapter) DiscoverCharacteristics(id string, service bt.Service, characteristicUUIDs []string) {
	a.goRequest(func(ctx context.Context) {
		objs, err := a.bus.managedObjects(ctx)
		if err != nil {
			a.post(bt.CharacteristicsDiscovered{ID: id, Service: service, Err: err})
			return
		}
		a.post(bt.CharacteristicsDiscovered{
			ID:              id,
			Service:         service,
			Characteristics: gattCharacteristics(objs, dbus.ObjectPath(service.Path), characteristicUUIDs),
		})
	})
}

// ReadValue reads the value of a characteristic
func (a *Adapter) ReadValue(id string, characteristic bt.Characteristic) {
	a.goRequest(func(ctx context.Context) {
		var value []byte
		call := a.bus.call(ctx, dbus.ObjectPath(characteristic.Path), gattCharacteristicIfc+".ReadValue", map[string]dbus.Variant{})
		if err := call.Store(&value); err != nil {
			a.post(bt.ValueUpdated{ID: id, Characteristic: characteristic, Err: fmt.Errorf("bluez: ReadValue: %w", err)})
			return
		}
		a.post(bt.ValueUpdated{ID: id, Characteristic: characteristic, Value: value})
	})
}

////////////////////////////////////////////////////////////////////////////////

func (a *Adapter) post(ev bt.Event) {
	a.mu.Lock()
	inbox := a.inbox
	a.mu.Unlock()

	if inbox == nil {
		a.logger.Debugf("dropping %T, adapter not initialized", ev)
		return
	}
	inbox.Post(ev)
}

func (a *Adapter) waitServicesResolved(ctx context.Context, device dbus.ObjectPath) (managedObjects, error) {
	deadline := time.Now().Add(a.resolveTimeout)
	for {
		objs, err := a.bus.managedObjects(ctx)
		if err != nil {
			return nil, err
		}

		props, ok := objs[device][deviceIface]
		if !ok {
			return nil, fmt.Errorf("bluez: device `%s` disappeared", device)
		}
		if boolProp(props, "ServicesResolved") {
			return objs, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("bluez: services of `%s` not resolved within %s", device, a.resolveTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.resolveInterval):
		}
	}
}

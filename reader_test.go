package btmon

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fako1024/btmon/bt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// manualPump dispatches queued events synchronously and advances a fake clock
// by the full interval on every call to Advance
type manualPump struct {
	queue   []bt.Event
	handler func(bt.Event)
	clock   *fakeClock

	advanceCalls int
	closed       bool
}

func (p *manualPump) Post(ev bt.Event) {
	p.queue = append(p.queue, ev)
}

func (p *manualPump) Bind(handler func(bt.Event)) {
	p.handler = handler
}

func (p *manualPump) Close() {
	p.closed = true
}

func (p *manualPump) Advance(max time.Duration) {
	p.advanceCalls++
	for len(p.queue) > 0 {
		ev := p.queue[0]
		p.queue = p.queue[1:]
		p.handler(ev)
	}
	p.clock.t = p.clock.t.Add(max)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

// scriptedCentral answers requests by posting to the inbox synchronously. An
// initial state of StateUnknown is followed by an asynchronous PoweredOn.
type scriptedCentral struct {
	state       bt.State
	initErr     error
	peripherals []bt.Peripheral
	levels      map[string][]byte
	silent      map[string]bool

	inbox  bt.Inbox
	closed bool
}

func (c *scriptedCentral) Init(inbox bt.Inbox) (bt.State, error) {
	if c.initErr != nil {
		return bt.StateUnknown, c.initErr
	}
	c.inbox = inbox
	if c.state == bt.StateUnknown {
		inbox.Post(bt.StateChanged{State: bt.StatePoweredOn})
	}
	return c.state, nil
}

func (c *scriptedCentral) ConnectedPeripherals(string) ([]bt.Peripheral, error) {
	return c.peripherals, nil
}

func (c *scriptedCentral) Connect(id string) {
	if c.silent[id] {
		return
	}
	c.inbox.Post(bt.Connected{ID: id})
}

func (c *scriptedCentral) DiscoverServices(id string, _ []string) {
	c.inbox.Post(bt.ServicesDiscovered{ID: id, Services: []bt.Service{batterySvc}})
}

func (c *scriptedCentral) DiscoverCharacteristics(id string, svc bt.Service, _ []string) {
	c.inbox.Post(bt.CharacteristicsDiscovered{ID: id, Service: svc, Characteristics: []bt.Characteristic{levelChar}})
}

func (c *scriptedCentral) ReadValue(id string, ch bt.Characteristic) {
	c.inbox.Post(bt.ValueUpdated{ID: id, Characteristic: ch, Value: c.levels[id]})
}

func (c *scriptedCentral) Close() error {
	c.closed = true
	return nil
}

func newTestReader(central bt.Central, options ...func(*Reader)) (*Reader, *manualPump, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	pump := &manualPump{clock: clock}

	r := New(append([]func(*Reader){
		WithCentral(central),
		WithPump(func() Pump { return pump }),
		WithClock(clock.Now),
		WithLogger(NewZapLogger(zap.New(core))),
	}, options...)...)

	return r, pump, logs
}

func TestReaderNoPeripheralsWithoutPumping(t *testing.T) {
	central := &scriptedCentral{state: bt.StatePoweredOn}
	r, pump, _ := newTestReader(central)

	levels := r.DiscoverBatteryLevels()
	assert.Empty(t, levels)
	assert.NotNil(t, levels)
	assert.Zero(t, pump.advanceCalls)
	assert.True(t, pump.closed)
	assert.False(t, central.closed)
}

func TestReaderUnauthorized(t *testing.T) {
	central := &scriptedCentral{
		state:       bt.StateUnauthorized,
		peripherals: []bt.Peripheral{{ID: "p1", Name: "Mouse"}},
	}
	r, pump, logs := newTestReader(central)

	assert.Empty(t, r.DiscoverBatteryLevels())
	assert.Zero(t, pump.advanceCalls)
	assert.Equal(t, 1, logs.FilterMessageSnippet("bluetooth not available").Len())
}

func TestReaderInitError(t *testing.T) {
	central := &scriptedCentral{initErr: errors.New("no adapter")}
	r, pump, logs := newTestReader(central)

	assert.Empty(t, r.DiscoverBatteryLevels())
	assert.Zero(t, pump.advanceCalls)
	assert.Equal(t, 1, logs.FilterMessage("bluetooth not available: no adapter").Len())
}

func TestReaderAsynchronousPowerOn(t *testing.T) {
	central := &scriptedCentral{
		state: bt.StateUnknown,
		peripherals: []bt.Peripheral{
			{ID: "p1", Name: "Mouse"},
			{ID: "p2", Name: "Keyboard"},
		},
		levels: map[string][]byte{
			"p1": {76},
			"p2": {12},
		},
	}
	r, pump, logs := newTestReader(central)

	levels := r.DiscoverBatteryLevels()
	assert.Equal(t, map[string]uint8{"Mouse": 76, "Keyboard": 12}, levels)
	assert.Equal(t, 1, pump.advanceCalls)
	assert.Zero(t, logs.FilterMessageSnippet("timeout").Len())
}

func TestReaderTimeoutReturnsPartialResults(t *testing.T) {
	central := &scriptedCentral{
		state: bt.StatePoweredOn,
		peripherals: []bt.Peripheral{
			{ID: "p1", Name: "Mouse"},
			{ID: "p2", Name: "Headset"},
		},
		levels: map[string][]byte{"p1": {64}},
		silent: map[string]bool{"p2": true},
	}
	r, pump, logs := newTestReader(central,
		WithTimeout(2*time.Second),
		WithPumpInterval(100*time.Millisecond),
	)

	levels := r.DiscoverBatteryLevels()
	assert.Equal(t, map[string]uint8{"Mouse": 64}, levels)
	assert.Equal(t, 20, pump.advanceCalls)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "timeout waiting for GATT battery levels after 2000ms (1 peripheral(s) pending)", warnings[0].Message)
	assert.Equal(t, 1, logs.FilterMessage("abandoned peripheral Headset/p2: Connecting").Len())
}

func TestReaderEmptyValue(t *testing.T) {
	central := &scriptedCentral{
		state:       bt.StatePoweredOn,
		peripherals: []bt.Peripheral{{ID: "p1", Name: "Mouse"}},
		levels:      map[string][]byte{"p1": {}},
	}
	r, _, _ := newTestReader(central)

	assert.Empty(t, r.DiscoverBatteryLevels())
}

func TestReaderOptions(t *testing.T) {
	r := New(WithTimeout(0), WithPumpInterval(-time.Second))
	assert.Equal(t, DefaultTimeout, r.timeout)
	assert.Equal(t, DefaultPumpInterval, r.pumpInterval)

	r = New(WithTimeout(time.Second), WithPumpInterval(10*time.Millisecond), WithLogger(nil))
	assert.Equal(t, time.Second, r.timeout)
	assert.Equal(t, 10*time.Millisecond, r.pumpInterval)
	assert.NotNil(t, r.logger)
}

// goroutineCentral answers every request from a separate goroutine, the way
// platform adapters do
type goroutineCentral struct {
	scriptedCentral
	wg sync.WaitGroup
}

func (c *goroutineCentral) async(ev bt.Event) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		time.Sleep(time.Millisecond)
		c.inbox.Post(ev)
	}()
}

func (c *goroutineCentral) Connect(id string) {
	c.async(bt.Connected{ID: id})
}

func (c *goroutineCentral) DiscoverServices(id string, _ []string) {
	c.async(bt.ServicesDiscovered{ID: id, Services: []bt.Service{batterySvc}})
}

func (c *goroutineCentral) DiscoverCharacteristics(id string, svc bt.Service, _ []string) {
	c.async(bt.CharacteristicsDiscovered{ID: id, Service: svc, Characteristics: []bt.Characteristic{levelChar}})
}

func (c *goroutineCentral) ReadValue(id string, ch bt.Characteristic) {
	c.async(bt.ValueUpdated{ID: id, Characteristic: ch, Value: c.levels[id]})
}

func TestReaderWithEventLoop(t *testing.T) {
	central := &goroutineCentral{
		scriptedCentral: scriptedCentral{
			state: bt.StatePoweredOn,
			peripherals: []bt.Peripheral{
				{ID: "p1", Name: "Mouse"},
				{ID: "p2", Name: "Keyboard"},
				{ID: "p3", Name: "Pen"},
			},
			levels: map[string][]byte{
				"p1": {76},
				"p2": {12},
				"p3": {100},
			},
		},
	}

	r := New(
		WithCentral(central),
		WithTimeout(5*time.Second),
		WithPumpInterval(10*time.Millisecond),
	)

	start := time.Now()
	levels := r.DiscoverBatteryLevels()
	central.wg.Wait()

	assert.Equal(t, map[string]uint8{"Mouse": 76, "Keyboard": 12, "Pen": 100}, levels)
	assert.Less(t, time.Since(start), 5*time.Second)
}

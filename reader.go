package btmon

import (
	"time"

	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/btmon/internal/bluez"
)

const (

	// DefaultTimeout is the overall deadline of a discovery run
	DefaultTimeout = 2 * time.Second

	// DefaultPumpInterval is the duration of a single event pump iteration
	DefaultPumpInterval = 100 * time.Millisecond
)

// Reader discovers connected Bluetooth LE peripherals exposing the Battery
// Service and reads their battery levels
type Reader struct {
	central bt.Central

	timeout      time.Duration
	pumpInterval time.Duration
	newPump      func() Pump
	now          func() time.Time

	logger Logger
}

// New instantiates a new Reader, executing functional options, if any
func New(options ...func(*Reader)) *Reader {

	// Initialize a new instance of a Reader
	r := &Reader{
		timeout:      DefaultTimeout,
		pumpInterval: DefaultPumpInterval,
		newPump: func() Pump {
			return NewEventLoop(defaultInboxSize)
		},
		now:    time.Now,
		logger: &NullLogger{},
	}

	// Execute functional options (if any), see options.go for implementation
	for _, option := range options {
		option(r)
	}

	return r
}

// DiscoverBatteryLevels reads the battery level of all connected peripherals
// exposing the Battery Service, keyed by device name. It never fails: if the
// radio is unavailable the result is empty, if the deadline elapses the
// levels read so far are returned.
func (r *Reader) DiscoverBatteryLevels() map[string]uint8 {
	central := r.central
	if central == nil {
		c, err := bluez.New(bluez.WithLogger(r.logger))
		if err != nil {
			r.logger.Warnf("failed to initialize bluetooth central: %s", err)
			return map[string]uint8{}
		}
		defer func() {
			if err := c.Close(); err != nil {
				r.logger.Warnf("failed to close bluetooth central: %s", err)
			}
		}()
		central = c
	}

	pump := r.newPump()
	defer pump.Close()

	coord := NewCoordinator(central, r.logger)
	pump.Bind(coord.Handle)

	state, err := central.Init(pump)
	if err != nil {
		r.logger.Warnf("bluetooth not available: %s", err)
		return coord.TakeResults()
	}
	coord.OnStateChanged(state)

	start := r.now()
	for !coord.IsDone() && r.now().Sub(start) < r.timeout {
		pump.Advance(r.pumpInterval)
	}

	if !coord.IsDone() {
		r.logger.Warnf("timeout waiting for GATT battery levels after %dms (%d peripheral(s) pending)",
			r.now().Sub(start).Milliseconds(), coord.Pending())
		for _, s := range coord.Sessions() {
			if !s.Stage.Terminal() {
				r.logger.Debugf("abandoned peripheral %s", &s)
			}
		}
	}

	return coord.TakeResults()
}

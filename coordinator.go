package btmon

import (
	"github.com/fako1024/btmon/bt"
)

const unknownDeviceName = "Unknown"

// Coordinator owns all peripheral sessions of a single discovery run and
// advances them in response to protocol events.
//
// A Coordinator is not safe for concurrent use: every method must be called
// from the goroutine driving the event pump. Adapters reach it exclusively
// by posting events to the pump.
type Coordinator struct {
	central bt.Central
	logger  Logger

	sessions []*PeripheralSession
	index    map[string]int
	seeded   bool

	pending int
	done    bool
	results map[string]uint8
}

// NewCoordinator instantiates a new Coordinator issuing requests to the
// provided central
func NewCoordinator(central bt.Central, logger Logger) *Coordinator {
	if logger == nil {
		logger = &NullLogger{}
	}
	return &Coordinator{
		central: central,
		logger:  logger,
		index:   make(map[string]int),
		results: make(map[string]uint8),
	}
}

// IsDone returns if all peripherals have reached a terminal stage (or the
// run was aborted because the radio is unavailable)
func (c *Coordinator) IsDone() bool {
	return c.done
}

// Pending returns the number of peripherals not yet in a terminal stage
func (c *Coordinator) Pending() int {
	return c.pending
}

// TakeResults returns the battery levels collected so far, keyed by device
// name, and resets the internal result set
func (c *Coordinator) TakeResults() map[string]uint8 {
	res := c.results
	c.results = make(map[string]uint8)
	return res
}

// Sessions returns a snapshot of all peripheral sessions
func (c *Coordinator) Sessions() []PeripheralSession {
	res := make([]PeripheralSession, 0, len(c.sessions))
	for _, s := range c.sessions {
		res = append(res, *s)
	}
	return res
}

// RegisterPeripherals creates one session per peripheral and seeds the
// pending counter. Peripherals are only registered once per run.
func (c *Coordinator) RegisterPeripherals(peripherals []bt.Peripheral) []*PeripheralSession {
	if c.seeded {
		c.logger.Warnf("ignoring repeated registration of %d peripheral(s)", len(peripherals))
		return nil
	}
	c.seeded = true

	registered := make([]*PeripheralSession, 0, len(peripherals))
	for _, p := range peripherals {
		if _, exists := c.index[p.ID]; exists {
			c.logger.Debugf("skipping duplicate peripheral `%s/%s`", p.Name, p.ID)
			continue
		}
		s := &PeripheralSession{
			Key:   len(c.sessions),
			ID:    p.ID,
			Name:  p.Name,
			Stage: StageConnecting,
		}
		c.index[p.ID] = s.Key
		c.sessions = append(c.sessions, s)
		registered = append(registered, s)
	}

	c.pending = len(registered)
	c.done = c.pending == 0

	return registered
}

// Handle dispatches a protocol event to the matching callback
func (c *Coordinator) Handle(ev bt.Event) {
	switch e := ev.(type) {
	case bt.StateChanged:
		c.OnStateChanged(e.State)
	case bt.Connected:
		c.OnConnected(e.ID, e.Name)
	case bt.ConnectFailed:
		c.OnConnectFailed(e.ID, e.Err)
	case bt.ServicesDiscovered:
		c.OnServicesDiscovered(e.ID, e.Services, e.Err)
	case bt.CharacteristicsDiscovered:
		c.OnCharacteristicsDiscovered(e.ID, e.Service, e.Characteristics, e.Err)
	case bt.ValueUpdated:
		c.OnValueUpdated(e.ID, e.Characteristic, e.Value, e.Err)
	default:
		c.logger.Warnf("ignoring unknown event %T", ev)
	}
}

////////////////////////////////////////////////////////////////////////////////

// OnStateChanged handles a change of the radio state
func (c *Coordinator) OnStateChanged(state bt.State) {
	c.logger.Debugf("central state updated: %s", state)

	switch state {
	case bt.StatePoweredOn:
		c.onPoweredOn()
	case bt.StateUnauthorized, bt.StateUnsupported:
		c.logger.Warnf("bluetooth not available (state: %s)", state)
		c.done = true
	}
}

func (c *Coordinator) onPoweredOn() {
	if c.seeded {
		return
	}

	peripherals, err := c.central.ConnectedPeripherals(bt.BatteryServiceUUID)
	if err != nil {
		c.logger.Warnf("failed to retrieve connected peripherals: %s", err)
		c.seeded = true
		c.done = true
		return
	}
	c.logger.Debugf("found %d connected peripheral(s) with battery service", len(peripherals))

	for _, s := range c.RegisterPeripherals(peripherals) {
		c.logger.Debugf("connecting peripheral `%s/%s`", s.DisplayName(), s.ID)
		s.outstanding = 1
		c.central.Connect(s.ID)
	}
}

// OnConnected handles a successful connect request
func (c *Coordinator) OnConnected(id, name string) {
	s := c.session(id, StageConnecting)
	if s == nil {
		return
	}
	if name != "" {
		s.Name = name
	}
	c.logger.Debugf("connected peripheral `%s/%s`", s.DisplayName(), s.ID)

	s.Stage = StageDiscoveringServices
	c.central.DiscoverServices(s.ID, []string{bt.BatteryServiceUUID})
}

// OnConnectFailed handles a failed connect request
func (c *Coordinator) OnConnectFailed(id string, err error) {
	s := c.session(id, StageConnecting)
	if s == nil {
		return
	}
	c.logger.Warnf("failed to connect peripheral `%s/%s`: %v", s.DisplayName(), s.ID, err)

	s.outstanding = 0
	c.fail(s, ReasonConnectFailed, err)
}

// OnServicesDiscovered handles the completion of a service discovery request
func (c *Coordinator) OnServicesDiscovered(id string, services []bt.Service, err error) {
	s := c.session(id, StageDiscoveringServices)
	if s == nil {
		return
	}
	s.outstanding = 0

	if err != nil {
		c.logger.Warnf("error discovering services of `%s/%s`: %s", s.DisplayName(), s.ID, err)
		c.fail(s, ReasonServiceDiscovery, err)
		return
	}
	if len(services) == 0 {
		c.logger.Debugf("no battery service on `%s/%s`", s.DisplayName(), s.ID)
		c.fail(s, ReasonNoServices, ErrNoServices)
		return
	}

	s.Stage = StageDiscoveringCharacteristics
	s.outstanding = len(services)
	for _, svc := range services {
		c.logger.Debugf("found service %s on `%s/%s`", svc.UUID, s.DisplayName(), s.ID)
		c.central.DiscoverCharacteristics(s.ID, svc, []string{bt.BatteryLevelUUID})
	}
}

// OnCharacteristicsDiscovered handles the completion of a characteristic
// discovery request for one service
func (c *Coordinator) OnCharacteristicsDiscovered(id string, service bt.Service, characteristics []bt.Characteristic, err error) {
	s := c.session(id, StageDiscoveringCharacteristics, StageReadingValue)
	if s == nil {
		return
	}
	s.outstanding--

	if err != nil {
		c.logger.Warnf("error discovering characteristics of `%s/%s`: %s", s.DisplayName(), s.ID, err)
		c.failIfSettled(s, ReasonCharacteristicDiscovery, err)
		return
	}
	if len(characteristics) == 0 {
		c.logger.Debugf("no battery level characteristic in service %s of `%s/%s`", service.UUID, s.DisplayName(), s.ID)
		c.failIfSettled(s, ReasonNoCharacteristics, ErrNoCharacteristics)
		return
	}

	s.Stage = StageReadingValue
	s.outstanding += len(characteristics)
	for _, ch := range characteristics {
		c.logger.Debugf("reading characteristic %s of `%s/%s`", ch.UUID, s.DisplayName(), s.ID)
		c.central.ReadValue(s.ID, ch)
	}
}

// OnValueUpdated handles the completion of a read request
func (c *Coordinator) OnValueUpdated(id string, characteristic bt.Characteristic, value []byte, err error) {
	s := c.session(id, StageReadingValue)
	if s == nil {
		return
	}
	s.outstanding--

	if err != nil {
		c.logger.Warnf("error reading characteristic %s of `%s/%s`: %s", characteristic.UUID, s.DisplayName(), s.ID, err)
		c.failIfSettled(s, ReasonRead, err)
		return
	}
	if len(value) == 0 {
		c.logger.Debugf("empty value for characteristic %s of `%s/%s`", characteristic.UUID, s.DisplayName(), s.ID)
		c.failIfSettled(s, ReasonEmptyValue, ErrEmptyValue)
		return
	}

	level := value[0]
	name := s.DisplayName()
	c.logger.Debugf("read battery level %d from `%s/%s`", level, name, s.ID)

	if _, exists := c.results[name]; exists {
		c.logger.Debugf("keeping earlier battery level for `%s`", name)
	} else {
		c.results[name] = level
	}

	s.Stage = StageDone
	s.Reason, s.Err = ReasonNone, nil
	c.decrementPending()
}

////////////////////////////////////////////////////////////////////////////////

// session resolves a peripheral ID to its session, provided the session is
// in one of the given stages. Late or unexpected callbacks yield nil.
func (c *Coordinator) session(id string, stages ...Stage) *PeripheralSession {
	key, exists := c.index[id]
	if !exists {
		c.logger.Debugf("ignoring callback for unknown peripheral `%s`", id)
		return nil
	}

	s := c.sessions[key]
	for _, stage := range stages {
		if s.Stage == stage {
			return s
		}
	}

	c.logger.Debugf("ignoring callback for `%s/%s` in stage %s", s.DisplayName(), s.ID, s.Stage)
	return nil
}

// failIfSettled fails the session unless a sibling request is still in
// flight that may yet succeed
func (c *Coordinator) failIfSettled(s *PeripheralSession, reason Reason, err error) {
	if s.outstanding > 0 {
		s.Reason, s.Err = reason, err
		return
	}
	c.fail(s, reason, err)
}

func (c *Coordinator) fail(s *PeripheralSession, reason Reason, err error) {
	s.Stage = StageFailed
	s.Reason, s.Err = reason, err
	c.decrementPending()
}

// decrementPending is the only place the done flag is set for seeded runs
func (c *Coordinator) decrementPending() {
	if c.pending > 0 {
		c.pending--
	}
	if c.pending == 0 {
		c.done = true
	}
}

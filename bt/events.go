package bt

// Event denotes an asynchronous protocol event posted by an adapter
type Event interface {
	event()
}

// StateChanged is posted whenever the radio state changes
type StateChanged struct {
	State State
}

// Connected is posted once a connect request succeeded. Name carries the
// most recent name of the peripheral, if the adapter knows it.
type Connected struct {
	ID   string
	Name string
}

// ConnectFailed is posted if a connect request failed
type ConnectFailed struct {
	ID  string
	Err error
}

// ServicesDiscovered is posted once a service discovery request completed
type ServicesDiscovered struct {
	ID       string
	Services []Service
	Err      error
}

// CharacteristicsDiscovered is posted once a characteristic discovery request
// for a single service completed
type CharacteristicsDiscovered struct {
	ID              string
	Service         Service
	Characteristics []Characteristic
	Err             error
}

// ValueUpdated is posted once a read request completed
type ValueUpdated struct {
	ID             string
	Characteristic Characteristic
	Value          []byte
	Err            error
}

func (StateChanged) event()              {}
func (Connected) event()                 {}
func (ConnectFailed) event()             {}
func (ServicesDiscovered) event()        {}
func (CharacteristicsDiscovered) event() {}
func (ValueUpdated) event()              {}

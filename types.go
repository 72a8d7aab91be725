//go:generate stringer -type=Stage -trimprefix=Stage
//go:generate stringer -type=Reason -trimprefix=Reason
package btmon

import (
	"errors"
	"fmt"
)

// Stage denotes the position of a peripheral in the discovery pipeline
type Stage int

const (

	// StageConnecting is active after a connect request was issued
	StageConnecting Stage = iota

	// StageDiscoveringServices is active while waiting for the Battery Service
	StageDiscoveringServices

	// StageDiscoveringCharacteristics is active while waiting for the Battery Level characteristic
	StageDiscoveringCharacteristics

	// StageReadingValue is active while waiting for the characteristic value
	StageReadingValue

	// StageDone is reached once the battery level was recorded
	StageDone

	// StageFailed is reached if the pipeline could not be completed
	StageFailed
)

// Terminal returns if no further transitions are possible from this stage
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Reason denotes why a peripheral session failed
type Reason int

const (

	// ReasonNone denotes a session that has not failed
	ReasonNone Reason = iota

	// ReasonConnectFailed denotes a failed connect request
	ReasonConnectFailed

	// ReasonServiceDiscovery denotes a failed service discovery request
	ReasonServiceDiscovery

	// ReasonNoServices denotes a peripheral without the Battery Service
	ReasonNoServices

	// ReasonCharacteristicDiscovery denotes a failed characteristic discovery request
	ReasonCharacteristicDiscovery

	// ReasonNoCharacteristics denotes a Battery Service without the Battery Level characteristic
	ReasonNoCharacteristics

	// ReasonRead denotes a failed read request
	ReasonRead

	// ReasonEmptyValue denotes a read returning no data
	ReasonEmptyValue
)

var (

	// ErrNoServices is recorded if a peripheral does not expose the Battery Service
	ErrNoServices = errors.New("no battery service found")

	// ErrNoCharacteristics is recorded if the Battery Service lacks the Battery Level characteristic
	ErrNoCharacteristics = errors.New("no battery level characteristic found")

	// ErrEmptyValue is recorded if the Battery Level characteristic returned no data
	ErrEmptyValue = errors.New("empty battery level value")
)

// PeripheralSession tracks a single peripheral through the discovery pipeline
type PeripheralSession struct {
	Key  int
	ID   string
	Name string

	Stage  Stage
	Reason Reason
	Err    error

	// requests issued for this peripheral that have not called back yet
	outstanding int
}

// DisplayName returns the name used to record the peripheral's battery level
func (s *PeripheralSession) DisplayName() string {
	if s.Name == "" {
		return unknownDeviceName
	}
	return s.Name
}

// String fulfils the Stringer interface
func (s *PeripheralSession) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s/%s: %s (%s: %s)", s.DisplayName(), s.ID, s.Stage, s.Reason, s.Err)
	}
	return fmt.Sprintf("%s/%s: %s", s.DisplayName(), s.ID, s.Stage)
}

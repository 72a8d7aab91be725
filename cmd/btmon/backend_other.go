//go:build !linux

package main

import (
	"errors"

	"github.com/fako1024/btmon"
	"github.com/fako1024/btmon/bt"
)

func newGATTCentral(logger btmon.Logger) (bt.Central, error) {
	return nil, errors.New("the gatt backend is only supported on linux")
}

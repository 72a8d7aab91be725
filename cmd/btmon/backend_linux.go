//go:build linux

package main

import (
	"github.com/fako1024/btmon"
	"github.com/fako1024/btmon/bt"
	"github.com/fako1024/btmon/internal/gattcentral"
)

func newGATTCentral(logger btmon.Logger) (bt.Central, error) {
	central, err := gattcentral.New(gattcentral.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return central, nil
}

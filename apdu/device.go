// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package apdu

import (
	"errors"

	ledger_go "github.com/zondax/ledger-go"
)

// ErrNoDevice is returned when no signing device is plugged in
var ErrNoDevice = errors.New("no signing device found")

var _ Conn = (*hidConn)(nil)

// hidConn adapts a zondax HID device to the Conn contract. The underlying
// Exchange already verifies the status word and strips it, so a successful
// reply is re-suffixed with StatusOK to keep one reply convention across
// every Conn implementation.
type hidConn struct {
	device ledger_go.LedgerDevice
}

// Connect opens the first attached device over USB HID
func Connect() (Conn, error) {
	admin := ledger_go.NewLedgerAdmin()
	if admin.CountDevices() == 0 {
		return nil, ErrNoDevice
	}
	device, err := admin.Connect(0)
	if err != nil {
		return nil, err
	}
	return &hidConn{device: device}, nil
}

func (c *hidConn) Exchange(command []byte) ([]byte, error) {
	body, err := c.device.Exchange(command)
	if err != nil {
		return nil, err
	}
	reply := make([]byte, 0, len(body)+statusLen)
	reply = append(reply, body...)
	return append(reply, byte(StatusOK>>8), byte(StatusOK&0xFF)), nil
}

func (c *hidConn) Close() error {
	return c.device.Close()
}

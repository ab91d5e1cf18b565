// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package apdu implements the ISO 7816-4 style command framing used to talk
// to the signing device, the transport boundary it is exchanged over, and
// the splitting of byte streams into size-bounded frames.
package apdu

import (
	"errors"
	"fmt"
)

const (
	// CLA is the instruction class claimed by the device application
	CLA = 0xE0

	// MaxFrameLen is the largest payload one command may carry, bounded by
	// the device's input buffer
	MaxFrameLen = 255

	// StatusOK is the status word reported by the device on success
	StatusOK uint16 = 0x9000

	// statusLen is the trailing status word size on every reply
	statusLen = 2
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds device input buffer")
	ErrReplyTooShort = errors.New("reply shorter than a status word")
)

// Command is a single device command: an instruction byte, a stage tag (P1),
// a sub-stage tag (P2) and at most MaxFrameLen bytes of payload.
type Command struct {
	INS  byte
	P1   byte
	P2   byte
	Data []byte
}

// Bytes serializes the command in cla‖ins‖p1‖p2‖len‖data order
func (c Command) Bytes() ([]byte, error) {
	if len(c.Data) > MaxFrameLen {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, len(c.Data), MaxFrameLen)
	}
	out := make([]byte, 0, 5+len(c.Data))
	out = append(out, CLA, c.INS, c.P1, c.P2, byte(len(c.Data)))
	return append(out, c.Data...), nil
}

// Conn is the transport boundary. Exchange sends one serialized command and
// returns the raw reply, including the trailing 2-byte status word. Calls
// must be strictly sequential; the device is a sequential accumulator with
// no notion of concurrent sessions, and callers sharing a device must
// serialize entire signing calls themselves.
type Conn interface {
	Exchange(command []byte) (reply []byte, err error)
	Close() error
}

// StatusError reports a reply whose status word is outside the accepted set
type StatusError struct {
	Code uint16
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device returned status 0x%04X", e.Code)
}

// Exchange serializes [cmd], sends it over [conn] and splits the status word
// off the reply. A status outside [accepted] (StatusOK when empty) fails
// with a StatusError; transport errors propagate unchanged.
func Exchange(conn Conn, cmd Command, accepted ...uint16) ([]byte, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		return nil, err
	}
	reply, err := conn.Exchange(raw)
	if err != nil {
		return nil, err
	}
	if len(reply) < statusLen {
		return nil, ErrReplyTooShort
	}

	body, status := reply[:len(reply)-statusLen], reply[len(reply)-statusLen:]
	code := uint16(status[0])<<8 | uint16(status[1])
	if len(accepted) == 0 {
		accepted = []uint16{StatusOK}
	}
	for _, ok := range accepted {
		if code == ok {
			return body, nil
		}
	}
	return nil, &StatusError{Code: code}
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a caller-supplied value does not fit the
// declared bit width. It is always raised before any device I/O happens.
var ErrOutOfRange = errors.New("value out of range")

// ToUint8 checks that [val] fits in 8 bits
func ToUint8(val uint64) (byte, error) {
	if val > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %d does not fit in 8 bits", ErrOutOfRange, val)
	}
	return byte(val), nil
}

// ToUint16 checks that [val] fits in 16 bits
func ToUint16(val uint64) (uint16, error) {
	if val > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d does not fit in 16 bits", ErrOutOfRange, val)
	}
	return uint16(val), nil
}

// ToUint32 checks that [val] fits in 32 bits
func ToUint32(val uint64) (uint32, error) {
	if val > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in 32 bits", ErrOutOfRange, val)
	}
	return uint32(val), nil
}

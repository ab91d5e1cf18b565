// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bip32 encodes hierarchical key-derivation paths into the binary
// form expected by the signing device.
package bip32

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

// hardenedOffset is added to a component to mark it as hardened
const hardenedOffset = 0x80000000

// maxComponents is bounded by the 1-byte component count in the encoding
const maxComponents = 255

// ErrMalformedPath is returned when a path component cannot be parsed as a
// 32-bit unsigned integer after stripping the hardening marker.
var ErrMalformedPath = errors.New("malformed derivation path")

// Path is a parsed derivation path. Each component carries the hardened bit
// already applied.
type Path []uint32

// ParsePath parses a slash-delimited derivation path such as
// "44'/919'/0'/0/0". A trailing apostrophe or "h" hardens the component. A
// leading "m" and empty components are skipped, matching the tolerance of
// older clients.
func ParsePath(path string) (Path, error) {
	components := strings.Split(path, "/")
	parsed := make(Path, 0, len(components))
	for _, component := range components {
		if component == "" || component == "m" {
			continue
		}

		hardened := false
		switch {
		case strings.HasSuffix(component, "'"):
			hardened = true
			component = strings.TrimSuffix(component, "'")
		case strings.HasSuffix(component, "h"):
			hardened = true
			component = strings.TrimSuffix(component, "h")
		}

		val, err := strconv.ParseUint(component, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q is not a 32-bit unsigned integer",
				ErrMalformedPath, component)
		}
		if hardened {
			// the hardened bit is the high bit; a component that already has
			// it set would wrap and silently select a different key
			if val >= hardenedOffset {
				return nil, fmt.Errorf("%w: hardened component %q exceeds %d",
					ErrMalformedPath, component, hardenedOffset-1)
			}
			val += hardenedOffset
		}
		parsed = append(parsed, uint32(val))
	}
	if len(parsed) > maxComponents {
		return nil, fmt.Errorf("%w: %d components exceed the maximum of %d",
			ErrMalformedPath, len(parsed), maxComponents)
	}
	return parsed, nil
}

// Len returns the encoded size of the path in bytes
func (p Path) Len() int {
	return wrappers.ByteLen + wrappers.IntLen*len(p)
}

// Bytes returns the binary encoding of the path: a component count followed
// by each component as a big-endian 32-bit value.
func (p Path) Bytes() []byte {
	packer := wrappers.Packer{
		MaxSize: p.Len(),
		Bytes:   make([]byte, 0, p.Len()),
	}
	packer.PackByte(byte(len(p)))
	for _, component := range p {
		packer.PackInt(component)
	}
	return packer.Bytes
}

func (p Path) String() string {
	components := make([]string, len(p))
	for i, component := range p {
		if component >= hardenedOffset {
			components[i] = fmt.Sprintf("%d'", component-hardenedOffset)
		} else {
			components[i] = strconv.FormatUint(uint64(component), 10)
		}
	}
	return strings.Join(components, "/")
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txs models the transaction variants understood by the signing
// device and serializes them into their canonical wire form.
package txs

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

const (
	// AddressLen is the fixed width of an account identifier
	AddressLen = 32

	// HeaderLen is the fixed width of a transaction header: sender, nonce,
	// energy, payload size and expiry
	HeaderLen = AddressLen + 3*wrappers.LongLen + wrappers.IntLen

	// KindLen is the width of the payload kind tag written after the header
	KindLen = 1

	// maxTxSize bounds a serialized transaction; the chain rejects larger
	maxTxSize = 1 << 21
)

var (
	ErrInvalidLength = errors.New("field has unexpected length")

	errNilPayload = errors.New("nil payload")
)

// AccountAddress is a fixed-width account identifier
type AccountAddress [AddressLen]byte

// AddressFromBytes converts a byte slice into an account address
func AddressFromBytes(b []byte) (AccountAddress, error) {
	var addr AccountAddress
	if len(b) != AddressLen {
		return addr, fmt.Errorf("%w: address must be %d bytes, got %d",
			ErrInvalidLength, AddressLen, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

func (a AccountAddress) String() string {
	return hex.EncodeToString(a[:])
}

func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountAddress) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	addr, err := AddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Header carries the account-level fields common to every transaction. The
// payload size is not part of the struct: it is always derived from the
// serialized payload length plus the kind tag, never caller-supplied.
type Header struct {
	Sender AccountAddress `json:"sender"`
	Nonce  uint64         `json:"nonce"`
	Energy uint64         `json:"energy"`
	Expiry uint64         `json:"expiry"`
}

// Payload is the closed sum of transaction payload variants. Each variant
// carries only the fields that apply to it, resolved at construction rather
// than probed during serialization.
type Payload interface {
	Kind() Kind

	// pack appends the variant's canonical bytes and records its field spans
	pack(p *packer)
}

// SignReady is the result of canonical serialization: the flat byte
// sequence plus the named spans the staged dispatcher slices it by.
type SignReady struct {
	// Kind tags which payload variant Bytes carries
	Kind Kind

	// Bytes is header‖kind‖payload, or the bare structure for the headerless
	// credential-deployment and public-info flows
	Bytes []byte

	spans map[Field]Span

	// Credentials locates each serialized credential record, one entry per
	// new credential
	Credentials []CredentialSpans

	// Removed locates each credential id in the removal list
	Removed []Span

	// Keys locates each verification key of a public-info structure
	Keys []Span
}

// Has reports whether the named field is present in the serialized form
func (t *SignReady) Has(f Field) bool {
	_, ok := t.spans[f]
	return ok
}

// Span returns the recorded span for [f]; the zero span if absent
func (t *SignReady) Span(f Field) Span {
	return t.spans[f]
}

// Field returns the bytes of the named field; nil if absent
func (t *SignReady) Field(f Field) []byte {
	span, ok := t.spans[f]
	if !ok {
		return nil
	}
	return t.Slice(span)
}

// Slice returns the bytes covered by [span]
func (t *SignReady) Slice(span Span) []byte {
	return t.Bytes[span.Offset:span.End()]
}

// HeaderAndKind returns the leading 61 bytes: the header plus the kind tag
func (t *SignReady) HeaderAndKind() []byte {
	return t.Bytes[:HeaderLen+KindLen]
}

// Serialize produces the canonical byte sequence header‖kindTag‖payload.
// The payload is packed first so that the header's payload-size field can
// be computed from its real length, then the pieces are concatenated and
// every recorded span is shifted past the header.
func Serialize(header Header, payload Payload) (*SignReady, error) {
	if payload == nil {
		return nil, errNilPayload
	}

	body := newPacker()
	payload.pack(body)
	if body.Errored() {
		return nil, body.Err
	}

	payloadSize, err := wrappers.ToUint32(uint64(len(body.Bytes) + KindLen))
	if err != nil {
		return nil, err
	}

	head := wrappers.Packer{MaxSize: HeaderLen + KindLen}
	head.PackFixedBytes(header.Sender[:])
	head.PackLong(header.Nonce)
	head.PackLong(header.Energy)
	head.PackInt(payloadSize)
	head.PackLong(header.Expiry)
	head.PackByte(byte(payload.Kind()))
	if head.Errored() {
		return nil, head.Err
	}

	return body.finish(payload.Kind(), head.Bytes), nil
}

// packer wraps the plain byte packer with span bookkeeping
type packer struct {
	wrappers.Packer

	spans   map[Field]Span
	creds   []CredentialSpans
	removed []Span
	keys    []Span
}

func newPacker() *packer {
	return &packer{
		Packer: wrappers.Packer{MaxSize: maxTxSize},
		spans:  make(map[Field]Span),
	}
}

// mark returns the current offset, to be paired with record
func (p *packer) mark() int {
	return p.Offset
}

// record names the region packed since [start]
func (p *packer) record(f Field, start int) {
	p.spans[f] = Span{Offset: start, Length: p.Offset - start}
}

// span names the region packed since [start] without registering it
func (p *packer) span(start int) Span {
	return Span{Offset: start, Length: p.Offset - start}
}

// finish prepends [prefix] to the packed bytes and shifts every recorded
// span accordingly
func (p *packer) finish(kind Kind, prefix []byte) *SignReady {
	out := make([]byte, 0, len(prefix)+len(p.Bytes))
	out = append(out, prefix...)
	out = append(out, p.Bytes...)

	by := len(prefix)
	for f, span := range p.spans {
		p.spans[f] = span.shift(by)
	}
	for i := range p.creds {
		p.creds[i] = p.creds[i].shift(by)
	}
	p.removed = shiftAll(p.removed, by)
	p.keys = shiftAll(p.keys, by)

	return &SignReady{
		Kind:        kind,
		Bytes:       out,
		spans:       p.spans,
		Credentials: p.creds,
		Removed:     p.removed,
		Keys:        p.keys,
	}
}

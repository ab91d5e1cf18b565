// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger drives the staged signing protocol of the hardware device:
// it serializes transactions canonically, fragments them into the frame
// sequence each transaction kind requires, and interprets the terminal reply
// as a signature or a user decline.
package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ccd-labs/ccdledger/apdu"
	"github.com/ccd-labs/ccdledger/bip32"
	"github.com/ccd-labs/ccdledger/txs"
	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

var (
	// ErrUserDeclined is returned when the user rejects the action on the
	// device, signaled by a terminal reply body of exactly one byte.
	ErrUserDeclined = errors.New("user declined on device")

	// ErrUnsupportedKind is returned for transaction kinds the device has
	// no stage script for
	ErrUnsupportedKind = errors.New("no stage script for transaction kind")

	// ErrTransactionTooLarge is returned when a streamed transaction needs
	// more frames than the 1-byte stage counter can number
	ErrTransactionTooLarge = errors.New("transaction too large to stream")

	errInvalidKeyReply = errors.New("key reply does not match its length prefix")
)

// Signature is the raw signature bytes produced by the device
type Signature []byte

func (s Signature) String() string {
	return hex.EncodeToString(s)
}

// ExportKind selects which on-device secret an export request targets
type ExportKind byte

const (
	ExportPRFKey    ExportKind = 0
	ExportIDCredSec ExportKind = 1
)

// Device is a client for the signing application on a hardware device. All
// methods are strictly synchronous: each stage's reply is awaited before the
// next stage is built. Calls against one device must be serialized by the
// caller; the device has no notion of concurrent sessions.
type Device struct {
	conn    apdu.Conn
	log     *zap.Logger
	metrics *metrics
}

// Option configures a Device
type Option func(*Device)

// WithLogger attaches a logger; stages are logged at debug level
func WithLogger(log *zap.Logger) Option {
	return func(d *Device) {
		d.log = log
	}
}

// WithRegisterer registers the device's counters with [reg]
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Device) {
		d.metrics.register(reg)
	}
}

// New wraps an open transport connection
func New(conn apdu.Conn, opts ...Option) (*Device, error) {
	d := &Device{
		conn:    conn,
		log:     zap.NewNop(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.metrics.Err; err != nil {
		return nil, err
	}
	return d, nil
}

// Connect opens the first attached device over USB HID
func Connect(opts ...Option) (*Device, error) {
	conn, err := apdu.Connect()
	if err != nil {
		return nil, err
	}
	return New(conn, opts...)
}

func (d *Device) Close() error {
	return d.conn.Close()
}

// Sign serializes {header, payload} canonically and runs the transaction
// kind's stage script against the device. Serialization errors surface
// before any frame is sent. The reply to the final stage is the signature,
// unless the user declined.
func (d *Device) Sign(path bip32.Path, header txs.Header, payload txs.Payload) (Signature, error) {
	ready, err := txs.Serialize(header, payload)
	if err != nil {
		return nil, err
	}

	entry, ok := scripts[ready.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, ready.Kind)
	}

	s := &session{device: d, ins: entry.ins, path: path, ready: ready}
	stages, err := entry.build(s)
	if err != nil {
		return nil, err
	}
	return s.run(stages)
}

// SignCredentialDeployment signs a credential deployment. The flow shares
// the per-credential stage vocabulary with update-credentials but carries
// no transaction header.
func (d *Device) SignCredentialDeployment(path bip32.Path, deployment *txs.CredentialDeployment) (Signature, error) {
	ready, err := deployment.Serialize()
	if err != nil {
		return nil, err
	}

	s := &session{device: d, ins: insSignCredentialDeployment, path: path, ready: ready}
	stages := []stage{{p1: p1DeploymentPath, data: path.Bytes()}}
	stages = appendCredentialStages(stages, ready, ready.Credentials[0], 0)
	stages = append(stages, stage{
		p1:   p1DeploymentNewOrExisting,
		data: ready.Field(txs.FieldNewOrExisting),
	})
	return s.run(stages)
}

// SignPublicInfoForIP signs the account holder's public information for an
// identity provider.
func (d *Device) SignPublicInfoForIP(path bip32.Path, info *txs.PublicInfoForIP) (Signature, error) {
	ready, err := info.Serialize()
	if err != nil {
		return nil, err
	}

	s := &session{device: d, ins: insSignPublicInfoForIP, path: path, ready: ready}
	stages := []stage{{p1: p1InfoInitial, data: withPath(path, ready.Field(txs.FieldPublicInfoPrefix))}}
	for _, key := range ready.Keys {
		stages = append(stages, stage{p1: p1InfoKey, data: ready.Slice(key)})
	}
	stages = append(stages, stage{p1: p1InfoThreshold, data: ready.Field(txs.FieldThreshold)})
	return s.run(stages)
}

// GetPublicKey returns the public key derived on-device for [path]. With
// [confirm] set the device shows the key and waits for user approval.
func (d *Device) GetPublicKey(path bip32.Path, confirm bool) ([]byte, error) {
	p1 := p1KeySilent
	if confirm {
		p1 = p1KeyConfirm
	}
	body, err := apdu.Exchange(d.conn, apdu.Command{
		INS:  insGetPublicKey,
		P1:   p1,
		Data: path.Bytes(),
	})
	if err != nil {
		return nil, err
	}
	if confirm && len(body) == 1 {
		return nil, ErrUserDeclined
	}
	return unwrapKey(body)
}

// ExportPrivateKey exports the secret selected by [kind] for [path]. The
// device guards this behind explicit user approval.
func (d *Device) ExportPrivateKey(path bip32.Path, kind ExportKind) ([]byte, error) {
	body, err := apdu.Exchange(d.conn, apdu.Command{
		INS:  insExportPrivateKey,
		P1:   byte(kind),
		Data: path.Bytes(),
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 1 {
		return nil, ErrUserDeclined
	}
	return unwrapKey(body)
}

// VerifyAddress asks the device to display and confirm the address for an
// identity and credential counter. A nil return means the device accepted;
// any other outcome carries no further detail.
func (d *Device) VerifyAddress(identity, credCounter uint32) error {
	p := wrappers.Packer{MaxSize: 2 * wrappers.IntLen}
	p.PackInt(identity)
	p.PackInt(credCounter)
	if p.Errored() {
		return p.Err
	}

	_, err := apdu.Exchange(d.conn, apdu.Command{
		INS:  insVerifyAddress,
		Data: p.Bytes,
	})
	return err
}

// unwrapKey strips the 1-byte length prefix off key material replies
func unwrapKey(body []byte) ([]byte, error) {
	if len(body) < 1 || int(body[0]) != len(body)-1 {
		return nil, errInvalidKeyReply
	}
	return body[1:], nil
}

// withPath prepends the path encoding to [data]
func withPath(path bip32.Path, data []byte) []byte {
	out := make([]byte, 0, path.Len()+len(data))
	out = append(out, path.Bytes()...)
	return append(out, data...)
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keychain exposes a finite set of device-derived signers, looked
// up by public key, so wallet code does not handle derivation paths.
package keychain

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ccd-labs/ccdledger/bip32"
	"github.com/ccd-labs/ccdledger/ledger"
	"github.com/ccd-labs/ccdledger/txs"
)

// rootPath is the purpose/coin prefix of every account path
const rootPath = "44'/919'/0'/0"

var (
	_ Signer = (*deviceSigner)(nil)

	ErrInvalidNumKeysToDerive = errors.New("number of keys to derive should be greater than 0")
	ErrInvalidIndicesLength   = errors.New("number of indices should be greater than 0")
)

// Device is the subset of the device client the keychain needs
type Device interface {
	GetPublicKey(path bip32.Path, confirm bool) ([]byte, error)
	Sign(path bip32.Path, header txs.Header, payload txs.Payload) (ledger.Signature, error)
}

// Signer signs transactions with one derived key
type Signer interface {
	Sign(header txs.Header, payload txs.Payload) (ledger.Signature, error)
	PublicKey() []byte
	Path() bip32.Path
}

// Keychain maintains the set of public keys derived on the device together
// with the paths that produced them.
type Keychain struct {
	device    Device
	keys      [][]byte
	keyToPath map[string]bip32.Path
}

// NewKeychain derives the first [numToDerive] account keys
func NewKeychain(device Device, numToDerive int) (*Keychain, error) {
	if numToDerive < 1 {
		return nil, ErrInvalidNumKeysToDerive
	}

	indices := make([]uint32, numToDerive)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return NewKeychainFromIndices(device, indices)
}

// NewKeychainFromIndices derives the account keys at the given [indices]
func NewKeychainFromIndices(device Device, indices []uint32) (*Keychain, error) {
	if len(indices) == 0 {
		return nil, ErrInvalidIndicesLength
	}

	kc := &Keychain{
		device:    device,
		keys:      make([][]byte, 0, len(indices)),
		keyToPath: make(map[string]bip32.Path, len(indices)),
	}
	for _, index := range indices {
		path, err := accountPath(index)
		if err != nil {
			return nil, err
		}
		key, err := device.GetPublicKey(path, false)
		if err != nil {
			return nil, fmt.Errorf("deriving key %d: %w", index, err)
		}
		kc.keys = append(kc.keys, key)
		kc.keyToPath[string(key)] = path
	}
	return kc, nil
}

// PublicKeys returns the derived keys, in derivation order
func (kc *Keychain) PublicKeys() [][]byte {
	return kc.keys
}

// Get returns a signer for the given public key, if the keychain holds it
func (kc *Keychain) Get(pubKey []byte) (Signer, bool) {
	path, ok := kc.keyToPath[string(pubKey)]
	if !ok {
		return nil, false
	}
	return &deviceSigner{
		device: kc.device,
		path:   path,
		pubKey: pubKey,
	}, true
}

func accountPath(index uint32) (bip32.Path, error) {
	return bip32.ParsePath(fmt.Sprintf("%s/%d", rootPath, index))
}

// deviceSigner signs with one derived key on the underlying device
type deviceSigner struct {
	device Device
	path   bip32.Path
	pubKey []byte
}

func (s *deviceSigner) Sign(header txs.Header, payload txs.Payload) (ledger.Signature, error) {
	sig, err := s.device.Sign(s.path, header, payload)
	if err != nil {
		return nil, fmt.Errorf("signing with key %s: %w", hex.EncodeToString(s.pubKey), err)
	}
	return sig, nil
}

func (s *deviceSigner) PublicKey() []byte {
	return s.pubKey
}

func (s *deviceSigner) Path() bip32.Path {
	return s.path
}

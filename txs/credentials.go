// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

const (
	// RegIDLen is the width of a credential registration id
	RegIDLen = 48

	// VerificationKeyLen is the width of one account verification key
	VerificationKeyLen = 32

	// EncIDCredPubShareLen is the width of one encrypted identity
	// credential share held by an anonymity revoker
	EncIDCredPubShareLen = 96

	// IDCredPubLen is the width of the public identity credential sent to
	// an identity provider
	IDCredPubLen = 48
)

var errNoAccountChoice = errors.New("credential deployment needs either an existing account or a new account expiry")

// CredentialID is a credential registration id
type CredentialID [RegIDLen]byte

// VerificationKey is one account key with its key index and signature
// scheme tag.
type VerificationKey struct {
	Index  uint8                    `json:"index"`
	Scheme uint8                    `json:"scheme"`
	Key    [VerificationKeyLen]byte `json:"key"`
}

// YearMonth is a credential validity boundary
type YearMonth struct {
	Year  uint16 `json:"year"`
	Month uint8  `json:"month"`
}

// AnonymityRevocation is one anonymity revoker's share of the identity
// credential.
type AnonymityRevocation struct {
	Identity          uint32                     `json:"identity"`
	EncIDCredPubShare [EncIDCredPubShareLen]byte `json:"encIdCredPubShare"`
}

// Attribute is one revealed identity attribute; values are at most 255
// bytes since their length prefix is one byte.
type Attribute struct {
	Tag   uint8  `json:"tag"`
	Value []byte `json:"value"`
}

// CredentialInfo is one new credential record: verification keys, identity
// references, anonymity-revocation data, validity window, revealed
// attributes and the zero-knowledge proof blob.
type CredentialInfo struct {
	Keys             []VerificationKey     `json:"keys"`
	Threshold        uint8                 `json:"threshold"`
	RegID            CredentialID          `json:"regId"`
	IdentityProvider uint32                `json:"identityProvider"`
	ARThreshold      uint8                 `json:"arThreshold"`
	ARs              []AnonymityRevocation `json:"anonymityRevocations"`
	ValidTo          YearMonth             `json:"validTo"`
	CreatedAt        YearMonth             `json:"createdAt"`
	Attributes       []Attribute           `json:"attributes"`
	Proofs           []byte                `json:"proofs"`
}

// packCredential serializes one credential record and returns the spans of
// its sub-records.
func packCredential(p *packer, c *CredentialInfo) CredentialSpans {
	var spans CredentialSpans

	start := p.mark()
	count, err := wrappers.ToUint8(uint64(len(c.Keys)))
	if err != nil {
		p.Add(err)
		return spans
	}
	p.PackByte(count)
	spans.KeyCount = p.span(start)

	for _, key := range c.Keys {
		start = p.mark()
		p.PackByte(key.Index)
		p.PackByte(key.Scheme)
		p.PackFixedBytes(key.Key[:])
		spans.Keys = append(spans.Keys, p.span(start))
	}

	start = p.mark()
	arCount, err := wrappers.ToUint16(uint64(len(c.ARs)))
	if err != nil {
		p.Add(err)
		return spans
	}
	p.PackByte(c.Threshold)
	p.PackFixedBytes(c.RegID[:])
	p.PackInt(c.IdentityProvider)
	p.PackByte(c.ARThreshold)
	p.PackShort(arCount)
	spans.Common = p.span(start)

	for _, ar := range c.ARs {
		start = p.mark()
		p.PackInt(ar.Identity)
		p.PackFixedBytes(ar.EncIDCredPubShare[:])
		spans.ARs = append(spans.ARs, p.span(start))
	}

	start = p.mark()
	attrCount, err := wrappers.ToUint16(uint64(len(c.Attributes)))
	if err != nil {
		p.Add(err)
		return spans
	}
	p.PackShort(c.ValidTo.Year)
	p.PackByte(c.ValidTo.Month)
	p.PackShort(c.CreatedAt.Year)
	p.PackByte(c.CreatedAt.Month)
	p.PackShort(attrCount)
	spans.Dates = p.span(start)

	for _, attr := range c.Attributes {
		valLen, err := wrappers.ToUint8(uint64(len(attr.Value)))
		if err != nil {
			p.Add(fmt.Errorf("attribute 0x%02X: %w", attr.Tag, err))
			return spans
		}

		start = p.mark()
		p.PackByte(attr.Tag)
		p.PackByte(valLen)
		tagAndLen := p.span(start)

		start = p.mark()
		p.PackFixedBytes(attr.Value)
		spans.Attributes = append(spans.Attributes, AttributeSpans{
			TagAndLength: tagAndLen,
			Value:        p.span(start),
		})
	}

	start = p.mark()
	proofLen, err := wrappers.ToUint32(uint64(len(c.Proofs)))
	if err != nil {
		p.Add(err)
		return spans
	}
	p.PackInt(proofLen)
	spans.ProofLength = p.span(start)

	start = p.mark()
	p.PackFixedBytes(c.Proofs)
	spans.Proof = p.span(start)

	return spans
}

// NewCredential is a credential record being attached to an account at a
// given credential index.
type NewCredential struct {
	Index      uint8          `json:"index"`
	Credential CredentialInfo `json:"credential"`
}

// UpdateCredentials replaces account credentials: new records are added,
// listed ids are removed, and the account signature threshold is updated.
type UpdateCredentials struct {
	NewCredentials []NewCredential `json:"newCredentials"`
	RemoveIDs      []CredentialID  `json:"removeIds"`
	Threshold      uint8           `json:"threshold"`
}

func (*UpdateCredentials) Kind() Kind {
	return KindUpdateCredentials
}

func (t *UpdateCredentials) pack(p *packer) {
	start := p.mark()
	count, err := wrappers.ToUint8(uint64(len(t.NewCredentials)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackByte(count)
	p.record(FieldNewCredentialCount, start)

	for i := range t.NewCredentials {
		cred := &t.NewCredentials[i]

		start = p.mark()
		p.PackByte(cred.Index)
		index := p.span(start)

		spans := packCredential(p, &cred.Credential)
		spans.Index = index
		p.creds = append(p.creds, spans)
	}

	start = p.mark()
	removeCount, err := wrappers.ToUint8(uint64(len(t.RemoveIDs)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackByte(removeCount)
	p.record(FieldRemoveCount, start)

	for _, id := range t.RemoveIDs {
		start = p.mark()
		p.PackFixedBytes(id[:])
		p.removed = append(p.removed, p.span(start))
	}

	start = p.mark()
	p.PackByte(t.Threshold)
	p.record(FieldThreshold, start)
}

// CredentialDeployment creates a credential either on a fresh account or on
// an existing one. Exactly one of ExistingAccount and NewAccountExpiry must
// be set; the choice is encoded as a leading discriminator byte.
type CredentialDeployment struct {
	Credential       CredentialInfo  `json:"credential"`
	ExistingAccount  *AccountAddress `json:"existingAccount,omitempty"`
	NewAccountExpiry *uint64         `json:"newAccountExpiry,omitempty"`
}

// Serialize produces the canonical bytes of the deployment. Credential
// deployments predate accounts, so there is no transaction header.
func (t *CredentialDeployment) Serialize() (*SignReady, error) {
	if (t.ExistingAccount == nil) == (t.NewAccountExpiry == nil) {
		return nil, errNoAccountChoice
	}

	p := newPacker()
	spans := packCredential(p, &t.Credential)
	p.creds = append(p.creds, spans)

	start := p.mark()
	if t.NewAccountExpiry != nil {
		p.PackByte(1)
		p.PackLong(*t.NewAccountExpiry)
	} else {
		p.PackByte(0)
		p.PackFixedBytes(t.ExistingAccount[:])
	}
	p.record(FieldNewOrExisting, start)

	if p.Errored() {
		return nil, p.Err
	}
	return p.finish(0, nil), nil
}

// PublicInfoForIP is the account holder's public information sent to an
// identity provider during identity issuance.
type PublicInfoForIP struct {
	IDCredPub [IDCredPubLen]byte `json:"idCredPub"`
	RegID     CredentialID       `json:"regId"`
	Keys      []VerificationKey  `json:"keys"`
	Threshold uint8              `json:"threshold"`
}

// Serialize produces the canonical bytes of the structure; like credential
// deployments it carries no transaction header.
func (t *PublicInfoForIP) Serialize() (*SignReady, error) {
	p := newPacker()

	start := p.mark()
	count, err := wrappers.ToUint8(uint64(len(t.Keys)))
	if err != nil {
		return nil, err
	}
	p.PackFixedBytes(t.IDCredPub[:])
	p.PackFixedBytes(t.RegID[:])
	p.PackByte(count)
	p.record(FieldPublicInfoPrefix, start)

	for _, key := range t.Keys {
		start = p.mark()
		p.PackByte(key.Index)
		p.PackByte(key.Scheme)
		p.PackFixedBytes(key.Key[:])
		p.keys = append(p.keys, p.span(start))
	}

	start = p.mark()
	p.PackByte(t.Threshold)
	p.record(FieldThreshold, start)

	if p.Errored() {
		return nil, p.Err
	}
	return p.finish(0, nil), nil
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "github.com/ccd-labs/ccdledger/utils/wrappers"

// Bitmap payloads: a 16-bit presence bitmap is written directly after the
// kind tag and each optional sub-field appears in the byte stream iff its
// bit is set, always in the canonical bit order below. The bit assignments
// are frozen here; the dispatcher slices by the spans recorded during
// packing, so encoder and slicer cannot drift apart.

const (
	bakerBitStake uint16 = 1 << iota
	bakerBitRestakeEarnings
	bakerBitOpenForDelegation
	bakerBitKeys
	bakerBitMetadataURL
	bakerBitTransactionFeeCommission
	bakerBitBakingRewardCommission
	bakerBitFinalizationRewardCommission
)

const (
	delegationBitStake uint16 = 1 << iota
	delegationBitRestakeEarnings
	delegationBitTarget
)

// Baker verification key and proof widths
const (
	electionKeyLen    = 32
	signatureKeyLen   = 32
	aggregationKeyLen = 96
	keyProofLen       = 64

	// BakerKeysLen is the width of the full key block
	BakerKeysLen = electionKeyLen + signatureKeyLen + aggregationKeyLen + 3*keyProofLen
)

// BakerKeys is the block of verification keys and ownership proofs sent
// when a baker rotates or first registers its keys.
type BakerKeys struct {
	ElectionVerifyKey    [electionKeyLen]byte    `json:"electionVerifyKey"`
	ElectionProof        [keyProofLen]byte       `json:"electionProof"`
	SignatureVerifyKey   [signatureKeyLen]byte   `json:"signatureVerifyKey"`
	SignatureProof       [keyProofLen]byte       `json:"signatureProof"`
	AggregationVerifyKey [aggregationKeyLen]byte `json:"aggregationVerifyKey"`
	AggregationProof     [keyProofLen]byte       `json:"aggregationProof"`
}

// ConfigureBaker updates any subset of an account's baking configuration.
// Nil fields are absent from the wire encoding.
type ConfigureBaker struct {
	Stake             *uint64    `json:"stake,omitempty"`
	RestakeEarnings   *bool      `json:"restakeEarnings,omitempty"`
	OpenForDelegation *uint8     `json:"openForDelegation,omitempty"`
	Keys              *BakerKeys `json:"keys,omitempty"`
	MetadataURL       *string    `json:"metadataUrl,omitempty"`

	// Commission rates in parts per hundred thousand
	TransactionFeeCommission     *uint32 `json:"transactionFeeCommission,omitempty"`
	BakingRewardCommission       *uint32 `json:"bakingRewardCommission,omitempty"`
	FinalizationRewardCommission *uint32 `json:"finalizationRewardCommission,omitempty"`
}

func (*ConfigureBaker) Kind() Kind {
	return KindConfigureBaker
}

func (t *ConfigureBaker) bitmap() uint16 {
	var bits uint16
	if t.Stake != nil {
		bits |= bakerBitStake
	}
	if t.RestakeEarnings != nil {
		bits |= bakerBitRestakeEarnings
	}
	if t.OpenForDelegation != nil {
		bits |= bakerBitOpenForDelegation
	}
	if t.Keys != nil {
		bits |= bakerBitKeys
	}
	if t.MetadataURL != nil {
		bits |= bakerBitMetadataURL
	}
	if t.TransactionFeeCommission != nil {
		bits |= bakerBitTransactionFeeCommission
	}
	if t.BakingRewardCommission != nil {
		bits |= bakerBitBakingRewardCommission
	}
	if t.FinalizationRewardCommission != nil {
		bits |= bakerBitFinalizationRewardCommission
	}
	return bits
}

func (t *ConfigureBaker) pack(p *packer) {
	start := p.mark()
	p.PackShort(t.bitmap())
	p.record(FieldBitmap, start)

	if t.Stake != nil {
		start = p.mark()
		p.PackLong(*t.Stake)
		p.record(FieldStake, start)
	}
	if t.RestakeEarnings != nil {
		start = p.mark()
		p.PackByte(packBool(*t.RestakeEarnings))
		p.record(FieldRestake, start)
	}
	if t.OpenForDelegation != nil {
		start = p.mark()
		p.PackByte(*t.OpenForDelegation)
		p.record(FieldOpenStatus, start)
	}
	if t.Keys != nil {
		start = p.mark()
		p.PackFixedBytes(t.Keys.ElectionVerifyKey[:])
		p.PackFixedBytes(t.Keys.ElectionProof[:])
		p.PackFixedBytes(t.Keys.SignatureVerifyKey[:])
		p.PackFixedBytes(t.Keys.SignatureProof[:])
		p.PackFixedBytes(t.Keys.AggregationVerifyKey[:])
		p.PackFixedBytes(t.Keys.AggregationProof[:])
		p.record(FieldBakerKeys, start)
	}
	if t.MetadataURL != nil {
		start = p.mark()
		url := []byte(*t.MetadataURL)
		size, err := wrappers.ToUint16(uint64(len(url)))
		if err != nil {
			p.Add(err)
			return
		}
		p.PackShort(size)
		p.record(FieldMetadataURLLength, start)

		start = p.mark()
		p.PackFixedBytes(url)
		p.record(FieldMetadataURL, start)
	}

	// The present commission rates form one contiguous block
	start = p.mark()
	if t.TransactionFeeCommission != nil {
		p.PackInt(*t.TransactionFeeCommission)
	}
	if t.BakingRewardCommission != nil {
		p.PackInt(*t.BakingRewardCommission)
	}
	if t.FinalizationRewardCommission != nil {
		p.PackInt(*t.FinalizationRewardCommission)
	}
	if p.Offset > start {
		p.record(FieldCommissions, start)
	}
}

// DelegationTarget selects where delegated stake goes: the passive pool or
// a specific baker.
type DelegationTarget struct {
	Baker   bool   `json:"baker"`
	BakerID uint64 `json:"bakerId,omitempty"`
}

// ConfigureDelegation updates any subset of an account's delegation
// configuration. Nil fields are absent from the wire encoding.
type ConfigureDelegation struct {
	Stake           *uint64           `json:"stake,omitempty"`
	RestakeEarnings *bool             `json:"restakeEarnings,omitempty"`
	Target          *DelegationTarget `json:"target,omitempty"`
}

func (*ConfigureDelegation) Kind() Kind {
	return KindConfigureDelegation
}

func (t *ConfigureDelegation) bitmap() uint16 {
	var bits uint16
	if t.Stake != nil {
		bits |= delegationBitStake
	}
	if t.RestakeEarnings != nil {
		bits |= delegationBitRestakeEarnings
	}
	if t.Target != nil {
		bits |= delegationBitTarget
	}
	return bits
}

func (t *ConfigureDelegation) pack(p *packer) {
	start := p.mark()
	p.PackShort(t.bitmap())
	p.record(FieldBitmap, start)

	if t.Stake != nil {
		start = p.mark()
		p.PackLong(*t.Stake)
		p.record(FieldStake, start)
	}
	if t.RestakeEarnings != nil {
		start = p.mark()
		p.PackByte(packBool(*t.RestakeEarnings))
		p.record(FieldRestake, start)
	}
	if t.Target != nil {
		if t.Target.Baker {
			p.PackByte(1)
			p.PackLong(t.Target.BakerID)
		} else {
			p.PackByte(0)
		}
	}
}

func packBool(v bool) byte {
	if v {
		return 1
	}
	return 0
}

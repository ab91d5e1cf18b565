// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"fmt"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

const (
	// SchedulePairLen is the width of one (timestamp, amount) release
	SchedulePairLen = 2 * wrappers.LongLen

	// MaxSchedulePairs bounds a release schedule; its count is one byte
	MaxSchedulePairs = 255

	// RemainingAmountLen is the width of the encrypted remaining-amount
	// commitment of a transfer-to-public
	RemainingAmountLen = 192
)

var (
	_ Payload = (*Transfer)(nil)
	_ Payload = (*TransferWithMemo)(nil)
	_ Payload = (*TransferWithSchedule)(nil)
	_ Payload = (*TransferWithScheduleAndMemo)(nil)
	_ Payload = (*RegisterData)(nil)
	_ Payload = (*TransferToPublic)(nil)
	_ Payload = (*RawPayload)(nil)
)

// Transfer moves an amount to another account
type Transfer struct {
	To     AccountAddress `json:"to"`
	Amount uint64         `json:"amount"`
}

func (*Transfer) Kind() Kind {
	return KindSimpleTransfer
}

func (t *Transfer) pack(p *packer) {
	start := p.mark()
	p.PackFixedBytes(t.To[:])
	p.record(FieldToAddress, start)

	start = p.mark()
	p.PackLong(t.Amount)
	p.record(FieldAmount, start)
}

// TransferWithMemo is a transfer carrying an on-chain memo blob
type TransferWithMemo struct {
	To     AccountAddress `json:"to"`
	Memo   []byte         `json:"memo"`
	Amount uint64         `json:"amount"`
}

func (*TransferWithMemo) Kind() Kind {
	return KindTransferWithMemo
}

func (t *TransferWithMemo) pack(p *packer) {
	start := p.mark()
	p.PackFixedBytes(t.To[:])
	p.record(FieldToAddress, start)

	packMemo(p, t.Memo)

	start = p.mark()
	p.PackLong(t.Amount)
	p.record(FieldAmount, start)
}

// SchedulePair releases an amount at a timestamp
type SchedulePair struct {
	Timestamp uint64 `json:"timestamp"`
	Amount    uint64 `json:"amount"`
}

// TransferWithSchedule transfers an amount released in steps
type TransferWithSchedule struct {
	To       AccountAddress `json:"to"`
	Schedule []SchedulePair `json:"schedule"`
}

func (*TransferWithSchedule) Kind() Kind {
	return KindTransferWithSchedule
}

func (t *TransferWithSchedule) pack(p *packer) {
	start := p.mark()
	p.PackFixedBytes(t.To[:])
	p.record(FieldToAddress, start)

	packSchedule(p, t.Schedule)
}

// TransferWithScheduleAndMemo is a scheduled transfer carrying a memo
type TransferWithScheduleAndMemo struct {
	To       AccountAddress `json:"to"`
	Memo     []byte         `json:"memo"`
	Schedule []SchedulePair `json:"schedule"`
}

func (*TransferWithScheduleAndMemo) Kind() Kind {
	return KindTransferWithScheduleAndMemo
}

func (t *TransferWithScheduleAndMemo) pack(p *packer) {
	start := p.mark()
	p.PackFixedBytes(t.To[:])
	p.record(FieldToAddress, start)

	packMemo(p, t.Memo)
	packSchedule(p, t.Schedule)
}

// RegisterData registers an opaque blob on chain
type RegisterData struct {
	Data []byte `json:"data"`
}

func (*RegisterData) Kind() Kind {
	return KindRegisterData
}

func (t *RegisterData) pack(p *packer) {
	start := p.mark()
	size, err := wrappers.ToUint16(uint64(len(t.Data)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackShort(size)
	p.record(FieldDataLength, start)

	start = p.mark()
	p.PackFixedBytes(t.Data)
	p.record(FieldData, start)
}

// TransferToPublic unshields an amount from the encrypted balance
type TransferToPublic struct {
	// RemainingAmount is the commitment to the encrypted amount left over
	RemainingAmount []byte `json:"remainingAmount"`
	Amount          uint64 `json:"amount"`
	Index           uint64 `json:"index"`
	Proof           []byte `json:"proof"`
}

func (*TransferToPublic) Kind() Kind {
	return KindTransferToPublic
}

func (t *TransferToPublic) pack(p *packer) {
	if len(t.RemainingAmount) != RemainingAmountLen {
		p.Add(fmt.Errorf("%w: remaining amount must be %d bytes, got %d",
			ErrInvalidLength, RemainingAmountLen, len(t.RemainingAmount)))
		return
	}

	start := p.mark()
	p.PackFixedBytes(t.RemainingAmount)
	p.record(FieldRemainingAmount, start)

	start = p.mark()
	p.PackLong(t.Amount)
	p.PackLong(t.Index)
	p.record(FieldAmountAndIndex, start)

	start = p.mark()
	size, err := wrappers.ToUint16(uint64(len(t.Proof)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackShort(size)
	p.record(FieldProofLength, start)

	start = p.mark()
	p.PackFixedBytes(t.Proof)
	p.record(FieldProof, start)
}

// RawPayload is a caller-serialized payload body. Module deployment and
// contract init/update payloads are opaque to the device, which renders
// them as a hash, so their inner layout is not modeled here.
type RawPayload struct {
	RawKind Kind   `json:"kind"`
	Body    []byte `json:"body"`
}

func (t *RawPayload) Kind() Kind {
	return t.RawKind
}

func (t *RawPayload) pack(p *packer) {
	p.PackFixedBytes(t.Body)
}

func packMemo(p *packer, memo []byte) {
	start := p.mark()
	size, err := wrappers.ToUint16(uint64(len(memo)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackShort(size)
	p.record(FieldMemoLength, start)

	start = p.mark()
	p.PackFixedBytes(memo)
	p.record(FieldMemo, start)
}

func packSchedule(p *packer, schedule []SchedulePair) {
	start := p.mark()
	count, err := wrappers.ToUint8(uint64(len(schedule)))
	if err != nil {
		p.Add(err)
		return
	}
	p.PackByte(count)
	p.record(FieldScheduleCount, start)

	start = p.mark()
	for _, pair := range schedule {
		p.PackLong(pair.Timestamp)
		p.PackLong(pair.Amount)
	}
	p.record(FieldSchedulePairs, start)
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccd-labs/ccdledger/utils/wrappers"
)

func testAddress(fill byte) AccountAddress {
	var addr AccountAddress
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func testHeader() Header {
	return Header{
		Sender: testAddress(0x11),
		Nonce:  1234,
		Energy: 1234,
		Expiry: 1720000000,
	}
}

func TestSerializeSimpleTransfer(t *testing.T) {
	require := require.New(t)

	ready, err := Serialize(testHeader(), &Transfer{
		To:     testAddress(0x22),
		Amount: 999,
	})
	require.NoError(err)

	require.Equal(KindSimpleTransfer, ready.Kind)
	require.Len(ready.Bytes, HeaderLen+KindLen+AddressLen+wrappers.LongLen)

	sender := testAddress(0x11)
	to := testAddress(0x22)

	// header: sender ‖ nonce ‖ energy ‖ payloadSize ‖ expiry
	require.Equal(sender[:], ready.Bytes[:32])
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0x04, 0xD2}, ready.Bytes[32:40])
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0x04, 0xD2}, ready.Bytes[40:48])
	// payload size is len(payload)+1 for the kind tag
	require.Equal([]byte{0, 0, 0, 41}, ready.Bytes[48:52])

	require.Equal(byte(0x03), ready.Bytes[HeaderLen])
	require.Equal(to[:], ready.Field(FieldToAddress))
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0x03, 0xE7}, ready.Field(FieldAmount))
}

func TestSerializePayloadSizeAlwaysDerived(t *testing.T) {
	require := require.New(t)

	for _, payload := range []Payload{
		&Transfer{To: testAddress(1), Amount: 1},
		&TransferWithMemo{To: testAddress(1), Memo: []byte("hello"), Amount: 1},
		&RegisterData{Data: make([]byte, 300)},
		&ConfigureDelegation{},
		&RawPayload{RawKind: KindDeployModule, Body: make([]byte, 77)},
	} {
		ready, err := Serialize(testHeader(), payload)
		require.NoError(err)

		declared := uint32(ready.Bytes[48])<<24 | uint32(ready.Bytes[49])<<16 |
			uint32(ready.Bytes[50])<<8 | uint32(ready.Bytes[51])
		require.Equal(len(ready.Bytes)-HeaderLen, int(declared))
	}
}

func TestSerializeTransferWithMemo(t *testing.T) {
	require := require.New(t)

	memo := []byte("invoice 42")
	ready, err := Serialize(testHeader(), &TransferWithMemo{
		To:     testAddress(0x22),
		Memo:   memo,
		Amount: 7,
	})
	require.NoError(err)

	require.Equal([]byte{0, byte(len(memo))}, ready.Field(FieldMemoLength))
	require.Equal(memo, ready.Field(FieldMemo))

	// memo length prefix immediately precedes the memo bytes
	require.Equal(ready.Span(FieldMemoLength).End(), ready.Span(FieldMemo).Offset)
	// amount trails the memo
	require.Equal(ready.Span(FieldMemo).End(), ready.Span(FieldAmount).Offset)
	require.Equal(len(ready.Bytes), ready.Span(FieldAmount).End())
}

func TestSerializeMemoTooLong(t *testing.T) {
	require := require.New(t)

	_, err := Serialize(testHeader(), &TransferWithMemo{
		To:   testAddress(0x22),
		Memo: make([]byte, wrappers.MaxShortBytesLen+1),
	})
	require.ErrorIs(err, wrappers.ErrOutOfRange)
}

func TestSerializeTransferWithSchedule(t *testing.T) {
	require := require.New(t)

	schedule := make([]SchedulePair, 20)
	for i := range schedule {
		schedule[i] = SchedulePair{Timestamp: uint64(1000 + i), Amount: uint64(i)}
	}

	ready, err := Serialize(testHeader(), &TransferWithSchedule{
		To:       testAddress(0x22),
		Schedule: schedule,
	})
	require.NoError(err)

	require.Equal([]byte{20}, ready.Field(FieldScheduleCount))
	pairs := ready.Field(FieldSchedulePairs)
	require.Len(pairs, len(schedule)*SchedulePairLen)
	// first pair: timestamp 1000, amount 0
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0x03, 0xE8}, pairs[:8])
}

func TestSerializeScheduleTooLong(t *testing.T) {
	require := require.New(t)

	_, err := Serialize(testHeader(), &TransferWithSchedule{
		To:       testAddress(0x22),
		Schedule: make([]SchedulePair, MaxSchedulePairs+1),
	})
	require.ErrorIs(err, wrappers.ErrOutOfRange)
}

func TestSerializeScheduleAndMemoOrder(t *testing.T) {
	require := require.New(t)

	ready, err := Serialize(testHeader(), &TransferWithScheduleAndMemo{
		To:       testAddress(0x22),
		Memo:     []byte{0xAB},
		Schedule: []SchedulePair{{Timestamp: 1, Amount: 2}},
	})
	require.NoError(err)

	// canonical order: to ‖ memoLen ‖ memo ‖ count ‖ pairs
	require.Equal(HeaderLen+KindLen, ready.Span(FieldToAddress).Offset)
	require.Equal(ready.Span(FieldToAddress).End(), ready.Span(FieldMemoLength).Offset)
	require.Equal(ready.Span(FieldMemo).End(), ready.Span(FieldScheduleCount).Offset)
	require.Equal(ready.Span(FieldScheduleCount).End(), ready.Span(FieldSchedulePairs).Offset)
	require.Equal(len(ready.Bytes), ready.Span(FieldSchedulePairs).End())
}

func TestSerializeRegisterData(t *testing.T) {
	require := require.New(t)

	data := bytes.Repeat([]byte{0xCD}, 300)
	ready, err := Serialize(testHeader(), &RegisterData{Data: data})
	require.NoError(err)

	require.Equal([]byte{0x01, 0x2C}, ready.Field(FieldDataLength))
	require.Equal(data, ready.Field(FieldData))
}

func TestSerializeTransferToPublic(t *testing.T) {
	require := require.New(t)

	remaining := bytes.Repeat([]byte{0x01}, RemainingAmountLen)
	proof := bytes.Repeat([]byte{0x02}, 500)
	ready, err := Serialize(testHeader(), &TransferToPublic{
		RemainingAmount: remaining,
		Amount:          77,
		Index:           3,
		Proof:           proof,
	})
	require.NoError(err)

	require.Equal(remaining, ready.Field(FieldRemainingAmount))
	require.Len(ready.Field(FieldAmountAndIndex), 16)
	require.Equal([]byte{0x01, 0xF4}, ready.Field(FieldProofLength))
	require.Equal(proof, ready.Field(FieldProof))
}

func TestSerializeTransferToPublicBadCommitment(t *testing.T) {
	require := require.New(t)

	_, err := Serialize(testHeader(), &TransferToPublic{
		RemainingAmount: make([]byte, RemainingAmountLen-1),
	})
	require.ErrorIs(err, ErrInvalidLength)
}

func TestSerializeNilPayload(t *testing.T) {
	require := require.New(t)

	_, err := Serialize(testHeader(), nil)
	require.Error(err)
}

func TestAccountAddressText(t *testing.T) {
	require := require.New(t)

	addr := testAddress(0xAB)
	text, err := addr.MarshalText()
	require.NoError(err)

	var back AccountAddress
	require.NoError(back.UnmarshalText(text))
	require.Equal(addr, back)

	require.Error(back.UnmarshalText([]byte("abcd")))
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ccd-labs/ccdledger/apdu"
	"github.com/ccd-labs/ccdledger/bip32"
	"github.com/ccd-labs/ccdledger/txs"

	"go.uber.org/zap"
)

// maxPairFrameLen keeps schedule frames on 16-byte pair boundaries: at most
// 15 pairs per frame, as required by the device's staged parser
const maxPairFrameLen = 15 * txs.SchedulePairLen

// maxStreamFrames is bounded by the 1-byte frame counter in P1
const maxStreamFrames = 256

// stage is one command invocation of a kind's fixed script
type stage struct {
	p1   byte
	p2   byte
	data []byte
}

// session runs one signing call. Stages are sent strictly in order, one in
// flight at a time; every intermediate reply is discarded, only the terminal
// reply is interpreted.
type session struct {
	device *Device
	ins    byte
	path   bip32.Path
	ready  *txs.SignReady
}

// run executes the stage script. Any transport or status error aborts the
// remaining stages; the device's partially-accumulated state is abandoned
// and a fresh call must restart from the beginning.
func (s *session) run(stages []stage) (Signature, error) {
	d := s.device
	for i, st := range stages {
		body, err := apdu.Exchange(d.conn, apdu.Command{
			INS:  s.ins,
			P1:   st.p1,
			P2:   st.p2,
			Data: st.data,
		})
		if err != nil {
			return nil, err
		}

		d.metrics.stages.Inc()
		d.log.Debug("stage sent",
			zap.Uint8("ins", s.ins),
			zap.Uint8("p1", st.p1),
			zap.Uint8("p2", st.p2),
			zap.Int("frameLen", len(st.data)),
			zap.Int("stage", i),
			zap.Int("stages", len(stages)),
		)

		if i < len(stages)-1 {
			continue
		}
		if len(body) == 1 {
			d.metrics.declines.Inc()
			return nil, ErrUserDeclined
		}

		d.metrics.signatures.Inc()
		sig := make(Signature, len(body))
		copy(sig, body)
		return sig, nil
	}
	return nil, ErrUnsupportedKind
}

// scriptEntry binds a transaction kind to its instruction code and stage
// script builder. The builder produces the full, statically-ordered stage
// list before anything is sent.
type scriptEntry struct {
	ins   byte
	build func(*session) ([]stage, error)
}

var scripts = map[txs.Kind]scriptEntry{
	txs.KindSimpleTransfer:              {insSignTransfer, (*session).streamWhole},
	txs.KindConfigureDelegation:         {insSignConfigureDelegation, (*session).streamWhole},
	txs.KindDeployModule:                {insSignDeployModule, (*session).streamWhole},
	txs.KindInitContract:                {insSignDeployModule, (*session).streamWhole},
	txs.KindUpdateContract:              {insSignDeployModule, (*session).streamWhole},
	txs.KindTransferWithMemo:            {insSignTransferWithMemo, (*session).buildMemoTransfer},
	txs.KindTransferWithSchedule:        {insSignTransferWithSchedule, (*session).buildScheduleTransfer},
	txs.KindTransferWithScheduleAndMemo: {insSignTransferWithScheduleAndMemo, (*session).buildScheduleAndMemo},
	txs.KindRegisterData:                {insSignRegisterData, (*session).buildRegisterData},
	txs.KindConfigureBaker:              {insSignConfigureBaker, (*session).buildConfigureBaker},
	txs.KindTransferToPublic:            {insSignTransferToPublic, (*session).buildTransferToPublic},
	txs.KindUpdateCredentials:           {insSignUpdateCredentials, (*session).buildUpdateCredentials},
}

// streamWhole delivers the whole canonical byte sequence as plain frames:
// the path prefixes frame 0, P1 counts frames, P2 flags the last one.
func (s *session) streamWhole() ([]stage, error) {
	frames := apdu.ChunkWithPrefix(s.path.Bytes(), s.ready.Bytes, apdu.MaxFrameLen)
	if len(frames) > maxStreamFrames {
		return nil, fmt.Errorf("%w: %d frames exceed the stage counter maximum of %d",
			ErrTransactionTooLarge, len(frames), maxStreamFrames)
	}
	stages := make([]stage, len(frames))
	for i, frame := range frames {
		p2 := p2MoreFrames
		if i == len(frames)-1 {
			p2 = p2LastFrame
		}
		stages[i] = stage{p1: byte(i), p2: p2, data: frame}
	}
	return stages, nil
}

func (s *session) buildMemoTransfer() ([]stage, error) {
	initial := s.ready.Bytes[:s.ready.Span(txs.FieldMemoLength).End()]
	stages := []stage{{p1: p1MemoInitial, data: withPath(s.path, initial)}}
	for _, chunk := range apdu.Chunk(s.ready.Field(txs.FieldMemo), apdu.MaxFrameLen) {
		stages = append(stages, stage{p1: p1MemoBytes, data: chunk})
	}
	return append(stages, stage{p1: p1MemoAmount, data: s.ready.Field(txs.FieldAmount)}), nil
}

func (s *session) buildScheduleTransfer() ([]stage, error) {
	initial := s.ready.Bytes[:s.ready.Span(txs.FieldScheduleCount).End()]
	stages := []stage{{p1: p1ScheduleInitial, data: withPath(s.path, initial)}}
	for _, chunk := range apdu.Chunk(s.ready.Field(txs.FieldSchedulePairs), maxPairFrameLen) {
		stages = append(stages, stage{p1: p1SchedulePairs, data: chunk})
	}
	return stages, nil
}

func (s *session) buildScheduleAndMemo() ([]stage, error) {
	initial := s.ready.Bytes[:s.ready.Span(txs.FieldMemoLength).End()]
	stages := []stage{{p1: p1ScheduleMemoInitial, data: withPath(s.path, initial)}}
	for _, chunk := range apdu.Chunk(s.ready.Field(txs.FieldMemo), apdu.MaxFrameLen) {
		stages = append(stages, stage{p1: p1ScheduleMemoBytes, data: chunk})
	}
	stages = append(stages, stage{p1: p1ScheduleMemoPairs, data: s.ready.Field(txs.FieldScheduleCount)})
	for _, chunk := range apdu.Chunk(s.ready.Field(txs.FieldSchedulePairs), maxPairFrameLen) {
		stages = append(stages, stage{p1: p1ScheduleMemoPairs, data: chunk})
	}
	return stages, nil
}

func (s *session) buildRegisterData() ([]stage, error) {
	initial := s.ready.Bytes[:s.ready.Span(txs.FieldDataLength).End()]
	stages := []stage{{p1: p1DataInitial, data: withPath(s.path, initial)}}
	for _, chunk := range apdu.Chunk(s.ready.Field(txs.FieldData), apdu.MaxFrameLen) {
		stages = append(stages, stage{p1: p1DataBytes, data: chunk})
	}
	return stages, nil
}

func (s *session) buildConfigureBaker() ([]stage, error) {
	ready := s.ready

	// The initial frame carries the bitmap plus the fixed-width fields that
	// precede the key block, whichever of them are present.
	end := ready.Span(txs.FieldBitmap).End()
	for _, f := range []txs.Field{txs.FieldStake, txs.FieldRestake, txs.FieldOpenStatus} {
		if ready.Has(f) {
			end = ready.Span(f).End()
		}
	}
	stages := []stage{{p1: p1BakerInitial, data: withPath(s.path, ready.Bytes[:end])}}

	if ready.Has(txs.FieldBakerKeys) {
		for _, chunk := range apdu.Chunk(ready.Field(txs.FieldBakerKeys), apdu.MaxFrameLen) {
			stages = append(stages, stage{p1: p1BakerKeys, data: chunk})
		}
	}
	if ready.Has(txs.FieldMetadataURLLength) {
		stages = append(stages, stage{p1: p1BakerURLLength, data: ready.Field(txs.FieldMetadataURLLength)})
		for _, chunk := range apdu.Chunk(ready.Field(txs.FieldMetadataURL), apdu.MaxFrameLen) {
			stages = append(stages, stage{p1: p1BakerURL, data: chunk})
		}
	}
	if ready.Has(txs.FieldCommissions) {
		stages = append(stages, stage{p1: p1BakerCommissions, data: ready.Field(txs.FieldCommissions)})
	}
	return stages, nil
}

func (s *session) buildTransferToPublic() ([]stage, error) {
	ready := s.ready
	stages := []stage{
		{p1: p1PublicInitial, data: withPath(s.path, ready.HeaderAndKind())},
		{p1: p1PublicRemainingAmount, data: ready.Field(txs.FieldRemainingAmount)},
		{
			p1: p1PublicAmountAndIndex,
			data: ready.Bytes[ready.Span(txs.FieldAmountAndIndex).Offset:ready.Span(txs.FieldProofLength).End()],
		},
	}
	for _, chunk := range apdu.Chunk(ready.Field(txs.FieldProof), apdu.MaxFrameLen) {
		stages = append(stages, stage{p1: p1PublicProof, data: chunk})
	}
	return stages, nil
}

func (s *session) buildUpdateCredentials() ([]stage, error) {
	ready := s.ready

	initial := ready.Bytes[:ready.Span(txs.FieldNewCredentialCount).End()]
	stages := []stage{{p2: p2CredentialsInitial, data: withPath(s.path, initial)}}

	for _, cred := range ready.Credentials {
		stages = append(stages, stage{p2: p2CredentialIndex, data: ready.Slice(cred.Index)})
		stages = appendCredentialStages(stages, ready, cred, p2CredentialRecord)
	}

	stages = append(stages, stage{p2: p2RemoveCount, data: ready.Field(txs.FieldRemoveCount)})
	for _, id := range ready.Removed {
		stages = append(stages, stage{p2: p2RemoveID, data: ready.Slice(id)})
	}
	return append(stages, stage{p2: p2Threshold, data: ready.Field(txs.FieldThreshold)}), nil
}

// appendCredentialStages emits one credential record with the shared stage
// vocabulary: nested repeated structures (keys, anonymity revokers,
// attributes) re-emit the same stage tag once per element, so the device
// accumulates the variable-length record incrementally.
func appendCredentialStages(stages []stage, ready *txs.SignReady, cred txs.CredentialSpans, p2 byte) []stage {
	stages = append(stages, stage{p1: p1CredKeyCount, p2: p2, data: ready.Slice(cred.KeyCount)})
	for _, key := range cred.Keys {
		stages = append(stages, stage{p1: p1CredKey, p2: p2, data: ready.Slice(key)})
	}
	stages = append(stages, stage{p1: p1CredCommon, p2: p2, data: ready.Slice(cred.Common)})
	for _, ar := range cred.ARs {
		stages = append(stages, stage{p1: p1CredAR, p2: p2, data: ready.Slice(ar)})
	}
	stages = append(stages, stage{p1: p1CredDates, p2: p2, data: ready.Slice(cred.Dates)})
	for _, attr := range cred.Attributes {
		stages = append(stages,
			stage{p1: p1CredAttrTag, p2: p2, data: ready.Slice(attr.TagAndLength)},
			stage{p1: p1CredAttrValue, p2: p2, data: ready.Slice(attr.Value)},
		)
	}
	stages = append(stages, stage{p1: p1CredProofLength, p2: p2, data: ready.Slice(cred.ProofLength)})
	for _, chunk := range apdu.Chunk(ready.Slice(cred.Proof), apdu.MaxFrameLen) {
		stages = append(stages, stage{p1: p1CredProof, p2: p2, data: chunk})
	}
	return stages
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Span is a named (offset, length) window into the canonical bytes. The
// serializer records one span per logical sub-field while it packs, so the
// staged dispatcher never re-derives field boundaries from presence logic.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last byte of the span
func (s Span) End() int {
	return s.Offset + s.Length
}

func (s Span) shift(by int) Span {
	s.Offset += by
	return s
}

// Field names a logical sub-field of a serialized transaction
type Field uint8

const (
	FieldToAddress Field = iota
	FieldAmount
	FieldMemoLength
	FieldMemo
	FieldScheduleCount
	FieldSchedulePairs
	FieldBitmap
	FieldStake
	FieldRestake
	FieldOpenStatus
	FieldBakerKeys
	FieldMetadataURLLength
	FieldMetadataURL
	FieldCommissions
	FieldDataLength
	FieldData
	FieldRemainingAmount
	FieldAmountAndIndex
	FieldProofLength
	FieldProof
	FieldNewCredentialCount
	FieldRemoveCount
	FieldThreshold
	FieldNewOrExisting
	FieldPublicInfoPrefix
)

// AttributeSpans locates one revealed attribute inside a credential record
type AttributeSpans struct {
	// TagAndLength covers the 1-byte tag plus the 1-byte value length
	TagAndLength Span
	Value        Span
}

// CredentialSpans locates the sub-records of one serialized credential, in
// the order the device's staged parser consumes them.
type CredentialSpans struct {
	// Index covers the 1-byte credential index; only present for
	// update-credentials payloads
	Index Span

	KeyCount Span
	Keys     []Span

	// Common covers signature threshold, registration id, identity provider,
	// anonymity-revocation threshold and count as one fixed-width block
	Common Span

	ARs []Span

	// Dates covers validTo, createdAt and the attribute count
	Dates Span

	Attributes []AttributeSpans

	ProofLength Span
	Proof       Span
}

func (c CredentialSpans) shift(by int) CredentialSpans {
	c.Index = c.Index.shift(by)
	c.KeyCount = c.KeyCount.shift(by)
	c.Keys = shiftAll(c.Keys, by)
	c.Common = c.Common.shift(by)
	c.ARs = shiftAll(c.ARs, by)
	c.Dates = c.Dates.shift(by)
	for i := range c.Attributes {
		c.Attributes[i].TagAndLength = c.Attributes[i].TagAndLength.shift(by)
		c.Attributes[i].Value = c.Attributes[i].Value.shift(by)
	}
	c.ProofLength = c.ProofLength.shift(by)
	c.Proof = c.Proof.shift(by)
	return c
}

func shiftAll(spans []Span, by int) []Span {
	for i := range spans {
		spans[i] = spans[i].shift(by)
	}
	return spans
}

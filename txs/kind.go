// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Kind is the closed one-byte tag selecting which payload variant follows
// the transaction header on the wire.
type Kind byte

const (
	KindDeployModule                Kind = 0
	KindInitContract                Kind = 1
	KindUpdateContract              Kind = 2
	KindSimpleTransfer              Kind = 3
	KindTransferToPublic            Kind = 18
	KindTransferWithSchedule        Kind = 19
	KindUpdateCredentials           Kind = 20
	KindRegisterData                Kind = 21
	KindTransferWithMemo            Kind = 22
	KindTransferWithScheduleAndMemo Kind = 24
	KindConfigureBaker              Kind = 25
	KindConfigureDelegation         Kind = 26
)

func (k Kind) String() string {
	switch k {
	case KindDeployModule:
		return "deployModule"
	case KindInitContract:
		return "initContract"
	case KindUpdateContract:
		return "updateContract"
	case KindSimpleTransfer:
		return "simpleTransfer"
	case KindTransferToPublic:
		return "transferToPublic"
	case KindTransferWithSchedule:
		return "transferWithSchedule"
	case KindUpdateCredentials:
		return "updateCredentials"
	case KindRegisterData:
		return "registerData"
	case KindTransferWithMemo:
		return "transferWithMemo"
	case KindTransferWithScheduleAndMemo:
		return "transferWithScheduleAndMemo"
	case KindConfigureBaker:
		return "configureBaker"
	case KindConfigureDelegation:
		return "configureDelegation"
	default:
		return "unknown"
	}
}

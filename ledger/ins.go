// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// Instruction codes, one per operation family. Module deployment and
// contract init/update share one code; the device tells them apart by the
// kind tag inside the streamed bytes.
const (
	insVerifyAddress                   byte = 0x00
	insGetPublicKey                    byte = 0x01
	insSignTransfer                    byte = 0x02
	insSignTransferWithSchedule        byte = 0x03
	insSignCredentialDeployment        byte = 0x04
	insExportPrivateKey                byte = 0x05
	insSignDeployModule                byte = 0x06
	insSignTransferToPublic            byte = 0x12
	insSignConfigureDelegation         byte = 0x17
	insSignConfigureBaker              byte = 0x18
	insSignPublicInfoForIP             byte = 0x20
	insSignUpdateCredentials           byte = 0x31
	insSignTransferWithMemo            byte = 0x32
	insSignTransferWithScheduleAndMemo byte = 0x34
	insSignRegisterData                byte = 0x35
)

// Streaming kinds: P1 counts frames from 0 and P2 flags the last frame
const (
	p2MoreFrames byte = 0x00
	p2LastFrame  byte = 0x01
)

// Memo transfer stage tags
const (
	p1MemoInitial byte = 0x01
	p1MemoBytes   byte = 0x02
	p1MemoAmount  byte = 0x03
)

// Schedule transfer stage tags
const (
	p1ScheduleInitial byte = 0x00
	p1SchedulePairs   byte = 0x01
)

// Schedule-and-memo transfer stage tags
const (
	p1ScheduleMemoInitial byte = 0x01
	p1ScheduleMemoBytes   byte = 0x02
	p1ScheduleMemoPairs   byte = 0x03
)

// Register-data stage tags
const (
	p1DataInitial byte = 0x00
	p1DataBytes   byte = 0x01
)

// Configure-baker stage tags
const (
	p1BakerInitial     byte = 0x00
	p1BakerKeys        byte = 0x01
	p1BakerURLLength   byte = 0x02
	p1BakerURL         byte = 0x03
	p1BakerCommissions byte = 0x04
)

// Transfer-to-public stage tags
const (
	p1PublicInitial         byte = 0x00
	p1PublicRemainingAmount byte = 0x01
	p1PublicAmountAndIndex  byte = 0x02
	p1PublicProof           byte = 0x03
)

// Update-credentials sub-stage tags (P2 selects the phase; P1 carries the
// credential-record stage code during the record phase)
const (
	p2CredentialsInitial byte = 0x00
	p2CredentialIndex    byte = 0x01
	p2CredentialRecord   byte = 0x02
	p2RemoveCount        byte = 0x03
	p2RemoveID           byte = 0x04
	p2Threshold          byte = 0x05
)

// Shared credential-record stage tags, used by both update-credentials and
// credential-deployment flows
const (
	p1CredKeyCount    byte = 0x00
	p1CredKey         byte = 0x01
	p1CredCommon      byte = 0x02
	p1CredAR          byte = 0x03
	p1CredDates       byte = 0x04
	p1CredAttrTag     byte = 0x05
	p1CredAttrValue   byte = 0x06
	p1CredProofLength byte = 0x07
	p1CredProof       byte = 0x08
)

// Credential-deployment stage tags outside the shared record vocabulary
const (
	p1DeploymentPath          byte = 0x00
	p1DeploymentNewOrExisting byte = 0x09
)

// Public-info-for-ip stage tags
const (
	p1InfoInitial   byte = 0x00
	p1InfoKey       byte = 0x01
	p1InfoThreshold byte = 0x02
)

// Get-public-key stage tags
const (
	p1KeySilent  byte = 0x00
	p1KeyConfirm byte = 0x01
)

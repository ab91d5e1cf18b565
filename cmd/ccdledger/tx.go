// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ccd-labs/ccdledger/txs"
)

// txFile is the on-disk shape of a transaction to sign: the account header,
// a kind name and the kind's payload fields.
type txFile struct {
	Header  txs.Header      `json:"header"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// payloadsByName maps the kind names accepted in transaction files to
// constructors of the payload variant to unmarshal into.
var payloadsByName = map[string]func() txs.Payload{
	"simpleTransfer":              func() txs.Payload { return &txs.Transfer{} },
	"transferWithMemo":            func() txs.Payload { return &txs.TransferWithMemo{} },
	"transferWithSchedule":        func() txs.Payload { return &txs.TransferWithSchedule{} },
	"transferWithScheduleAndMemo": func() txs.Payload { return &txs.TransferWithScheduleAndMemo{} },
	"registerData":                func() txs.Payload { return &txs.RegisterData{} },
	"transferToPublic":            func() txs.Payload { return &txs.TransferToPublic{} },
	"configureBaker":              func() txs.Payload { return &txs.ConfigureBaker{} },
	"configureDelegation":         func() txs.Payload { return &txs.ConfigureDelegation{} },
	"updateCredentials":           func() txs.Payload { return &txs.UpdateCredentials{} },
	"deployModule":                func() txs.Payload { return &txs.RawPayload{RawKind: txs.KindDeployModule} },
	"initContract":                func() txs.Payload { return &txs.RawPayload{RawKind: txs.KindInitContract} },
	"updateContract":              func() txs.Payload { return &txs.RawPayload{RawKind: txs.KindUpdateContract} },
}

// parseTransaction decodes a transaction file into its header and payload
func parseTransaction(raw []byte) (txs.Header, txs.Payload, error) {
	var file txFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return txs.Header{}, nil, err
	}

	newPayload, ok := payloadsByName[file.Kind]
	if !ok {
		known := maps.Keys(payloadsByName)
		slices.Sort(known)
		return txs.Header{}, nil, fmt.Errorf("unknown transaction kind %q, expected one of: %s",
			file.Kind, strings.Join(known, ", "))
	}
	payload := newPayload()
	if len(file.Payload) > 0 {
		if err := json.Unmarshal(file.Payload, payload); err != nil {
			return txs.Header{}, nil, err
		}
	}
	return file.Header, payload, nil
}

// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ccd-labs/ccdledger/apdu"
	"github.com/ccd-labs/ccdledger/txs"
)

// scriptedConn returns a fixed reply sequence, status word included
type scriptedConn struct {
	replies [][]byte
	sent    [][]byte
}

func (c *scriptedConn) Exchange(command []byte) ([]byte, error) {
	c.sent = append(c.sent, command)
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (*scriptedConn) Close() error {
	return nil
}

func TestGetPublicKey(t *testing.T) {
	require := require.New(t)

	key := bytes.Repeat([]byte{0x42}, 32)
	reply := append([]byte{32}, key...)
	reply = append(reply, 0x90, 0x00)

	conn := &scriptedConn{replies: [][]byte{reply}}
	d := testDevice(t, conn)

	got, err := d.GetPublicKey(testPath(t), false)
	require.NoError(err)
	require.Equal(key, got)

	// ins, p1 silent, path payload
	cmd := conn.sent[0]
	require.Equal(insGetPublicKey, cmd[1])
	require.Equal(p1KeySilent, cmd[2])
	require.Equal(byte(21), cmd[4])
}

func TestGetPublicKeyConfirmDeclined(t *testing.T) {
	require := require.New(t)

	conn := &scriptedConn{replies: [][]byte{{0x00, 0x90, 0x00}}}
	d := testDevice(t, conn)

	_, err := d.GetPublicKey(testPath(t), true)
	require.ErrorIs(err, ErrUserDeclined)
	require.Equal(p1KeyConfirm, conn.sent[0][2])
}

func TestGetPublicKeyBadLengthPrefix(t *testing.T) {
	require := require.New(t)

	conn := &scriptedConn{replies: [][]byte{{5, 0x01, 0x02, 0x90, 0x00}}}
	d := testDevice(t, conn)

	_, err := d.GetPublicKey(testPath(t), false)
	require.ErrorIs(err, errInvalidKeyReply)
}

func TestExportPrivateKey(t *testing.T) {
	require := require.New(t)

	key := bytes.Repeat([]byte{0x77}, 32)
	reply := append([]byte{32}, key...)
	reply = append(reply, 0x90, 0x00)

	conn := &scriptedConn{replies: [][]byte{reply}}
	d := testDevice(t, conn)

	got, err := d.ExportPrivateKey(testPath(t), ExportIDCredSec)
	require.NoError(err)
	require.Equal(key, got)
	require.Equal(byte(ExportIDCredSec), conn.sent[0][2])
}

func TestExportPrivateKeyDeclined(t *testing.T) {
	require := require.New(t)

	conn := &scriptedConn{replies: [][]byte{{0x00, 0x90, 0x00}}}
	d := testDevice(t, conn)

	_, err := d.ExportPrivateKey(testPath(t), ExportPRFKey)
	require.ErrorIs(err, ErrUserDeclined)
}

func TestVerifyAddress(t *testing.T) {
	require := require.New(t)

	conn := &scriptedConn{replies: [][]byte{{0x90, 0x00}}}
	d := testDevice(t, conn)

	require.NoError(d.VerifyAddress(4, 0))

	cmd := conn.sent[0]
	require.Equal(insVerifyAddress, cmd[1])
	require.Equal([]byte{0, 0, 0, 4, 0, 0, 0, 0}, cmd[5:])
}

func TestVerifyAddressRejected(t *testing.T) {
	require := require.New(t)

	conn := &scriptedConn{replies: [][]byte{{0x6A, 0x80}}}
	d := testDevice(t, conn)

	err := d.VerifyAddress(4, 0)
	statusErr := &apdu.StatusError{}
	require.ErrorAs(err, &statusErr)
	require.Equal(uint16(0x6A80), statusErr.Code)
}

func TestSignatureHex(t *testing.T) {
	require := require.New(t)

	require.Equal("5a5a", Signature{0x5A, 0x5A}.String())
}

func TestDeviceMetricsRegistration(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	conn := &fakeConn{body: testSig}
	d, err := New(conn, WithRegisterer(reg))
	require.NoError(err)

	_, err = d.Sign(testPath(t), testHeader(), &txs.Transfer{To: testAddress(1), Amount: 1})
	require.NoError(err)

	families, err := reg.Gather()
	require.NoError(err)

	found := make(map[string]float64)
	for _, family := range families {
		found[family.GetName()] = family.GetMetric()[0].GetCounter().GetValue()
	}
	require.Equal(1.0, found["ccdledger_stages_sent"])
	require.Equal(1.0, found["ccdledger_signatures"])
	require.Zero(found["ccdledger_declines"])
}

func TestDeviceMetricsDoubleRegistration(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	_, err := New(&fakeConn{}, WithRegisterer(reg))
	require.NoError(err)
	_, err = New(&fakeConn{}, WithRegisterer(reg))
	require.Error(err)
}

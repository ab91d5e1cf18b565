// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package apdu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// replayConn feeds back canned replies and records every command it saw
type replayConn struct {
	sent    [][]byte
	replies [][]byte
	err     error
}

func (c *replayConn) Exchange(command []byte) ([]byte, error) {
	c.sent = append(c.sent, command)
	if c.err != nil {
		return nil, c.err
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (*replayConn) Close() error {
	return nil
}

func TestCommandBytes(t *testing.T) {
	require := require.New(t)

	raw, err := Command{INS: 0x02, P1: 0x01, P2: 0x80, Data: []byte{0xAA, 0xBB}}.Bytes()
	require.NoError(err)
	require.Equal([]byte{CLA, 0x02, 0x01, 0x80, 0x02, 0xAA, 0xBB}, raw)
}

func TestCommandBytesTooLarge(t *testing.T) {
	require := require.New(t)

	_, err := Command{Data: make([]byte, MaxFrameLen+1)}.Bytes()
	require.ErrorIs(err, ErrFrameTooLarge)
}

func TestExchangeStripsStatus(t *testing.T) {
	require := require.New(t)

	conn := &replayConn{replies: [][]byte{{0x01, 0x02, 0x90, 0x00}}}
	body, err := Exchange(conn, Command{INS: 0x01})
	require.NoError(err)
	require.Equal([]byte{0x01, 0x02}, body)
	require.Len(conn.sent, 1)
}

func TestExchangeRejectsBadStatus(t *testing.T) {
	require := require.New(t)

	conn := &replayConn{replies: [][]byte{{0x69, 0x85}}}
	_, err := Exchange(conn, Command{INS: 0x01})

	statusErr := &StatusError{}
	require.ErrorAs(err, &statusErr)
	require.Equal(uint16(0x6985), statusErr.Code)
}

func TestExchangeAcceptedStatusList(t *testing.T) {
	require := require.New(t)

	conn := &replayConn{replies: [][]byte{{0x62, 0x00}}}
	body, err := Exchange(conn, Command{INS: 0x00}, StatusOK, 0x6200)
	require.NoError(err)
	require.Empty(body)
}

func TestExchangeTransportErrorPassesThrough(t *testing.T) {
	require := require.New(t)

	errBroken := errors.New("usb gone")
	conn := &replayConn{err: errBroken}
	_, err := Exchange(conn, Command{INS: 0x01})
	require.ErrorIs(err, errBroken)
}

func TestExchangeShortReply(t *testing.T) {
	require := require.New(t)

	conn := &replayConn{replies: [][]byte{{0x90}}}
	_, err := Exchange(conn, Command{INS: 0x01})
	require.ErrorIs(err, ErrReplyTooShort)
}

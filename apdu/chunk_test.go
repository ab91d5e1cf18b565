// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package apdu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	require := require.New(t)

	frames := Chunk(nil, MaxFrameLen)
	require.Len(frames, 1)
	require.Empty(frames[0])
}

func TestChunkExactBoundary(t *testing.T) {
	require := require.New(t)

	data := make([]byte, 2*MaxFrameLen)
	frames := Chunk(data, MaxFrameLen)
	require.Len(frames, 2)
	require.Len(frames[0], MaxFrameLen)
	require.Len(frames[1], MaxFrameLen)
}

func TestChunkRoundTrip(t *testing.T) {
	require := require.New(t)

	data := make([]byte, 700)
	for i := range data {
		data[i] = byte(i)
	}

	frames := Chunk(data, MaxFrameLen)
	require.Len(frames, 3)
	require.Equal(data, bytes.Join(frames, nil))
}

func TestChunkWithPrefixSingleFrame(t *testing.T) {
	require := require.New(t)

	prefix := []byte{1, 2, 3}
	data := []byte{4, 5}
	frames := ChunkWithPrefix(prefix, data, MaxFrameLen)
	require.Len(frames, 1)
	require.Equal([]byte{1, 2, 3, 4, 5}, frames[0])
}

func TestChunkWithPrefixReducesFirstFrameCapacity(t *testing.T) {
	require := require.New(t)

	prefix := make([]byte, 21)
	data := make([]byte, MaxFrameLen)
	frames := ChunkWithPrefix(prefix, data, MaxFrameLen)
	require.Len(frames, 2)
	require.Len(frames[0], MaxFrameLen)
	require.Len(frames[1], len(prefix))

	joined := bytes.Join(frames, nil)
	require.Equal(prefix, joined[:len(prefix)])
	require.Equal(data, joined[len(prefix):])
}

func TestChunkWithPrefixOversizedPrefix(t *testing.T) {
	require := require.New(t)

	// a prefix beyond the frame size must not panic: it comes out as the
	// first frame unchanged, for the command layer to reject
	prefix := make([]byte, MaxFrameLen+45)
	data := []byte{1, 2, 3}
	frames := ChunkWithPrefix(prefix, data, MaxFrameLen)
	require.Len(frames, 2)
	require.Equal(prefix, frames[0])
	require.Equal(data, frames[1])
}

func TestChunkWithPrefixExactFill(t *testing.T) {
	require := require.New(t)

	prefix := make([]byte, MaxFrameLen)
	data := []byte{7}
	frames := ChunkWithPrefix(prefix, data, MaxFrameLen)
	require.Len(frames, 2)
	require.Equal(prefix, frames[0])
	require.Equal(data, frames[1])
}

func TestChunkWithPrefixEmptyData(t *testing.T) {
	require := require.New(t)

	prefix := []byte{9}
	frames := ChunkWithPrefix(prefix, nil, MaxFrameLen)
	require.Len(frames, 1)
	require.Equal(prefix, frames[0])
}

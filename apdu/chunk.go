// Copyright (C) 2025-2026, CCD Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package apdu

// Chunk cuts [data] into frames of at most [max] bytes, left to right. It
// always yields at least one frame: several stage scripts require an
// explicit terminator frame even for empty input. Concatenating the frames
// in order reproduces [data] exactly.
func Chunk(data []byte, max int) [][]byte {
	if max <= 0 {
		max = MaxFrameLen
	}
	if len(data) == 0 {
		return [][]byte{{}}
	}

	frames := make([][]byte, 0, (len(data)+max-1)/max)
	for len(data) > max {
		frames = append(frames, data[:max])
		data = data[max:]
	}
	return append(frames, data)
}

// ChunkWithPrefix is Chunk with [prefix] prepended to the first frame only.
// The prefix counts against the first frame's capacity, so the first frame
// carries fewer data bytes than subsequent ones.
func ChunkWithPrefix(prefix, data []byte, max int) [][]byte {
	if max <= 0 {
		max = MaxFrameLen
	}

	head := max - len(prefix)
	if head <= 0 {
		// the prefix alone fills (or overflows) the first frame; an oversized
		// prefix is rejected by Command.Bytes when the frame is sent
		frame := make([]byte, len(prefix))
		copy(frame, prefix)
		return append([][]byte{frame}, Chunk(data, max)...)
	}
	if head >= len(data) {
		frame := make([]byte, 0, len(prefix)+len(data))
		frame = append(frame, prefix...)
		frame = append(frame, data...)
		return [][]byte{frame}
	}

	first := make([]byte, 0, max)
	first = append(first, prefix...)
	first = append(first, data[:head]...)
	return append([][]byte{first}, Chunk(data[head:], max)...)
}

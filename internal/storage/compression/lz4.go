// Package compression implements the framed LZ4 codec used for archived
// records. Small or incompressible payloads are stored raw so decompression
// never fails on data that never shrank.
package compression

import (
	"encoding/binary"
	"errors"

	"github.com/pierrec/lz4"
)

// minCompressibleSize is the smallest payload worth compressing. Anything
// shorter is framed raw.
const minCompressibleSize = 70

// Frame type markers, first byte of every frame.
const (
	frameRaw  byte = 0
	frameLZ4  byte = 1
	headerLen      = 5 // marker + 4-byte big-endian uncompressed size
)

var (
	// ErrBadFrame is returned when a frame is truncated or carries an
	// unknown marker.
	ErrBadFrame = errors.New("malformed compression frame")

	// ErrDecompressionFailed is returned when an LZ4 frame does not
	// decompress to its declared size.
	ErrDecompressionFailed = errors.New("decompression failed")
)

// Compress frames data, applying LZ4 block compression when it saves space.
func Compress(data []byte) ([]byte, error) {
	if len(data) >= minCompressibleSize {
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, headerLen+bound)
		n, err := lz4.CompressBlock(data, buf[headerLen:], nil)
		if err != nil {
			return nil, err
		}
		if n > 0 && n < len(data) {
			buf[0] = frameLZ4
			binary.BigEndian.PutUint32(buf[1:headerLen], uint32(len(data)))
			return buf[:headerLen+n], nil
		}
	}

	buf := make([]byte, headerLen+len(data))
	buf[0] = frameRaw
	binary.BigEndian.PutUint32(buf[1:headerLen], uint32(len(data)))
	copy(buf[headerLen:], data)
	return buf, nil
}

// Decompress reverses Compress.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < headerLen {
		return nil, ErrBadFrame
	}
	size := binary.BigEndian.Uint32(frame[1:headerLen])
	body := frame[headerLen:]

	switch frame[0] {
	case frameRaw:
		if uint32(len(body)) != size {
			return nil, ErrBadFrame
		}
		out := make([]byte, size)
		copy(out, body)
		return out, nil
	case frameLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != size {
			return nil, ErrDecompressionFailed
		}
		return out, nil
	}
	return nil, ErrBadFrame
}

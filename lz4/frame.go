package lz4

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/xxHash/xxHash32"
)

const (
	frameMagic = 0x184D2204

	frameHeaderSize = 7
	blockRecordSize = 4

	// historySize is how much earlier output a back-reference may still
	// reach, and therefore how much history the sliding window retains
	// between blocks. It matches the maximum offset the token encoding
	// can represent, rounded to a power of two.
	historySize = 65536

	// rawBlockMax is the input limit for raw block mode.
	rawBlockMax = 65536

	minBlockSizeCode = 4
	maxBlockSizeCode = 7
)

// blockMaxSize returns the block payload limit for a block size code:
// 4..7 select 64 KiB, 256 KiB, 1 MiB and 4 MiB blocks.
func blockMaxSize(code int) int {
	return 1 << (8 + 2*code)
}

// headerChecksum computes the one-byte frame descriptor checksum:
// the second byte of the descriptor's xxHash32.
func headerChecksum(descriptor []byte) byte {
	h := xxHash32.New(0)
	h.Write(descriptor)
	return byte(h.Sum32() >> 8)
}

// appendFrameHeader appends the 7-byte frame header: magic, flags
// (version 1, block independence per mode, all optional content off),
// block descriptor, and descriptor checksum.
func appendFrameHeader(dst []byte, code int, independent bool) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, frameMagic)
	flg := byte(0x40)
	if independent {
		flg |= 0x20
	}
	dst = append(dst, flg, byte(code<<4))
	return append(dst, headerChecksum(dst[len(dst)-2:]))
}

// parseFrameHeader validates and decodes a 7-byte frame header.
func parseFrameHeader(b []byte) (code int, independent bool, err error) {
	if len(b) < frameHeaderSize {
		return 0, false, fmt.Errorf("%w: short frame header", ErrFormat)
	}
	if binary.LittleEndian.Uint32(b) != frameMagic {
		return 0, false, fmt.Errorf("%w: bad magic number", ErrFormat)
	}
	flg, bd := b[4], b[5]
	if flg&^byte(0x20) != 0x40 {
		// Version must be 1 and every optional content flag off; frames
		// with checksums, content size or a dictionary ID would need
		// header fields this implementation does not emit.
		return 0, false, fmt.Errorf("%w: unsupported frame flags %#02x", ErrFormat, flg)
	}
	if bd&0x0f != 0 {
		return 0, false, fmt.Errorf("%w: reserved block descriptor bits set", ErrFormat)
	}
	code = int(bd >> 4)
	if code < minBlockSizeCode || code > maxBlockSizeCode {
		return 0, false, fmt.Errorf("%w: block size code %d out of range", ErrFormat, code)
	}
	if headerChecksum(b[4:6]) != b[6] {
		return 0, false, ErrChecksum
	}
	return code, flg&0x20 != 0, nil
}

// appendBlockRecord appends the 4-byte little-endian block size record.
// Bit 31 marks a block stored uncompressed; a record of zero is the end
// of the frame, and doubles as the frame footer.
func appendBlockRecord(dst []byte, size int, stored bool) []byte {
	v := uint32(size) & 0x7fffffff
	if stored {
		v |= 1 << 31
	}
	return binary.LittleEndian.AppendUint32(dst, v)
}

// parseBlockRecord decodes a 4-byte block size record.
func parseBlockRecord(b []byte) (size int, stored bool) {
	v := binary.LittleEndian.Uint32(b)
	return int(v & 0x7fffffff), v&(1<<31) != 0
}

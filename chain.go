package lz4ultra

import (
	"encoding/binary"
	"math/bits"
	"runtime"
)

const (
	hashBits  = 16
	tableSize = 1 << hashBits

	hashMul32 = 0x1e35a7bd
)

func hash4(u uint32) uint32 {
	return (u * hashMul32) >> (32 - hashBits)
}

// HashChain is an implementation of the Searcher interface that uses
// hash chaining to enumerate prior occurrences of the bytes at a
// position, nearest-first. It indexes an explicit window of bytes
// (dictionary and previous-block history followed by the data being
// compressed), so back-references into the history come out of the same
// walk as references within the current block.
type HashChain struct {
	// SearchLen is how many entries to examine on the hash chain.
	// The default is 128.
	SearchLen int

	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535.
	MaxDistance int

	table  [tableSize]uint32
	chain  []uint32
	window []byte
}

func (q *HashChain) Reset() {
	q.table = [tableSize]uint32{}
	q.chain = q.chain[:0]
	q.window = nil
}

// Index rebuilds the head table and the chain links for window. It must
// be called before Search whenever the window contents change.
func (q *HashChain) Index(window []byte) {
	q.window = window
	if cap(q.chain) >= len(window) {
		q.chain = q.chain[:len(window)]
	} else {
		q.chain = make([]uint32, len(window))
	}
	for i := range q.table {
		q.table[i] = 0
	}

	// Positions are stored off by one so that 0 can mean "no entry".
	for i := 0; i+4 <= len(window); i++ {
		h := hash4(binary.LittleEndian.Uint32(window[i:]))
		q.chain[i] = q.table[h]
		q.table[h] = uint32(i + 1)
	}
	tail := len(window) - 3
	if tail < 0 {
		tail = 0
	}
	for i := tail; i < len(window); i++ {
		q.chain[i] = 0
	}
}

// Search appends matches at pos to dst, in increasing order of length.
// Each appended match is strictly longer than the one before it, so the
// longest match is last.
func (q *HashChain) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	window := q.window
	if max > len(window) {
		max = len(window)
	}
	if pos+4 > max || pos >= len(q.chain) {
		return dst
	}
	maxDistance := q.MaxDistance
	if maxDistance == 0 {
		maxDistance = 65535
	}
	searchLen := q.SearchLen
	if searchLen == 0 {
		searchLen = 128
	}

	searchSeq := binary.LittleEndian.Uint32(window[pos:])
	length := 3

	c := q.chain[pos]
	for i := 0; i < searchLen && c != 0; i++ {
		candidate := int(c) - 1
		c = q.chain[candidate]
		if pos-candidate > maxDistance {
			break
		}
		if pos+length >= max {
			// No candidate can beat a match that already reaches max.
			break
		}
		// Cheap rejection: a longer match must agree on the bytes
		// around the current best length.
		if window[candidate+length] != window[pos+length] {
			continue
		}
		if binary.LittleEndian.Uint32(window[candidate:]) != searchSeq {
			continue
		}

		end := extendMatch(window[:max], candidate+4, pos+4)
		if end-pos > length {
			dst = append(dst, AbsoluteMatch{
				Start: pos,
				End:   end,
				Match: candidate,
			})
			length = end - pos
		}
	}

	return dst
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		// As long as we are 8 or more bytes before the end of src, we can load and
		// compare 8 bytes at a time. If those 8 bytes are equal, repeat.
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				// If those 8 bytes were not equal, XOR the two 8 byte values, and return
				// the index of the first byte that differs. The BSF instruction finds the
				// least significant 1 bit, the amd64 architecture is little-endian, and
				// the shift by 3 converts a bit index to a byte index.
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386":
		// On a 32-bit CPU, we do it 4 bytes at a time.
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}

package lz4

import (
	"encoding/binary"

	"github.com/packrat/lz4ultra"
)

// A BlockEncoder writes a parsed sequence of matches in the LZ4 block
// format. The final entry of matches must be a literal-only entry
// (Length 0) covering the block's trailing bytes; the parser guarantees
// that a block never ends in a match.
type BlockEncoder struct{}

func (BlockEncoder) Encode(dst []byte, src []byte, matches []lz4ultra.Match) []byte {
	pos := 0
	for _, m := range matches {
		if m.Length == 0 {
			// The final, literals-only token carries no offset or
			// match length fields.
			token := byte(0)
			if m.Unmatched >= literalRunLen {
				token = literalRunLen << 4
			} else {
				token = byte(m.Unmatched << 4)
			}
			dst = append(dst, token)
			if m.Unmatched >= literalRunLen {
				dst = appendInt(dst, m.Unmatched-literalRunLen)
			}
			dst = append(dst, src[pos:pos+m.Unmatched]...)
			pos += m.Unmatched
			continue
		}

		encodedLen := m.Length - minMatch
		token := byte(0)
		if m.Unmatched >= literalRunLen {
			token |= literalRunLen << 4
		} else {
			token |= byte(m.Unmatched << 4)
		}
		if encodedLen >= matchRunLen {
			token |= matchRunLen
		} else {
			token |= byte(encodedLen)
		}
		dst = append(dst, token)

		if m.Unmatched >= literalRunLen {
			dst = appendInt(dst, m.Unmatched-literalRunLen)
		}
		dst = append(dst, src[pos:pos+m.Unmatched]...)

		dst = binary.LittleEndian.AppendUint16(dst, uint16(m.Distance))
		if encodedLen >= matchRunLen {
			dst = appendInt(dst, encodedLen-matchRunLen)
		}

		pos += m.Unmatched + m.Length
	}
	return dst
}

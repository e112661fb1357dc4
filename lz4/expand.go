package lz4

import "fmt"

// expandBlock decompresses one compressed block. out[:outPos] holds the
// window history the block may reference (dictionary bytes and previous
// blocks); the block expands into out[outPos:]. It returns the number
// of bytes written at outPos.
//
// It never writes past len(out), never reads before out[0], and never
// reads past len(src); any of those conditions means the block is
// corrupt. A block with zero tokens is valid and yields zero bytes.
func expandBlock(src []byte, out []byte, outPos int) (int, error) {
	startPos := outPos
	inPos := 0

	for inPos < len(src) {
		token := src[inPos]
		inPos++

		nLiterals := int(token >> 4)
		if nLiterals == literalRunLen {
			for {
				if inPos >= len(src) {
					return 0, fmt.Errorf("%w: truncated literal run length", ErrBlockCorrupt)
				}
				b := src[inPos]
				inPos++
				nLiterals += int(b)
				if b != 255 {
					break
				}
			}
		}
		if nLiterals > 0 {
			if inPos+nLiterals > len(src) {
				return 0, fmt.Errorf("%w: literal run overruns input", ErrBlockCorrupt)
			}
			if outPos+nLiterals > len(out) {
				return 0, fmt.Errorf("%w: literal run overruns output", ErrBlockCorrupt)
			}
			copy(out[outPos:], src[inPos:inPos+nLiterals])
			inPos += nLiterals
			outPos += nLiterals
		}

		// The last token in a block carries no offset or match length;
		// it is detected by there being less than an offset's worth of
		// input left.
		if inPos+2 > len(src) {
			continue
		}

		offset := int(src[inPos]) | int(src[inPos+1])<<8
		inPos += 2
		if offset == 0 || offset > outPos {
			return 0, fmt.Errorf("%w: match offset %d outside window", ErrBlockCorrupt, offset)
		}

		nMatch := int(token & 0x0f)
		if nMatch == matchRunLen {
			for {
				if inPos >= len(src) {
					return 0, fmt.Errorf("%w: truncated match run length", ErrBlockCorrupt)
				}
				b := src[inPos]
				inPos++
				nMatch += int(b)
				if b != 255 {
					break
				}
			}
		}
		nMatch += minMatch

		if outPos+nMatch > len(out) {
			return 0, fmt.Errorf("%w: match overruns output", ErrBlockCorrupt)
		}
		d := outPos
		s := outPos - offset
		if offset >= nMatch {
			copy(out[d:d+nMatch], out[s:s+nMatch])
		} else {
			// Self-referential copy: widen the copied region as it
			// grows, so the repetition period is preserved.
			end := d + nMatch
			for d < end {
				d += copy(out[d:end], out[s:d])
			}
		}
		outPos += nMatch
	}

	return outPos - startPos, nil
}

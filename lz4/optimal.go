package lz4

import "github.com/packrat/lz4ultra"

// Matches at least this long are taken whole instead of having every
// shorter prefix costed; scanning all prefixes of very long matches
// costs quadratic time for no measurable gain.
const leaveAloneMatchSize = 1000

// An OptimalParser chooses the decomposition of a block into literal
// runs and matches that minimizes the encoded size, using a backward
// dynamic program over the exact token cost model: costs change at the
// nibble sentinel and at every 255-multiple extension boundary, and
// equal-cost candidates resolve to the longer match.
//
// The format's terminal rule is enforced here as a hard constraint:
// positions closer than lastMatchOffset to the end of the block get no
// match at all, and match lengths are clamped so that the last
// lastLiterals bytes of a block are always emitted as plain literal.
type OptimalParser struct {
	matchCache []lz4ultra.AbsoluteMatch
	cost       []int32
	mlen       []int32
	moff       []int32
}

// Parse chooses matches from src for the bytes in [start,end) of the
// window and appends them to dst, ending with a literal-only entry for
// the block's trailing bytes.
func (p *OptimalParser) Parse(dst []lz4ultra.Match, src lz4ultra.Searcher, start, end int) []lz4ultra.Match {
	if start >= end {
		return dst
	}
	p.grow(end)
	cost, mlen, moff := p.cost, p.mlen, p.moff

	// Discover the longest match available at every position. Any
	// shorter length at the same offset is also available, so one
	// maximal match per position is enough for the cost search.
	for i := start; i < end; i++ {
		mlen[i], moff[i] = 0, 0
		if i > end-lastMatchOffset {
			continue
		}
		p.matchCache = src.Search(p.matchCache[:0], i, start, end)
		if len(p.matchCache) == 0 {
			continue
		}
		m := p.matchCache[len(p.matchCache)-1]
		l := m.End - m.Start
		if max := end - lastLiterals - i; l > max {
			l = max
		}
		mlen[i] = int32(l)
		moff[i] = int32(m.Start - m.Match)
	}

	// Cheapest way to reach the end of the block from every position.
	cost[end-1] = 1
	lastLiteralsOffset := end
	for i := end - 2; i >= start; i-- {
		bestCost := 1 + cost[i+1]
		if litLen := lastLiteralsOffset - i; litLen >= literalRunLen && (litLen-literalRunLen)%255 == 0 {
			// The literal run down to the next match crosses a
			// variable-length encoding boundary here; the extra byte
			// accumulates down the chain.
			bestCost++
		}
		bestLen, bestOff := int32(0), int32(0)

		if l := int(mlen[i]); l >= minMatch {
			off := moff[i]
			if l >= leaveAloneMatchSize {
				cur := int32(1+2+matchVarlenSize(l-minMatch)) + cost[i+l]
				if bestCost >= cur {
					bestCost = cur
					bestLen, bestOff = int32(l), off
				}
			} else {
				runLen := l
				if runLen > matchRunLen {
					runLen = matchRunLen
				}
				k := minMatch
				for ; k < runLen; k++ {
					cur := int32(1+2) + cost[i+k]
					if bestCost >= cur {
						bestCost = cur
						bestLen, bestOff = int32(k), off
					}
				}
				for ; k <= l; k++ {
					cur := int32(1+2+matchVarlenSize(k-minMatch)) + cost[i+k]
					if bestCost >= cur {
						bestCost = cur
						bestLen, bestOff = int32(k), off
					}
				}
			}
		}

		if bestLen >= minMatch {
			lastLiteralsOffset = i
		}
		cost[i] = bestCost
		mlen[i], moff[i] = bestLen, bestOff
	}

	p.reduceTokenCount(start, end)

	// Emit the chosen path as a match list: pending
	// literals attach to the following match, and the block ends with
	// a literal-only entry.
	numLiterals := 0
	for i := start; i < end; {
		if l := int(mlen[i]); l >= minMatch {
			dst = append(dst, lz4ultra.Match{
				Unmatched: numLiterals,
				Length:    l,
				Distance:  int(moff[i]),
			})
			numLiterals = 0
			i += l
		} else {
			numLiterals++
			i++
		}
	}
	return append(dst, lz4ultra.Match{Unmatched: numLiterals})
}

// reduceTokenCount demotes short matches to literals when doing so
// cannot grow the output, to cut the number of tokens the decoder has
// to process.
func (p *OptimalParser) reduceTokenCount(start, end int) {
	mlen := p.mlen
	numLiterals := 0

	for i := start; i < end; {
		l := int(mlen[i])
		if l < minMatch {
			numLiterals++
			i++
			continue
		}

		reduce := false
		if l <= 19 && i+l < end {
			encodedLen := l - minMatch
			commandSize := 1 + literalVarlenSize(numLiterals) + 2 + matchVarlenSize(encodedLen)

			if int(mlen[i+l]) >= minMatch {
				// This match is followed immediately by another match.
				// The next command eats the cost of carrying the
				// current literals plus l extra ones; if the match
				// command costs at least that much, drop it.
				if commandSize >= l+literalVarlenSize(numLiterals+l) {
					reduce = true
				}
			} else {
				// This match is followed by literals and then another
				// match or the end of the block.
				cur, next := i+l, 0
				for {
					cur++
					next++
					if cur >= end || int(mlen[cur]) >= minMatch {
						break
					}
				}
				if commandSize >= l+literalVarlenSize(numLiterals+next+l)-literalVarlenSize(next) {
					reduce = true
				}
			}
		}

		if reduce {
			for j := 0; j < l; j++ {
				mlen[i+j] = 0
			}
			numLiterals += l
		} else {
			numLiterals = 0
		}
		i += l
	}
}

func (p *OptimalParser) grow(n int) {
	if cap(p.cost) < n {
		p.cost = make([]int32, n)
		p.mlen = make([]int32, n)
		p.moff = make([]int32, n)
	}
	p.cost = p.cost[:n]
	p.mlen = p.mlen[:n]
	p.moff = p.moff[:n]
}

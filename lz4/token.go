package lz4

// LZ4 block format constants.
const (
	minMatch  = 4 // minimum length of a back-reference
	minOffset = 1
	maxOffset = 65535 // maximum back-reference distance

	literalRunLen = 15 // literal-length nibble value that starts an extension run
	matchRunLen   = 15 // match-length nibble value that starts an extension run

	// The block format requires the last lastLiterals bytes of a block
	// to be literals, and the last match to start at least
	// lastMatchOffset bytes before the end of the block.
	lastLiterals    = 5
	lastMatchOffset = 12
)

// literalVarlenSize returns the number of extension bytes needed to
// encode a literal run of n bytes.
func literalVarlenSize(n int) int {
	return (n - literalRunLen + 255) / 255
}

// matchVarlenSize returns the number of extension bytes needed to
// encode a match of encoded length n (the true length minus minMatch).
func matchVarlenSize(n int) int {
	return (n - matchRunLen + 255) / 255
}

// appendInt appends n to dst in LZ4's variable-length integer format:
// 0xff for each full 255, then a final byte below 255 (possibly 0x00).
// The caller has already subtracted the nibble sentinel from n.
func appendInt(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 255)
		n -= 255
	}
	return append(dst, byte(n))
}

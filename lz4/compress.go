package lz4

import (
	"fmt"
	"io"

	"github.com/packrat/lz4ultra"
)

// DefaultBlockSizeCode selects 4 MiB blocks.
const DefaultBlockSizeCode = 7

// Stats accumulates totals over one compression or decompression run.
type Stats struct {
	OriginalSize   int64
	CompressedSize int64
	TokenCount     int
}

// Compressor holds the configuration and reusable state for producing
// LZ4 frames (or raw blocks) from arbitrary input. The zero value
// compresses with the default block size in dependent-block mode;
// a Compressor may be reused across calls but not concurrently.
type Compressor struct {
	// BlockSizeCode selects the block size (4..7 for 64 KiB through
	// 4 MiB). Zero means DefaultBlockSizeCode.
	BlockSizeCode int

	// IndependentBlocks disables back-references across block
	// boundaries, so each block can be decompressed on its own.
	IndependentBlocks bool

	// Raw emits a single headerless block with a two-byte end marker
	// instead of a frame. Input larger than 64 KiB is rejected, as is
	// input the block encoding cannot shrink.
	Raw bool

	// Dictionary is prepended to the match window before the first
	// block (and, in independent mode, before every block). Only the
	// last 64 KiB are used.
	Dictionary []byte

	finder  lz4ultra.HashChain
	parser  OptimalParser
	encoder BlockEncoder

	matches  []lz4ultra.Match
	blockBuf []byte
	record   []byte
	stats    Stats
}

// Stats returns the totals from the most recent Compress call.
func (c *Compressor) Stats() Stats { return c.stats }

// Compress reads all of src, compresses it block by block and writes
// the framed (or raw) result to dst.
func (c *Compressor) Compress(src io.Reader, dst io.Writer) error {
	code := c.BlockSizeCode
	if code == 0 {
		code = DefaultBlockSizeCode
	}
	if code < minBlockSizeCode || code > maxBlockSizeCode {
		return fmt.Errorf("%w: block size code %d out of range", ErrCompression, code)
	}

	c.stats = Stats{}
	c.finder.Reset()

	dict := c.Dictionary
	if len(dict) > historySize {
		dict = dict[len(dict)-historySize:]
	}

	// The first block is read before the header is written so that a
	// short input can use a smaller block size code than requested.
	first := make([]byte, blockMaxSize(code))
	n, err := readBlock(src, first)
	if err != nil {
		return err
	}
	for code > minBlockSizeCode && blockMaxSize(code-1) > n {
		code--
	}
	blockMax := blockMaxSize(code)

	if !c.Raw {
		hdr := appendFrameHeader(c.record[:0], code, c.IndependentBlocks)
		c.record = hdr
		if _, err := dst.Write(hdr); err != nil {
			return err
		}
		c.stats.CompressedSize += frameHeaderSize
	}

	// The arena keeps up to 64 KiB of history in front of the block
	// being compressed, so back-references into the previous block
	// (or the dictionary) use ordinary window offsets.
	arena := make([]byte, historySize+blockMax)
	prev := 0
	numBlocks := 0

	for {
		if c.IndependentBlocks || numBlocks == 0 {
			prev = len(dict)
			copy(arena[historySize-prev:historySize], dict)
		}

		if numBlocks > 0 {
			n, err = readBlock(src, arena[historySize:historySize+blockMax])
			if err != nil {
				return err
			}
		} else {
			copy(arena[historySize:], first[:n])
			first = nil
		}
		if n == 0 {
			break
		}

		if c.Raw {
			if numBlocks > 0 || n > rawBlockMax {
				return ErrRawTooLarge
			}
		}

		window := arena[historySize-prev : historySize+n]
		encoded := c.shrinkBlock(window, prev, n)

		var payload []byte
		stored := encoded == nil
		if stored {
			if c.Raw {
				return ErrRawIncompressible
			}
			payload = window[prev:]
		} else {
			payload = encoded
		}

		if !c.Raw {
			c.record = appendBlockRecord(c.record[:0], len(payload), stored)
			if _, err := dst.Write(c.record); err != nil {
				return err
			}
			c.stats.CompressedSize += blockRecordSize
		}
		if _, err := dst.Write(payload); err != nil {
			return err
		}
		c.stats.OriginalSize += int64(n)
		c.stats.CompressedSize += int64(len(payload))
		numBlocks++

		if c.IndependentBlocks {
			prev = 0
			continue
		}
		prev = n
		if prev > historySize {
			prev = historySize
		}
		copy(arena[historySize-prev:historySize], arena[historySize+n-prev:historySize+n])
	}

	footer := []byte{0, 0, 0, 0}
	if c.Raw {
		footer = footer[:2]
	}
	if _, err := dst.Write(footer); err != nil {
		return err
	}
	c.stats.CompressedSize += int64(len(footer))
	return nil
}

// shrinkBlock compresses window[start:start+n] against the history in
// window[:start]. It returns nil when the encoded form would not be
// smaller than the input, in which case the caller stores the block
// uncompressed.
func (c *Compressor) shrinkBlock(window []byte, start, n int) []byte {
	c.finder.Index(window)
	c.matches = c.parser.Parse(c.matches[:0], &c.finder, start, start+n)
	c.blockBuf = c.encoder.Encode(c.blockBuf[:0], window[start:start+n], c.matches)
	if len(c.blockBuf) >= n {
		return nil
	}
	c.stats.TokenCount += len(c.matches)
	return c.blockBuf
}

// readBlock fills buf as far as the reader allows, treating a clean
// end of input as a short (possibly empty) block.
func readBlock(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

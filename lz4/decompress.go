package lz4

import (
	"fmt"
	"io"
)

// Decompressor holds the configuration and reusable state for
// expanding LZ4 frames (or raw blocks). The zero value decompresses
// frames; a Decompressor may be reused across calls but not
// concurrently.
type Decompressor struct {
	// Raw treats the input as a single headerless block with a
	// two-byte end marker instead of a frame.
	Raw bool

	// Dictionary must match the one used at compression time. Only
	// the last 64 KiB are used.
	Dictionary []byte

	stats Stats
}

// Stats returns the totals from the most recent Decompress call.
func (d *Decompressor) Stats() Stats { return d.stats }

// Decompress reads a compressed stream from src and writes the
// original data to dst.
func (d *Decompressor) Decompress(src io.Reader, dst io.Writer) error {
	d.stats = Stats{}

	dict := d.Dictionary
	if len(dict) > historySize {
		dict = dict[len(dict)-historySize:]
	}

	if d.Raw {
		return d.decompressRaw(src, dst, dict)
	}

	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: short frame header", ErrFormat)
		}
		return err
	}
	code, independent, err := parseFrameHeader(hdr[:])
	if err != nil {
		return err
	}
	blockMax := blockMaxSize(code)
	d.stats.CompressedSize += frameHeaderSize

	arena := make([]byte, historySize+blockMax)
	inBlock := make([]byte, blockMax)
	var record [blockRecordSize]byte
	prev := 0
	numBlocks := 0

	for {
		if independent || numBlocks == 0 {
			prev = len(dict)
			copy(arena[historySize-prev:historySize], dict)
		}

		if _, err := io.ReadFull(src, record[:]); err != nil {
			if err == io.EOF {
				// A frame truncated at a block boundary is accepted;
				// the footer record is all that is missing.
				return nil
			}
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("%w: truncated block record", ErrFormat)
			}
			return err
		}
		d.stats.CompressedSize += blockRecordSize

		size, stored := parseBlockRecord(record[:])
		if size == 0 {
			return nil
		}
		if size > blockMax {
			return fmt.Errorf("%w: block size %d exceeds frame block size %d", ErrFormat, size, blockMax)
		}
		if _, err := io.ReadFull(src, inBlock[:size]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return fmt.Errorf("%w: truncated block", ErrFormat)
			}
			return err
		}
		d.stats.CompressedSize += int64(size)

		var n int
		if stored {
			n = copy(arena[historySize:], inBlock[:size])
		} else {
			n, err = expandBlock(inBlock[:size], arena[historySize-prev:historySize+blockMax], prev)
			if err != nil {
				return err
			}
		}

		if _, err := dst.Write(arena[historySize : historySize+n]); err != nil {
			return err
		}
		d.stats.OriginalSize += int64(n)
		numBlocks++

		if independent {
			prev = 0
			continue
		}
		prev = n
		if prev > historySize {
			prev = historySize
		}
		copy(arena[historySize-prev:historySize], arena[historySize+n-prev:historySize+n])
	}
}

// decompressRaw expands a headerless single-block stream. The last two
// bytes of the input are the end-of-data marker, not block payload.
func (d *Decompressor) decompressRaw(src io.Reader, dst io.Writer, dict []byte) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return fmt.Errorf("%w: raw block shorter than its end marker", ErrFormat)
	}
	payload := data[:len(data)-2]
	d.stats.CompressedSize = int64(len(data))

	prev := len(dict)
	arena := make([]byte, historySize+rawBlockMax)
	copy(arena[historySize-prev:historySize], dict)

	n, err := expandBlock(payload, arena[historySize-prev:], prev)
	if err != nil {
		return err
	}
	if _, err := dst.Write(arena[historySize : historySize+n]); err != nil {
		return err
	}
	d.stats.OriginalSize = int64(n)
	return nil
}

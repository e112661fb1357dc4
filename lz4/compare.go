package lz4

import (
	"bytes"
	"fmt"
	"io"
)

// A MismatchError reports the first byte offset at which decompressed
// output disagrees with the reference data during Verify.
type MismatchError struct {
	Offset int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("lz4: decompressed data differs from original at offset %d", e.Offset)
}

// compareWriter checks each written chunk against a reference stream
// instead of storing it.
type compareWriter struct {
	ref    io.Reader
	buf    []byte
	offset int64
}

func (w *compareWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		n := len(p)
		if n > len(w.buf) {
			n = len(w.buf)
		}
		if _, err := io.ReadFull(w.ref, w.buf[:n]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				// Decompressed output runs past the end of the
				// reference; the mismatch is at the current offset.
				return 0, &MismatchError{Offset: w.offset}
			}
			return 0, err
		}
		if !bytes.Equal(p[:n], w.buf[:n]) {
			off := w.offset
			for i := 0; i < n; i++ {
				if p[i] != w.buf[i] {
					off += int64(i)
					break
				}
			}
			return 0, &MismatchError{Offset: off}
		}
		w.offset += int64(n)
		p = p[n:]
	}
	return total, nil
}

// Verify decompresses compressed and checks the output byte for byte
// against original, without buffering either stream in full. It
// returns a *MismatchError if they differ, including when the original
// has bytes left over after the compressed stream ends.
func Verify(compressed, original io.Reader, raw bool, dict []byte) error {
	w := &compareWriter{ref: original, buf: make([]byte, 64*1024)}
	d := Decompressor{Raw: raw, Dictionary: dict}
	if err := d.Decompress(compressed, w); err != nil {
		return err
	}
	var extra [1]byte
	if n, _ := original.Read(extra[:]); n > 0 {
		return &MismatchError{Offset: w.offset}
	}
	return nil
}

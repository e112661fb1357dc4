package lz4

import "bytes"

// CompressBytes is a convenience wrapper around Compress for in-memory
// data.
func (c *Compressor) CompressBytes(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Compress(bytes.NewReader(src), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytes is a convenience wrapper around Decompress for
// in-memory data.
func (d *Decompressor) DecompressBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Decompress(bytes.NewReader(data), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

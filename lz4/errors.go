package lz4

import "errors"

// Package errors. Details are wrapped around these sentinels with
// fmt.Errorf, so callers can test with errors.Is.
var (
	ErrFormat            = errors.New("lz4: invalid stream format")
	ErrChecksum          = errors.New("lz4: header checksum mismatch")
	ErrBlockCorrupt      = errors.New("lz4: corrupt block")
	ErrCompression       = errors.New("lz4: internal compression error")
	ErrRawTooLarge       = errors.New("lz4: raw block mode only supports a single block of at most 64 KiB")
	ErrRawIncompressible = errors.New("lz4: raw block mode does not support uncompressed data")
	ErrDictionary        = errors.New("lz4: cannot read dictionary")
)

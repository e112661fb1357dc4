// The lz4ultra package provides the LZ77 plumbing for a maximal-ratio
// LZ4 stream compressor.
//
// Many compression libraries have two main parts:
//   - Something that looks for repeated sequences of bytes
//   - An encoder for the compressed data format
//
// This package holds the first part: an intermediate representation for
// matches, and an indexed searcher that can enumerate every usable prior
// occurrence of the bytes at a position. The format-specific parts (the
// token cost model, the optimal parser, and the block and frame codecs)
// live in the lz4 subpackage.
package lz4ultra

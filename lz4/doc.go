// The lz4 package implements a compressor and decompressor for the LZ4
// block and frame formats, trading compression speed for the smallest
// output a standard LZ4 decoder can read.
//
// The compressor performs optimal parsing: for each block it enumerates
// back-reference candidates at every position, then runs a backward
// dynamic program over the exact token cost model (including the
// run-length escape boundaries) to pick the cheapest decomposition into
// literal runs and matches. The decompressor is a bounds-checked inverse
// of the block format, intended for verifying the compressor's output;
// production decoding should use an optimized LZ4 decoder.
package lz4

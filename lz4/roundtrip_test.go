package lz4

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"

	pierrec "github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// testData produces deterministic, compressible word salad.
func testData(n int) []byte {
	words := []string{
		"the ", "quick ", "brown ", "fox ", "jumps ", "over ",
		"a ", "lazy ", "dog ", "pack ", "my ", "box ", "with ",
	}
	rng := rand.New(rand.NewSource(42))
	var buf bytes.Buffer
	for buf.Len() < n {
		buf.WriteString(words[rng.Intn(len(words))])
	}
	return buf.Bytes()[:n]
}

// noiseData produces deterministic incompressible bytes.
func noiseData(n int) []byte {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}
	return data
}

func TestFrameRoundTrip(t *testing.T) {
	for _, independent := range []bool{false, true} {
		for _, size := range []int{0, 1, 100, 65536, 70000, 300000} {
			t.Run(fmt.Sprintf("size=%d,independent=%v", size, independent), func(t *testing.T) {
				data := testData(size)
				c := Compressor{BlockSizeCode: 4, IndependentBlocks: independent}
				compressed, err := c.CompressBytes(data)
				require.NoError(t, err)

				var d Decompressor
				got, err := d.DecompressBytes(compressed)
				require.NoError(t, err)
				require.Equal(t, data, got)
			})
		}
	}
}

func TestBlockSizeShrinksToFit(t *testing.T) {
	data := testData(300000)
	var c Compressor // default 4 MiB blocks
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	// 300000 bytes need more than a 256 KiB block but fit in 1 MiB.
	code, _, err := parseFrameHeader(compressed)
	require.NoError(t, err)
	require.Equal(t, 6, code)

	var d Decompressor
	got, err := d.DecompressBytes(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDependentBlocksUseHistory(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 70000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	size1, stored1 := parseBlockRecord(compressed[7:11])
	require.False(t, stored1)
	next := 11 + size1
	size2, stored2 := parseBlockRecord(compressed[next : next+4])
	require.False(t, stored2)

	// The 4464-byte second block is a single back-reference into the
	// first block's history plus the trailing literals.
	require.Less(t, size2, 32)
	require.Equal(t, []byte{0, 0, 0, 0}, compressed[next+4+size2:])

	var d Decompressor
	got, err := d.DecompressBytes(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestIndependentBlocksStandalone(t *testing.T) {
	data := testData(70000)
	c := Compressor{BlockSizeCode: 4, IndependentBlocks: true}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)
	require.Equal(t, byte(0x60), compressed[4])

	size1, stored1 := parseBlockRecord(compressed[7:11])
	require.False(t, stored1)
	off := 11 + size1
	size2, stored2 := parseBlockRecord(compressed[off : off+4])
	require.False(t, stored2)

	// The second block must decode with no history at all.
	out := make([]byte, blockMaxSize(4))
	n, err := expandBlock(compressed[off+4:off+4+size2], out, 0)
	require.NoError(t, err)
	require.Equal(t, data[65536:], out[:n])
}

func TestIncompressibleBlockStored(t *testing.T) {
	data := noiseData(100000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	size1, stored1 := parseBlockRecord(compressed[7:11])
	require.True(t, stored1)
	require.Equal(t, 65536, size1)

	var d Decompressor
	got, err := d.DecompressBytes(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPierrecReadsOurFrames(t *testing.T) {
	data := testData(150000)
	c := Compressor{BlockSizeCode: 4, IndependentBlocks: true}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	got, err := io.ReadAll(pierrec.NewReader(bytes.NewReader(compressed)))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDecompressPierrecFrames(t *testing.T) {
	data := testData(150000)
	var buf bytes.Buffer
	zw := pierrec.NewWriter(&buf)
	require.NoError(t, zw.Apply(
		pierrec.ChecksumOption(false),
		pierrec.BlockSizeOption(pierrec.Block64Kb),
	))
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var d Decompressor
	got, err := d.DecompressBytes(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestRawRoundTrip(t *testing.T) {
	data := testData(60000)
	c := Compressor{Raw: true}
	raw, err := c.CompressBytes(data)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0}, raw[len(raw)-2:])

	d := Decompressor{Raw: true}
	got, err := d.DecompressBytes(raw)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// The payload before the end marker is a plain LZ4 block.
	ref := make([]byte, len(data))
	n, err := pierrec.UncompressBlock(raw[:len(raw)-2], ref)
	require.NoError(t, err)
	require.Equal(t, data, ref[:n])
}

func TestRawEmptyInput(t *testing.T) {
	c := Compressor{Raw: true}
	raw, err := c.CompressBytes(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0}, raw)

	d := Decompressor{Raw: true}
	got, err := d.DecompressBytes(raw)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRawTooLarge(t *testing.T) {
	c := Compressor{Raw: true}
	_, err := c.CompressBytes(testData(65537))
	require.ErrorIs(t, err, ErrRawTooLarge)
}

func TestRawIncompressible(t *testing.T) {
	c := Compressor{Raw: true}
	_, err := c.CompressBytes(noiseData(1000))
	require.ErrorIs(t, err, ErrRawIncompressible)
}

func TestDictionary(t *testing.T) {
	data := testData(8000)

	plainC := Compressor{BlockSizeCode: 4}
	plain, err := plainC.CompressBytes(data)
	require.NoError(t, err)

	dictC := Compressor{BlockSizeCode: 4, Dictionary: data}
	withDict, err := dictC.CompressBytes(data)
	require.NoError(t, err)
	require.Less(t, len(withDict), len(plain))

	d := Decompressor{Dictionary: data}
	got, err := d.DecompressBytes(withDict)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// Without the dictionary the back-references land outside the
	// window.
	var bare Decompressor
	_, err = bare.DecompressBytes(withDict)
	require.ErrorIs(t, err, ErrBlockCorrupt)
}

func TestDictionaryRaw(t *testing.T) {
	data := testData(8000)
	c := Compressor{Raw: true, Dictionary: data}
	raw, err := c.CompressBytes(data)
	require.NoError(t, err)

	d := Decompressor{Raw: true, Dictionary: data}
	got, err := d.DecompressBytes(raw)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDictionaryMultiBlock(t *testing.T) {
	data := testData(70000)
	dict := testData(3000)
	for _, independent := range []bool{false, true} {
		c := Compressor{BlockSizeCode: 4, IndependentBlocks: independent, Dictionary: dict}
		compressed, err := c.CompressBytes(data)
		require.NoError(t, err)

		d := Decompressor{Dictionary: dict}
		got, err := d.DecompressBytes(compressed)
		require.NoError(t, err)
		require.Equal(t, data, got, "independent=%v", independent)
	}
}

func TestMissingFooterTolerated(t *testing.T) {
	data := testData(10000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	var d Decompressor
	got, err := d.DecompressBytes(compressed[:len(compressed)-blockRecordSize])
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestTruncatedStream(t *testing.T) {
	data := testData(10000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	var d Decompressor
	_, err = d.DecompressBytes(compressed[:5])
	require.ErrorIs(t, err, ErrFormat)

	_, err = d.DecompressBytes(compressed[:9])
	require.ErrorIs(t, err, ErrFormat)

	_, err = d.DecompressBytes(compressed[:len(compressed)-blockRecordSize-2])
	require.ErrorIs(t, err, ErrFormat)
}

func TestStats(t *testing.T) {
	data := testData(10000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	cs := c.Stats()
	require.Equal(t, int64(len(data)), cs.OriginalSize)
	require.Equal(t, int64(len(compressed)), cs.CompressedSize)
	require.Greater(t, cs.TokenCount, 0)

	var d Decompressor
	_, err = d.DecompressBytes(compressed)
	require.NoError(t, err)
	ds := d.Stats()
	require.Equal(t, int64(len(data)), ds.OriginalSize)
	require.Equal(t, int64(len(compressed)), ds.CompressedSize)
}

func TestVerify(t *testing.T) {
	data := testData(10000)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	require.NoError(t, err)

	err = Verify(bytes.NewReader(compressed), bytes.NewReader(data), false, nil)
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[1234] ^= 1
	err = Verify(bytes.NewReader(compressed), bytes.NewReader(flipped), false, nil)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, int64(1234), mismatch.Offset)

	longer := append(append([]byte(nil), data...), 'x')
	err = Verify(bytes.NewReader(compressed), bytes.NewReader(longer), false, nil)
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, int64(len(data)), mismatch.Offset)
}

func TestCompressorReuse(t *testing.T) {
	c := Compressor{BlockSizeCode: 4}
	var d Decompressor
	for _, size := range []int{100, 70000, 50} {
		data := testData(size)
		compressed, err := c.CompressBytes(data)
		require.NoError(t, err)
		got, err := d.DecompressBytes(compressed)
		require.NoError(t, err)
		require.Equal(t, data, got, "size %d", size)
	}
}

func BenchmarkCompress(b *testing.B) {
	data := testData(1 << 16)
	c := Compressor{BlockSizeCode: 4}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Compress(bytes.NewReader(data), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := testData(1 << 16)
	c := Compressor{BlockSizeCode: 4}
	compressed, err := c.CompressBytes(data)
	if err != nil {
		b.Fatal(err)
	}
	var d Decompressor
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Decompress(bytes.NewReader(compressed), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}

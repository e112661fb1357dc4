// Command lz4ultra compresses and decompresses files in the LZ4
// format, trading compression time for the smallest output the format
// can express.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/packrat/lz4ultra/lz4"
)

const exitError = 100

var (
	compress    = flag.Bool("z", false, "compress (the default)")
	decompress  = flag.Bool("d", false, "decompress instead of compress")
	verify      = flag.Bool("c", false, "compress, then decompress and compare against the input")
	verbose     = flag.Bool("v", false, "print statistics")
	raw         = flag.Bool("r", false, "raw block mode: single headerless block, 64 KiB maximum")
	blockCode   = flag.Int("b", lz4.DefaultBlockSizeCode, "block size code (4..7 for 64 KiB to 4 MiB)")
	independent = flag.Bool("i", false, "make blocks independently decompressible")
	dictPath    = flag.String("D", "", "dictionary `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] infile outfile\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 || (*compress && *decompress) {
		flag.Usage()
		os.Exit(exitError)
	}
	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(exitError)
	}
}

func run(inName, outName string) error {
	var dict []byte
	if *dictPath != "" {
		var err error
		dict, err = lz4.LoadDictionary(*dictPath)
		if err != nil {
			return err
		}
	}

	in, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outName)
	if err != nil {
		return err
	}

	start := time.Now()
	var stats lz4.Stats
	if *decompress {
		d := lz4.Decompressor{Raw: *raw, Dictionary: dict}
		err = d.Decompress(in, out)
		stats = d.Stats()
	} else {
		c := lz4.Compressor{
			BlockSizeCode:     *blockCode,
			IndependentBlocks: *independent,
			Raw:               *raw,
			Dictionary:        dict,
		}
		err = c.Compress(in, out)
		stats = c.Stats()
	}
	elapsed := time.Since(start)

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outName)
		return err
	}

	if !*decompress && *verify {
		if err := verifyOutput(inName, outName, dict); err != nil {
			return err
		}
		if *verbose {
			fmt.Println("Verification successful")
		}
	}

	if *verbose {
		mbps := float64(stats.OriginalSize) / 1048576.0 / elapsed.Seconds()
		if *decompress {
			fmt.Printf("Decompressed '%s' in %g seconds, %.2f Mb/s, %d into %d bytes\n",
				inName, elapsed.Seconds(), mbps, stats.CompressedSize, stats.OriginalSize)
		} else {
			ratio := 0.0
			if stats.OriginalSize > 0 {
				ratio = 100.0 * float64(stats.CompressedSize) / float64(stats.OriginalSize)
			}
			fmt.Printf("Compressed '%s' in %g seconds, %.2f Mb/s, %d into %d bytes (%.2f%%), %d tokens\n",
				inName, elapsed.Seconds(), mbps, stats.OriginalSize, stats.CompressedSize,
				ratio, stats.TokenCount)
		}
	}
	return nil
}

func verifyOutput(inName, outName string, dict []byte) error {
	compressed, err := os.Open(outName)
	if err != nil {
		return err
	}
	defer compressed.Close()

	original, err := os.Open(inName)
	if err != nil {
		return err
	}
	defer original.Close()

	err = lz4.Verify(compressed, original, *raw, dict)
	var mismatch *lz4.MismatchError
	if errors.As(err, &mismatch) {
		return fmt.Errorf("verification failed: %w", mismatch)
	}
	return err
}

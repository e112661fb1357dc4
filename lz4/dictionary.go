package lz4

import (
	"fmt"
	"os"
)

// LoadDictionary reads a dictionary file for use as compression or
// decompression history. Only the last 64 KiB matter, since no match
// offset can reach further back, so longer files are trimmed.
func LoadDictionary(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
	}
	if len(data) > historySize {
		data = data[len(data)-historySize:]
	}
	return data, nil
}

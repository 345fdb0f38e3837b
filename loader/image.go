// Package loader provides object-image loading for LC-3 programs.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// memoryWords is the size of the LC-3 address space in words.
const memoryWords = 1 << 16

// ErrBadImageSize reports an image whose payload does not fit between its
// origin and the top of memory.
var ErrBadImageSize = errors.New("image exceeds memory")

// Image represents a parsed object file ready for placement into the
// machine's memory.
type Image struct {
	// Origin is the address the first payload word is placed at.
	Origin uint16

	// Words is the program payload in placement order.
	Words []uint16
}

// Load parses the origin-prefixed big-endian object file at path.
//
// The first 16-bit word is the load origin; the remaining words are the
// payload. An odd trailing byte forms a final word with a zero low byte.
// A file too short to carry an origin is rejected, as is a payload that
// would run past the top of memory.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("failed to read image %s: no origin word", path)
	}

	origin := binary.BigEndian.Uint16(data[0:2])
	payload := data[2:]

	wordCount := (len(payload) + 1) / 2
	if wordCount > memoryWords-int(origin) {
		return nil, fmt.Errorf("%w: origin 0x%04X, %d words", ErrBadImageSize, origin, wordCount)
	}

	words := make([]uint16, 0, wordCount)
	for i := 0; i+1 < len(payload); i += 2 {
		words = append(words, binary.BigEndian.Uint16(payload[i:i+2]))
	}
	if len(payload)%2 == 1 {
		// Odd trailing byte becomes the high byte of the final word.
		words = append(words, uint16(payload[len(payload)-1])<<8)
	}

	return &Image{Origin: origin, Words: words}, nil
}

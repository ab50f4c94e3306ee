package fill

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
)

// DefaultChunkSize is the size of a single overwrite write call in bytes
const DefaultChunkSize = 1024

// Type selects the byte pattern used for an overwrite pass
type Type int

const (
	Zero   Type = iota // All-zero bytes
	Random             // Pseudo-random bytes
)

// ParseType maps the CLI fill argument to a Type.
// "0" selects Zero; any other value selects Random.
func ParseType(s string) Type {
	if s == "0" {
		return Zero
	}
	return Random
}

func (t Type) String() string {
	switch t {
	case Zero:
		return "zero"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Filler writes fixed-size chunks of fill bytes sequentially into a writer
type Filler struct {
	fillType  Type
	chunkSize int
	rng       *rand.Rand
	buf       []byte
}

// New creates a Filler. A non-positive chunkSize falls back to DefaultChunkSize.
// A nil rng is replaced with a randomly seeded PCG source.
func New(fillType Type, chunkSize int, rng *rand.Rand) *Filler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Filler{
		fillType:  fillType,
		chunkSize: chunkSize,
		rng:       rng,
		buf:       make([]byte, chunkSize),
	}
}

// ChunkSize returns the configured chunk size
func (f *Filler) ChunkSize() int {
	return f.chunkSize
}

// Type returns the fill pattern
func (f *Filler) Type() Type {
	return f.fillType
}

// Fill writes exactly length bytes of fill data to w, in chunks of at most
// ChunkSize bytes. The last chunk covers only the remaining tail.
// It returns the number of write calls made.
func (f *Filler) Fill(w io.Writer, length int64) (int, error) {
	writes := 0
	remaining := length
	for remaining > 0 {
		n := int64(f.chunkSize)
		if remaining < n {
			n = remaining
		}
		chunk := f.buf[:n]
		f.prepare(chunk)

		written, err := w.Write(chunk)
		writes++
		if err != nil {
			return writes, err
		}
		if written != len(chunk) {
			return writes, io.ErrShortWrite
		}
		remaining -= n
	}
	return writes, nil
}

// prepare fills chunk with the pattern for the next write
func (f *Filler) prepare(chunk []byte) {
	switch f.fillType {
	case Random:
		randomBytes(f.rng, chunk)
	default:
		clear(chunk)
	}
}

func randomBytes(rng *rand.Rand, p []byte) {
	var word [8]byte
	for len(p) >= 8 {
		binary.LittleEndian.PutUint64(p, rng.Uint64())
		p = p[8:]
	}
	if len(p) > 0 {
		binary.LittleEndian.PutUint64(word[:], rng.Uint64())
		copy(p, word[:])
	}
}

package sqlite

import (
	"encoding/binary"
	"math"
)

// encodeVector packs a float32 embedding into a little-endian 4*D byte
// blob for storage in a BLOB column.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a vector blob. Per §8 invariant 2, a blob whose
// length isn't a multiple of 4 is corrupt and is skipped rather than
// causing a panic or a hard error: the caller gets (nil, false) and
// moves on to the next row.
func decodeVector(blob []byte) ([]float32, bool) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, true
}

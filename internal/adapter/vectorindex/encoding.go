package vectorindex

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVectors packs vectors row-major as little-endian IEEE 754 float32.
func EncodeVectors(vectors [][]float32, dim int) []byte {
	b := make([]byte, len(vectors)*dim*4)
	off := 0
	for _, v := range vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(b[off:], math.Float32bits(x))
			off += 4
		}
	}
	return b
}

// DecodeVectors reverses EncodeVectors. The blob must hold exactly count
// vectors of dimension dim.
func DecodeVectors(b []byte, count, dim int) ([][]float32, error) {
	if want := count * dim * 4; len(b) != want {
		return nil, fmt.Errorf("vectorindex: blob has %d bytes, want %d for %d x %d", len(b), want, count, dim)
	}
	out := make([][]float32, count)
	off := 0
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
			off += 4
		}
		out[i] = v
	}
	return out, nil
}

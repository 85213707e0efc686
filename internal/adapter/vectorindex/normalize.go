package vectorindex

import "math"

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// L2Normalize scales v to unit length in place and returns it. A zero vector
// is left as is.
func L2Normalize(v []float32) []float32 {
	norm := math.Sqrt(Dot(v, v))
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

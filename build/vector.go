package build

import "math"

// NormalizeVector returns v scaled to unit length so dot products equal
// cosine similarity. A zero vector yields a zero vector of the same length.
// The input is not modified.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}

	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// NormalizeVectors normalizes each vector in vs.
func NormalizeVectors(vs [][]float32) [][]float32 {
	out := make([][]float32, len(vs))
	for i, v := range vs {
		out[i] = NormalizeVector(v)
	}
	return out
}

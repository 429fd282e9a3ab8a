package sketch

import "math/bits"

// ApplyDelta adds delta elementwise to s.Proj and refreshes s.Bits from the
// sign rule bit[i] = proj[i] >= 0 (spec §4.4). delta must have length
// len(s.Proj).
func ApplyDelta(s Sketch, delta []int64) Sketch {
	for i, d := range delta {
		s.Proj[i] += d
		s.Bits.Set(i, s.Proj[i] >= 0)
	}
	return s
}

// Similarity estimates 1 - angle/pi between the real projections behind a
// and b, via popcount(~(a XOR b)) / L (spec §4.4 / glossary).
//
// Complexity: O(L/64).
func Similarity(a, b Bits) float64 {
	l := a.l
	if l == 0 {
		return 1
	}

	matches := 0
	fullWords := l / 64
	for i := 0; i < fullWords; i++ {
		matches += bits.OnesCount64(^(a.words[i] ^ b.words[i]))
	}
	if rem := l % 64; rem > 0 {
		mask := uint64(1)<<uint(rem) - 1
		xnor := ^(a.words[fullWords] ^ b.words[fullWords]) & mask
		matches += bits.OnesCount64(xnor)
	}

	return float64(matches) / float64(l)
}

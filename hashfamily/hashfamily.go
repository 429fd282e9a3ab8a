package hashfamily

import (
	"fmt"
	"math/rand/v2"

	"streamspot/streamerr"
)

// New builds a Family of L rows, each with chunkLen+2 random 64-bit words,
// derived deterministically from seed. Per spec §7, chunkLen < 4 is a
// ParameterOutOfRange error.
//
// Complexity: O(L * chunkLen).
func New(l, chunkLen int, seed uint64) (*Family, error) {
	if chunkLen < 4 {
		return nil, fmt.Errorf("hashfamily: chunk length %d: %w", chunkLen, streamerr.ErrParameterOutOfRange)
	}
	if l <= 0 {
		return nil, fmt.Errorf("hashfamily: L must be positive, got %d: %w", l, streamerr.ErrParameterOutOfRange)
	}

	// rand/v2's PCG source takes two 64-bit seed halves; derive both from
	// the single configured seed so the whole family is reproducible from
	// one startup parameter.
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	rows := make([]Row, l)
	for i := range rows {
		row := make(Row, chunkLen+2)
		for j := range row {
			row[j] = rng.Uint64()
		}
		rows[i] = row
	}

	return &Family{rows: rows, chunkLen: chunkLen}, nil
}

// HashMulti maps chunk to {-1, +1} under the given row index, per spec §4.1:
//
//	sum = row[0] + sum_i row[i+1] * (chunk[i] & 0xff)
//	result = 2*((sum >> 63) & 1) - 1
//
// chunk must have length <= ChunkLen(); bytes beyond len(chunk) are never
// read (only the first len(chunk)+1 row entries are used).
func (f *Family) HashMulti(chunk []byte, row int) int {
	r := f.rows[row]
	sum := r[0]
	for i, b := range chunk {
		sum += r[i+1] * uint64(b)
	}
	// sign bit of the 64-bit sum, mapped to {-1, +1}.
	return int(2*((sum>>63)&1)) - 1
}

// HashAll fills dst (len == L) with HashMulti(chunk, i) for every row i.
func (f *Family) HashAll(chunk []byte, dst []int) {
	for i := range f.rows {
		dst[i] = f.HashMulti(chunk, i)
	}
}

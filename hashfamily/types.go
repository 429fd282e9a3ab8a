package hashfamily

// Row is one strongly-universal hash function: C+2 random 64-bit words.
// Row[0] is the affine term; Row[1:] are multiplied against chunk bytes.
type Row []uint64

// Family holds L independent rows, each sized for chunks up to
// ChunkLen bytes.
type Family struct {
	rows     []Row
	chunkLen int
}

// L reports the number of rows (sketch width).
func (f *Family) L() int {
	return len(f.rows)
}

// ChunkLen reports the configured chunk length C.
func (f *Family) ChunkLen() int {
	return f.chunkLen
}

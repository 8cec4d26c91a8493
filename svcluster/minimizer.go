package svcluster

import farm "github.com/dgryski/go-farm"

// minimizerSeed is the fixed seed used to hash every k-mer, matching the
// way fusion's kmer index seeds farm.Hash64WithSeed for its breakpoint
// k-mer table: a fixed seed makes the hash reproducible across runs and
// across the two reads of a pair, which minimizer matching depends on.
const minimizerSeed = 42

// Minimizers returns the set of minimizer hashes of seq: for every window
// of m consecutive k-mers, the hash of the k-mer with the smallest hash in
// that window. The first and last k-mer of seq are always included
// (forced boundary k-mers) even if neither ever wins a window, so a very
// short clip still contributes at least one anchor (two when its first
// and last k-mer differ). Ambiguous bases are
// not treated specially; callers pass clip sequence that has already been
// screened for excessive runs of N if that matters to them.
func Minimizers(seq []byte, k, m int) map[uint64]struct{} {
	out := make(map[uint64]struct{})
	if len(seq) < k {
		return out
	}
	nKmers := len(seq) - k + 1
	hashes := make([]uint64, nKmers)
	for i := 0; i < nKmers; i++ {
		hashes[i] = farm.Hash64WithSeed(seq[i:i+k], minimizerSeed)
	}

	out[hashes[0]] = struct{}{}
	out[hashes[nKmers-1]] = struct{}{}

	if m < 1 {
		m = 1
	}
	// Monotonic deque holding indices of hashes in increasing order, the
	// standard sliding-window-minimum construction.
	var deque []int
	for i := 0; i < nKmers; i++ {
		for len(deque) > 0 && hashes[deque[len(deque)-1]] >= hashes[i] {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		for len(deque) > 0 && deque[0] <= i-m {
			deque = deque[1:]
		}
		if i >= m-1 {
			out[hashes[deque[0]]] = struct{}{}
		}
	}
	return out
}

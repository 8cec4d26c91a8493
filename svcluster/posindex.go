package svcluster

import "sort"

// PosEntry is one (position, value) pair held by a PosIndex.
type PosEntry[T any] struct {
	Pos   int
	Value T
}

// PosIndex is a position-ordered index backed by a sorted slice. The
// scopers need a true successor/predecessor walk bounded to a handful of
// steps on either side of a query position, something llrb.Tree's public
// surface (Insert/Floor/Get/DeleteMin) doesn't expose; a sorted slice with
// binary-searched bounds gives that walk directly as index arithmetic, at
// the cost of an O(n) insert. Scoper windows are kept bounded by eviction
// (PairedEndScoper.loci behind Opts.ClstDist, SiteAdder behind
// Opts.ClusterDist) and by PairedEndScoper clearing every index on a
// chromosome change.
type PosIndex[T any] struct {
	entries []PosEntry[T]
}

// NewPosIndex returns an empty index.
func NewPosIndex[T any]() *PosIndex[T] {
	return &PosIndex[T]{}
}

// Len returns the number of entries currently held.
func (p *PosIndex[T]) Len() int { return len(p.entries) }

// At returns the entry at i. Callers must keep i within [0, Len()).
func (p *PosIndex[T]) At(i int) PosEntry[T] { return p.entries[i] }

// LowerBound returns the index of the first entry with Pos >= pos, or
// Len() if none qualifies.
func (p *PosIndex[T]) LowerBound(pos int) int {
	return sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].Pos >= pos
	})
}

// Insert adds (pos, v) at its sorted position.
func (p *PosIndex[T]) Insert(pos int, v T) {
	i := p.LowerBound(pos)
	p.entries = append(p.entries, PosEntry[T]{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = PosEntry[T]{Pos: pos, Value: v}
}

// EvictBefore drops every entry with Pos < pos.
func (p *PosIndex[T]) EvictBefore(pos int) {
	cut := p.LowerBound(pos)
	if cut == 0 {
		return
	}
	remaining := len(p.entries) - cut
	copy(p.entries, p.entries[cut:])
	p.entries = p.entries[:remaining]
}

// Walk visits entries within steps of the entry at index center (inclusive
// on both sides, clipped to the slice bounds), calling f with each visited
// entry's index. It stops early if f returns false. This is the bounded
// bidirectional walk the scopers use to examine the handful of candidates
// nearest a query position.
func (p *PosIndex[T]) Walk(center, steps int, f func(i int, e PosEntry[T]) bool) {
	lo := center - steps
	if lo < 0 {
		lo = 0
	}
	hi := center + steps
	if hi > len(p.entries)-1 {
		hi = len(p.entries) - 1
	}
	for i := lo; i <= hi; i++ {
		if !f(i, p.entries[i]) {
			return
		}
	}
}

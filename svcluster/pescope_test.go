package svcluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func discordantBP(chrom1, pos1, chrom2, pos2 int) Breakpoint {
	return Breakpoint{Kind: Discordant, Chrom1: chrom1, Pos1: pos1, Chrom2: chrom2, Pos2: pos2}
}

func deletionBP(chrom, pos1, pos2, lenCigar int, hasLen bool) Breakpoint {
	return Breakpoint{Kind: Deletion, Chrom1: chrom, Pos1: pos1, Chrom2: chrom, Pos2: pos2, LenCigar: lenCigar, HasLen: hasLen}
}

func TestPairedEndScoperLinksNearbyMatchingSignals(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)
	g := NewGraph()

	n1, n2 := g.AddNode(), g.AddNode()
	s.AddItem(g, n1, discordantBP(0, 1000, 1, 5000))
	s.AddItem(g, n2, discordantBP(0, 1010, 1, 5020))

	assert.True(t, g.HasEdge(n1, n2, 2))
}

func TestPairedEndScoperRejectsDifferentRemoteChrom(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)
	g := NewGraph()

	n1, n2 := g.AddNode(), g.AddNode()
	s.AddItem(g, n1, discordantBP(0, 1000, 1, 5000))
	s.AddItem(g, n2, discordantBP(0, 1010, 2, 5020))

	assert.False(t, g.HasEdge(n1, n2, 2))
}

func TestPairedEndScoperBeyondMaxDistIsRejected(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)
	g := NewGraph()

	n1, n2 := g.AddNode(), g.AddNode()
	s.AddItem(g, n1, discordantBP(0, 1000, 1, 5000))
	s.AddItem(g, n2, discordantBP(0, 1000+opts.MaxDist+1, 1, 5000))

	assert.False(t, g.HasEdge(n1, n2, 2))
}

// TESTABLE PROPERTY: a chromosome change wipes loci and every chromScope
// index, regardless of whether an old signal's partner chromosome happens
// to equal the new scan's own.
func TestPairedEndScoperChromosomeChangeClearsScope(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)
	g := NewGraph()

	n1 := g.AddNode()
	s.AddItem(g, n1, discordantBP(0, 1000, 1, 5000))
	assert.Equal(t, 1, s.chromScope[1].Len())
	assert.Equal(t, 1, s.loci.Len())

	// Chrom1 moves from 0 to 1: every scope, including chromScope[1]
	// (the same map key n1 filed under), must be wiped before n2's own
	// signal is filed.
	n2 := g.AddNode()
	s.AddItem(g, n2, discordantBP(1, 1000, 1, 5000))

	assert.Equal(t, 1, s.localChrom)
	assert.Equal(t, 1, s.chromScope[1].Len())
	assert.Equal(t, n2, s.chromScope[1].At(0).Value.node)
	assert.Equal(t, 1, s.loci.Len())
	assert.False(t, g.HasEdge(n1, n2, 2))
}

func TestPairedEndScoperLociEvictsBehindClstDist(t *testing.T) {
	opts := DefaultOpts()
	opts.ClstDist = 50
	s := NewPairedEndScoper(&opts)
	g := NewGraph()

	n1 := g.AddNode()
	s.AddItem(g, n1, discordantBP(0, 1000, 1, 5000))
	assert.Equal(t, 1, s.loci.Len())

	// Pos1 has moved far enough past n1's that n1's loci entry falls
	// outside ClstDist and is evicted during this call's own lookup.
	n2 := g.AddNode()
	s.AddItem(g, n2, discordantBP(0, 1000+opts.ClstDist+1, 2, 9000))
	assert.Equal(t, 1, s.loci.Len())
	assert.Equal(t, n2, s.loci.At(0).Value.node)
}

func TestConsiderRejectsDeletionInsertionPairing(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)

	bp := Breakpoint{Kind: Insertion, Chrom1: 0, Pos1: 1000, Chrom2: insertionChrom, Pos2: 1000, LenCigar: 40, HasLen: true}
	rec := peRecord{node: 99, kind: Deletion, chrom1: 0, pos1: 990, chrom2: insertionChrom, pos2: 1005, lenCigar: 38, hasLen: true}

	var exact, dist []int
	s.consider(bp, rec, &exact, &dist)
	assert.Empty(t, exact)
	assert.Empty(t, dist)
}

func TestConsiderSameChromRejectsNonReciprocalOverlap(t *testing.T) {
	opts := DefaultOpts()
	s := NewPairedEndScoper(&opts)

	bp := deletionBP(0, 1010, 1020, 0, false)
	rec := peRecord{node: 1, kind: Deletion, chrom1: 0, pos1: 1000, chrom2: 0, pos2: 1400, hasLen: false}

	var exact, dist []int
	s.consider(bp, rec, &exact, &dist)
	assert.Empty(t, exact)
	assert.Empty(t, dist)
}

func TestConsiderSameChromDistanceBucketRequiresBothPositionsInRange(t *testing.T) {
	opts := DefaultOpts()
	opts.MaxDist = 50
	s := NewPairedEndScoper(&opts)

	bp := deletionBP(0, 990, 1040, 0, false)
	rec := peRecord{node: 1, kind: Deletion, chrom1: 0, pos1: 1000, chrom2: 0, pos2: 1060, hasLen: false}

	// clause 1 (|v.p1-p2| = |1000-1040| = 40) is within MaxDist, but
	// clause 2 (|v.p2-p1| = |1060-990| = 70) is not: a scheme that only
	// checked one side would wrongly accept this pair.
	var exact, dist []int
	s.consider(bp, rec, &exact, &dist)
	assert.Empty(t, exact)
	assert.Empty(t, dist)
}

func TestConsiderSameChromDistanceBucketAcceptsWhenBothPositionsInRange(t *testing.T) {
	opts := DefaultOpts()
	opts.MaxDist = 50
	s := NewPairedEndScoper(&opts)

	bp := deletionBP(0, 1012, 1045, 0, false)
	rec := peRecord{node: 1, kind: Deletion, chrom1: 0, pos1: 1000, chrom2: 0, pos2: 1060, hasLen: false}

	var exact, dist []int
	s.consider(bp, rec, &exact, &dist)
	assert.Empty(t, exact)
	assert.Contains(t, dist, 1)
}

func TestExactBucketAcceptsWithinLengthToleranceWhenPositionClose(t *testing.T) {
	rec := peRecord{pos1: 1000, lenCigar: 40, hasLen: true}
	assert.True(t, exactBucket(1030 /* p2 */, 32, true, rec))
}

func TestExactBucketRejectsWhenPositionFar(t *testing.T) {
	rec := peRecord{pos1: 1000, lenCigar: 40, hasLen: true}
	assert.False(t, exactBucket(1100 /* p2 */, 40, true, rec))
}

func TestExactBucketRejectsWhenLengthsDivergeTooFar(t *testing.T) {
	rec := peRecord{pos1: 1000, lenCigar: 100, hasLen: true}
	assert.False(t, exactBucket(1020 /* p2 */, 5, true, rec))
}

func TestExactBucketAcceptsUnconditionallyWhenLengthsAbsent(t *testing.T) {
	rec := peRecord{pos1: 1000, hasLen: false}
	assert.True(t, exactBucket(1020 /* p2 */, 0, false, rec))

	recWithLen := peRecord{pos1: 1000, lenCigar: 9999, hasLen: true}
	assert.True(t, exactBucket(1020 /* p2 */, 0, false, recWithLen))
}

func TestReciprocalOverlapRequiresBothIntervalsToCoverHalf(t *testing.T) {
	assert.True(t, reciprocalOverlap(1010, 1045, 1000, 1060))
	assert.False(t, reciprocalOverlap(1010, 1020, 1000, 1400))
}

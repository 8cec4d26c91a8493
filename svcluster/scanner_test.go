package svcluster

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
)

func alignedRecord(ref *sam.Reference, pos int, flags sam.Flags, mapq byte) *sam.Record {
	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}
	r := testRecord("q", ref, pos, flags, nil, -1, cigar, strings50())
	r.MapQ = mapq
	return r
}

func strings50() string {
	b := make([]byte, 50)
	for i := range b {
		b[i] = 'A'
	}
	return string(b)
}

func TestGenomeScannerRejectsUnmappedFlag(t *testing.T) {
	opts := DefaultOpts()
	s := NewGenomeScanner(&opts)
	_, refs := newTestHeader("chr1")
	r := alignedRecord(refs[0], 100, sam.Unmapped, 40)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
}

func TestGenomeScannerRejectsLowMapQ(t *testing.T) {
	opts := DefaultOpts()
	opts.MapQThresh = 10
	s := NewGenomeScanner(&opts)
	_, refs := newTestHeader("chr1")
	r := alignedRecord(refs[0], 100, 0, 5)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
}

func TestGenomeScannerSuppressesOverCoverage(t *testing.T) {
	opts := DefaultOpts()
	opts.MaxCov = 2
	s := NewGenomeScanner(&opts)
	_, refs := newTestHeader("chr1")

	// Each read fully covers the 10bp bin at pos 100, contributing exactly
	// 1.0 of depth per call, so the bin reaches MaxCov=2 after the second
	// read -- the strict >= boundary suppresses that read and every one
	// after it, since depth at that bin never goes back down.
	admittedCount := 0
	for i := 0; i < 5; i++ {
		r := alignedRecord(refs[0], 100, 0, 40)
		admitted, err := s.Admit(SAMAlignment{R: r})
		assert.NoError(t, err)
		if admitted {
			admittedCount++
		}
	}
	assert.Equal(t, 1, admittedCount)
	assert.Equal(t, 4, s.ReadsDropped())
}

func TestGenomeScannerOverCoverageBoundaryIsStrict(t *testing.T) {
	opts := DefaultOpts()
	opts.MaxCov = 1
	s := NewGenomeScanner(&opts)
	_, refs := newTestHeader("chr1")

	// The first read brings the bin's depth to exactly 1.0, equal to
	// MaxCov: it must itself be suppressed, not just the one after it.
	r := alignedRecord(refs[0], 100, 0, 40)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 1, s.ReadsDropped())
}

func TestGenomeScannerZeroMaxCovDisablesSuppression(t *testing.T) {
	opts := DefaultOpts()
	opts.MaxCov = 0
	s := NewGenomeScanner(&opts)
	_, refs := newTestHeader("chr1")

	for i := 0; i < 100; i++ {
		r := alignedRecord(refs[0], 100, 0, 40)
		admitted, err := s.Admit(SAMAlignment{R: r})
		assert.NoError(t, err)
		assert.True(t, admitted)
	}
}

func TestRegionScannerRejectsOutOfScope(t *testing.T) {
	opts := DefaultOpts()
	opts.BufferSize = 10
	_, refs := newTestHeader("chr1")
	regions := NewRegionSet()
	regions.Add(0, 1000, 2000)
	regions.Merge()
	s := NewRegionScanner(&opts, regions, testResolve([]string{"chr1"}))

	r := alignedRecord(refs[0], 5000, 0, 40)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
}

func TestRegionScannerAdmitsInsideRegion(t *testing.T) {
	opts := DefaultOpts()
	opts.BufferSize = 10
	_, refs := newTestHeader("chr1")
	regions := NewRegionSet()
	regions.Add(0, 1000, 2000)
	regions.Merge()
	s := NewRegionScanner(&opts, regions, testResolve([]string{"chr1"}))

	r := alignedRecord(refs[0], 1500, 0, 40)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.True(t, admitted)
}

func TestRegionScannerDedupesIdenticalRecord(t *testing.T) {
	opts := DefaultOpts()
	opts.BufferSize = 10
	_, refs := newTestHeader("chr1")
	regions := NewRegionSet()
	regions.Add(0, 1000, 2000)
	regions.Merge()
	s := NewRegionScanner(&opts, regions, testResolve([]string{"chr1"}))

	r := alignedRecord(refs[0], 1500, 0, 40)
	admitted, err := s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.True(t, admitted)
	admitted, err = s.Admit(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
}

func TestRegionScannerPullsInMateWindow(t *testing.T) {
	opts := DefaultOpts()
	opts.BufferSize = 10
	_, refs := newTestHeader("chr1", "chr2")
	regions := NewRegionSet()
	regions.Add(0, 1000, 2000)
	regions.Merge()
	s := NewRegionScanner(&opts, regions, testResolve([]string{"chr1", "chr2"}))

	inRegion := alignedRecord(refs[0], 1500, sam.Paired, 40)
	inRegion.MateRef = refs[1]
	inRegion.MatePos = 9000
	admitted, err := s.Admit(SAMAlignment{R: inRegion})
	assert.NoError(t, err)
	assert.True(t, admitted)

	mate := alignedRecord(refs[1], 9000, sam.Paired, 40)
	mate.MateRef = refs[0]
	mate.MatePos = 1500
	admitted, err = s.Admit(SAMAlignment{R: mate})
	assert.NoError(t, err)
	assert.True(t, admitted)
}

func TestRegionScannerBufferOverflowRejectsFurtherRecords(t *testing.T) {
	opts := DefaultOpts()
	opts.BufferSize = 1
	_, refs := newTestHeader("chr1")
	regions := NewRegionSet()
	regions.Add(0, 1000, 5000)
	regions.Merge()
	s := NewRegionScanner(&opts, regions, testResolve([]string{"chr1"}))

	r1 := alignedRecord(refs[0], 1500, 0, 40)
	r2 := alignedRecord(refs[0], 1600, 0, 40)
	admitted, err := s.Admit(SAMAlignment{R: r1})
	assert.NoError(t, err)
	assert.True(t, admitted)

	admitted, err = s.Admit(SAMAlignment{R: r2})
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.False(t, admitted)
}

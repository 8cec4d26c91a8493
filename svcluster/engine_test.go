package svcluster

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
)

func TestEngineLinksDiscordantPairIntoOnePartition(t *testing.T) {
	opts := DefaultOpts()
	opts.MapQThresh = 0
	_, refs := newTestHeader("chr1", "chr2")

	scanner := NewGenomeScanner(&opts)
	resolve := testResolve([]string{"chr1", "chr2"})
	e := NewEngine(&opts, scanner, resolve)

	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}
	seq := make([]byte, 50)
	for i := range seq {
		seq[i] = 'A'
	}

	mk := func(name string, ref *sam.Reference, pos int, mateRef *sam.Reference, matePos int) *sam.Record {
		r := testRecord(name, ref, pos, sam.Paired, mateRef, matePos, cigar, string(seq))
		r.MapQ = 40
		return r
	}

	r1 := mk("q1", refs[0], 1000, refs[1], 9000)
	r2 := mk("q2", refs[0], 1010, refs[1], 9010)

	admitted, err := e.Add(SAMAlignment{R: r1})
	assert.NoError(t, err)
	assert.True(t, admitted)
	admitted, err = e.Add(SAMAlignment{R: r2})
	assert.NoError(t, err)
	assert.True(t, admitted)

	result := e.Finalize(300, 150, 100, false)
	assert.Len(t, result.Parts, 1)
	assert.Len(t, result.Parts[0], 2)
	assert.Equal(t, 2, result.Info.RecordsClassified)
	assert.Equal(t, 2, result.Info.RecordsAdmitted)
}

func TestEngineRejectsRecordScannerWouldDrop(t *testing.T) {
	opts := DefaultOpts()
	opts.MapQThresh = 50
	_, refs := newTestHeader("chr1")
	scanner := NewGenomeScanner(&opts)
	e := NewEngine(&opts, scanner, noopResolve)

	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}
	r := testRecord("q1", refs[0], 1000, 0, nil, -1, cigar, string(make([]byte, 50)))
	r.MapQ = 10

	admitted, err := e.Add(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 1, e.scanned)
	assert.Equal(t, 0, e.admitted)
}

func TestEngineUnexplainedReadProducesNoNode(t *testing.T) {
	opts := DefaultOpts()
	opts.MapQThresh = 0
	_, refs := newTestHeader("chr1")
	scanner := NewGenomeScanner(&opts)
	e := NewEngine(&opts, scanner, noopResolve)

	// A simple fully-matched, unpaired read with no clip and no indel
	// carries no SV signal at all.
	cigar := sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}
	seq := make([]byte, 50)
	for i := range seq {
		seq[i] = 'A'
	}
	r := testRecord("q1", refs[0], 1000, 0, nil, -1, cigar, string(seq))
	r.MapQ = 40

	admitted, err := e.Add(SAMAlignment{R: r})
	assert.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 1, e.admitted)
	assert.Equal(t, 0, e.classified)
}

func TestEngineFinalizeOnEmptyGraphReturnsNoParts(t *testing.T) {
	opts := DefaultOpts()
	scanner := NewGenomeScanner(&opts)
	e := NewEngine(&opts, scanner, noopResolve)
	result := e.Finalize(300, 150, 100, false)
	assert.Empty(t, result.Parts)
}

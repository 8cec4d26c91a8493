package svcluster

import (
	"fmt"

	"github.com/grailbio/base/log"
)

// GenomeScanner is the first stage of the pipeline: it decides which
// incoming alignments are even worth classifying. In whole-genome mode
// that means filtering by flag and mapping quality and suppressing runs
// of excessive depth; in region-restricted mode it additionally means
// pulling in a region hit's mate and SA-tag partners even though they
// fall outside any region, and deduplicating records reached by more
// than one path.
type GenomeScanner struct {
	opts *Opts

	// cov tracks whole-genome-mode depth for the over-coverage rule.
	// admitByCoverage is the only reader of it; it is separate from any
	// CoverageTracker the caller keeps for its own downstream queries.
	cov          *CoverageTracker
	readsDropped int

	regions    *RegionSet
	pulled     *RegionSet // extra windows pulled in around mates/SA partners
	resolveRef func(string) int

	seen   map[dedupKey]struct{}
	buffer int
}

type dedupKey struct {
	qnameHash uint64
	flag      uint16
	pos       int
}

// NewGenomeScanner returns a scanner in whole-genome mode.
func NewGenomeScanner(opts *Opts) *GenomeScanner {
	return &GenomeScanner{
		opts: opts,
		cov:  NewCoverageTracker(),
	}
}

// ReadsDropped reports how many records the over-coverage rule has
// suppressed so far.
func (s *GenomeScanner) ReadsDropped() int { return s.readsDropped }

// NewRegionScanner returns a scanner restricted to regions, plus a
// ±regionMateWindow window around the mate or SA-tag partner of any read
// that falls inside one. resolveRef maps an SA-tag chromosome name to the
// caller's reference numbering.
func NewRegionScanner(opts *Opts, regions *RegionSet, resolveRef func(string) int) *GenomeScanner {
	s := NewGenomeScanner(opts)
	s.regions = regions
	s.pulled = NewRegionSet()
	s.resolveRef = resolveRef
	s.seen = make(map[dedupKey]struct{})
	return s
}

// Admit reports whether a should be passed on to classification. It is the
// single gate both scanning modes run every alignment through. A non-nil
// error is always fatal: it means the read-offset buffer used in the
// absence of random access has exceeded Opts.BufferSize, and the caller
// must stop feeding the scanner rather than keep dropping records.
func (s *GenomeScanner) Admit(a Alignment) (bool, error) {
	if a.Flag()&flagDupQCFailUnmapped != 0 {
		return false, nil
	}
	if len(a.Cigar()) == 0 || len(a.Seq()) == 0 {
		return false, nil
	}
	if int(a.MapQ()) < s.opts.MapQThresh {
		return false, nil
	}

	if s.regions != nil {
		if !s.inScope(a) {
			return false, nil
		}
		key := dedupKey{qnameHash: a.QNameHash(), flag: a.Flag(), pos: a.Pos()}
		if _, dup := s.seen[key]; dup {
			return false, nil
		}
		s.seen[key] = struct{}{}
		s.buffer++
		if s.buffer > s.opts.BufferSize {
			log.Error.Printf("GenomeScanner.Admit: read-offset buffer exceeded BufferSize %d", s.opts.BufferSize)
			return false, fmt.Errorf("GenomeScanner.Admit: buffered %d records against BufferSize %d: %w", s.buffer, s.opts.BufferSize, ErrBufferOverflow)
		}
		s.pullMate(a)
		return true, nil
	}

	return s.admitByCoverage(a), nil
}

// inScope reports whether a falls inside a region of interest or inside a
// window pulled in around an earlier hit's mate/SA partner.
func (s *GenomeScanner) inScope(a Alignment) bool {
	pos := a.Pos()
	if s.regions.Contains(a.RefID(), pos) {
		return true
	}
	return s.pulled.Contains(a.RefID(), pos)
}

// pullMate registers windows around a's mate and, when present, its SA-tag
// partners, so that the other half of a discordant or split pair that
// itself lies outside every region still gets admitted.
func (s *GenomeScanner) pullMate(a Alignment) {
	if a.Flag()&1 != 0 && a.MateRefID() >= 0 {
		w := ExpandAroundMate(a.MateRefID(), a.MatePos())
		s.pulled.Add(w.Chrom, w.Start, w.End)
		s.pulled.Merge()
	}
	if sa, ok := a.SATag(); ok && s.resolveRef != nil {
		for _, e := range ParseSATag(sa) {
			chrom := s.resolveRef(e.Chrom)
			if chrom < 0 {
				continue
			}
			w := ExpandAroundMate(chrom, e.Pos)
			s.pulled.Add(w.Chrom, w.Start, w.End)
		}
		s.pulled.Merge()
	}
}

// admitByCoverage applies whole-genome over-coverage suppression. It
// always updates cov with a's span first -- a suppressed read still
// contributes to the depth the rule is checking -- then rejects once the
// resulting depth at a's own start bin reaches Opts.MaxCov: a bin whose
// post-update depth exactly equals MaxCov is suppressed, the same strict
// boundary the rule uses for every bin thereafter. A zero MaxCov disables
// suppression, though cov still accumulates.
func (s *GenomeScanner) admitByCoverage(a Alignment) bool {
	depth := s.cov.Add(a.RefID(), a.Pos(), a.ReferenceEnd())
	if s.opts.MaxCov <= 0 {
		return true
	}
	if depth >= s.opts.MaxCov {
		s.readsDropped++
		return false
	}
	return true
}

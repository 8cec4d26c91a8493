package svcluster

// peRecord is one between-read signal parked in a scope index, carrying
// both of its own breakpoint ends so a later lookup can apply the
// reciprocity, exact-bucket and distance-bucket gates regardless of
// which position it was filed under.
type peRecord struct {
	node     int
	kind     ReadEnum
	chrom1   int
	pos1     int
	chrom2   int
	pos2     int
	lenCigar int
	hasLen   bool
}

// PairedEndScoper links breakpoint signals (DISCORDANT, SPLIT, DELETION,
// INSERTION) whose two breakpoint ends land close to each other but not
// necessarily at the
// exact same base, the kind of fuzziness a discordant pair's two mapped
// ends or a split read's clip boundary always carries.
//
// loci holds every signal filed against the current chromosome (Chrom1),
// keyed by Pos1, and is bounded by evicting everything more than
// Opts.ClstDist behind the leading edge of the scan. chromScope holds,
// per partner chromosome, every signal whose far end lands there, keyed
// by that far-end position (Pos2), plus -- for within-read DELETIONs,
// whose two ends share one chromosome -- a second entry keyed by Pos1 so
// either end of the deletion is reachable from a query near the other.
// Both loci and every chromScope index are wholly discarded the moment
// the scan moves onto a new Chrom1: positions from the old chromosome can
// never be relevant to a lookup on the new one, and holding onto them
// would only grow memory without bound over a whole-genome scan.
type PairedEndScoper struct {
	opts *Opts

	haveChrom  bool
	localChrom int

	loci       *PosIndex[peRecord]
	chromScope map[int]*PosIndex[peRecord]
}

// NewPairedEndScoper returns an empty scoper.
func NewPairedEndScoper(opts *Opts) *PairedEndScoper {
	return &PairedEndScoper{
		opts:       opts,
		loci:       NewPosIndex[peRecord](),
		chromScope: make(map[int]*PosIndex[peRecord]),
	}
}

// ensureChrom clears every scope the moment the scan's local chromosome
// (bp.Chrom1) changes -- loci and chromScope only ever hold signals filed
// against the chromosome currently being scanned.
func (s *PairedEndScoper) ensureChrom(chrom1 int) {
	if s.haveChrom && chrom1 == s.localChrom {
		return
	}
	s.loci = NewPosIndex[peRecord]()
	s.chromScope = make(map[int]*PosIndex[peRecord])
	s.localChrom = chrom1
	s.haveChrom = true
}

func (s *PairedEndScoper) scopeFor(chrom int) *PosIndex[peRecord] {
	idx, ok := s.chromScope[chrom]
	if !ok {
		idx = NewPosIndex[peRecord]()
		s.chromScope[chrom] = idx
	}
	return idx
}

// AddItem offers (node, bp) up to the scoper: it links node to every
// in-scope prior signal FindOtherNodes' gates pass, then files the new
// signal so later reads can find it.
func (s *PairedEndScoper) AddItem(g *Graph, node int, bp Breakpoint) {
	for _, other := range s.FindOtherNodes(bp) {
		if other != node {
			g.AddEdge(node, other, 2)
		}
	}

	rec := peRecord{
		node: node, kind: bp.Kind,
		chrom1: bp.Chrom1, pos1: bp.Pos1,
		chrom2: bp.Chrom2, pos2: bp.Pos2,
		lenCigar: bp.LenCigar, hasLen: bp.HasLen,
	}
	s.loci.Insert(bp.Pos1, rec)
	if bp.Kind == Deletion {
		s.scopeFor(bp.Chrom2).Insert(bp.Pos1, rec)
	}
	s.scopeFor(bp.Chrom2).Insert(bp.Pos2, rec)
}

// peWalkSteps is how far FindOtherNodes walks forward from, and backward
// from the predecessor of, chromScope's lower-bound position.
const peWalkSteps = 6

// FindOtherNodes returns the node ids of prior signals bp should link to.
// It clears scope on a chromosome change, evicts loci entries that have
// fallen behind Opts.ClstDist, then walks bp.Chrom2's scope around
// bp.Pos2: up to peWalkSteps entries forward from the lower bound, and up
// to peWalkSteps entries backward from its predecessor, stopping early in
// either direction once an entry's own index key is Opts.MaxDist or more
// from bp.Pos2. Each surviving candidate passes a type gate (no
// DELETION/INSERTION pairing), and -- when bp's two ends lie on the same
// chromosome -- a reciprocal-overlap gate, before landing in either the
// exact bucket (far end within 35 bases, CIGAR-derived lengths within
// tolerance) or the distance bucket (span_position_distance within
// Opts.SPDThresh). If any
// exact-bucket match exists, only exact-bucket matches are returned.
func (s *PairedEndScoper) FindOtherNodes(bp Breakpoint) []int {
	s.ensureChrom(bp.Chrom1)
	s.loci.EvictBefore(bp.Pos1 - s.opts.ClstDist)

	idx, ok := s.chromScope[bp.Chrom2]
	if !ok {
		return nil
	}

	var exactMatches, distMatches []int
	center := idx.LowerBound(bp.Pos2)
	for i := center; i < idx.Len() && i < center+peWalkSteps; i++ {
		e := idx.At(i)
		if abs(e.Pos-bp.Pos2) >= s.opts.MaxDist {
			break
		}
		s.consider(bp, e.Value, &exactMatches, &distMatches)
	}
	for i := center - 1; i >= 0 && i >= center-peWalkSteps; i-- {
		e := idx.At(i)
		if abs(e.Pos-bp.Pos2) >= s.opts.MaxDist {
			break
		}
		s.consider(bp, e.Value, &exactMatches, &distMatches)
	}

	if len(exactMatches) > 0 {
		return exactMatches
	}
	return distMatches
}

// consider applies the type, reciprocity, exact-bucket and
// distance-bucket gates to one candidate, appending its node to *exact or
// *dist as appropriate.
func (s *PairedEndScoper) consider(bp Breakpoint, rec peRecord, exact, dist *[]int) {
	if (bp.Kind == Deletion && rec.kind == Insertion) || (bp.Kind == Insertion && rec.kind == Deletion) {
		return
	}

	sameChrom := bp.Chrom1 == bp.Chrom2
	if sameChrom {
		if !reciprocalOverlap(bp.Pos1, bp.Pos2, rec.pos1, rec.pos2) {
			return
		}
		if exactBucket(bp.Pos2, bp.LenCigar, bp.HasLen, rec) {
			*exact = append(*exact, rec.node)
			return
		}
		if s.opts.MMOnly {
			return
		}
		if abs(rec.pos1-bp.Pos2) < s.opts.MaxDist && abs(rec.pos2-bp.Pos1) < s.opts.MaxDist {
			if spanPositionDistance(bp, rec, s.opts) < s.opts.SPDThresh {
				*dist = append(*dist, rec.node)
			}
		}
		return
	}

	// Remote chromosome differs from bp's own: skip the pure positional
	// pre-checks the exact and distance buckets otherwise gate on, and
	// decide solely on span_position_distance.
	if s.opts.MMOnly {
		return
	}
	if spanPositionDistance(bp, rec, s.opts) < s.opts.SPDThresh {
		*dist = append(*dist, rec.node)
	}
}

// reciprocalOverlap reports whether intervals [aLo,aHi] and [bLo,bHi] each
// cover at least half of the other.
func reciprocalOverlap(aLo, aHi, bLo, bHi int) bool {
	if aLo > aHi {
		aLo, aHi = aHi, aLo
	}
	if bLo > bHi {
		bLo, bHi = bHi, bLo
	}
	lo := aLo
	if bLo > lo {
		lo = bLo
	}
	hi := aHi
	if bHi < hi {
		hi = bHi
	}
	overlap := hi - lo
	if overlap <= 0 {
		return false
	}
	lenA := aHi - aLo
	if lenA == 0 {
		lenA = 1
	}
	lenB := bHi - bLo
	if lenB == 0 {
		lenB = 1
	}
	return float64(overlap) >= 0.5*float64(lenA) && float64(overlap) >= 0.5*float64(lenB)
}

// exactBucket accepts a candidate whose far end lands within 35 bases of
// p2 outright when either side is missing a CIGAR-derived length (a SPLIT
// breakpoint carries none), or, when both sides carry one, when their
// relative difference is under 0.8 of the larger.
func exactBucket(p2, lenCigar int, hasLen bool, rec peRecord) bool {
	if abs(rec.pos1-p2) >= 35 {
		return false
	}
	if !hasLen || !rec.hasLen {
		return true
	}
	denom := lenCigar
	if rec.lenCigar > denom {
		denom = rec.lenCigar
	}
	if denom == 0 {
		return true
	}
	spanDistance := float64(abs(lenCigar-rec.lenCigar)) / float64(denom)
	return spanDistance < 0.8
}

// spanPositionDistance scores how close bp and rec are to describing the
// same event: the combined positional offset of their two ends,
// normalized by Opts.NormThresh, optionally penalized by the difference
// in CIGAR-derived event length when Opts.TrustInsLen is set, and halved
// when Opts.PairedEnd is set -- paired-end mates move together, so the
// same raw offset carries less weight as evidence of two distinct events.
// Smaller is closer; 0 means identical.
func spanPositionDistance(bp Breakpoint, rec peRecord, opts *Opts) float64 {
	d1 := float64(abs(bp.Pos1 - rec.pos1))
	d2 := float64(abs(bp.Pos2 - rec.pos2))
	norm := opts.NormThresh
	if norm <= 0 {
		norm = 1
	}
	dist := (d1 + d2) / (2 * norm)
	if opts.PairedEnd {
		dist /= 2
	}
	if opts.TrustInsLen && bp.HasLen && rec.hasLen {
		dist += float64(abs(bp.LenCigar-rec.lenCigar)) / norm
	}
	return dist
}

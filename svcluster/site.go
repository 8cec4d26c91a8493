package svcluster

// siteNearestMaxDist is the literal 50bp gate find_nearest_site applies:
// a candidate prior site only links to an incoming node if it falls within
// this distance, even though the surrounding scope window (Opts.ClusterDist)
// is wider.
const siteNearestMaxDist = 50

// siteWalkSteps bounds how many entries on either side of the query
// position SiteAdder inspects, the same ±6-step bound PairedEndScoper
// uses.
const siteWalkSteps = 6

type siteEntry struct {
	pos  int
	node int        // -1 until lazily injected into the graph
	bp   Breakpoint // registered with PairedEndScoper at injection time
}

// SiteRecord is one externally supplied candidate breakpoint, carrying the
// same svtype/svlen fields the sites file contract lists: enough to build
// the Breakpoint a real read of that kind would have produced.
type SiteRecord struct {
	Pos int
	// SVType selects the kind a matching read would be classified as:
	// "DEL" -> Deletion, "INS" -> Insertion, anything else -> Breakend
	// with length 0.
	SVType string
	SVLen  int
}

// SiteAdder holds externally supplied candidate breakpoint positions
// (e.g. a panel of known SV loci) as per-chromosome position-sorted
// queues, and injects each one into Graph as a node the first time an
// incoming read's breakpoint lands close enough to it, registering it with
// pe using its own type/length exactly as a real read's breakpoint would
// be. Injecting lazily, on first use, keeps a large site panel from
// bloating the graph and PairedEndScoper's buckets with sites no read ever
// actually reaches.
type SiteAdder struct {
	opts     *Opts
	pe       *PairedEndScoper
	perChrom map[int]*PosIndex[*siteEntry]
}

// NewSiteAdder returns an empty adder that injects newly-reached sites into
// pe.
func NewSiteAdder(opts *Opts, pe *PairedEndScoper) *SiteAdder {
	return &SiteAdder{opts: opts, pe: pe, perChrom: make(map[int]*PosIndex[*siteEntry])}
}

// LoadSites registers the given site records as candidates on chrom.
func (s *SiteAdder) LoadSites(chrom int, sites []SiteRecord) {
	idx, ok := s.perChrom[chrom]
	if !ok {
		idx = NewPosIndex[*siteEntry]()
		s.perChrom[chrom] = idx
	}
	for _, rec := range sites {
		idx.Insert(rec.Pos, &siteEntry{pos: rec.Pos, node: -1, bp: siteBreakpoint(chrom, rec)})
	}
}

// siteBreakpoint builds the Breakpoint a read landing exactly on rec would
// have produced, so that injecting the site registers it with
// PairedEndScoper the same way AddItem would for a real read.
func siteBreakpoint(chrom int, rec SiteRecord) Breakpoint {
	switch rec.SVType {
	case "DEL":
		return Breakpoint{
			Kind: Deletion, Chrom1: chrom, Pos1: rec.Pos,
			Chrom2: chrom, Pos2: rec.Pos + rec.SVLen,
			EventPos: rec.Pos, CigarIndex: -1,
			LenCigar: rec.SVLen, HasLen: true,
		}
	case "INS":
		return Breakpoint{
			Kind: Insertion, Chrom1: chrom, Pos1: rec.Pos,
			Chrom2: insertionChrom, Pos2: rec.Pos,
			EventPos: rec.Pos, CigarIndex: -1,
			LenCigar: rec.SVLen, HasLen: true,
		}
	default:
		return Breakpoint{
			Kind: Breakend, Chrom1: chrom, Pos1: rec.Pos,
			Chrom2: chrom, Pos2: rec.Pos,
			EventPos: rec.Pos, CigarIndex: -1,
		}
	}
}

// FindNearestSite looks for a registered site on chrom within
// siteNearestMaxDist of pos, among the siteWalkSteps entries nearest pos
// that also fall inside the wider Opts.ClusterDist scope window. If one is
// found, it is lazily injected into g (allocating its node on first use)
// and its node id is returned.
func (s *SiteAdder) FindNearestSite(g *Graph, chrom, pos int) (int, bool) {
	idx, ok := s.perChrom[chrom]
	if !ok {
		return 0, false
	}
	center := idx.LowerBound(pos)

	var best *siteEntry
	bestDist := siteNearestMaxDist + 1
	idx.Walk(center, siteWalkSteps, func(_ int, e PosEntry[*siteEntry]) bool {
		d := e.Pos - pos
		if d < 0 {
			d = -d
		}
		if d > s.opts.ClusterDist {
			return true
		}
		if d <= siteNearestMaxDist && d < bestDist {
			bestDist = d
			best = e.Value
		}
		return true
	})
	if best == nil {
		return 0, false
	}
	if best.node < 0 {
		best.node = g.AddNode()
		s.pe.AddItem(g, best.node, best.bp)
	}
	return best.node, true
}

// EvictBefore drops every registered site on chrom whose position is
// behind the scan cursor by more than Opts.ClusterDist, injected or not;
// once the cursor has passed a site that far, no future read can still
// land within its scope window. An injected site's node stays in the
// graph, but FindNearestSite no longer returns it.
func (s *SiteAdder) EvictBefore(chrom, cursor int) {
	idx, ok := s.perChrom[chrom]
	if !ok {
		return
	}
	idx.EvictBefore(cursor - s.opts.ClusterDist)
}

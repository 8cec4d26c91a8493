package svcluster

// maxComponentSize is the connected-component size above which
// Partitioner is asked to try splitting along strong evidence, rather
// than handing one enormous blob of reads to the caller.
const maxComponentSize = 2000

// minComponentSupport is the strong-edge count BreakLargeComponent
// requires before it will re-merge two pieces it had split apart.
const minComponentSupport = 2

// NodeRecord is what the engine remembers about a graph node: enough of
// the originating alignment and its classified breakpoint to let a
// downstream caller turn a partition back into evidence.
type NodeRecord struct {
	QName      string
	Flag       uint16
	Breakpoint Breakpoint
}

// Info summarizes one Engine run.
type Info struct {
	InsertMedian     float64
	InsertStdev      float64
	ReadLength       int
	ExtendedTags     bool
	RecordsScanned   int
	RecordsAdmitted  int
	RecordsClassified int
}

// Result is everything Engine.Finalize produces: the partitioned
// components ready for a downstream SV caller, the strong-support node
// sets Partitioner used to decide them, the per-node evidence record, and
// a run summary.
type Result struct {
	Parts [][]int
	// SupportBetween maps an ordered pair of partition indices (i < j) to
	// the nodes of i and the nodes of j directly joined by a strong edge --
	// the evidence a downstream caller inspects to decide whether two
	// partitions describe the same event.
	SupportBetween map[[2]int][2][]int
	// SupportWithin maps a partition index to the nodes inside it that
	// carry at least one internal strong edge.
	SupportWithin map[int][]int
	Reads         map[int]NodeRecord
	NodeToPart    map[int]int
	Info          Info
}

// Engine wires GenomeScanner, the classifier, both scopers, TemplateEdges,
// SiteAdder and Partitioner into the single-pass pipeline: one call to Add
// per admitted alignment, one call to Finalize once the stream is
// exhausted.
type Engine struct {
	opts       *Opts
	scanner    *GenomeScanner
	resolveRef func(string) int

	pe    *PairedEndScoper
	clip  *ClipScoper
	te    *TemplateEdges
	sites *SiteAdder
	g     *Graph
	cov   *CoverageTracker

	nodeInfo map[int]NodeRecord

	scanned, admitted, classified int
}

// NewEngine returns an Engine bound to opts and scanner. resolveRef
// resolves an SA-tag chromosome name to the caller's reference numbering
// for Classify; a region scanner takes its own resolver when it is built
// with NewRegionScanner.
func NewEngine(opts *Opts, scanner *GenomeScanner, resolveRef func(string) int) *Engine {
	pe := NewPairedEndScoper(opts)
	return &Engine{
		opts:       opts,
		scanner:    scanner,
		resolveRef: resolveRef,
		pe:         pe,
		clip:       NewClipScoper(opts),
		te:         NewTemplateEdges(),
		sites:      NewSiteAdder(opts, pe),
		g:          NewGraph(),
		cov:        NewCoverageTracker(),
		nodeInfo:   make(map[int]NodeRecord),
	}
}

// LoadSites registers a panel of candidate breakpoint positions on chrom,
// each carrying the SV type/length the sites file supplies for it.
func (e *Engine) LoadSites(chrom int, sites []SiteRecord) { e.sites.LoadSites(chrom, sites) }

// Add offers one alignment to the pipeline: it is admitted, classified,
// turned into a graph node, linked against every scoper that applies, and
// recorded. Add returns (false, nil) for a record the scanner rejects or
// that the classifier finds no SV signal in. A non-nil error is always
// fatal -- the scanner's read-offset buffer has exceeded Opts.BufferSize
// -- and the caller must stop calling Add.
func (e *Engine) Add(a Alignment) (bool, error) {
	e.scanned++
	admitted, err := e.scanner.Admit(a)
	if err != nil {
		return false, err
	}
	if !admitted {
		return false, nil
	}
	e.admitted++

	e.cov.Add(a.RefID(), a.Pos(), a.ReferenceEnd())
	e.sites.EvictBefore(a.RefID(), a.Pos())

	bp, ok := Classify(a, e.opts, e.resolveRef)
	if !ok {
		return false, nil
	}
	e.classified++

	node := e.g.AddNode()
	e.nodeInfo[node] = NodeRecord{QName: a.QName(), Flag: a.Flag(), Breakpoint: bp}

	if site, ok := e.sites.FindNearestSite(e.g, bp.Chrom1, bp.Pos1); ok {
		e.g.AddEdge(node, site, 0)
	}

	// Every kind but Breakend carries a breakpoint pair PairedEndScoper can
	// bucket and later match against (Discordant, Split between two
	// records; Deletion, Insertion within one). Breakend has no partner
	// coordinate yet -- ClipScoper is what finds one.
	if bp.Kind == Breakend {
		e.updateClip(node, a, bp)
	} else {
		e.pe.AddItem(e.g, node, bp)
	}

	// TemplateEdges only links pieces of the same template that each carry
	// a between-read signal; a within-read signal has no other piece of
	// the template to link against.
	if bp.Kind.BetweenRead() {
		e.te.Add(a.QName(), QueryStart(a), node, a.Flag())
	}
	return true, nil
}

func (e *Engine) updateClip(node int, a Alignment, bp Breakpoint) {
	leadLen, _ := LeadingClip(a.Cigar())
	trailLen, _ := TrailingClip(a.Cigar())
	leading := leadLen >= trailLen
	clip := ClipSequence(a, leading)
	if len(clip) < e.opts.K {
		return
	}
	orientation := byte('L')
	if !leading {
		orientation = 'R'
	}
	minimizers := Minimizers(clip, e.opts.K, e.opts.M)
	for _, partner := range e.clip.Update(orientation, node, bp.Pos1, clip, minimizers) {
		e.g.AddEdge(node, partner, 3)
	}
}

// Finalize flushes TemplateEdges, partitions the resulting graph, and
// returns the assembled Result. The Engine must not be used afterward.
func (e *Engine) Finalize(insertMedian, insertStdev float64, readLength int, extendedTags bool) Result {
	e.te.Flush(e.g)

	partitioner := NewPartitioner(e.g)
	var parts [][]int
	supportBetween := make(map[[2]int][2][]int)
	for _, component := range e.g.ConnectedComponents() {
		pieces := partitioner.BreakLargeComponent(component, maxComponentSize, minComponentSupport)
		parts = append(parts, pieces...)
	}

	supportWithin := make(map[int][]int)
	nodeToPart := make(map[int]int)
	for i, part := range parts {
		supportWithin[i] = partitioner.SupportNodesWithin(part)
		for _, n := range part {
			nodeToPart[n] = i
		}
	}
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			sideI, sideJ := partitioner.SupportNodesBetween(parts[i], parts[j])
			if len(sideI) > 0 {
				supportBetween[[2]int{i, j}] = [2][]int{sideI, sideJ}
			}
		}
	}

	return Result{
		Parts:          parts,
		SupportBetween: supportBetween,
		SupportWithin:  supportWithin,
		Reads:          e.nodeInfo,
		NodeToPart:     nodeToPart,
		Info: Info{
			InsertMedian:      insertMedian,
			InsertStdev:       insertStdev,
			ReadLength:        readLength,
			ExtendedTags:      extendedTags,
			RecordsScanned:    e.scanned,
			RecordsAdmitted:   e.admitted,
			RecordsClassified: e.classified,
		},
	}
}

package svcluster

// ReadEnum classifies the kind of structural-variant signal a node carries.
// Values < 2 are "between-read" signals (witnessed by the relationship
// between two separate records); values >= 2 are "within-read" signals
// (witnessed entirely inside one record's CIGAR). TemplateEdges only links
// between-read nodes. The numeric ordering is load-bearing: callers rely on
// "< 2" to separate the two classes, so new kinds must be appended, not
// inserted.
type ReadEnum int

const (
	Discordant ReadEnum = 0
	Split      ReadEnum = 1
	Deletion   ReadEnum = 2
	Insertion  ReadEnum = 3
	Breakend   ReadEnum = 4
)

// BetweenRead reports whether k is witnessed by a relationship between two
// records (DISCORDANT, SPLIT) rather than within one record's CIGAR.
func (k ReadEnum) BetweenRead() bool { return k < 2 }

// insertionChrom is the sentinel chrom2 value denoting "insertion chromosome"
// -- an insertion has no real partner chromosome.
const insertionChrom = 10_000_000

// Breakpoint is a classified record's pair of breakpoint coordinates, plus
// the evidence kind and the CIGAR-derived event length (when within-read).
type Breakpoint struct {
	Kind ReadEnum

	Chrom1 int
	Pos1   int
	Chrom2 int
	Pos2   int

	// EventPos is the reference position the event itself occurred at. For
	// within-read signals this must lie inside the originating record's
	// reference span. For between-read signals it equals Pos1.
	EventPos int

	// CigarIndex is the index into the originating record's CIGAR of the op
	// that produced this breakpoint, or -1 for a whole-read (between-read)
	// node.
	CigarIndex int

	// LenCigar is the CIGAR-derived event length (e.g. deletion/insertion
	// size), when known; 0 otherwise. Used by PairedEndScoper's exact-bucket
	// span_distance test.
	LenCigar int
	HasLen   bool
}

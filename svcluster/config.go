package svcluster

// Opts holds every tunable of the scanning, scoping and clustering engine.
// It is a flat struct of primitives set by the host, in the same spirit as
// markduplicates.Opts -- loading it from a config file or flags is the
// host's responsibility, not this package's.
type Opts struct {
	// MaxCov is the coverage cap GenomeScanner applies in whole-genome mode.
	// A bin whose depth reaches this value is suppressed.
	MaxCov float32

	// BufferSize caps the number of buffered alignments kept in memory when
	// the input stream offers no random access. Exceeding it is fatal
	// (ErrBufferOverflow).
	BufferSize int

	// ClipLength is the minimum soft-clip length, in bases, considered by
	// ClipScoper and by split-read classification. Default 30.
	ClipLength int

	// MinSVSize is the minimum event length, in bases, for a within-read
	// indel to be reported as a DELETION/INSERTION signal rather than
	// ignored as ordinary sequencing noise. Default 30.
	MinSVSize int

	// MinimizerSupportThresh is the minimum accumulated support, from
	// ClipScoper.Update, before a candidate partner is reported. Default 2.
	MinimizerSupportThresh int

	// MinimizerBreadth bounds... (reserved for the minimizer window
	// parameterization used by the host; not interpreted by this package
	// beyond being threaded through to NewClipScoper). Default 3.
	MinimizerBreadth int

	// MinimizerDist is max_dist for ClipScoper's per-orientation scope.
	// Default 10.
	MinimizerDist int

	// MapQThresh is the minimum MAPQ for a record to participate in
	// clustering. Default 1.
	MapQThresh int

	// PairedEnd indicates the input consists of paired-end reads; it gates
	// whether PairedEndScoper's span_position_distance may use paired-end
	// specific hints.
	PairedEnd bool

	// ReadLength is the caller-supplied or InsertSizeEstimator-inferred read
	// length.
	ReadLength int

	// NormThresh is the norm used to scale span_position_distance's
	// length-aware penalty. Default 100.
	NormThresh float64

	// SPDThresh is the acceptance threshold for span_position_distance in
	// PairedEndScoper's distance bucket. Default 0.3.
	SPDThresh float64

	// MMOnly makes PairedEndScoper skip the distance-bucket
	// (span_position_distance) fallback, so only exact-bucket matches link.
	// ClipScoper does not consult it.
	MMOnly bool

	// TrustInsLen gates whether insertion lengths are compared strictly in
	// span_position_distance.
	TrustInsLen bool

	// K is the minimizer k-mer length. Default 16.
	K int

	// M is the minimizer window length (number of consecutive k-mers the
	// sliding-window minimum is taken over). Default 7.
	M int

	// ClipL is an alternate minimum clip length used by some callers in place
	// of ClipLength; retained for parity with the host configuration
	// surface. Default 21.
	ClipL int

	// MaxDist is the template length beyond which a same-reference pair is
	// classified DISCORDANT, and PairedEndScoper's search radius: its walk
	// stops at an entry MaxDist or more from the query, and the distance
	// bucket requires both cross offsets under MaxDist. It does not drive
	// eviction (see ClstDist and MinimizerDist).
	MaxDist int

	// ClstDist is the distance PairedEndScoper.loci evicts behind the
	// leading edge of the scan.
	ClstDist int

	// ClusterDist is SiteAdder's scope window half-width.
	ClusterDist int
}

// DefaultOpts returns an Opts populated with the library's default tunables.
func DefaultOpts() Opts {
	return Opts{
		ClipLength:              30,
		MinSVSize:               30,
		MinimizerSupportThresh:  2,
		MinimizerBreadth:        3,
		MinimizerDist:           10,
		MapQThresh:              1,
		NormThresh:              100,
		SPDThresh:               0.3,
		K:                       16,
		M:                       7,
		ClipL:                   21,
		MaxDist:                 1000,
		ClstDist:                1000,
		ClusterDist:             500,
	}
}

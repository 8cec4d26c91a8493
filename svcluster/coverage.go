package svcluster

// coverageBin is the bin width CoverageTracker accumulates depth at.
const coverageBin = 10

// CoverageTracker accumulates fractional per-10bp-bin depth, one dense
// float32 slice per chromosome, grown on demand. It answers windowed
// mean/max depth queries over a 20kb span around a candidate breakpoint,
// the same backward-accumulate-then-query shape as a per-base coverage
// array, just downsampled 10x to keep memory bounded on chromosome-scale
// inputs.
type CoverageTracker struct {
	bins map[int][]float32
}

// NewCoverageTracker returns an empty tracker.
func NewCoverageTracker() *CoverageTracker {
	return &CoverageTracker{bins: make(map[int][]float32)}
}

func (c *CoverageTracker) binsFor(chrom int, throughBin int) []float32 {
	b := c.bins[chrom]
	if throughBin >= len(b) {
		grown := make([]float32, throughBin+1)
		copy(grown, b)
		b = grown
		c.bins[chrom] = b
	}
	return b
}

// Add records that a read covers the half-open reference interval
// [start, end) on chrom, distributing fractional weight into each 10bp bin
// the interval overlaps, and returns the updated depth at the bin covering
// start.
func (c *CoverageTracker) Add(chrom, start, end int) float32 {
	if end <= start {
		return 0
	}
	firstBin := start / coverageBin
	lastBin := (end - 1) / coverageBin
	b := c.binsFor(chrom, lastBin)
	for bin := firstBin; bin <= lastBin; bin++ {
		binStart := bin * coverageBin
		binEnd := binStart + coverageBin
		lo := start
		if binStart > lo {
			lo = binStart
		}
		hi := end
		if binEnd < hi {
			hi = binEnd
		}
		b[bin] += float32(hi-lo) / float32(coverageBin)
	}
	return b[firstBin]
}

// MeanMax returns the mean and max per-base depth over [start, end) on
// chrom, read off the 10bp-downsampled bins. An empty or unseen range
// reports (0, 0).
func (c *CoverageTracker) MeanMax(chrom, start, end int) (mean, max float32) {
	if end <= start {
		return 0, 0
	}
	b, ok := c.bins[chrom]
	if !ok {
		return 0, 0
	}
	firstBin := start / coverageBin
	lastBin := (end - 1) / coverageBin
	if firstBin >= len(b) {
		return 0, 0
	}
	if lastBin >= len(b) {
		lastBin = len(b) - 1
	}
	var sum float32
	n := 0
	for bin := firstBin; bin <= lastBin; bin++ {
		d := b[bin]
		if d > max {
			max = d
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float32(n), max
}

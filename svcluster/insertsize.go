package svcluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/grailbio/base/log"
)

// insertSizeMaxRecords bounds how many records InsertSizeEstimator samples
// before giving up and falling back to defaults.
const insertSizeMaxRecords = 200_000

// insertSizeMinUsable is the minimum number of usable pairs required before
// the empirical median/MAD are trusted over the defaults.
const insertSizeMinUsable = 100

// defaultInsertMedian and defaultInsertStdev are the fallback insert-size
// mean/stdev used when fewer than insertSizeMinUsable pairs are observed.
const (
	defaultInsertMedian = 300.0
	defaultInsertStdev  = 150.0
)

// insertOutlierMADMultiple is how many upper median-absolute-deviations
// above the median an insert size must reach before Finalize trims it.
const insertOutlierMADMultiple = 8

// InsertSizeEstimator infers the library's insert-size distribution and
// read length from a prefix of the alignment stream, the same
// scan-then-summarize shape as a library_size.go histogram pass: collect a
// bounded sample, trim it with a robust (median/upper-MAD) cutoff, then
// take the mean and standard deviation of what remains, so a handful of
// mis-mapped outliers can't skew the estimate.
type InsertSizeEstimator struct {
	opts *Opts

	inserts     []int
	readLengths map[int]int // length -> count, majority vote
	scanned     int
	extended    bool
}

// NewInsertSizeEstimator returns an estimator bound to opts. opts.ReadLength
// is left untouched until Finalize is called.
func NewInsertSizeEstimator(opts *Opts) *InsertSizeEstimator {
	return &InsertSizeEstimator{
		opts:        opts,
		readLengths: make(map[int]int),
	}
}

// Add offers a up the estimator. It returns false once the estimator has
// seen insertSizeMaxRecords records and no longer wants input.
func (e *InsertSizeEstimator) Add(a Alignment) bool {
	if e.scanned >= insertSizeMaxRecords {
		return false
	}
	e.scanned++

	if HasExtendedTags(a) {
		e.extended = true
	}

	rl := a.InferReadLength()
	if rl > 0 {
		e.readLengths[rl]++
	}

	flag := a.Flag()
	const properPair = 0x2
	const mateUnmapped = 0x8
	const secondaryOrSupp = flagSecSupp
	if flag&properPair != 0 && flag&mateUnmapped == 0 && flag&secondaryOrSupp == 0 {
		if ins := a.TempLen(); ins > 0 {
			e.inserts = append(e.inserts, ins)
		}
	}

	return e.scanned < insertSizeMaxRecords
}

// ExtendedTags reports whether any scanned record carried the ZP tag.
func (e *InsertSizeEstimator) ExtendedTags() bool { return e.extended }

// Finalize computes the insert-size mean and standard deviation and the
// majority-vote read length. The mean/stdev are taken over a trimmed
// sample: the median is found, then the upper median absolute deviation
// (the median of {x - median : x > median}, one-sided because a library's
// insert-size distribution is only ever contaminated by large chimeric
// fragments, not small ones), then every insert at or beyond
// insertOutlierMADMultiple upper-MADs above the median is dropped before
// the mean and stdev are taken of what remains. When fewer than
// insertSizeMinUsable insert-size samples were collected, the insert
// statistics fall back to the library defaults (300, 150); read length has
// no such fallback -- a stream with no alignable CIGAR or sequence on any
// scanned record cannot be clustered and Finalize returns
// ErrCannotInferReadLength.
func (e *InsertSizeEstimator) Finalize() (insertMean, insertStdev float64, readLength int, err error) {
	if e.scanned == 0 {
		return 0, 0, 0, fmt.Errorf("InsertSizeEstimator.Finalize: alignment stream was empty: %w", ErrNoReads)
	}
	readLength, ok := e.majorityReadLength()
	if !ok {
		return 0, 0, 0, fmt.Errorf("InsertSizeEstimator.Finalize: no usable read length after scanning %d records: %w", e.scanned, ErrCannotInferReadLength)
	}

	if len(e.inserts) < insertSizeMinUsable {
		log.Debug.Printf("InsertSizeEstimator.Finalize: only %d usable pairs, falling back to defaults (mean=%v, stdev=%v)", len(e.inserts), defaultInsertMedian, defaultInsertStdev)
		return defaultInsertMedian, defaultInsertStdev, readLength, nil
	}

	sorted := append([]int(nil), e.inserts...)
	sort.Ints(sorted)
	median := medianOfSortedInts(sorted)

	var upperDevs []float64
	for _, v := range sorted {
		if d := float64(v) - median; d > 0 {
			upperDevs = append(upperDevs, d)
		}
	}
	sort.Float64s(upperDevs)
	upperMAD := medianOfSortedFloats(upperDevs)

	cutoff := median + insertOutlierMADMultiple*upperMAD
	trimmed := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if float64(v) >= cutoff {
			continue
		}
		trimmed = append(trimmed, float64(v))
	}
	if len(trimmed) == 0 {
		trimmed = append(trimmed, median)
	}

	mean := meanOfFloats(trimmed)
	stdev := stdevOfFloats(trimmed, mean)
	if stdev == 0 {
		stdev = defaultInsertStdev
	}
	return mean, stdev, readLength, nil
}

func (e *InsertSizeEstimator) majorityReadLength() (int, bool) {
	best, bestCount := 0, 0
	for rl, count := range e.readLengths {
		if count > bestCount {
			best, bestCount = rl, count
		}
	}
	return best, bestCount > 0
}

func medianOfSortedInts(s []int) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(s[n/2])
	}
	return float64(s[n/2-1]+s[n/2]) / 2
}

func meanOfFloats(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func stdevOfFloats(s []float64, mean float64) float64 {
	var sum float64
	for _, v := range s {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(s)))
}

func medianOfSortedFloats(s []float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

package svcluster

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// regionMateWindow is the half-width of the window GenomeScanner pulls in
// around a region hit's mate or SA-tag partner, in region-restricted mode.
const regionMateWindow = 1000

// Region is a half-open [Start, End) interval on Chrom.
type Region struct {
	Chrom int
	Start int
	End   int
}

// RegionSet holds a per-chromosome, merged, sorted set of regions of
// interest. Merging keeps Contains a binary search instead of a linear
// scan over possibly-overlapping input intervals, the same reason
// interval/bedunion.go coalesces its input before answering overlap
// queries.
type RegionSet struct {
	byChrom map[int][]Region
	merged  bool
}

// NewRegionSet returns an empty set.
func NewRegionSet() *RegionSet {
	return &RegionSet{byChrom: make(map[int][]Region)}
}

// Add registers [start, end) on chrom. Call Merge once every region has
// been added.
func (r *RegionSet) Add(chrom, start, end int) {
	if end <= start {
		return
	}
	r.byChrom[chrom] = append(r.byChrom[chrom], Region{Chrom: chrom, Start: start, End: end})
	r.merged = false
}

// Merge sorts and coalesces overlapping or adjacent regions on every
// chromosome. Contains and ExpandAroundMate assume it has been called.
func (r *RegionSet) Merge() {
	for chrom, regions := range r.byChrom {
		sort.Slice(regions, func(i, j int) bool { return regions[i].Start < regions[j].Start })
		out := regions[:0]
		for _, reg := range regions {
			if n := len(out); n > 0 && reg.Start <= out[n-1].End {
				if reg.End > out[n-1].End {
					out[n-1].End = reg.End
				}
				continue
			}
			out = append(out, reg)
		}
		r.byChrom[chrom] = out
	}
	r.merged = true
}

// Contains reports whether pos on chrom falls inside a registered region.
func (r *RegionSet) Contains(chrom, pos int) bool {
	regions := r.byChrom[chrom]
	i := sort.Search(len(regions), func(i int) bool { return regions[i].Start > pos })
	if i == 0 {
		return false
	}
	return regions[i-1].End > pos
}

// ExpandAroundMate returns the ±regionMateWindow region GenomeScanner
// should additionally admit records from, centered on a mate or SA-tag
// partner coordinate a region hit points at.
func ExpandAroundMate(chrom, pos int) Region {
	start := pos - regionMateWindow
	if start < 0 {
		start = 0
	}
	return Region{Chrom: chrom, Start: start, End: pos + regionMateWindow}
}

// LoadRegions parses a 3-column BED-style region file (chrom, start, end;
// tab or space separated; "#"-prefixed and blank lines ignored) from r,
// transparently decompressing when the stream is gzipped. resolveRef maps
// a chromosome name to the caller's reference numbering.
func LoadRegions(r io.Reader, resolveRef func(string) int) (*RegionSet, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			return nil, errors.Wrap(gzErr, "svcluster: opening gzipped region file")
		}
		defer gz.Close()
		return parseRegions(gz, resolveRef)
	}
	return parseRegions(br, resolveRef)
}

func parseRegions(r io.Reader, resolveRef func(string) int) (*RegionSet, error) {
	set := NewRegionSet()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		chrom := resolveRef(fields[0])
		if chrom < 0 {
			return nil, errors.Wrapf(ErrUnknownReferenceName, "region file reference %q", fields[0])
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "region file start %q", fields[1])
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "region file end %q", fields[2])
		}
		set.Add(chrom, start, end)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "svcluster: reading region file")
	}
	set.Merge()
	return set, nil
}

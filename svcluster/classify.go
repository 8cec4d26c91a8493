package svcluster

import "github.com/grailbio/hts/sam"

// LeadingClip returns the length of a's leading (5'-most in alignment
// coordinates) soft clip, and the CIGAR index of that op, or (0, -1) if the
// alignment does not start with a soft clip.
func LeadingClip(c sam.Cigar) (length, index int) {
	if len(c) == 0 || c[0].Type() != sam.CigarSoftClipped {
		return 0, -1
	}
	return c[0].Len(), 0
}

// TrailingClip returns the length of a's trailing soft clip and its CIGAR
// index, or (0, -1) if the alignment does not end with a soft clip.
func TrailingClip(c sam.Cigar) (length, index int) {
	if len(c) == 0 || c[len(c)-1].Type() != sam.CigarSoftClipped {
		return 0, -1
	}
	return c[len(c)-1].Len(), len(c) - 1
}

// largestIndelOp scans a's CIGAR for the longest deletion or insertion op at
// least minSize bases long, returning its type, length, index into the
// CIGAR, and reference position, or ok=false if none qualifies.
func largestIndelOp(pos int, c sam.Cigar, minSize int) (op sam.CigarOpType, length, index, refPos int, ok bool) {
	best := -1
	bestLen := 0
	bestRefPos := 0
	var bestOp sam.CigarOpType
	refPos = pos
	for i, co := range c {
		t := co.Type()
		switch t {
		case sam.CigarDeletion, sam.CigarInsertion:
			if co.Len() >= minSize && co.Len() > bestLen {
				best = i
				bestLen = co.Len()
				bestOp = t
				bestRefPos = refPos
			}
		}
		if con := t.Consumes(); con.Reference != 0 {
			refPos += co.Len() * con.Reference
		}
	}
	if best < 0 {
		return 0, 0, -1, 0, false
	}
	return bestOp, bestLen, best, bestRefPos, true
}

// Classify decides whether a carries structural-variant signal and, if so,
// returns the resulting Breakpoint. resolveRef maps an SA-tag chromosome
// name to the caller's reference numbering (Engine.resolveRef); the caller
// is responsible for having already filtered a by flag mask and mapping
// quality, Classify assumes a is otherwise eligible.
func Classify(a Alignment, opts *Opts, resolveRef func(string) int) (Breakpoint, bool) {
	cigar := a.Cigar()
	if len(cigar) == 0 {
		return Breakpoint{}, false
	}

	// Split read: carries an SA tag pointing at another alignment block of
	// the same template.
	if sa, ok := a.SATag(); ok {
		entries := ParseSATag(sa)
		if len(entries) > 0 {
			e := entries[0]
			leadLen, leadIdx := LeadingClip(cigar)
			trailLen, trailIdx := TrailingClip(cigar)
			cigarIdx := -1
			var pos1 int
			if leadLen >= opts.ClipLength && leadLen >= trailLen {
				cigarIdx = leadIdx
				pos1 = a.Pos()
			} else if trailLen >= opts.ClipLength {
				cigarIdx = trailIdx
				pos1 = a.ReferenceEnd()
			} else {
				cigarIdx = leadIdx
				pos1 = a.Pos()
			}
			return Breakpoint{
				Kind:       Split,
				Chrom1:     a.RefID(),
				Pos1:       pos1,
				Chrom2:     resolveRef(e.Chrom),
				Pos2:       e.Pos,
				EventPos:   pos1,
				CigarIndex: cigarIdx,
			}, true
		}
	}

	// Discordant pair: mapped mate on a different reference, or far enough
	// away on the same reference that the template length is not concordant.
	if a.Flag()&1 != 0 /* paired */ && a.Flag()&8 == 0 /* mate mapped */ {
		if a.MateRefID() != a.RefID() || abs(a.TempLen()) > opts.MaxDist {
			return Breakpoint{
				Kind:     Discordant,
				Chrom1:   a.RefID(),
				Pos1:     a.Pos(),
				Chrom2:   a.MateRefID(),
				Pos2:     a.MatePos(),
				EventPos: a.Pos(),
			}, true
		}
	}

	// Within-read deletion or insertion.
	if op, length, idx, refPos, ok := largestIndelOp(a.Pos(), cigar, opts.MinSVSize); ok {
		if op == sam.CigarDeletion {
			return Breakpoint{
				Kind:       Deletion,
				Chrom1:     a.RefID(),
				Pos1:       refPos,
				Chrom2:     a.RefID(),
				Pos2:       refPos + length,
				EventPos:   refPos,
				CigarIndex: idx,
				LenCigar:   length,
				HasLen:     true,
			}, true
		}
		return Breakpoint{
			Kind:       Insertion,
			Chrom1:     a.RefID(),
			Pos1:       refPos,
			Chrom2:     insertionChrom,
			Pos2:       refPos,
			EventPos:   refPos,
			CigarIndex: idx,
			LenCigar:   length,
			HasLen:     true,
		}, true
	}

	// Breakend: an otherwise-unexplained soft clip long enough to carry
	// signal; no partner coordinate is known yet, ClipScoper will find one.
	leadLen, leadIdx := LeadingClip(cigar)
	trailLen, trailIdx := TrailingClip(cigar)
	if leadLen >= opts.ClipLength || trailLen >= opts.ClipLength {
		cigarIdx, pos1 := leadIdx, a.Pos()
		if trailLen > leadLen {
			cigarIdx, pos1 = trailIdx, a.ReferenceEnd()
		}
		return Breakpoint{
			Kind:       Breakend,
			Chrom1:     a.RefID(),
			Pos1:       pos1,
			Chrom2:     a.RefID(),
			Pos2:       pos1,
			EventPos:   pos1,
			CigarIndex: cigarIdx,
		}, true
	}

	return Breakpoint{}, false
}

// QueryStart returns the offset, in query bases, at which a's aligned
// portion begins within the original read -- the sum of any leading
// hard- or soft-clip. TemplateEdges sorts a template's pieces by this
// value to link them in the order they actually occur along the read.
func QueryStart(a Alignment) int {
	c := a.Cigar()
	start := 0
	for _, co := range c {
		switch co.Type() {
		case sam.CigarHardClipped, sam.CigarSoftClipped:
			start += co.Len()
		default:
			return start
		}
	}
	return start
}

// ClipSequence returns the soft-clipped bases at the read's leading or
// trailing end, per leading, or nil if that end isn't clipped.
func ClipSequence(a Alignment, leading bool) []byte {
	seq := a.Seq()
	if leading {
		n, _ := LeadingClip(a.Cigar())
		if n == 0 || n > len(seq) {
			return nil
		}
		return seq[:n]
	}
	n, _ := TrailingClip(a.Cigar())
	if n == 0 || n > len(seq) {
		return nil
	}
	return seq[len(seq)-n:]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

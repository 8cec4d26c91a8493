package svcluster

import (
	"strconv"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// Flag bit masks, used literally against sam.Record.Flags.
const (
	flagDupQCFailUnmapped = 0x604 // dup | qcfail | unmapped
	flagSecSupp           = 0x900 // secondary | supplementary
	flagMultiMapped       = 0x708
)

var saTag = sam.Tag{'S', 'A'}
var zpTag = sam.Tag{'Z', 'P'}
var mcTag = sam.Tag{'M', 'C'}

// Alignment is the opaque record interface the scanner and scopers consume.
// It is satisfied by SAMAlignment, which adapts *sam.Record, but a host may
// supply any implementation backed by a different container.
type Alignment interface {
	QName() string
	QNameHash() uint64
	Flag() uint16
	RefID() int
	RefName() string
	Pos() int
	MateRefID() int
	MatePos() int
	MapQ() byte
	Cigar() sam.Cigar
	Seq() []byte
	BaseQuals() []byte
	TempLen() int
	ReferenceEnd() int
	InferReadLength() int
	SATag() (string, bool)
	HasTag(t sam.Tag) bool
}

// SAMAlignment adapts *sam.Record (github.com/grailbio/hts/sam) to
// Alignment.
type SAMAlignment struct {
	R *sam.Record
}

func (a SAMAlignment) QName() string { return a.R.Name }

func (a SAMAlignment) QNameHash() uint64 {
	return seahash.Sum64([]byte(a.R.Name))
}

func (a SAMAlignment) Flag() uint16 { return uint16(a.R.Flags) }

func (a SAMAlignment) RefID() int {
	if a.R.Ref == nil {
		return -1
	}
	return a.R.Ref.ID()
}

func (a SAMAlignment) RefName() string {
	if a.R.Ref == nil {
		return "*"
	}
	return a.R.Ref.Name()
}

func (a SAMAlignment) Pos() int { return a.R.Pos }

func (a SAMAlignment) MateRefID() int {
	if a.R.MateRef == nil {
		return -1
	}
	return a.R.MateRef.ID()
}

func (a SAMAlignment) MatePos() int { return a.R.MatePos }

func (a SAMAlignment) MapQ() byte { return a.R.MapQ }

func (a SAMAlignment) Cigar() sam.Cigar { return a.R.Cigar }

func (a SAMAlignment) Seq() []byte { return a.R.Seq.Expand() }

func (a SAMAlignment) BaseQuals() []byte { return a.R.Qual }

func (a SAMAlignment) TempLen() int { return a.R.TempLen }

// ReferenceEnd returns the exclusive reference end of this record, one past
// the last base of the final reference-consuming CIGAR operation -- i.e.
// sam.Record.End().
func (a SAMAlignment) ReferenceEnd() int { return a.R.End() }

// InferReadLength returns the number of query-consuming CIGAR bases, falling
// back to len(Seq) when the CIGAR is absent.
func (a SAMAlignment) InferReadLength() int {
	if len(a.R.Cigar) == 0 {
		return a.R.Seq.Length
	}
	_, read := a.R.Cigar.Lengths()
	return read
}

func (a SAMAlignment) SATag() (string, bool) {
	aux := a.R.AuxFields.Get(saTag)
	if aux == nil {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}

func (a SAMAlignment) HasTag(t sam.Tag) bool {
	return a.R.AuxFields.Get(t) != nil
}

// SAEntry is one parsed entry of an SA tag: another alignment block of the
// same read, elsewhere in the genome.
type SAEntry struct {
	Chrom  string
	Pos    int // 0-based
	Strand byte
	Cigar  string
	MapQ   int
	NM     int
}

// ParseSATag parses an SA tag value: ";"-separated entries, each
// "chrom,pos,strand,cigar,mapq,nm". A malformed entry is logged and aborts
// parsing of the remaining entries rather than failing the whole record.
func ParseSATag(v string) []SAEntry {
	v = strings.TrimSuffix(v, ";")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ";")
	entries := make([]SAEntry, 0, len(parts))
	for _, p := range parts {
		f := strings.Split(p, ",")
		if len(f) != 6 {
			log.Error.Printf("malformed SA tag entry %q, skipping remaining entries", p)
			break
		}
		pos, err := strconv.Atoi(f[1])
		if err != nil {
			log.Error.Printf("malformed SA tag entry %q, skipping remaining entries", p)
			break
		}
		mapq, err := strconv.Atoi(f[4])
		if err != nil {
			log.Error.Printf("malformed SA tag entry %q, skipping remaining entries", p)
			break
		}
		nm, err := strconv.Atoi(f[5])
		if err != nil {
			log.Error.Printf("malformed SA tag entry %q, skipping remaining entries", p)
			break
		}
		if len(f[2]) == 0 {
			log.Error.Printf("malformed SA tag entry %q, skipping remaining entries", p)
			break
		}
		entries = append(entries, SAEntry{
			Chrom:  f[0],
			Pos:    pos - 1, // SA tag positions are 1-based.
			Strand: f[2][0],
			Cigar:  f[3],
			MapQ:   mapq,
			NM:     nm,
		})
	}
	return entries
}

// HasExtendedTags reports whether the record carries the ZP tag, the signal
// InsertSizeEstimator uses to turn on InsertSizeEstimator.ExtendedTags.
func HasExtendedTags(a Alignment) bool {
	return a.HasTag(zpTag)
}

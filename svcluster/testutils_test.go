package svcluster

import "github.com/grailbio/hts/sam"

// newTestHeader returns a header whose references are assigned ids 0..n-1
// in the given name order, building *sam.Record fixtures by direct field
// assignment against a small fixed reference set.
func newTestHeader(names ...string) (*sam.Header, []*sam.Reference) {
	refs := make([]*sam.Reference, len(names))
	for i, n := range names {
		r, err := sam.NewReference(n, "", "", 1<<20, nil, nil)
		if err != nil {
			panic(err)
		}
		refs[i] = r
	}
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		panic(err)
	}
	return h, refs
}

func testRecord(name string, ref *sam.Reference, pos int, flags sam.Flags, mateRef *sam.Reference, matePos int, cigar sam.Cigar, seq string) *sam.Record {
	r := &sam.Record{
		Name:    name,
		Ref:     ref,
		Pos:     pos,
		MapQ:    40,
		Cigar:   cigar,
		Flags:   flags,
		MateRef: mateRef,
		MatePos: matePos,
	}
	if seq != "" {
		r.Seq = sam.NewSeq([]byte(seq))
		r.Qual = make([]byte, len(seq))
	}
	return r
}

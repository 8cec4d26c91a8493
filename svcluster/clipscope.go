package svcluster

import "github.com/grailbio/svcluster/util"

// clipSeqMaxMismatchFrac bounds the fraction of a clip's compared prefix
// that may differ, by Levenshtein distance, before a minimizer-matched
// candidate is rejected as a hash collision rather than a real shared
// breakpoint sequence.
const clipSeqMaxMismatchFrac = 0.2

// clipExactPosWindow bounds how close a posting's own clip position must
// be to the current call's position for that posting to count toward
// support -- a shared minimizer from a clip recorded far from the current
// cursor, even if still within Opts.MinimizerDist of the orientation
// queue, is not good evidence the two clips describe the same breakpoint.
const clipExactPosWindow = 7

// clipMaxPartners is the maximum number of partner nodes ClipScoper
// reports from a single Update call.
const clipMaxPartners = 5

type clipPosting struct {
	node int
	pos  int
	seq  []byte
}

type clipQueueItem struct {
	pos  int
	node int
}

type nodePair struct{ a, b int }

func makeNodePair(a, b int) nodePair {
	if a > b {
		a, b = b, a
	}
	return nodePair{a, b}
}

// ClipScoper links soft-clipped reads whose clipped tails share sequence,
// by matching each clip's minimizer set against an inverted index of every
// other recently seen clip's minimizers, per clip orientation (leading vs
// trailing). Support is recomputed fresh on every Update call from the
// postings whose own position falls within clipExactPosWindow of the
// current one: total_matches (every such posting, across every minimizer
// this clip shares) contributes half a point, and a candidate's own
// per-minimizer match count contributes the rest, so a single clip that
// happens to intersect the current one at many positions can promote a
// partner without waiting for repeated Update calls to accumulate state.
type ClipScoper struct {
	opts *Opts

	postings map[uint64][]clipPosting
	perNode  map[int][]uint64
	queue    map[byte][]clipQueueItem
	linked   map[nodePair]bool
}

// NewClipScoper returns an empty scoper.
func NewClipScoper(opts *Opts) *ClipScoper {
	return &ClipScoper{
		opts:     opts,
		postings: make(map[uint64][]clipPosting),
		perNode:  make(map[int][]uint64),
		queue:    make(map[byte][]clipQueueItem),
		linked:   make(map[nodePair]bool),
	}
}

// Update offers node's clip (at pos, with the given orientation, sequence
// and minimizer set) up to the scoper. It evicts postings that have fallen
// more than Opts.MinimizerDist behind pos, then -- unless the density
// guard suppresses the search -- matches the new minimizers against the
// surviving inverted index, scoring each candidate partner by support =
// total_matches/2 + target_counter[target] computed fresh from postings
// within clipExactPosWindow of pos, and returns up to clipMaxPartners node
// ids whose support crosses Opts.MinimizerSupportThresh and whose clip
// sequence actually resembles node's by edit distance. The clip's own
// minimizers are inserted into the index regardless of whether the guard
// suppressed the search.
func (c *ClipScoper) Update(orientation byte, node, pos int, seq []byte, minimizers map[uint64]struct{}) []int {
	c.evict(orientation, pos)

	var promoted []int
	if !c.densityGuarded(orientation, minimizers) {
		totalMatches := 0
		targetCounter := make(map[int]int)
		targetSeq := make(map[int][]byte)
		for hash := range minimizers {
			for _, p := range c.postings[hash] {
				if p.node == node {
					continue
				}
				if abs(p.pos-pos) >= clipExactPosWindow {
					continue
				}
				totalMatches++
				targetCounter[p.node]++
				targetSeq[p.node] = p.seq
			}
		}

		for target, count := range targetCounter {
			pair := makeNodePair(node, target)
			if c.linked[pair] {
				continue
			}
			support := float64(totalMatches)/2 + float64(count)
			if support < float64(c.opts.MinimizerSupportThresh) {
				continue
			}
			if !clipsResemble(seq, targetSeq[target]) {
				continue
			}
			c.linked[pair] = true
			promoted = append(promoted, target)
			if len(promoted) >= clipMaxPartners {
				break
			}
		}
	}

	for hash := range minimizers {
		c.postings[hash] = append(c.postings[hash], clipPosting{node: node, pos: pos, seq: seq})
	}
	c.perNode[node] = appendKeys(c.perNode[node], minimizers)
	c.queue[orientation] = append(c.queue[orientation], clipQueueItem{pos: pos, node: node})
	return promoted
}

// densityGuarded reports whether this clip's own minimizer count is
// anomalously large relative to the expected minimizer density of a read
// Opts.ReadLength long (2/(Opts.M+1) minimizers per base), scaled up by
// how crowded the orientation's current scope already is. A clip from a
// low-complexity or repetitive region produces far more distinct
// minimizers than a normal read of the same length would, and matching on
// all of them would merge unrelated breakpoints into one component; such
// a clip is still indexed, just not used to search for partners.
func (c *ClipScoper) densityGuarded(orientation byte, minimizers map[uint64]struct{}) bool {
	if c.opts.ReadLength <= 0 {
		return false
	}
	scopeLen := len(c.queue[orientation])
	threshold := (1 + 0.15*float64(scopeLen)) * float64(c.opts.ReadLength) * 2 / float64(c.opts.M+1)
	return float64(len(minimizers)) > threshold
}

// clipsResemble reports whether two clip sequences are close enough, by
// Levenshtein edit distance over their shared-length prefix, to trust a
// minimizer match as a real shared breakpoint sequence rather than a hash
// collision.
func clipsResemble(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return false
	}
	d := util.Levenshtein(string(a[:n]), string(b[:n]), "", "")
	return float64(d) <= clipSeqMaxMismatchFrac*float64(n)
}

func appendKeys(dst []uint64, m map[uint64]struct{}) []uint64 {
	for k := range m {
		dst = append(dst, k)
	}
	return dst
}

func (c *ClipScoper) evict(orientation byte, pos int) {
	q := c.queue[orientation]
	cut := 0
	for cut < len(q) && q[cut].pos < pos-c.opts.MinimizerDist {
		c.dropNode(q[cut].node)
		cut++
	}
	if cut > 0 {
		c.queue[orientation] = append([]clipQueueItem(nil), q[cut:]...)
	}
}

func (c *ClipScoper) dropNode(node int) {
	for _, hash := range c.perNode[node] {
		postings := c.postings[hash]
		for i, p := range postings {
			if p.node == node {
				postings = append(postings[:i], postings[i+1:]...)
				break
			}
		}
		if len(postings) == 0 {
			delete(c.postings, hash)
		} else {
			c.postings[hash] = postings
		}
	}
	delete(c.perNode, node)
}

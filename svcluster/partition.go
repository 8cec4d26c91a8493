package svcluster

// strongWeight is the minimum edge weight Partitioner treats as "strong"
// evidence: a breakpoint link (2) or a clip-minimizer link (3), never a
// site prior (0) or a template edge (1). Large connected components are
// split along strong edges only, because template edges alone would merge
// every read of a template into one blob regardless of which breakpoint it
// actually supports.
const strongWeight = 2

// Partitioner splits an oversized connected component of Graph into the
// sub-clusters that actually share strong evidence, the same BFS-over-a-
// filtered-edge-set shape a duplicate-family resolver uses to keep an
// over-merged cluster from swallowing unrelated reads.
type Partitioner struct {
	g *Graph
}

// NewPartitioner returns a partitioner over g.
func NewPartitioner(g *Graph) *Partitioner {
	return &Partitioner{g: g}
}

// GetPartitions splits nodes into groups connected by strong (weight >=
// strongWeight) edges only. Nodes with no strong edge to anything in
// nodes form their own singleton group.
func (p *Partitioner) GetPartitions(nodes []int) [][]int {
	in := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	seen := make(map[int]bool, len(nodes))
	var parts [][]int
	for _, start := range nodes {
		if seen[start] {
			continue
		}
		var part []int
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			part = append(part, u)
			for _, e := range p.g.Neighbors(u) {
				if e.Weight < strongWeight || !in[e.To] || seen[e.To] {
					continue
				}
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
		parts = append(parts, part)
	}
	return parts
}

// CountSupportBetween counts the strong edges directly joining a node in a
// to a node in b.
func (p *Partitioner) CountSupportBetween(a, b []int) int {
	bSet := make(map[int]bool, len(b))
	for _, n := range b {
		bSet[n] = true
	}
	count := 0
	for _, u := range a {
		for _, e := range p.g.Neighbors(u) {
			if e.Weight >= strongWeight && bSet[e.To] {
				count++
			}
		}
	}
	return count
}

// SupportNodesBetween reports the distinct endpoints of the strong edges
// directly joining a node in a to a node in b: the subset of a that reaches
// b, and the subset of b reached from a. Unlike CountSupportBetween, which
// BreakLargeComponent needs as a fast scalar for its merge threshold, this
// preserves node identity for a caller (Engine.Finalize) that has to hand a
// downstream SV classifier the actual evidence, not just a tally of it.
func (p *Partitioner) SupportNodesBetween(a, b []int) (sideA, sideB []int) {
	bSet := make(map[int]bool, len(b))
	for _, n := range b {
		bSet[n] = true
	}
	seenA := make(map[int]bool)
	seenB := make(map[int]bool)
	for _, u := range a {
		for _, e := range p.g.Neighbors(u) {
			if e.Weight < strongWeight || !bSet[e.To] {
				continue
			}
			if !seenA[u] {
				seenA[u] = true
				sideA = append(sideA, u)
			}
			if !seenB[e.To] {
				seenB[e.To] = true
				sideB = append(sideB, e.To)
			}
		}
	}
	return sideA, sideB
}

// SupportNodesWithin reports the nodes of part that carry at least one
// strong edge to another node also in part.
func (p *Partitioner) SupportNodesWithin(part []int) []int {
	nodes, _ := p.SupportNodesBetween(part, part)
	return nodes
}

// BreakLargeComponent splits component into pieces no larger than maxSize
// where possible. It first partitions along strong edges, then merges any
// resulting pieces that still show at least minSupport strong edges
// between them -- that much direct cross-support means the split was an
// artifact of BFS ordering, not a real separation of evidence. A component
// with no strong edges at all cannot be split further and is returned
// whole even if it exceeds maxSize.
func (p *Partitioner) BreakLargeComponent(component []int, maxSize, minSupport int) [][]int {
	if len(component) <= maxSize {
		return [][]int{component}
	}
	parts := p.GetPartitions(component)
	if len(parts) <= 1 {
		return [][]int{component}
	}

	parent := make([]int, len(parts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			if p.CountSupportBetween(parts[i], parts[j]) >= minSupport {
				union(i, j)
			}
		}
	}
	grouped := make(map[int][]int)
	for i, part := range parts {
		root := find(i)
		grouped[root] = append(grouped[root], part...)
	}

	var out [][]int
	for _, merged := range grouped {
		if len(merged) == len(component) {
			// Merging put everything back together; stop recursing to
			// avoid looping forever on a component with no real split.
			out = append(out, merged)
			continue
		}
		out = append(out, p.BreakLargeComponent(merged, maxSize, minSupport)...)
	}
	return out
}

package svcluster

import "sort"

const (
	flagRead1 = 0x40
	flagRead2 = 0x80
)

type templateItem struct {
	queryStart int
	node       int
	flag       uint16
}

// TemplateEdges buffers every classified alignment by template (QNAME)
// name until the whole template has been scanned, then links its pieces
// together: consecutive supplementary/primary alignments of the same mate,
// ordered by where they start in the query, get a weight-1 edge, and the
// two mates' primary alignments get a weight-1 edge of their own. This
// mirrors grouping every record of a read pair by QNAME before connecting
// them, the same aggregate-then-link shape as linking a read's primary and
// supplementary alignments into one family.
type TemplateEdges struct {
	byName map[string][]templateItem
}

// NewTemplateEdges returns an empty buffer.
func NewTemplateEdges() *TemplateEdges {
	return &TemplateEdges{byName: make(map[string][]templateItem)}
}

// Add records that node (a Graph node id) came from an alignment of
// template name, with the given 0-based query start offset and SAM flag.
func (t *TemplateEdges) Add(name string, queryStart, node int, flag uint16) {
	t.byName[name] = append(t.byName[name], templateItem{queryStart: queryStart, node: node, flag: flag})
}

// Flush drains every buffered template into g and clears the buffer. It is
// called once, at the end of a scan, since a template's pieces may be
// scattered arbitrarily far apart in a coordinate-sorted stream.
func (t *TemplateEdges) Flush(g *Graph) {
	for name, items := range t.byName {
		flushTemplate(g, items)
		delete(t.byName, name)
	}
}

func flushTemplate(g *Graph, items []templateItem) {
	var read1, read2 []templateItem
	for _, it := range items {
		switch {
		case it.flag&flagRead1 != 0:
			read1 = append(read1, it)
		case it.flag&flagRead2 != 0:
			read2 = append(read2, it)
		default:
			// Unpaired read: treat as its own mate group.
			read1 = append(read1, it)
		}
	}

	linkConsecutive(g, read1)
	linkConsecutive(g, read2)

	if p1, ok := primaryOf(read1); ok {
		if p2, ok := primaryOf(read2); ok {
			g.AddEdge(p1.node, p2.node, 1)
		}
	}
}

func linkConsecutive(g *Graph, items []templateItem) {
	if len(items) < 2 {
		return
	}
	sort.Slice(items, func(i, j int) bool { return items[i].queryStart < items[j].queryStart })
	for i := 1; i < len(items); i++ {
		g.AddEdge(items[i-1].node, items[i].node, 1)
	}
}

func primaryOf(items []templateItem) (templateItem, bool) {
	for _, it := range items {
		if it.flag&flagSecSupp == 0 {
			return it, true
		}
	}
	if len(items) > 0 {
		return items[0], true
	}
	return templateItem{}, false
}

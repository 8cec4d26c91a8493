/*Package svcluster implements the signal-extraction and read-association
  clustering core of a structural-variant discovery pipeline.

  It reads a coordinate-sorted stream of alignment records
  (GenomeScanner), classifies each record into a read-evidence kind
  (split, discordant pair, within-read indel, breakend), and
  incrementally builds an undirected weighted graph connecting reads
  that plausibly witness the same structural-variant event
  (PairedEndScoper, ClipScoper, TemplateEdges). Connected components of
  that graph are split by the Partitioner into candidate SV clusters
  for a downstream classifier.

  This package does not parse any specific alignment container format,
  classify variants, write VCF, or provide a command-line interface;
  those are the caller's responsibility. It assumes records are fed in
  the alignment stream's native order (reference, then position) and
  is not safe for concurrent use by a single Engine; a host that
  processes multiple samples concurrently should give each sample its
  own Engine.

  Components:

  GenomeScanner drives the scan. In whole-genome mode it tracks
  fractional coverage (CoverageTracker) and suppresses a read once the
  depth at its own start bin reaches a configured cap. It can run over
  the whole reference or be restricted to a set of regions, in which
  case it also discovers and fetches the regions implied by mate pairs
  and SA-tag partners, and the coverage cap does not apply.

  Engine.Add classifies each record (classify.go) into a ReadEnum and a
  breakpoint pair, creates a graph node for it, and links the node to
  prior nodes found by PairedEndScoper (breakpoint proximity) and
  ClipScoper (shared soft-clip minimizers). TemplateEdges links
  multiple records sharing a template (query) name; it is flushed once
  at the end of the scan. SiteAdder, if configured with a set of prior
  SV sites, injects synthetic nodes and edges near those loci.

  Partitioner resolves a graph connected component, which may span an
  entire structurally noisy locus, into one or more SV-candidate
  sub-groups by restricting traversal to "strong" (weight > 1) edges.
*/
package svcluster

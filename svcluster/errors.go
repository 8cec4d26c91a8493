package svcluster

import "errors"

// Sentinel errors for the fatal conditions the scanner can surface.
// Per-record problems (bad flags, missing CIGAR, a malformed SA tag) are
// never returned as errors; they are logged and counted instead.
var (
	// ErrCannotInferReadLength is returned when InsertSizeEstimator could not
	// find a single usable read length in the records it sampled (at most
	// insertSizeMaxRecords).
	ErrCannotInferReadLength = errors.New("svcluster: could not infer read length")

	// ErrNoReads is returned when the input alignment stream is empty.
	ErrNoReads = errors.New("svcluster: no reads in input stream")

	// ErrBufferOverflow is returned when the read-offset buffer used in the
	// absence of random access exceeds Opts.BufferSize.
	ErrBufferOverflow = errors.New("svcluster: read buffer overflow; input has no random access and exceeded BufferSize -- provide an indexed input or raise BufferSize")

	// ErrUnknownReferenceName is returned when a region or sites file names a
	// reference that is not present in the alignment stream's header.
	ErrUnknownReferenceName = errors.New("svcluster: unknown reference name")
)

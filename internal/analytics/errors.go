package analytics

import (
	"fmt"
)

// MalformedRecordError reports a sale record that could not be validated at
// the normalizer boundary: a missing or unparseable date, or a non-numeric
// amount field. The transformation aborts rather than silently skipping the
// record, so downstream artifacts are never built from partial input.
type MalformedRecordError struct {
	TransactionID string // offending record, if an id was readable
	Field         string // field that failed validation
	Line          int    // 1-based source line, 0 when not file-backed
	Err           error  // underlying parse error, may be nil
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed sale record %q: invalid %s", e.TransactionID, e.Field)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// EmptyDatasetError reports a reduction invoked with no eligible records,
// e.g. ABC classification over zero total revenue or RFM scoring with zero
// customers. It is structural and fatal to that artifact, but independent
// artifacts still complete.
type EmptyDatasetError struct {
	Artifact string
}

// Error implements the error interface.
func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("empty dataset: no eligible records for %s", e.Artifact)
}

// DegenerateQuantileWarning records a quantile scoring pass whose requested
// bin count collapsed because boundary values repeated. It is informational:
// scoring proceeds with the reduced bin count and a narrower score range.
type DegenerateQuantileWarning struct {
	Metric    string
	Requested int
	Got       int
}

func (w DegenerateQuantileWarning) String() string {
	return fmt.Sprintf("quantile bins for %s collapsed from %d to %d due to repeated values",
		w.Metric, w.Requested, w.Got)
}

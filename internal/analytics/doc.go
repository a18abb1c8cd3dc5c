// Package analytics implements the deterministic batch transformation that
// turns the raw retail sales ledger into three derived artifacts: a monthly
// sales rollup, a per-customer RFM segmentation and a per-product ABC
// revenue classification.
//
// The transformation is a pure function of an immutable input snapshot.
// Normalization runs once at the boundary and validates every record; the
// three reductions are independent and run concurrently, each owning its
// own accumulator, joined by the Engine.
package analytics

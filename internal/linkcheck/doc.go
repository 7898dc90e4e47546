// Package linkcheck holds the row-level semantics of a link check run: which
// cells are eligible for probing, how probe outcomes are rendered into the
// output table, and which failures abort a run versus being recorded as
// ERROR markers in a single cell.
//
// Network access is delegated to a Prober; this package never opens a
// connection itself.
package linkcheck

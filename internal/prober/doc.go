// Package prober issues the HEAD requests behind a link check. It owns the
// shared *http.Client, the per-request timeout and optional request pacing,
// and classifies every failure into a linkcheck.ErrorKind.
package prober

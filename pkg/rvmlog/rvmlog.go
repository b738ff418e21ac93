// Package rvmlog defines the logging seam every pass in the pipeline
// takes as a parameter; there is no package-level logger anywhere in the
// module. The seam is an interface so tests can substitute a recording
// logger.
package rvmlog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the minimal interface every pass depends on. Warnf is for
// recoverable oddities in the input; Debugf is for non-warning diagnostic
// detail (e.g. per-chunk parse tracing).
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Nop discards everything; useful as a default in tests and library
// callers that don't want log output.
type Nop struct{}

func (Nop) Warnf(string, ...any)  {}
func (Nop) Debugf(string, ...any) {}

// StdLogger adapts the standard library's log.Logger.
type StdLogger struct {
	*log.Logger
	Verbose bool
}

// NewStdLogger returns a StdLogger writing to stderr.
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{Logger: log.New(os.Stderr, "", log.LstdFlags), Verbose: verbose}
}

func (l *StdLogger) Warnf(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if l.Verbose {
		l.Printf("DEBUG "+format, args...)
	}
}

// Deduper wraps a Logger and de-duplicates Warnf calls by a
// caller-supplied id, so each unique id is reported once per run. WarnOnce
// is the method callers use instead of Warnf directly when the warning
// has a natural identity (an unrecognized material id, an unrecognized
// color name).
type Deduper struct {
	Logger
	mu   sync.Mutex
	seen map[string]bool
}

// NewDeduper wraps inner with de-duplication state.
func NewDeduper(inner Logger) *Deduper {
	return &Deduper{Logger: inner, seen: make(map[string]bool)}
}

// WarnOnce logs a warning the first time id is seen and is silent on
// subsequent calls with the same id.
func (d *Deduper) WarnOnce(id, format string, args ...any) {
	d.mu.Lock()
	already := d.seen[id]
	d.seen[id] = true
	d.mu.Unlock()
	if already {
		return
	}
	d.Warnf(format, args...)
}

// String is a convenience for building warning ids out of multiple parts.
func String(parts ...any) string {
	return fmt.Sprint(parts...)
}

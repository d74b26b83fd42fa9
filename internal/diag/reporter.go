package diag

import (
	"log/slog"
	"sync"
)

// Reporter receives diagnostics as binders emit them.
// Implementations must not panic; binding continues regardless of what the
// reporter does with a finding.
type Reporter interface {
	Report(d Diagnostic)
}

// SlogReporter logs diagnostics through a slog.Logger.
type SlogReporter struct {
	Logger *slog.Logger
}

// NewSlogReporter creates a reporter on the given logger.
// A nil logger falls back to slog.Default.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	return &SlogReporter{Logger: logger}
}

// Report implements Reporter.
func (r *SlogReporter) Report(d Diagnostic) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{
		slog.String("code", d.Code),
		slog.String("category", string(d.Category)),
		slog.String("unit", d.Unit),
		slog.String("construct", d.Construct),
	}
	if d.Wrapped != nil {
		attrs = append(attrs, slog.Any("error", d.Wrapped))
	}

	if d.Category == CategoryRuntime {
		logger.Error(d.Message, attrs...)
	} else {
		logger.Warn(d.Message, attrs...)
	}
}

// CollectReporter accumulates diagnostics in memory.
// Used by units to retain their findings and by tests to assert on them.
type CollectReporter struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report implements Reporter.
func (r *CollectReporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// All returns a copy of the collected diagnostics in emission order.
func (r *CollectReporter) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// ByCode returns collected diagnostics matching a code.
func (r *CollectReporter) ByCode(code string) []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of collected diagnostics.
func (r *CollectReporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.diags)
}

// MultiReporter fans a diagnostic out to several reporters.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

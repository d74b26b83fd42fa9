// Package diag provides structured diagnostics for state binding.
//
// Binders never fail hard on a misdeclared field: they emit a coded
// diagnostic and continue with a defined fallback, so a misconfigured
// declaration still produces a usable unit. Diagnostics flow through a
// Reporter so the binding logic never depends on an output channel; the
// default reporter logs via log/slog and units additionally collect their
// own diagnostics for inspection.
package diag

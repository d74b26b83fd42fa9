package state

import (
	"testing"

	"github.com/reago-dev/reago/internal/diag"
)

// quietUnit binds a declaration with diagnostics collected instead of
// logged.
func quietUnit(t *testing.T, decl *Declaration, opts ...Option) *Unit {
	t.Helper()
	opts = append(opts, WithReporter(&diag.CollectReporter{}))
	u := NewUnit(decl, opts...)
	t.Cleanup(u.Destroy)
	return u
}

// countCode counts the unit's diagnostics with the given code.
func countCode(u *Unit, code string) int {
	n := 0
	for _, d := range u.Diagnostics() {
		if d.Code == code {
			n++
		}
	}
	return n
}

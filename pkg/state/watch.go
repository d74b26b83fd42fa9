package state

import (
	"fmt"
	"strings"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/reactive"
)

// Unwatch tears down a subscription created by Watch. Idempotent: calling
// it again after the first call has no effect.
type Unwatch func()

// bindWatches normalizes the declared change observations into Watch
// calls. A list handler creates one subscription per element.
func (u *Unit) bindWatches() {
	for _, spec := range u.decl.Watches {
		if list, ok := spec.Handler.([]any); ok {
			for _, h := range list {
				u.createWatcher(spec.Expr, h, nil)
			}
			continue
		}
		u.createWatcher(spec.Expr, spec.Handler, nil)
	}
}

// createWatcher resolves one declared handler shape (options record with
// embedded handler, method-name string, or callback) and delegates to
// Watch.
func (u *Unit) createWatcher(exprOrFn any, handler any, opts *WatchOptions) Unwatch {
	switch h := handler.(type) {
	case WatchOptions:
		opts = &h
		handler = h.Handler
	case *WatchOptions:
		if h != nil {
			opts = h
			handler = h.Handler
		}
	}

	if name, ok := handler.(string); ok {
		m, found := u.methods[name]
		if !found {
			u.report(diag.Diagnostic{
				Code:      diag.CodeWatchMethodMissing,
				Category:  diag.CategoryDeclaration,
				Construct: fmt.Sprintf("watch %v", exprOrFn),
				Message:   fmt.Sprintf("watch handler %q is not a method of this unit", name),
			})
			return func() {}
		}
		handler = Handler(func(_ *Unit, newVal, oldVal any) {
			m(newVal, oldVal)
		})
	}

	return u.Watch(exprOrFn, handler, opts)
}

// Watch subscribes a callback to a read expression.
//
// exprOrFn is either a dotted path string resolved against the instance
// surface or a getter function. cb is the callback, or in the alternate
// calling convention a WatchOptions record carrying the handler, in which
// case the declared-watch creation path is taken.
//
// With Immediate set, the callback fires synchronously with the current
// value before Watch returns; a panic in it is reported, not propagated.
//
// The returned teardown removes the subscription from every dependency it
// joined and is idempotent. Destroying the unit tears the subscription
// down as well.
func (u *Unit) Watch(exprOrFn any, cb any, opts *WatchOptions) Unwatch {
	// Alternate calling convention: the callback slot holds an options
	// record with the real handler embedded.
	switch rec := cb.(type) {
	case WatchOptions:
		return u.createWatcher(exprOrFn, rec, nil)
	case *WatchOptions:
		if rec != nil {
			return u.createWatcher(exprOrFn, rec, nil)
		}
	}

	handler := asHandler(cb)
	if handler == nil {
		u.report(diag.Diagnostic{
			Code:      diag.CodeWatchHandler,
			Category:  diag.CategoryDeclaration,
			Construct: fmt.Sprintf("watch %v", exprOrFn),
			Message:   fmt.Sprintf("unsupported watch handler type %T", cb),
		})
		return func() {}
	}

	if opts == nil {
		opts = &WatchOptions{}
	}

	getter, expression, ok := u.resolveExpression(exprOrFn)
	if !ok {
		u.report(diag.Diagnostic{
			Code:      diag.CodeWatchHandler,
			Category:  diag.CategoryDeclaration,
			Construct: fmt.Sprintf("watch %v", exprOrFn),
			Message:   fmt.Sprintf("unsupported watch expression type %T", exprOrFn),
		})
		return func() {}
	}

	w := reactive.NewWatcher(
		u.scope,
		func() any { return getter(u) },
		func(newVal, oldVal any) { handler(u, newVal, oldVal) },
		reactive.WatcherOptions{
			Deep:       opts.Deep,
			Sync:       opts.Sync,
			User:       true,
			Expression: expression,
			OnError: func(err error, context string) {
				u.report(diag.Diagnostic{
					Code:      diag.CodeWatchCallback,
					Category:  diag.CategoryRuntime,
					Construct: context,
					Message:   "watch failed",
					Wrapped:   err,
				})
			},
		},
	)

	if opts.Immediate {
		func() {
			defer func() {
				if r := recover(); r != nil {
					u.report(diag.Diagnostic{
						Code:      diag.CodeWatchCallback,
						Category:  diag.CategoryRuntime,
						Construct: fmt.Sprintf("callback for immediate watcher %q", expression),
						Message:   "immediate watch callback failed",
						Wrapped:   recoveredError(r),
					})
				}
			}()
			handler(u, w.Value(), nil)
		}()
	}

	return func() { w.Teardown() }
}

// asHandler accepts the callback shapes Watch supports.
func asHandler(cb any) Handler {
	switch h := cb.(type) {
	case Handler:
		return h
	case func(u *Unit, newVal, oldVal any):
		return h
	case func(newVal, oldVal any):
		return func(_ *Unit, newVal, oldVal any) { h(newVal, oldVal) }
	default:
		return nil
	}
}

// resolveExpression turns a watch expression into a getter.
func (u *Unit) resolveExpression(exprOrFn any) (Getter, string, bool) {
	switch expr := exprOrFn.(type) {
	case string:
		return pathGetter(expr), expr, true
	case Getter:
		return expr, "fn", true
	case func(u *Unit) any:
		return expr, "fn", true
	default:
		return nil, "", false
	}
}

// pathGetter builds a getter that walks a dotted path, starting on the
// instance surface and descending through nested stores and maps. Missing
// segments resolve to nil without error so a watch can observe state that
// appears later.
func pathGetter(path string) Getter {
	segments := strings.Split(path, ".")
	return func(u *Unit) any {
		var current any = u.Get(segments[0])
		for _, seg := range segments[1:] {
			switch v := current.(type) {
			case *reactive.Store:
				current = v.Get(seg)
			case map[string]any:
				current = v[seg]
			default:
				return nil
			}
		}
		return current
	}
}

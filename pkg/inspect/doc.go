// Package inspect exposes live units to external tooling: an HTTP API for
// snapshot reads, a WebSocket stream of state changes, and a Prometheus
// collector over the dependency-graph counters.
//
// Units opt in by registering under a name:
//
//	registry := inspect.NewRegistry()
//	release, _ := registry.Register("cart", cartUnit)
//	defer release()
//
//	srv := inspect.NewServer(registry, nil)
//	go srv.ListenAndServe(ctx)
//
// The inspector is a development and operations aid; nothing in the state
// layer depends on it.
package inspect

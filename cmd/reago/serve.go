package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reago-dev/reago/pkg/inspect"
	"github.com/reago-dev/reago/pkg/state"
)

func serveCmd() *cobra.Command {
	var (
		address string
		demo    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the state inspector",
		Long: `Serve runs the inspection API over registered units.

With --demo a self-mutating clock unit is registered so the endpoints
have something to show:

  GET /units               registered unit names and graph counters
  GET /units/{name}        one unit's snapshot
  GET /units/{name}/live   WebSocket stream of state changes
  GET /metrics             Prometheus scrape
  GET /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(address, demo)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", ":7077", "Listen address")
	cmd.Flags().BoolVar(&demo, "demo", true, "Register a demo unit")

	return cmd
}

func runServe(address string, demo bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	registry := inspect.NewRegistry()

	if demo {
		u := newDemoUnit(logger)
		defer u.Destroy()

		release, err := registry.Register("clock", u)
		if err != nil {
			return err
		}
		defer release()

		go tickDemoUnit(ctx, u)
		success("demo unit registered as %q", "clock")
	}

	srv := inspect.NewServer(registry, &inspect.ServerConfig{
		Address: address,
		Logger:  logger,
	})

	success("inspector listening on %s", address)
	return srv.ListenAndServe(ctx)
}

// newDemoUnit builds a clock unit: a ticking field, a derived formatted
// view and a watch that logs each minute rollover.
func newDemoUnit(logger *slog.Logger) *state.Unit {
	decl := &state.Declaration{
		Name:   "clock",
		Inputs: []state.InputSpec{{Name: "label", Type: state.KindString, Default: "demo"}},
		Fields: state.Fields(map[string]any{"ticks": 0}),
		Derived: []state.DerivedSpec{
			state.Derived("uptime", func(u *state.Unit) any {
				return (time.Duration(u.Int("ticks")) * time.Second).String()
			}),
			state.Derived("minutes", func(u *state.Unit) any {
				return u.Int("ticks") / 60
			}),
		},
		Methods: []state.MethodSpec{
			{Name: "tick", Fn: func(u *state.Unit, args ...any) any {
				u.Set("ticks", u.Int("ticks")+1)
				return u.Int("ticks")
			}},
		},
		Watches: []state.WatchSpec{
			{Expr: "minutes", Handler: func(u *state.Unit, newVal, oldVal any) {
				logger.Info("minute rollover", "minutes", newVal)
			}},
		},
	}

	return state.NewUnit(decl, state.WithName("clock"))
}

// tickDemoUnit advances the clock once per second until the context ends.
func tickDemoUnit(ctx context.Context, u *state.Unit) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.Call("tick")
		}
	}
}

package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/reago-dev/reago/internal/diag"
	"github.com/reago-dev/reago/pkg/state"
)

func benchCmd() *cobra.Command {
	var (
		widths []int
		depths []int
		iters  int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure change propagation across dependency graphs",
		Long: `Bench builds synthetic units whose derived values chain on each other
(width independent chains, each depth levels deep, all rooted on one
field), then measures the wall time of a source write followed by a full
re-read at every chain tip.

Examples:
  reago bench
  reago bench --widths 1,10,100 --depths 1,10 --iters 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(widths, depths, iters)
		},
	}

	cmd.Flags().IntSliceVar(&widths, "widths", []int{1, 10, 100}, "Chain counts to benchmark")
	cmd.Flags().IntSliceVar(&depths, "depths", []int{1, 10, 100}, "Chain depths to benchmark")
	cmd.Flags().IntVar(&iters, "iters", 100, "Writes per configuration")

	return cmd
}

func runBench(widths, depths []int, iters int) error {
	tbl := table.NewWriter()
	tbl.SetTitle("Derived-value propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"graph", "avg", "min", "p75", "p99", "max"})

	for _, w := range widths {
		for _, d := range depths {
			calc, err := benchGraph(w, d, iters)
			if err != nil {
				return err
			}
			tbl.AppendRow(table.Row{
				fmt.Sprintf("propagate: %d * %d", w, d),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}

	tbl.Render()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Printf("\n  Heap alloc:   %s\n", humanize.Bytes(mem.HeapAlloc))
	fmt.Printf("  Total alloc:  %s\n", humanize.Bytes(mem.TotalAlloc))
	fmt.Printf("  GC cycles:    %d\n", mem.NumGC)

	return nil
}

// benchGraph builds one unit with width chains of depth derived values over
// a single source field and times iters write-and-read-all rounds.
func benchGraph(width, depth, iters int) (*tachymeter.Metrics, error) {
	decl := &state.Declaration{
		Name:   fmt.Sprintf("bench-%dx%d", width, depth),
		Fields: state.Fields(map[string]any{"src": 0}),
	}

	tips := make([]string, 0, width)
	for i := 0; i < width; i++ {
		prev := "src"
		for j := 0; j < depth; j++ {
			name := fmt.Sprintf("c%d_%d", i, j)
			dep := prev
			decl.Derived = append(decl.Derived, state.Derived(name, func(u *state.Unit) any {
				return u.Int(dep) + 1
			}))
			prev = name
		}
		tips = append(tips, prev)
	}

	collected := &diag.CollectReporter{}
	u := state.NewUnit(decl, state.WithReporter(collected))
	defer u.Destroy()
	if collected.Len() != 0 {
		return nil, fmt.Errorf("benchmark declaration failed to bind: %v", collected.All()[0])
	}

	// Warm the caches so the timed rounds measure invalidation, not the
	// first computation.
	for _, tip := range tips {
		u.Get(tip)
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		u.Set("src", i+1)
		for _, tip := range tips {
			u.Get(tip)
		}
		tach.AddTime(time.Since(start))
	}

	return tach.Calc(), nil
}

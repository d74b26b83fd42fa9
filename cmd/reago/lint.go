package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/reago-dev/reago/internal/diag"
)

func lintCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "lint <manifest.yaml> [more manifests...]",
		Short: "Check declaration manifests for binding conflicts",
		Long: `Lint statically checks declaration manifests for the conflicts the
binder would flag at runtime: duplicate names, reserved names, and
collisions between inputs, fields, derived values and methods.

Exit status is 1 when any finding is reported.

Examples:
  reago lint counter.yaml
  reago lint manifests/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the findings table, set exit status only")

	return cmd
}

func runLint(paths []string, quiet bool) error {
	var findings []diag.Diagnostic

	for _, path := range paths {
		m, err := LoadManifest(path)
		if err != nil {
			return err
		}
		findings = append(findings, m.Declaration().Lint()...)
	}

	if len(findings) == 0 {
		if !quiet {
			success("%d manifest(s) checked, no conflicts", len(paths))
		}
		return nil
	}

	if !quiet {
		tbl := table.NewWriter()
		tbl.SetOutputMirror(os.Stdout)
		tbl.AppendHeader(table.Row{"code", "unit", "construct", "message"})
		for _, f := range findings {
			tbl.AppendRow(table.Row{f.Code, f.Unit, f.Construct, f.Message})
		}
		tbl.Render()
	}

	return fmt.Errorf("%d conflict(s) found", len(findings))
}

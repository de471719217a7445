package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/assessor/internal/domain/patterns"
)

type patternReport struct {
	File          string               `json:"file"`
	Violations    []patterns.Violation `json:"violations"`
	Count         int                  `json:"count"`
	PenaltyPoints float64              `json:"penalty_points"`
}

func newPatternsCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns FILE",
		Short: "Scan a file for code anti-patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			engine, err := st.engineFor(cmd.Context())
			if err != nil {
				return err
			}
			violations := engine.DetectPatternViolations(string(raw))
			report := patternReport{
				File:          args[0],
				Violations:    violations,
				Count:         len(violations),
				PenaltyPoints: engine.CalculatePatternPenalty(violations),
			}
			if report.Violations == nil {
				report.Violations = []patterns.Violation{}
			}
			if st.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printPatternReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printPatternReport(w io.Writer, r patternReport) {
	if r.Count == 0 {
		fmt.Fprintf(w, "%s: no anti-patterns found\n", r.File)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tSEVERITY\tPATTERN\tCODE")
	for _, v := range r.Violations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.Line, v.Severity, v.Pattern, v.Code)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d violations, %.0f penalty points\n", r.Count, r.PenaltyPoints)
}

func newRulesCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active anti-pattern rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := st.engineFor(cmd.Context())
			if err != nil {
				return err
			}
			rules := engine.Rules()
			if st.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rules)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSEVERITY\tDESCRIPTION")
			for _, r := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Severity, r.Description)
			}
			return tw.Flush()
		},
	}
}

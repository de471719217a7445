package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/assessor/internal/domain/model"
)

const defaultCandidate = "cli"

// submissionFlags are shared by run and remote.
type submissionFlags struct {
	paths     []string
	subType   string
	candidate string
}

func (f *submissionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.paths, "path", []string{
		string(model.PathTechnical), string(model.PathDesign),
		string(model.PathCollaboration), string(model.PathProblemSolving),
	}, "assessment paths to evaluate (comma separated)")
	cmd.Flags().StringVar(&f.subType, "type", string(model.SubmissionCode), "submission type: code, text or project")
	cmd.Flags().StringVar(&f.candidate, "candidate", defaultCandidate, "candidate id; defaults to the file name when several files are given")
}

// inputs reads each file into its own submission.
func (f *submissionFlags) inputs(files []string) ([]model.AssessmentInput, error) {
	subType := model.SubmissionType(strings.ToLower(strings.TrimSpace(f.subType)))
	key, err := contentKey(subType)
	if err != nil {
		return nil, err
	}
	paths := make([]model.PathType, 0, len(f.paths))
	for _, p := range f.paths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, model.PathType(p))
		}
	}

	out := make([]model.AssessmentInput, 0, len(files))
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		candidate := f.candidate
		if len(files) > 1 && candidate == defaultCandidate {
			candidate = filepath.Base(file)
		}
		out = append(out, model.AssessmentInput{
			CandidateID:     candidate,
			SubmissionType:  subType,
			Content:         map[string]any{key: string(raw)},
			PathsToEvaluate: paths,
		})
	}
	return out, nil
}

func contentKey(t model.SubmissionType) (string, error) {
	switch t {
	case model.SubmissionCode:
		return "code", nil
	case model.SubmissionText:
		return "text", nil
	case model.SubmissionProject:
		return "content", nil
	default:
		return "", fmt.Errorf("unknown submission type %q", t)
	}
}

func newRunCommand(st *state) *cobra.Command {
	var flags submissionFlags
	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Assess files locally",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := flags.inputs(args)
			if err != nil {
				return err
			}
			engine, err := st.engineFor(cmd.Context())
			if err != nil {
				return err
			}
			results := make([]*model.AssessmentResult, 0, len(inputs))
			for _, in := range inputs {
				res, err := engine.Assess(cmd.Context(), in)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			return printResults(cmd.OutOrStdout(), args, results, st.jsonOut)
		},
	}
	flags.register(cmd)
	return cmd
}

func printResults(w io.Writer, files []string, results []*model.AssessmentResult, asJSON bool) error {
	if asJSON {
		if len(results) == 1 {
			return writeJSON(w, results[0])
		}
		return writeJSON(w, results)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printResult(w, files[i], res)
	}
	return nil
}

func printResult(w io.Writer, file string, res *model.AssessmentResult) {
	dominant := "none"
	if res.DominantPath != nil {
		dominant = res.DominantPath.Title()
	}
	fmt.Fprintf(w, "== %s (candidate %s)\n", file, res.CandidateID)
	fmt.Fprintf(w, "Overall: %.1f  Confidence: %.2f  Dominant: %s\n", res.OverallScore, res.Confidence, dominant)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ps := range res.PathScores {
		fmt.Fprintf(tw, "  %s\t%.1f\n", ps.Path.Title(), ps.OverallScore)
		for _, m := range ps.Metrics {
			fmt.Fprintf(tw, "    %s\t%.1f\n", m.Name, m.Score)
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Summary: %s\n", res.Summary)
	printList(w, "Key findings", res.KeyFindings)
	printList(w, "Recommendations", res.Recommendations)
	if checks, ok := patternChecks(res.Metadata); ok && checks.Enabled {
		fmt.Fprintf(w, "Pattern checks: %d violations, %.0f penalty points\n", checks.ViolationCount, checks.PenaltyPoints)
	}
}

// patternChecks reads the pattern-check block from local results, where it is
// a struct, and from decoded remote results, where it is a generic map.
func patternChecks(meta map[string]any) (model.PatternCheckSummary, bool) {
	switch v := meta[model.MetaPatternChecks].(type) {
	case model.PatternCheckSummary:
		return v, true
	case *model.PatternCheckSummary:
		if v == nil {
			return model.PatternCheckSummary{}, false
		}
		return *v, true
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return model.PatternCheckSummary{}, false
		}
		var out model.PatternCheckSummary
		if err := json.Unmarshal(raw, &out); err != nil {
			return model.PatternCheckSummary{}, false
		}
		return out, true
	default:
		return model.PatternCheckSummary{}, false
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

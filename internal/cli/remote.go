package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/assessor/internal/adapters/http/client"
	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/pkg/logger"
)

const defaultRemoteURL = "http://localhost:8080"

func newRemoteCommand(st *state) *cobra.Command {
	var (
		flags   submissionFlags
		url     string
		apiKey  string
		timeout time.Duration
		workers int
	)
	cmd := &cobra.Command{
		Use:   "remote FILE...",
		Short: "Assess files on a running assessor service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := flags.inputs(args)
			if err != nil {
				return err
			}
			if apiKey == "" {
				apiKey = st.cfg.APIKey
			}
			c := client.New(url, client.WithAPIKey(apiKey), client.WithTimeout(timeout))

			batch := c.AssessAll(cmd.Context(), inputs, workers)
			results := make([]*model.AssessmentResult, 0, len(batch))
			files := make([]string, 0, len(batch))
			var errs []error
			for _, b := range batch {
				if b.Err != nil {
					st.log.Error(cmd.Context(), "remote assessment failed",
						logger.String("file", args[b.Index]), logger.Error(b.Err))
					errs = append(errs, fmt.Errorf("%s: %w", args[b.Index], b.Err))
					continue
				}
				results = append(results, b.Result)
				files = append(files, args[b.Index])
			}
			if err := printResults(cmd.OutOrStdout(), files, results, st.jsonOut); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&url, "url", defaultRemoteURL, "base URL of the assessor service")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (defaults to the configured api_key)")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	cmd.Flags().IntVar(&workers, "workers", client.DefaultWorkers, "concurrent requests")
	return cmd
}

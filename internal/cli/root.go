// Package cli implements the assess command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/assessor/internal/app"
	"github.com/okian/assessor/internal/config"
	"github.com/okian/assessor/pkg/logger"
)

const defaultCLILogLevel = "warn"

// state is shared by every subcommand of one root command.
type state struct {
	configPath string
	jsonOut    bool
	logLevel   string

	cfg    *config.Config
	log    logger.Logger
	engine *app.Engine
}

// NewRootCommand builds the assess command tree.
func NewRootCommand() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "assess",
		Short:         "Score submissions and scan code for anti-patterns",
		Long:          "assess runs the assessment engine locally or against a running assessor service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&st.configPath, "config", "", "YAML config file (defaults to $ASSESSOR_CONFIG)")
	flags.BoolVar(&st.jsonOut, "json", false, "print JSON instead of a human summary")
	flags.StringVar(&st.logLevel, "log-level", defaultCLILogLevel, "log level: debug, info, warn, error")

	root.AddCommand(
		newRunCommand(st),
		newPatternsCommand(st),
		newRulesCommand(st),
		newRemoteCommand(st),
	)
	return root
}

// Execute runs the command tree against os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func (st *state) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := st.configPath
	if path == "" {
		path = os.Getenv("ASSESSOR_CONFIG")
	}
	cfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	st.cfg = cfg

	st.log = logger.New(logger.WithOutput(cmd.ErrOrStderr()), logger.WithJSON(cfg.LogJSON)).Named("cli")
	if err := logger.SetLevelString(st.logLevel); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", st.logLevel, err)
	}
	return nil
}

// engineFor builds the engine on first use so remote commands never touch
// council credentials.
func (st *state) engineFor(ctx context.Context) (*app.Engine, error) {
	if st.engine != nil {
		return st.engine, nil
	}
	e, err := app.FromConfig(ctx, st.cfg, st.log)
	if err != nil {
		return nil, err
	}
	st.engine = e
	return e, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

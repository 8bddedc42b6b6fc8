package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"tabrefresh/internal/refresh"
	"tabrefresh/lib/telemetry"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	dumpDir    string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tabrefresh",
		Short: "tabrefresh triggers an extract refresh of a Tableau data source.",
		Long: `tabrefresh signs in to a Tableau server, finds the configured project,
queues an extract refresh of the configured data source in it and signs out.

Settings come from the environment (TABLEAU_SERVER_URL, TABLEAU_SITE_NAME,
TABLEAU_USERNAME, TABLEAU_PASSWORD, TABLEAU_PROJECT_NAME,
TABLEAU_DATA_SOURCE_NAME, TABLEAU_API_VERSION) and fall back to the config file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(telemetry.NewLogger(cmd.ErrOrStderr(), opts.verbose))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "tabrefresh.json5", "config file, a .local.json5 next to it overrides it")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")
	flags.StringVar(&opts.dumpDir, "dump-http", "", "write every http message (credentials redacted) into this directory")

	rootCmd.AddCommand(newProjectsCmd(opts))
	return rootCmd
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runRefresh(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	base, err := refresh.LoadFile(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := refresh.Resolve(os.LookupEnv, base)
	if err != nil {
		return err
	}

	api, err := newAPI(ctx, cfg, opts.dumpDir)
	if err != nil {
		return err
	}
	err = refresh.Run(ctx, cfg, api)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		cmd.OutOrStdout(),
		"refresh of '%s' in project '%s' queued\n",
		cfg.DataSourceName, cfg.ProjectName,
	)
	return nil
}

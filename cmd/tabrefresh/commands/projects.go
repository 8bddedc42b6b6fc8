package commands

import (
	"os"
	"tabrefresh/internal/refresh"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newProjectsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "Prints the projects visible on the configured site.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			base, err := refresh.LoadFile(opts.configPath)
			if err != nil {
				return err
			}
			cfg, err := refresh.ResolveConnection(os.LookupEnv, base)
			if err != nil {
				return err
			}
			api, err := newAPI(ctx, cfg, opts.dumpDir)
			if err != nil {
				return err
			}
			projects, err := refresh.Projects(ctx, cfg, api)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Parent"})
			for _, p := range projects {
				t.AppendRow(table.Row{p.ID, p.Name, p.ParentProjectID})
			}
			t.Render()
			return nil
		},
	}
}

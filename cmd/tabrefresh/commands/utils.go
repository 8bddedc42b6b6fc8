package commands

import (
	"context"
	"io"
	"log/slog"
	"tabrefresh/internal/refresh"
	"tabrefresh/lib/restyutil"
	"tabrefresh/lib/tableau"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func newAPI(ctx context.Context, cfg refresh.Config, dumpDir string) (*tableau.Client, error) {
	if dumpDir == "" {
		return refresh.NewAPI(cfg, nil)
	}
	output, err := restyutil.NewFilesystemOutput(dumpDir)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "dumping http messages", "dir", output.Dir())
	return refresh.NewAPI(cfg, output)
}

package main

import (
	"context"
	"os"
	"tabrefresh/cmd/tabrefresh/commands"
	"tabrefresh/lib/osutil"
	"tabrefresh/lib/telemetry"
	"tabrefresh/lib/util/serviceutil"
)

func main() {
	ctx := context.Background()

	tel, err := telemetry.SetupFromEnv(ctx, "tabrefresh")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InitSlog(false)

	runCtx, stop := osutil.InterruptContext(ctx)
	code := commands.ExecuteContext(runCtx)
	stop()
	tel.Shutdown(ctx)
	if code != 0 {
		os.Exit(code)
	}
}

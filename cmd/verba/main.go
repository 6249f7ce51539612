package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"verba/internal/cli"
	"verba/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &cli.Dependencies{}
	if err := cli.NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		output.NewFormatter(os.Stderr).Error(err.Error())
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/yndnr/webstash-go/internal/cli/command"
	"github.com/yndnr/webstash-go/internal/infra/shutdown"
)

func main() {
	h := shutdown.NewHandler(5 * time.Second)
	ctx, stop := h.Context(context.Background())

	err := command.App(command.WithShutdown(h)).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}

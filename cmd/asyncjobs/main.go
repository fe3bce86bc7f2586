package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/xraph/asyncjobs/cmd/asyncjobs/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.App(os.Stdout, os.Stderr)
	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// Package main is the entry point for the schemigrate CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/satishbabariya/schemigrate/cmd/schemigrate/commands"
	"github.com/satishbabariya/schemigrate/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		if !commands.IsSilent(err) {
			ui.PrintError("%v", err)
		}
		stop()
		os.Exit(commands.ExitCode(err))
	}
}

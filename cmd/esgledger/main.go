package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/esgledger/internal/cli"
	"github.com/rshade/esgledger/internal/emissions"
	"github.com/rshade/esgledger/internal/units"
	"github.com/rshade/esgledger/pkg/version"
)

// Exit codes.
const (
	exitError        = 1
	exitIncompatible = 2
)

func main() {
	if err := run(); err != nil {
		os.Exit(exitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetFullVersion())
	return root.ExecuteContext(ctx)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, units.ErrIncompatibleUnits) || errors.Is(err, emissions.ErrIncompatibleUnit) {
		return exitIncompatible
	}
	return exitError
}

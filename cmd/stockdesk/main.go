// Command stockdesk is a terminal client for the inventory and offer dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/cli"
	"github.com/rshade/stockdesk/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev" //nolint:gochecknoglobals // Set by the linker.

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitAuthRequire = 2
	exitBadConfig   = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return extractExitCode(err)
}

// extractExitCode maps an error to the process exit code.
func extractExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, api.ErrAuthRequired):
		return exitAuthRequire
	case errors.Is(err, config.ErrInvalidConfig):
		return exitBadConfig
	default:
		return exitError
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "storefront",
		Usage:   "storefront backend-for-frontend with a session cart store",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			discoverCommand(),
		},
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

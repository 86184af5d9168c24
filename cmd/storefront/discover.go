package main

import (
	"fmt"

	"github.com/dwikikusuma/storefront/internal/backend"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/urfave/cli/v2"
)

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "probe the candidate backend ports and print the API base URL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: backend.DefaultHost, EnvVars: []string{"BACKEND_HOST"}},
			&cli.IntSliceFlag{Name: "ports", Value: cli.NewIntSlice(backend.DefaultPorts...), EnvVars: []string{"BACKEND_PORTS"}},
			&cli.IntFlag{Name: "fallback", Value: backend.DefaultFallbackPort, EnvVars: []string{"BACKEND_FALLBACK_PORT"}},
			&cli.DurationFlag{Name: "timeout", Value: backend.DefaultProbeTimeout, EnvVars: []string{"BACKEND_PROBE_TIMEOUT"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Action: func(c *cli.Context) error {
			level := "warn"
			if c.Bool("verbose") {
				level = "debug"
			}
			log := logger.New(logger.Options{
				Service:   "storefront-discover",
				Level:     level,
				Format:    "text",
				Output:    c.App.ErrWriter,
				AddSource: false,
			})

			port := backend.Discover(c.Context, backend.DiscoveryOptions{
				Host:         c.String("host"),
				Ports:        c.IntSlice("ports"),
				Fallback:     c.Int("fallback"),
				ProbeTimeout: c.Duration("timeout"),
			}, log)

			_, err := fmt.Fprintln(c.App.Writer, backend.BaseURL("http", c.String("host"), port))
			return err
		},
	}
}

// Package main implements the sathub command line interface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	// Import connector package to register all connectors
	_ "github.com/eoforge/sathub/pkg/connector"
)

// Version is the sathub release version.
const Version = "1.0.0"

func main() {
	app := &cli.App{
		Name:    "sathub",
		Usage:   "query satellite imagery hubs, download scenes and quicklooks",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if c.Bool("verbose") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			searchCommand(),
			downloadCommand(),
			quicklookCommand(),
			indexCommand(),
			{
				Name:  "hubs",
				Usage: "List the registered hub connectors",
				Action: func(c *cli.Context) error {
					return listHubs(os.Stdout)
				},
			},
			{
				Name:  "version",
				Usage: "Print the sathub version",
				Action: func(c *cli.Context) error {
					fmt.Println("sathub " + Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

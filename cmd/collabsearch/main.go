package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/collabsearch/internal/config"
)

func main() {
	app := &cli.Command{
		Name:  "collabsearch",
		Usage: "Federated search over collaboration spaces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Configuration environment (reads config/<env>.yaml)",
				Value: config.GetEnv(),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			searchCommand(),
			indexesCommand(),
			migrateCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

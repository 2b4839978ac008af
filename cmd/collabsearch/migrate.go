package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the relational schema (development bootstrap)",
		Action: func(ctx context.Context, c *cli.Command) error {
			b, err := openBackends(ctx, c, backendNeeds{relational: true})
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.db.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Printf("Schema ready (%s)\n", b.db.Driver())
			return nil
		},
	}
}

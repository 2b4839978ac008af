package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	collectionrepo "github.com/kailas-cloud/collabsearch/internal/repository/collection"
)

func indexesCommand() *cli.Command {
	return &cli.Command{
		Name:  "indexes",
		Usage: "Manage the search-engine collection indexes",
		Commands: []*cli.Command{
			{
				Name:  "ensure",
				Usage: "Create every missing collection index",
				Action: func(ctx context.Context, c *cli.Command) error {
					b, err := openBackends(ctx, c, backendNeeds{engine: true})
					if err != nil {
						return err
					}
					defer b.Close()

					statuses, err := collectionrepo.New(b.engine, b.router).Ensure(ctx)
					for _, st := range statuses {
						b.logger.Info("Collection index", zap.String("index", st.Index), zap.String("state", string(st.State)))
						fmt.Printf("%-40s %s\n", st.Index, st.State)
					}
					if err != nil {
						return fmt.Errorf("ensuring indexes: %w", err)
					}
					return nil
				},
			},
			{
				Name:  "drop",
				Usage: "Drop every collection index (documents are kept)",
				Action: func(ctx context.Context, c *cli.Command) error {
					b, err := openBackends(ctx, c, backendNeeds{engine: true})
					if err != nil {
						return err
					}
					defer b.Close()

					dropped, err := collectionrepo.New(b.engine, b.router).Drop(ctx)
					for _, name := range dropped {
						fmt.Printf("%-40s dropped\n", name)
					}
					if err != nil {
						return fmt.Errorf("dropping indexes: %w", err)
					}
					return nil
				},
			},
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	chiTransport "github.com/kailas-cloud/collabsearch/internal/transport/chi"
	searchuc "github.com/kailas-cloud/collabsearch/internal/usecase/search"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Run one search against the configured backends and print JSON",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "term",
				Aliases:  []string{"t"},
				Usage:    "Search term (repeatable, at most 5)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "tagset",
				Usage: "Tagset name whose tags also match the terms (repeatable)",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Restrict results to this space id",
			},
			&cli.StringSliceFlag{
				Name:  "category",
				Usage: "Category to search: spaces, contributors, collaboration-tools, responses (default: all)",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Page size per category",
				Value: request.DefaultPageSize,
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Search as this user id; its stored credentials are applied",
			},
			&cli.StringFlag{
				Name:  "email",
				Usage: "Email of the user given with --user (without it the search is anonymous)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			b, err := openBackends(ctx, c, backendNeeds{engine: true, relational: true})
			if err != nil {
				return err
			}
			defer b.Close()

			svc, entities := b.searchService()

			who := actor.Anonymous()
			if id := c.String("user"); id != "" {
				creds, err := entities.Credentials(ctx, id)
				if err != nil {
					return fmt.Errorf("loading credentials for %s: %w", id, err)
				}
				who = actor.New(id, c.String("email"), creds)
			}

			in := searchuc.Input{
				Terms:        c.StringSlice("term"),
				TagsetNames:  c.StringSlice("tagset"),
				ScopeSpaceID: c.String("scope"),
			}
			for _, cat := range c.StringSlice("category") {
				in.Filters = append(in.Filters, request.CategoryFilter{
					Category: category.Category(cat),
					Size:     c.Int("size"),
				})
			}

			resp, err := svc.Search(ctx, who, in)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chiTransport.ResponseToAPI(resp))
		},
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/eoforge/sathub/internal/aoi"
	"github.com/eoforge/sathub/internal/config"
	"github.com/eoforge/sathub/internal/index"
	"github.com/eoforge/sathub/pkg/hub"
)

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Maintain the Postgres scene catalog (SATHUB_INDEX_DSN)",
		Subcommands: []*cli.Command{
			{
				Name:   "ensure",
				Usage:  "Create the catalog schema if missing",
				Action: indexEnsureAction,
			},
			{
				Name:   "ingest",
				Usage:  "Search a hub and upsert the results into the catalog",
				Flags:  queryFlags(),
				Action: indexIngestAction,
			},
			{
				Name:   "query",
				Usage:  "Query the catalog",
				Flags:  indexQueryFlags(),
				Action: indexQueryAction,
			},
		},
	}
}

func indexQueryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "platform",
			Aliases: []string{"p"},
			Usage:   "platform name, e.g. Sentinel-2",
		},
		&cli.StringFlag{
			Name:  "aoi",
			Usage: "footprint filter: GeoJSON file, inline GeoJSON, WKT, or bbox minLon,minLat,maxLon,maxLat",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "window start (RFC3339, yyyyMMdd, or NOW-relative)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "window end",
		},
		&cli.IntFlag{
			Name:  "cloud",
			Value: 100,
			Usage: "maximum cloud cover percent, exclusive; 100 disables the filter",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "cap on returned records",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "table",
			Usage: "output format: table or geojson",
		},
	}
}

func indexEnsureAction(c *cli.Context) error {
	repo, err := index.Open(c.Context, config.FromEnv().IndexDSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}
	log.Info().Msg("scene catalog schema ready")
	return nil
}

func indexIngestAction(c *cli.Context) error {
	cfg := config.FromEnv()
	hubID := c.String("hub")

	catalog, err := hub.CreateCatalog(hubID, cfg.HubConfig(hubID))
	if err != nil {
		return err
	}
	defer catalog.Close()

	query, err := buildQuery(c)
	if err != nil {
		return err
	}

	repo, err := index.Open(c.Context, cfg.IndexDSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}

	it, err := catalog.Query(c.Context, query)
	if err != nil {
		return err
	}
	records, err := hub.Collect(it)
	if err != nil {
		return err
	}

	written, err := repo.UpsertCollection(c.Context, collectionOf(records))
	if err != nil {
		return fmt.Errorf("after %d records: %w", written, err)
	}
	log.Info().Str("hub", hubID).Int("records", written).Msg("ingest finished")
	fmt.Printf("indexed %d scenes\n", written)
	return nil
}

func indexQueryAction(c *cli.Context) error {
	filter, err := buildIndexFilter(c)
	if err != nil {
		return err
	}

	repo, err := index.Open(c.Context, config.FromEnv().IndexDSN)
	if err != nil {
		return err
	}
	defer repo.Close()

	records, err := repo.Query(c.Context, filter)
	if err != nil {
		return err
	}
	return printRecords(os.Stdout, c.String("format"), hub.NewCollection(records...))
}

// buildIndexFilter assembles an index filter from the query flags. Times
// resolve locally since the catalog filters in SQL.
func buildIndexFilter(c *cli.Context) (*index.Filter, error) {
	f := &index.Filter{Limit: c.Int("limit")}

	if raw := c.String("platform"); raw != "" {
		platform, err := hub.ParsePlatform(raw)
		if err != nil {
			return nil, err
		}
		f.Platform = platform
	}

	now := time.Now()
	if raw := c.String("from"); raw != "" {
		t, err := hub.ResolveQueryTime(raw, now)
		if err != nil {
			return nil, err
		}
		f.From = t
	}
	if raw := c.String("to"); raw != "" {
		t, err := hub.ResolveQueryTime(raw, now)
		if err != nil {
			return nil, err
		}
		f.To = t
	}

	if raw := c.String("aoi"); raw != "" {
		area, err := aoi.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("aoi: %w", err)
		}
		bound := area.Bound()
		f.BBox = &bound
	}

	if maxCloud := c.Int("cloud"); maxCloud < 100 {
		limit := float64(maxCloud)
		f.MaxCloud = &limit
	}

	return f, nil
}

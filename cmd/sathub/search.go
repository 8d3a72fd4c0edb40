package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/eoforge/sathub/internal/aoi"
	"github.com/eoforge/sathub/internal/config"
	"github.com/eoforge/sathub/pkg/hub"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:   "search",
		Usage:  "Search a hub catalog for scenes",
		Flags:  append(queryFlags(), outputFlags()...),
		Action: searchAction,
	}
}

// queryFlags are shared between search and index ingest.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "hub",
			Value: "hub.scihub",
			Usage: "hub connector ID (see the hubs command)",
		},
		&cli.StringFlag{
			Name:     "platform",
			Aliases:  []string{"p"},
			Required: true,
			Usage:    "platform name, e.g. Sentinel-2 or LANDSAT_8_C1",
		},
		&cli.StringFlag{
			Name:  "aoi",
			Usage: "area of interest: GeoJSON file, inline GeoJSON, WKT, or bbox minLon,minLat,maxLon,maxLat",
		},
		&cli.StringFlag{
			Name:  "from",
			Value: "NOW-30DAYS",
			Usage: "window start (RFC3339, yyyyMMdd, or NOW-relative)",
		},
		&cli.StringFlag{
			Name:  "to",
			Value: "NOW",
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
			Usage:   "cap on returned records, 0 fetches all",
		},
		&cli.StringSliceFlag{
			Name:  "param",
			Usage: "extra hub query term as key=value, repeatable",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "table",
			Usage: "output format: table or geojson",
		},
		&cli.StringFlag{
			Name:  "parquet",
			Usage: "also write the records to this parquet file",
		},
		&cli.BoolFlag{
			Name:  "count",
			Usage: "print the match count only",
		},
	}
}

func searchAction(c *cli.Context) error {
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

	if c.Bool("count") {
		n, err := catalog.Count(c.Context, query)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}

	it, err := catalog.Query(c.Context, query)
	if err != nil {
		return err
	}
	records, err := hub.Collect(it)
	if err != nil {
		return err
	}
	log.Debug().Str("hub", hubID).Int("records", len(records)).Msg("search finished")

	coll := collectionOf(records)
	if path := c.String("parquet"); path != "" {
		if err := writeParquet(path, coll); err != nil {
			return err
		}
	}
	return printRecords(os.Stdout, c.String("format"), coll)
}

// buildQuery assembles a SceneQuery from the shared query flags.
func buildQuery(c *cli.Context) (*hub.SceneQuery, error) {
	platform, err := hub.ParsePlatform(c.String("platform"))
	if err != nil {
		return nil, err
	}

	q := &hub.SceneQuery{
		Platform: platform,
		From:     c.String("from"),
		To:       c.String("to"),
		Limit:    c.Int("limit"),
	}

	if raw := c.String("aoi"); raw != "" {
		area, err := aoi.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("aoi: %w", err)
		}
		q.AOI = area
	}

	if maxCloud := c.Int("cloud"); maxCloud < 100 {
		if platform.HasCloudCover() {
			q.CloudCover = &hub.CloudRange{Min: 0, Max: maxCloud}
		} else {
			log.Warn().Str("platform", platform.String()).Msg("cloud filter ignored for radar platform")
		}
	}

	for _, kv := range c.StringSlice("param") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("param %q is not key=value", kv)
		}
		if q.Extra == nil {
			q.Extra = map[string]string{}
		}
		q.Extra[key] = value
	}

	return q, nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/eoforge/sathub/pkg/hub"
)

// printRecords renders query results in the requested format.
func printRecords(w io.Writer, format string, c *hub.Collection) error {
	switch format {
	case "table":
		return printTable(w, c)
	case "geojson":
		return printGeoJSON(w, c)
	}
	return fmt.Errorf("unknown format %q (want table or geojson)", format)
}

func printTable(w io.Writer, c *hub.Collection) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SRCID\tACQUIRED\tCLOUD\tTYPE\tUUID")
	for _, m := range c.Items {
		acquired := "-"
		if !m.AcquisitionDate.IsZero() {
			acquired = m.AcquisitionDate.Format("2006-01-02")
		}
		cover := "-"
		if m.CloudCoverPercentage != nil {
			cover = fmt.Sprintf("%.1f", *m.CloudCoverPercentage)
		}
		productType := m.ProductType
		if productType == "" {
			productType = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.SrcID, acquired, cover, productType, m.SrcUUID)
	}
	fmt.Fprintf(tw, "(%d records)\n", c.Len())
	return tw.Flush()
}

func printGeoJSON(w io.Writer, c *hub.Collection) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeParquet exports the collection to a Snappy-compressed parquet file.
func writeParquet(path string, c *hub.Collection) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	rows, err := c.WriteParquet(f)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Int64("rows", rows).Msg("wrote parquet export")
	return nil
}

// collectionOf adapts iterator results for the export helpers.
func collectionOf(records []hub.Metadata) *hub.Collection {
	items := make([]*hub.Metadata, 0, len(records))
	for i := range records {
		items = append(items, &records[i])
	}
	return hub.NewCollection(items...)
}

func listHubs(w io.Writer) error {
	ids := hub.DefaultRegistry().List()
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

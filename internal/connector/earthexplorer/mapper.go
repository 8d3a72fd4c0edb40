package earthexplorer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/scene"
)

// mapResult normalizes one inventory record. The JSON API spreads scene
// attributes across the summary line and the data access URL instead of
// typed fields, so several values are carved out of display strings.
func mapResult(r *sceneResult) (*scene.Metadata, error) {
	if r.DisplayID == "" {
		return nil, fmt.Errorf("earthexplorer: record %s has no display id", r.EntityID)
	}
	platform, err := platformFromAccessURL(r.DataAccessURL)
	if err != nil {
		return nil, fmt.Errorf("earthexplorer: record %s: %w", r.DisplayID, err)
	}

	m := &scene.Metadata{
		ID:             r.DisplayID,
		SrcID:          r.DisplayID,
		SrcUUID:        r.EntityID,
		SrcURL:         r.DataAccessURL,
		Platform:       platform,
		ProductType:    "L1TP",
		OrbitDirection: "DESCENDING",
		Format:         "GeoTIFF",
	}

	if path, row, ok := pathRowFromSummary(r.Summary); ok {
		m.OrbitNumber = path
		m.RelativeOrbitNumber = row
	}

	if r.AcquisitionDate != "" {
		m.AcquisitionDate, err = scene.ParseDate(r.AcquisitionDate)
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: acquisition date of %s: %w", r.DisplayID, err)
		}
	}
	if r.ModifiedDate != "" {
		m.IngestionDate, err = scene.ParseDate(r.ModifiedDate)
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: modified date of %s: %w", r.DisplayID, err)
		}
	}

	if r.CloudCover != "" {
		cc, err := r.CloudCover.Float64()
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: cloud cover of %s: %w", r.DisplayID, err)
		}
		m.CloudCoverPercentage = scene.RoundCloudCover(cc)
	}

	if len(r.SpatialFootprint) > 0 {
		geom, err := geojson.UnmarshalGeometry(r.SpatialFootprint)
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: footprint of %s: %w", r.DisplayID, err)
		}
		m.Geometry = geom.Geometry()
	}
	return m, nil
}

// platformFromAccessURL recovers the dataset name embedded in the data
// access URL, e.g. ...?dataset_name=LANDSAT_8_C1&ordered=....
func platformFromAccessURL(accessURL string) (scene.Platform, error) {
	_, after, found := strings.Cut(accessURL, "dataset_name=")
	if !found {
		return "", fmt.Errorf("no dataset name in access url %q", accessURL)
	}
	name, _, _ := strings.Cut(after, "&")
	return scene.ParsePlatform(name)
}

// pathRowFromSummary carves WRS path and row out of the summary line,
// e.g. "Entity ID: ..., Acquisition Date: ..., Path: 27, Row: 39".
func pathRowFromSummary(summary string) (int, int, bool) {
	path, ok := intAfter(summary, "Path: ")
	if !ok {
		return 0, 0, false
	}
	row, ok := intAfter(summary, "Row: ")
	if !ok {
		return 0, 0, false
	}
	return path, row, true
}

func intAfter(s, label string) (int, bool) {
	_, after, found := strings.Cut(s, label)
	if !found {
		return 0, false
	}
	value := after
	if i := strings.IndexAny(after, ", "); i >= 0 {
		value = after[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// datasetForEntityID derives the inventory dataset from the entity ID
// prefix. Metadata lookups need the dataset name alongside the ID.
func datasetForEntityID(entityID string) (scene.Platform, error) {
	switch {
	case strings.HasPrefix(entityID, "LC8"):
		return scene.Landsat8, nil
	case strings.HasPrefix(entityID, "LE7"):
		return scene.Landsat7, nil
	case strings.HasPrefix(entityID, "LT5"):
		return scene.Landsat5, nil
	}
	return "", fmt.Errorf("earthexplorer: cannot derive dataset from entity id %q", entityID)
}

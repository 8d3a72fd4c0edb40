package stac

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/scene"
)

// =============================================================================
// RESPONSE NORMALIZATION
// =============================================================================

// mapItem converts a STAC item into the harmonized record. Field names
// follow the eo and sat extensions; product types additionally check the
// mission-prefixed property names Sentinel catalogs use.
func mapItem(item *Item) (*scene.Metadata, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("stac: item has no id")
	}
	platform, err := platformFromProperties(item)
	if err != nil {
		return nil, err
	}

	m := &scene.Metadata{
		ID:       item.ID,
		Platform: platform,
		SrcID:    item.ID,
		SrcUUID:  item.ID,
		SrcURL:   item.SelfHref(),
	}

	if v, ok := stringProp(item, "datetime"); ok {
		if m.AcquisitionDate, err = scene.ParseDate(v); err != nil {
			return nil, fmt.Errorf("stac: item %s: %w", item.ID, err)
		}
	} else if v, ok := stringProp(item, "start_datetime"); ok {
		if m.AcquisitionDate, err = scene.ParseDate(v); err != nil {
			return nil, fmt.Errorf("stac: item %s: %w", item.ID, err)
		}
	}
	if v, ok := stringProp(item, "created"); ok {
		if m.IngestionDate, err = scene.ParseDate(v); err != nil {
			return nil, fmt.Errorf("stac: item %s: %w", item.ID, err)
		}
	}

	if v, ok := floatProp(item, "eo:cloud_cover"); ok {
		m.CloudCoverPercentage = scene.RoundCloudCover(v)
	}
	if v, ok := stringProp(item, "sat:orbit_state"); ok {
		m.OrbitDirection = strings.ToUpper(v)
	}
	if v, ok := floatProp(item, "sat:absolute_orbit"); ok {
		m.OrbitNumber = int(v)
	}
	if v, ok := floatProp(item, "sat:relative_orbit"); ok {
		m.RelativeOrbitNumber = int(v)
	}

	for _, key := range []string{"product_type", "s2:product_type", "sar:product_type"} {
		if v, ok := stringProp(item, key); ok {
			m.ProductType = v
			break
		}
	}

	if len(item.Geometry) > 0 && string(item.Geometry) != "null" {
		geom, err := geojson.UnmarshalGeometry(item.Geometry)
		if err != nil {
			return nil, fmt.Errorf("stac: item %s: parse geometry: %w", item.ID, err)
		}
		m.Geometry = geom.Geometry()
	}

	return m, nil
}

// platformFromProperties derives the mission from the platform property,
// falling back to the constellation for catalogs that only tag the latter.
func platformFromProperties(item *Item) (scene.Platform, error) {
	for _, key := range []string{"platform", "constellation"} {
		if v, ok := stringProp(item, key); ok {
			if p, err := parseSTACPlatform(v); err == nil {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("stac: item %s: cannot derive platform from properties", item.ID)
}

// parseSTACPlatform matches the lowercase, variously delimited platform
// names found in the wild ("sentinel-2a", "Sentinel_2B", "landsat-8").
func parseSTACPlatform(s string) (scene.Platform, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "_", "-")
	switch {
	case strings.HasPrefix(v, "sentinel-1"):
		return scene.Sentinel1, nil
	case strings.HasPrefix(v, "sentinel-2"):
		return scene.Sentinel2, nil
	case strings.HasPrefix(v, "sentinel-3"):
		return scene.Sentinel3, nil
	case strings.HasPrefix(v, "landsat-5"):
		return scene.Landsat5, nil
	case strings.HasPrefix(v, "landsat-7"):
		return scene.Landsat7, nil
	case strings.HasPrefix(v, "landsat-8"):
		return scene.Landsat8, nil
	}
	return "", fmt.Errorf("stac: unknown platform %q", s)
}

func stringProp(item *Item, key string) (string, bool) {
	v, ok := item.Properties[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func floatProp(item *Item, key string) (float64, bool) {
	v, ok := item.Properties[key]
	if !ok {
		return 0, false
	}
	switch tv := v.(type) {
	case float64:
		return tv, true
	case int:
		return float64(tv), true
	}
	return 0, false
}

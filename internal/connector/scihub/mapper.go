package scihub

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/eoforge/sathub/internal/download"
	"github.com/eoforge/sathub/internal/scene"
	"github.com/eoforge/sathub/internal/sceneid"
)

// =============================================================================
// RESPONSE NORMALIZATION
// =============================================================================

// mapEntry converts an OpenSearch entry into the harmonized record.
func mapEntry(e *entry) (*scene.Metadata, error) {
	identifier, ok := e.str("identifier")
	if !ok {
		identifier = e.Title
	}
	if identifier == "" {
		return nil, fmt.Errorf("scihub: entry %s has no identifier", e.ID)
	}
	uuid, ok := e.str("uuid")
	if !ok {
		uuid = e.ID
	}
	if uuid == "" {
		return nil, fmt.Errorf("scihub: entry %s has no uuid", identifier)
	}
	platformName, _ := e.str("platformname")
	platform, err := scene.ParsePlatform(platformName)
	if err != nil {
		return nil, fmt.Errorf("scihub: entry %s: %w", identifier, err)
	}

	m := &scene.Metadata{
		ID:       identifier,
		Platform: platform,
		SrcID:    identifier,
		SrcUUID:  uuid,
		SrcURL:   e.downloadLink(),
	}
	m.ProductType, _ = e.str("producttype")
	m.OrbitDirection, _ = e.str("orbitdirection")
	m.Format, _ = e.str("format")
	m.Size, _ = e.str("size")

	if v, ok := e.intval("orbitnumber"); ok {
		if m.OrbitNumber, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("scihub: entry %s: parse orbitnumber %q: %w", identifier, v, err)
		}
	}
	if v, ok := e.intval("relativeorbitnumber"); ok {
		if m.RelativeOrbitNumber, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("scihub: entry %s: parse relativeorbitnumber %q: %w", identifier, v, err)
		}
	}
	if v, ok := e.date("beginposition"); ok {
		if m.AcquisitionDate, err = scene.ParseDate(v); err != nil {
			return nil, fmt.Errorf("scihub: entry %s: %w", identifier, err)
		}
	}
	if v, ok := e.date("ingestiondate"); ok {
		if m.IngestionDate, err = scene.ParseDate(v); err != nil {
			return nil, fmt.Errorf("scihub: entry %s: %w", identifier, err)
		}
	}
	if v, ok := e.double("cloudcoverpercentage"); ok {
		cc, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("scihub: entry %s: parse cloudcoverpercentage %q: %w", identifier, v, err)
		}
		m.CloudCoverPercentage = scene.RoundCloudCover(cc)
	}
	if v, ok := e.str("footprint"); ok {
		geom, err := wkt.Unmarshal(v)
		if err != nil {
			return nil, fmt.Errorf("scihub: entry %s: parse footprint: %w", identifier, err)
		}
		m.Geometry = geom
	}

	return m, nil
}

// mapODataProduct converts an OData product into the harmonized record.
// OData serves fewer fields than OpenSearch; the record carries what the
// endpoint exposes.
func mapODataProduct(baseURL string, p *odataProduct) (*scene.Metadata, error) {
	if p.Name == "" || p.ID == "" {
		return nil, fmt.Errorf("scihub: OData product missing Name or Id")
	}
	platform, err := platformFromSceneName(p.Name)
	if err != nil {
		return nil, err
	}

	m := &scene.Metadata{
		ID:       p.Name,
		Platform: platform,
		SrcID:    p.Name,
		SrcUUID:  p.ID,
		SrcURL:   productValueURL(baseURL, p.ID),
	}
	if n, err := p.ContentLength.Int64(); err == nil && n > 0 {
		m.Size = download.FormatBytes(n)
	}
	if p.ContentDate.Start != "" {
		if m.AcquisitionDate, err = parseODataTime(p.ContentDate.Start); err != nil {
			return nil, err
		}
	}
	if p.IngestionDate != "" {
		if m.IngestionDate, err = parseODataTime(p.IngestionDate); err != nil {
			return nil, err
		}
	}
	if p.ContentGeometry != "" {
		footprint, err := sceneid.DecodeGMLFootprint(strings.NewReader(p.ContentGeometry))
		if err != nil {
			return nil, fmt.Errorf("scihub: product %s: %w", p.Name, err)
		}
		m.Geometry = footprint
	}

	return m, nil
}

// parseODataTime handles the OData v1 "/Date(1578866540000)/" encoding,
// with plain ISO timestamps accepted as a fallback.
func parseODataTime(s string) (time.Time, error) {
	if strings.HasPrefix(s, "/Date(") && strings.HasSuffix(s, ")/") {
		ms, err := strconv.ParseInt(s[len("/Date("):len(s)-2], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("scihub: parse OData date %q: %w", s, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return scene.ParseDate(s)
}

func platformFromSceneName(name string) (scene.Platform, error) {
	switch {
	case strings.HasPrefix(name, "S1"):
		return scene.Sentinel1, nil
	case strings.HasPrefix(name, "S2"):
		return scene.Sentinel2, nil
	case strings.HasPrefix(name, "S3"):
		return scene.Sentinel3, nil
	}
	return "", fmt.Errorf("scihub: cannot derive platform from product name %q", name)
}

func productValueURL(baseURL, uuid string) string {
	return strings.TrimSuffix(baseURL, "/") + "/odata/v1/Products('" + uuid + "')/$value"
}

// Package aoi prepares user-supplied areas of interest for catalog queries.
//
// An AOI can arrive as a GeoJSON file on disk, an inline GeoJSON document,
// a WKT string, or a plain lon/lat bounding box. All of them normalize into
// an orb geometry in WGS84 (GeoJSON coordinates are WGS84 per RFC 7946;
// no reprojection happens here).
package aoi

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// AOI is a prepared area of interest.
type AOI struct {
	geometry orb.Geometry
}

// New wraps a geometry after validating its coordinate ranges.
func New(geom orb.Geometry) (*AOI, error) {
	if geom == nil {
		return nil, fmt.Errorf("aoi: nil geometry")
	}
	b := geom.Bound()
	if b.Min.X() < -180 || b.Max.X() > 180 || b.Min.Y() < -90 || b.Max.Y() > 90 {
		return nil, fmt.Errorf("aoi: coordinates outside lon/lat range: %v", b)
	}
	return &AOI{geometry: geom}, nil
}

// FromBBox builds an AOI from a lon/lat bounding box.
func FromBBox(minLon, minLat, maxLon, maxLat float64) (*AOI, error) {
	if minLon >= maxLon || minLat >= maxLat {
		return nil, fmt.Errorf("aoi: degenerate bounding box [%v %v %v %v]", minLon, minLat, maxLon, maxLat)
	}
	bound := orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
	return New(bound.ToPolygon())
}

// FromWKT builds an AOI from a WKT string.
func FromWKT(s string) (*AOI, error) {
	geom, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("aoi: parse WKT: %w", err)
	}
	return New(geom)
}

// FromGeoJSON builds an AOI from an inline GeoJSON document. Feature
// collections contribute their first feature, matching the file-based
// workflow where an AOI file holds a single footprint.
func FromGeoJSON(data []byte) (*AOI, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil && len(fc.Features) > 0 {
		return New(fc.Features[0].Geometry)
	}
	if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		return New(f.Geometry)
	}
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("aoi: parse GeoJSON: %w", err)
	}
	return New(geom.Geometry())
}

// FromFile builds an AOI from a GeoJSON file.
func FromFile(path string) (*AOI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aoi: read %s: %w", path, err)
	}
	return FromGeoJSON(data)
}

// Parse accepts the forms users hand to the CLI and library entry points:
// a path to a GeoJSON file, an inline GeoJSON document, a WKT string, or a
// comma-separated lon/lat bounding box.
func Parse(s string) (*AOI, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil, fmt.Errorf("aoi: empty input")
	}
	if _, err := os.Stat(v); err == nil {
		return FromFile(v)
	}
	if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
		return FromGeoJSON([]byte(v))
	}
	if bbox, ok := parseBBoxString(v); ok {
		return FromBBox(bbox[0], bbox[1], bbox[2], bbox[3])
	}
	return FromWKT(v)
}

func parseBBoxString(s string) ([4]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]float64{}, false
	}
	var out [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [4]float64{}, false
		}
		out[i] = f
	}
	return out, true
}

// Geometry returns the underlying geometry.
func (a *AOI) Geometry() orb.Geometry { return a.geometry }

// Bound returns the lon/lat bounding box.
func (a *AOI) Bound() orb.Bound { return a.geometry.Bound() }

// WKT renders the AOI for OpenSearch footprint terms.
func (a *AOI) WKT() string { return wkt.MarshalString(a.geometry) }

// Intersects reports whether the AOI bound overlaps the geometry's bound.
// Footprint-level intersection is the provider's business; the local
// catalog only needs the cheap envelope test.
func (a *AOI) Intersects(geom orb.Geometry) bool {
	if geom == nil {
		return false
	}
	return a.Bound().Intersects(geom.Bound())
}

package aoi_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eoforge/sathub/internal/aoi"
)

func TestFromBBox(t *testing.T) {
	a, err := aoi.FromBBox(11.0, 47.8, 11.3, 48.1)
	if err != nil {
		t.Fatalf("FromBBox failed: %v", err)
	}
	b := a.Bound()
	if b.Min.X() != 11.0 || b.Max.Y() != 48.1 {
		t.Errorf("unexpected bound: %v", b)
	}
	if !strings.HasPrefix(a.WKT(), "POLYGON") {
		t.Errorf("expected polygon WKT, got %s", a.WKT())
	}
}

func TestFromBBoxDegenerate(t *testing.T) {
	if _, err := aoi.FromBBox(11.3, 48.1, 11.0, 47.8); err == nil {
		t.Fatal("expected error for inverted bbox")
	}
}

func TestFromWKT(t *testing.T) {
	a, err := aoi.FromWKT("POLYGON((8 50, 9 50, 9 51, 8 51, 8 50))")
	if err != nil {
		t.Fatalf("FromWKT failed: %v", err)
	}
	b := a.Bound()
	if b.Min.X() != 8 || b.Min.Y() != 50 || b.Max.X() != 9 || b.Max.Y() != 51 {
		t.Errorf("unexpected bound: %v", b)
	}
}

func TestFromWKTOutOfRange(t *testing.T) {
	if _, err := aoi.FromWKT("POINT(200 95)"); err == nil {
		t.Fatal("expected error for coordinates outside lon/lat range")
	}
}

func TestFromGeoJSONVariants(t *testing.T) {
	geometry := `{"type":"Polygon","coordinates":[[[8,50],[9,50],[9,51],[8,51],[8,50]]]}`
	feature := `{"type":"Feature","properties":{},"geometry":` + geometry + `}`
	collection := `{"type":"FeatureCollection","features":[` + feature + `]}`

	for _, doc := range []string{geometry, feature, collection} {
		a, err := aoi.FromGeoJSON([]byte(doc))
		if err != nil {
			t.Fatalf("FromGeoJSON failed for %s: %v", doc[:20], err)
		}
		if a.Bound().Min.X() != 8 {
			t.Errorf("unexpected bound: %v", a.Bound())
		}
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aoi.geojson")
	doc := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[8,50],[9,50],[9,51],[8,51],[8,50]]]}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write aoi file: %v", err)
	}
	a, err := aoi.Parse(path)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if a.Bound().Max.Y() != 51 {
		t.Errorf("unexpected bound: %v", a.Bound())
	}
}

func TestParseBBoxString(t *testing.T) {
	a, err := aoi.Parse("11.0, 47.8, 11.3, 48.1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if a.Bound().Min.Y() != 47.8 {
		t.Errorf("unexpected bound: %v", a.Bound())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := aoi.Parse("not an aoi"); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}

func TestIntersects(t *testing.T) {
	a, err := aoi.FromBBox(8, 50, 9, 51)
	if err != nil {
		t.Fatalf("FromBBox failed: %v", err)
	}
	inside, err := aoi.FromWKT("POLYGON((8.5 50.5, 8.6 50.5, 8.6 50.6, 8.5 50.6, 8.5 50.5))")
	if err != nil {
		t.Fatalf("FromWKT failed: %v", err)
	}
	if !a.Intersects(inside.Geometry()) {
		t.Error("expected overlap with contained polygon")
	}
	outside, err := aoi.FromWKT("POLYGON((20 60, 21 60, 21 61, 20 61, 20 60))")
	if err != nil {
		t.Fatalf("FromWKT failed: %v", err)
	}
	if a.Intersects(outside.Geometry()) {
		t.Error("expected no overlap with distant polygon")
	}
}

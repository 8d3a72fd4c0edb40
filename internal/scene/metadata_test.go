package scene_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/scene"
)

func sampleMetadata() *scene.Metadata {
	cc := 30.43
	return &scene.Metadata{
		ID:                   "S1M_BB_TTTR_LFPP_20200113T074619_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC",
		Platform:             scene.Sentinel1,
		ProductType:          "GRD",
		OrbitDirection:       "ASCENDING",
		OrbitNumber:          30000,
		RelativeOrbitNumber:  128,
		AcquisitionDate:      time.Date(2020, 1, 13, 7, 46, 19, 0, time.UTC),
		IngestionDate:        time.Date(2020, 1, 13, 10, 0, 0, 0, time.UTC),
		CloudCoverPercentage: &cc,
		Format:               "SAFE",
		Size:                 "1.65 GB",
		SrcID:                "S1M_BB_TTTR_LFPP_20200113T074619_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC",
		SrcURL:               "https://example.com/odata/v1/Products('1234')/$value",
		SrcUUID:              "1234-5678",
		Geometry: orb.Polygon{{
			{8, 50}, {9, 50}, {9, 51}, {8, 51}, {8, 50},
		}},
	}
}

func TestMetadataProperties(t *testing.T) {
	props := sampleMetadata().Properties()

	if props["platformname"] != "Sentinel-1" {
		t.Errorf("platformname = %v", props["platformname"])
	}
	if props["acquisitiondate"] != "2020/01/13" {
		t.Errorf("acquisitiondate = %v", props["acquisitiondate"])
	}
	if props["processingdate"] != nil {
		t.Errorf("unset date should export as nil, got %v", props["processingdate"])
	}
	if props["cloudcoverpercentage"] != 30.43 {
		t.Errorf("cloudcoverpercentage = %v", props["cloudcoverpercentage"])
	}
	if props["orbitnumber"] != 30000 {
		t.Errorf("orbitnumber = %v", props["orbitnumber"])
	}
}

func TestMetadataCloudCoverDefault(t *testing.T) {
	m := sampleMetadata()
	m.CloudCoverPercentage = nil
	if m.CloudCover() != 0 {
		t.Errorf("CloudCover = %v, want 0", m.CloudCover())
	}
	if m.Properties()["cloudcoverpercentage"] != nil {
		t.Error("missing cloud cover should export as nil")
	}
}

func TestMetadataMarshalIsGeoJSONFeature(t *testing.T) {
	data, err := json.Marshal(sampleMetadata())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc["type"] != "Feature" {
		t.Errorf("type = %v, want Feature", doc["type"])
	}
}

func TestMetadataSaveRoundtrip(t *testing.T) {
	dir := t.TempDir()
	m := sampleMetadata()
	if err := m.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(dir, m.SrcID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		t.Fatalf("UnmarshalFeature failed: %v", err)
	}
	got, err := scene.FromFeature(feature)
	if err != nil {
		t.Fatalf("FromFeature failed: %v", err)
	}

	if got.ID != m.ID || got.Platform != m.Platform || got.SrcUUID != m.SrcUUID {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if !got.AcquisitionDate.Equal(time.Date(2020, 1, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("acquisition date = %v", got.AcquisitionDate)
	}
	if got.CloudCoverPercentage == nil || *got.CloudCoverPercentage != 30.43 {
		t.Errorf("cloud cover = %v", got.CloudCoverPercentage)
	}
	if got.Geometry == nil {
		t.Error("geometry lost in roundtrip")
	}
}

func TestMetadataNilGeometryExportsEmptyMultiPolygon(t *testing.T) {
	m := sampleMetadata()
	m.Geometry = nil
	f := m.ToFeature()
	if _, ok := f.Geometry.(orb.MultiPolygon); !ok {
		t.Errorf("geometry = %T, want MultiPolygon", f.Geometry)
	}
}

func TestFromFeatureStrict(t *testing.T) {
	base := func() *geojson.Feature {
		f := geojson.NewFeature(orb.Point{8, 50})
		f.Properties = map[string]any{
			"id":           "scene-1",
			"platformname": "Sentinel-2",
			"srcuuid":      "uuid-1",
		}
		return f
	}

	if _, err := scene.FromFeature(base()); err != nil {
		t.Fatalf("minimal feature should parse: %v", err)
	}

	f := base()
	delete(f.Properties, "platformname")
	if _, err := scene.FromFeature(f); err == nil {
		t.Error("expected error for missing platformname")
	}

	f = base()
	f.Properties["platformname"] = "Sputnik"
	if _, err := scene.FromFeature(f); err == nil {
		t.Error("expected error for unknown platform")
	}

	f = base()
	delete(f.Properties, "srcuuid")
	if _, err := scene.FromFeature(f); err == nil {
		t.Error("expected error for missing srcuuid")
	}

	f = base()
	f.Properties["cloudcoverpercentage"] = "thirty"
	if _, err := scene.FromFeature(f); err == nil {
		t.Error("expected error for non-numeric cloud cover")
	}
}

func TestValidate(t *testing.T) {
	m := sampleMetadata()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	m.SrcUUID = ""
	if err := m.Validate(); err == nil {
		t.Error("expected error for missing srcuuid")
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2020/01/13", "2020-01-13", "2020-01-13T07:46:19.000Z", "20200113"} {
		got, err := scene.ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", in, err)
		}
		if got.Year() != 2020 || got.Month() != time.January || got.Day() != 13 {
			t.Errorf("ParseDate(%q) = %v", in, got)
		}
	}
	if _, err := scene.ParseDate("January 13th"); err == nil {
		t.Error("expected error for unparseable date")
	}
	zero, err := scene.ParseDate("")
	if err != nil || !zero.IsZero() {
		t.Errorf("empty date should parse to zero time, got %v / %v", zero, err)
	}
}

func TestRoundCloudCover(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{30.434, 30.43},
		{30.436, 30.44},
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		got := scene.RoundCloudCover(tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("RoundCloudCover(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	p, err := scene.ParsePlatform("LANDSAT_8_C1")
	if err != nil {
		t.Fatalf("ParsePlatform failed: %v", err)
	}
	if !p.IsLandsat() || p.IsSentinel() {
		t.Errorf("unexpected classification for %s", p)
	}
	if !p.HasCloudCover() {
		t.Error("Landsat-8 has cloud cover")
	}
	if scene.Sentinel1.HasCloudCover() {
		t.Error("Sentinel-1 carries no cloud cover")
	}
	if _, err := scene.ParsePlatform("Sputnik"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

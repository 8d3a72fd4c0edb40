package scene_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/eoforge/sathub/internal/scene"
)

func sampleCollection() *scene.Collection {
	a := sampleMetadata()
	b := sampleMetadata()
	b.ID = "scene-b"
	b.SrcID = "scene-b"
	b.SrcUUID = "uuid-b"
	b.ProductType = "SLC"
	b.OrbitNumber = 30001
	c := sampleMetadata()
	c.ID = "scene-c"
	c.SrcID = "scene-c"
	c.SrcUUID = "uuid-c"
	cc := 75.0
	c.CloudCoverPercentage = &cc
	return scene.NewCollection(a, b, c)
}

func TestCollectionFilterString(t *testing.T) {
	got := sampleCollection().Filter("producttype", "SLC")
	if got.Len() != 1 || got.Items[0].ID != "scene-b" {
		t.Errorf("Filter(producttype) = %v", got.SrcIDs())
	}
}

func TestCollectionFilterNumericLoose(t *testing.T) {
	// Int input must match float-typed properties.
	got := sampleCollection().Filter("cloudcoverpercentage", 75)
	if got.Len() != 1 || got.Items[0].ID != "scene-c" {
		t.Errorf("Filter(cloudcoverpercentage) = %v", got.SrcIDs())
	}

	got = sampleCollection().Filter("orbitnumber", 30001)
	if got.Len() != 1 || got.Items[0].ID != "scene-b" {
		t.Errorf("Filter(orbitnumber) = %v", got.SrcIDs())
	}
}

func TestCollectionFilterNoMatch(t *testing.T) {
	if got := sampleCollection().Filter("producttype", "OCN"); got.Len() != 0 {
		t.Errorf("expected empty result, got %v", got.SrcIDs())
	}
}

func TestCollectionSrcIDs(t *testing.T) {
	ids := sampleCollection().SrcIDs()
	if len(ids) != 3 || ids[1] != "scene-b" {
		t.Errorf("SrcIDs = %v", ids)
	}
}

func TestCollectionMarshalIsFeatureCollection(t *testing.T) {
	data, err := json.Marshal(sampleCollection())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.Type != "FeatureCollection" {
		t.Errorf("type = %q", doc.Type)
	}
	if len(doc.Features) != 3 {
		t.Errorf("features = %d, want 3", len(doc.Features))
	}
}

func TestCollectionSave(t *testing.T) {
	dir := t.TempDir()
	col := sampleCollection()
	if err := col.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("saved %d files, want 3", len(entries))
	}
}

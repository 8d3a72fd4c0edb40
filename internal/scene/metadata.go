package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// =============================================================================
// METADATA RECORD
// The normalized record every hub maps its responses into. Field names in
// exports match the property keys of the on-disk GeoJSON catalog format.
// =============================================================================

// exportDateFormat is how dates appear in exported properties.
const exportDateFormat = "2006/01/02"

// metadataDateLayouts are accepted when parsing dates from provider
// responses and catalog files.
var metadataDateLayouts = []string{
	exportDateFormat,
	time.RFC3339,
	"2006-01-02T15:04:05.999Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

// Metadata is the harmonized description of one scene across all hubs.
type Metadata struct {
	ID                  string
	Platform            Platform
	ProductType         string
	OrbitDirection      string
	OrbitNumber         int
	RelativeOrbitNumber int
	AcquisitionDate     time.Time
	IngestionDate       time.Time
	ProcessingDate      time.Time
	ProcessingSteps     string
	ProcessingVersion   string
	BandList            string
	CloudCoverPercentage *float64
	Format              string
	Size                string
	SrcID               string
	SrcURL              string
	SrcUUID             string
	Geometry            orb.Geometry
}

// Validate checks the presence invariants of a metadata record.
func (m *Metadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("metadata: id is required")
	}
	if m.SrcID == "" {
		return fmt.Errorf("metadata: srcid is required")
	}
	if m.SrcUUID == "" {
		return fmt.Errorf("metadata: srcuuid is required")
	}
	return nil
}

// CloudCover returns the cloud cover estimate, or 0 when the platform
// carries none.
func (m *Metadata) CloudCover() float64 {
	if m.CloudCoverPercentage == nil {
		return 0
	}
	return *m.CloudCoverPercentage
}

// Properties returns the flat exported property map. Dates render as
// yyyy/MM/dd, unset dates and cloud cover render as nil.
func (m *Metadata) Properties() map[string]any {
	return map[string]any{
		"id":                   m.ID,
		"platformname":         exportPlatform(m.Platform),
		"producttype":          m.ProductType,
		"orbitdirection":       m.OrbitDirection,
		"orbitnumber":          m.OrbitNumber,
		"relativeorbitnumber":  m.RelativeOrbitNumber,
		"acquisitiondate":      exportDate(m.AcquisitionDate),
		"ingestiondate":        exportDate(m.IngestionDate),
		"processingdate":       exportDate(m.ProcessingDate),
		"processingsteps":      m.ProcessingSteps,
		"processingversion":    m.ProcessingVersion,
		"bandlist":             m.BandList,
		"cloudcoverpercentage": exportCloudCover(m.CloudCoverPercentage),
		"format":               m.Format,
		"size":                 m.Size,
		"srcid":                m.SrcID,
		"srcurl":               m.SrcURL,
		"srcuuid":              m.SrcUUID,
	}
}

// ToFeature converts the record into a GeoJSON feature.
func (m *Metadata) ToFeature() *geojson.Feature {
	geom := m.Geometry
	if geom == nil {
		geom = orb.MultiPolygon{}
	}
	f := geojson.NewFeature(geom)
	f.Properties = m.Properties()
	return f
}

// MarshalJSON renders the record as a GeoJSON feature.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return m.ToFeature().MarshalJSON()
}

// Save writes the record as a GeoJSON file named <srcid>.json in targetDir.
func (m *Metadata) Save(targetDir string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal metadata %s: %w", m.SrcID, err)
	}
	path := filepath.Join(targetDir, m.SrcID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// FromFeature rebuilds a metadata record from a catalog GeoJSON feature.
// It is strict: a file missing required properties is not valid catalog
// metadata.
func FromFeature(f *geojson.Feature) (*Metadata, error) {
	if f == nil {
		return nil, fmt.Errorf("nil feature")
	}
	props := f.Properties

	id, ok := stringProp(props, "id")
	if !ok {
		id, ok = stringProp(props, "srcid")
	}
	if !ok {
		return nil, fmt.Errorf("metadata feature missing id")
	}

	platformName, ok := stringProp(props, "platformname")
	if !ok {
		return nil, fmt.Errorf("metadata feature missing platformname")
	}
	platform, err := ParsePlatform(platformName)
	if err != nil {
		return nil, err
	}

	srcID, _ := stringProp(props, "srcid")
	if srcID == "" {
		srcID = id
	}
	srcUUID, ok := stringProp(props, "srcuuid")
	if !ok {
		return nil, fmt.Errorf("metadata feature missing srcuuid")
	}

	m := &Metadata{
		ID:                  id,
		Platform:            platform,
		SrcID:               srcID,
		SrcUUID:             srcUUID,
		Geometry:            f.Geometry,
		ProductType:         optString(props, "producttype"),
		OrbitDirection:      optString(props, "orbitdirection"),
		ProcessingSteps:     optString(props, "processingsteps"),
		ProcessingVersion:   optString(props, "processingversion"),
		BandList:            optString(props, "bandlist"),
		Format:              optString(props, "format"),
		Size:                optString(props, "size"),
		SrcURL:              optString(props, "srcurl"),
		OrbitNumber:         optInt(props, "orbitnumber"),
		RelativeOrbitNumber: optInt(props, "relativeorbitnumber"),
	}

	if m.AcquisitionDate, err = optDate(props, "acquisitiondate"); err != nil {
		return nil, err
	}
	if m.IngestionDate, err = optDate(props, "ingestiondate"); err != nil {
		return nil, err
	}
	if m.ProcessingDate, err = optDate(props, "processingdate"); err != nil {
		return nil, err
	}

	if v, ok := props["cloudcoverpercentage"]; ok && v != nil {
		switch n := v.(type) {
		case float64:
			m.CloudCoverPercentage = &n
		case int:
			f := float64(n)
			m.CloudCoverPercentage = &f
		default:
			return nil, fmt.Errorf("metadata feature cloudcoverpercentage is not a number")
		}
	}

	return m, nil
}

// ParseDate parses a date as it appears in provider responses or catalog
// files. Empty input yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range metadataDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// RoundCloudCover normalizes a provider cloud cover value to two decimals.
func RoundCloudCover(v float64) *float64 {
	r := float64(int(v*100+0.5)) / 100
	if v < 0 {
		r = float64(int(v*100-0.5)) / 100
	}
	return &r
}

// =============================================================================
// HELPERS
// =============================================================================

func exportPlatform(p Platform) any {
	if p == "" {
		return nil
	}
	return p.String()
}

func exportDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(exportDateFormat)
}

func exportCloudCover(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringProp(props map[string]any, key string) (string, bool) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func optString(props map[string]any, key string) string {
	s, _ := stringProp(props, key)
	return s
}

func optInt(props map[string]any, key string) int {
	v, ok := props[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func optDate(props map[string]any, key string) (time.Time, error) {
	s, ok := stringProp(props, key)
	if !ok {
		return time.Time{}, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("property %s: %w", key, err)
	}
	return t, nil
}

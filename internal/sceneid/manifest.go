package sceneid

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

const (
	gmlNamespace  = "http://www.opengis.net/gml"
	safeNamespace = "http://www.esa.int/safe/sentinel-1.0"
)

// Manifest holds the fields the library reads from a SAFE manifest.safe
// file. Tested against Sentinel-1 products.
type Manifest struct {
	Footprint  orb.Polygon
	Origin     string
	IPFVersion float64
}

// ParseManifest reads a manifest.safe file.
func ParseManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneid: open manifest: %w", err)
	}
	defer f.Close()
	return DecodeManifest(f)
}

// DecodeManifest parses SAFE manifest XML from r. The manifest nests its
// payload several levels deep inside metadataSection, so the decoder
// walks the token stream and picks out the known elements instead of
// mapping the whole document.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sceneid: parse manifest: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case start.Name.Space == gmlNamespace && start.Name.Local == "coordinates":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, fmt.Errorf("sceneid: parse footprint: %w", err)
			}
			footprint, err := parseGMLCoordinates(text)
			if err != nil {
				return nil, err
			}
			m.Footprint = footprint
		case start.Name.Space == safeNamespace && start.Name.Local == "facility":
			if v, ok := attr(start, "country"); ok {
				m.Origin = v
			}
		case start.Name.Space == safeNamespace && start.Name.Local == "software":
			if v, ok := attr(start, "version"); ok {
				version, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("sceneid: parse IPF version %q: %w", v, err)
				}
				m.IPFVersion = version
			}
		}
	}
	return m, nil
}

// DecodeGMLFootprint extracts the footprint polygon from a standalone
// GML snippet, as the OData product endpoints embed it.
func DecodeGMLFootprint(r io.Reader) (orb.Polygon, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sceneid: parse GML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "coordinates" {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			return nil, fmt.Errorf("sceneid: parse GML coordinates: %w", err)
		}
		return parseGMLCoordinates(text)
	}
	return nil, fmt.Errorf("sceneid: GML snippet has no coordinates")
}

// parseGMLCoordinates converts a gml:coordinates string of "lat,lon"
// pairs into a closed lon/lat ring.
func parseGMLCoordinates(text string) (orb.Polygon, error) {
	var ring orb.Ring
	for _, pair := range strings.Fields(text) {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("sceneid: malformed coordinate pair %q", pair)
		}
		lat, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("sceneid: parse latitude %q: %w", parts[0], err)
		}
		lon, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("sceneid: parse longitude %q: %w", parts[1], err)
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("sceneid: footprint has %d vertices, need at least 3", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}, nil
}

func attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// degreesPerTenMeters is the degree equivalent of 10 m at the equator,
// used to express range pixel spacing in degrees.
const degreesPerTenMeters = 8.983152841195215e-5

// PixelSpacing reads the range pixel spacing for the given polarization
// from the annotation files of an unzipped SAFE scene directory. It
// returns the spacing in meters and degrees.
func PixelSpacing(sceneDir, polarization string) (meters, degrees float64, err error) {
	annotationDir := filepath.Join(sceneDir, "annotation")
	entries, err := os.ReadDir(annotationDir)
	if err != nil {
		return 0, 0, fmt.Errorf("sceneid: read annotation dir: %w", err)
	}
	want := strings.ToLower(polarization)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		parts := strings.Split(name, "-")
		if len(parts) < 4 || parts[3] != want {
			continue
		}
		meters, err = rangePixelSpacing(filepath.Join(annotationDir, name))
		if err != nil {
			return 0, 0, err
		}
		return meters, meters / 10.0 * degreesPerTenMeters, nil
	}
	return 0, 0, fmt.Errorf("sceneid: no annotation file for polarization %q in %s", polarization, annotationDir)
}

func rangePixelSpacing(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("sceneid: open annotation: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	inImageInformation := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("sceneid: parse annotation: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "imageInformation" {
				inImageInformation = true
				continue
			}
			if inImageInformation && t.Name.Local == "rangePixelSpacing" {
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return 0, fmt.Errorf("sceneid: parse rangePixelSpacing: %w", err)
				}
				value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
				if err != nil {
					return 0, fmt.Errorf("sceneid: parse rangePixelSpacing %q: %w", text, err)
				}
				return value, nil
			}
		case xml.EndElement:
			if t.Name.Local == "imageInformation" {
				inImageInformation = false
			}
		}
	}
	return 0, fmt.Errorf("sceneid: no rangePixelSpacing in %s", path)
}

package sceneid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// landsatDateLayout is the date format inside Landsat product
// identifiers, e.g. 20190101.
const landsatDateLayout = "20060102"

// LandsatID is the parsed form of a Landsat Collection 1 product
// identifier such as LC08_L1TP_027039_20190101_20190130_01_T1.
type LandsatID struct {
	ProductID       string
	Sensor          string
	Correction      string
	Path            int
	Row             int
	AcquisitionDate time.Time
	ProcessingDate  time.Time
	Collection      int
	Tier            string
}

// ParseLandsatID extracts the metadata encoded in a Landsat product
// identifier.
func ParseLandsatID(productID string) (*LandsatID, error) {
	parts := strings.Split(productID, "_")
	if len(parts) != 7 {
		return nil, fmt.Errorf("sceneid: %q is not a Landsat product identifier", productID)
	}
	if len(parts[2]) != 6 {
		return nil, fmt.Errorf("sceneid: malformed path/row field %q in %q", parts[2], productID)
	}
	path, err := strconv.Atoi(parts[2][:3])
	if err != nil {
		return nil, fmt.Errorf("sceneid: parse path in %q: %w", productID, err)
	}
	row, err := strconv.Atoi(parts[2][3:])
	if err != nil {
		return nil, fmt.Errorf("sceneid: parse row in %q: %w", productID, err)
	}
	acquired, err := time.Parse(landsatDateLayout, parts[3])
	if err != nil {
		return nil, fmt.Errorf("sceneid: parse acquisition date in %q: %w", productID, err)
	}
	processed, err := time.Parse(landsatDateLayout, parts[4])
	if err != nil {
		return nil, fmt.Errorf("sceneid: parse processing date in %q: %w", productID, err)
	}
	collection, err := strconv.Atoi(parts[5])
	if err != nil {
		return nil, fmt.Errorf("sceneid: parse collection in %q: %w", productID, err)
	}
	return &LandsatID{
		ProductID:       productID,
		Sensor:          parts[0],
		Correction:      parts[1],
		Path:            path,
		Row:             row,
		AcquisitionDate: acquired,
		ProcessingDate:  processed,
		Collection:      collection,
		Tier:            parts[6],
	}, nil
}

// landsatGCSBase is the public Google Cloud Storage mirror of the
// Landsat Collection 1 archive.
const landsatGCSBase = "https://storage.googleapis.com/gcp-public-data-landsat"

// landsatFiles lists the files a Landsat product directory holds per
// sensor.
var landsatFiles = map[string][]string{
	"LT05": {
		"ANG.txt", "B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF",
		"B6.TIF", "B7.TIF", "BQA.TIF", "GCP.txt", "MTL.txt",
		"README.GTF", "VER.jpg", "VER.txt",
	},
	"LE07": {
		"ANG.txt", "B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF",
		"B6_VCID_1.TIF", "B6_VCID_2.TIF", "B7.TIF", "B8.TIF",
		"BQA.TIF", "GCP.txt", "MTL.txt", "README.GTF",
	},
	"LC08": {
		"ANG.txt", "B1.TIF", "B2.TIF", "B3.TIF", "B4.TIF", "B5.TIF",
		"B6.TIF", "B7.TIF", "B8.TIF", "B9.TIF", "B10.TIF", "B11.TIF",
		"BQA.TIF", "MTL.txt",
	},
}

// BaseURL returns the product directory URL on the public GCS mirror.
func (id *LandsatID) BaseURL() string {
	return fmt.Sprintf("%s/%s/%02d/%03d/%03d/%s/",
		landsatGCSBase, id.Sensor, id.Collection, id.Path, id.Row, id.ProductID)
}

// AvailableFiles lists the file labels available for this product's
// sensor.
func (id *LandsatID) AvailableFiles() ([]string, error) {
	files, ok := landsatFiles[id.Sensor]
	if !ok {
		return nil, fmt.Errorf("sceneid: no file inventory for sensor %q", id.Sensor)
	}
	return files, nil
}

// FileURL returns the download URL of one product file by its label.
// README files keep their bare name, everything else is prefixed with
// the product identifier.
func (id *LandsatID) FileURL(label string) string {
	if strings.Contains(label, "README") {
		return id.BaseURL() + label
	}
	return id.BaseURL() + id.ProductID + "_" + label
}

package scene

import "fmt"

// Platform identifies a satellite mission the way the provider catalogs
// spell it. Sentinel values follow the Copernicus platform names, Landsat
// values the USGS collection-1 dataset names.
type Platform string

const (
	Sentinel1 Platform = "Sentinel-1"
	Sentinel2 Platform = "Sentinel-2"
	Sentinel3 Platform = "Sentinel-3"
	Landsat5  Platform = "LANDSAT_TM_C1"
	Landsat7  Platform = "LANDSAT_ETM_C1"
	Landsat8  Platform = "LANDSAT_8_C1"
)

// Platforms returns all supported platforms in display order.
func Platforms() []Platform {
	return []Platform{Sentinel1, Sentinel2, Sentinel3, Landsat5, Landsat7, Landsat8}
}

// ParsePlatform validates a platform string as it appears in provider
// responses and metadata files.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	switch p {
	case Sentinel1, Sentinel2, Sentinel3, Landsat5, Landsat7, Landsat8:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

func (p Platform) String() string { return string(p) }

// IsSentinel reports whether the platform is a Copernicus Sentinel mission.
func (p Platform) IsSentinel() bool {
	return p == Sentinel1 || p == Sentinel2 || p == Sentinel3
}

// IsLandsat reports whether the platform is a USGS Landsat mission.
func (p Platform) IsLandsat() bool {
	return p == Landsat5 || p == Landsat7 || p == Landsat8
}

// HasCloudCover reports whether cloud cover filters apply to the platform.
// SAR acquisitions carry no cloud cover estimate.
func (p Platform) HasCloudCover() bool {
	return p != Sentinel1
}

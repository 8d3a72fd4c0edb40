package sceneid

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// utmZoneLetters covers the MGRS latitude bands from 80S to 84N in
// 8 degree steps. The final X band is 12 degrees tall, hence the
// doubled letter.
const utmZoneLetters = "CDEFGHJKLMNPQRSTUVWXX"

// UTMZone returns the UTM zone number and latitude band letter for a
// lon/lat coordinate, including the Norway and Svalbard exceptions.
func UTMZone(lat, lon float64) (int, byte, error) {
	if lat < -80 || lat > 84 {
		return 0, 0, fmt.Errorf("sceneid: latitude %v outside UTM coverage", lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("sceneid: longitude %v out of range", lon)
	}

	zone := int((lon+180)/6) + 1
	if lon == 180 {
		zone = 60
	}

	// Zone 32 is widened over southern Norway.
	if lat >= 56 && lat < 64 && lon >= 3 && lon < 12 {
		zone = 32
	}
	// Svalbard uses zones 31, 33, 35, 37 only.
	if lat >= 72 {
		switch {
		case lon >= 0 && lon < 9:
			zone = 31
		case lon >= 9 && lon < 21:
			zone = 33
		case lon >= 21 && lon < 33:
			zone = 35
		case lon >= 33 && lon < 42:
			zone = 37
		}
	}

	idx := int(lat+80) / 8
	if idx >= len(utmZoneLetters) {
		idx = len(utmZoneLetters) - 1
	}
	return zone, utmZoneLetters[idx], nil
}

// ProjString returns the proj4 string of the UTM zone the footprint
// centroid falls in. The footprint itself may span multiple zones.
func ProjString(footprint orb.Geometry) (string, error) {
	if footprint == nil {
		return "", fmt.Errorf("sceneid: nil footprint")
	}
	centroid, _ := planar.CentroidArea(footprint)
	zone, letter, err := UTMZone(centroid.Y(), centroid.X())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("+proj=utm +zone=%d%c, +ellps=WGS84 +datum=WGS84 +units=m +no_defs", zone, letter), nil
}

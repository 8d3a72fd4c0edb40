// Package sceneid extracts metadata that is encoded in scene identifiers
// and product annexes: Sentinel SAFE naming conventions, SAFE manifest
// files, and Landsat product identifiers.
package sceneid

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// scenePattern matches top-level Sentinel-1/2/3 product identifiers.
var scenePattern = regexp.MustCompile(`^S[1-3]._+`)

// IsSentinelScene reports whether ident looks like a Sentinel product
// folder or archive name.
func IsSentinelScene(ident string) bool {
	return scenePattern.MatchString(ident)
}

// s1Polarizations maps the polarization code embedded in a Sentinel-1
// product name to the channel list it carries.
// https://sentinel.esa.int/web/sentinel/user-guides/sentinel-1-sar/naming-conventions
var s1Polarizations = map[string][]string{
	"SSV": {"VV"},
	"SSH": {"HH"},
	"SDV": {"VV", "VH"},
	"SDH": {"HH", "HV"},
}

// S1Polarizations returns all polarization channels encoded in a
// Sentinel-1 product name.
func S1Polarizations(filename string) ([]string, error) {
	if len(filename) < 16 {
		return nil, fmt.Errorf("sceneid: %q too short for a Sentinel-1 product name", filename)
	}
	code := filename[13:16]
	channels, ok := s1Polarizations[code]
	if !ok {
		return nil, fmt.Errorf("sceneid: unknown polarization code %q in %q", code, filename)
	}
	return channels, nil
}

// S1Polarization returns the primary polarization channel of a
// Sentinel-1 product name.
func S1Polarization(filename string) (string, error) {
	channels, err := S1Polarizations(filename)
	if err != nil {
		return "", err
	}
	return channels[0], nil
}

// StartTimestamp returns the acquisition start timestamp token from a
// Sentinel product name. Works for S1, S2 (products generated after
// 2016-12-06) and S3.
func StartTimestamp(filename string) (string, error) {
	return sentinelTimestamp(filename, true)
}

// StopTimestamp returns the acquisition stop timestamp token from a
// Sentinel product name.
func StopTimestamp(filename string) (string, error) {
	return sentinelTimestamp(filename, false)
}

func sentinelTimestamp(filename string, start bool) (string, error) {
	switch {
	case strings.HasPrefix(filename, "S2"):
		return splitField(filename, 2)
	case strings.HasPrefix(filename, "S1"):
		if start {
			return splitField(filename, 4)
		}
		return splitField(filename, 5)
	default:
		// Sentinel-3 names carry fixed-position timestamps.
		if start {
			return sliceField(filename, 16, 31)
		}
		return sliceField(filename, 32, 47)
	}
}

func splitField(filename string, index int) (string, error) {
	fields := strings.Split(filename, "_")
	if index >= len(fields) {
		return "", fmt.Errorf("sceneid: %q has no field %d", filename, index)
	}
	return fields[index], nil
}

func sliceField(filename string, from, to int) (string, error) {
	if len(filename) < to {
		return "", fmt.Errorf("sceneid: %q too short for a Sentinel product name", filename)
	}
	return filename[from:to], nil
}

// TimestampLayout is the compact timestamp format used in Sentinel
// product names, e.g. 20200113T074619.
const TimestampLayout = "20060102T150405"

// ParseTimestamp parses a product-name timestamp token.
func ParseTimestamp(token string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("sceneid: parse timestamp %q: %w", token, err)
	}
	return t, nil
}

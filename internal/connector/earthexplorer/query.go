package earthexplorer

import (
	"fmt"
	"time"

	"github.com/eoforge/sathub/internal/hub"
)

// searchDateFormat is the date form the temporalFilter accepts.
const searchDateFormat = "2006-01-02"

// buildSearchParams maps a scene query onto inventory search parameters.
// The JSON API has no relative-time syntax, so NOW expressions are
// resolved locally before they go on the wire.
func buildSearchParams(q *hub.SceneQuery, maxResults int) (map[string]any, error) {
	if q.Platform == "" {
		return nil, fmt.Errorf("earthexplorer: platform is required")
	}

	params := map[string]any{
		"datasetName":    q.Platform.String(),
		"startingNumber": 1,
		"maxResults":     maxResults,
		"sortOrder":      "DESC",
	}

	if q.From != "" || q.To != "" {
		from := q.From
		if from == "" {
			from = "1970-01-01"
		}
		to := q.To
		if to == "" {
			to = "NOW"
		}
		now := time.Now()
		start, err := hub.ResolveQueryTime(from, now)
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: from: %w", err)
		}
		end, err := hub.ResolveQueryTime(to, now)
		if err != nil {
			return nil, fmt.Errorf("earthexplorer: to: %w", err)
		}
		params["temporalFilter"] = map[string]any{
			"startDate": start.Format(searchDateFormat),
			"endDate":   end.Format(searchDateFormat),
		}
	}

	if q.AOI != nil {
		b := q.AOI.Bound()
		params["spatialFilter"] = map[string]any{
			"filterType": "mbr",
			"lowerLeft":  map[string]any{"latitude": b.Min.Y(), "longitude": b.Min.X()},
			"upperRight": map[string]any{"latitude": b.Max.Y(), "longitude": b.Max.X()},
		}
	}

	// The inventory API filters on an upper cloud bound only.
	if q.CloudCover != nil && q.Platform.HasCloudCover() {
		params["maxCloudCover"] = q.CloudCover.Max
	}

	for k, v := range q.Extra {
		params[k] = v
	}
	return params, nil
}

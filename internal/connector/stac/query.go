package stac

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// buildSearchParams renders a SceneQuery as a STAC item-search body.
// Collections come from the query's "collections" extra or the configured
// defaults; the platform maps onto the query extension's "platform" field.
func buildSearchParams(q *hub.SceneQuery, defaultCollections []string, limit int) (map[string]any, error) {
	if q == nil {
		return nil, fmt.Errorf("stac: nil query")
	}

	params := map[string]any{}
	if limit > 0 {
		params["limit"] = limit
	}

	collections := defaultCollections
	if raw, ok := q.Extra["collections"]; ok && raw != "" {
		collections = strings.Split(raw, ",")
		for i := range collections {
			collections[i] = strings.TrimSpace(collections[i])
		}
	}
	if len(collections) > 0 {
		params["collections"] = collections
	}
	if q.Platform == "" && len(collections) == 0 {
		return nil, fmt.Errorf("stac: platform or collections required")
	}

	if q.From != "" || q.To != "" {
		interval, err := datetimeInterval(q.From, q.To)
		if err != nil {
			return nil, err
		}
		params["datetime"] = interval
	}

	if q.AOI != nil {
		params["intersects"] = geojson.NewGeometry(q.AOI.Geometry())
	}

	queryExt := map[string]any{}
	if q.Platform != "" {
		queryExt["platform"] = map[string]any{"in": stacPlatformValues(q.Platform)}
	}
	if q.CloudCover != nil && q.Platform.HasCloudCover() {
		queryExt["eo:cloud_cover"] = map[string]any{"gte": q.CloudCover.Min, "lt": q.CloudCover.Max}
	}
	if len(queryExt) > 0 {
		params["query"] = queryExt
	}

	for _, k := range sortedKeys(q.Extra) {
		if k == "collections" {
			continue
		}
		params[k] = q.Extra[k]
	}

	return params, nil
}

// datetimeInterval renders From/To as a STAC datetime interval. Open ends
// use "..". Relative expressions resolve locally since the STAC spec has
// no relative-time syntax.
func datetimeInterval(from, to string) (string, error) {
	start := ".."
	if from != "" {
		t, err := hub.ResolveQueryTime(from, time.Now())
		if err != nil {
			return "", fmt.Errorf("stac: from: %w", err)
		}
		start = hub.FormatTime(t)
	}
	end := ".."
	if to != "" {
		t, err := hub.ResolveQueryTime(to, time.Now())
		if err != nil {
			return "", fmt.Errorf("stac: to: %w", err)
		}
		end = hub.FormatTime(t)
	}
	return start + "/" + end, nil
}

// stacPlatformValues lists the lowercase platform names STAC catalogs use
// for a mission, covering both satellites of a Sentinel pair.
func stacPlatformValues(p scene.Platform) []string {
	switch p {
	case scene.Sentinel1:
		return []string{"sentinel-1a", "sentinel-1b"}
	case scene.Sentinel2:
		return []string{"sentinel-2a", "sentinel-2b"}
	case scene.Sentinel3:
		return []string{"sentinel-3a", "sentinel-3b"}
	case scene.Landsat5:
		return []string{"landsat-5"}
	case scene.Landsat7:
		return []string{"landsat-7"}
	case scene.Landsat8:
		return []string{"landsat-8"}
	}
	return []string{strings.ToLower(p.String())}
}

// stringifyParams flattens a search body into query parameters for servers
// that reject POST. Lists join with commas per the STAC GET conventions;
// structured values serialize as JSON strings.
func stringifyParams(params map[string]any) url.Values {
	values := url.Values{}
	for k, v := range params {
		switch tv := v.(type) {
		case string:
			values.Set(k, tv)
		case int:
			values.Set(k, strconv.Itoa(tv))
		case float64:
			values.Set(k, strconv.FormatFloat(tv, 'f', -1, 64))
		case []string:
			values.Set(k, strings.Join(tv, ","))
		case []float64:
			parts := make([]string, len(tv))
			for i, f := range tv {
				parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
			}
			values.Set(k, strings.Join(parts, ","))
		default:
			if b, err := json.Marshal(v); err == nil {
				values.Set(k, string(b))
			}
		}
	}
	return values
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

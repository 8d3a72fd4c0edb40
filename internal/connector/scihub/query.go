package scihub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eoforge/sathub/internal/hub"
)

// buildSearchQuery renders a SceneQuery as the OpenSearch q parameter.
// Terms join with " AND ": time window first, footprint last. The cloud
// cover term is omitted for platforms without one.
func buildSearchQuery(q *hub.SceneQuery) (string, error) {
	if q == nil || q.Platform == "" {
		return "", fmt.Errorf("scihub: platform is required")
	}

	var terms []string
	if q.From != "" || q.To != "" {
		from := q.From
		if from == "" {
			from = "1970-01-01"
		}
		to := q.To
		if to == "" {
			to = "NOW"
		}
		fromQ, err := hub.NormalizeQueryTime(from)
		if err != nil {
			return "", fmt.Errorf("scihub: from: %w", err)
		}
		toQ, err := hub.NormalizeQueryTime(to)
		if err != nil {
			return "", fmt.Errorf("scihub: to: %w", err)
		}
		terms = append(terms, fmt.Sprintf("beginposition:[%s TO %s]", fromQ, toQ))
	}

	if q.CloudCover != nil && q.Platform.HasCloudCover() {
		terms = append(terms, fmt.Sprintf("cloudcoverpercentage:[%d TO %d]", q.CloudCover.Min, q.CloudCover.Max))
	}

	terms = append(terms, "platformname:"+q.Platform.String())

	for _, k := range sortedKeys(q.Extra) {
		terms = append(terms, k+":"+q.Extra[k])
	}

	if q.AOI != nil {
		terms = append(terms, `footprint:"Intersects(`+q.AOI.WKT()+`)"`)
	}

	return strings.Join(terms, " AND "), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

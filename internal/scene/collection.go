package scene

import (
	"github.com/paulmach/orb/geojson"
)

// Collection wraps an ordered set of metadata records with the filter and
// export conveniences callers chain after a query.
type Collection struct {
	Items []*Metadata
}

// NewCollection builds a collection from records.
func NewCollection(items ...*Metadata) *Collection {
	return &Collection{Items: items}
}

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.Items) }

// Filter returns a new collection holding only the records whose exported
// property key equals value. Numeric values compare loosely so that callers
// can pass ints against float properties.
func (c *Collection) Filter(key string, value any) *Collection {
	out := &Collection{}
	for _, item := range c.Items {
		if propertyEqual(item.Properties()[key], value) {
			out.Items = append(out.Items, item)
		}
	}
	return out
}

// SrcIDs returns the source product IDs in collection order.
func (c *Collection) SrcIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.SrcID)
	}
	return ids
}

// ToFeatureCollection converts the records into a GeoJSON feature collection.
func (c *Collection) ToFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, item := range c.Items {
		fc.Append(item.ToFeature())
	}
	return fc
}

// MarshalJSON renders the collection as a GeoJSON feature collection.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return c.ToFeatureCollection().MarshalJSON()
}

// Save writes every record as <srcid>.json into targetDir.
func (c *Collection) Save(targetDir string) error {
	for _, item := range c.Items {
		if err := item.Save(targetDir); err != nil {
			return err
		}
	}
	return nil
}

func propertyEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

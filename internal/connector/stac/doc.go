// Package stac implements a SpatioTemporal Asset Catalog API hub.
//
// The connector keeps two surfaces. The raw surface (Search, Items,
// Collections) speaks the STAC item-search protocol: POST /search when
// the query carries a geometry, with a GET fallback for servers that
// answer 405, and rel=next link paging. The hub surface normalizes items
// into scene metadata like every other catalog.
//
// Item reading is pluggable: the default reader decodes features as the
// API delivered them, the S3 reader rebuilds each item's location inside
// an object store and reads the full item JSON from there.
package stac

// Package file serves scene metadata from a local directory of GeoJSON
// files, one feature per file, named <srcid>.json the way the download
// helpers write them.
//
// Queries decode every matching file and filter locally on platform,
// acquisition window, AOI intersection and cloud cover. A file that is
// not valid catalog metadata fails the query by name instead of being
// silently skipped. The catalog is query-only; products live wherever
// they were downloaded to.
package file

// Package scihub implements the Copernicus Open Access Hub connector.
//
// Catalog queries go through the OpenSearch endpoint (search?format=json)
// with offset paging on start/rows. Product metadata, payloads, and
// quicklooks go through the OData endpoint (odata/v1/Products('uuid')).
// Responses normalize into scene.Metadata.
package scihub

// Package earthexplorer implements the USGS Earth Explorer hub on top of
// the inventory JSON API, version 1.4.1.
//
// Every catalog call is a POST of a jsonRequest form field against
// {base}/{method} and carries an apiKey obtained from login. Session keys
// expire server-side; on an AUTH error the connector logs in again once
// and replays the call. The JSON API serves metadata only: full products
// are assembled file by file from the public Landsat mirror on Google
// Cloud Storage and packed into a zip archive.
package earthexplorer

package scihub_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/eoforge/sathub/internal/aoi"
	"github.com/eoforge/sathub/internal/connector/scihub"
	"github.com/eoforge/sathub/internal/hub"
	"github.com/eoforge/sathub/internal/scene"
)

// =============================================================================
// SCIHUB TESTS
// Unit tests run against an in-process dhus stub (no network listeners).
// =============================================================================

const (
	s1UUID = "04aeee88-1d33-4f37-b1d2-ecde36de9cc9"
	s1Name = "S1A_IW_GRDH_1SDV_20200113T170130_20200113T170155_030824_038984_6398"
	s2UUID = "2e1d9b4e-19f5-45b3-9c4a-0e3c7ac59e90"
	s2Name = "S2A_MSIL1C_20200113T102421_N0208_R065_T32UPU_20200113T104106"
)

const gmlFootprint = `<gml:Polygon srsName="http://www.opengis.net/gml/srs/epsg.xml#4326" xmlns:gml="http://www.opengis.net/gml">
<gml:outerBoundaryIs><gml:LinearRing><gml:coordinates>50.975143,7.950611 51.445923,11.293897 49.767273,11.321623 49.310112,8.070129 50.975143,7.950611</gml:coordinates></gml:LinearRing></gml:outerBoundaryIs>
</gml:Polygon>`

// handlerTransport serves requests in-process.
type handlerTransport struct {
	handler nethttp.Handler
}

func (rt *handlerTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	rr := httptest.NewRecorder()
	rt.handler.ServeHTTP(rr, req)
	res := rr.Result()
	res.Request = req
	return res, nil
}

// dhusStub emulates the Open Access Hub endpoints the connector talks to.
type dhusStub struct {
	entries   []map[string]any
	payload   []byte
	quicklook []byte
	online    *bool
	searches  []url.Values
}

func (s *dhusStub) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	user, pw, ok := r.BasicAuth()
	if !ok || user != "copernicus" || pw != "secret" {
		w.WriteHeader(nethttp.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
		return
	}

	switch r.URL.Path {
	case "/search":
		s.searches = append(s.searches, r.URL.Query())
		s.serveSearch(w, r)
	case "/api/stub/version":
		writeJSON(w, map[string]any{"value": "2.4.1"})
	case "/odata/v1/Products('" + s1UUID + "')":
		s.serveProduct(w)
	case "/odata/v1/Products('" + s1UUID + "')/$value":
		w.Header().Set("Content-Length", strconv.Itoa(len(s.payload)))
		_, _ = w.Write(s.payload)
	case "/odata/v1/Products('" + s1UUID + "')/Products('Quicklook')/$value":
		_, _ = w.Write(s.quicklook)
	default:
		w.WriteHeader(nethttp.StatusNotFound)
	}
}

func (s *dhusStub) serveSearch(w nethttp.ResponseWriter, r *nethttp.Request) {
	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
	end := start + rows
	if end > len(s.entries) {
		end = len(s.entries)
	}
	if start > len(s.entries) {
		start = len(s.entries)
	}
	page := s.entries[start:end]

	feed := map[string]any{
		"opensearch:totalResults": strconv.Itoa(len(s.entries)),
		"opensearch:startIndex":   strconv.Itoa(start),
		"opensearch:itemsPerPage": strconv.Itoa(rows),
	}
	// dhus collapses a single-element entry list into a bare object.
	switch len(page) {
	case 0:
	case 1:
		feed["entry"] = page[0]
	default:
		feed["entry"] = page
	}
	writeJSON(w, map[string]any{"feed": feed})
}

func (s *dhusStub) serveProduct(w nethttp.ResponseWriter) {
	product := map[string]any{
		"Id":              s1UUID,
		"Name":            s1Name,
		"ContentLength":   strconv.Itoa(len(s.payload)),
		"IngestionDate":   "/Date(1578942707861)/",
		"CreationDate":    "/Date(1578942707861)/",
		"ContentDate":     map[string]any{"Start": "/Date(1578934890347)/", "End": "/Date(1578934915347)/"},
		"Checksum":        map[string]any{"Algorithm": "MD5", "Value": md5Hex(s.payload)},
		"ContentGeometry": gmlFootprint,
	}
	if s.online != nil {
		product["Online"] = *s.online
	}
	writeJSON(w, map[string]any{"d": product})
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func testEntries() []map[string]any {
	return []map[string]any{
		{
			"title":   s1Name,
			"id":      s1UUID,
			"summary": "Date: 2020-01-13T17:01:30.347Z, Instrument: SAR-C SAR, Mode: IW, Satellite: S1A, Size: 1.65 GB",
			"link": []any{
				map[string]any{"href": "http://stub.local/odata/v1/Products('" + s1UUID + "')/$value"},
				map[string]any{"rel": "alternative", "href": "http://stub.local/odata/v1/Products('" + s1UUID + "')/"},
				map[string]any{"rel": "icon", "href": "http://stub.local/odata/v1/Products('" + s1UUID + "')/Products('Quicklook')/$value"},
			},
			"str": []any{
				map[string]any{"name": "identifier", "content": s1Name},
				map[string]any{"name": "uuid", "content": s1UUID},
				map[string]any{"name": "platformname", "content": "Sentinel-1"},
				map[string]any{"name": "producttype", "content": "GRD"},
				map[string]any{"name": "orbitdirection", "content": "ASCENDING"},
				map[string]any{"name": "format", "content": "SAFE"},
				map[string]any{"name": "size", "content": "1.65 GB"},
				map[string]any{"name": "footprint", "content": "POLYGON ((7.950611 50.975143,11.293897 51.445923,11.321623 49.767273,8.070129 49.310112,7.950611 50.975143))"},
			},
			"int": []any{
				map[string]any{"name": "orbitnumber", "content": "30824"},
				map[string]any{"name": "relativeorbitnumber", "content": "127"},
			},
			"date": []any{
				map[string]any{"name": "beginposition", "content": "2020-01-13T17:01:30.347Z"},
				map[string]any{"name": "ingestiondate", "content": "2020-01-13T18:58:27.861Z"},
			},
		},
		{
			"title": s2Name,
			"id":    s2UUID,
			"link": []any{
				map[string]any{"href": "http://stub.local/odata/v1/Products('" + s2UUID + "')/$value"},
			},
			"str": []any{
				map[string]any{"name": "identifier", "content": s2Name},
				map[string]any{"name": "uuid", "content": s2UUID},
				map[string]any{"name": "platformname", "content": "Sentinel-2"},
				map[string]any{"name": "producttype", "content": "S2MSI1C"},
				map[string]any{"name": "orbitdirection", "content": "DESCENDING"},
				map[string]any{"name": "format", "content": "SAFE"},
				map[string]any{"name": "size", "content": "793.82 MB"},
				map[string]any{"name": "footprint", "content": "POLYGON ((10.312 48.545,11.812 48.562,11.851 47.575,10.366 47.559,10.312 48.545))"},
			},
			"int": []any{
				map[string]any{"name": "orbitnumber", "content": "23840"},
				map[string]any{"name": "relativeorbitnumber", "content": "65"},
			},
			"date": []any{
				map[string]any{"name": "beginposition", "content": "2020-01-13T10:24:21.024Z"},
				map[string]any{"name": "ingestiondate", "content": "2020-01-13T13:11:42.551Z"},
			},
			// Single double value arrives as a bare object, not a list.
			"double": map[string]any{"name": "cloudcoverpercentage", "content": "30.434"},
		},
	}
}

func newStubHub(t *testing.T, stub nethttp.Handler) *scihub.SciHub {
	t.Helper()
	h, err := scihub.New(&scihub.Config{
		BaseURL:   "http://stub.local",
		User:      "copernicus",
		Password:  "secret",
		Transport: &handlerTransport{handler: stub},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return h
}

func munichAOI(t *testing.T) *aoi.AOI {
	t.Helper()
	a, err := aoi.FromBBox(11.0, 47.8, 11.3, 48.1)
	if err != nil {
		t.Fatalf("FromBBox failed: %v", err)
	}
	return a
}

// --- Unit Tests ---

func TestSciHub_ConfigValidation(t *testing.T) {
	if _, err := scihub.New(&scihub.Config{}); err == nil {
		t.Fatal("expected error for missing user")
	}
	if _, err := scihub.New(&scihub.Config{User: "copernicus"}); err == nil {
		t.Fatal("expected error for missing password")
	}

	cfg := &scihub.Config{User: "copernicus", Password: "secret"}
	h, err := scihub.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close()
	if cfg.BaseURL != scihub.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
	if cfg.FetchSize != scihub.DefaultFetchSize {
		t.Errorf("FetchSize = %d, want %d", cfg.FetchSize, scihub.DefaultFetchSize)
	}
}

func TestSciHub_FactoryRegistered(t *testing.T) {
	if _, ok := hub.DefaultRegistry().Get("hub.scihub"); !ok {
		t.Fatal("hub.scihub factory not registered")
	}

	stub := &dhusStub{entries: testEntries()}
	h, err := hub.DefaultRegistry().Create("hub.scihub", map[string]any{
		"user":      "copernicus",
		"password":  "secret",
		"baseUrl":   "http://stub.local",
		"transport": nethttp.RoundTripper(&handlerTransport{handler: stub}),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer h.Close()

	if _, ok := h.(hub.CatalogHub); !ok {
		t.Error("expected hub.scihub to implement CatalogHub")
	}
	if _, ok := h.(hub.DownloadHub); !ok {
		t.Error("expected hub.scihub to implement DownloadHub")
	}
	if h.ID() != "hub.scihub" {
		t.Errorf("ID = %q", h.ID())
	}
}

func TestSciHub_QueryBuildsOpenSearchTerms(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	it, err := h.Query(context.Background(), &hub.SceneQuery{
		Platform:   scene.Sentinel2,
		AOI:        munichAOI(t),
		From:       "2020-01-01",
		To:         "2020-01-20",
		CloudCover: &hub.CloudRange{Min: 0, Max: 50},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := hub.Collect(it); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(stub.searches) != 1 {
		t.Fatalf("expected 1 search request, got %d", len(stub.searches))
	}
	q := stub.searches[0].Get("q")
	terms := strings.Split(q, " AND ")
	if len(terms) != 4 {
		t.Fatalf("expected 4 query terms, got %d: %q", len(terms), q)
	}
	if terms[0] != "beginposition:[2020-01-01T00:00:00Z TO 2020-01-20T00:00:00Z]" {
		t.Errorf("time term = %q", terms[0])
	}
	if terms[1] != "cloudcoverpercentage:[0 TO 50]" {
		t.Errorf("cloud term = %q", terms[1])
	}
	if terms[2] != "platformname:Sentinel-2" {
		t.Errorf("platform term = %q", terms[2])
	}
	if !strings.HasPrefix(terms[3], `footprint:"Intersects(POLYGON(`) {
		t.Errorf("footprint term = %q", terms[3])
	}
}

func TestSciHub_QuerySkipsCloudCoverForSAR(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	it, err := h.Query(context.Background(), &hub.SceneQuery{
		Platform:   scene.Sentinel1,
		From:       "NOW-30DAYS",
		To:         "NOW",
		CloudCover: &hub.CloudRange{Min: 0, Max: 20},
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := hub.Collect(it); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	q := stub.searches[0].Get("q")
	if strings.Contains(q, "cloudcoverpercentage") {
		t.Errorf("SAR query should not carry a cloud cover term: %q", q)
	}
	if !strings.Contains(q, "beginposition:[NOW-30DAYS TO NOW]") {
		t.Errorf("relative time should pass through untouched: %q", q)
	}
}

func TestSciHub_QueryRejectsBadInput(t *testing.T) {
	h := newStubHub(t, &dhusStub{})
	defer h.Close()

	if _, err := h.Query(context.Background(), &hub.SceneQuery{From: "2020-01-01", To: "2020-01-20"}); err == nil {
		t.Error("expected error for missing platform")
	}
	if _, err := h.Query(context.Background(), &hub.SceneQuery{Platform: scene.Sentinel2, From: "13.01.2020", To: "NOW"}); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestSciHub_QueryMapsEntries(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	it, err := h.Query(context.Background(), &hub.SceneQuery{Platform: scene.Sentinel1, From: "2020-01-01", To: "2020-01-20"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	records, err := hub.Collect(it)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	s1 := records[0]
	if s1.ID != s1Name || s1.SrcID != s1Name {
		t.Errorf("id = %q, srcid = %q", s1.ID, s1.SrcID)
	}
	if s1.SrcUUID != s1UUID {
		t.Errorf("srcuuid = %q", s1.SrcUUID)
	}
	if s1.Platform != scene.Sentinel1 {
		t.Errorf("platform = %q", s1.Platform)
	}
	if s1.OrbitNumber != 30824 || s1.RelativeOrbitNumber != 127 {
		t.Errorf("orbits = %d/%d", s1.OrbitNumber, s1.RelativeOrbitNumber)
	}
	if s1.CloudCoverPercentage != nil {
		t.Error("SAR record should have no cloud cover")
	}
	if s1.ProductType != "GRD" || s1.Format != "SAFE" || s1.Size != "1.65 GB" {
		t.Errorf("producttype/format/size = %q/%q/%q", s1.ProductType, s1.Format, s1.Size)
	}
	if !strings.HasSuffix(s1.SrcURL, "/$value") {
		t.Errorf("srcurl = %q", s1.SrcURL)
	}
	if s1.Geometry == nil {
		t.Error("expected footprint geometry")
	}
	want := time.Date(2020, 1, 13, 17, 1, 30, 347000000, time.UTC)
	if !s1.AcquisitionDate.Equal(want) {
		t.Errorf("acquisitiondate = %v, want %v", s1.AcquisitionDate, want)
	}

	s2 := records[1]
	if s2.Platform != scene.Sentinel2 {
		t.Errorf("platform = %q", s2.Platform)
	}
	if s2.CloudCoverPercentage == nil || *s2.CloudCoverPercentage != 30.43 {
		t.Errorf("cloudcover = %v, want 30.43", s2.CloudCoverPercentage)
	}
}

func TestSciHub_QueryPaginates(t *testing.T) {
	entries := testEntries()
	third := map[string]any{}
	for k, v := range entries[0] {
		third[k] = v
	}
	third["id"] = "c2f6661a-36a3-4d45-b9db-c54partial03"
	stub := &dhusStub{entries: append(entries, third)}

	h, err := scihub.New(&scihub.Config{
		BaseURL:   "http://stub.local",
		User:      "copernicus",
		Password:  "secret",
		FetchSize: 2,
		Transport: &handlerTransport{handler: stub},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer h.Close()

	it, err := h.Query(context.Background(), &hub.SceneQuery{Platform: scene.Sentinel1, From: "2020-01-01", To: "2020-01-20"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	records, err := hub.Collect(it)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records across pages, got %d", len(records))
	}

	if len(stub.searches) != 2 {
		t.Fatalf("expected 2 page requests, got %d", len(stub.searches))
	}
	if got := stub.searches[0].Get("start"); got != "0" {
		t.Errorf("first page start = %s", got)
	}
	if got := stub.searches[1].Get("start"); got != "2" {
		t.Errorf("second page start = %s", got)
	}
}

func TestSciHub_QueryHonorsLimit(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	it, err := h.Query(context.Background(), &hub.SceneQuery{
		Platform: scene.Sentinel1,
		From:     "2020-01-01",
		To:       "2020-01-20",
		Limit:    1,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	records, err := hub.Collect(it)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(stub.searches) != 1 {
		t.Errorf("expected a single page request, got %d", len(stub.searches))
	}
	if got := stub.searches[0].Get("rows"); got != "1" {
		t.Errorf("rows = %s, want 1", got)
	}
}

func TestSciHub_Count(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	n, err := h.Count(context.Background(), &hub.SceneQuery{Platform: scene.Sentinel1, From: "2020-01-01", To: "2020-01-20"})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if got := stub.searches[0].Get("rows"); got != "0" {
		t.Errorf("count should request zero rows, got %s", got)
	}
}

func TestSciHub_Get(t *testing.T) {
	stub := &dhusStub{payload: []byte("zip bytes for checksum")}
	h := newStubHub(t, stub)
	defer h.Close()

	m, err := h.Get(context.Background(), s1UUID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m.SrcID != s1Name || m.SrcUUID != s1UUID {
		t.Errorf("srcid = %q, srcuuid = %q", m.SrcID, m.SrcUUID)
	}
	if m.Platform != scene.Sentinel1 {
		t.Errorf("platform = %q", m.Platform)
	}
	want := time.Date(2020, 1, 13, 17, 1, 30, 347000000, time.UTC)
	if !m.AcquisitionDate.Equal(want) {
		t.Errorf("acquisitiondate = %v, want %v", m.AcquisitionDate, want)
	}
	if m.Geometry == nil {
		t.Fatal("expected footprint geometry")
	}
	b := m.Geometry.Bound()
	if math.Abs(b.Min.X()-7.950611) > 1e-9 || math.Abs(b.Max.Y()-51.445923) > 1e-9 {
		t.Errorf("footprint bound = %v", b)
	}
	if !strings.HasSuffix(m.SrcURL, "/$value") {
		t.Errorf("srcurl = %q", m.SrcURL)
	}

	if _, err := h.Get(context.Background(), "no-such-uuid"); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestSciHub_DownloadImage(t *testing.T) {
	payload := bytes.Repeat([]byte("sentinel product bytes "), 64)
	stub := &dhusStub{payload: payload}
	h := newStubHub(t, stub)
	defer h.Close()

	dir := t.TempDir()
	res, err := h.DownloadImage(context.Background(), &hub.DownloadRequest{ProductUUID: s1UUID, TargetDir: dir})
	if err != nil {
		t.Fatalf("DownloadImage failed: %v", err)
	}
	wantPath := filepath.Join(dir, s1Name+".zip")
	if res.Path != wantPath {
		t.Errorf("path = %q, want %q", res.Path, wantPath)
	}
	if res.Skipped || res.Bytes != int64(len(payload)) {
		t.Errorf("result = %+v", res)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("downloaded content mismatch")
	}

	// Complete files are skipped on the next run.
	res, err = h.DownloadImage(context.Background(), &hub.DownloadRequest{ProductUUID: s1UUID, TargetDir: dir})
	if err != nil {
		t.Fatalf("second DownloadImage failed: %v", err)
	}
	if !res.Skipped {
		t.Error("expected complete download to be skipped")
	}
}

func TestSciHub_DownloadImageOffline(t *testing.T) {
	offline := false
	stub := &dhusStub{payload: []byte("x"), online: &offline}
	h := newStubHub(t, stub)
	defer h.Close()

	_, err := h.DownloadImage(context.Background(), &hub.DownloadRequest{ProductUUID: s1UUID, TargetDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected offline error, got %v", err)
	}
}

func TestSciHub_DownloadQuicklook(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 12; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode quicklook: %v", err)
	}
	stub := &dhusStub{payload: []byte("x"), quicklook: buf.Bytes()}
	h := newStubHub(t, stub)
	defer h.Close()

	dir := t.TempDir()
	res, err := h.DownloadQuicklook(context.Background(), &hub.QuicklookRequest{ProductUUID: s1UUID, TargetDir: dir})
	if err != nil {
		t.Fatalf("DownloadQuicklook failed: %v", err)
	}
	if res.ImagePath != filepath.Join(dir, s1Name+".jpg") {
		t.Errorf("image path = %q", res.ImagePath)
	}
	if _, err := os.Stat(res.ImagePath); err != nil {
		t.Errorf("quicklook image missing: %v", err)
	}

	data, err := os.ReadFile(res.WorldfilePath)
	if err != nil {
		t.Fatalf("read worldfile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("worldfile has %d lines, want 6", len(lines))
	}
	dx, err := strconv.ParseFloat(lines[0], 64)
	if err != nil {
		t.Fatalf("parse dx: %v", err)
	}
	wantDX := (11.321623 - 7.950611) / 12.0
	if math.Abs(dx-wantDX) > 1e-9 {
		t.Errorf("dx = %v, want %v", dx, wantDX)
	}
	if ulx, _ := strconv.ParseFloat(lines[4], 64); math.Abs(ulx-7.950611) > 1e-9 {
		t.Errorf("ulx = %v", ulx)
	}
	if uly, _ := strconv.ParseFloat(lines[5], 64); math.Abs(uly-51.445923) > 1e-9 {
		t.Errorf("uly = %v", uly)
	}
}

func TestSciHub_ValidateConfig(t *testing.T) {
	stub := &dhusStub{entries: testEntries()}
	h := newStubHub(t, stub)
	defer h.Close()

	result, err := h.ValidateConfig(context.Background(), nil)
	if err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid connection: %s", result.Message)
	}
	if result.DetectedVersion != "2.4.1" {
		t.Errorf("detected version = %q", result.DetectedVersion)
	}

	bad, err := scihub.New(&scihub.Config{
		BaseURL:   "http://stub.local",
		User:      "copernicus",
		Password:  "wrong",
		Transport: &handlerTransport{handler: stub},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer bad.Close()
	result, err = bad.ValidateConfig(context.Background(), nil)
	if err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
	if result.Valid || !strings.Contains(result.Message, "Authentication failed") {
		t.Errorf("expected auth failure, got %+v", result)
	}
}

// --- Integration Tests ---

// Environment variables for SciHub integration tests:
// SCIHUB_USER, SCIHUB_PW

func skipIfNoSciHub(t *testing.T) {
	if os.Getenv("SCIHUB_USER") == "" || os.Getenv("SCIHUB_PW") == "" {
		t.Skip("Skipping SciHub integration test: SCIHUB_USER or SCIHUB_PW not set")
	}
}

func TestSciHub_Integration_ValidateConfig(t *testing.T) {
	skipIfNoSciHub(t)

	h, err := hub.DefaultRegistry().Create("hub.scihub", map[string]any{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer h.Close()

	result, err := h.ValidateConfig(context.Background(), nil)
	if err != nil {
		t.Fatalf("ValidateConfig error: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid connection, got: %s", result.Message)
	}
	t.Logf("Connection valid, detected version: %s", result.DetectedVersion)
}

func TestSciHub_Integration_QueryMunich(t *testing.T) {
	skipIfNoSciHub(t)

	h, err := hub.DefaultRegistry().Create("hub.scihub", map[string]any{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer h.Close()

	catalog := h.(hub.CatalogHub)
	it, err := catalog.Query(context.Background(), &hub.SceneQuery{
		Platform: scene.Sentinel2,
		AOI:      munichAOI(t),
		From:     "NOW-30DAYS",
		To:       "NOW",
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	records, err := hub.Collect(it)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	t.Logf("Found %d scenes:", len(records))
	for _, r := range records {
		t.Logf("  - %s (%s)", r.SrcID, r.AcquisitionDate.Format("2006-01-02"))
	}
}

// Package index keeps a queryable Postgres catalog of scene metadata.
// Hub query results are upserted by source ID; the full GeoJSON feature
// is stored alongside flat filter columns so records round-trip without
// loss. Footprint filtering uses the stored lon/lat bounds, which keeps
// the schema free of PostGIS.
package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/eoforge/sathub/internal/scene"
)

// Repository is a Postgres-backed scene catalog.
type Repository struct {
	db *pgxpool.Pool
}

// Open connects to Postgres with the given DSN.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("index: dsn is required (set SATHUB_INDEX_DSN)")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("index: connect: %w", err)
	}
	return &Repository{db: pool}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.db.Close()
}

// Ping verifies the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// =============================================================================
// SCHEMA
// =============================================================================

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scenes (
	srcid                TEXT PRIMARY KEY,
	srcuuid              TEXT NOT NULL,
	platform             TEXT NOT NULL,
	producttype          TEXT,
	orbitdirection       TEXT,
	orbitnumber          INTEGER,
	relativeorbitnumber  INTEGER,
	acquisitiondate      TIMESTAMPTZ,
	ingestiondate        TIMESTAMPTZ,
	cloudcoverpercentage DOUBLE PRECISION,
	min_lon              DOUBLE PRECISION,
	min_lat              DOUBLE PRECISION,
	max_lon              DOUBLE PRECISION,
	max_lat              DOUBLE PRECISION,
	feature              JSONB NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS scenes_platform_idx ON scenes (platform)`,
	`CREATE INDEX IF NOT EXISTS scenes_acquisitiondate_idx ON scenes (acquisitiondate)`,
}

// EnsureSchema creates the scenes table and its indexes if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("index: ensure schema: %w", err)
		}
	}
	return nil
}

// =============================================================================
// WRITES
// =============================================================================

// Upsert inserts or updates one record keyed by source ID.
func (r *Repository) Upsert(ctx context.Context, m *scene.Metadata) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	feature, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("index: marshal %s: %w", m.SrcID, err)
	}

	var minLon, minLat, maxLon, maxLat any
	if m.Geometry != nil {
		b := m.Geometry.Bound()
		minLon, minLat, maxLon, maxLat = b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()
	}

	columns := []string{
		"srcid", "srcuuid", "platform", "producttype", "orbitdirection",
		"orbitnumber", "relativeorbitnumber", "acquisitiondate", "ingestiondate",
		"cloudcoverpercentage", "min_lon", "min_lat", "max_lon", "max_lat", "feature",
	}
	values := []any{
		m.SrcID, m.SrcUUID, m.Platform.String(), nullable(m.ProductType), nullable(m.OrbitDirection),
		m.OrbitNumber, m.RelativeOrbitNumber, nullableTime(m.AcquisitionDate), nullableTime(m.IngestionDate),
		m.CloudCoverPercentage, minLon, minLat, maxLon, maxLat, string(feature),
	}
	sets := []string{
		"srcuuid = EXCLUDED.srcuuid",
		"platform = EXCLUDED.platform",
		"producttype = EXCLUDED.producttype",
		"orbitdirection = EXCLUDED.orbitdirection",
		"orbitnumber = EXCLUDED.orbitnumber",
		"relativeorbitnumber = EXCLUDED.relativeorbitnumber",
		"acquisitiondate = EXCLUDED.acquisitiondate",
		"ingestiondate = EXCLUDED.ingestiondate",
		"cloudcoverpercentage = EXCLUDED.cloudcoverpercentage",
		"min_lon = EXCLUDED.min_lon",
		"min_lat = EXCLUDED.min_lat",
		"max_lon = EXCLUDED.max_lon",
		"max_lat = EXCLUDED.max_lat",
		"feature = EXCLUDED.feature",
		"updated_at = now()",
	}
	stmt := fmt.Sprintf(`INSERT INTO scenes (%s)
VALUES (%s)
ON CONFLICT (srcid) DO UPDATE SET %s;`,
		strings.Join(columns, ","),
		placeholders(len(columns)),
		strings.Join(sets, ","))

	if _, err := r.db.Exec(ctx, stmt, values...); err != nil {
		return fmt.Errorf("index: upsert %s: %w", m.SrcID, err)
	}
	return nil
}

// UpsertCollection upserts every record in the collection and returns the
// number written. The first failure stops the ingest.
func (r *Repository) UpsertCollection(ctx context.Context, c *scene.Collection) (int, error) {
	written := 0
	for _, item := range c.Items {
		if err := r.Upsert(ctx, item); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Delete removes one record by source ID.
func (r *Repository) Delete(ctx context.Context, srcID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM scenes WHERE srcid = $1`, srcID); err != nil {
		return fmt.Errorf("index: delete %s: %w", srcID, err)
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Filter narrows catalog queries. Zero values leave a condition off. The
// acquisition window is from <= date < to, the cloud bound keeps records
// under MaxCloud plus records without an estimate.
type Filter struct {
	Platform scene.Platform
	From     time.Time
	To       time.Time
	BBox     *orb.Bound
	MaxCloud *float64
	Limit    int
}

func (f *Filter) conditions() ([]string, []any) {
	var where []string
	var args []any
	argIdx := 1
	if f == nil {
		return where, args
	}
	if f.Platform != "" {
		where = append(where, fmt.Sprintf("platform = $%d", argIdx))
		args = append(args, f.Platform.String())
		argIdx++
	}
	if !f.From.IsZero() {
		where = append(where, fmt.Sprintf("acquisitiondate >= $%d", argIdx))
		args = append(args, f.From.UTC())
		argIdx++
	}
	if !f.To.IsZero() {
		where = append(where, fmt.Sprintf("acquisitiondate < $%d", argIdx))
		args = append(args, f.To.UTC())
		argIdx++
	}
	if f.MaxCloud != nil {
		where = append(where, fmt.Sprintf("(cloudcoverpercentage IS NULL OR cloudcoverpercentage < $%d)", argIdx))
		args = append(args, *f.MaxCloud)
		argIdx++
	}
	if f.BBox != nil {
		where = append(where, fmt.Sprintf("max_lon >= $%d AND min_lon <= $%d AND max_lat >= $%d AND min_lat <= $%d",
			argIdx, argIdx+1, argIdx+2, argIdx+3))
		args = append(args, f.BBox.Min.X(), f.BBox.Max.X(), f.BBox.Min.Y(), f.BBox.Max.Y())
	}
	return where, args
}

// Query returns the matching records, newest acquisitions first.
func (r *Repository) Query(ctx context.Context, f *Filter) ([]*scene.Metadata, error) {
	where, args := f.conditions()
	limit := 100
	if f != nil && f.Limit > 0 {
		limit = f.Limit
	}

	stmt := `SELECT feature FROM scenes`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += fmt.Sprintf(" ORDER BY acquisitiondate DESC NULLS LAST LIMIT %d", limit)

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()

	var out []*scene.Metadata
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		feature, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("index: decode stored feature: %w", err)
		}
		m, err := scene.FromFeature(feature)
		if err != nil {
			return nil, fmt.Errorf("index: stored feature: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of matching records.
func (r *Repository) Count(ctx context.Context, f *Filter) (int, error) {
	where, args := f.conditions()
	stmt := `SELECT count(*) FROM scenes`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ",")
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

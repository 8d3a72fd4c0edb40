package scene

import (
	"encoding/json"
	"fmt"
	"io"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// =============================================================================
// PARQUET EXPORT
// Columnar export of the property table, one row per scene. The schema is
// fixed to the exported property set so downstream dataframe tooling sees
// stable column types.
// =============================================================================

type parquetField struct {
	name string
	typ  string
}

// parquetFields mirrors the exported property set in column order.
var parquetFields = []parquetField{
	{"id", "BYTE_ARRAY"},
	{"platformname", "BYTE_ARRAY"},
	{"producttype", "BYTE_ARRAY"},
	{"orbitdirection", "BYTE_ARRAY"},
	{"orbitnumber", "INT64"},
	{"relativeorbitnumber", "INT64"},
	{"acquisitiondate", "BYTE_ARRAY"},
	{"ingestiondate", "BYTE_ARRAY"},
	{"processingdate", "BYTE_ARRAY"},
	{"processingsteps", "BYTE_ARRAY"},
	{"processingversion", "BYTE_ARRAY"},
	{"bandlist", "BYTE_ARRAY"},
	{"cloudcoverpercentage", "DOUBLE"},
	{"format", "BYTE_ARRAY"},
	{"size", "BYTE_ARRAY"},
	{"srcid", "BYTE_ARRAY"},
	{"srcurl", "BYTE_ARRAY"},
	{"srcuuid", "BYTE_ARRAY"},
}

// WriteParquet writes the collection as a Snappy-compressed Parquet table.
// Returns the number of rows written.
func (c *Collection) WriteParquet(w io.Writer) (int64, error) {
	pfw := writerfile.NewWriterFile(w)
	pw, err := writer.NewJSONWriter(parquetSchema(), pfw, 4)
	if err != nil {
		return 0, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var rows int64
	for _, item := range c.Items {
		row := parquetRow(item)
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return rows, fmt.Errorf("write parquet row %s: %w", item.SrcID, err)
		}
		rows++
	}
	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return rows, fmt.Errorf("finalize parquet: %w", err)
	}
	if err := pfw.Close(); err != nil {
		return rows, fmt.Errorf("close parquet writer: %w", err)
	}
	return rows, nil
}

func parquetSchema() string {
	fields := make([]map[string]string, 0, len(parquetFields))
	for _, f := range parquetFields {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, type=%s, repetitiontype=OPTIONAL", f.name, f.typ),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetRow(m *Metadata) map[string]any {
	props := m.Properties()
	row := make(map[string]any, len(parquetFields))
	for _, f := range parquetFields {
		v := props[f.name]
		if f.typ == "INT64" {
			if n, ok := toFloat(v); ok {
				v = int64(n)
			}
		}
		row[f.name] = v
	}
	return row
}

package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// exportRecord is the fixed CSV projection shared by destinations and
// delicacies. Place carries the location or restaurant depending on the
// entity; the header names it accordingly.
type exportRecord struct {
	ID        string
	Name      string
	Place     string
	Category  string
	Rating    float64
	Reviews   int64
	Featured  bool
	Active    bool
	CreatedAt time.Time
}

// renderExport serializes the export in the requested format. JSON exports
// carry the full entities; CSV exports use the fixed projection with
// RFC 4180 quoting (embedded quotes doubled) and LF line endings.
func renderExport(format, placeHeader string, records []exportRecord, full interface{}) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(full, "", "  ")
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)

		header := []string{"ID", "Name", placeHeader, "Category", "Rating", "Reviews", "Featured", "Active", "Created"}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		for _, r := range records {
			row := []string{
				r.ID,
				r.Name,
				r.Place,
				r.Category,
				strconv.FormatFloat(r.Rating, 'f', -1, 64),
				strconv.FormatInt(r.Reviews, 10),
				strconv.FormatBool(r.Featured),
				strconv.FormatBool(r.Active),
				r.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, E(KindValidationFailed, fmt.Sprintf("Unsupported export format %q (want json or csv)", format))
	}
}

// ExportContentType returns the MIME type for an export format.
func ExportContentType(format string) string {
	if format == "csv" {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

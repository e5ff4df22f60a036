// Package export writes a scan's catalog records to disk in the JSON layout
// the desktop cataloguing app imports, or as YAML with the same fields.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

// WriteJSON encodes records as a JSON array with two-space indentation.
// Non-ASCII text and HTML characters are written as-is.
func WriteJSON(w io.Writer, records []models.CatalogRecord) error {
	if records == nil {
		records = []models.CatalogRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}

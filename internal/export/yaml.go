package export

import (
	"fmt"
	"io"

	"github.com/vrsandeep/mango-catalog/internal/models"
	"gopkg.in/yaml.v3"
)

// WriteYAML encodes records as a YAML sequence using the same field names
// as the JSON export.
func WriteYAML(w io.Writer, records []models.CatalogRecord) error {
	if records == nil {
		records = []models.CatalogRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}

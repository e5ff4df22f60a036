package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// FormatFromPath picks YAML for .yml and .yaml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	}
	return FormatJSON
}

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []models.CatalogRecord) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, records)
	case FormatJSON, "":
		return WriteJSON(w, records)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteFile writes records to path in the format its extension implies,
// replacing any existing file only once the new content has been written
// completely.
func WriteFile(path string, records []models.CatalogRecord) error {
	return WriteFileFormat(path, FormatFromPath(path), records)
}

// WriteFileFormat is WriteFile with an explicit format.
func WriteFileFormat(path string, format Format, records []models.CatalogRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set export file mode: %w", err)
	}
	if err := Write(tmp, format, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

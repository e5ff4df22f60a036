package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/mango-catalog/internal/export"
	"github.com/vrsandeep/mango-catalog/internal/models"
)

func TestWriteJSON(t *testing.T) {
	records := []models.CatalogRecord{{
		Title:     "Ação & Aventura",
		Author:    "Desconhecido",
		FilePath:  "/library/Ação & Aventura.cbz",
		FileSize:  2048,
		Format:    "CBZ",
		PageCount: 12,
	}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, records))
	out := buf.String()

	assert.Contains(t, out, `"title": "Ação & Aventura"`)
	assert.Contains(t, out, `"date_added": null`)
	assert.Contains(t, out, "\n  {\n    \"title\"")
	assert.NotContains(t, out, `\u0026`)
	assert.NotContains(t, out, `\u00e7`)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	for _, key := range []string{"title", "author", "file_path", "file_size", "file_format", "page_count", "date_added"} {
		assert.Contains(t, decoded[0], key)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manga_scan_results.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	records := []models.CatalogRecord{{Title: "A", Author: "B", FilePath: "/a.cbz", Format: "CBZ"}}
	require.NoError(t, export.WriteFile(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_path": "/a.cbz"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")
	assert.Error(t, export.WriteFile(path, nil))
}

package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestCBZ is a helper function that creates a zip-structured archive
// with a given set of entry names. Names ending in "/" become directory
// entries; every other entry gets a few bytes of content.
func CreateTestCBZ(t *testing.T, dir, name string, pages []string) string {
	t.Helper()
	filePath := filepath.Join(dir, name)
	file, err := os.Create(filePath)
	if err != nil {
		t.Fatalf("Failed to create temp cbz file: %v", err)
	}
	defer file.Close()

	zipWriter := zip.NewWriter(file)
	for _, page := range pages {
		w, err := zipWriter.Create(page)
		if err != nil {
			t.Fatalf("Failed to create entry '%s' in zip: %v", page, err)
		}
		if !strings.HasSuffix(page, "/") {
			if _, err := w.Write([]byte("image data")); err != nil {
				t.Fatalf("Failed to write entry '%s': %v", page, err)
			}
		}
	}
	if err := zipWriter.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return filePath
}

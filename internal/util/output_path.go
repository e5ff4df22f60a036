package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidateOutputPath checks that a file can be written at path before any
// long-running work produces its content. Missing parent directories are
// created.
func ValidateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := checkWritePermission(dir); err != nil {
		return fmt.Errorf("no write permission for output directory: %w", err)
	}
	return nil
}

// checkWritePermission checks if we have write permission to a directory
func checkWritePermission(dirPath string) error {
	file, err := os.CreateTemp(dirPath, ".mango_write_check_*")
	if err != nil {
		return err
	}
	name := file.Name()
	file.Close()
	return os.Remove(name)
}

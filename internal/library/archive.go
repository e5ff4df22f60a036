// This file is responsible for inspecting archive files like .cbz (ZIP) and
// .cbr (RAR) to count the image entries they contain. Entry bodies are never
// read; only the archive's entry listing is walked.

package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mholt/archives"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/models"
)

var (
	// ErrUnsupportedContainer is returned when no lister exists for a kind.
	ErrUnsupportedContainer = errors.New("container kind cannot be inspected")
	// ErrEntryCap is returned alongside a partial count when an archive holds
	// more entries than the inspector is allowed to walk.
	ErrEntryCap = errors.New("archive entry limit reached")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// isImageFile checks if a filename has a common image file extension.
func isImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// entryLister walks the entry listing of an opened archive.
type entryLister func(ctx context.Context, r io.Reader, visit func(name string, isDir bool) error) error

func extractorLister(ex archives.Extractor) entryLister {
	return func(ctx context.Context, r io.Reader, visit func(string, bool) error) error {
		return ex.Extract(ctx, r, func(ctx context.Context, info archives.FileInfo) error {
			return visit(info.NameInArchive, info.IsDir())
		})
	}
}

// Inspector counts image entries in archives. It is safe for concurrent
// use; every call opens its own file handle.
type Inspector struct {
	maxEntries int
	timeout    time.Duration
	listers    map[models.ContainerKind]entryLister
}

// NewInspector builds an Inspector from the scan configuration. When RAR
// support is disabled, RAR archives are treated like unsupported formats.
func NewInspector(cfg config.ScanConfig) *Inspector {
	listers := map[models.ContainerKind]entryLister{
		models.KindZip: extractorLister(archives.Zip{}),
	}
	if cfg.RarEnabled {
		listers[models.KindRar] = extractorLister(archives.Rar{})
	}
	return &Inspector{
		maxEntries: cfg.MaxEntries,
		timeout:    cfg.ArchiveTimeout,
		listers:    listers,
	}
}

// Inspectable reports whether the inspector would open files of this kind.
func (in *Inspector) Inspectable(kind models.ContainerKind) bool {
	_, ok := in.listers[kind]
	return ok
}

// CountImageEntries returns the number of image entries in an archive.
// Any failure yields 0.
func (in *Inspector) CountImageEntries(ctx context.Context, filePath string, kind models.ContainerKind) int {
	count, err := in.InspectArchive(ctx, filePath, kind)
	if err != nil && !errors.Is(err, ErrEntryCap) {
		return 0
	}
	return count
}

// InspectArchive counts image entries and reports why enumeration failed.
// Kinds without a lister return (0, nil) without opening the file. When the
// entry limit is hit the partial count is returned with ErrEntryCap.
func (in *Inspector) InspectArchive(ctx context.Context, filePath string, kind models.ContainerKind) (count int, err error) {
	list, ok := in.listers[kind]
	if !ok {
		return 0, nil
	}

	if in.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.timeout)
		defer cancel()
	}

	// Third-party decoders may panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while reading %s: %v", filePath, r)
			count, err = 0, fmt.Errorf("failed to read %s archive: %v", kind, r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	seen := 0
	err = list(ctx, f, func(name string, isDir bool) error {
		seen++
		if in.maxEntries > 0 && seen > in.maxEntries {
			return ErrEntryCap
		}
		if !isDir && isImageFile(name) {
			count++
		}
		return nil
	})
	if errors.Is(err, ErrEntryCap) {
		return count, fmt.Errorf("%w after %d entries", ErrEntryCap, in.maxEntries)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s archive: %w", kind, err)
	}
	return count, nil
}

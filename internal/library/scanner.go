// This file contains the main logic for scanning the library directory.
// It walks the directory tree, identifies manga archives, and assembles one
// catalog record per file from its name, size and archive listing.

package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/models"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each file has been processed. It may be
// called from several goroutines, but never concurrently.
type ProgressFunc func(p models.ScanProgress)

// FileResult is the outcome of processing one discovered file. Record is
// nil when the file was skipped.
type FileResult struct {
	Record      *models.CatalogRecord
	Diagnostics []models.Diagnostic
}

// Scanner is responsible for turning a library directory into a catalog.
type Scanner struct {
	inspector     *Inspector
	workers       int
	unknownAuthor string
	walkOpts      WalkOptions
	progress      ProgressFunc
	pages         *PageCache
}

// NewScanner creates a new Scanner instance.
func NewScanner(cfg *config.Config) *Scanner {
	workers := cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}
	unknown := cfg.Catalog.UnknownAuthor
	if unknown == "" {
		unknown = UnknownAuthor
	}
	return &Scanner{
		inspector:     NewInspector(cfg.Scan),
		workers:       workers,
		unknownAuthor: unknown,
		walkOpts:      WalkOptions{FollowSymlinks: cfg.Scan.FollowSymlinks},
	}
}

// OnProgress registers a callback for per-file progress updates.
func (s *Scanner) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// UsePageCache lets the scanner skip archives whose page count is already
// known. The cache may be shared between scanners.
func (s *Scanner) UsePageCache(c *PageCache) {
	s.pages = c
}

// Scan catalogs every supported archive below root. Records come back in
// traversal order. A missing root yields an empty catalog and a single
// diagnostic; only context cancellation is returned as an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*models.ScanResult, error) {
	result := &models.ScanResult{
		Root:        root,
		Records:     []models.CatalogRecord{},
		Diagnostics: []models.Diagnostic{},
	}

	// 1. Discovery
	var paths []string
	opts := s.walkOpts
	opts.OnError = func(path string, err error) {
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(path, models.DiagWalkError, err.Error()))
	}
	err := WalkArchives(ctx, root, opts, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrRootNotFound) {
			result.Diagnostics = append(result.Diagnostics, newDiagnostic(root, models.DiagRootNotFound, err.Error()))
			return result, nil
		}
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(root, models.DiagWalkError, err.Error()))
		return result, nil
	}

	// 2. Per-file assembly. Results are indexed by discovery order so the
	// catalog order does not depend on which worker finishes first.
	results := make([]FileResult, len(paths))
	var mu sync.Mutex
	processed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Assemble(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			processed++
			if s.progress != nil {
				s.progress(models.ScanProgress{
					CurrentFile:    filepath.Base(path),
					ProcessedFiles: processed,
					TotalFiles:     len(paths),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Partition into records and diagnostics.
	for _, r := range results {
		if r.Record != nil {
			result.Records = append(result.Records, *r.Record)
		}
		result.Diagnostics = append(result.Diagnostics, r.Diagnostics...)
	}

	log.Printf("Scanned %s: %d records, %d diagnostics", root, len(result.Records), len(result.Diagnostics))
	return result, nil
}

// Assemble builds the catalog record for a single file. A file that can no
// longer be stat'ed is skipped; an archive that cannot be read still gets a
// record with a page count of 0.
func (s *Scanner) Assemble(ctx context.Context, path string) FileResult {
	info, err := os.Stat(path)
	if err != nil {
		return FileResult{Diagnostics: []models.Diagnostic{newDiagnostic(path, models.DiagFileStatError, err.Error())}}
	}
	if !info.Mode().IsRegular() {
		msg := fmt.Sprintf("not a regular file (mode %s)", info.Mode())
		return FileResult{Diagnostics: []models.Diagnostic{newDiagnostic(path, models.DiagFileStatError, msg)}}
	}

	name := filepath.Base(path)
	title, author := ParseFilenameWithDefault(strings.TrimSuffix(name, filepath.Ext(name)), s.unknownAuthor)
	kind, _ := ClassifyFormat(name)

	res := FileResult{}
	pageCount, cached := s.pages.Get(path, info)
	if !cached {
		pageCount, err = s.inspector.InspectArchive(ctx, path, kind)
		switch {
		case err == nil:
			if s.inspector.Inspectable(kind) {
				s.pages.Add(path, info, pageCount)
			}
		case errors.Is(err, ErrEntryCap):
			res.Diagnostics = append(res.Diagnostics, containerDiagnostic(path, err))
		default:
			res.Diagnostics = append(res.Diagnostics, containerDiagnostic(path, err))
			pageCount = 0
		}
	}

	res.Record = &models.CatalogRecord{
		Title:     title,
		Author:    author,
		FilePath:  path,
		FileSize:  info.Size(),
		Format:    FormatName(name),
		PageCount: pageCount,
	}
	return res
}

// This file walks a library directory tree and yields the paths of every
// file that should be catalogued.

package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned when the scan root is missing or not a directory.
var ErrRootNotFound = errors.New("library root not found")

// WalkOptions tunes directory traversal.
type WalkOptions struct {
	// FollowSymlinks descends into symlinked directories. Each directory is
	// visited at most once, keyed by its resolved path, so link cycles end.
	FollowSymlinks bool
	// OnError is called for directories or entries that cannot be read.
	// The walk skips them and continues.
	OnError func(path string, err error)
}

// WalkArchives visits every catalogued file below root in directory-entry
// order and calls visit with its path. Files with unknown extensions are
// skipped silently. A non-nil error from visit stops the walk.
func WalkArchives(ctx context.Context, root string, opts WalkOptions, visit func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return fmt.Errorf("failed to stat library root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	// WalkDir does not descend a root that is itself a symlink, so walk the
	// resolved directory and keep reporting paths under root.
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("failed to resolve library root: %w", err)
	}

	w := &walker{ctx: ctx, opts: opts, visit: visit, visited: make(map[string]bool)}
	return w.walk(resolved, root)
}

type walker struct {
	ctx     context.Context
	opts    WalkOptions
	visit   func(path string) error
	visited map[string]bool
}

// walk traverses dir on disk and reports paths as if rooted at shown, which
// differs from dir only when dir is the target of a followed symlink.
func (w *walker) walk(dir, shown string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := w.ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		display := w.displayPath(dir, shown, path)
		if err != nil {
			w.reportError(display, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if w.opts.FollowSymlinks && !w.markVisited(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return w.handleSymlink(path, display)
		}
		if !d.Type().IsRegular() || !IsSupportedArchive(d.Name()) {
			return nil
		}
		return w.visit(display)
	})
}

// handleSymlink yields links to catalogued files and, when enabled, walks
// links to directories.
func (w *walker) handleSymlink(path, display string) error {
	target, err := os.Stat(path)
	if err != nil {
		// A dangling link with a catalogued name is still yielded so that
		// assembly reports it as a stat failure.
		if IsSupportedArchive(filepath.Base(path)) {
			return w.visit(display)
		}
		return nil
	}
	if target.Mode().IsRegular() {
		if IsSupportedArchive(filepath.Base(path)) {
			return w.visit(display)
		}
		return nil
	}
	if !target.IsDir() || !w.opts.FollowSymlinks {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.reportError(display, err)
		return nil
	}
	// The link target's root is marked by the nested walk itself.
	return w.walk(resolved, display)
}

// markVisited records a directory by its canonical path. It returns false
// if the directory has already been walked.
func (w *walker) markVisited(path string) bool {
	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonical = path
	}
	if w.visited[canonical] {
		return false
	}
	w.visited[canonical] = true
	return true
}

func (w *walker) displayPath(dir, shown, path string) string {
	if dir == shown {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.Join(shown, rel)
}

func (w *walker) reportError(path string, err error) {
	if w.opts.OnError != nil {
		w.opts.OnError(path, err)
	}
}

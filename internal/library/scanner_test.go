// This file tests the main library scanner.

package library_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/mango-catalog/internal/config"
	"github.com/vrsandeep/mango-catalog/internal/library"
	"github.com/vrsandeep/mango-catalog/internal/models"
	"github.com/vrsandeep/mango-catalog/internal/testutil"
)

func newTestScanner(workers int) *library.Scanner {
	cfg := config.Default()
	cfg.Scan.Workers = workers
	cfg.Scan.ArchiveTimeout = 10 * time.Second
	return library.NewScanner(cfg)
}

// setupTestLibrary creates a small library with matching and non-matching files.
func setupTestLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	seriesDir := filepath.Join(root, "Series A")
	require.NoError(t, os.MkdirAll(seriesDir, 0755))

	testutil.CreateTestCBZ(t, seriesDir, "Naruto by Masashi Kishimoto.cbz", []string{"01.jpg", "02.png", "ComicInfo.xml"})
	testutil.CreateTestCBZ(t, root, "One Piece (Eiichiro Oda).zip", []string{"p1.jpg", "p2.png", "cover.txt", "p3.JPEG"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "book.PDF"), []byte("%PDF-1.4"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(seriesDir, "cover.jpg"), []byte("img"), 0644))
	return root
}

func TestScannerScan(t *testing.T) {
	root := setupTestLibrary(t)
	scanner := newTestScanner(1)

	result, err := scanner.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Empty(t, result.Diagnostics)

	// Traversal order is byte-wise per directory: "One..." < "Series A" < "book...".
	onePiece := result.Records[0]
	assert.Equal(t, "One Piece", onePiece.Title)
	assert.Equal(t, "Eiichiro Oda", onePiece.Author)
	assert.Equal(t, "ZIP", onePiece.Format)
	assert.Equal(t, 3, onePiece.PageCount)

	naruto := result.Records[1]
	assert.Equal(t, "Naruto", naruto.Title)
	assert.Equal(t, "Masashi Kishimoto", naruto.Author)
	assert.Equal(t, "CBZ", naruto.Format)
	assert.Equal(t, 2, naruto.PageCount)
	assert.Equal(t, filepath.Join(root, "Series A", "Naruto by Masashi Kishimoto.cbz"), naruto.FilePath)

	book := result.Records[2]
	assert.Equal(t, "book", book.Title)
	assert.Equal(t, "PDF", book.Format)
	assert.Equal(t, 0, book.PageCount)
	assert.Equal(t, library.UnknownAuthor, book.Author)
	assert.Equal(t, int64(len("%PDF-1.4")), book.FileSize)

	for _, r := range result.Records {
		assert.Nil(t, r.DateAdded, "date_added must be left for the downstream store")
		info, err := os.Stat(r.FilePath)
		require.NoError(t, err)
		assert.Equal(t, info.Size(), r.FileSize)
	}
}

func TestScannerMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	result, err := newTestScanner(2).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, models.DiagRootNotFound, result.Diagnostics[0].Kind)
	assert.Equal(t, root, result.Diagnostics[0].Path)
}

func TestScannerSymlinkedRoot(t *testing.T) {
	realRoot := setupTestLibrary(t)
	link := filepath.Join(t.TempDir(), "lib")
	if err := os.Symlink(realRoot, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := newTestScanner(2).Scan(context.Background(), link)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, filepath.Join(link, "Series A", "Naruto by Masashi Kishimoto.cbz"), result.Records[1].FilePath)
}

func TestScannerDanglingArchiveLink(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTestCBZ(t, root, "a.cbz", []string{"1.jpg"})
	dangling := filepath.Join(root, "Vol1 - X.cbz")
	if err := os.Symlink(filepath.Join(root, "missing.cbz"), dangling); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := newTestScanner(1).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, models.DiagFileStatError, result.Diagnostics[0].Kind)
	assert.Equal(t, dangling, result.Diagnostics[0].Path)
}

func TestScannerCatalogsCBR(t *testing.T) {
	root := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.cbr"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "Akira - Katsuhiro Otomo.cbr"), data, 0644))

	result, err := newTestScanner(1).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, result.Diagnostics)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "CBR", result.Records[0].Format)
	assert.Equal(t, 3, result.Records[0].PageCount)
}

func TestScannerCorruptedArchiveStillCatalogued(t *testing.T) {
	root := t.TempDir()
	badPath := filepath.Join(root, "Broken - Someone.cbz")
	require.NoError(t, os.WriteFile(badPath, []byte("This is not a valid CBZ file"), 0644))
	rarPath := filepath.Join(root, "Old (Author).cbr")
	require.NoError(t, os.WriteFile(rarPath, []byte("not a rar either"), 0644))
	testutil.CreateTestCBZ(t, root, "Good.cbz", []string{"1.jpg"})

	result, err := newTestScanner(2).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	byPath := map[string]models.CatalogRecord{}
	for _, r := range result.Records {
		byPath[r.FilePath] = r
	}
	assert.Equal(t, 0, byPath[badPath].PageCount)
	assert.Equal(t, "Broken", byPath[badPath].Title)
	assert.Equal(t, "Someone", byPath[badPath].Author)
	assert.Equal(t, 0, byPath[rarPath].PageCount)
	assert.Equal(t, "CBR", byPath[rarPath].Format)
	assert.Equal(t, 1, byPath[filepath.Join(root, "Good.cbz")].PageCount)

	require.Len(t, result.Diagnostics, 2)
	for _, d := range result.Diagnostics {
		assert.Equal(t, models.DiagContainerOpen, d.Kind)
		assert.NotEmpty(t, d.Message)
	}
}

func TestScannerFileDeletedMidScan(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTestCBZ(t, root, "a.cbz", []string{"1.jpg"})
	testutil.CreateTestCBZ(t, root, "b.cbz", []string{"1.jpg"})
	victim := testutil.CreateTestCBZ(t, root, "c.cbz", []string{"1.jpg"})

	scanner := newTestScanner(1)
	var updates []models.ScanProgress
	scanner.OnProgress(func(p models.ScanProgress) {
		updates = append(updates, p)
		if p.ProcessedFiles == 1 {
			assert.NoError(t, os.Remove(victim))
		}
	})

	result, err := scanner.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, models.DiagFileStatError, result.Diagnostics[0].Kind)
	assert.Equal(t, victim, result.Diagnostics[0].Path)

	require.Len(t, updates, 3)
	assert.Equal(t, 3, updates[2].TotalFiles)
	assert.Equal(t, 3, updates[2].ProcessedFiles)
	assert.Equal(t, float64(100), updates[2].Percentage())
}

func TestScannerParallelKeepsTraversalOrder(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"A", "B", "C"} {
		dirPath := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(dirPath, 0755))
		for _, name := range []string{"01.cbz", "02.cbz", "03.cbz", "04.cbz"} {
			testutil.CreateTestCBZ(t, dirPath, name, []string{"1.jpg", "2.jpg"})
		}
	}

	sequential, err := newTestScanner(1).Scan(context.Background(), root)
	require.NoError(t, err)
	parallel, err := newTestScanner(8).Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, sequential.Records, 12)
	assert.Equal(t, sequential.Records, parallel.Records)
	assert.Equal(t, filepath.Join(root, "A", "01.cbz"), parallel.Records[0].FilePath)
	assert.Equal(t, filepath.Join(root, "C", "04.cbz"), parallel.Records[11].FilePath)
}

func TestScannerIdempotent(t *testing.T) {
	root := setupTestLibrary(t)
	scanner := newTestScanner(4)

	first, err := scanner.Scan(context.Background(), root)
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, first.Records, second.Records)
}

func TestScannerCancelled(t *testing.T) {
	root := setupTestLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(1).Scan(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScannerCustomUnknownAuthor(t *testing.T) {
	root := t.TempDir()
	testutil.CreateTestCBZ(t, root, "Vagabond v01.cbz", []string{"1.jpg"})
	cfg := config.Default()
	cfg.Catalog.UnknownAuthor = "Desconhecido"

	result, err := library.NewScanner(cfg).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Vagabond v01", result.Records[0].Title)
	assert.Equal(t, "Desconhecido", result.Records[0].Author)
}

func TestAssembleMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.cbz")

	res := newTestScanner(1).Assemble(context.Background(), path)
	assert.Nil(t, res.Record)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.DiagFileStatError, res.Diagnostics[0].Kind)
	assert.Equal(t, "gone.cbz", res.Diagnostics[0].FileName)
}

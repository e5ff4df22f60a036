// This file persists scan results so the catalog survives restarts and can
// be served to the cataloguing app.

package library

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/vrsandeep/mango-catalog/internal/jobs"
	"github.com/vrsandeep/mango-catalog/internal/models"
	"github.com/vrsandeep/mango-catalog/internal/store"
)

// SyncSummary describes what SaveScanResult changed.
type SyncSummary struct {
	Added       int
	Removed     int
	Diagnostics int
}

// SaveScanResult stores a scan's records and diagnostics. Records whose
// files have disappeared are pruned, unless the scan could not see the
// whole tree.
func SaveScanResult(db *sql.DB, result *models.ScanResult) (SyncSummary, error) {
	st := store.New(db)
	diagStore := store.NewDiagnosticStore(db)

	var summary SyncSummary
	added, err := st.SaveRecords(result.Records)
	if err != nil {
		return summary, err
	}
	summary.Added = added

	if completeScan(result) {
		present := make([]string, 0, len(result.Records))
		for _, r := range result.Records {
			present = append(present, r.FilePath)
		}
		removed, err := st.DeleteMissing(present)
		if err != nil {
			return summary, err
		}
		summary.Removed = removed
	} else {
		log.Printf("Scan of %s was incomplete, skipping prune of missing records", result.Root)
	}

	if err := diagStore.SyncDiagnostics(result.Diagnostics); err != nil {
		return summary, err
	}
	summary.Diagnostics = len(result.Diagnostics)
	return summary, nil
}

func completeScan(result *models.ScanResult) bool {
	for _, d := range result.Diagnostics {
		if d.Kind == models.DiagRootNotFound || d.Kind == models.DiagWalkError {
			return false
		}
	}
	return true
}

// CatalogScan is the job that rescans the configured library and stores
// the result.
func CatalogScan(ctx jobs.JobContext) {
	jobId := jobs.CatalogScanJobID
	cfg := ctx.Config()
	sendProgress(ctx, jobId, "Starting catalog scan...", 0, false)

	scanner := NewScanner(cfg)
	scanner.UsePageCache(sharedPageCache(cfg.Scan.CacheSize))
	scanner.OnProgress(func(p models.ScanProgress) {
		msg := fmt.Sprintf("Scanning file %d/%d: %s", p.ProcessedFiles, p.TotalFiles, p.CurrentFile)
		sendProgress(ctx, jobId, msg, p.Percentage()*0.9, false)
	})

	result, err := scanner.Scan(context.Background(), cfg.Library.Path)
	if err != nil {
		log.Printf("Catalog scan failed: %v", err)
		failJob(ctx, jobId, fmt.Sprintf("Catalog scan failed: %v", err))
		return
	}

	sendProgress(ctx, jobId, "Saving catalog...", 90, false)
	summary, err := SaveScanResult(ctx.DB(), result)
	if err != nil {
		log.Printf("Saving catalog failed: %v", err)
		failJob(ctx, jobId, fmt.Sprintf("Saving catalog failed: %v", err))
		return
	}

	msg := fmt.Sprintf("Catalog scan complete. %d files, %d new, %d removed, %d diagnostics.",
		len(result.Records), summary.Added, summary.Removed, summary.Diagnostics)
	sendProgress(ctx, jobId, msg, 100, true)
	log.Println("Job finished:", jobId)
}

var (
	pageCacheMu   sync.Mutex
	pageCache     *PageCache
	pageCacheSize int
)

// sharedPageCache returns the cache reused by every catalog-scan run,
// rebuilding it when the configured size changes.
func sharedPageCache(size int) *PageCache {
	pageCacheMu.Lock()
	defer pageCacheMu.Unlock()
	if pageCache != nil && pageCacheSize == size {
		return pageCache
	}
	c, err := NewPageCache(size)
	if err != nil {
		log.Printf("Page cache disabled: %v", err)
		return nil
	}
	pageCache, pageCacheSize = c, size
	return pageCache
}

func failJob(ctx jobs.JobContext, jobId, message string) {
	if jm := ctx.JobManager(); jm != nil {
		jm.Fail(jobId, message)
	}
	if hub := ctx.WsHub(); hub != nil {
		hub.BroadcastJSON(models.ProgressUpdate{JobID: jobId, Message: message, Done: true})
	}
}

// RegisterJobs registers the library jobs with the job manager.
func RegisterJobs(jm *jobs.JobManager) {
	jm.Register(jobs.CatalogScanJobID, "Catalog Scan", CatalogScan)
}

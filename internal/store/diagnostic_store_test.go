package store_test

import (
	"testing"
	"time"

	"github.com/vrsandeep/mango-catalog/internal/models"
	"github.com/vrsandeep/mango-catalog/internal/store"
	"github.com/vrsandeep/mango-catalog/internal/testutil"
)

func TestDiagnosticStore(t *testing.T) {
	diagStore := store.NewDiagnosticStore(testutil.SetupTestDB(t))

	t.Run("RecordDiagnostic", func(t *testing.T) {
		path := "/test/path/bad-file.cbz"
		err := diagStore.RecordDiagnostic(path, models.DiagContainerOpen, "corrupted_archive: zip: not a valid zip file")
		if err != nil {
			t.Fatalf("Failed to record diagnostic: %v", err)
		}

		diags, err := diagStore.GetAllDiagnostics()
		if err != nil {
			t.Fatalf("Failed to get diagnostics: %v", err)
		}
		if len(diags) != 1 {
			t.Fatalf("Expected 1 diagnostic, got %d", len(diags))
		}

		d := diags[0]
		if d.Path != path {
			t.Errorf("Expected path %s, got %s", path, d.Path)
		}
		if d.FileName != "bad-file.cbz" {
			t.Errorf("Expected filename 'bad-file.cbz', got %s", d.FileName)
		}
		if d.Kind != models.DiagContainerOpen {
			t.Errorf("Expected kind %s, got %s", models.DiagContainerOpen, d.Kind)
		}
		if d.DetectedAt.IsZero() || d.LastChecked.IsZero() {
			t.Error("Expected DetectedAt and LastChecked to be set")
		}
	})

	t.Run("RecordDiagnostic_ReplaceExisting", func(t *testing.T) {
		path := "/test/path/bad-file.cbz"
		before, _ := diagStore.GetAllDiagnostics()
		time.Sleep(10 * time.Millisecond)

		if err := diagStore.RecordDiagnostic(path, models.DiagEntryCapReached, "archive entry limit reached"); err != nil {
			t.Fatalf("Failed to update diagnostic: %v", err)
		}

		diags, _ := diagStore.GetAllDiagnostics()
		if len(diags) != 1 {
			t.Fatalf("Expected 1 diagnostic after update, got %d", len(diags))
		}
		if diags[0].Kind != models.DiagEntryCapReached {
			t.Errorf("Expected kind to be updated, got %s", diags[0].Kind)
		}
		if !diags[0].DetectedAt.Equal(before[0].DetectedAt) {
			t.Errorf("Expected DetectedAt to be preserved")
		}
		if !diags[0].LastChecked.After(before[0].LastChecked) {
			t.Errorf("Expected LastChecked to advance")
		}
	})

	t.Run("SyncDiagnostics", func(t *testing.T) {
		err := diagStore.SyncDiagnostics([]models.Diagnostic{
			{Path: "/lib/a.cbz", Kind: models.DiagContainerOpen, Message: "bad"},
			{Path: "/lib/missing", Kind: models.DiagRootNotFound, Message: "gone"},
		})
		if err != nil {
			t.Fatalf("SyncDiagnostics failed: %v", err)
		}

		count, err := diagStore.CountDiagnostics()
		if err != nil {
			t.Fatalf("CountDiagnostics failed: %v", err)
		}
		// The earlier bad-file.cbz entry is resolved by the sync.
		if count != 2 {
			t.Errorf("Expected 2 diagnostics, got %d", count)
		}

		if err := diagStore.SyncDiagnostics(nil); err != nil {
			t.Fatalf("SyncDiagnostics(nil) failed: %v", err)
		}
		count, _ = diagStore.CountDiagnostics()
		if count != 0 {
			t.Errorf("Expected all diagnostics to be cleared, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		diagStore.RecordDiagnostic("/lib/x.cbz", models.DiagFileStatError, "gone")
		diagStore.RecordDiagnostic("/lib/y.cbz", models.DiagFileStatError, "gone")

		if err := diagStore.DeleteDiagnosticByPath("/lib/x.cbz"); err != nil {
			t.Fatalf("DeleteDiagnosticByPath failed: %v", err)
		}
		diags, _ := diagStore.GetAllDiagnostics()
		if len(diags) != 1 || diags[0].Path != "/lib/y.cbz" {
			t.Fatalf("Expected only /lib/y.cbz to remain, got %v", diags)
		}
		if err := diagStore.DeleteDiagnostic(diags[0].ID); err != nil {
			t.Fatalf("DeleteDiagnostic failed: %v", err)
		}
		count, _ := diagStore.CountDiagnostics()
		if count != 0 {
			t.Errorf("Expected 0 diagnostics, got %d", count)
		}
	})
}

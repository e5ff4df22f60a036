package api

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vrsandeep/mango-catalog/internal/models"
	"github.com/vrsandeep/mango-catalog/internal/util"
)

// handleGetCatalog returns every stored record in scan order. An optional
// author query parameter filters case-insensitively, and sort=title or
// sort=author orders the result naturally.
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRecords()
	if err != nil {
		log.Printf("Failed to list catalog: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve catalog")
		return
	}

	if author := strings.TrimSpace(r.URL.Query().Get("author")); author != "" {
		filtered := make([]models.CatalogRecord, 0, len(records))
		for _, rec := range records {
			if strings.EqualFold(rec.Author, author) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	switch r.URL.Query().Get("sort") {
	case "", "scan":
	case "title":
		slices.SortStableFunc(records, func(a, b models.CatalogRecord) int {
			return util.NaturalCompare(a.Title, b.Title)
		})
	case "author":
		slices.SortStableFunc(records, func(a, b models.CatalogRecord) int {
			if c := util.NaturalCompare(a.Author, b.Author); c != 0 {
				return c
			}
			return util.NaturalCompare(a.Title, b.Title)
		})
	default:
		RespondWithError(w, http.StatusBadRequest, "sort must be one of scan, title, author")
		return
	}

	if records == nil {
		records = []models.CatalogRecord{}
	}
	RespondWithJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetCatalogCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountRecords()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to count catalog records")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags, err := s.diagnostics.GetAllDiagnostics()
	if err != nil {
		log.Printf("Failed to list diagnostics: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve diagnostics")
		return
	}
	RespondWithJSON(w, http.StatusOK, diags)
}

func (s *Server) handleGetDiagnosticsCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.diagnostics.CountDiagnostics()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to count diagnostics")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleDownloadDiagnosticsCSV(w http.ResponseWriter, r *http.Request) {
	diags, err := s.diagnostics.GetAllDiagnostics()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve diagnostics")
		return
	}

	filename := fmt.Sprintf("diagnostics_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Path", "File Name", "Kind", "Message", "Detected At", "Last Checked"})
	for _, d := range diags {
		cw.Write([]string{
			d.Path,
			d.FileName,
			d.Kind.String(),
			d.Message,
			d.DetectedAt.Format(time.RFC3339),
			d.LastChecked.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Failed to write diagnostics CSV: %v", err)
	}
}

// handleDeleteDiagnostic dismisses one diagnostic, selected by id or path.
func (s *Server) handleDeleteDiagnostic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if idStr := q.Get("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid diagnostic ID")
			return
		}
		if err := s.diagnostics.DeleteDiagnostic(id); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to delete diagnostic")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if path := q.Get("path"); path != "" {
		if err := s.diagnostics.DeleteDiagnosticByPath(path); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to delete diagnostic")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	RespondWithError(w, http.StatusBadRequest, "id or path is required")
}

// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

// Store persists catalog records. It is the downstream owner of each
// record's date_added value: the scanner never sets it, the store stamps it
// on first insert and keeps it across later scans.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveRecords inserts new records and refreshes existing ones, keyed by
// file path. It returns how many records were new.
func (s *Store) SaveRecords(records []models.CatalogRecord) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	now := time.Now()
	for _, r := range records {
		res, err := tx.Exec(`
			UPDATE catalog
			SET title = ?, author = ?, file_size = ?, file_format = ?, page_count = ?, updated_at = ?
			WHERE file_path = ?`,
			r.Title, r.Author, r.FileSize, r.Format, r.PageCount, now, r.FilePath)
		if err != nil {
			return 0, fmt.Errorf("failed to update record %s: %w", r.FilePath, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			continue
		}

		_, err = tx.Exec(`
			INSERT INTO catalog (title, author, file_path, file_size, file_format, page_count, date_added, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Title, r.Author, r.FilePath, r.FileSize, r.Format, r.PageCount, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %s: %w", r.FilePath, err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}
	return added, nil
}

// ListRecords returns every stored record in insertion order.
func (s *Store) ListRecords() ([]models.CatalogRecord, error) {
	rows, err := s.db.Query(`
		SELECT title, author, file_path, file_size, file_format, page_count, date_added
		FROM catalog
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	// Initialize with an empty slice to ensure it's never nil
	records := make([]models.CatalogRecord, 0)
	for rows.Next() {
		var r models.CatalogRecord
		var added time.Time
		if err := rows.Scan(&r.Title, &r.Author, &r.FilePath, &r.FileSize, &r.Format, &r.PageCount, &added); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		r.DateAdded = &added
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountRecords returns the total number of stored records.
func (s *Store) CountRecords() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM catalog").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// DeleteMissing removes records whose path is not in present. It returns
// the number of records removed.
func (s *Store) DeleteMissing(present []string) (int, error) {
	keep := make(map[string]bool, len(present))
	for _, p := range present {
		keep[p] = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT file_path FROM catalog")
	if err != nil {
		return 0, fmt.Errorf("failed to query catalog paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan catalog path: %w", err)
		}
		if !keep[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, path := range stale {
		if _, err := tx.Exec("DELETE FROM catalog WHERE file_path = ?", path); err != nil {
			return 0, fmt.Errorf("failed to delete record %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return len(stale), nil
}

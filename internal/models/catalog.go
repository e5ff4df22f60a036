// This file defines the catalog data structures produced by a library scan.
// A CatalogRecord describes one archive file found on disk.

package models

import "time"

// ContainerKind identifies how an archive's entries can be enumerated.
type ContainerKind int

const (
	// KindUnsupported files are catalogued but never opened.
	KindUnsupported ContainerKind = iota
	KindZip
	KindRar
)

// String returns the lower-case name of the container kind.
func (k ContainerKind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindRar:
		return "rar"
	default:
		return "unsupported"
	}
}

// CatalogRecord represents a single archive discovered during a scan.
// The JSON field names match what the desktop cataloguing app imports.
type CatalogRecord struct {
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	FilePath  string `json:"file_path" yaml:"file_path"`
	FileSize  int64  `json:"file_size" yaml:"file_size"`
	Format    string `json:"file_format" yaml:"file_format"`
	PageCount int    `json:"page_count" yaml:"page_count"`
	// DateAdded is never set by the scanner. The catalog store fills it
	// in on its own copy when the record is first persisted.
	DateAdded *time.Time `json:"date_added" yaml:"date_added"`
}

// ScanResult is the output of one library scan: the records in traversal
// order and every recoverable problem encountered along the way.
type ScanResult struct {
	Root        string          `json:"root"`
	Records     []CatalogRecord `json:"records"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

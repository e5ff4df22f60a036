// This file defines the data structure for problems found while scanning.

package models

import "time"

// Diagnostic describes a recoverable failure tied to a path. Diagnostics are
// reported separately from the catalog and never abort a scan.
type Diagnostic struct {
	ID          int64          `json:"id,omitempty"`
	Path        string         `json:"path"`
	FileName    string         `json:"file_name"`
	Kind        DiagnosticKind `json:"kind"`
	Message     string         `json:"message"`
	DetectedAt  time.Time      `json:"detected_at"`
	LastChecked time.Time      `json:"last_checked"`
}

// DiagnosticKind represents the different categories of scan problems.
type DiagnosticKind string

const (
	DiagRootNotFound    DiagnosticKind = "root_not_found"
	DiagWalkError       DiagnosticKind = "walk_error"
	DiagFileStatError   DiagnosticKind = "file_stat_error"
	DiagContainerOpen   DiagnosticKind = "container_open_error"
	DiagEntryCapReached DiagnosticKind = "entry_cap_reached"
)

// String returns the human-readable description of the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagRootNotFound:
		return "Root Not Found"
	case DiagWalkError:
		return "Directory Unreadable"
	case DiagFileStatError:
		return "File Unreadable"
	case DiagContainerOpen:
		return "Container Open Error"
	case DiagEntryCapReached:
		return "Entry Limit Reached"
	default:
		return "Unknown Error"
	}
}

// ContainerFailure categorizes why an archive could not be enumerated.
type ContainerFailure string

const (
	FailureCorruptedArchive  ContainerFailure = "corrupted_archive"
	FailureInvalidFormat     ContainerFailure = "invalid_format"
	FailurePasswordProtected ContainerFailure = "password_protected"
	FailureTimeout           ContainerFailure = "timeout"
	FailureIOError           ContainerFailure = "io_error"
)

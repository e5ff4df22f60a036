// This file maps file extensions to the container kinds the scanner knows.

package library

import (
	"path/filepath"
	"strings"

	"github.com/vrsandeep/mango-catalog/internal/models"
)

// containerKinds lists every extension that is catalogued. Adding a format
// means adding a row here and, if it can be inspected, a lister in archive.go.
var containerKinds = map[string]models.ContainerKind{
	".cbz": models.KindZip,
	".zip": models.KindZip,
	".cbr": models.KindRar,
	".rar": models.KindRar,
	".pdf": models.KindUnsupported,
	".7z":  models.KindUnsupported,
}

// ClassifyFormat returns the container kind for a file name. The second
// return value is false when the extension is not catalogued at all.
func ClassifyFormat(filename string) (models.ContainerKind, bool) {
	kind, ok := containerKinds[strings.ToLower(filepath.Ext(filename))]
	return kind, ok
}

// IsSupportedArchive reports whether a file name should appear in the catalog.
func IsSupportedArchive(filename string) bool {
	_, ok := ClassifyFormat(filename)
	return ok
}

// FormatName returns the upper-case extension without its dot, e.g. "CBZ".
func FormatName(filename string) string {
	return strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
}

package badger

import (
	"fmt"
	"strings"

	"github.com/poiesic/pdfrag/storage"
)

// Scheme is the DATABASE_URL scheme that selects this backend.
const Scheme = "badger"

// IsURL reports whether raw is a badger:// URL.
func IsURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), Scheme+"://")
}

// ParseURL extracts the database directory from a badger:// URL.
//
//	badger://            in-memory
//	badger://:memory:    in-memory
//	badger:///var/rag    /var/rag
//	badger://data/rag    data/rag (relative)
func ParseURL(raw string) (path string, inMemory bool, err error) {
	if !IsURL(raw) {
		return "", false, fmt.Errorf("%w: expected %s:// url", storage.ErrUnsupportedURL, Scheme)
	}

	path = raw[len(Scheme+"://"):]
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return "", true, nil
	}
	return path, false, nil
}

package state

import (
	"path/filepath"
	"strings"
)

// Open picks a backend from the file extension: .db, .sqlite and .sqlite3
// select SQLite, anything else is a JSON file.
func Open(path string, opts ...StoreOption) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path, opts...)
	default:
		return NewFileStore(path, opts...)
	}
}

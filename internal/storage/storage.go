// Package storage persists task lists to a durable file. Every save
// replaces the whole file; every load reads it back in order.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"organizer/internal/task"
)

var (
	// ErrLoad wraps any failure to read a task file, including a missing one.
	ErrLoad = errors.New("load tasks")
	// ErrPersist wraps any failure to write a task file.
	ErrPersist = errors.New("persist tasks")
)

const (
	FormatSQLite = "sqlite"
	FormatYAML   = "yaml"
)

// Codec reads and writes a full task sequence at a path.
type Codec interface {
	Load(path string) ([]task.Task, error)
	Save(path string, tasks []task.Task) error
}

// ForPath picks a codec by explicit format name, falling back to the
// file extension. Unknown extensions use SQLite.
func ForPath(path, format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatYAML:
		return YAML{}
	case FormatSQLite:
		return SQLite{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}
	default:
		return SQLite{}
	}
}

// IsMissing reports whether a load error means the file does not exist yet.
func IsMissing(err error) bool {
	return errors.Is(err, ErrLoad) && errors.Is(err, os.ErrNotExist)
}

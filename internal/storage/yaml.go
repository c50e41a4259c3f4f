package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"organizer/internal/task"
)

const yamlVersion = 1

// YAML stores tasks as a versioned YAML document. Saves go through a
// temporary file and a rename so a failed write leaves the old file intact.
type YAML struct{}

type yamlDocument struct {
	Version int          `yaml:"version"`
	Tasks   []yamlRecord `yaml:"tasks"`
}

type yamlRecord struct {
	ID          uint64     `yaml:"id"`
	Name        string     `yaml:"name"`
	Category    string     `yaml:"category"`
	SubCategory string     `yaml:"sub_category"`
	Due         *task.Date `yaml:"due,omitempty"`
	Done        bool       `yaml:"done"`
	Priority    uint8      `yaml:"priority"`
}

func (YAML) Load(path string) ([]task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrLoad, path, err)
	}
	if doc.Version != yamlVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrLoad, path, doc.Version)
	}

	tasks := make([]task.Task, 0, len(doc.Tasks))
	for _, r := range doc.Tasks {
		if r.ID == 0 {
			return nil, fmt.Errorf("%w: %s: task %q has no id", ErrLoad, path, r.Name)
		}
		tasks = append(tasks, task.Task{
			ID:          r.ID,
			Name:        r.Name,
			Category:    r.Category,
			SubCategory: r.SubCategory,
			Due:         r.Due,
			Done:        r.Done,
			Priority:    r.Priority,
		})
	}
	return tasks, nil
}

func (YAML) Save(path string, tasks []task.Task) error {
	if path == "" {
		return fmt.Errorf("%w: path is empty", ErrPersist)
	}
	doc := yamlDocument{Version: yamlVersion, Tasks: make([]yamlRecord, 0, len(tasks))}
	for _, t := range tasks {
		if t.ID == 0 {
			return fmt.Errorf("%w: task %q has no id", ErrPersist, t.Name)
		}
		doc.Tasks = append(doc.Tasks, yamlRecord{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			SubCategory: t.SubCategory,
			Due:         t.Due,
			Done:        t.Done,
			Priority:    t.Priority,
		})
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPersist, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close: %w", ErrPersist, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %w", ErrPersist, err)
	}
	return nil
}

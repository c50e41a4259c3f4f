package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"organizer/internal/task"
)

// SQLite stores tasks in a single table, one row per task, ordered by
// position. It opens the database per call so the file is never held open
// between commands. Files from before sub-categories and due dates were
// tracked still load; the next save rewrites them with the current schema.
type SQLite struct{}

func (SQLite) Load(path string) ([]task.Task, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	db, err := openDB(path, "ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer db.Close()

	tasks, err := fetchTasks(db)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return tasks, nil
}

// Save builds a fresh database next to path and renames it into place, so
// an unreadable or foreign file at path is replaced rather than migrated.
func (SQLite) Save(path string, tasks []task.Task) error {
	if path == "" {
		return fmt.Errorf("%w: db path is empty", ErrPersist)
	}
	for _, t := range tasks {
		if t.ID == 0 || t.ID > math.MaxInt64 {
			return fmt.Errorf("%w: task %q has id %d outside the storable range", ErrPersist, t.Name, t.ID)
		}
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
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := writeDB(tmpName, tasks); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %w", ErrPersist, err)
	}
	return nil
}

func writeDB(path string, tasks []task.Task) error {
	db, err := openDB(path, "rwc")
	if err != nil {
		return err
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("schema: %w", err)
	}
	if err := replaceTasks(db, tasks); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}

func openDB(path, mode string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path, mode))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func ensureSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	id INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	sub_category TEXT NOT NULL DEFAULT '',
	due TEXT DEFAULT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	priority INTEGER NOT NULL DEFAULT 0
);`
	_, err := db.Exec(ddl)
	return err
}

func taskColumns(db *sql.DB) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	rows, err := db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		existing[name] = struct{}{}
	}
	return existing, rows.Err()
}

func fetchTasks(db *sql.DB) ([]task.Task, error) {
	cols, err := taskColumns(db)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.New("tasks table missing")
	}
	subExpr, dueExpr := "''", "NULL"
	if _, ok := cols["sub_category"]; ok {
		subExpr = "sub_category"
	}
	if _, ok := cols["due"]; ok {
		dueExpr = "due"
	}

	rows, err := db.Query(`SELECT id, name, category, ` + subExpr + `, ` + dueExpr + `, done, priority FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		var id int64
		var doneInt, priority int
		var dueStr sql.NullString

		if err := rows.Scan(&id, &t.Name, &t.Category, &t.SubCategory, &dueStr, &doneInt, &priority); err != nil {
			return nil, err
		}
		if id <= 0 {
			return nil, fmt.Errorf("task %q has invalid id %d", t.Name, id)
		}
		if priority < 0 || priority > 255 {
			return nil, fmt.Errorf("task %d has priority %d out of range", id, priority)
		}
		t.ID = uint64(id)
		t.Done = doneInt == 1
		t.Priority = uint8(priority)
		if dueStr.Valid {
			due, err := task.ParseDate(dueStr.String)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", id, err)
			}
			t.Due = due
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func replaceTasks(db *sql.DB, tasks []task.Task) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO tasks (position, id, name, category, sub_category, due, done, priority) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		due := sql.NullString{}
		if t.Due != nil {
			due = sql.NullString{String: t.Due.String(), Valid: true}
		}
		done := 0
		if t.Done {
			done = 1
		}
		if _, err := stmt.Exec(i, int64(t.ID), t.Name, t.Category, t.SubCategory, due, done, int(t.Priority)); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func sqliteDSN(path, mode string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", mode)
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organizer/internal/storage"
	"organizer/internal/task"
	"organizer/internal/tasks"
)

type env struct {
	configPath string
	dataPath   string
}

func newEnv(t *testing.T, dataFile string) env {
	t.Helper()
	dir := t.TempDir()
	return env{
		configPath: filepath.Join(dir, "config.toml"),
		dataPath:   filepath.Join(dir, dataFile),
	}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", e.configPath, "--data", e.dataPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err)
	return out
}

func TestAddListDonePrune(t *testing.T) {
	for _, file := range []string{"tasks.db", "tasks.yaml"} {
		t.Run(file, func(t *testing.T) {
			e := newEnv(t, file)

			assert.Equal(t, "No tasks.\n", e.mustRun(t, "list"))

			out := e.mustRun(t, "add", "Buy", "milk", "--category", "Home")
			assert.Equal(t, "added 1: [ ] Buy milk !0\n", out)
			e.mustRun(t, "add", "Pay rent", "-c", "Errands", "-s", "bills", "-p", "2", "--due", "2026-11-01")
			e.mustRun(t, "add", "Call dentist", "-c", "Home")
			e.mustRun(t, "add", "Inbox zero")

			assert.Equal(t,
				"Home\n  [ ] Buy milk !0\n  [ ] Call dentist !0\n"+
					"Errands\n  [ ] Pay rent (bills) !2 @2026-11-01\n"+
					"(uncategorized)\n  [ ] Inbox zero !0\n",
				e.mustRun(t, "list"))

			assert.Equal(t, "done 3: [x] Call dentist !0\n", e.mustRun(t, "done", "3"))
			assert.Equal(t, "removed 1 done task(s)\n", e.mustRun(t, "prune"))

			assert.Equal(t,
				"Home\n  1  [ ] Buy milk !0\n"+
					"Errands\n  2  [ ] Pay rent (bills) !2 @2026-11-01\n"+
					"(uncategorized)\n  4  [ ] Inbox zero !0\n",
				e.mustRun(t, "list", "--ids"))
		})
	}
}

func TestRemove(t *testing.T) {
	e := newEnv(t, "tasks.db")
	e.mustRun(t, "add", "only", "-c", "x")

	assert.Equal(t, "removed 1: [ ] only !0\n", e.mustRun(t, "rm", "1"))
	assert.Equal(t, "No tasks.\n", e.mustRun(t, "list"))

	_, err := e.run(t, "rm", "1")
	assert.ErrorIs(t, err, tasks.ErrNotFound)
}

func TestUnknownAndInvalidIDs(t *testing.T) {
	e := newEnv(t, "tasks.yaml")

	_, err := e.run(t, "done", "9")
	assert.ErrorIs(t, err, tasks.ErrNotFound)

	_, err = e.run(t, "rm", "zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid task id "zero"`)

	_, err = e.run(t, "done", "0")
	require.Error(t, err)
}

func TestAddRejectsInvalidFields(t *testing.T) {
	e := newEnv(t, "tasks.yaml")

	_, err := e.run(t, "add", "x", "--due", "2026-02-30")
	assert.ErrorIs(t, err, task.ErrInvalidDate)

	_, err = e.run(t, "add", "x", "--priority", "300")
	assert.ErrorIs(t, err, task.ErrInvalidPriority)

	assert.Equal(t, "No tasks.\n", e.mustRun(t, "list"))
}

func TestExport(t *testing.T) {
	e := newEnv(t, "tasks.db")
	e.mustRun(t, "add", "Buy milk", "-c", "Home")
	e.mustRun(t, "add", "Pay rent", "-c", "Errands", "-p", "2")

	target := filepath.Join(t.TempDir(), "backup.yaml")
	assert.Equal(t, "exported 2 task(s) to "+target+"\n", e.mustRun(t, "export", target))

	exported, err := storage.YAML{}.Load(target)
	require.NoError(t, err)
	saved, err := storage.SQLite{}.Load(e.dataPath)
	require.NoError(t, err)
	assert.Equal(t, saved, exported)

	forced := filepath.Join(t.TempDir(), "backup.out")
	e.mustRun(t, "export", forced, "--as", "yaml")
	again, err := storage.YAML{}.Load(forced)
	require.NoError(t, err)
	assert.Equal(t, saved, again)
}

func TestSaveFailureIsReturned(t *testing.T) {
	e := newEnv(t, "tasks.yaml")
	e.dataPath = filepath.Join(e.configPath, "tasks.yaml")
	e.mustRun(t, "list")

	_, err := e.run(t, "add", "x")
	assert.ErrorIs(t, err, storage.ErrPersist)
}

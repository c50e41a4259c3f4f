package ui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organizer/internal/config"
	"organizer/internal/organizer"
	"organizer/internal/storage"
	"organizer/internal/task"
	"organizer/internal/tree"
)

func newTestModel(t *testing.T, seed ...task.Task) (Model, *organizer.Organizer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	org := organizer.Open(storage.YAML{}, path, nil)
	for _, tk := range seed {
		org.Add(tk)
	}
	return New(org, config.Default()), org
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	esc       = tea.KeyMsg{Type: tea.KeyEscape}
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	space     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	clearLine = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

// fill replaces the current form field with s and advances.
func fill(t *testing.T, m Model, s string) Model {
	t.Helper()
	msgs := []tea.Msg{clearLine}
	if s != "" {
		msgs = append(msgs, runes(s))
	}
	return press(t, m, append(msgs, enter)...)
}

func TestEmptyView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	assert.Contains(t, view, "No tasks yet")
	assert.Contains(t, view, "No task selected")
}

func TestNewTaskOpensEditorAndSaves(t *testing.T) {
	m, org := newTestModel(t)

	m = press(t, m, runes("a"))
	require.Equal(t, modeEdit, m.mode)
	require.Len(t, org.Tasks(), 1)
	id := org.Tasks()[0].ID
	assert.Equal(t, task.DefaultName, m.input.Value())

	m = fill(t, m, "Buy milk")
	m = fill(t, m, "Errands")
	m = fill(t, m, "")
	m = fill(t, m, "2026-11-01")
	m = fill(t, m, "n")
	m = fill(t, m, "3")

	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Task saved", m.status)
	assert.Equal(t, id, m.selected)
	assert.Equal(t, []string{"Errands"}, org.Categories())

	got, ok := org.Task(id)
	require.True(t, ok)
	assert.Equal(t, "Buy milk", got.Name)
	assert.Equal(t, uint8(3), got.Priority)
	require.NotNil(t, got.Due)
	assert.Equal(t, "2026-11-01", got.Due.String())

	view := m.View()
	assert.Contains(t, view, "Errands")
	assert.Contains(t, view, "[ ] Buy milk !3 @2026-11-01")
	assert.Contains(t, view, "Sub-category : (empty)")
}

func TestNewTaskReusesPlaceholder(t *testing.T) {
	m, org := newTestModel(t)
	m = press(t, m, runes("a"), esc, runes("a"))
	assert.Equal(t, modeEdit, m.mode)
	assert.Len(t, org.Tasks(), 1)
}

func TestInvalidDueDateKeepsFormOpen(t *testing.T) {
	m, org := newTestModel(t, task.Task{Name: "Pay rent", Category: "Errands"})
	m = press(t, m, runes("j"))
	id := org.Tasks()[0].ID
	require.Equal(t, id, m.selected)

	m = press(t, m, runes("e"), tab, tab, tab)
	m = fill(t, m, "2026-02-30")
	m = press(t, m, enter, enter)

	assert.Equal(t, modeEdit, m.mode)
	assert.Contains(t, m.status, "due date invalid")
	got, _ := org.Task(id)
	assert.Nil(t, got.Due)

	m = press(t, m, esc)
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Edit cancelled", m.status)
}

func TestMovingCategoryFollowsSelection(t *testing.T) {
	m, org := newTestModel(t,
		task.Task{Name: "Buy milk", Category: "Errands"},
		task.Task{Name: "Pay rent", Category: "Bills"},
	)
	m = press(t, m, runes("j"))
	milk := org.Tasks()[0].ID
	require.Equal(t, milk, m.selected)

	m = press(t, m, runes("e"), enter)
	m = fill(t, m, "Home")
	m = press(t, m, enter, enter, enter, enter)

	assert.ElementsMatch(t, []string{"Bills", "Home"}, org.Categories())
	assert.Equal(t, milk, m.selected)
	assert.Equal(t, 3, m.cursor, "rows are Bills, Pay rent, Home, Buy milk")
}

func TestCategoryRowSelectsNothing(t *testing.T) {
	m, _ := newTestModel(t, task.Task{Name: "x", Category: "c"})
	assert.Equal(t, 0, m.cursor)
	assert.Zero(t, m.selected)

	m = press(t, m, runes("e"))
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "No task selected", m.status)
}

func TestToggleAndRemoveDone(t *testing.T) {
	m, org := newTestModel(t,
		task.Task{Name: "Call dentist", Category: "Home"},
		task.Task{Name: "Buy milk", Category: "Home"},
	)
	m = press(t, m, runes("j"), space)
	assert.Equal(t, "Toggled task", m.status)
	assert.True(t, org.Tasks()[0].Done)

	m = press(t, m, runes("D"))
	assert.Equal(t, modeConfirmRemoveDone, m.mode)
	m = press(t, m, runes("n"))
	assert.Len(t, org.Tasks(), 2)

	m = press(t, m, runes("D"), runes("y"))
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Removed 1 done task(s)", m.status)
	assert.Zero(t, m.selected)
	require.Len(t, org.Tasks(), 1)
	assert.Equal(t, "Buy milk", org.Tasks()[0].Name)
}

func TestDeleteWithConfirmation(t *testing.T) {
	m, org := newTestModel(t, task.Task{Name: "only", Category: "c"})
	m = press(t, m, runes("j"), runes("d"))
	assert.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.status, "[ ] only !0")

	m = press(t, m, runes("y"))
	assert.Empty(t, org.Tasks())
	assert.Empty(t, m.rows)
	assert.Zero(t, m.selected)
	assert.Equal(t, "Deleted task", m.status)
	assert.Contains(t, m.View(), "No task selected")
}

func TestDeleteParksCursorOnCategory(t *testing.T) {
	m, org := newTestModel(t,
		task.Task{Name: "a", Category: "Home"},
		task.Task{Name: "b", Category: "Home"},
	)
	m = press(t, m, runes("j"), runes("d"), runes("y"))
	require.Len(t, m.rows, 2)
	assert.Equal(t, 0, m.cursor)
	assert.IsType(t, &tree.Category{}, m.rows[m.cursor])
	assert.Zero(t, m.selected)
	assert.Contains(t, m.View(), "No task selected")

	m = press(t, m, runes("j"))
	assert.Equal(t, org.Tasks()[0].ID, m.selected)
	assert.Contains(t, m.View(), "Name         : b")
}

func TestRemoveDoneWithNothingDoneKeepsSelection(t *testing.T) {
	m, org := newTestModel(t,
		task.Task{Name: "a", Category: "Home"},
		task.Task{Name: "b", Category: "Home"},
	)
	m = press(t, m, runes("j"), runes("j"))
	b := org.Tasks()[1].ID
	require.Equal(t, b, m.selected)

	m = press(t, m, runes("D"), runes("y"))
	assert.Equal(t, "Removed 0 done task(s)", m.status)
	assert.Equal(t, b, m.selected)
	assert.Equal(t, 2, m.cursor)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestClampAndWrap(t *testing.T) {
	assert.Equal(t, 0, clampCursor(5, 0))
	assert.Equal(t, 0, clampCursor(-1, 3))
	assert.Equal(t, 2, clampCursor(7, 3))
	assert.Equal(t, 5, wrapIndex(-1, 6))
	assert.Equal(t, 0, wrapIndex(6, 6))
}

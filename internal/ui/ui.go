package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"organizer/internal/config"
	"organizer/internal/organizer"
	"organizer/internal/task"
	"organizer/internal/tasks"
	"organizer/internal/tree"
)

type mode int

const (
	modeList mode = iota
	modeEdit
	modeConfirmDelete
	modeConfirmRemoveDone
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	categoryStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	disabledStyle = lipgloss.NewStyle().Faint(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

// editState holds the form for one task while it is being edited. Values
// stay as typed until the form is saved.
type editState struct {
	taskID   uint64
	name     string
	category string
	sub      string
	due      string
	done     string
	priority string
	index    int
}

type Model struct {
	org      *organizer.Organizer
	cfg      config.Config
	rows     []tree.Node
	cursor   int
	selected uint64
	mode     mode
	input    textinput.Model
	status   string
	edit     *editState
}

// New builds the model over an open organizer.
func New(org *organizer.Organizer, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		org:    org,
		cfg:    cfg,
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' for a new task, '%s' to edit, '%s' to delete.", cfg.Keys.New, cfg.Keys.Edit, cfg.Keys.Delete),
	}
	m.refresh()
	m.cursor = clampCursor(0, len(m.rows))
	m.syncSelection()
	return m
}

// Run starts the TUI and blocks until the user quits.
func Run(org *organizer.Organizer, cfg config.Config) error {
	program := tea.NewProgram(New(org, cfg))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEditMode(msg.String(), msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		case modeConfirmRemoveDone:
			return m.updateRemoveDoneConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(10, msg.Width-10)
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
		m.syncSelection()
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.rows))
		m.syncSelection()
	case m.cfg.Keys.New:
		res := m.org.NewTask()
		m.applyResult(res, "Added task")
		if res.SaveErr != nil {
			return m, nil
		}
		return m.startEdit()
	case m.cfg.Keys.Toggle:
		if m.selected == 0 {
			m.status = "No task selected"
			return m, nil
		}
		res, err := m.org.ToggleDone(m.selected)
		if err != nil {
			m.reportError("toggle failed", err)
			return m, nil
		}
		m.applyResult(res, "Toggled task")
	case m.cfg.Keys.Edit, m.cfg.Keys.Confirm:
		if m.selected == 0 {
			m.status = "No task selected"
			return m, nil
		}
		return m.startEdit()
	case m.cfg.Keys.Delete:
		t, ok := m.org.Task(m.selected)
		if !ok {
			m.status = "No task selected"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Are you sure you want to delete %q? y/n", t.Formatted(true))
	case m.cfg.Keys.RemoveDone:
		m.mode = modeConfirmRemoveDone
		m.status = "Are you sure you want to remove done tasks? y/n"
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.mode = modeList
		m.status = "Delete cancelled"
	case "y", "Y":
		m.mode = modeList
		res, err := m.org.DeleteTask(m.selected)
		if err != nil {
			m.reportError("delete failed", err)
			return m, nil
		}
		m.applyResult(res, "Deleted task")
	}
	return m, nil
}

func (m Model) updateRemoveDoneConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.mode = modeList
		m.status = "Remove done cancelled"
	case "y", "Y":
		m.mode = modeList
		res := m.org.RemoveDone()
		m.applyResult(res, fmt.Sprintf("Removed %d done task(s)", len(res.Removed)))
	}
	return m, nil
}

// applyResult refreshes the rows and follows the command's focus signal.
func (m *Model) applyResult(res organizer.Result, ok string) {
	m.refresh()
	switch res.Signal.Kind {
	case tree.Select:
		m.focus(res.Signal.TaskID)
	case tree.ClearSelection:
		m.clearSelection()
	default:
		if m.selected != 0 {
			m.focus(m.selected)
		}
	}
	if res.SaveErr != nil {
		m.status = fmt.Sprintf("save failed: %v", res.SaveErr)
		return
	}
	m.status = ok
}

func (m *Model) reportError(what string, err error) {
	if errors.Is(err, tasks.ErrNotFound) {
		m.refresh()
		m.clearSelection()
	}
	m.status = fmt.Sprintf("%s: %v", what, err)
}

func (m *Model) refresh() {
	m.rows = m.org.Rows()
}

// focus moves the cursor to the leaf of id.
func (m *Model) focus(id uint64) {
	for i, n := range m.rows {
		if l, ok := n.(*tree.Leaf); ok && l.TaskID == id {
			m.cursor = i
			m.selected = id
			return
		}
	}
	m.clearSelection()
}

// clearSelection drops the selected task and moves the cursor up to the
// nearest category row so no leaf stays highlighted.
func (m *Model) clearSelection() {
	m.selected = 0
	m.cursor = clampCursor(m.cursor, len(m.rows))
	for m.cursor > 0 {
		if _, ok := m.rows[m.cursor].(*tree.Category); ok {
			break
		}
		m.cursor--
	}
}

// syncSelection selects the task under the cursor. Category rows select
// nothing.
func (m *Model) syncSelection() {
	m.selected = 0
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return
	}
	if l, ok := m.rows[m.cursor].(*tree.Leaf); ok {
		m.selected = l.TaskID
	}
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	t, ok := m.org.Task(m.selected)
	if !ok {
		m.status = "No task selected"
		return m, nil
	}
	m.edit = &editState{
		taskID:   t.ID,
		name:     t.Name,
		category: t.Category,
		sub:      t.SubCategory,
		due:      task.FormatDate(t.Due),
		done:     boolToYN(t.Done),
		priority: fmt.Sprintf("%d", t.Priority),
	}
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.input.Focus()
	m.mode = modeEdit
	m.status = m.editPrompt()
	return m, nil
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.edit = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case m.cfg.Keys.NextField, "down":
		m.moveField(1)
		return m, nil
	case m.cfg.Keys.PrevField, "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.edit.setCurrentValue(m.input.Value())
		if m.edit.index >= len(editFields())-1 {
			return m.saveEdit()
		}
		m.moveField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.edit.setCurrentValue(m.input.Value())
	m.edit.index = wrapIndex(m.edit.index+delta, len(editFields()))
	m.input.SetValue(m.edit.currentValue())
	m.input.Placeholder = m.edit.currentLabel()
	m.status = m.editPrompt()
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	f, err := m.edit.fields()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	res, err := m.org.EditTask(m.edit.taskID, f)
	m.edit = nil
	m.mode = modeList
	m.input.Blur()
	if err != nil {
		m.reportError("save failed", err)
		return m, nil
	}
	m.applyResult(res, "Task saved")
	return m, nil
}

// fields validates the form. Bad dates and priorities are reported and
// the form stays open.
func (es editState) fields() (organizer.Fields, error) {
	name := strings.TrimSpace(es.name)
	if name == "" {
		return organizer.Fields{}, errors.New("name cannot be empty")
	}
	priority, err := task.ParsePriority(es.priority)
	if err != nil {
		return organizer.Fields{}, fmt.Errorf("priority invalid: %w", err)
	}
	due, err := task.ParseDate(es.due)
	if err != nil {
		return organizer.Fields{}, fmt.Errorf("due date invalid: %w", err)
	}
	return organizer.Fields{
		Name:        name,
		Category:    strings.TrimSpace(es.category),
		SubCategory: strings.TrimSpace(es.sub),
		Due:         due,
		Done:        parseYN(es.done),
		Priority:    priority,
	}, nil
}

func editFields() []string {
	return []string{"name", "category", "sub-category", "due date (YYYY-MM-DD, empty for none)", "done (y/n)", "priority (0-255)"}
}

func (es editState) currentLabel() string {
	return editFields()[es.index]
}

func (es editState) values() []string {
	return []string{es.name, es.category, es.sub, es.due, es.done, es.priority}
}

func (es editState) currentValue() string {
	return es.values()[es.index]
}

func (es *editState) setCurrentValue(v string) {
	switch es.index {
	case 0:
		es.name = v
	case 1:
		es.category = v
	case 2:
		es.sub = v
	case 3:
		es.due = v
	case 4:
		es.done = v
	case 5:
		es.priority = v
	}
}

func (m Model) editPrompt() string {
	if m.edit == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, %s/%s to move, Esc to cancel.",
		m.edit.currentLabel(), m.edit.index+1, len(editFields()), m.cfg.Keys.NextField, m.cfg.Keys.PrevField)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Organizer"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.New))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n")
	if m.edit != nil {
		b.WriteString(panelStyle.Render(m.renderEditBox()))
		b.WriteString("\n")
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) renderRows() string {
	var b strings.Builder
	for i, n := range m.rows {
		var line string
		switch n := n.(type) {
		case *tree.Category:
			line = categoryStyle.Render(n.DisplayLabel())
		case *tree.Leaf:
			line = "  " + n.Text
		}
		if i == m.cursor && m.mode != modeEdit {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	t, ok := m.org.Task(m.selected)
	if !ok {
		return panelStyle.Inherit(disabledStyle).Render("No task selected")
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Name         : %s\n", t.Name))
	b.WriteString(fmt.Sprintf("Category     : %s\n", emptyPlaceholder(t.Category)))
	b.WriteString(fmt.Sprintf("Sub-category : %s\n", emptyPlaceholder(t.SubCategory)))
	b.WriteString(fmt.Sprintf("Due          : %s\n", emptyPlaceholder(task.FormatDate(t.Due))))
	b.WriteString(fmt.Sprintf("Done         : %s\n", task.HumanDone(t.Done)))
	b.WriteString(fmt.Sprintf("Priority     : %d", t.Priority))
	return panelStyle.Render(b.String())
}

func (m Model) renderEditBox() string {
	fields := editFields()
	values := m.edit.values()
	var b strings.Builder
	for i, name := range fields {
		prefix := " "
		if i == m.edit.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-38s : %s", prefix, name, val))
		if i < len(fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s new • %s/%s edit • %s toggle • %s delete • %s remove done • %s quit",
		k.Up, k.Down, k.New, k.Edit, k.Confirm, keyLabel(k.Toggle), k.Delete, k.RemoveDone, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func parseYN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes" || v == "true" || v == "1"
}

func boolToYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

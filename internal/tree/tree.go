// Package tree maintains the two-level category hierarchy shown to the
// user. It is built once from a task list and then patched in place from
// store events.
package tree

import (
	"fmt"
	"strings"

	"organizer/internal/task"
	"organizer/internal/tasks"
)

// Uncategorized is displayed for the empty category.
const Uncategorized = "(uncategorized)"

// Node is either a *Category or a *Leaf.
type Node interface {
	node()
}

// Category groups the leaves of every task sharing one category label.
// A Category in a Tree always has at least one leaf.
type Category struct {
	Label  string
	Leaves []*Leaf
}

// Leaf stands for one task and carries its rendered text.
type Leaf struct {
	TaskID uint64
	Text   string
}

func (*Category) node() {}
func (*Leaf) node()     {}

// DisplayLabel is the label as shown to the user.
func (c *Category) DisplayLabel() string {
	if c.Label == "" {
		return Uncategorized
	}
	return c.Label
}

// SignalKind tells the presentation layer what to do with focus after an
// event is applied.
type SignalKind int

const (
	// None leaves focus where it is.
	None SignalKind = iota
	// Select focuses the leaf of Signal.TaskID.
	Select
	// ClearSelection drops focus; no leaf is selected.
	ClearSelection
)

func (k SignalKind) String() string {
	switch k {
	case Select:
		return "select"
	case ClearSelection:
		return "clear"
	default:
		return "none"
	}
}

// Signal is the focus hint returned by Apply.
type Signal struct {
	Kind   SignalKind
	TaskID uint64
}

// Tree is the category forest. Categories and leaves keep insertion order.
type Tree struct {
	categories []*Category
}

// Build derives a tree from tasks: categories in first-seen order, leaves
// in task order.
func Build(ts []task.Task) *Tree {
	t := &Tree{}
	for _, tk := range ts {
		t.attach(tk.Category, &Leaf{TaskID: tk.ID, Text: tk.Formatted(true)})
	}
	return t
}

// Categories returns the category nodes in display order.
func (t *Tree) Categories() []*Category {
	return append([]*Category(nil), t.categories...)
}

// Labels returns the category labels in display order.
func (t *Tree) Labels() []string {
	labels := make([]string, len(t.categories))
	for i, c := range t.categories {
		labels[i] = c.Label
	}
	return labels
}

// Category returns the node labelled label.
func (t *Tree) Category(label string) (*Category, bool) {
	i := t.categoryIndex(label)
	if i < 0 {
		return nil, false
	}
	return t.categories[i], true
}

// Leaf returns the leaf for a task and the category it sits under.
func (t *Tree) Leaf(id uint64) (*Category, *Leaf, bool) {
	for _, c := range t.categories {
		if i := leafIndex(c, id); i >= 0 {
			return c, c.Leaves[i], true
		}
	}
	return nil, nil, false
}

// Rows flattens the tree into display order: each category followed by its
// leaves.
func (t *Tree) Rows() []Node {
	var rows []Node
	for _, c := range t.categories {
		rows = append(rows, c)
		for _, l := range c.Leaves {
			rows = append(rows, l)
		}
	}
	return rows
}

// Apply patches the tree for one store event and returns the focus hint.
func (t *Tree) Apply(ev tasks.Event) Signal {
	switch ev.Kind {
	case tasks.Added:
		t.attach(ev.Task.Category, &Leaf{TaskID: ev.Task.ID, Text: ev.Task.Formatted(true)})
		return Signal{Kind: Select, TaskID: ev.Task.ID}
	case tasks.Edited:
		return t.edited(ev.Task, ev.OldCategory)
	case tasks.Removed, tasks.BulkRemoved:
		if len(ev.Removed) == 0 {
			return Signal{}
		}
		for _, e := range ev.Removed {
			t.detach(e.Category, e.ID)
		}
		t.prune()
		return Signal{Kind: ClearSelection}
	default:
		return Signal{}
	}
}

func (t *Tree) edited(tk task.Task, oldCategory string) Signal {
	text := tk.Formatted(true)
	if tk.Category == oldCategory {
		if c, ok := t.Category(oldCategory); ok {
			if i := leafIndex(c, tk.ID); i >= 0 {
				c.Leaves[i].Text = text
				return Signal{Kind: None, TaskID: tk.ID}
			}
		}
	}

	leaf := t.detach(oldCategory, tk.ID)
	if leaf == nil {
		leaf = &Leaf{TaskID: tk.ID}
	}
	leaf.Text = text
	t.prune()
	t.attach(tk.Category, leaf)
	return Signal{Kind: Select, TaskID: tk.ID}
}

// attach appends leaf under label, creating the category if needed.
func (t *Tree) attach(label string, leaf *Leaf) {
	i := t.categoryIndex(label)
	if i < 0 {
		t.categories = append(t.categories, &Category{Label: label})
		i = len(t.categories) - 1
	}
	c := t.categories[i]
	c.Leaves = append(c.Leaves, leaf)
}

// detach removes the leaf for id, looking under label first and then in
// every category. It does not prune.
func (t *Tree) detach(label string, id uint64) *Leaf {
	if c, ok := t.Category(label); ok {
		if l := removeLeaf(c, id); l != nil {
			return l
		}
	}
	for _, c := range t.categories {
		if l := removeLeaf(c, id); l != nil {
			return l
		}
	}
	return nil
}

// prune drops every category left without leaves.
func (t *Tree) prune() {
	kept := t.categories[:0]
	for _, c := range t.categories {
		if len(c.Leaves) > 0 {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(t.categories); i++ {
		t.categories[i] = nil
	}
	t.categories = kept
}

func (t *Tree) categoryIndex(label string) int {
	for i, c := range t.categories {
		if c.Label == label {
			return i
		}
	}
	return -1
}

func leafIndex(c *Category, id uint64) int {
	for i, l := range c.Leaves {
		if l.TaskID == id {
			return i
		}
	}
	return -1
}

func removeLeaf(c *Category, id uint64) *Leaf {
	i := leafIndex(c, id)
	if i < 0 {
		return nil
	}
	l := c.Leaves[i]
	c.Leaves = append(c.Leaves[:i], c.Leaves[i+1:]...)
	return l
}

// Render draws the tree as indented text, one row per line.
func (t *Tree) Render() string {
	var b strings.Builder
	for _, c := range t.categories {
		b.WriteString(c.DisplayLabel())
		b.WriteString("\n")
		for _, l := range c.Leaves {
			fmt.Fprintf(&b, "  %s\n", l.Text)
		}
	}
	return b.String()
}

// Verify checks the tree against the task list it should mirror: the same
// category set, exactly one leaf per task under the task's category with
// its current text, and no empty categories.
func (t *Tree) Verify(ts []task.Task) error {
	byID := make(map[uint64]task.Task, len(ts))
	cats := make(map[string]struct{})
	for _, tk := range ts {
		byID[tk.ID] = tk
		cats[tk.Category] = struct{}{}
	}

	seenLabels := make(map[string]struct{})
	seenLeaves := make(map[uint64]struct{})
	for _, c := range t.categories {
		if _, dup := seenLabels[c.Label]; dup {
			return fmt.Errorf("category %q appears twice", c.Label)
		}
		seenLabels[c.Label] = struct{}{}
		if len(c.Leaves) == 0 {
			return fmt.Errorf("category %q has no leaves", c.Label)
		}
		if _, ok := cats[c.Label]; !ok {
			return fmt.Errorf("category %q has no tasks", c.Label)
		}
		for _, l := range c.Leaves {
			tk, ok := byID[l.TaskID]
			if !ok {
				return fmt.Errorf("leaf %d under %q has no task", l.TaskID, c.Label)
			}
			if _, dup := seenLeaves[l.TaskID]; dup {
				return fmt.Errorf("task %d has more than one leaf", l.TaskID)
			}
			seenLeaves[l.TaskID] = struct{}{}
			if tk.Category != c.Label {
				return fmt.Errorf("task %d is under %q, want %q", l.TaskID, c.Label, tk.Category)
			}
			if want := tk.Formatted(true); l.Text != want {
				return fmt.Errorf("task %d shows %q, want %q", l.TaskID, l.Text, want)
			}
		}
	}
	if len(seenLeaves) != len(byID) {
		return fmt.Errorf("tree has %d leaves for %d tasks", len(seenLeaves), len(byID))
	}
	return nil
}

// Package organizer is the single owner of the task store and the category
// tree. Every command mutates the store, persists it, and patches the tree
// before returning, so the two never drift apart.
package organizer

import (
	"io"

	"github.com/charmbracelet/log"

	"organizer/internal/storage"
	"organizer/internal/task"
	"organizer/internal/tasks"
	"organizer/internal/tree"
)

// Organizer is not safe for concurrent use. The presentation layer calls it
// from one goroutine and never holds the store or tree directly.
type Organizer struct {
	store *tasks.Store
	tree  *tree.Tree
	path  string
	log   *log.Logger
}

// Result describes what a command changed.
type Result struct {
	// Task is the task added or edited, or the task removed by DeleteTask.
	Task task.Task
	// Removed lists the tasks dropped by DeleteTask or RemoveDone.
	Removed []tasks.Entry
	// Signal is the focus hint for the presentation layer.
	Signal tree.Signal
	// SaveErr is set when the change is held in memory but could not be
	// written. It wraps storage.ErrPersist.
	SaveErr error
}

// Fields are the user-editable parts of a task.
type Fields struct {
	Name        string
	Category    string
	SubCategory string
	Due         *task.Date
	Done        bool
	Priority    uint8
}

// FieldsOf returns t's editable fields.
func FieldsOf(t task.Task) Fields {
	t = t.Clone()
	return Fields{
		Name:        t.Name,
		Category:    t.Category,
		SubCategory: t.SubCategory,
		Due:         t.Due,
		Done:        t.Done,
		Priority:    t.Priority,
	}
}

func (f Fields) apply(t *task.Task) {
	t.Name = f.Name
	t.Category = f.Category
	t.SubCategory = f.SubCategory
	t.Due = nil
	if f.Due != nil {
		d := *f.Due
		t.Due = &d
	}
	t.Done = f.Done
	t.Priority = f.Priority
}

// Open loads the task file at path. A missing or unreadable file is logged
// and replaced by an empty list; Open itself never fails.
func Open(codec storage.Codec, path string, logger *log.Logger) *Organizer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	store, err := tasks.Load(codec, path)
	switch {
	case err == nil:
		logger.Info("loaded tasks", "path", path, "count", store.Len())
	case storage.IsMissing(err):
		logger.Info("no task file yet, starting empty", "path", path)
	default:
		logger.Warn("could not load tasks, starting empty", "path", path, "err", err)
	}
	return &Organizer{
		store: store,
		tree:  tree.Build(store.Tasks()),
		path:  path,
		log:   logger,
	}
}

// Path is the task file this organizer saves to.
func (o *Organizer) Path() string {
	return o.path
}

// Tasks returns a snapshot of all tasks in insertion order.
func (o *Organizer) Tasks() []task.Task {
	return o.store.Tasks()
}

// Task returns one task by ID.
func (o *Organizer) Task(id uint64) (task.Task, bool) {
	return o.store.Get(id)
}

// Categories returns the categories in use, first-seen order.
func (o *Organizer) Categories() []string {
	return o.store.Categories()
}

// Rows returns the category tree flattened for display.
func (o *Organizer) Rows() []tree.Node {
	return o.tree.Rows()
}

// Render draws the category tree as text.
func (o *Organizer) Render() string {
	return o.tree.Render()
}

// Verify checks the tree against the store.
func (o *Organizer) Verify() error {
	return o.tree.Verify(o.store.Tasks())
}

// AddTask appends a pending task with the given name and no category.
func (o *Organizer) AddTask(name string) Result {
	return o.Add(task.New(name))
}

// Add appends t. Its ID is assigned by the store.
func (o *Organizer) Add(t task.Task) Result {
	added, ev := o.store.Add(t)
	return o.commit(ev, Result{Task: added})
}

// NewTask adds a task named task.DefaultName, unless one already exists,
// in which case that task is selected instead and nothing is saved.
func (o *Organizer) NewTask() Result {
	if existing, ok := o.store.FindByName(task.DefaultName); ok {
		return Result{Task: existing, Signal: tree.Signal{Kind: tree.Select, TaskID: existing.ID}}
	}
	return o.AddTask(task.DefaultName)
}

// EditTask replaces every editable field of the task.
func (o *Organizer) EditTask(id uint64, f Fields) (Result, error) {
	return o.edit(id, func(t *task.Task) error {
		f.apply(t)
		return nil
	})
}

// ToggleDone flips the done flag of the task.
func (o *Organizer) ToggleDone(id uint64) (Result, error) {
	return o.edit(id, func(t *task.Task) error {
		t.Done = !t.Done
		return nil
	})
}

func (o *Organizer) edit(id uint64, mutate func(*task.Task) error) (Result, error) {
	ev, err := o.store.Edit(id, mutate)
	if err != nil {
		return Result{}, err
	}
	return o.commit(ev, Result{Task: ev.Task}), nil
}

// DeleteTask removes the task. An unknown ID returns tasks.ErrNotFound and
// changes nothing.
func (o *Organizer) DeleteTask(id uint64) (Result, error) {
	ev, err := o.store.Remove(id)
	if err != nil {
		return Result{}, err
	}
	return o.commit(ev, Result{Task: ev.Task, Removed: ev.Removed}), nil
}

// RemoveDone drops every done task.
func (o *Organizer) RemoveDone() Result {
	ev := o.store.RemoveDone()
	return o.commit(ev, Result{Removed: ev.Removed})
}

// commit persists the store and then applies ev to the tree.
func (o *Organizer) commit(ev tasks.Event, res Result) Result {
	res.SaveErr = o.Save()
	res.Signal = o.tree.Apply(ev)
	o.log.Debug("task list changed",
		"event", ev.Kind,
		"task_id", res.Task.ID,
		"removed", len(res.Removed),
		"signal", res.Signal.Kind,
	)
	return res
}

// Save writes the current task list. Failures are logged and returned; the
// in-memory state is unaffected.
func (o *Organizer) Save() error {
	if err := o.store.Save(o.path); err != nil {
		o.log.Error("could not save tasks", "path", o.path, "err", err)
		return err
	}
	return nil
}

// Close performs the final save.
func (o *Organizer) Close() error {
	err := o.Save()
	if err == nil {
		o.log.Info("saved tasks", "path", o.path, "count", o.store.Len())
	}
	return err
}

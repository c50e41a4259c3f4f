// Package tasks owns the ordered task list and reports every committed
// mutation as an Event.
package tasks

import (
	"errors"
	"fmt"
	"slices"

	"organizer/internal/storage"
	"organizer/internal/task"
)

// ErrNotFound is returned when a command names a task ID that is not in
// the store.
var ErrNotFound = errors.New("task not found")

// Store holds tasks in insertion order. It is not safe for concurrent use;
// a single controller owns it.
type Store struct {
	codec  storage.Codec
	tasks  []task.Task
	nextID uint64
}

// New returns a store seeded with tasks. Tasks without an ID, or whose ID
// repeats an earlier one, are assigned fresh IDs.
func New(codec storage.Codec, seed []task.Task) *Store {
	s := &Store{codec: codec, nextID: 1}
	for _, t := range seed {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	seen := make(map[uint64]struct{}, len(seed))
	for _, t := range seed {
		t = t.Clone()
		if _, dup := seen[t.ID]; t.ID == 0 || dup {
			t.ID = s.allocID()
		}
		seen[t.ID] = struct{}{}
		s.tasks = append(s.tasks, t)
	}
	return s
}

// Load reads path through codec. On any load failure the store starts
// empty and the error is returned alongside it for the caller to report.
func Load(codec storage.Codec, path string) (*Store, error) {
	seed, err := codec.Load(path)
	if err != nil {
		return New(codec, nil), err
	}
	return New(codec, seed), nil
}

// Save writes the full task list to path. A failure leaves the in-memory
// list untouched.
func (s *Store) Save(path string) error {
	return s.codec.Save(path, s.tasks)
}

func (s *Store) allocID() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a snapshot of the task list in order.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns the task with the given ID.
func (s *Store) Get(id uint64) (task.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// FindByName returns the first task whose name is exactly name.
func (s *Store) FindByName(name string) (task.Task, bool) {
	for _, t := range s.tasks {
		if t.Name == name {
			return t.Clone(), true
		}
	}
	return task.Task{}, false
}

func (s *Store) index(id uint64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Categories returns the distinct categories of the current tasks in
// first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	cats := []string{}
	for _, t := range s.tasks {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		cats = append(cats, t.Category)
	}
	return cats
}

// Add appends t with a newly assigned ID. Any ID already set on t is
// ignored.
func (s *Store) Add(t task.Task) (task.Task, Event) {
	t = t.Clone()
	t.ID = s.allocID()
	s.tasks = append(s.tasks, t)
	return t.Clone(), Event{Kind: Added, Task: t.Clone()}
}

// Remove deletes the task with the given ID.
func (s *Store) Remove(id uint64) (Event, error) {
	i := s.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return Event{Kind: Removed, Task: removed, Removed: []Entry{entryOf(removed)}}, nil
}

// Edit applies mutate to a copy of the task and commits the copy only if
// mutate succeeds. The ID cannot be changed.
func (s *Store) Edit(id uint64, mutate func(*task.Task) error) (Event, error) {
	i := s.index(id)
	if i < 0 {
		return Event{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	old := s.tasks[i]
	updated := old.Clone()
	if err := mutate(&updated); err != nil {
		return Event{}, err
	}
	updated.ID = old.ID
	s.tasks[i] = updated
	return Event{Kind: Edited, Task: updated.Clone(), OldCategory: old.Category}, nil
}

// RemoveDone drops every done task in one pass, keeping the order of the
// rest. The event lists the removed tasks in their former order.
func (s *Store) RemoveDone() Event {
	kept := s.tasks[:0]
	var removed []Entry
	for _, t := range s.tasks {
		if t.Done {
			removed = append(removed, entryOf(t))
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = task.Task{}
	}
	s.tasks = kept
	return Event{Kind: BulkRemoved, Removed: removed}
}

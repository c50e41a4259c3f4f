package tasks

import "organizer/internal/task"

// EventKind names the mutation an Event describes.
type EventKind int

const (
	Added EventKind = iota + 1
	Edited
	Removed
	BulkRemoved
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Edited:
		return "edited"
	case Removed:
		return "removed"
	case BulkRemoved:
		return "bulk-removed"
	default:
		return "unknown"
	}
}

// Entry identifies a task that left the store, as it was just before it
// was removed.
type Entry struct {
	ID       uint64
	Category string
	Text     string
}

func entryOf(t task.Task) Entry {
	return Entry{ID: t.ID, Category: t.Category, Text: t.Formatted(true)}
}

// Event describes one committed store mutation.
//
// Added and Edited carry the task's new state in Task; Edited also carries
// the category the task had before the edit. Removed and BulkRemoved list
// the departed tasks in Removed.
type Event struct {
	Kind        EventKind
	Task        task.Task
	OldCategory string
	Removed     []Entry
}

// CategoryChanged reports whether an Edited event moved its task.
func (e Event) CategoryChanged() bool {
	return e.Kind == Edited && e.Task.Category != e.OldCategory
}

// Package task defines the task record and its display rendering.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultName is the name given to tasks created without one.
const DefaultName = "new task"

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Date is a calendar date with no time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates year/month/day and returns the date. Out-of-range
// components such as February 30 are rejected rather than normalized.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string. An empty string means no due date
// and yields a nil date.
func ParseDate(v string) (*Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	}
	d := DateOf(t)
	return &d, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	*d = *parsed
	return nil
}

// FormatDate renders an optional date, empty when absent.
func FormatDate(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ParsePriority parses a priority in [0,255]. Empty input is priority 0.
func ParsePriority(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	p, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (want 0-255)", ErrInvalidPriority, v)
	}
	return uint8(p), nil
}

// Task is one user-recorded item. ID is assigned by the store and never
// reused within a task list.
type Task struct {
	ID          uint64
	Name        string
	Category    string
	SubCategory string
	Due         *Date
	Done        bool
	Priority    uint8
}

// New returns a pending task with the given name and no category.
func New(name string) Task {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	return Task{Name: name}
}

// Formatted renders the task. The short form is the name alone; the full
// form adds the done marker, priority, sub-category and due date.
func (t Task) Formatted(full bool) string {
	if !full {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(Checkbox(t.Done))
	b.WriteString(" ")
	b.WriteString(t.Name)
	if t.SubCategory != "" {
		b.WriteString(" (")
		b.WriteString(t.SubCategory)
		b.WriteString(")")
	}
	b.WriteString(" !")
	b.WriteString(strconv.Itoa(int(t.Priority)))
	if t.Due != nil {
		b.WriteString(" @")
		b.WriteString(t.Due.String())
	}
	return b.String()
}

// Checkbox is the done marker used in the full rendering.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// HumanDone describes the done flag in words.
func HumanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.Due != nil {
		d := *t.Due
		t.Due = &d
	}
	return t
}

package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormattedShortIsName(t *testing.T) {
	tk := Task{Name: "Buy milk", Category: "Errands", Priority: 3, Done: true}
	assert.Equal(t, "Buy milk", tk.Formatted(false))
}

func TestFormattedFull(t *testing.T) {
	due, err := NewDate(2026, time.October, 18)
	require.NoError(t, err)

	tests := []struct {
		name string
		task Task
		want string
	}{
		{
			name: "pending without extras",
			task: Task{Name: "Buy milk"},
			want: "[ ] Buy milk !0",
		},
		{
			name: "done with sub-category",
			task: Task{Name: "Call dentist", SubCategory: "health", Done: true, Priority: 255},
			want: "[x] Call dentist (health) !255",
		},
		{
			name: "due date",
			task: Task{Name: "Pay rent", Priority: 2, Due: &due},
			want: "[ ] Pay rent !2 @2026-10-18",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Formatted(true))
		})
	}
}

func TestFormattedDistinguishesDoneState(t *testing.T) {
	a := Task{Name: "x", Priority: 1}
	b := a
	b.Done = true
	assert.NotEqual(t, a.Formatted(true), b.Formatted(true))
}

func TestNewDefaultsName(t *testing.T) {
	assert.Equal(t, DefaultName, New("  ").Name)
	assert.Equal(t, "Read", New("Read").Name)
	assert.Equal(t, "", New("Read").Category)
}

func TestNewDateRejectsImpossibleDates(t *testing.T) {
	_, err := NewDate(2025, time.February, 29)
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = NewDate(2024, time.February, 29)
	require.NoError(t, err)

	_, err = NewDate(2024, time.Month(13), 1)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate(" 2026-01-31 ")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, Date{Year: 2026, Month: time.January, Day: 31}, *d)

	_, err = ParseDate("2026-02-31")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateTextRoundTrip(t *testing.T) {
	d := Date{Year: 2027, Month: time.March, Day: 5}
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2027-03-05", string(b))

	var back Date
	require.NoError(t, back.UnmarshalText(b))
	assert.Equal(t, d, back)
	assert.ErrorIs(t, back.UnmarshalText([]byte("")), ErrInvalidDate)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), p)

	p, err = ParsePriority("255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), p)

	_, err = ParsePriority("256")
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = ParsePriority("-1")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestCloneCopiesDue(t *testing.T) {
	d := Date{Year: 2026, Month: time.May, Day: 1}
	orig := Task{Name: "a", Due: &d}
	c := orig.Clone()
	c.Due.Day = 2
	assert.Equal(t, 1, orig.Due.Day)
}

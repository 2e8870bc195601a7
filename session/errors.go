package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStatusGroup is returned when the single-item status block is not
	// part of the current view.
	ErrNoStatusGroup = errors.New("no status group rendered")

	// ErrNoChecklist is returned when no checklist is rendered.
	ErrNoChecklist = errors.New("no checklist rendered")

	// ErrNoSubmitHandler is returned when Submit is called before any handler
	// is attached.
	ErrNoSubmitHandler = errors.New("no submit handler attached")
)

// UnknownFieldError reports an edit on a field the view does not contain.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// ReadOnlyFieldError reports an edit on a frozen field.
type ReadOnlyFieldError struct {
	Name string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("field %q is read-only", e.Name)
}

// InvalidStatusError reports a status outside Bagus/Rusak.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Status)
}

// InvalidShiftError reports a shift outside the known set.
type InvalidShiftError struct {
	Shift string
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf("invalid shift %q", e.Shift)
}

// UnknownItemError reports a checklist edit on an item id outside the
// rendered rows.
type UnknownItemError struct {
	ItemID int64
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown checklist item %d", e.ItemID)
}

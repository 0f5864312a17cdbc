package domain

import "errors"

var (
	// ErrInvalidShape reports a course payload that is not a JSON object.
	ErrInvalidShape = errors.New("course payload is not an object")

	// ErrInvalidModule reports an operation referencing a module id absent
	// from the current course.
	ErrInvalidModule = errors.New("module not found in course")
)

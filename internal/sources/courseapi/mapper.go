package courseapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pelajarin/kelas/internal/domain"
)

// Fallback values for partial bookmark list entries, so rendering never
// fails on missing optional fields.
const (
	fallbackTitle       = "Untitled Course"
	fallbackDescription = "No description available"
	fallbackLevel       = "beginner"
	fallbackDuration    = "0 jam"
	fallbackInstructor  = "Unknown"
	fallbackVideoID     = "dQw4w9WgXcQ"
)

// Mapper converts raw course service payloads to domain entities.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapCourse normalizes a raw course detail payload into a domain.Course.
//
// It fails with domain.ErrInvalidShape only when the payload is not a JSON
// object at all. Missing modules become an empty sequence; modules
// serialized as an object keyed by id become a sequence of the object's
// values in encounter order. Everything else passes through as-is.
func (m *Mapper) MapCourse(raw []byte) (*domain.Course, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidShape, previewPayload(trimmed))
	}

	var payload coursePayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		// A field-level type mismatch still fills the other fields;
		// only a structurally broken object is fatal.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidShape, err)
		}
	}

	return &domain.Course{
		ID:             payload.ID,
		Title:          payload.Title,
		Description:    payload.Description,
		Level:          payload.Level,
		Duration:       payload.Duration,
		Instructor:     payload.Instructor,
		VideoURL:       payload.VideoURL,
		Bookmarked:     payload.Bookmarked,
		Enrolled:       payload.Enrolled,
		Completed:      payload.Completed,
		CourseProgress: payload.CourseProgress,
		Modules:        decodeModules(payload.Modules),
	}, nil
}

// MapBookmarks normalizes the bookmark list response. The service answers
// with either a bare array of courses, a {"bookmarks": [...]} wrapper, or a
// {"message": "No bookmarks found"} object; anything else maps to an empty
// list. Partial entries are filled with fixed fallbacks and every entry is
// marked bookmarked.
func (m *Mapper) MapBookmarks(raw []byte) ([]*domain.Course, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []*domain.Course{}, nil
	}

	if trimmed[0] == '[' {
		var list []coursePayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidShape, err)
		}
		return mapBookmarkEntries(list), nil
	}

	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidShape, previewPayload(trimmed))
	}

	var env bookmarkEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidShape, err)
	}
	if env.Bookmarks == nil {
		// "No bookmarks found" message, or an unexpected object shape.
		return []*domain.Course{}, nil
	}
	return mapBookmarkEntries(env.Bookmarks), nil
}

func mapBookmarkEntries(list []coursePayload) []*domain.Course {
	out := make([]*domain.Course, 0, len(list))
	for _, p := range list {
		out = append(out, &domain.Course{
			ID:          p.ID,
			Title:       withDefault(p.Title, fallbackTitle),
			Description: withDefault(p.Description, fallbackDescription),
			Level:       withDefault(p.Level, fallbackLevel),
			Duration:    withDefault(p.Duration, fallbackDuration),
			Instructor:  withDefault(p.Instructor, fallbackInstructor),
			VideoURL:    withDefault(p.VideoURL, fallbackVideoID),
			Bookmarked:  true,
			Enrolled:    p.Enrolled,
			Completed:   p.Completed,
			Modules:     []*domain.Module{},
		})
	}
	return out
}

// decodeModules accepts the modules field as an array, an object keyed by
// id, or anything else (absent, null, wrong type) which all collapse to an
// empty sequence. Never fails.
func decodeModules(raw json.RawMessage) []*domain.Module {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []*domain.Module{}
	}

	switch trimmed[0] {
	case '[':
		var list []modulePayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return []*domain.Module{}
		}
		out := make([]*domain.Module, 0, len(list))
		for _, p := range list {
			out = append(out, mapModule(p))
		}
		return out
	case '{':
		return decodeModuleMap(trimmed)
	default:
		return []*domain.Module{}
	}
}

// decodeModuleMap walks the object token by token so the values come out
// in encounter order. json.Unmarshal into a map would lose it.
func decodeModuleMap(raw []byte) []*domain.Module {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return []*domain.Module{}
	}

	out := []*domain.Module{}
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return out
		}
		var p modulePayload
		if err := dec.Decode(&p); err != nil {
			return out
		}
		out = append(out, mapModule(p))
	}
	return out
}

func mapModule(p modulePayload) *domain.Module {
	return &domain.Module{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		VideoURL:    p.VideoURL,
		Completed:   p.Completed,
		Order:       p.Order,
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// previewPayload truncates a payload for error messages.
func previewPayload(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

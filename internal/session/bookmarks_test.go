package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

func TestBookmarkListLoad(t *testing.T) {
	api := &fakeAPI{bookmarksPayload: []byte(`[
		{"id": 4, "title": "Belajar Go", "level": "intermediate"},
		{"id": 7}
	]`)}
	s := NewBookmarkList(api, logger.NewNop(), "tok")

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	courses := s.Courses()
	if len(courses) != 2 {
		t.Fatalf("len(courses) = %d, want 2", len(courses))
	}
	if courses[0].Title != "Belajar Go" {
		t.Errorf("title = %q, want supplied value kept", courses[0].Title)
	}
	if courses[1].Title != "Untitled Course" {
		t.Errorf("title fallback = %q, want %q", courses[1].Title, "Untitled Course")
	}
	for _, c := range courses {
		if !c.Bookmarked {
			t.Errorf("course %d not flagged bookmarked", c.ID)
		}
	}
}

func TestBookmarkListLoadFailureDegradesToEmpty(t *testing.T) {
	api := &fakeAPI{bookmarksErr: errors.New("connection refused")}
	s := NewBookmarkList(api, logger.NewNop(), "tok")

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v, want degraded nil", err)
	}
	if got := s.Courses(); len(got) != 0 {
		t.Errorf("len(courses) = %d, want 0", len(got))
	}
}

func TestBookmarkListLoadUnauthorizedPropagates(t *testing.T) {
	api := &fakeAPI{bookmarksErr: fmt.Errorf("%w: status 401", courseapi.ErrUnauthorized)}
	s := NewBookmarkList(api, logger.NewNop(), "tok")

	if err := s.Load(context.Background()); !errors.Is(err, courseapi.ErrUnauthorized) {
		t.Fatalf("Load() error = %v, want ErrUnauthorized", err)
	}
}

func TestBookmarkListToggleRemovesOnServerConfirmedFalse(t *testing.T) {
	api := &fakeAPI{
		bookmarksPayload: []byte(`[{"id": 4, "title": "A"}, {"id": 7, "title": "B"}]`),
		toggleResults:    []bool{false},
	}
	s := NewBookmarkList(api, logger.NewNop(), "tok")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	bookmarked, err := s.Toggle(context.Background(), 4)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if bookmarked {
		t.Error("Toggle() = true, want server's false")
	}

	courses := s.Courses()
	if len(courses) != 1 || courses[0].ID != 7 {
		t.Errorf("courses after removal = %v, want only id 7", courses)
	}
}

func TestBookmarkListToggleKeepsCourseOnTrue(t *testing.T) {
	api := &fakeAPI{
		bookmarksPayload: []byte(`[{"id": 4, "title": "A"}]`),
		toggleResults:    []bool{true},
	}
	s := NewBookmarkList(api, logger.NewNop(), "tok")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	bookmarked, err := s.Toggle(context.Background(), 4)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !bookmarked {
		t.Error("Toggle() = false, want server's true")
	}
	if got := s.Courses(); len(got) != 1 {
		t.Errorf("len(courses) = %d, want 1 (no removal on true)", len(got))
	}
}

func TestBookmarkListToggleFailureLeavesListUnchanged(t *testing.T) {
	api := &fakeAPI{
		bookmarksPayload: []byte(`[{"id": 4, "title": "A"}]`),
		toggleErr:        errors.New("network down"),
	}
	s := NewBookmarkList(api, logger.NewNop(), "tok")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := s.Toggle(context.Background(), 4); err == nil {
		t.Fatal("Toggle() error = nil, want failure")
	}
	if got := s.Courses(); len(got) != 1 {
		t.Errorf("len(courses) = %d, want 1 (no optimistic removal)", len(got))
	}
}

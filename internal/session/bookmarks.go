package session

import (
	"context"
	"errors"
	"sync"

	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

// BookmarkListSession is the lighter sibling of CourseSession for the
// bookmarks page: it fetches the learner's bookmarked courses, fills fixed
// fallbacks for partial entries, and removes a course from the local list
// only once the server confirms the toggle landed on bookmarked=false.
type BookmarkListSession struct {
	api    API
	mapper *courseapi.Mapper
	logger logger.Logger
	bearer string

	mu      sync.Mutex
	courses []*domain.Course
}

// NewBookmarkList creates a bookmark list session. Each page visit gets a
// fresh one; nothing is cached across visits.
func NewBookmarkList(api API, log logger.Logger, bearer string) *BookmarkListSession {
	return &BookmarkListSession{
		api:     api,
		mapper:  courseapi.NewMapper(),
		logger:  log,
		bearer:  bearer,
		courses: []*domain.Course{},
	}
}

// Load fetches and normalizes the bookmark list. An authorization failure
// propagates; any other failure degrades to an empty list, matching the
// page's render-something-over-erroring behavior.
func (s *BookmarkListSession) Load(ctx context.Context) error {
	raw, err := s.api.FetchBookmarks(ctx, s.bearer)
	if err != nil {
		if errors.Is(err, courseapi.ErrUnauthorized) {
			return err
		}
		s.logger.Warn("failed to fetch bookmarks, showing empty list",
			logger.Error(err))
		s.setCourses([]*domain.Course{})
		return nil
	}

	courses, err := s.mapper.MapBookmarks(raw)
	if err != nil {
		s.logger.Warn("unexpected bookmark payload, showing empty list",
			logger.Error(err))
		s.setCourses([]*domain.Course{})
		return nil
	}

	s.setCourses(courses)
	return nil
}

// Toggle flips the bookmark for a course and returns the server's
// resulting boolean. The course leaves the local list only after the
// server confirms bookmarked=false: no optimistic removal.
func (s *BookmarkListSession) Toggle(ctx context.Context, courseID int64) (bool, error) {
	bookmarked, err := s.api.ToggleBookmark(ctx, s.bearer, courseID)
	if err != nil {
		s.logger.Error("bookmark toggle failed",
			logger.Int64("course_id", courseID),
			logger.Error(err))
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !bookmarked {
		kept := s.courses[:0]
		for _, c := range s.courses {
			if c.ID != courseID {
				kept = append(kept, c)
			}
		}
		s.courses = kept
	} else {
		for _, c := range s.courses {
			if c.ID == courseID {
				c.Bookmarked = true
			}
		}
	}
	return bookmarked, nil
}

// Courses returns the current list.
func (s *BookmarkListSession) Courses() []*domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

func (s *BookmarkListSession) setCourses(courses []*domain.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = courses
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

// State tracks where a course session is in its lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateMutating
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// User-displayable failure messages. Only load-path and authorization
// failures ever reach the user; everything else is logged and swallowed.
const (
	msgLoadFailed   = "Failed to load course details. Please try again later."
	msgSessionStale = "Sesi tidak valid. Silakan masuk kembali."
)

// CourseSession owns the reconciliation workflow for one course-detail
// visit: load, normalize, compute progress, select the active module, mark
// modules complete, keep the bookmark flag converged, and notify other
// pages after progress-affecting mutations.
//
// The session is discarded on navigation away and never persists course
// data beyond its own lifetime. Callers are expected to serialize
// mutations: one in-flight mark-complete per session at a time.
type CourseSession struct {
	api    API
	bus    *bus.Bus
	mapper *courseapi.Mapper
	logger logger.Logger

	bearer   string
	courseID int64

	mu             sync.Mutex
	state          State
	errMsg         string
	course         *domain.Course
	progress       int
	activeModuleID int64 // 0 = no module shown
	discarded      bool
	lastTouched    time.Time
}

// Snapshot is an immutable view of session state handed to callers.
type Snapshot struct {
	State          State
	Error          string
	Course         *domain.Course
	Progress       int
	ActiveModuleID int64
}

// New creates a course session in the Loading state. Call Load before
// anything else.
func New(api API, b *bus.Bus, log logger.Logger, bearer string, courseID int64) *CourseSession {
	return &CourseSession{
		api:         api,
		bus:         b,
		mapper:      courseapi.NewMapper(),
		logger:      log,
		bearer:      bearer,
		courseID:    courseID,
		state:       StateLoading,
		lastTouched: time.Now(),
	}
}

// Load fetches and normalizes the course, computes the initial progress
// snapshot and selects the active module. A transport or authorization
// failure is terminal for the session: state becomes Error with a
// user-displayable message and nothing retries automatically.
//
// On success a best-effort course_view activity record is emitted; its
// failure is logged and never blocks the transition to Ready.
func (s *CourseSession) Load(ctx context.Context) error {
	raw, err := s.api.FetchCourse(ctx, s.bearer, s.courseID)
	if err != nil {
		s.fail(classifyLoadError(err))
		return err
	}

	course, err := s.mapper.MapCourse(raw)
	if err != nil {
		s.logger.Error("course payload rejected by normalizer",
			logger.Int64("course_id", s.courseID),
			logger.Error(err))
		s.fail(msgLoadFailed)
		return err
	}

	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return nil
	}
	s.course = course
	s.progress = domain.ComputeProgress(course)
	s.activeModuleID = initialActiveModule(course)
	s.state = StateReady
	s.errMsg = ""
	s.lastTouched = time.Now()
	s.mu.Unlock()

	if err := s.api.RecordActivity(ctx, s.bearer, s.courseID, courseapi.ActivityCourseView); err != nil {
		s.logger.Warn("failed to record course view activity",
			logger.Int64("course_id", s.courseID),
			logger.Error(err))
	}
	return nil
}

// SelectModule sets the active module. Purely local: an id absent from the
// module sequence is a logged no-op and no network call is ever issued.
// Returns whether the selection changed anything.
func (s *CourseSession) SelectModule(moduleID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady || s.course == nil {
		return false
	}
	if s.course.FindModule(moduleID) == nil {
		s.logger.Debug("ignoring selection of unknown module",
			logger.Int64("course_id", s.courseID),
			logger.Int64("module_id", moduleID))
		return false
	}
	s.activeModuleID = moduleID
	s.lastTouched = time.Now()
	return true
}

// MarkModuleComplete runs the mark-complete workflow:
//
//  1. authoritative completion request to the course service
//  2. rejection aborts with no local mutation
//  3. success applies the local mutation and recomputes progress, taking
//     the server's course-completion flag when supplied
//  4. the active module pointer advances to the next module if one exists
//  5. best-effort module_complete activity record
//  6. best-effort completed-courses resync
//  7. one notification bus publish
//
// Steps 5-7 never roll back step 3: the authoritative mutation already
// succeeded server-side.
func (s *CourseSession) MarkModuleComplete(ctx context.Context, moduleID int64) error {
	s.mu.Lock()
	if s.state != StateReady || s.course == nil {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, not ready", state)
	}
	if s.course.FindModule(moduleID) == nil {
		s.mu.Unlock()
		s.logger.Warn("mark-complete for unknown module",
			logger.Int64("course_id", s.courseID),
			logger.Int64("module_id", moduleID))
		return domain.ErrInvalidModule
	}
	s.state = StateMutating
	s.mu.Unlock()

	result, err := s.api.UpdateProgress(ctx, s.bearer, s.courseID, moduleID)

	s.mu.Lock()
	if s.discarded {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		// All-or-nothing: the server refused, so nothing changes locally
		// and the operation stays retryable.
		s.state = StateReady
		s.mu.Unlock()
		s.logger.Error("progress update rejected",
			logger.Int64("course_id", s.courseID),
			logger.Int64("module_id", moduleID),
			logger.Error(err))
		return err
	}

	mod := s.course.FindModule(moduleID)
	if mod != nil {
		mod.Completed = true
	}
	if result != nil && result.CourseCompleted != nil {
		s.course.Completed = *result.CourseCompleted
	} else {
		s.course.Completed = s.course.AllModulesCompleted()
	}

	// The authoritative progress override only described the loaded
	// snapshot; after a local mutation progress derives from the modules.
	s.course.CourseProgress = nil
	s.progress = domain.ComputeProgress(s.course)

	if idx := s.course.ModuleIndex(moduleID); idx >= 0 && idx < len(s.course.Modules)-1 {
		s.activeModuleID = s.course.Modules[idx+1].ID
	}

	s.state = StateReady
	s.lastTouched = time.Now()
	progress := s.progress
	s.mu.Unlock()

	s.logger.Info("module completed",
		logger.Int64("course_id", s.courseID),
		logger.Int64("module_id", moduleID),
		logger.Int("progress", progress))

	if err := s.api.RecordActivity(ctx, s.bearer, s.courseID, courseapi.ActivityModuleComplete); err != nil {
		s.logger.Warn("failed to record module completion activity",
			logger.Int64("course_id", s.courseID),
			logger.Error(err))
	}
	if err := s.api.SyncCompletedCourses(ctx, s.bearer); err != nil {
		s.logger.Warn("failed to resync completed courses",
			logger.Int64("course_id", s.courseID),
			logger.Error(err))
	}
	s.bus.Publish()

	return nil
}

// ToggleBookmark flips the bookmark relation server-side and adopts
// exactly the boolean the server returns, never a locally inferred value.
// On failure local state is untouched.
func (s *CourseSession) ToggleBookmark(ctx context.Context) error {
	s.mu.Lock()
	if s.course == nil {
		s.mu.Unlock()
		return errors.New("no course loaded")
	}
	s.mu.Unlock()

	bookmarked, err := s.api.ToggleBookmark(ctx, s.bearer, s.courseID)
	if err != nil {
		s.logger.Error("bookmark toggle failed",
			logger.Int64("course_id", s.courseID),
			logger.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded || s.course == nil {
		return nil
	}
	s.course.Bookmarked = bookmarked
	s.lastTouched = time.Now()
	return nil
}

// Snapshot returns a deep-copied view of the session.
func (s *CourseSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:          s.state,
		Error:          s.errMsg,
		Course:         s.course.Clone(),
		Progress:       s.progress,
		ActiveModuleID: s.activeModuleID,
	}
}

// Discard marks the session as abandoned (navigation away). In-flight
// requests complete and drop their results silently instead of mutating a
// dead session.
func (s *CourseSession) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded = true
}

// Touch refreshes the idle clock.
func (s *CourseSession) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()
}

// IdleFor reports how long the session has gone without activity.
func (s *CourseSession) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastTouched)
}

// CourseID returns the course this session was opened for.
func (s *CourseSession) CourseID() int64 {
	return s.courseID
}

func (s *CourseSession) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.discarded {
		return
	}
	s.state = StateError
	s.errMsg = msg
}

// initialActiveModule picks the first uncompleted module, falling back to
// the first module when all are completed. Zero when there are no modules.
func initialActiveModule(c *domain.Course) int64 {
	for _, m := range c.Modules {
		if !m.Completed {
			return m.ID
		}
	}
	if len(c.Modules) > 0 {
		return c.Modules[0].ID
	}
	return 0
}

func classifyLoadError(err error) string {
	if errors.Is(err, courseapi.ErrUnauthorized) {
		return msgSessionStale
	}
	return msgLoadFailed
}

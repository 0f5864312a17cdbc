package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

// fakeAPI implements API with scripted responses and call counters.
type fakeAPI struct {
	coursePayload    []byte
	fetchErr         error
	progressResult   *courseapi.ProgressResult
	progressErr      error
	toggleResults    []bool
	toggleErr        error
	bookmarksPayload []byte
	bookmarksErr     error

	fetchCalls    int
	progressCalls int
	toggleCalls   int
	syncCalls     int
	activities    []string
}

func (f *fakeAPI) FetchCourse(ctx context.Context, bearer string, courseID int64) ([]byte, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.coursePayload, nil
}

func (f *fakeAPI) UpdateProgress(ctx context.Context, bearer string, courseID, moduleID int64) (*courseapi.ProgressResult, error) {
	f.progressCalls++
	if f.progressErr != nil {
		return nil, f.progressErr
	}
	return f.progressResult, nil
}

func (f *fakeAPI) ToggleBookmark(ctx context.Context, bearer string, courseID int64) (bool, error) {
	f.toggleCalls++
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	if len(f.toggleResults) == 0 {
		return false, nil
	}
	result := f.toggleResults[0]
	f.toggleResults = f.toggleResults[1:]
	return result, nil
}

func (f *fakeAPI) FetchBookmarks(ctx context.Context, bearer string) ([]byte, error) {
	if f.bookmarksErr != nil {
		return nil, f.bookmarksErr
	}
	return f.bookmarksPayload, nil
}

func (f *fakeAPI) RecordActivity(ctx context.Context, bearer string, courseID int64, activityType string) error {
	f.activities = append(f.activities, activityType)
	return nil
}

func (f *fakeAPI) SyncCompletedCourses(ctx context.Context, bearer string) error {
	f.syncCalls++
	return nil
}

// fourModuleCourse returns a payload with 4 modules, the first completed.
func fourModuleCourse() []byte {
	return []byte(`{
		"id": 1,
		"title": "Dasar Pemrograman",
		"level": "beginner",
		"modules": [
			{"id": 10, "title": "Intro", "completed": true, "order": 1},
			{"id": 11, "title": "Variables", "completed": false, "order": 2},
			{"id": 12, "title": "Control Flow", "completed": false, "order": 3},
			{"id": 13, "title": "Functions", "completed": false, "order": 4}
		]
	}`)
}

func newTestSession(api API) (*CourseSession, *bus.Bus) {
	b := bus.New()
	return New(api, b, logger.NewNop(), "test-token", 1), b
}

func TestLoadSelectsFirstUncompletedModule(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, _ := newTestSession(api)

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	snap := sess.Snapshot()
	if snap.State != StateReady {
		t.Errorf("state = %v, want ready", snap.State)
	}
	if snap.Progress != 25 {
		t.Errorf("progress = %d, want 25", snap.Progress)
	}
	if snap.ActiveModuleID != 11 {
		t.Errorf("active module = %d, want 11 (first uncompleted)", snap.ActiveModuleID)
	}
	if len(api.activities) != 1 || api.activities[0] != courseapi.ActivityCourseView {
		t.Errorf("activities = %v, want one course_view", api.activities)
	}
}

func TestLoadAllModulesCompletedSelectsFirst(t *testing.T) {
	api := &fakeAPI{coursePayload: []byte(`{
		"id": 1,
		"modules": [
			{"id": 10, "completed": true},
			{"id": 11, "completed": true}
		]
	}`)}
	sess, _ := newTestSession(api)

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap := sess.Snapshot(); snap.ActiveModuleID != 10 {
		t.Errorf("active module = %d, want 10", snap.ActiveModuleID)
	}
}

func TestLoadNoModulesShowsNoActiveModule(t *testing.T) {
	api := &fakeAPI{coursePayload: []byte(`{"id": 1, "title": "Kosong"}`)}
	sess, _ := newTestSession(api)

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap := sess.Snapshot()
	if snap.ActiveModuleID != 0 {
		t.Errorf("active module = %d, want 0 (none)", snap.ActiveModuleID)
	}
	if snap.Progress != 0 {
		t.Errorf("progress = %d, want 0", snap.Progress)
	}
}

func TestLoadTransportFailureIsTerminal(t *testing.T) {
	api := &fakeAPI{fetchErr: errors.New("connection refused")}
	sess, _ := newTestSession(api)

	if err := sess.Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want transport error")
	}
	snap := sess.Snapshot()
	if snap.State != StateError {
		t.Errorf("state = %v, want error", snap.State)
	}
	if snap.Error == "" {
		t.Error("no user-displayable message after load failure")
	}
}

func TestLoadUnauthorizedMessage(t *testing.T) {
	api := &fakeAPI{fetchErr: fmt.Errorf("%w: status 401", courseapi.ErrUnauthorized)}
	sess, _ := newTestSession(api)

	_ = sess.Load(context.Background())
	snap := sess.Snapshot()
	if snap.State != StateError {
		t.Errorf("state = %v, want error", snap.State)
	}
	if snap.Error != msgSessionStale {
		t.Errorf("message = %q, want re-authentication message", snap.Error)
	}
}

func TestMarkModuleCompleteSuccess(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, b := newTestSession(api)

	notified := 0
	sub := b.Subscribe(func() { notified++ })
	defer sub.Unsubscribe()

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := sess.MarkModuleComplete(context.Background(), 11); err != nil {
		t.Fatalf("MarkModuleComplete() error = %v", err)
	}

	snap := sess.Snapshot()
	if m := snap.Course.FindModule(11); m == nil || !m.Completed {
		t.Error("module 11 not marked completed")
	}
	if snap.Progress != 50 {
		t.Errorf("progress = %d, want 50", snap.Progress)
	}
	if snap.ActiveModuleID != 12 {
		t.Errorf("active module = %d, want 12 (advanced)", snap.ActiveModuleID)
	}
	if snap.Course.Completed {
		t.Error("course marked completed with modules remaining")
	}
	if notified != 1 {
		t.Errorf("bus publishes = %d, want 1", notified)
	}
	if api.syncCalls != 1 {
		t.Errorf("completed-courses syncs = %d, want 1", api.syncCalls)
	}
	wantActivities := []string{courseapi.ActivityCourseView, courseapi.ActivityModuleComplete}
	if len(api.activities) != 2 || api.activities[1] != wantActivities[1] {
		t.Errorf("activities = %v, want %v", api.activities, wantActivities)
	}
}

func TestMarkModuleCompleteLastModuleKeepsPointer(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := sess.MarkModuleComplete(context.Background(), 13); err != nil {
		t.Fatalf("MarkModuleComplete() error = %v", err)
	}
	if snap := sess.Snapshot(); snap.ActiveModuleID != 13 {
		t.Errorf("active module = %d, want 13 (pointer stays on last)", snap.ActiveModuleID)
	}
}

func TestMarkModuleCompleteUnknownModule(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, b := newTestSession(api)

	notified := 0
	sub := b.Subscribe(func() { notified++ })
	defer sub.Unsubscribe()

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := sess.Snapshot()

	err := sess.MarkModuleComplete(context.Background(), 9999)
	if !errors.Is(err, domain.ErrInvalidModule) {
		t.Fatalf("MarkModuleComplete(9999) error = %v, want ErrInvalidModule", err)
	}

	if api.progressCalls != 0 {
		t.Errorf("progress calls = %d, want 0 (no network for unknown module)", api.progressCalls)
	}
	after := sess.Snapshot()
	if after.Progress != before.Progress || after.ActiveModuleID != before.ActiveModuleID {
		t.Error("state changed after rejected module id")
	}
	if notified != 0 {
		t.Errorf("bus publishes = %d, want 0", notified)
	}
}

func TestMarkModuleCompleteServerRejection(t *testing.T) {
	api := &fakeAPI{
		coursePayload: fourModuleCourse(),
		progressErr:   fmt.Errorf("%w: status 500", courseapi.ErrRejected),
	}
	sess, b := newTestSession(api)

	notified := 0
	sub := b.Subscribe(func() { notified++ })
	defer sub.Unsubscribe()

	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := sess.MarkModuleComplete(context.Background(), 11)
	if !errors.Is(err, courseapi.ErrRejected) {
		t.Fatalf("MarkModuleComplete() error = %v, want ErrRejected", err)
	}

	snap := sess.Snapshot()
	if m := snap.Course.FindModule(11); m.Completed {
		t.Error("module marked completed despite server rejection")
	}
	if snap.Progress != 25 {
		t.Errorf("progress = %d, want unchanged 25", snap.Progress)
	}
	if snap.State != StateReady {
		t.Errorf("state = %v, want ready (operation retryable)", snap.State)
	}
	if notified != 0 {
		t.Errorf("bus publishes = %d, want 0", notified)
	}

	// Retry succeeds once the server accepts.
	api.progressErr = nil
	if err := sess.MarkModuleComplete(context.Background(), 11); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if snap := sess.Snapshot(); snap.Progress != 50 {
		t.Errorf("progress after retry = %d, want 50", snap.Progress)
	}
}

func TestMarkModuleCompleteAdoptsServerCompletionFlag(t *testing.T) {
	completed := true
	api := &fakeAPI{
		coursePayload: []byte(`{
			"id": 1,
			"modules": [
				{"id": 10, "completed": true},
				{"id": 11, "completed": false}
			]
		}`),
		progressResult: &courseapi.ProgressResult{Success: true, CourseCompleted: &completed},
	}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := sess.MarkModuleComplete(context.Background(), 11); err != nil {
		t.Fatalf("MarkModuleComplete() error = %v", err)
	}
	snap := sess.Snapshot()
	if !snap.Course.Completed {
		t.Error("course not completed despite authoritative server flag")
	}
	if snap.Progress != 100 {
		t.Errorf("progress = %d, want 100", snap.Progress)
	}
}

func TestToggleBookmarkTrustsServerBoolean(t *testing.T) {
	api := &fakeAPI{
		coursePayload: fourModuleCourse(),
		toggleResults: []bool{true, false},
	}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := sess.ToggleBookmark(context.Background()); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if snap := sess.Snapshot(); !snap.Course.Bookmarked {
		t.Error("bookmarked = false after server returned true")
	}

	if err := sess.ToggleBookmark(context.Background()); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if snap := sess.Snapshot(); snap.Course.Bookmarked {
		t.Error("bookmarked = true after server returned false")
	}
}

func TestToggleBookmarkFailureLeavesStateUnchanged(t *testing.T) {
	api := &fakeAPI{
		coursePayload: fourModuleCourse(),
		toggleErr:     errors.New("network down"),
	}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := sess.ToggleBookmark(context.Background()); err == nil {
		t.Fatal("ToggleBookmark() error = nil, want failure")
	}
	if snap := sess.Snapshot(); snap.Course.Bookmarked {
		t.Error("bookmarked flipped despite toggle failure")
	}
}

func TestDiscardedSessionDropsInFlightResults(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sess.Discard()
	if err := sess.MarkModuleComplete(context.Background(), 11); err != nil {
		t.Fatalf("MarkModuleComplete() on discarded session error = %v, want silent drop", err)
	}
	if snap := sess.Snapshot(); snap.Course.FindModule(11).Completed {
		t.Error("discarded session mutated by in-flight completion")
	}
}

func TestSelectModule(t *testing.T) {
	api := &fakeAPI{coursePayload: fourModuleCourse()}
	sess, _ := newTestSession(api)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !sess.SelectModule(13) {
		t.Error("SelectModule(13) = false, want true")
	}
	if snap := sess.Snapshot(); snap.ActiveModuleID != 13 {
		t.Errorf("active module = %d, want 13", snap.ActiveModuleID)
	}

	if sess.SelectModule(9999) {
		t.Error("SelectModule(9999) = true, want no-op")
	}
	if snap := sess.Snapshot(); snap.ActiveModuleID != 13 {
		t.Errorf("active module = %d after unknown selection, want 13", snap.ActiveModuleID)
	}
}

package session

import (
	"context"

	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

// API is the slice of the course service that sessions consume. Implemented
// by courseapi.Client; tests substitute a fake.
type API interface {
	FetchCourse(ctx context.Context, bearer string, courseID int64) ([]byte, error)
	UpdateProgress(ctx context.Context, bearer string, courseID, moduleID int64) (*courseapi.ProgressResult, error)
	ToggleBookmark(ctx context.Context, bearer string, courseID int64) (bool, error)
	FetchBookmarks(ctx context.Context, bearer string) ([]byte, error)
	RecordActivity(ctx context.Context, bearer string, courseID int64, activityType string) error
	SyncCompletedCourses(ctx context.Context, bearer string) error
}

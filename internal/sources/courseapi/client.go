package courseapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pelajarin/kelas/internal/logger"
)

// Activity types recorded against the course service.
const (
	ActivityCourseView     = "course_view"
	ActivityModuleComplete = "module_complete"
)

// Client talks to the remote course service. Every call carries the
// learner's bearer credential and suspends until the response arrives or
// the context is done.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// NewClient creates a course service client. baseURL includes the API
// prefix, ex: "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   c,
		logger: log,
	}
}

// FetchCourse retrieves the raw course detail payload. The body is returned
// unparsed; shape tolerance is the mapper's job.
func (c *Client) FetchCourse(ctx context.Context, bearer string, courseID int64) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		Get(fmt.Sprintf("/courses/%d", courseID))
	if err != nil {
		return nil, fmt.Errorf("fetch course %d: %w", courseID, err)
	}
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// UpdateProgress marks a module completed server-side. This is the
// authoritative step of the mark-complete workflow: a rejection here means
// no local mutation may happen.
func (c *Client) UpdateProgress(ctx context.Context, bearer string, courseID, moduleID int64) (*ProgressResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(map[string]any{
			"courseId":  courseID,
			"moduleId":  moduleID,
			"completed": true,
		}).
		Post("/courses/progress")
	if err != nil {
		return nil, fmt.Errorf("update progress for course %d module %d: %w", courseID, moduleID, err)
	}
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	var result ProgressResult
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &result); err != nil {
			// The mutation succeeded server-side; an unreadable body only
			// costs us the authoritative completion flag.
			c.logger.Warn("could not parse progress response",
				logger.Int64("course_id", courseID),
				logger.Error(err))
		}
	}
	return &result, nil
}

// ToggleBookmark flips the bookmark relation and returns the server's
// resulting boolean, which is authoritative.
func (c *Client) ToggleBookmark(ctx context.Context, bearer string, courseID int64) (bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(map[string]any{"courseId": courseID}).
		Post("/bookmarks/toggle")
	if err != nil {
		return false, fmt.Errorf("toggle bookmark for course %d: %w", courseID, err)
	}
	if err := classifyStatus(resp); err != nil {
		return false, err
	}

	var result bookmarkToggleResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return false, fmt.Errorf("parse bookmark toggle response: %w", err)
	}
	return result.Bookmarked, nil
}

// FetchBookmarks retrieves the raw bookmarked-courses payload.
func (c *Client) FetchBookmarks(ctx context.Context, bearer string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		Get("/bookmarks")
	if err != nil {
		return nil, fmt.Errorf("fetch bookmarks: %w", err)
	}
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// RecordActivity emits an activity record. Best-effort: callers log and
// swallow the error.
func (c *Client) RecordActivity(ctx context.Context, bearer string, courseID int64, activityType string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		SetBody(map[string]any{
			"courseId": courseID,
			"type":     activityType,
		}).
		Post("/user/record-activity")
	if err != nil {
		return fmt.Errorf("record %s activity: %w", activityType, err)
	}
	return classifyStatus(resp)
}

// SyncCompletedCourses asks the service to recount the learner's completed
// courses. Best-effort: callers log and swallow the error.
func (c *Client) SyncCompletedCourses(ctx context.Context, bearer string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(bearer).
		Post("/user/sync-completed-courses")
	if err != nil {
		return fmt.Errorf("sync completed courses: %w", err)
	}
	return classifyStatus(resp)
}

// Ping checks upstream reachability for readiness reporting. Any HTTP
// response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("course service unreachable: %w", err)
	}
	return nil
}

func classifyStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized,
		resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode())
	case !resp.IsSuccess():
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode())
	default:
		return nil
	}
}

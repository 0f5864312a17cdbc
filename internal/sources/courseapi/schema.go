package courseapi

import "encoding/json"

// coursePayload mirrors the remote service's course detail response.
//
// The service does not reliably serialize modules as an array (it has been
// observed as an object keyed by module id), so Modules stays raw here and
// the mapper decides how to decode it.
type coursePayload struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Level          string          `json:"level"`
	Duration       string          `json:"duration"`
	Instructor     string          `json:"instructor"`
	VideoURL       string          `json:"videoUrl"`
	Bookmarked     bool            `json:"bookmarked"`
	Enrolled       bool            `json:"enrolled"`
	Completed      bool            `json:"completed"`
	CourseProgress *float64        `json:"courseProgress"`
	Modules        json.RawMessage `json:"modules"`
}

type modulePayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl"`
	Completed   bool   `json:"completed"`
	Order       int    `json:"order"`
}

// bookmarkEnvelope covers the object form of the bookmark list response:
// either a bookmarks wrapper or a no-bookmarks message.
type bookmarkEnvelope struct {
	Bookmarks []coursePayload `json:"bookmarks"`
	Message   string          `json:"message"`
}

// ProgressResult is the response of a progress update. Progress is the
// learner's global percentage across all courses; CourseCompleted is the
// authoritative completion flag for the course that was updated.
type ProgressResult struct {
	Success          bool     `json:"success"`
	Progress         *float64 `json:"progress"`
	CourseCompleted  *bool    `json:"courseCompleted"`
	CompletedCourses *int     `json:"completedCourses"`
	Message          string   `json:"message"`
}

type bookmarkToggleResult struct {
	Bookmarked bool `json:"bookmarked"`
}

package domain

// Course is the canonical shape of one course as seen by a learner.
//
// It is produced by the courseapi mapper from whatever the remote service
// returned and is the only course shape the rest of the gateway consumes.
// Modules is never nil after mapping.
type Course struct {
	// ─────────────────────────────
	// Identity (server-assigned)
	// ─────────────────────────────

	ID int64 `json:"id"`

	// ─────────────────────────────
	// Descriptive attributes
	// ─────────────────────────────

	Title       string `json:"title"`
	Description string `json:"description"`

	// Level is one of beginner, intermediate, advanced.
	Level string `json:"level"`

	// Duration is a free-text label, ex: "3 jam".
	Duration   string `json:"duration"`
	Instructor string `json:"instructor"`

	// VideoURL holds the external video reference. May be a full URL or a
	// bare video id entered by an admin.
	VideoURL string `json:"videoUrl"`

	// ─────────────────────────────
	// Per-learner state
	// ─────────────────────────────

	Bookmarked bool `json:"bookmarked"`
	Enrolled   bool `json:"enrolled"`

	// Completed is true only when every module is completed or the server
	// asserted completion after a progress update.
	Completed bool `json:"completed"`

	// CourseProgress is the server's authoritative progress percentage for
	// the loaded snapshot, when the server supplied one. It overrides the
	// local computation and may reflect factors invisible to the module
	// list (quizzes, assessments).
	CourseProgress *float64 `json:"courseProgress,omitempty"`

	// Modules is the ordered module sequence. Order is the server's.
	Modules []*Module `json:"modules"`
}

// Module is a single learning step within a course.
type Module struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Content is the module body (HTML from the service).
	Content string `json:"content"`

	VideoURL  string `json:"videoUrl,omitempty"`
	Completed bool   `json:"completed"`

	// Order is the server-assigned 1-based position within the course.
	Order int `json:"order,omitempty"`
}

// FindModule returns the module with the given id, or nil.
func (c *Course) FindModule(id int64) *Module {
	for _, m := range c.Modules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// ModuleIndex returns the position of the module with the given id in the
// module sequence, or -1.
func (c *Course) ModuleIndex(id int64) int {
	for i, m := range c.Modules {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// CompletedModules counts completed modules.
func (c *Course) CompletedModules() int {
	n := 0
	for _, m := range c.Modules {
		if m.Completed {
			n++
		}
	}
	return n
}

// AllModulesCompleted reports whether every module is completed. False for
// an empty module sequence.
func (c *Course) AllModulesCompleted() bool {
	if len(c.Modules) == 0 {
		return false
	}
	return c.CompletedModules() == len(c.Modules)
}

// Clone returns a deep copy of the course and its modules.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	if c.CourseProgress != nil {
		p := *c.CourseProgress
		out.CourseProgress = &p
	}
	out.Modules = make([]*Module, len(c.Modules))
	for i, m := range c.Modules {
		mc := *m
		out.Modules[i] = &mc
	}
	return &out
}

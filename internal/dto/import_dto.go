package dto

// ImportOption is one answer option in an import document.
type ImportOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// ImportQuestion is one question with its options.
type ImportQuestion struct {
	Text    string         `json:"text"`
	Options []ImportOption `json:"options"`
}

// ImportLesson is either plain content (video/simulation) or, when Questions
// is non-empty, an assessment definition.
type ImportLesson struct {
	Type       string           `json:"type"`
	Title      string           `json:"title"`
	YoutubeURL string           `json:"youtube_url,omitempty"`
	Questions  []ImportQuestion `json:"questions,omitempty"`
}

// ImportModule groups lessons inside an import document.
type ImportModule struct {
	Title   string         `json:"title"`
	Lessons []ImportLesson `json:"lessons"`
}

// ImportCourse carries the course header fields.
type ImportCourse struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ImportDocument is the bulk-load payload for a whole course tree.
type ImportDocument struct {
	Course  ImportCourse   `json:"course"`
	Modules []ImportModule `json:"modules"`
}

// ImportError locates a single failed item inside the document.
type ImportError struct {
	Where   string `json:"where"`
	Message string `json:"message"`
}

// ImportReport summarizes a bulk load. Partial success is possible: failed
// items are reported here instead of aborting the whole import.
type ImportReport struct {
	CourseID    string        `json:"courseId"`
	Modules     int           `json:"modules"`
	Lessons     int           `json:"lessons"`
	Assessments int           `json:"assessments"`
	Questions   int           `json:"questions"`
	Options     int           `json:"options"`
	Errors      []ImportError `json:"errors"`
}

package dto

// CourseProgressResponse summarizes a learner's completion of one course.
type CourseProgressResponse struct {
	CourseID         string  `json:"course_id"`
	CompletedLessons int     `json:"completed_lessons"`
	TotalLessons     int     `json:"total_lessons"`
	CompletionRate   float64 `json:"completion_rate"`
}

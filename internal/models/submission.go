// internal/models/submission.go
package models

import "time"

// SubmissionStatus defines the lifecycle states of a submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// SubmissionDetails is the free-form payload attached to a submission.
// Quantity carries the reported amount for dynamic tasks (minutes, km).
type SubmissionDetails struct {
	Quantity float64 `json:"quantity,omitempty"`
	Note     string  `json:"note,omitempty"`
}

// Submission is one user's claim against a task.
type Submission struct {
	ID           int64             `json:"id"`
	TaskID       int64             `json:"task_id"`
	UserID       int               `json:"user_id"`
	UserEmail    string            `json:"user_email,omitempty"` // joined for listings
	Evidence     string            `json:"evidence"`             // opaque upload reference
	Details      SubmissionDetails `json:"details"`
	Status       SubmissionStatus  `json:"status"`
	AdminComment string            `json:"admin_comment,omitempty"`
	// Points is set exactly once, at approval time, and immutable afterwards.
	Points    *int      `json:"points,omitempty"`
	Archived  bool      `json:"archived,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionFilter defines the available parameters for listing submissions.
type SubmissionFilter struct {
	UserID          *int
	UserEmail       *string
	TaskID          *int64
	Status          *SubmissionStatus
	IncludeArchived bool
	Page            int
	Limit           int
}

// SubmissionPage is one page of a submission listing.
type SubmissionPage struct {
	Items   []Submission `json:"items"`
	HasMore bool         `json:"has_more"`
}

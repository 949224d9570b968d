package domain

import "time"

// SubmissionStatus tracks the review state of a contributed event.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is a crowd-contributed event waiting for review before it is
// merged into the static dataset at the next deploy.
type Submission struct {
	ID          string           `json:"id"`
	Event       Event            `json:"event"`
	Contributor string           `json:"contributor,omitempty"`
	Status      SubmissionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

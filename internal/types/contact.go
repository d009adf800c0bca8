package types

import "time"

// Contact submission statuses
const (
	ContactStatusPending     = "pending"
	ContactStatusNotified    = "notified"
	ContactStatusEmailFailed = "email_failed"
)

// ContactSubmission is a stored contact form message
type ContactSubmission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`
}

// ContactSubmissionCreate is the payload posted by the contact form
type ContactSubmissionCreate struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

// ContactResponse acknowledges a stored submission
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

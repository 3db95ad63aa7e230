package model

import "time"

// Export is the top-level JSON structure produced by the export subcommand.
// It dumps every append-only log in one document.
type Export struct {
	ExportedAt      time.Time          `json:"exported_at"`
	Enrollments     []SubmissionRecord `json:"enrollments"`
	ContactMessages []SubmissionRecord `json:"contact_messages"`
	EmailSignups    []SubmissionRecord `json:"email_signups"`
	QuizRuns        []QuizResult       `json:"quiz_runs"`
}

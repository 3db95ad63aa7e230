package model

import (
	"context"
	"time"
)

// Flow identifies one complete user-facing interaction with its own
// validation rules and persisted namespace.
type Flow string

const (
	FlowEnrollment    Flow = "enrollment"
	FlowContact       Flow = "contact"
	FlowQuiz          Flow = "quiz"
	FlowResourceEmail Flow = "resource_email"
)

// FlowStatus represents where a flow is in its lifecycle.
type FlowStatus string

const (
	StatusEditing    FlowStatus = "editing"
	StatusSubmitting FlowStatus = "submitting"
	StatusSuccess    FlowStatus = "success"
)

// SubmissionStatus is the status recorded on a submission log entry.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionReceived SubmissionStatus = "received"
)

// SubmissionRecord is one entry in the append-only submission log.
type SubmissionRecord struct {
	ID          string           `json:"id"`
	Flow        Flow             `json:"flow"`
	Values      map[string]any   `json:"values"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// Course is a course offered on the landing page.
type Course struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Duration      string   `json:"duration"`
	Level         string   `json:"level"`
	Price         float64  `json:"price"`
	Features      []string `json:"features"`
	Prerequisites string   `json:"prerequisites"`
	Projects      []string `json:"projects"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	ID          int64    `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// SkillQuiz is a named question set for one quiz type.
type SkillQuiz struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions"`
}

// SkillLevel is a labeled percentage band used to map a quiz score to a
// qualitative level.
type SkillLevel struct {
	Level string `json:"level"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Title string `json:"title"`
}

// SkillLevels are the ordered, non-overlapping score bands.
var SkillLevels = []SkillLevel{
	{Level: "beginner", Min: 0, Max: 40, Title: "Beginner"},
	{Level: "intermediate", Min: 41, Max: 70, Title: "Intermediate"},
	{Level: "advanced", Min: 71, Max: 85, Title: "Advanced"},
	{Level: "expert", Min: 86, Max: 100, Title: "Expert"},
}

// CalculateSkillLevel maps a percentage to its band. Out-of-range scores
// fall back to the bottom band.
func CalculateSkillLevel(percentage int) SkillLevel {
	for _, lvl := range SkillLevels {
		if percentage >= lvl.Min && percentage <= lvl.Max {
			return lvl
		}
	}
	return SkillLevels[0]
}

// QuizResult is the record derived from a completed quiz run.
type QuizResult struct {
	QuizType       string        `json:"quiz_type"`
	Score          int           `json:"score"`
	Percentage     int           `json:"percentage"`
	SkillLevel     string        `json:"skill_level"`
	CorrectAnswers int           `json:"correct_answers"`
	TotalQuestions int           `json:"total_questions"`
	TimeSpent      int           `json:"time_spent"`
	CompletedAt    time.Time     `json:"completed_at"`
	Answers        map[int64]int `json:"answers"`
}

// Resource is a downloadable asset, optionally gated behind an email signup.
type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	SizeKB      int      `json:"size_kb"`
	Premium     bool     `json:"premium"`
	Tags        []string `json:"tags"`
}

// Project is a showcase project displayed on the landing page.
type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
	Engine       string   `json:"engine"`
	Technologies []string `json:"technologies"`
	Features     []string `json:"features"`
	DemoURL      string   `json:"demo_url"`
	GithubURL    string   `json:"github_url"`
	Duration     string   `json:"duration"`
	TeamSize     string   `json:"team_size"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	QuizDuration  int      // countdown seconds per quiz run
	CORSOrigins   []string // allowed origins for the SPA front end
	SecureCookies bool     // Set Secure flag on cookies (disable for local dev)
	SubmitLatency time.Duration
}

type clientIDCtxKey struct{}

// ContextWithClientID stores the client identifier in the request context.
func ContextWithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDCtxKey{}, id)
}

// ClientIDFromContext retrieves the client identifier from context
// (empty string if not set).
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDCtxKey{}).(string)
	return id
}

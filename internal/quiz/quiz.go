// Package quiz implements the timed skill-quiz state machine: a countdown
// over a question set with free navigation, last-write-wins answers, and a
// hard timeout that completes the run with whatever answers exist.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/model"
)

// State is the quiz lifecycle state.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// DefaultDuration is the countdown length in seconds.
const DefaultDuration = 300

var (
	ErrNotInProgress = errors.New("quiz is not in progress")
	ErrUnanswered    = errors.New("all questions must be answered before finishing")
)

// ResultSink persists a completed run. *store.Store satisfies it.
type ResultSink interface {
	SaveQuizResult(namespace string, result model.QuizResult) error
}

// Options tunes a controller. Zero values pick production defaults.
type Options struct {
	Duration int // countdown seconds, DefaultDuration if 0
	Now      func() time.Time
}

// Controller owns one client's run of one quiz type. All methods are safe
// for concurrent use; the countdown goroutine and HTTP handlers share it.
type Controller struct {
	mu sync.Mutex

	quiz        model.SkillQuiz
	progressKey string
	resultKey   string
	drafts      draft.Store
	results     ResultSink
	duration    int
	now         func() time.Time

	state     State
	current   int
	answers   map[int64]int
	remaining int
	result    *model.QuizResult

	stop chan struct{}
}

// New creates a controller for a quiz. progressKey and resultKey are the
// persistence namespaces for the in-flight draft and the latest result.
func New(q model.SkillQuiz, progressKey, resultKey string, drafts draft.Store, results ResultSink, opts Options) *Controller {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		quiz:        q,
		progressKey: progressKey,
		resultKey:   resultKey,
		drafts:      drafts,
		results:     results,
		duration:    opts.Duration,
		now:         opts.Now,
		state:       StateNotStarted,
		answers:     make(map[int64]int),
		remaining:   opts.Duration,
	}
}

// Open restores persisted progress, if any. Called once when the quiz modal
// opens; a missing or unusable draft leaves the controller at NotStarted.
func (c *Controller) Open(ctx context.Context) error {
	rec, err := c.drafts.Load(ctx, c.progressKey)
	if err != nil {
		return fmt.Errorf("load quiz progress: %w", err)
	}
	if rec == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.restoreProgress(rec.FormData)
	return nil
}

// Start begins a fresh run. Restarting from Completed discards all prior
// state; nothing merges across attempts.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateInProgress
	c.current = 0
	c.answers = make(map[int64]int)
	c.remaining = c.duration
	c.result = nil
	c.saveProgress(ctx)
}

// Tick advances the countdown by one second. Reaching zero force-completes
// the run with whatever answers are selected. The production driver is
// RunTicker; tests call Tick directly.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.complete(ctx)
		return
	}
	c.saveProgress(ctx)
}

// RunTicker drives Tick once per second until the run completes, the context
// is cancelled, or Close is called.
func (c *Controller) RunTicker(ctx context.Context) {
	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Tick(ctx)
				c.mu.Lock()
				done := c.state != StateInProgress
				c.mu.Unlock()
				if done {
					return
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close disposes the countdown driver. Must be called when the quiz modal
// closes so no dangling timer mutates state afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// SelectAnswer records a choice for a question. Last write wins; answers are
// not locked after navigating away.
func (c *Controller) SelectAnswer(ctx context.Context, questionID int64, choice int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	q := c.questionByID(questionID)
	if q == nil {
		return fmt.Errorf("unknown question %d", questionID)
	}
	if choice < 0 || choice >= len(q.Options) {
		return fmt.Errorf("choice %d out of range for question %d", choice, questionID)
	}
	c.answers[questionID] = choice
	c.saveProgress(ctx)
	return nil
}

// Next moves to the following question. Navigation is always free.
func (c *Controller) Next(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return
	}
	if c.current < len(c.quiz.Questions)-1 {
		c.current++
		c.saveProgress(ctx)
	}
}

// Previous moves to the prior question.
func (c *Controller) Previous(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return
	}
	if c.current > 0 {
		c.current--
		c.saveProgress(ctx)
	}
}

// Finish completes the run. Unlike the timeout path it requires every
// question to have an answer.
func (c *Controller) Finish(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	for _, q := range c.quiz.Questions {
		if _, ok := c.answers[q.ID]; !ok {
			return ErrUnanswered
		}
	}
	c.complete(ctx)
	return nil
}

// Result returns the derived result once Completed, else nil.
func (c *Controller) Result() *model.QuizResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Snapshot is the controller state rendered for the front end.
type Snapshot struct {
	QuizType        string            `json:"quiz_type"`
	Title           string            `json:"title"`
	State           State             `json:"state"`
	CurrentQuestion int               `json:"current_question"`
	TotalQuestions  int               `json:"total_questions"`
	SelectedAnswers map[int64]int     `json:"selected_answers"`
	TimeRemaining   int               `json:"time_remaining"`
	Result          *model.QuizResult `json:"result,omitempty"`
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	answers := make(map[int64]int, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	return Snapshot{
		QuizType:        c.quiz.Type,
		Title:           c.quiz.Title,
		State:           c.state,
		CurrentQuestion: c.current,
		TotalQuestions:  len(c.quiz.Questions),
		SelectedAnswers: answers,
		TimeRemaining:   c.remaining,
		Result:          c.result,
	}
}

// complete freezes answers, derives and persists the result, and clears the
// progress draft. Caller holds c.mu.
func (c *Controller) complete(ctx context.Context) {
	c.state = StateCompleted
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}

	correct := 0
	for _, q := range c.quiz.Questions {
		if choice, ok := c.answers[q.ID]; ok && choice == q.Correct {
			correct++
		}
	}
	total := len(c.quiz.Questions)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(100 * float64(correct) / float64(total)))
	}

	answers := make(map[int64]int, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	c.result = &model.QuizResult{
		QuizType:       c.quiz.Type,
		Score:          correct,
		Percentage:     percentage,
		SkillLevel:     model.CalculateSkillLevel(percentage).Level,
		CorrectAnswers: correct,
		TotalQuestions: total,
		TimeSpent:      c.duration - c.remaining,
		CompletedAt:    c.now(),
		Answers:        answers,
	}

	if err := c.results.SaveQuizResult(c.resultKey, *c.result); err != nil {
		slog.Error("persist quiz result", "namespace", c.resultKey, "error", err)
	}
	if err := c.drafts.Clear(ctx, c.progressKey); err != nil {
		slog.Error("clear quiz progress", "namespace", c.progressKey, "error", err)
	}
}

// saveProgress writes the in-flight draft. Caller holds c.mu.
func (c *Controller) saveProgress(ctx context.Context) {
	answers := make(map[string]any, len(c.answers))
	for id, choice := range c.answers {
		answers[fmt.Sprint(id)] = choice
	}
	rec := draft.NewRecord(map[string]any{
		"current":   c.current,
		"remaining": c.remaining,
		"answers":   answers,
		"started":   c.state == StateInProgress,
	}, c.current)
	if err := c.drafts.Save(ctx, c.progressKey, rec); err != nil {
		slog.Error("save quiz progress", "namespace", c.progressKey, "error", err)
	}
}

// restoreProgress replays a persisted draft. Caller holds c.mu. Values come
// back from JSON as float64/map[string]any; anything malformed is skipped.
func (c *Controller) restoreProgress(data map[string]any) {
	if started, _ := data["started"].(bool); !started {
		return
	}
	c.state = StateInProgress
	if v, ok := asInt(data["current"]); ok && v >= 0 && v < len(c.quiz.Questions) {
		c.current = v
	}
	if v, ok := asInt(data["remaining"]); ok && v >= 0 && v <= c.duration {
		c.remaining = v
	}
	if m, ok := data["answers"].(map[string]any); ok {
		for key, raw := range m {
			var id int64
			if _, err := fmt.Sscanf(key, "%d", &id); err != nil {
				continue
			}
			choice, ok := asInt(raw)
			if !ok {
				continue
			}
			q := c.questionByID(id)
			if q == nil || choice < 0 || choice >= len(q.Options) {
				continue
			}
			c.answers[id] = choice
		}
	}
}

func (c *Controller) questionByID(id int64) *model.QuizQuestion {
	for i := range c.quiz.Questions {
		if c.quiz.Questions[i].ID == id {
			return &c.quiz.Questions[i]
		}
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

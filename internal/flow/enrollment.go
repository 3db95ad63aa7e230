package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/form"
	"github.com/gamedev-academy/academy/internal/model"
)

// Enrollment steps, in order.
const (
	StepPersonalInfo    = 1
	StepCourseSelection = 2
	StepPayment         = 3
)

// stepFields is the static field ownership per step. Next gates on the
// current step's set; Submit gates on the whole rule set.
var stepFields = map[int][]string{
	StepPersonalInfo:    {"fullName", "email", "phone", "experience"},
	StepCourseSelection: {"selectedCourse", "startDate", "learningGoals"},
	StepPayment:         {"paymentMethod", "agreement"},
}

func enrollmentRules() form.RuleSet {
	return form.RuleSet{
		"fullName": {Required: true, MinLength: 2, RequiredMessage: "Full name is required"},
		"email":    {Required: true, Email: true, RequiredMessage: "Email is required"},
		"phone":    {Required: true, Phone: true, RequiredMessage: "Phone number is required"},
		"experience": {
			Required:        true,
			RequiredMessage: "Please select your experience level",
		},
		"selectedCourse": {Required: true, RequiredMessage: "Please select a course"},
		"startDate":      {Required: true, RequiredMessage: "Please select a start date"},
		"learningGoals": {
			Required:         true,
			MinLength:        10,
			RequiredMessage:  "Please describe your learning goals",
			MinLengthMessage: "Please provide more detail about your goals",
		},
		"paymentMethod": {Required: true, RequiredMessage: "Please select a payment method"},
		"agreement": {
			Required:        true,
			RequiredMessage: "You must agree to the terms and conditions",
		},
	}
}

func enrollmentInitial(preSelectedCourse string) form.Values {
	return form.Values{
		"fullName":       "",
		"email":          "",
		"phone":          "",
		"experience":     "",
		"selectedCourse": preSelectedCourse,
		"startDate":      "",
		"learningGoals":  "",
		"paymentMethod":  "",
		"agreement":      false,
	}
}

// Enrollment is the three-step course enrollment flow for one client.
type Enrollment struct {
	mu sync.Mutex

	form      *form.Form
	step      int
	status    model.FlowStatus
	namespace string
	drafts    draft.Store
	log       SubmissionLog
	submitter Submitter
}

// NewEnrollment creates the flow at step 1. preSelectedCourse pre-fills the
// course field when the modal was opened from a course card.
func NewEnrollment(namespace, preSelectedCourse string, drafts draft.Store, log SubmissionLog, submitter Submitter) *Enrollment {
	return &Enrollment{
		form:      form.New(enrollmentInitial(preSelectedCourse), enrollmentRules()),
		step:      StepPersonalInfo,
		status:    model.StatusEditing,
		namespace: namespace,
		drafts:    drafts,
		log:       log,
		submitter: submitter,
	}
}

// Open restores a saved draft, replaying values without marking fields
// touched so a resumed draft doesn't open covered in errors.
func (e *Enrollment) Open(ctx context.Context) error {
	rec, err := e.drafts.Load(ctx, e.namespace)
	if err != nil {
		return fmt.Errorf("load enrollment draft: %w", err)
	}
	if rec == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for name, value := range rec.FormData {
		e.form.SetValue(name, value)
	}
	if rec.FlowStep >= StepPersonalInfo && rec.FlowStep <= StepPayment {
		e.step = rec.FlowStep
	}
	return nil
}

// Change updates a field and writes the draft through.
func (e *Enrollment) Change(ctx context.Context, name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == model.StatusSuccess {
		return
	}
	e.form.HandleChange(name, value)
	e.saveDraft(ctx)
}

// Blur marks a field touched and validates it.
func (e *Enrollment) Blur(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == model.StatusSuccess {
		return
	}
	e.form.HandleBlur(name)
}

// Next advances to the following step if every field the current step owns
// is present and error-free. Untouched fields are blur-validated first, so
// a failed advance leaves their errors visible. Reports whether it advanced.
func (e *Enrollment) Next(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != model.StatusEditing || e.step >= StepPayment {
		return false
	}

	valid := true
	for _, name := range stepFields[e.step] {
		if !e.form.TouchedField(name) {
			e.form.HandleBlur(name)
		}
		if !e.form.FieldValid(name) {
			valid = false
		}
	}
	if !valid {
		return false
	}

	e.step++
	e.saveDraft(ctx)
	return true
}

// Previous steps back unconditionally, floored at step 1.
func (e *Enrollment) Previous(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != model.StatusEditing {
		return
	}
	if e.step > StepPersonalInfo {
		e.step--
		e.saveDraft(ctx)
	}
}

// Submit runs the full pipeline: validate the entire rule set (all steps,
// not just the last), call the remote, and on success append a submission
// record and clear the draft. On failure every entered value and the draft
// survive for retry.
func (e *Enrollment) Submit(ctx context.Context) (*model.SubmissionRecord, error) {
	e.mu.Lock()
	if e.status == model.StatusSubmitting {
		e.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if e.status == model.StatusSuccess || e.step != StepPayment {
		e.mu.Unlock()
		return nil, ErrWrongStep
	}
	if !e.form.ValidateAll() {
		e.mu.Unlock()
		return nil, ErrValidation
	}
	e.status = model.StatusSubmitting
	values := e.form.Values()
	e.mu.Unlock()

	err := e.submitter.Submit(ctx, model.FlowEnrollment, values)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.status = model.StatusEditing
		return nil, fmt.Errorf("submit enrollment: %w", err)
	}

	rec := model.SubmissionRecord{
		ID:          "ENR-" + uuid.NewString(),
		Flow:        model.FlowEnrollment,
		Values:      values,
		Status:      model.SubmissionPending,
		SubmittedAt: time.Now().UTC(),
	}
	if logErr := e.log.AppendSubmission(rec); logErr != nil {
		e.status = model.StatusEditing
		return nil, fmt.Errorf("record enrollment: %w", logErr)
	}

	e.status = model.StatusSuccess
	if clearErr := e.drafts.Clear(ctx, e.namespace); clearErr != nil {
		slog.Error("clear enrollment draft", "namespace", e.namespace, "error", clearErr)
	}
	slog.Info("enrollment submitted", "id", rec.ID)
	return &rec, nil
}

// Reset returns the flow to a blank step 1. Used after a successful
// submission is acknowledged.
func (e *Enrollment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form.Reset()
	e.step = StepPersonalInfo
	e.status = model.StatusEditing
}

// Snapshot is the flow state rendered for the front end.
type Snapshot struct {
	Step    int              `json:"step,omitempty"`
	Status  model.FlowStatus `json:"status"`
	Values  form.Values      `json:"values"`
	Errors  form.Errors      `json:"errors"`
	Touched form.Touched     `json:"touched"`
}

// Snapshot returns a copy of the current flow state.
func (e *Enrollment) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Step:    e.step,
		Status:  e.status,
		Values:  e.form.Values(),
		Errors:  e.form.Errors(),
		Touched: e.form.Touched(),
	}
}

// saveDraft writes the current values and step through to the draft store.
// Caller holds e.mu.
func (e *Enrollment) saveDraft(ctx context.Context) {
	if e.status == model.StatusSuccess {
		return
	}
	rec := draft.NewRecord(e.form.Values(), e.step)
	if err := e.drafts.Save(ctx, e.namespace, rec); err != nil {
		slog.Error("save enrollment draft", "namespace", e.namespace, "error", err)
	}
}

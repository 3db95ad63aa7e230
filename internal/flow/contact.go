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

func contactRules() form.RuleSet {
	return form.RuleSet{
		"name": {
			Required:         true,
			MinLength:        2,
			RequiredMessage:  "Name is required",
			MinLengthMessage: "Name must be at least 2 characters",
		},
		"email": {Required: true, Email: true, RequiredMessage: "Email is required"},
		"phone": {Phone: true},
		"inquiryType": {
			Required:        true,
			RequiredMessage: "Please select an inquiry type",
		},
		"subject": {
			Required:         true,
			MinLength:        5,
			RequiredMessage:  "Subject is required",
			MinLengthMessage: "Subject must be at least 5 characters",
		},
		"message": {
			Required:         true,
			MinLength:        20,
			MaxLength:        1000,
			RequiredMessage:  "Message is required",
			MinLengthMessage: "Message must be at least 20 characters",
			MaxLengthMessage: "Message must not exceed 1000 characters",
		},
		"urgency": {Required: true, RequiredMessage: "Please select urgency level"},
	}
}

func contactInitial(inquiryType string) form.Values {
	if inquiryType == "" {
		inquiryType = "general"
	}
	return form.Values{
		"name":           "",
		"email":          "",
		"phone":          "",
		"inquiryType":    inquiryType,
		"subject":        "",
		"message":        "",
		"urgency":        "normal",
		"allowMarketing": false,
	}
}

// Contact is the single-step contact form flow for one client. Same
// pipeline as enrollment without the step machinery.
type Contact struct {
	mu sync.Mutex

	form      *form.Form
	status    model.FlowStatus
	namespace string
	drafts    draft.Store
	log       SubmissionLog
	submitter Submitter
}

// NewContact creates the flow, optionally pre-selecting an inquiry type.
func NewContact(namespace, inquiryType string, drafts draft.Store, log SubmissionLog, submitter Submitter) *Contact {
	return &Contact{
		form:      form.New(contactInitial(inquiryType), contactRules()),
		status:    model.StatusEditing,
		namespace: namespace,
		drafts:    drafts,
		log:       log,
		submitter: submitter,
	}
}

// Open restores a saved draft.
func (c *Contact) Open(ctx context.Context) error {
	rec, err := c.drafts.Load(ctx, c.namespace)
	if err != nil {
		return fmt.Errorf("load contact draft: %w", err)
	}
	if rec == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, value := range rec.FormData {
		c.form.SetValue(name, value)
	}
	return nil
}

// Change updates a field and writes the draft through.
func (c *Contact) Change(ctx context.Context, name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.StatusSuccess {
		return
	}
	c.form.HandleChange(name, value)
	rec := draft.NewRecord(c.form.Values(), 0)
	if err := c.drafts.Save(ctx, c.namespace, rec); err != nil {
		slog.Error("save contact draft", "namespace", c.namespace, "error", err)
	}
}

// Blur marks a field touched and validates it.
func (c *Contact) Blur(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.StatusSuccess {
		return
	}
	c.form.HandleBlur(name)
}

// Submit validates everything and runs the pipeline. Failure keeps all
// values and the draft; success appends to the log and clears the draft.
func (c *Contact) Submit(ctx context.Context) (*model.SubmissionRecord, error) {
	c.mu.Lock()
	if c.status == model.StatusSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if c.status == model.StatusSuccess {
		c.mu.Unlock()
		return nil, ErrWrongStep
	}
	if !c.form.ValidateAll() {
		c.mu.Unlock()
		return nil, ErrValidation
	}
	c.status = model.StatusSubmitting
	values := c.form.Values()
	c.mu.Unlock()

	err := c.submitter.Submit(ctx, model.FlowContact, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = model.StatusEditing
		return nil, fmt.Errorf("submit contact form: %w", err)
	}

	rec := model.SubmissionRecord{
		ID:          "CONTACT-" + uuid.NewString(),
		Flow:        model.FlowContact,
		Values:      values,
		Status:      model.SubmissionReceived,
		SubmittedAt: time.Now().UTC(),
	}
	if logErr := c.log.AppendSubmission(rec); logErr != nil {
		c.status = model.StatusEditing
		return nil, fmt.Errorf("record contact submission: %w", logErr)
	}

	c.status = model.StatusSuccess
	if clearErr := c.drafts.Clear(ctx, c.namespace); clearErr != nil {
		slog.Error("clear contact draft", "namespace", c.namespace, "error", clearErr)
	}
	slog.Info("contact form submitted", "id", rec.ID, "inquiry_type", values["inquiryType"])
	return &rec, nil
}

// Reset returns the flow to a blank form.
func (c *Contact) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Reset()
	c.status = model.StatusEditing
}

// Snapshot returns a copy of the current flow state.
func (c *Contact) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Status:  c.status,
		Values:  c.form.Values(),
		Errors:  c.form.Errors(),
		Touched: c.form.Touched(),
	}
}

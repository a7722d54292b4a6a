// Package mutation implements the create/update modal: local validation, a single
// in-flight submit, status-aware response handling and the slot-conflict suggestions.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

var (
	// ErrNotOpen is returned when acting on a closed flow
	ErrNotOpen = errors.New("form is not open")
	// ErrNoSuggestion is returned when picking a slot that is not offered
	ErrNoSuggestion = errors.New("no such suggested slot")
)

// Policy says what happens to the list after a successful mutation
type Policy int

const (
	// PolicyReload re-fetches the whole list
	PolicyReload Policy = iota
	// PolicyPatchInPlace rewrites only the changed item
	PolicyPatchInPlace
)

func (p Policy) String() string {
	if p == PolicyPatchInPlace {
		return "patch-in-place"
	}
	return "reload"
}

// Outcome is how a submit ended
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeConflict is a 409 with suggestions; the form stays open
	OutcomeConflict
	// OutcomeFailed is any other error; the form stays open for a retry
	OutcomeFailed
	// OutcomeInvalid means local validation blocked the request
	OutcomeInvalid
	// OutcomeBusy means a submit was already in flight
	OutcomeBusy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFailed:
		return "failed"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBusy:
		return "busy"
	}
	return "unknown"
}

// FieldError is a local validation failure
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Config wires a flow to its form type F and response type R
type Config[F, R any] struct {
	// Name identifies the mutation in logs and audit entries
	Name   string
	Policy Policy
	// Fallback is shown when an error carries no message
	Fallback string
	Validate func(F) *FieldError
	Submit   func(ctx context.Context, form F) (R, error)
	// Apply reloads or patches the list after success
	Apply func(ctx context.Context, result R, form F) error
	// ApplySlot writes a suggested date and HH:MM time into the form
	ApplySlot func(form F, date, clock string) F
}

// Flow is the state of one modal form
type Flow[F, R any] struct {
	cfg    Config[F, R]
	logger *zap.Logger

	mu          sync.Mutex
	open        bool
	form        F
	submitting  bool
	message     string
	fieldErr    *FieldError
	suggestions Suggestions
}

// NewFlow creates a closed flow
func NewFlow[F, R any](cfg Config[F, R], logger *zap.Logger) *Flow[F, R] {
	return &Flow[F, R]{cfg: cfg, logger: logger}
}

// Name returns the mutation name
func (f *Flow[F, R]) Name() string {
	return f.cfg.Name
}

// Policy returns the success policy
func (f *Flow[F, R]) Policy() Policy {
	return f.cfg.Policy
}

// Open shows the form with initial values and clears transient state
func (f *Flow[F, R]) Open(initial F) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	f.form = initial
	f.message = ""
	f.fieldErr = nil
	f.suggestions = Suggestions{}
}

// Close dismisses the form. It refuses while a submit is in flight.
func (f *Flow[F, R]) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return false
	}
	f.open = false
	return true
}

// IsOpen reports whether the form is shown
func (f *Flow[F, R]) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Submitting reports whether a request is in flight
func (f *Flow[F, R]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Form returns the current form values
func (f *Flow[F, R]) Form() F {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Edit changes the form values. Edits are ignored while submitting.
func (f *Flow[F, R]) Edit(fn func(F) F) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open || f.submitting {
		return false
	}
	f.form = fn(f.form)
	return true
}

// Message returns the form-level error, or ""
func (f *Flow[F, R]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// FieldError returns the last validation failure
func (f *Flow[F, R]) FieldError() *FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErr
}

// Suggestions returns the slots offered after a conflict
func (f *Flow[F, R]) Suggestions() Suggestions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestions
}

// Submit validates locally, sends the request and routes the response. The returned
// error is non-nil only when Apply fails after a successful mutation.
func (f *Flow[F, R]) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return OutcomeFailed, ErrNotOpen
	}
	if f.submitting {
		f.mu.Unlock()
		return OutcomeBusy, nil
	}

	f.message = ""
	f.fieldErr = nil
	f.suggestions = Suggestions{}
	form := f.form

	if f.cfg.Validate != nil {
		if fe := f.cfg.Validate(form); fe != nil {
			f.fieldErr = fe
			f.message = fe.Message
			f.mu.Unlock()
			return OutcomeInvalid, nil
		}
	}

	f.submitting = true
	f.mu.Unlock()

	result, err := f.cfg.Submit(ctx, form)

	f.mu.Lock()
	f.submitting = false

	if err != nil {
		var conflict *apiclient.ConflictError
		if errors.As(err, &conflict) {
			f.message = apiclient.Describe(conflict, f.cfg.Fallback)
			f.suggestions = NewSuggestions(conflict.SuggestedSlots)
			f.mu.Unlock()
			f.logger.Info("mutation hit a slot conflict",
				zap.String("mutation", f.cfg.Name),
				zap.Int("suggestions", len(conflict.SuggestedSlots)),
			)
			return OutcomeConflict, nil
		}

		f.message = apiclient.Describe(err, f.cfg.Fallback)
		f.mu.Unlock()
		f.logger.Error("mutation failed",
			zap.String("mutation", f.cfg.Name),
			zap.Error(err),
		)
		return OutcomeFailed, nil
	}

	f.open = false
	f.message = ""
	f.mu.Unlock()

	if f.cfg.Apply != nil {
		if err := f.cfg.Apply(ctx, result, form); err != nil {
			return OutcomeSuccess, fmt.Errorf("failed to refresh after %s: %w", f.cfg.Name, err)
		}
	}
	return OutcomeSuccess, nil
}

// Pick writes the i-th offered slot into the form: its date and its start time cut to
// HH:MM. The conflict message is cleared; nothing is resubmitted.
func (f *Flow[F, R]) Pick(i int) (model.SuggestedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.open {
		return model.SuggestedSlot{}, ErrNotOpen
	}
	slot, ok := f.suggestions.At(i)
	if !ok || f.cfg.ApplySlot == nil {
		return model.SuggestedSlot{}, ErrNoSuggestion
	}

	f.form = f.cfg.ApplySlot(f.form, slot.Date, normalize.ClockHM(slot.StartTime))
	f.message = ""
	f.fieldErr = nil
	return slot, nil
}

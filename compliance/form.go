/*
form.go - Per-form submission state machine

PURPOSE:
  Tracks one entry/edit form instance through
  Editing -> Validating -> Submitting -> Success | Failed.
  Mutations re-run Evaluate synchronously; submit attempts either yield an
  Acceptance for the caller to persist, or fall back to Editing with the
  errors attached. Persistence outcomes are reported back via Complete.

  The Form itself performs no I/O; the campaign package's SubmissionService
  owns upload and persistence.
*/
package compliance

import "errors"

type FormState string

const (
	StateEditing    FormState = "editing"
	StateValidating FormState = "validating"
	StateSubmitting FormState = "submitting"
	StateSuccess    FormState = "success"
	StateFailed     FormState = "failed"
)

// ErrFormBusy is returned when a mutation or submit arrives while a
// previous submission is still in flight.
var ErrFormBusy = errors.New("form is submitting")

// Form is one live form instance. Not safe for concurrent use; a form
// belongs to a single user session.
type Form struct {
	Draft   OperationDraft
	Context CampaignContext

	state FormState
	eval  Evaluation
}

// NewForm starts a form in Editing, empty for creation or pre-populated
// from a persisted operation for edits.
func NewForm(draft OperationDraft, ctx CampaignContext) *Form {
	f := &Form{Draft: draft, Context: ctx, state: StateEditing}
	f.eval = Evaluate(f.Draft, f.Context)
	return f
}

func (f *Form) State() FormState      { return f.state }
func (f *Form) Evaluation() Evaluation { return f.eval }

// SubmitDisabled mirrors the UI affordance: the submit control is disabled
// whenever a blocking error holds, notably the cash-donation hard block,
// even before submit is attempted.
func (f *Form) SubmitDisabled() bool { return f.eval.SubmitBlocked() }

// Update applies a field mutation and recomputes the evaluation.
func (f *Form) Update(mutate func(*OperationDraft)) (Evaluation, error) {
	if f.state == StateSubmitting {
		return f.eval, ErrFormBusy
	}
	f.state = StateEditing
	mutate(&f.Draft)
	f.eval = Evaluate(f.Draft, f.Context)
	return f.eval, nil
}

// Submit attempts acceptance. On validation failure the form returns to
// Editing with errors shown; on success it enters Submitting and the
// caller must persist the records then call Complete.
func (f *Form) Submit() (*Acceptance, error) {
	if f.state == StateSubmitting {
		return nil, ErrFormBusy
	}

	f.state = StateValidating
	acc, err := Accept(f.Draft, f.Context)
	if err != nil {
		f.state = StateEditing
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			f.eval.Errors = rejected.Errors
		}
		return nil, err
	}

	f.state = StateSubmitting
	return acc, nil
}

// Complete reports the persistence outcome. A nil error clears the draft
// (Success); a non-nil error returns to Editing with the field values
// preserved so the user can retry without re-entering data.
func (f *Form) Complete(err error) {
	if f.state != StateSubmitting {
		return
	}
	if err != nil {
		f.state = StateFailed
		// Failed is transient: the next Update resumes Editing with the
		// draft intact.
		return
	}
	f.state = StateSuccess
	f.Draft = OperationDraft{Kind: f.Draft.Kind}
	f.eval = Evaluate(f.Draft, f.Context)
}

/*
engine.go - Evaluate and Accept

PURPOSE:
  The two entry points shared by every call site (standalone creation
  forms and the admin edit modal):

  Evaluate: run on every field change. Returns the collected field errors,
            the advisory warnings and the derived section booleans.

  Accept:   run on submit. Either returns the finalized record(s) - one
            record, or the mirrored pair for party direct payments - or a
            RejectedError carrying the full field error map.

  Both are pure: no I/O, no shared state, cheap enough to re-run
  synchronously per keystroke.
*/
package compliance

import (
	"fmt"
	"strings"
)

// =============================================================================
// EVALUATION - Per-change output
// =============================================================================

// Evaluation bundles everything a form needs after a field change.
type Evaluation struct {
	Errors   Errors
	Warnings Warnings
	Sections Sections
}

// SubmitBlocked reports whether the submit control must be disabled
// proactively. The cash-donation hard block disables submission even
// before a submit attempt.
func (e Evaluation) SubmitBlocked() bool {
	return len(e.Errors) > 0
}

// Evaluate recomputes errors, warnings and sections for the draft.
func Evaluate(d OperationDraft, ctx CampaignContext) Evaluation {
	return Evaluation{
		Errors:   Validate(d, ctx),
		Warnings: WarningsFor(d),
		Sections: SectionsFor(d),
	}
}

// =============================================================================
// ACCEPTANCE - Submit-time output
// =============================================================================

// Acceptance is the result of a successful submit: one finalized record,
// or exactly two for party direct payments (receipt first, then expense).
type Acceptance struct {
	Records  []Record
	Warnings Warnings
}

// Accept validates the draft and, when clean, finalizes it. The returned
// error is *RejectedError on validation failure, or wraps
// ErrUnknownCategory on an internal catalog inconsistency.
func Accept(d OperationDraft, ctx CampaignContext) (*Acceptance, error) {
	errs := Validate(d, ctx)
	if len(errs) > 0 {
		return nil, &RejectedError{Errors: errs}
	}

	warnings := WarningsFor(d)

	if d.Category == CatPartyDirectPayment {
		records, err := MirrorPair(d)
		if err != nil {
			return nil, err
		}
		return &Acceptance{Records: records, Warnings: warnings}, nil
	}

	record, err := finalize(d)
	if err != nil {
		return nil, err
	}
	return &Acceptance{Records: []Record{record}, Warnings: warnings}, nil
}

// finalize builds the single finalized record for an ordinary draft.
func finalize(d OperationDraft) (Record, error) {
	amount, ok := d.ParsedAmount()
	if !ok {
		return Record{}, fmt.Errorf("finalize on unvalidated draft: bad amount %q", d.Amount)
	}

	code, ok := AccountCode(d.Kind, d.Category)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, d.Kind, d.Category)
	}

	r := Record{
		Kind:         d.Kind,
		Date:         d.Date,
		Amount:       amount,
		Category:     d.Category,
		AccountCode:  code,
		PaymentMode:  d.PaymentMode,
		Beneficiary:  strings.TrimSpace(d.Beneficiary),
		IsCollection: d.IsCollection,
		Attachment:   d.Attachment,
		Comment:      d.Comment,
		Status:       StatusPending,
	}

	if ref := strings.TrimSpace(d.BankStatementRef); ref != "" {
		r.BankStatementRef = &ref
	}

	switch d.Category {
	case CatDonation:
		if d.IsCollection {
			r.Collection = d.Collection
		} else {
			r.Donor = d.Donor
		}
	case CatPartyTransfer:
		party := normalizeParty(d.Party)
		r.Party = &party
	}

	return r, nil
}

// normalizeParty uppercases the RNA prefix on acceptance; validation
// accepted it case-insensitively.
func normalizeParty(p *Party) Party {
	if p == nil {
		return Party{}
	}
	out := *p
	out.RNA = strings.ToUpper(strings.TrimSpace(out.RNA))
	return out
}

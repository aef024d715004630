/*
errors.go - Error taxonomy for the compliance engine

PURPOSE:
  Field validation errors are data, not Go errors: they travel as the
  Errors map so the full set reaches the form. Go errors are reserved for
  faults that should never occur on a validated draft (catalog misses)
  and for the rejection wrapper returned by Accept.

ERROR CATEGORIES:
  1. Field errors   - Errors map, block submission, shown inline
  2. Engine faults  - ErrUnknownCategory (internal consistency)
  3. Rejection      - RejectedError wraps the Errors map for callers that
                      prefer error-shaped control flow

SEE ALSO:
  - rules.go: Produces the Errors map
  - campaign/store.go: Persistence-side sentinel errors
*/
package compliance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownCategory is returned when a category resolves to no catalog
	// entry for its kind. Must never happen for a draft that passed
	// validation; treat as an internal-consistency fault.
	ErrUnknownCategory = errors.New("category not in catalog for kind")

	// ErrDraftRejected is the sentinel wrapped by RejectedError.
	ErrDraftRejected = errors.New("draft rejected by validation")
)

// =============================================================================
// FIELD - Names the offending form field
// =============================================================================

type Field string

const (
	FieldDate             Field = "date"
	FieldAmount           Field = "amount"
	FieldCategory         Field = "category"
	FieldPaymentMode      Field = "payment_mode"
	FieldBankStatementRef Field = "bank_statement_ref"
	FieldBeneficiary      Field = "beneficiary"
	FieldAttachment       Field = "attachment"

	FieldDonorLastName    Field = "donor_last_name"
	FieldDonorFirstName   Field = "donor_first_name"
	FieldDonorNationality Field = "donor_nationality"
	FieldDonorAddress     Field = "donor_address"
	FieldDonorPostalCode  Field = "donor_postal_code"
	FieldDonorCity        Field = "donor_city"
	FieldDonorCountry     Field = "donor_country"
	FieldDonorReceiptNo   Field = "donor_receipt_number"

	FieldCollectionDate Field = "collection_date"
	FieldCollectionOrg  Field = "collection_organization"

	FieldPartyName       Field = "party_name"
	FieldPartyAddress    Field = "party_address"
	FieldPartyPostalCode Field = "party_postal_code"
	FieldPartyCity       Field = "party_city"
	FieldPartySIRET      Field = "party_siret"
	FieldPartyRNA        Field = "party_rna"

	FieldAssociatedExpenseCategory Field = "associated_expense_category"
)

// Errors maps offending fields to messages. Empty map means the draft is
// acceptable for submission.
type Errors map[Field]string

func (e Errors) add(f Field, msg string) { e[f] = msg }

// Fields returns the offending field names in stable order.
func (e Errors) Fields() []Field {
	fields := make([]Field, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// =============================================================================
// REJECTED ERROR - Accept's error-shaped rejection
// =============================================================================

// RejectedError carries the full field error map for callers surfacing
// rejection through Go error handling.
type RejectedError struct {
	Errors Errors
}

func (e *RejectedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Errors[f]))
	}
	return "draft rejected: " + strings.Join(parts, "; ")
}

func (e *RejectedError) Unwrap() error { return ErrDraftRejected }

/*
Package compliance implements the campaign-finance compliance rules engine.

PURPOSE:
  This package contains the decision logic applied to every financial
  operation (expense or receipt) recorded against an electoral campaign
  before it is accepted: which fields are required, which regulatory
  thresholds trigger warnings or hard blocks, how the accounting code is
  derived, and, for party-paid expenses, how the mirrored zero-net
  operation pair is built.

KEY CONCEPTS IN THIS FILE (types.go):
  - OperationDraft: The mutable form input evaluated by the engine
  - Kind: Expense vs Receipt (disjoint category spaces)
  - Donor/Collection/Party: Category-specific sub-records
  - CampaignContext: Date bounds and existing-attachment flag

DESIGN PRINCIPLES:
  1. Purity: Evaluate and Accept perform no I/O and hold no state
  2. Precision: decimal.Decimal everywhere; thresholds compare exact cents
  3. Single source: creation forms and the admin edit modal call the SAME
     engine, so the two paths cannot diverge in accepted input
  4. Collected errors: every applicable rule reports; no short-circuit

USAGE:
  draft := compliance.OperationDraft{Kind: compliance.Receipt, ...}
  eval := compliance.Evaluate(draft, ctx)
  if len(eval.Errors) == 0 {
      acc, _ := compliance.Accept(draft, ctx)
      // acc.Records holds one record, or two for party-paid expenses
  }

SEE ALSO:
  - catalog.go: Category catalogs and account-code derivation
  - rules.go: Field requirement and error rules
  - warnings.go: Regulatory threshold advisories
  - mirror.go: Zero-net pair derivation
*/
package compliance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// OPERATION KIND - Expense vs Receipt
// =============================================================================

type Kind string

const (
	Expense Kind = "expense"
	Receipt Kind = "receipt"
)

// =============================================================================
// PAYMENT MODE
// =============================================================================

type PaymentMode string

const (
	PayCash        PaymentMode = "cash"
	PayCheck       PaymentMode = "check"
	PayWire        PaymentMode = "wire"
	PayCard        PaymentMode = "card"
	PayDirectDebit PaymentMode = "direct_debit"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PayCash, PayCheck, PayWire, PayCard, PayDirectDebit:
		return true
	}
	return false
}

// =============================================================================
// SUB-RECORDS - Populated per category
// =============================================================================

type Nationality string

const (
	NationalityFrench Nationality = "french"
	NationalityEU     Nationality = "eu_member"
	NationalityOther  Nationality = "other"
)

// Donor identifies an individual donor. Required for non-collection donations;
// donation receipts issued to donors reference ReceiptNumber.
type Donor struct {
	LastName      string
	FirstName     string
	Nationality   Nationality
	Address       string
	PostalCode    string
	City          string
	Country       string
	ReceiptNumber string
}

// Collection describes a street/event collection (quête) replacing the
// per-donor record when a donation is a pooled collection.
type Collection struct {
	Date         Date
	Organization string
}

// Party identifies a political party for definitive transfers and
// direct expense payments. RNA is the association-registry number,
// always prefixed "W".
type Party struct {
	Name       string
	Address    string
	PostalCode string
	City       string
	SIRET      string
	RNA        string
}

// Attachment references a justificatif already uploaded to the blob store.
type Attachment struct {
	Path     string
	FileName string
}

// =============================================================================
// VALIDATION STATUS - Set by the accountant workflow, read by edit flows
// =============================================================================

type ValidationStatus string

const (
	StatusPending  ValidationStatus = "pending"
	StatusApproved ValidationStatus = "approved"
	StatusRejected ValidationStatus = "rejected"
)

// =============================================================================
// OPERATION DRAFT - Mutable engine input
// =============================================================================

// OperationDraft is the form state the engine evaluates. Amount is carried
// as the raw form string so that unparseable input surfaces as a field
// error rather than a zero value.
type OperationDraft struct {
	Kind        Kind
	Date        Date
	Amount      string
	Category    Category
	PaymentMode PaymentMode

	// Expense-only
	Beneficiary string

	// Receipt-only (except party_direct_expense_payment)
	BankStatementRef string

	// Donation
	IsCollection bool
	Donor        *Donor
	Collection   *Collection

	// Party categories
	Party                     *Party
	AssociatedExpenseCategory Category

	Attachment *Attachment
	Comment    string
}

// ParsedAmount parses the raw amount. ok is false when the value is
// missing or not a number; positivity is checked by the rules, not here.
func (d OperationDraft) ParsedAmount() (decimal.Decimal, bool) {
	if d.Amount == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// CampaignContext carries the contextual data the engine needs beyond the
// draft itself. Bounds are optional; ExistingAttachment is true when the
// persisted operation being edited already has a justificatif on record.
type CampaignContext struct {
	CampaignStart *Date
	CampaignEnd   *Date

	ExistingAttachment bool
}

// HasAttachment reports whether a justificatif is available for the draft,
// either newly provided or already on record.
func (d OperationDraft) HasAttachment(ctx CampaignContext) bool {
	return d.Attachment != nil || ctx.ExistingAttachment
}

// =============================================================================
// FINALIZED RECORD - Engine output on acceptance
// =============================================================================

// Record is a finalized operation as emitted by Accept. BankStatementRef is
// a pointer because the mirrored pair carries an explicit null reference
// (no real bank movement occurred).
type Record struct {
	Kind             Kind
	Date             Date
	Amount           decimal.Decimal
	Category         Category
	AccountCode      string
	PaymentMode      PaymentMode
	BankStatementRef *string
	Beneficiary      string
	IsCollection     bool
	Donor            *Donor
	Collection       *Collection
	Party            *Party
	Attachment       *Attachment
	Comment          string
	Status           ValidationStatus
}

/*
rules.go - Field requirement and error rules

PURPOSE:
  Given a draft and its campaign context, collect every applicable field
  error. Checks are independent: all errors are gathered, never
  short-circuited, so the form can highlight every offending field at once.

RULE ORDER (logical, not evaluation-dependent):
   1. date required, within campaign bounds (inclusive)
   2. amount required, positive, parseable
   3. category required and in the kind's catalog
   4. payment mode + bank reference (except party direct payment)
   5. expense: beneficiary + justificatif
   6. donation, per-donor branch: full donor identity
   7. donation, collection branch: collection date + organization
   8. cash donation above the legal ceiling: HARD block on payment mode
   9. candidate personal contribution: justificatif
  10. party categories: party identity, RNA "W" prefix, justificatif
  11. party direct payment: associated expense category

SEE ALSO:
  - warnings.go: Advisory counterparts of the thresholds
  - engine.go: Evaluate bundles rules + warnings + sections
*/
package compliance

import (
	"fmt"
	"strings"
)

// =============================================================================
// MESSAGES
// =============================================================================

const (
	msgRequired         = "this field is required"
	msgAmountPositive   = "amount must be a positive number"
	msgCashDonation     = "cash donations over 150 € are forbidden; use check, wire, card or direct debit"
	msgRNAPrefix        = "association registry number must start with the letter W"
	msgAttachment       = "a justificatif is required for this category"
	msgBadExpenseTarget = "associated expense category is not a valid expense category"
)

func msgBeforeStart(start Date) string {
	return fmt.Sprintf("date is before the campaign start (%s)", start)
}

func msgAfterEnd(end Date) string {
	return fmt.Sprintf("date is after the campaign end (%s)", end)
}

// =============================================================================
// SECTIONS - Derived booleans the form uses to render optional blocks
// =============================================================================

type Sections struct {
	NeedsPaymentMode        bool
	NeedsBankStatementRef   bool
	NeedsBeneficiary        bool
	NeedsDonor              bool
	NeedsCollection         bool
	NeedsParty              bool
	NeedsAssociatedCategory bool
	NeedsAttachment         bool
}

// SectionsFor derives which optional form sections apply to the draft.
func SectionsFor(d OperationDraft) Sections {
	s := Sections{
		NeedsPaymentMode:      d.Category != CatPartyDirectPayment,
		NeedsBankStatementRef: d.Kind == Receipt && d.Category != CatPartyDirectPayment,
		NeedsBeneficiary:      d.Kind == Expense,
	}
	switch d.Category {
	case CatDonation:
		s.NeedsDonor = !d.IsCollection
		s.NeedsCollection = d.IsCollection
	case CatPartyTransfer:
		s.NeedsParty = true
	case CatPartyDirectPayment:
		s.NeedsParty = true
		s.NeedsAssociatedCategory = true
	}
	s.NeedsAttachment = attachmentRequired(d)
	return s
}

// attachmentRequired reports whether the category demands a justificatif.
// Both party receipt categories require one at the engine level; the two
// historical entry forms disagreed and the stricter contract won.
func attachmentRequired(d OperationDraft) bool {
	if d.Kind == Expense {
		return true
	}
	switch d.Category {
	case CatCandidateContribution, CatPartyTransfer, CatPartyDirectPayment:
		return true
	}
	return false
}

// =============================================================================
// VALIDATE - Collect all field errors
// =============================================================================

// Validate applies every rule and returns the collected field errors.
// An empty map means the draft is acceptable for submission.
func Validate(d OperationDraft, ctx CampaignContext) Errors {
	errs := make(Errors)

	// Rule 1: date, within campaign bounds inclusive.
	if d.Date.IsZero() {
		errs.add(FieldDate, msgRequired)
	} else if !d.Date.Within(ctx.CampaignStart, ctx.CampaignEnd) {
		if ctx.CampaignStart != nil && d.Date.Before(*ctx.CampaignStart) {
			errs.add(FieldDate, msgBeforeStart(*ctx.CampaignStart))
		} else {
			errs.add(FieldDate, msgAfterEnd(*ctx.CampaignEnd))
		}
	}

	// Rule 2: amount parseable and strictly positive.
	amount, ok := d.ParsedAmount()
	if !ok || !amount.IsPositive() {
		errs.add(FieldAmount, msgAmountPositive)
	}

	// Rule 3: category present and known for this kind.
	if d.Category == "" {
		errs.add(FieldCategory, msgRequired)
	} else if _, known := Catalog(d.Kind, d.Category); !known {
		errs.add(FieldCategory, msgRequired)
	}

	// Rule 4: payment mode and bank reference, except party direct payment
	// (no real cash flow through the campaign account).
	if d.Category != CatPartyDirectPayment {
		if !d.PaymentMode.Valid() {
			errs.add(FieldPaymentMode, msgRequired)
		}
		if d.Kind == Receipt && strings.TrimSpace(d.BankStatementRef) == "" {
			errs.add(FieldBankStatementRef, msgRequired)
		}
	}

	// Rule 5: expense specifics.
	if d.Kind == Expense {
		if strings.TrimSpace(d.Beneficiary) == "" {
			errs.add(FieldBeneficiary, msgRequired)
		}
	}

	// Rules 6-7: donation branches.
	if d.Category == CatDonation {
		if d.IsCollection {
			validateCollection(d.Collection, errs)
		} else {
			validateDonor(d.Donor, errs)
		}

		// Rule 8: hard regulatory block, distinct from the advisory in
		// warnings.go. Strict "greater than".
		if ok && d.PaymentMode == PayCash && amount.GreaterThan(cashDonationCeiling) {
			errs.add(FieldPaymentMode, msgCashDonation)
		}
	}

	// Rule 10: party categories.
	if d.Category == CatPartyTransfer || d.Category == CatPartyDirectPayment {
		validateParty(d.Party, errs)
	}

	// Rule 11: party direct payment names the expense-side category.
	if d.Category == CatPartyDirectPayment {
		if d.AssociatedExpenseCategory == "" {
			errs.add(FieldAssociatedExpenseCategory, msgRequired)
		} else if _, known := expenseCatalog[d.AssociatedExpenseCategory]; !known {
			errs.add(FieldAssociatedExpenseCategory, msgBadExpenseTarget)
		}
	}

	// Rules 5/9/10: justificatif, newly provided or already on record.
	if attachmentRequired(d) && !d.HasAttachment(ctx) {
		errs.add(FieldAttachment, msgAttachment)
	}

	return errs
}

func validateDonor(donor *Donor, errs Errors) {
	if donor == nil {
		donor = &Donor{}
	}
	requireTrimmed(errs, FieldDonorLastName, donor.LastName)
	requireTrimmed(errs, FieldDonorFirstName, donor.FirstName)
	if donor.Nationality == "" {
		errs.add(FieldDonorNationality, msgRequired)
	}
	requireTrimmed(errs, FieldDonorAddress, donor.Address)
	requireTrimmed(errs, FieldDonorPostalCode, donor.PostalCode)
	requireTrimmed(errs, FieldDonorCity, donor.City)
	requireTrimmed(errs, FieldDonorCountry, donor.Country)
	requireTrimmed(errs, FieldDonorReceiptNo, donor.ReceiptNumber)
}

func validateCollection(c *Collection, errs Errors) {
	if c == nil {
		c = &Collection{}
	}
	if c.Date.IsZero() {
		errs.add(FieldCollectionDate, msgRequired)
	}
	requireTrimmed(errs, FieldCollectionOrg, c.Organization)
}

func validateParty(party *Party, errs Errors) {
	if party == nil {
		party = &Party{}
	}
	requireTrimmed(errs, FieldPartyName, party.Name)
	requireTrimmed(errs, FieldPartyAddress, party.Address)
	requireTrimmed(errs, FieldPartyPostalCode, party.PostalCode)
	requireTrimmed(errs, FieldPartyCity, party.City)
	requireTrimmed(errs, FieldPartySIRET, party.SIRET)

	rna := strings.TrimSpace(party.RNA)
	switch {
	case rna == "":
		errs.add(FieldPartyRNA, msgRequired)
	case !strings.HasPrefix(strings.ToUpper(rna), "W"):
		// Distinct message from the "required" error: the number is present
		// but malformed.
		errs.add(FieldPartyRNA, msgRNAPrefix)
	}
}

func requireTrimmed(errs Errors, f Field, v string) {
	if strings.TrimSpace(v) == "" {
		errs.add(f, msgRequired)
	}
}

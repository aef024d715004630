/*
warnings.go - Regulatory threshold advisories

PURPOSE:
  Non-blocking flags derived from category, amount and payment mode.
  They never prevent submission except where the cash-donation ceiling
  coincides with the hard block in rules.go. All three thresholds are
  strict "greater than": the boundary amount itself does not trigger.

THRESHOLDS:
  150 €     cash donation ceiling (also a hard block)
  3 000 €   per-donor donation: sworn funds-origin declaration required
  10 000 €  candidate personal contribution: same declaration, candidate-side
*/
package compliance

import "github.com/shopspring/decimal"

// Legal thresholds in euros. Comparisons are exact decimal comparisons so
// boundary amounts (150.00, 3000.00, 10000.00) never drift through floats.
var (
	cashDonationCeiling            = decimal.NewFromInt(150)
	donationDeclarationFloor       = decimal.NewFromInt(3000)
	candidateContributionDeclFloor = decimal.NewFromInt(10000)
)

// Warnings are the advisory flags surfaced to the form. They render as
// persistent inline notices for as long as their condition holds.
type Warnings struct {
	// DonationCashOver150 mirrors the hard block on cash donations above
	// 150 €; the form also tells the user which payment modes remain legal.
	DonationCashOver150 bool

	// DonationOver3000: a sworn funds-origin declaration must be collected
	// from the donor and annexed to the campaign account. Advisory only.
	DonationOver3000 bool

	// CandidateContributionOver10000: same declaration obligation,
	// attributed to the candidate. Advisory only.
	CandidateContributionOver10000 bool
}

// Any reports whether at least one advisory is active.
func (w Warnings) Any() bool {
	return w.DonationCashOver150 || w.DonationOver3000 || w.CandidateContributionOver10000
}

// WarningsFor computes the advisory flags for a draft. An unparseable
// amount yields no warnings; rules.go already reports the field error.
func WarningsFor(d OperationDraft) Warnings {
	amount, ok := d.ParsedAmount()
	if !ok {
		return Warnings{}
	}

	var w Warnings
	if d.Category == CatDonation {
		if d.PaymentMode == PayCash && amount.GreaterThan(cashDonationCeiling) {
			w.DonationCashOver150 = true
		}
		if !d.IsCollection && amount.GreaterThan(donationDeclarationFloor) {
			w.DonationOver3000 = true
		}
	}
	if d.Category == CatCandidateContribution && amount.GreaterThan(candidateContributionDeclFloor) {
		w.CandidateContributionOver10000 = true
	}
	return w
}

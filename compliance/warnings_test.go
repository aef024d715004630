package compliance_test

import (
	"testing"
	"time"

	"github.com/quitus/campaign-ledger/compliance"
)

// Threshold boundaries are strict ">": the exact threshold amount never
// triggers. These tests pin the cent-exact boundary behavior.

func TestWarnings_DonationCashOver150(t *testing.T) {
	tests := []struct {
		amount string
		mode   compliance.PaymentMode
		want   bool
	}{
		{"150.00", compliance.PayCash, false},
		{"150.01", compliance.PayCash, true},
		{"200", compliance.PayCash, true},
		{"200", compliance.PayCheck, false},
	}

	for _, tt := range tests {
		draft := validDonationDraft()
		draft.Amount = tt.amount
		draft.PaymentMode = tt.mode

		w := compliance.WarningsFor(draft)
		if w.DonationCashOver150 != tt.want {
			t.Errorf("%s %s: DonationCashOver150=%v, want %v", tt.amount, tt.mode, w.DonationCashOver150, tt.want)
		}
	}
}

func TestWarnings_DonationOver3000(t *testing.T) {
	tests := []struct {
		amount       string
		isCollection bool
		want         bool
	}{
		{"3000.00", false, false},
		{"3000.01", false, true},
		{"5000", false, true},
		{"5000", true, false}, // collections carry no per-donor declaration
	}

	for _, tt := range tests {
		draft := validDonationDraft()
		draft.Amount = tt.amount
		draft.IsCollection = tt.isCollection

		w := compliance.WarningsFor(draft)
		if w.DonationOver3000 != tt.want {
			t.Errorf("%s collection=%v: DonationOver3000=%v, want %v", tt.amount, tt.isCollection, w.DonationOver3000, tt.want)
		}
	}
}

func TestWarnings_CandidateContributionOver10000(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"10000.00", false},
		{"10000.01", true},
		{"25000", true},
	}

	for _, tt := range tests {
		draft := compliance.OperationDraft{
			Kind:     compliance.Receipt,
			Date:     date(2024, time.February, 1),
			Amount:   tt.amount,
			Category: compliance.CatCandidateContribution,
		}

		w := compliance.WarningsFor(draft)
		if w.CandidateContributionOver10000 != tt.want {
			t.Errorf("%s: CandidateContributionOver10000=%v, want %v", tt.amount, w.CandidateContributionOver10000, tt.want)
		}
	}
}

func TestWarnings_AdvisoryOnly_DoesNotBlockSubmission(t *testing.T) {
	// GIVEN: A 3 000.01 € check donation, donor fully populated
	// WHEN: Validating and computing warnings
	// THEN: Warning is set but the error map is empty

	draft := validDonationDraft()
	draft.Amount = "3000.01"

	errs := compliance.Validate(draft, campaign2024())
	if len(errs) != 0 {
		t.Fatalf("declaration advisory must not block, got %v", errs)
	}

	w := compliance.WarningsFor(draft)
	if !w.DonationOver3000 {
		t.Error("expected DonationOver3000 warning")
	}
	if !w.Any() {
		t.Error("Any() should report the active advisory")
	}
}

func TestWarnings_UnparseableAmount_NoWarnings(t *testing.T) {
	draft := validDonationDraft()
	draft.Amount = "beaucoup"
	draft.PaymentMode = compliance.PayCash

	if w := compliance.WarningsFor(draft); w.Any() {
		t.Errorf("unparseable amount must yield no warnings, got %+v", w)
	}
}

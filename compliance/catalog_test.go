package compliance_test

import (
	"testing"

	"github.com/quitus/campaign-ledger/compliance"
)

// The account codes are an external bookkeeping contract: pin every one.

func TestCatalog_ReceiptAccountCodes(t *testing.T) {
	want := map[compliance.Category]string{
		compliance.CatDonation:              "7010",
		compliance.CatCandidateContribution: "7021",
		compliance.CatBankLoan:              "7022",
		compliance.CatPartyLoan:             "7023",
		compliance.CatIndividualLoan:        "7025",
		compliance.CatPartyTransfer:         "7031",
		compliance.CatPartyDirectPayment:    "7032",
		compliance.CatInKindCandidate:       "7050",
		compliance.CatInKindParty:           "7051",
		compliance.CatInKindIndividual:      "7052",
		compliance.CatMiscRevenue:           "7580",
		compliance.CatFinancialIncome:       "7600",
	}

	for cat, code := range want {
		got, ok := compliance.AccountCode(compliance.Receipt, cat)
		if !ok || got != code {
			t.Errorf("%s: got (%q, %v), want %q", cat, got, ok, code)
		}
	}

	if got := len(compliance.Categories(compliance.Receipt)); got != len(want) {
		t.Errorf("receipt catalog has %d entries, want %d", got, len(want))
	}
}

func TestCatalog_ExpenseAccountCodes(t *testing.T) {
	want := map[compliance.Category]string{
		compliance.CatMaterials:        "6051",
		compliance.CatSupplies:         "6060",
		compliance.CatPropertyRental:   "6132",
		compliance.CatEquipmentRental:  "6135",
		compliance.CatCampaignStaff:    "6040",
		compliance.CatTempStaff:        "6210",
		compliance.CatSecondedStaff:    "6211",
		compliance.CatCommunication:    "6226",
		compliance.CatAccountantFees:   "6229",
		compliance.CatAudiovisual:      "6230",
		compliance.CatPublications:     "6237",
		compliance.CatSurveys:          "6235",
		compliance.CatTransport:        "6240",
		compliance.CatPublicMeetings:   "6254",
		compliance.CatHospitality:      "6257",
		compliance.CatPostalCosts:      "6260",
		compliance.CatTelecom:          "6262",
		compliance.CatMiscExpense:      "6280",
		compliance.CatFinancialExpense: "6600",
	}

	for cat, code := range want {
		got, ok := compliance.AccountCode(compliance.Expense, cat)
		if !ok || got != code {
			t.Errorf("%s: got (%q, %v), want %q", cat, got, ok, code)
		}
	}

	if got := len(compliance.Categories(compliance.Expense)); got != len(want) {
		t.Errorf("expense catalog has %d entries, want %d", got, len(want))
	}
}

func TestCatalog_CrossKindLookup_Misses(t *testing.T) {
	if _, ok := compliance.AccountCode(compliance.Expense, compliance.CatDonation); ok {
		t.Error("donation must not resolve in the expense space")
	}
	if _, ok := compliance.AccountCode(compliance.Receipt, compliance.CatTransport); ok {
		t.Error("transport must not resolve in the receipt space")
	}
}

func TestCatalog_LookupIsStable(t *testing.T) {
	// Round-trip: lookup is a pure function of (kind, category); repeated
	// calls return identical entries.

	for _, kind := range []compliance.Kind{compliance.Receipt, compliance.Expense} {
		for _, entry := range compliance.Categories(kind) {
			again, ok := compliance.Catalog(kind, entry.Category)
			if !ok {
				t.Fatalf("%s/%s vanished on second lookup", kind, entry.Category)
			}
			if again != entry {
				t.Errorf("%s/%s: unstable entry %+v vs %+v", kind, entry.Category, again, entry)
			}
			if entry.Label == "" || entry.Group == "" {
				t.Errorf("%s/%s: missing label or group", kind, entry.Category)
			}
		}
	}
}

func TestCategories_OrderedByAccountCode(t *testing.T) {
	entries := compliance.Categories(compliance.Expense)
	for i := 1; i < len(entries); i++ {
		if entries[i].AccountCode < entries[i-1].AccountCode {
			t.Fatalf("entries out of order at %d: %s before %s", i, entries[i-1].AccountCode, entries[i].AccountCode)
		}
	}
}

package compliance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitus/campaign-ledger/compliance"
)

// =============================================================================
// ACCEPTANCE - SINGLE RECORD
// =============================================================================

func TestAccept_ValidExpense_SingleRecordWithAccountCode(t *testing.T) {
	// Scenario from the compliance contract: communication expense, wire,
	// justificatif present -> zero errors, accounting code 6226.

	acc, err := compliance.Accept(validExpenseDraft(), campaign2024())
	require.NoError(t, err)
	require.Len(t, acc.Records, 1)

	r := acc.Records[0]
	assert.Equal(t, compliance.Expense, r.Kind)
	assert.Equal(t, "6226", r.AccountCode)
	assert.Equal(t, "Imprimerie Paris", r.Beneficiary)
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, compliance.StatusPending, r.Status)
}

func TestAccept_InvalidDraft_RejectedWithFullErrorMap(t *testing.T) {
	draft := validExpenseDraft()
	draft.Beneficiary = ""
	draft.Amount = ""

	acc, err := compliance.Accept(draft, campaign2024())
	assert.Nil(t, acc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compliance.ErrDraftRejected))

	var rejected *compliance.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Errors, compliance.FieldBeneficiary)
	assert.Contains(t, rejected.Errors, compliance.FieldAmount)
}

func TestAccept_CashDonationOver200_RejectedAndWarned(t *testing.T) {
	// Scenario: 200 € cash donation, donor fully populated -> error on
	// payment mode, DonationCashOver150 warning true.

	draft := validDonationDraft()
	draft.Amount = "200"
	draft.PaymentMode = compliance.PayCash

	eval := compliance.Evaluate(draft, campaign2024())
	assert.Contains(t, eval.Errors, compliance.FieldPaymentMode)
	assert.True(t, eval.Warnings.DonationCashOver150)
	assert.True(t, eval.SubmitBlocked())

	_, err := compliance.Accept(draft, campaign2024())
	assert.True(t, errors.Is(err, compliance.ErrDraftRejected))
}

func TestAccept_Donation_NormalizesAndKeepsDonor(t *testing.T) {
	acc, err := compliance.Accept(validDonationDraft(), campaign2024())
	require.NoError(t, err)
	require.Len(t, acc.Records, 1)

	r := acc.Records[0]
	assert.Equal(t, "7010", r.AccountCode)
	require.NotNil(t, r.Donor)
	assert.Equal(t, "Martin", r.Donor.LastName)
	require.NotNil(t, r.BankStatementRef)
	assert.Equal(t, "REL-2024-03", *r.BankStatementRef)
}

func TestAccept_PartyTransfer_RNANormalizedToUppercase(t *testing.T) {
	draft := validPartyTransferDraft()
	draft.Party.RNA = "w123456789"

	acc, err := compliance.Accept(draft, campaign2024())
	require.NoError(t, err)
	require.NotNil(t, acc.Records[0].Party)
	assert.Equal(t, "W123456789", acc.Records[0].Party.RNA)
}

// =============================================================================
// ACCEPTANCE - MIRRORED PAIR
// =============================================================================

func validPartyDirectDraft() compliance.OperationDraft {
	return compliance.OperationDraft{
		Kind:                      compliance.Receipt,
		Date:                      date(2024, time.April, 2),
		Amount:                    "1000",
		Category:                  compliance.CatPartyDirectPayment,
		Party:                     validParty(),
		AssociatedExpenseCategory: compliance.CatPublicMeetings,
		Attachment:                attachment(),
	}
}

func TestAccept_PartyDirectPayment_EmitsZeroNetPair(t *testing.T) {
	// Scenario: 1 000 € paid by "Parti X" for a public meeting -> exactly
	// two records, equal amounts, opposite kinds, codes 7032 and 6254.

	acc, err := compliance.Accept(validPartyDirectDraft(), campaign2024())
	require.NoError(t, err)
	require.Len(t, acc.Records, 2)

	receipt, expense := acc.Records[0], acc.Records[1]

	assert.Equal(t, compliance.Receipt, receipt.Kind)
	assert.Equal(t, compliance.Expense, expense.Kind)
	assert.True(t, receipt.Amount.Equal(expense.Amount), "pair must be zero-net")

	assert.Equal(t, "7032", receipt.AccountCode)
	assert.Equal(t, "6254", expense.AccountCode)

	// Placeholder payment fields: no real bank movement.
	assert.Equal(t, compliance.PayWire, receipt.PaymentMode)
	assert.Equal(t, compliance.PayWire, expense.PaymentMode)
	assert.Nil(t, receipt.BankStatementRef)
	assert.Nil(t, expense.BankStatementRef)

	assert.Equal(t, "Parti X", expense.Beneficiary)
	assert.Equal(t, "Expense paid by Parti X", receipt.Comment)
	assert.Equal(t, "Paid by Parti X", expense.Comment)

	// Both sides share the justificatif and start pending validation.
	require.NotNil(t, receipt.Attachment)
	assert.Equal(t, receipt.Attachment, expense.Attachment)
	assert.Equal(t, compliance.StatusPending, receipt.Status)
	assert.Equal(t, compliance.StatusPending, expense.Status)
}

func TestAccept_PartyDirectPayment_UserCommentAppended(t *testing.T) {
	draft := validPartyDirectDraft()
	draft.Comment = "salle louée pour le meeting du 2 avril"

	acc, err := compliance.Accept(draft, campaign2024())
	require.NoError(t, err)

	assert.Equal(t, "Expense paid by Parti X - salle louée pour le meeting du 2 avril", acc.Records[0].Comment)
	assert.Equal(t, "Paid by Parti X - salle louée pour le meeting du 2 avril", acc.Records[1].Comment)
}

func TestMirrorPair_UnknownExpenseCategory_InternalFault(t *testing.T) {
	draft := validPartyDirectDraft()
	draft.AssociatedExpenseCategory = "not_a_category"

	_, err := compliance.MirrorPair(draft)
	require.Error(t, err)
	assert.True(t, errors.Is(err, compliance.ErrUnknownCategory))
}

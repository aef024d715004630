package campaign_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/campaign/store"
	"github.com/quitus/campaign-ledger/compliance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testCampaign() campaign.Campaign {
	return campaign.Campaign{
		ID:           "camp-1",
		Name:         "Municipales 2024 - Lyon 3e",
		CandidateID:  "user-candidat",
		MandataireID: "user-mandataire",
		Start:        compliance.NewDate(2024, time.January, 1),
		End:          compliance.NewDate(2024, time.June, 30),
		Plafond:      decimal.NewFromInt(38000),
	}
}

func newService(ops *store.Memory) *campaign.SubmissionService {
	return campaign.NewSubmissionService(ops, store.NewMemoryBlobs(), zerolog.Nop())
}

func expenseDraft() compliance.OperationDraft {
	return compliance.OperationDraft{
		Kind:        compliance.Expense,
		Date:        compliance.NewDate(2024, time.May, 15),
		Amount:      "2500",
		Category:    compliance.CatCommunication,
		PaymentMode: compliance.PayWire,
		Beneficiary: "Imprimerie Paris",
		Attachment:  &compliance.Attachment{Path: "justificatifs/f1.pdf", FileName: "f1.pdf"},
	}
}

func partyDirectDraft() compliance.OperationDraft {
	return compliance.OperationDraft{
		Kind:     compliance.Receipt,
		Date:     compliance.NewDate(2024, time.April, 2),
		Amount:   "1000",
		Category: compliance.CatPartyDirectPayment,
		Party: &compliance.Party{
			Name:       "Parti X",
			Address:    "5 avenue des Champs",
			PostalCode: "75008",
			City:       "Paris",
			SIRET:      "73282932000074",
			RNA:        "W123456789",
		},
		AssociatedExpenseCategory: compliance.CatPublicMeetings,
		Attachment:                &compliance.Attachment{Path: "justificatifs/f2.pdf", FileName: "f2.pdf"},
	}
}

// =============================================================================
// SINGLE-RECORD SUBMISSION
// =============================================================================

func TestSubmit_ValidExpense_PersistsOnePendingOperation(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)
	require.Len(t, created, 1)

	op := created[0]
	assert.Equal(t, campaign.CampaignID("camp-1"), op.CampaignID)
	assert.Equal(t, compliance.StatusPending, op.Status)
	assert.Empty(t, op.PairID)

	stored, err := ops.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "6226", stored.AccountCode)
}

func TestSubmit_EditFlowDefaultsToCallerStatus(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)

	created, err := svc.Submit(context.Background(), testCampaign(), "user-mandataire",
		expenseDraft(), false, compliance.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusApproved, created[0].Status)
}

func TestSubmit_RejectedDraft_NothingPersisted(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)

	draft := expenseDraft()
	draft.Beneficiary = ""
	draft.Attachment = nil

	_, err := svc.Submit(context.Background(), testCampaign(), "user-mandataire", draft, false, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, compliance.ErrDraftRejected))
	assert.Equal(t, 0, ops.Count())
}

func TestSubmit_DateOutsideCampaign_Rejected(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)

	draft := expenseDraft()
	draft.Date = compliance.NewDate(2023, time.November, 1)

	_, err := svc.Submit(context.Background(), testCampaign(), "user-mandataire", draft, false, "")
	var rejected *compliance.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Errors[compliance.FieldDate], "campaign start")
}

// =============================================================================
// MIRRORED PAIR
// =============================================================================

func TestSubmit_PartyDirectPayment_PersistsBothHalvesWithSharedPairID(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.NoError(t, err)
	require.Len(t, created, 2)

	receipt, expense := created[0], created[1]
	assert.Equal(t, compliance.Receipt, receipt.Kind)
	assert.Equal(t, compliance.Expense, expense.Kind)
	assert.NotEmpty(t, receipt.PairID)
	assert.Equal(t, receipt.PairID, expense.PairID)
	assert.True(t, receipt.Amount.Equal(expense.Amount))
	assert.Equal(t, 2, ops.Count())
}

func TestSubmit_PairSecondInsertFails_ReceiptCompensated(t *testing.T) {
	// GIVEN: The expense half of the pair cannot be persisted
	// WHEN: Submitting a party direct payment
	// THEN: The receipt is deleted again; the store holds nothing

	ops := store.NewMemory()
	ctx := context.Background()

	// The service generates ids, so the failure hook keyed by id cannot be
	// armed in advance. Wrap the store to reject expense records instead.
	failing := &failingExpenseStore{Memory: ops}
	svc := campaign.NewSubmissionService(failing, store.NewMemoryBlobs(), zerolog.Nop())

	_, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, campaign.ErrUnbalancedPair), "compensation succeeded, not unbalanced")
	assert.True(t, strings.Contains(err.Error(), "rolled back"))
	assert.Equal(t, 0, ops.Count(), "no orphaned receipt")
}

func TestSubmit_PairCompensationAlsoFails_Unbalanced(t *testing.T) {
	ops := store.NewMemory()
	failing := &failingExpenseStore{Memory: ops, failDelete: true}
	svc := campaign.NewSubmissionService(failing, store.NewMemoryBlobs(), zerolog.Nop())

	_, err := svc.Submit(context.Background(), testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, campaign.ErrUnbalancedPair),
		"failed compensation must surface as inconsistent state")
	assert.Equal(t, 1, ops.Count(), "orphaned receipt remains")
}

// failingExpenseStore rejects expense inserts and, optionally, deletes.
type failingExpenseStore struct {
	*store.Memory
	failDelete bool
}

func (f *failingExpenseStore) SaveOperation(ctx context.Context, op campaign.Operation) error {
	if op.Kind == compliance.Expense {
		return errors.New("simulated insert failure")
	}
	return f.Memory.SaveOperation(ctx, op)
}

func (f *failingExpenseStore) DeleteOperation(ctx context.Context, id campaign.OperationID) error {
	if f.failDelete {
		return errors.New("simulated delete failure")
	}
	return f.Memory.DeleteOperation(ctx, id)
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdate_SingleEdit_KeepsIdentity(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)

	edited := expenseDraft()
	edited.Amount = "3000"

	updated, err := svc.Update(ctx, testCampaign(), created[0], edited, "")
	require.NoError(t, err)
	require.Len(t, updated, 1)

	assert.Equal(t, created[0].ID, updated[0].ID)
	assert.Equal(t, created[0].CreatedAt, updated[0].CreatedAt)
	assert.Equal(t, compliance.StatusPending, updated[0].Status, "empty status keeps the stored one")
	assert.Equal(t, 1, ops.Count(), "edit must not mint a second operation")

	stored, err := ops.GetOperation(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(3000)))
}

func TestUpdate_StoredJustificatifSatisfiesAttachmentRule(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)

	edited := expenseDraft()
	edited.Attachment = nil

	updated, err := svc.Update(ctx, testCampaign(), created[0], edited, "")
	require.NoError(t, err, "stored justificatif must satisfy the rule")
	require.NotNil(t, updated[0].Attachment)
	assert.Equal(t, "justificatifs/f1.pdf", updated[0].Attachment.Path, "stored justificatif carried forward")
}

func TestUpdate_StatusOverride(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testCampaign(), created[0], expenseDraft(), compliance.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusApproved, updated[0].Status)
}

func TestUpdate_RejectedEdit_StoredOperationUntouched(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)

	edited := expenseDraft()
	edited.Beneficiary = ""

	_, err = svc.Update(ctx, testCampaign(), created[0], edited, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, compliance.ErrDraftRejected))

	stored, err := ops.GetOperation(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(2500)), "rejected edit must not persist")
}

func TestUpdate_PairEdit_UpdatesBothHalvesInPlace(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.NoError(t, err)

	edited := partyDirectDraft()
	edited.Amount = "1500"

	updated, err := svc.Update(ctx, testCampaign(), created[0], edited, "")
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Equal(t, created[0].ID, updated[0].ID, "receipt keeps its row")
	assert.Equal(t, created[1].ID, updated[1].ID, "expense keeps its row")
	assert.Equal(t, created[0].PairID, updated[0].PairID)
	assert.Equal(t, 2, ops.Count())
	assert.True(t, updated[0].Amount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, updated[1].Amount.Equal(decimal.NewFromInt(1500)))
}

func TestUpdate_PairToSingle_RemovesStaleSibling(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.NoError(t, err)
	require.Equal(t, 2, ops.Count())

	updated, err := svc.Update(ctx, testCampaign(), created[0], expenseDraft(), "")
	require.NoError(t, err)
	require.Len(t, updated, 1)

	assert.Equal(t, created[0].ID, updated[0].ID)
	assert.Empty(t, updated[0].PairID)
	assert.Equal(t, 1, ops.Count(), "the stale expense half must be removed")
}

func TestUpdate_SingleToPair_CreatesSibling(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", expenseDraft(), false, "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testCampaign(), created[0], partyDirectDraft(), "")
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Equal(t, created[0].ID, updated[0].ID, "edited row hosts the receipt half")
	assert.NotEmpty(t, updated[0].PairID)
	assert.Equal(t, updated[0].PairID, updated[1].PairID)
	assert.Equal(t, 2, ops.Count())
}

// =============================================================================
// DELETE
// =============================================================================

func TestDelete_PairOperation_RemovesBothHalves(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.NoError(t, err)
	require.Equal(t, 2, ops.Count())

	require.NoError(t, svc.Delete(ctx, created[0]))
	assert.Equal(t, 0, ops.Count(), "deleting one half must remove the sibling")
}

func TestDelete_SiblingDeleteFails_Unbalanced(t *testing.T) {
	ops := store.NewMemory()
	svc := newService(ops)
	ctx := context.Background()

	created, err := svc.Submit(ctx, testCampaign(), "user-mandataire", partyDirectDraft(), false, "")
	require.NoError(t, err)

	ops.FailDeleteFor[created[1].ID] = errors.New("simulated delete failure")

	err = svc.Delete(ctx, created[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, campaign.ErrUnbalancedPair))
	assert.Equal(t, 1, ops.Count(), "the orphaned expense half remains")
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestUpload_YieldsStableReference(t *testing.T) {
	svc := newService(store.NewMemory())

	att, err := svc.Upload(context.Background(), "facture.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "facture.pdf", att.FileName)
	assert.NotEmpty(t, att.Path)
}

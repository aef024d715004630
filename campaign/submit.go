/*
submit.go - Submission service

PURPOSE:
  Turns an accepted draft into persisted operations. Handles the boundary
  sequencing the engine itself stays out of:

  1. Attachment upload completes first, yielding the stable reference.
  2. One record: single insert.
  3. Mirrored pair: receipt insert, then expense insert. The expense is
     only attempted after the receipt succeeds. If the expense fails, the
     receipt is deleted (compensating delete, keyed by the shared pair
     id); if that delete also fails, ErrUnbalancedPair is returned so the
     caller can surface "inconsistent state" rather than ordinary failure.

SEE ALSO:
  - compliance/form.go: The state machine that drives this service
  - store.go: Interfaces and ErrUnbalancedPair
*/
package campaign

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quitus/campaign-ledger/compliance"
)

// SubmissionService persists accepted drafts.
type SubmissionService struct {
	Operations OperationStore
	Blobs      BlobStore
	Log        zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewSubmissionService(ops OperationStore, blobs BlobStore, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{Operations: ops, Blobs: blobs, Log: log, now: time.Now}
}

// Upload pushes a justificatif to the blob store and returns the reference
// the draft should carry. Must complete before Submit references it.
func (s *SubmissionService) Upload(ctx context.Context, fileName string, r io.Reader) (compliance.Attachment, error) {
	att, err := s.Blobs.Put(ctx, fileName, r)
	if err != nil {
		return compliance.Attachment{}, fmt.Errorf("justificatif upload: %w", err)
	}
	return att, nil
}

// Submit validates the draft against the campaign and persists the
// resulting record(s). Status defaults to Pending for mandataire-created
// drafts; edit flows pass their own default via status.
func (s *SubmissionService) Submit(
	ctx context.Context,
	c Campaign,
	mandataireID UserID,
	draft compliance.OperationDraft,
	existingAttachment bool,
	status compliance.ValidationStatus,
) ([]Operation, error) {
	acc, err := compliance.Accept(draft, c.Context(existingAttachment))
	if err != nil {
		return nil, err
	}

	ops := make([]Operation, len(acc.Records))
	pairID := ""
	if len(acc.Records) == 2 {
		pairID = uuid.NewString()
	}

	for i, record := range acc.Records {
		if status != "" {
			record.Status = status
		}
		ops[i] = Operation{
			ID:           OperationID(uuid.NewString()),
			CampaignID:   c.ID,
			MandataireID: mandataireID,
			PairID:       pairID,
			Record:       record,
			CreatedAt:    s.now(),
		}
	}

	if len(ops) == 2 {
		if err := s.persistPair(ctx, ops[0], ops[1]); err != nil {
			return nil, err
		}
		return ops, nil
	}

	if err := s.Operations.SaveOperation(ctx, ops[0]); err != nil {
		return nil, fmt.Errorf("save operation: %w", err)
	}
	return ops, nil
}

// Update re-runs the engine on an edited draft and persists the result
// under the stored operation's identity. The stored justificatif is kept
// when the edit does not replace it. Edits may change shape: a category
// switch to or from the party direct payment turns a single record into
// a mirrored pair or back, and the stored sibling is created or removed
// to match.
func (s *SubmissionService) Update(
	ctx context.Context,
	c Campaign,
	existing Operation,
	draft compliance.OperationDraft,
	status compliance.ValidationStatus,
) ([]Operation, error) {
	acc, err := compliance.Accept(draft, c.Context(existing.Record.Attachment != nil))
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = existing.Record.Status
	}
	records := acc.Records
	for i := range records {
		records[i].Status = status
		if records[i].Attachment == nil {
			records[i].Attachment = existing.Record.Attachment
		}
	}

	var sibling *Operation
	if existing.PairID != "" {
		if sibling, err = s.pairSibling(ctx, existing); err != nil {
			return nil, fmt.Errorf("pair sibling lookup: %w", err)
		}
	}

	if len(records) == 1 {
		op := existing
		op.PairID = ""
		op.Record = records[0]
		if err := s.Operations.SaveOperation(ctx, op); err != nil {
			return nil, fmt.Errorf("update operation: %w", err)
		}
		if sibling != nil {
			if err := s.Operations.DeleteOperation(ctx, sibling.ID); err != nil {
				return nil, fmt.Errorf("%w: stale pair half delete: %v", ErrUnbalancedPair, err)
			}
		}
		return []Operation{op}, nil
	}

	// Mirrored pair. Keep each half under the ID that already held that
	// kind so approvals and exports stay attached to the same rows.
	receipt, expense := existing, Operation{}
	switch {
	case sibling != nil && existing.Record.Kind == compliance.Expense:
		receipt, expense = *sibling, existing
	case sibling != nil:
		expense = *sibling
	default:
		expense = Operation{
			ID:           OperationID(uuid.NewString()),
			CampaignID:   existing.CampaignID,
			MandataireID: existing.MandataireID,
			CreatedAt:    existing.CreatedAt,
		}
	}
	receipt.Record = records[0]
	expense.Record = records[1]

	pairID := existing.PairID
	if pairID == "" {
		pairID = uuid.NewString()
	}
	receipt.PairID, expense.PairID = pairID, pairID

	if err := s.Operations.SaveOperation(ctx, receipt); err != nil {
		return nil, fmt.Errorf("update pair receipt: %w", err)
	}
	if err := s.Operations.SaveOperation(ctx, expense); err != nil {
		return nil, fmt.Errorf("%w: pair expense update: %v", ErrUnbalancedPair, err)
	}
	return []Operation{receipt, expense}, nil
}

// pairSibling finds the other half of a mirrored pair, or nil when the
// pair id matches nothing else in the campaign.
func (s *SubmissionService) pairSibling(ctx context.Context, op Operation) (*Operation, error) {
	ops, err := s.Operations.ListOperations(ctx, op.CampaignID, OperationFilter{})
	if err != nil {
		return nil, err
	}
	for i := range ops {
		if ops[i].PairID == op.PairID && ops[i].ID != op.ID {
			return &ops[i], nil
		}
	}
	return nil, nil
}

// persistPair writes the receipt then the expense, compensating with a
// delete of the receipt when the expense insert fails.
func (s *SubmissionService) persistPair(ctx context.Context, receipt, expense Operation) error {
	if err := s.Operations.SaveOperation(ctx, receipt); err != nil {
		return fmt.Errorf("save pair receipt: %w", err)
	}

	if err := s.Operations.SaveOperation(ctx, expense); err != nil {
		s.Log.Error().
			Err(err).
			Str("pair_id", receipt.PairID).
			Str("receipt_id", string(receipt.ID)).
			Msg("pair expense insert failed, compensating")

		if delErr := s.Operations.DeleteOperation(ctx, receipt.ID); delErr != nil {
			s.Log.Error().
				Err(delErr).
				Str("pair_id", receipt.PairID).
				Msg("compensating delete failed, books unbalanced")
			return fmt.Errorf("%w: expense insert: %v, compensation: %v",
				ErrUnbalancedPair, err, delErr)
		}
		return fmt.Errorf("save pair expense (receipt rolled back): %w", err)
	}

	return nil
}

// Delete removes an operation. When the operation belongs to a mirrored
// pair, both halves are removed so the books stay balanced.
func (s *SubmissionService) Delete(ctx context.Context, op Operation) error {
	if err := s.Operations.DeleteOperation(ctx, op.ID); err != nil {
		return err
	}
	if op.PairID == "" {
		return nil
	}

	ops, err := s.Operations.ListOperations(ctx, op.CampaignID, OperationFilter{})
	if err != nil {
		return fmt.Errorf("%w: pair sibling lookup: %v", ErrUnbalancedPair, err)
	}
	for _, sibling := range ops {
		if sibling.PairID == op.PairID && sibling.ID != op.ID {
			if err := s.Operations.DeleteOperation(ctx, sibling.ID); err != nil {
				return fmt.Errorf("%w: pair sibling delete: %v", ErrUnbalancedPair, err)
			}
		}
	}
	return nil
}

/*
store.go - Persistence and blob interfaces

PURPOSE:
  Interfaces between the domain and its external collaborators. The
  relational store is reached through simple CRUD calls; the blob store is
  opaque and returns a stable reference. Implementations live in
  store/sqlite (production), campaign/store (in-memory, tests) and blob/
  (filesystem, Google Cloud Storage).

DELETION:
  Unlike an append-only ledger, operations ARE deleted: the accountant and
  mandataire screens expose explicit deletes, and the submission service
  issues a compensating delete when the second record of a mirrored pair
  fails to persist.

SEE ALSO:
  - submit.go: Uses these interfaces, defines the pair failure semantics
  - store/sqlite/sqlite.go: Production implementation
*/
package campaign

import (
	"context"
	"errors"
	"io"

	"github.com/quitus/campaign-ledger/compliance"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCampaignNotFound is returned when a referenced campaign doesn't exist.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrOperationNotFound is returned when a referenced operation doesn't exist.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrUnbalancedPair is returned when the second record of a mirrored
	// pair failed to persist AND the compensating delete of the first also
	// failed: the books hold an orphaned receipt. Distinct from total
	// failure so callers can surface "inconsistent state".
	ErrUnbalancedPair = errors.New("mirrored pair left unbalanced")
)

// =============================================================================
// OPERATION FILTER
// =============================================================================

// OperationFilter narrows ListOperations. Zero values match everything.
type OperationFilter struct {
	Kind     compliance.Kind
	Category compliance.Category
	Status   compliance.ValidationStatus
}

func (f OperationFilter) Matches(op Operation) bool {
	if f.Kind != "" && op.Kind != f.Kind {
		return false
	}
	if f.Category != "" && op.Category != f.Category {
		return false
	}
	if f.Status != "" && op.Status != f.Status {
		return false
	}
	return true
}

// =============================================================================
// STORES
// =============================================================================

// CampaignStore persists campaigns.
type CampaignStore interface {
	SaveCampaign(ctx context.Context, c Campaign) error
	GetCampaign(ctx context.Context, id CampaignID) (*Campaign, error)
	ListCampaigns(ctx context.Context) ([]Campaign, error)
}

// OperationStore persists finalized operations. SaveOperation upserts;
// DeleteOperation is used both by the explicit delete screens and by the
// submission service's pair compensation.
type OperationStore interface {
	SaveOperation(ctx context.Context, op Operation) error
	GetOperation(ctx context.Context, id OperationID) (*Operation, error)
	ListOperations(ctx context.Context, campaignID CampaignID, filter OperationFilter) ([]Operation, error)
	DeleteOperation(ctx context.Context, id OperationID) error
	UpdateStatus(ctx context.Context, id OperationID, status compliance.ValidationStatus) error
}

// =============================================================================
// BLOB STORE - Opaque justificatif storage
// =============================================================================

// BlobStore stores justificatifs and yields the stable reference an
// operation records. Upload must complete before the dependent operation
// is persisted.
type BlobStore interface {
	// Put stores the content under a generated path derived from name and
	// returns the attachment reference.
	Put(ctx context.Context, name string, r io.Reader) (compliance.Attachment, error)

	// Open retrieves a stored justificatif by path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

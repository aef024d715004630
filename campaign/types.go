/*
Package campaign holds the domain records and services surrounding the
compliance engine: campaigns, persisted operations, the submission service
that turns accepted drafts into stored records, and the totals ledger that
feeds the candidate dashboard.

The engine (package compliance) stays pure; everything that touches a
store or a blob lives here.
*/
package campaign

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quitus/campaign-ledger/compliance"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CampaignID string
type OperationID string
type UserID string

// =============================================================================
// ROLES - Labels yielded by the identity provider
// =============================================================================

type Role string

const (
	// RoleMandataire is the campaign's financial agent, sole author of
	// operations.
	RoleMandataire Role = "mandataire"

	// RoleComptable validates or rejects operations across campaigns.
	RoleComptable Role = "comptable"

	// RoleCandidat has read-only dashboard access.
	RoleCandidat Role = "candidat"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMandataire, RoleComptable, RoleCandidat:
		return true
	}
	return false
}

// =============================================================================
// CAMPAIGN
// =============================================================================

// Campaign is one candidacy's account. Plafond is the legal expense
// ceiling for the candidacy; zero means not yet set.
type Campaign struct {
	ID           CampaignID
	Name         string
	CandidateID  UserID
	MandataireID UserID
	Start        compliance.Date
	End          compliance.Date
	Plafond      decimal.Decimal
	CreatedAt    time.Time
}

// Context builds the engine context for drafts against this campaign.
func (c Campaign) Context(existingAttachment bool) compliance.CampaignContext {
	ctx := compliance.CampaignContext{ExistingAttachment: existingAttachment}
	if !c.Start.IsZero() {
		start := c.Start
		ctx.CampaignStart = &start
	}
	if !c.End.IsZero() {
		end := c.End
		ctx.CampaignEnd = &end
	}
	return ctx
}

// =============================================================================
// OPERATION - A finalized, persisted record
// =============================================================================

// Operation is a compliance.Record anchored to a campaign and its author.
// PairID links the two halves of a mirrored zero-net pair; it is empty for
// ordinary operations and identical on both pair records.
type Operation struct {
	ID           OperationID
	CampaignID   CampaignID
	MandataireID UserID
	PairID       string

	compliance.Record

	CreatedAt time.Time
}

// Signed returns the amount with expense sign convention (receipts
// positive, expenses negative) for net computations.
func (o Operation) Signed() decimal.Decimal {
	if o.Kind == compliance.Expense {
		return o.Amount.Neg()
	}
	return o.Amount
}

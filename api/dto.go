/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

  Amounts cross the wire as strings in both directions. Draft amounts are
  raw user input the engine judges; record amounts are exact decimals that
  a float JSON number would corrupt.

SEE ALSO:
  - handlers.go: Uses these types
  - compliance/types.go: The domain shapes these mirror
*/
package api

import (
	"time"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/compliance"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CAMPAIGNS
// =============================================================================

// CampaignDTO represents a campaign in API responses.
type CampaignDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CandidateID  string `json:"candidate_id"`
	MandataireID string `json:"mandataire_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Plafond      string `json:"plafond"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreateCampaignRequest is the request to create or update a campaign.
type CreateCampaignRequest struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	CandidateID  string `json:"candidate_id"`
	MandataireID string `json:"mandataire_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Plafond      string `json:"plafond,omitempty"`
}

func toCampaignDTO(c campaign.Campaign) CampaignDTO {
	return CampaignDTO{
		ID:           string(c.ID),
		Name:         c.Name,
		CandidateID:  string(c.CandidateID),
		MandataireID: string(c.MandataireID),
		Start:        c.Start.String(),
		End:          c.End.String(),
		Plafond:      c.Plafond.String(),
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// DRAFTS
// =============================================================================

// DonorDTO mirrors compliance.Donor.
type DonorDTO struct {
	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	Nationality   string `json:"nationality"`
	Address       string `json:"address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
}

// CollectionDTO mirrors compliance.Collection.
type CollectionDTO struct {
	Date         string `json:"date"`
	Organization string `json:"organization"`
}

// PartyDTO mirrors compliance.Party.
type PartyDTO struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	SIRET      string `json:"siret"`
	RNA        string `json:"rna"`
}

// AttachmentDTO mirrors compliance.Attachment.
type AttachmentDTO struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
}

// DraftRequest is an operation draft as submitted by the form. Amount is
// the raw input string; the engine reports unparseable values as field
// errors.
type DraftRequest struct {
	Kind                      string         `json:"kind"`
	Date                      string         `json:"date"`
	Amount                    string         `json:"amount"`
	Category                  string         `json:"category"`
	PaymentMode               string         `json:"payment_mode"`
	Beneficiary               string         `json:"beneficiary,omitempty"`
	BankStatementRef          string         `json:"bank_statement_ref,omitempty"`
	IsCollection              bool           `json:"is_collection,omitempty"`
	Donor                     *DonorDTO      `json:"donor,omitempty"`
	Collection                *CollectionDTO `json:"collection,omitempty"`
	Party                     *PartyDTO      `json:"party,omitempty"`
	AssociatedExpenseCategory string         `json:"associated_expense_category,omitempty"`
	Attachment                *AttachmentDTO `json:"attachment,omitempty"`
	Comment                   string         `json:"comment,omitempty"`
}

// SubmitRequest wraps a draft for submission. ExistingAttachment is set
// by the live validation while editing an operation that already carries
// a justificatif; on PUT the server reads the stored record instead.
// Status is honored on edits only; empty keeps the stored status.
type SubmitRequest struct {
	Draft              DraftRequest `json:"draft"`
	ExistingAttachment bool         `json:"existing_attachment,omitempty"`
	Status             string       `json:"status,omitempty"`
}

// toDraft converts the raw form input. Unparseable dates cannot be
// carried into the draft, so they come back in the second return value
// keyed by field; handlers merge them into the evaluation response.
func (d DraftRequest) toDraft() (compliance.OperationDraft, map[string]string) {
	formErrs := map[string]string{}
	draft := compliance.OperationDraft{
		Kind:                      compliance.Kind(d.Kind),
		Amount:                    d.Amount,
		Category:                  compliance.Category(d.Category),
		PaymentMode:               compliance.PaymentMode(d.PaymentMode),
		Beneficiary:               d.Beneficiary,
		BankStatementRef:          d.BankStatementRef,
		IsCollection:              d.IsCollection,
		AssociatedExpenseCategory: compliance.Category(d.AssociatedExpenseCategory),
		Comment:                   d.Comment,
	}

	if d.Date != "" {
		if parsed, err := compliance.ParseDate(d.Date); err == nil {
			draft.Date = parsed
		} else {
			formErrs[string(compliance.FieldDate)] = msgInvalidDate
		}
	}

	if d.Donor != nil {
		draft.Donor = &compliance.Donor{
			LastName:      d.Donor.LastName,
			FirstName:     d.Donor.FirstName,
			Nationality:   compliance.Nationality(d.Donor.Nationality),
			Address:       d.Donor.Address,
			PostalCode:    d.Donor.PostalCode,
			City:          d.Donor.City,
			Country:       d.Donor.Country,
			ReceiptNumber: d.Donor.ReceiptNumber,
		}
	}
	if d.Collection != nil {
		coll := &compliance.Collection{Organization: d.Collection.Organization}
		if d.Collection.Date != "" {
			if parsed, err := compliance.ParseDate(d.Collection.Date); err == nil {
				coll.Date = parsed
			} else {
				formErrs[string(compliance.FieldCollectionDate)] = msgInvalidDate
			}
		}
		draft.Collection = coll
	}
	if d.Party != nil {
		draft.Party = &compliance.Party{
			Name:       d.Party.Name,
			Address:    d.Party.Address,
			PostalCode: d.Party.PostalCode,
			City:       d.Party.City,
			SIRET:      d.Party.SIRET,
			RNA:        d.Party.RNA,
		}
	}
	if d.Attachment != nil {
		draft.Attachment = &compliance.Attachment{
			Path:     d.Attachment.Path,
			FileName: d.Attachment.FileName,
		}
	}
	return draft, formErrs
}

// msgInvalidDate distinguishes a malformed date from a missing one, the
// same way amount surfaces unparseable input as its own message.
const msgInvalidDate = "invalid date format (use YYYY-MM-DD)"

// =============================================================================
// EVALUATION
// =============================================================================

// WarningsDTO carries the advisory declaration warnings.
type WarningsDTO struct {
	DonationCashOver150            bool `json:"donation_cash_over_150"`
	DonationOver3000               bool `json:"donation_over_3000"`
	CandidateContributionOver10000 bool `json:"candidate_contribution_over_10000"`
}

// SectionsDTO tells the form which sections to render.
type SectionsDTO struct {
	PaymentMode        bool `json:"payment_mode"`
	BankStatementRef   bool `json:"bank_statement_ref"`
	Beneficiary        bool `json:"beneficiary"`
	Donor              bool `json:"donor"`
	Collection         bool `json:"collection"`
	Party              bool `json:"party"`
	AssociatedCategory bool `json:"associated_category"`
	Attachment         bool `json:"attachment"`
}

// EvaluationDTO is the live validation response.
type EvaluationDTO struct {
	Errors        map[string]string `json:"errors"`
	Warnings      WarningsDTO       `json:"warnings"`
	Sections      SectionsDTO       `json:"sections"`
	SubmitBlocked bool              `json:"submit_blocked"`
}

// evaluationWithFormErrors merges request-level parse failures into the
// engine's evaluation. Any form error blocks submission.
func evaluationWithFormErrors(ev compliance.Evaluation, formErrs map[string]string) EvaluationDTO {
	dto := toEvaluationDTO(ev)
	for field, msg := range formErrs {
		dto.Errors[field] = msg
	}
	if len(formErrs) > 0 {
		dto.SubmitBlocked = true
	}
	return dto
}

func toEvaluationDTO(ev compliance.Evaluation) EvaluationDTO {
	errs := make(map[string]string, len(ev.Errors))
	for field, msg := range ev.Errors {
		errs[string(field)] = msg
	}
	return EvaluationDTO{
		Errors:        errs,
		Warnings:      toWarningsDTO(ev.Warnings),
		Sections:      toSectionsDTO(ev.Sections),
		SubmitBlocked: ev.SubmitBlocked(),
	}
}

func toWarningsDTO(w compliance.Warnings) WarningsDTO {
	return WarningsDTO{
		DonationCashOver150:            w.DonationCashOver150,
		DonationOver3000:               w.DonationOver3000,
		CandidateContributionOver10000: w.CandidateContributionOver10000,
	}
}

func toSectionsDTO(s compliance.Sections) SectionsDTO {
	return SectionsDTO{
		PaymentMode:        s.NeedsPaymentMode,
		BankStatementRef:   s.NeedsBankStatementRef,
		Beneficiary:        s.NeedsBeneficiary,
		Donor:              s.NeedsDonor,
		Collection:         s.NeedsCollection,
		Party:              s.NeedsParty,
		AssociatedCategory: s.NeedsAssociatedCategory,
		Attachment:         s.NeedsAttachment,
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// OperationDTO represents a persisted operation.
type OperationDTO struct {
	ID               string         `json:"id"`
	CampaignID       string         `json:"campaign_id"`
	PairID           string         `json:"pair_id,omitempty"`
	Kind             string         `json:"kind"`
	Date             string         `json:"date"`
	Amount           string         `json:"amount"`
	Category         string         `json:"category"`
	AccountCode      string         `json:"account_code"`
	PaymentMode      string         `json:"payment_mode"`
	BankStatementRef *string        `json:"bank_statement_ref"`
	Beneficiary      string         `json:"beneficiary,omitempty"`
	IsCollection     bool           `json:"is_collection,omitempty"`
	Donor            *DonorDTO      `json:"donor,omitempty"`
	Collection       *CollectionDTO `json:"collection,omitempty"`
	Party            *PartyDTO      `json:"party,omitempty"`
	Attachment       *AttachmentDTO `json:"attachment,omitempty"`
	Comment          string         `json:"comment,omitempty"`
	Status           string         `json:"status"`
	CreatedAt        string         `json:"created_at,omitempty"`
}

// SubmitResponse returns the persisted operations (two for a mirrored
// pair) and any advisory warnings.
type SubmitResponse struct {
	Operations []OperationDTO `json:"operations"`
	Warnings   WarningsDTO    `json:"warnings"`
}

func toOperationDTO(op campaign.Operation) OperationDTO {
	dto := OperationDTO{
		ID:               string(op.ID),
		CampaignID:       string(op.CampaignID),
		PairID:           op.PairID,
		Kind:             string(op.Kind),
		Date:             op.Date.String(),
		Amount:           op.Amount.String(),
		Category:         string(op.Category),
		AccountCode:      op.AccountCode,
		PaymentMode:      string(op.PaymentMode),
		BankStatementRef: op.BankStatementRef,
		Beneficiary:      op.Beneficiary,
		IsCollection:     op.IsCollection,
		Comment:          op.Comment,
		Status:           string(op.Status),
		CreatedAt:        op.CreatedAt.Format(time.RFC3339),
	}
	if op.Donor != nil {
		dto.Donor = &DonorDTO{
			LastName:      op.Donor.LastName,
			FirstName:     op.Donor.FirstName,
			Nationality:   string(op.Donor.Nationality),
			Address:       op.Donor.Address,
			PostalCode:    op.Donor.PostalCode,
			City:          op.Donor.City,
			Country:       op.Donor.Country,
			ReceiptNumber: op.Donor.ReceiptNumber,
		}
	}
	if op.Collection != nil {
		dto.Collection = &CollectionDTO{
			Date:         op.Collection.Date.String(),
			Organization: op.Collection.Organization,
		}
	}
	if op.Party != nil {
		dto.Party = &PartyDTO{
			Name:       op.Party.Name,
			Address:    op.Party.Address,
			PostalCode: op.Party.PostalCode,
			City:       op.Party.City,
			SIRET:      op.Party.SIRET,
			RNA:        op.Party.RNA,
		}
	}
	if op.Attachment != nil {
		dto.Attachment = &AttachmentDTO{
			Path:     op.Attachment.Path,
			FileName: op.Attachment.FileName,
		}
	}
	return dto
}

// =============================================================================
// TOTALS
// =============================================================================

// CategoryTotalDTO is one line of the per-category breakdown.
type CategoryTotalDTO struct {
	Category    string `json:"category"`
	AccountCode string `json:"account_code"`
	Label       string `json:"label"`
	Total       string `json:"total"`
	Count       int    `json:"count"`
}

// TotalsDTO is the dashboard aggregate for a campaign.
type TotalsDTO struct {
	Receipts          string             `json:"receipts"`
	Expenses          string             `json:"expenses"`
	Net               string             `json:"net"`
	ByReceiptCategory []CategoryTotalDTO `json:"by_receipt_category"`
	ByExpenseCategory []CategoryTotalDTO `json:"by_expense_category"`
	Plafond           string             `json:"plafond"`
	PlafondRatio      string             `json:"plafond_ratio"`
	OverPlafond       bool               `json:"over_plafond"`
	PendingCount      int                `json:"pending_count"`
	ApprovedCount     int                `json:"approved_count"`
}

func toTotalsDTO(t campaign.Totals) TotalsDTO {
	return TotalsDTO{
		Receipts:          t.Receipts.String(),
		Expenses:          t.Expenses.String(),
		Net:               t.Net.String(),
		ByReceiptCategory: toCategoryTotalDTOs(t.ByReceiptCategory),
		ByExpenseCategory: toCategoryTotalDTOs(t.ByExpenseCategory),
		Plafond:           t.Plafond.String(),
		PlafondRatio:      t.PlafondRatio.String(),
		OverPlafond:       t.OverPlafond,
		PendingCount:      t.PendingCount,
		ApprovedCount:     t.ApprovedCount,
	}
}

func toCategoryTotalDTOs(totals []campaign.CategoryTotal) []CategoryTotalDTO {
	out := make([]CategoryTotalDTO, len(totals))
	for i, ct := range totals {
		out[i] = CategoryTotalDTO{
			Category:    string(ct.Category),
			AccountCode: ct.AccountCode,
			Label:       ct.Label,
			Total:       ct.Total.String(),
			Count:       ct.Count,
		}
	}
	return out
}

// =============================================================================
// CATALOG
// =============================================================================

// CatalogEntryDTO is one selectable category.
type CatalogEntryDTO struct {
	Category    string `json:"category"`
	Label       string `json:"label"`
	AccountCode string `json:"account_code"`
	Group       string `json:"group,omitempty"`
}

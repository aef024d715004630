/*
handlers.go - HTTP API handlers for the campaign ledger

PURPOSE:
  Exposes the compliance engine and the campaign ledger via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Campaigns:
    GET    /api/campaigns                     List campaigns
    POST   /api/campaigns                     Create campaign
    GET    /api/campaigns/{id}                Get campaign
    GET    /api/campaigns/{id}/totals         Dashboard totals
    GET    /api/campaigns/{id}/export         CSV export (export.go)

  Operations:
    GET    /api/campaigns/{id}/operations     List (kind/category/status filters)
    POST   /api/campaigns/{id}/operations     Submit a draft
    POST   /api/campaigns/{id}/validate       Live draft validation
    GET    /api/operations/{id}               Get operation
    PUT    /api/operations/{id}               Edit in place (pair-aware)
    DELETE /api/operations/{id}               Delete (pairs go together)
    POST   /api/operations/{id}/approve       Accountant approval
    POST   /api/operations/{id}/reject        Accountant rejection

  Reference data:
    GET    /api/catalog/{kind}                Selectable categories

  Uploads:
    POST   /api/uploads                       Multipart justificatif upload

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed request
  - 403: Role not allowed
  - 404: Resource not found
  - 422: Draft rejected by the rules; body carries the field errors
  - 500: Internal errors, including unbalanced pair persistence

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Authentication middleware, role gates
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/compliance"
	"github.com/quitus/campaign-ledger/logger"
)

// maxUploadBytes bounds justificatif uploads (scanned invoices, receipts).
const maxUploadBytes = 20 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Campaigns  campaign.CampaignStore
	Operations campaign.OperationStore
	Submission *campaign.SubmissionService
	Log        zerolog.Logger
}

// NewHandler creates a new handler.
func NewHandler(campaigns campaign.CampaignStore, operations campaign.OperationStore, submission *campaign.SubmissionService, log zerolog.Logger) *Handler {
	return &Handler{
		Campaigns:  campaigns,
		Operations: operations,
		Submission: submission,
		Log:        log,
	}
}

// =============================================================================
// CAMPAIGN HANDLERS
// =============================================================================

// ListCampaigns returns all campaigns.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Campaigns.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list campaigns", err)
		return
	}

	dtos := make([]CampaignDTO, len(campaigns))
	for i, c := range campaigns {
		dtos[i] = toCampaignDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCampaign creates or updates a campaign account.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := compliance.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := compliance.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "Campaign end precedes start", nil)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Campaign name is required", nil)
		return
	}

	plafond := decimal.Zero
	if req.Plafond != "" {
		if plafond, err = decimal.NewFromString(req.Plafond); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid plafond amount", err)
			return
		}
	}

	id := campaign.CampaignID(req.ID)
	if id == "" {
		id = campaign.CampaignID(uuid.NewString())
	}

	c := campaign.Campaign{
		ID:           id,
		Name:         req.Name,
		CandidateID:  campaign.UserID(req.CandidateID),
		MandataireID: campaign.UserID(req.MandataireID),
		Start:        start,
		End:          end,
		Plafond:      plafond,
	}
	if err := h.Campaigns.SaveCampaign(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save campaign", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampaignDTO(c))
}

// GetCampaign returns a single campaign.
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCampaign(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCampaignDTO(*c))
}

// GetTotals returns the dashboard aggregate for a campaign.
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCampaign(w, r)
	if !ok {
		return
	}

	ops, err := h.Operations.ListOperations(r.Context(), c.ID, campaign.OperationFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list operations", err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(campaign.ComputeTotals(ops, c.Plafond)))
}

// =============================================================================
// OPERATION HANDLERS
// =============================================================================

// ListOperations returns a campaign's operations, optionally filtered by
// kind, category or status query parameters.
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCampaign(w, r)
	if !ok {
		return
	}

	filter := campaign.OperationFilter{
		Kind:     compliance.Kind(r.URL.Query().Get("kind")),
		Category: compliance.Category(r.URL.Query().Get("category")),
		Status:   compliance.ValidationStatus(r.URL.Query().Get("status")),
	}

	ops, err := h.Operations.ListOperations(r.Context(), c.ID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list operations", err)
		return
	}

	dtos := make([]OperationDTO, len(ops))
	for i, op := range ops {
		dtos[i] = toOperationDTO(op)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ValidateDraft evaluates a draft without persisting anything. Drives the
// form's live feedback.
func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCampaign(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft, formErrs := req.Draft.toDraft()
	ev := compliance.Evaluate(draft, c.Context(req.ExistingAttachment))
	writeJSON(w, http.StatusOK, evaluationWithFormErrors(ev, formErrs))
}

// SubmitOperation accepts a draft and persists the resulting record(s).
func (h *Handler) SubmitOperation(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCampaign(w, r)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft, formErrs := req.Draft.toDraft()
	if len(formErrs) > 0 {
		ev := compliance.Evaluate(draft, c.Context(req.ExistingAttachment))
		writeJSON(w, http.StatusUnprocessableEntity, evaluationWithFormErrors(ev, formErrs))
		return
	}

	ops, err := h.Submission.Submit(r.Context(), *c, callerID(r), draft, req.ExistingAttachment, "")
	if err != nil {
		var rejected *compliance.RejectedError
		if errors.As(err, &rejected) {
			ev := compliance.Evaluate(draft, c.Context(req.ExistingAttachment))
			writeJSON(w, http.StatusUnprocessableEntity, toEvaluationDTO(ev))
			return
		}
		if errors.Is(err, campaign.ErrUnbalancedPair) {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Str("campaign_id", string(c.ID)).Msg("pair persistence left books unbalanced")
			writeError(w, http.StatusInternalServerError, "Pair persistence failed, manual reconciliation needed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit operation", err)
		return
	}

	dtos := make([]OperationDTO, len(ops))
	for i, op := range ops {
		dtos[i] = toOperationDTO(op)
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{
		Operations: dtos,
		Warnings:   toWarningsDTO(compliance.WarningsFor(draft)),
	})
}

// EditOperation re-runs the rules on an edited draft and persists it in
// place of the stored operation. The stored justificatif satisfies the
// attachment rule unless the edit replaces it. Status comes from the
// request; empty keeps the stored value.
func (h *Handler) EditOperation(w http.ResponseWriter, r *http.Request) {
	op, ok := h.loadOperation(w, r)
	if !ok {
		return
	}

	c, err := h.Campaigns.GetCampaign(r.Context(), op.CampaignID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load campaign", err)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := compliance.ValidationStatus(req.Status)
	switch status {
	case "", compliance.StatusPending, compliance.StatusApproved, compliance.StatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	draft, formErrs := req.Draft.toDraft()
	hasStored := op.Record.Attachment != nil
	if len(formErrs) > 0 {
		ev := compliance.Evaluate(draft, c.Context(hasStored))
		writeJSON(w, http.StatusUnprocessableEntity, evaluationWithFormErrors(ev, formErrs))
		return
	}

	ops, err := h.Submission.Update(r.Context(), *c, *op, draft, status)
	if err != nil {
		var rejected *compliance.RejectedError
		if errors.As(err, &rejected) {
			ev := compliance.Evaluate(draft, c.Context(hasStored))
			writeJSON(w, http.StatusUnprocessableEntity, toEvaluationDTO(ev))
			return
		}
		if errors.Is(err, campaign.ErrUnbalancedPair) {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Str("operation_id", string(op.ID)).Msg("pair update left books unbalanced")
			writeError(w, http.StatusInternalServerError, "Pair update failed, manual reconciliation needed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update operation", err)
		return
	}

	dtos := make([]OperationDTO, len(ops))
	for i, o := range ops {
		dtos[i] = toOperationDTO(o)
	}
	writeJSON(w, http.StatusOK, SubmitResponse{
		Operations: dtos,
		Warnings:   toWarningsDTO(compliance.WarningsFor(draft)),
	})
}

// GetOperation returns a single operation.
func (h *Handler) GetOperation(w http.ResponseWriter, r *http.Request) {
	op, ok := h.loadOperation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toOperationDTO(*op))
}

// DeleteOperation removes an operation; pair halves are removed together.
func (h *Handler) DeleteOperation(w http.ResponseWriter, r *http.Request) {
	op, ok := h.loadOperation(w, r)
	if !ok {
		return
	}

	if err := h.Submission.Delete(r.Context(), *op); err != nil {
		if errors.Is(err, campaign.ErrUnbalancedPair) {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Str("operation_id", string(op.ID)).Msg("pair delete left books unbalanced")
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete operation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveOperation marks an operation approved.
func (h *Handler) ApproveOperation(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, compliance.StatusApproved)
}

// RejectOperation marks an operation rejected. Rejected operations stay
// visible but drop out of the totals.
func (h *Handler) RejectOperation(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, compliance.StatusRejected)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, status compliance.ValidationStatus) {
	id := campaign.OperationID(chi.URLParam(r, "id"))
	if err := h.Operations.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, campaign.ErrOperationNotFound) {
			writeError(w, http.StatusNotFound, "Operation not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update status", err)
		return
	}

	op, err := h.Operations.GetOperation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload operation", err)
		return
	}
	writeJSON(w, http.StatusOK, toOperationDTO(*op))
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

// ListCatalog returns the selectable categories for a kind, in account
// code order.
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	kind := compliance.Kind(chi.URLParam(r, "kind"))
	if kind != compliance.Receipt && kind != compliance.Expense {
		writeError(w, http.StatusBadRequest, "Kind must be receipt or expense", nil)
		return
	}

	entries := compliance.Categories(kind)
	dtos := make([]CatalogEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = CatalogEntryDTO{
			Category:    string(e.Category),
			Label:       e.Label,
			AccountCode: e.AccountCode,
			Group:       e.Group,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// UPLOADS
// =============================================================================

// UploadAttachment stores a justificatif and returns the reference the
// draft should carry. Upload completes before the draft referencing it is
// submitted.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field", err)
		return
	}
	defer file.Close()

	att, err := h.Submission.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store justificatif", err)
		return
	}
	writeJSON(w, http.StatusCreated, AttachmentDTO{Path: att.Path, FileName: att.FileName})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadCampaign(w http.ResponseWriter, r *http.Request) (*campaign.Campaign, bool) {
	id := campaign.CampaignID(chi.URLParam(r, "id"))
	c, err := h.Campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrCampaignNotFound) {
			writeError(w, http.StatusNotFound, "Campaign not found", nil)
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get campaign", err)
		return nil, false
	}
	return c, true
}

func (h *Handler) loadOperation(w http.ResponseWriter, r *http.Request) (*campaign.Operation, bool) {
	id := campaign.OperationID(chi.URLParam(r, "id"))
	op, err := h.Operations.GetOperation(r.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrOperationNotFound) {
			writeError(w, http.StatusNotFound, "Operation not found", nil)
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get operation", err)
		return nil, false
	}
	return op, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

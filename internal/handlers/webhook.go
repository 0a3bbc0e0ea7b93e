// Package handlers provides HTTP handlers for the lead relay.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bitrix-lead-relay/internal/cache"
	"bitrix-lead-relay/internal/mapping"
	"bitrix-lead-relay/internal/middleware"
	"bitrix-lead-relay/internal/models"
	"bitrix-lead-relay/internal/services/bitrix"
	"bitrix-lead-relay/internal/utils"
)

// HeaderSignature carries the hex HMAC-SHA256 of the raw request body.
const HeaderSignature = "X-Webhook-Signature"

// maxBodyBytes caps inbound webhook bodies.
const maxBodyBytes = 1 << 20

// Relay stages, attached to log lines as the request advances.
const (
	stageReceived  = "received"
	stageValidated = "validated"
	stageMapped    = "mapped"
	stageForwarded = "forwarded"
)

// LeadCreator is the upstream collaborator the relay forwards records to.
type LeadCreator interface {
	AddLead(ctx context.Context, fields map[string]interface{}) (*bitrix.LeadResult, error)
}

// WebhookHandler relays call-center webhook events to the CRM: it
// authenticates the delivery, validates the payload shape, maps the
// document through the lead table and forwards the record upstream.
type WebhookHandler struct {
	table  mapping.Table
	crm    LeadCreator
	secret string
	guard  *cache.Guard
}

// NewWebhookHandler creates the relay handler. An empty secret disables
// signature checks; a nil guard disables duplicate-delivery checks.
func NewWebhookHandler(table mapping.Table, crm LeadCreator, secret string, guard *cache.Guard) *WebhookHandler {
	return &WebhookHandler{
		table:  table,
		crm:    crm,
		secret: secret,
		guard:  guard,
	}
}

// Handle serves POST /webhook, the signed production entrypoint. The body
// is captured raw before parsing: the signature covers the exact bytes
// received, not a re-serialization.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger()
	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("webhook rejected: unreadable body",
			utils.String("requestId", requestID),
			utils.Error(err))
		writeJSON(w, http.StatusBadRequest, models.RelayResponse{Success: false, Error: "failed to read request body"})
		return
	}

	if h.secret != "" {
		provided := r.Header.Get(HeaderSignature)
		if provided == "" {
			logger.Warn("webhook rejected: no signature",
				utils.String("requestId", requestID))
			writeJSON(w, http.StatusUnauthorized, models.RelayResponse{Success: false, Error: models.ErrMissingSignature.Error()})
			return
		}
		if !utils.VerifySignature(h.secret, body, provided) {
			logger.Warn("webhook rejected: signature mismatch",
				utils.String("requestId", requestID))
			writeJSON(w, http.StatusUnauthorized, models.RelayResponse{Success: false, Error: models.ErrBadSignature.Error()})
			return
		}
	}

	h.relay(w, r, body)
}

// HandleTest serves POST /test/bitrix/lead: identical to Handle from
// validation onward, with no signature check. main mounts it only outside
// production.
func (h *WebhookHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.RelayResponse{Success: false, Error: "failed to read request body"})
		return
	}

	h.relay(w, r, body)
}

// relay runs the shared pipeline: parse, validate, map, forward, respond.
func (h *WebhookHandler) relay(w http.ResponseWriter, r *http.Request, body []byte) {
	logger := utils.GetLogger()
	requestID := middleware.GetRequestID(r.Context())

	logger.Debug("webhook received",
		utils.String("stage", stageReceived),
		utils.String("requestId", requestID),
		utils.Int("bytes", len(body)))

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		logger.Warn("webhook rejected: body is not valid JSON",
			utils.String("requestId", requestID),
			utils.Error(err))
		writeJSON(w, http.StatusBadRequest, models.RelayResponse{Success: false, Error: "request body is not valid JSON"})
		return
	}

	if err := models.ValidateEvent(doc); err != nil {
		logger.Warn("webhook rejected: payload incomplete",
			utils.String("requestId", requestID),
			utils.Error(err))
		writeJSON(w, http.StatusBadRequest, models.RelayResponse{Success: false, Error: err.Error()})
		return
	}
	logger.Debug("webhook validated",
		utils.String("stage", stageValidated),
		utils.String("requestId", requestID))

	if h.guard != nil {
		if fingerprint := cache.Fingerprint(doc); h.guard.Seen(fingerprint) {
			logger.Warn("webhook rejected: duplicate delivery",
				utils.String("requestId", requestID),
				utils.String("fingerprint", fingerprint))
			writeJSON(w, http.StatusConflict, models.RelayResponse{Success: false, Error: models.ErrDuplicateEvent.Error()})
			return
		}
	}

	record, fieldErrs := mapping.Apply(doc, h.table)
	for _, fieldErr := range fieldErrs {
		logger.Warn("lead field skipped",
			utils.String("requestId", requestID),
			utils.Error(fieldErr))
	}
	if len(record) == 0 {
		logger.Error("mapping produced no fields",
			utils.String("requestId", requestID))
		writeJSON(w, http.StatusInternalServerError, models.RelayResponse{Success: false, Error: models.ErrEmptyRecord.Error()})
		return
	}
	logger.Debug("webhook mapped",
		utils.String("stage", stageMapped),
		utils.String("requestId", requestID),
		utils.Int("fields", len(record)))

	// The CRM call may finish even when the vendor hangs up early; the
	// client timeout still bounds it.
	result, err := h.crm.AddLead(context.WithoutCancel(r.Context()), record)
	if err != nil {
		logger.Error("lead forwarding failed",
			utils.String("requestId", requestID),
			utils.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.RelayResponse{Success: false, Error: upstreamMessage(err)})
		return
	}

	logger.Info("lead created",
		utils.String("stage", stageForwarded),
		utils.String("requestId", requestID),
		utils.Int64("leadId", result.ID),
		utils.Int("fields", len(record)))

	writeJSON(w, http.StatusOK, models.RelayResponse{Success: true, LeadID: result.ID, Data: result.Raw})
}

// upstreamMessage picks the caller-visible message for a forwarding
// failure. CRM application errors quote the CRM's own description; every
// other failure gets a fixed message, because transport errors embed the
// token-bearing webhook URL.
func upstreamMessage(err error) string {
	var apiErr *bitrix.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, models.ErrUpstreamNotSet) {
		return models.ErrUpstreamNotSet.Error()
	}
	return "failed to submit lead to CRM"
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type NominationHandler struct {
	service ports.NominationService
}

func NewNominationHandler(service ports.NominationService) *NominationHandler {
	return &NominationHandler{
		service: service,
	}
}

type nominateRequest struct {
	Receiver      ports.ReceiverInput   `json:"receiver"`
	NominatedBy   string                `json:"nominatedBy"`
	Description   string                `json:"description"`
	ImpactMetrics []domain.ImpactMetric `json:"impactMetrics,omitempty"`
	Signature     string                `json:"signature"`
	SignedAt      time.Time             `json:"date"`
}

func (h *NominationHandler) Nominate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req nominateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	nomination, err := h.service.Nominate(r.Context(), ports.NominateInput{
		VotingRoundID: id,
		Receiver:      req.Receiver,
		NominatedBy:   req.NominatedBy,
		Description:   req.Description,
		ImpactMetrics: req.ImpactMetrics,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(nomination)
}

type setNominationStatusesRequest struct {
	Updates   []ports.NominationStatusUpdateInput `json:"updates"`
	Signature string                              `json:"signature"`
	SignedAt  time.Time                           `json:"date"`
}

func (h *NominationHandler) SetStatuses(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req setNominationStatusesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetNominationStatuses(r.Context(), ports.SetNominationStatusesInput{
		VotingRoundID: id,
		Updates:       req.Updates,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

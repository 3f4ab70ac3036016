package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/ports"
)

type VotingRoundHandler struct {
	service ports.VotingRoundService
}

func NewVotingRoundHandler(service ports.VotingRoundService) *VotingRoundHandler {
	return &VotingRoundHandler{
		service: service,
	}
}

type createVotingRoundRequest struct {
	ChainID            int64                 `json:"chainId"`
	Publisher          string                `json:"publisher"`
	VotingStartsAt     time.Time             `json:"votingStartsAt"`
	VotingEndsAt       time.Time             `json:"votingEndsAt"`
	NominationStartsAt *time.Time            `json:"nominationStartsAt,omitempty"`
	NominationEndsAt   *time.Time            `json:"nominationEndsAt,omitempty"`
	DripListID         *string               `json:"dripListId,omitempty"`
	Name               *string               `json:"name,omitempty"`
	Description        *string               `json:"description,omitempty"`
	AreVotesPrivate    bool                  `json:"areVotesPrivate"`
	Collaborators      []string              `json:"collaborators"`
	AllowedReceivers   []ports.ReceiverInput `json:"allowedReceivers,omitempty"`
	Signature          string                `json:"signature"`
	SignedAt           time.Time             `json:"date"`
}

func (h *VotingRoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVotingRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	round, err := h.service.Create(r.Context(), ports.CreateVotingRoundInput{
		ChainID:            req.ChainID,
		Publisher:          req.Publisher,
		VotingStartsAt:     req.VotingStartsAt,
		VotingEndsAt:       req.VotingEndsAt,
		NominationStartsAt: req.NominationStartsAt,
		NominationEndsAt:   req.NominationEndsAt,
		DripListID:         req.DripListID,
		Name:               req.Name,
		Description:        req.Description,
		AreVotesPrivate:    req.AreVotesPrivate,
		Collaborators:      req.Collaborators,
		AllowedReceivers:   req.AllowedReceivers,
		Signature:          req.Signature,
		SignedAt:           req.SignedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"newVotingRoundId": round.ID.String()})
}

func (h *VotingRoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

type deleteVotingRoundRequest struct {
	Signature string    `json:"signature"`
	SignedAt  time.Time `json:"date"`
}

func (h *VotingRoundHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req deleteVotingRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), ports.DeleteVotingRoundInput{
		VotingRoundID: id,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type linkVotingRoundRequest struct {
	DripListID          string    `json:"dripListId"`
	SafeTransactionHash *string   `json:"safeTransactionHash,omitempty"`
	Signature           string    `json:"signature"`
	SignedAt            time.Time `json:"date"`
}

func (h *VotingRoundHandler) Link(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req linkVotingRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Link(r.Context(), ports.LinkVotingRoundInput{
		VotingRoundID:       id,
		DripListID:          req.DripListID,
		SafeTransactionHash: req.SafeTransactionHash,
		Signature:           req.Signature,
		SignedAt:            req.SignedAt,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *VotingRoundHandler) RefreshLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	if err := h.service.CompletePendingLink(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

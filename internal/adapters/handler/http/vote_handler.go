package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type castVoteRequest struct {
	Collaborator string                `json:"collaboratorAddress"`
	Receivers    []ports.ReceiverInput `json:"receivers"`
	Signature    string                `json:"signature"`
	SignedAt     time.Time             `json:"date"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	vote, err := h.service.CastVote(r.Context(), ports.CastVoteInput{
		VotingRoundID: id,
		Collaborator:  req.Collaborator,
		Receivers:     req.Receivers,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(vote)
}

type revealRequest struct {
	Signature string    `json:"signature"`
	SignedAt  time.Time `json:"date"`
}

func (h *VoteHandler) RevealVotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	votes, err := h.service.RevealVotes(r.Context(), ports.RevealInput{
		VotingRoundID: id,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"votes": votes})
}

func (h *VoteHandler) RevealResult(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid voting round id", http.StatusBadRequest)
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.RevealResult(r.Context(), ports.RevealInput{
		VotingRoundID: id,
		Signature:     req.Signature,
		SignedAt:      req.SignedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"result": result})
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/MichaelPain/FutHaxball-sub001/middleware"
	"github.com/MichaelPain/FutHaxball-sub001/services"
)

type ParticipantHandler struct {
	tournamentService services.TournamentService
}

func NewParticipantHandler(ts services.TournamentService) *ParticipantHandler {
	return &ParticipantHandler{tournamentService: ts}
}

type registerParticipantRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TeamID string `json:"teamId"`
	Seed   int    `json:"seed"`
}

// RegisterHandler handles POST /tournaments/{tournamentID}/participants.
// Without an explicit id the caller registers themselves.
func (h *ParticipantHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req registerParticipantRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		userID, err := middleware.GetUserIDFromContext(r.Context())
		if err != nil {
			unauthorizedResponse(w, r, "authentication required")
			return
		}
		req.ID = userID
	}

	participant, err := h.tournamentService.RegisterParticipant(r.Context(), tournamentID, services.RegisterParticipantInput{
		ID:     req.ID,
		Name:   req.Name,
		TeamID: req.TeamID,
		Seed:   req.Seed,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckInHandler handles POST /tournaments/{tournamentID}/participants/{participantID}/check-in
func (h *ParticipantHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, participantID, ok := participantPath(w, r)
	if !ok {
		return
	}

	participant, err := h.tournamentService.CheckIn(r.Context(), tournamentID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DisqualifyHandler handles POST /tournaments/{tournamentID}/participants/{participantID}/disqualify
func (h *ParticipantHandler) DisqualifyHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, participantID, ok := participantPath(w, r)
	if !ok {
		return
	}

	participant, err := h.tournamentService.Disqualify(r.Context(), tournamentID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func participantPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return tournamentID, participantID, true
}

package handlers

import (
	"net/http"

	"github.com/MichaelPain/FutHaxball-sub001/results"
	"github.com/MichaelPain/FutHaxball-sub001/services"
)

type MatchHandler struct {
	tournamentService services.TournamentService
}

func NewMatchHandler(ts services.TournamentService) *MatchHandler {
	return &MatchHandler{tournamentService: ts}
}

type matchResultRequest struct {
	Scores   []int  `json:"scores"`
	WinnerID string `json:"winnerId"`
}

// StartHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/start
func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchPath(w, r)
	if !ok {
		return
	}

	match, err := h.tournamentService.StartMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/result
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchPath(w, r)
	if !ok {
		return
	}

	var req matchResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.tournamentService.SubmitResult(r.Context(), tournamentID, matchID, services.MatchResultInput{
		Scores:   req.Scores,
		WinnerID: req.WinnerID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcomeResponse(outcome), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/cancel
func (h *MatchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, matchID, ok := matchPath(w, r)
	if !ok {
		return
	}

	outcome, err := h.tournamentService.CancelMatch(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcomeResponse(outcome), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func outcomeResponse(o *results.Outcome) jsonResponse {
	resp := jsonResponse{
		"match":         o.Match,
		"stageResolved": o.StageResolved,
	}
	if o.Next != nil {
		resp["nextMatch"] = o.Next
	}
	return resp
}

func matchPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return tournamentID, matchID, true
}

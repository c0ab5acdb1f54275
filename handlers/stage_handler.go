package handlers

import (
	"net/http"

	"github.com/MichaelPain/FutHaxball-sub001/services"
)

type StageHandler struct {
	tournamentService services.TournamentService
}

func NewStageHandler(ts services.TournamentService) *StageHandler {
	return &StageHandler{tournamentService: ts}
}

// AddHandler handles POST /tournaments/{tournamentID}/stages
func (h *StageHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req stageRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.tournamentService.AddStage(r.Context(), tournamentID, req.spec())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateHandler handles POST /tournaments/{tournamentID}/stages/{order}/generate
func (h *StageHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	order, err := getIntFromURL(r, "order")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.tournamentService.GenerateStage(r.Context(), tournamentID, order)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /tournaments/{tournamentID}/stages/{stageID}/standings
func (h *StageHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, stageID, ok := stagePath(w, r)
	if !ok {
		return
	}

	standings, err := h.tournamentService.Standings(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler handles POST /tournaments/{tournamentID}/stages/{stageID}/complete
func (h *StageHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, stageID, ok := stagePath(w, r)
	if !ok {
		return
	}

	done, err := h.tournamentService.CompleteStage(r.Context(), tournamentID, stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{
		"stage":               done.Stage,
		"qualifiers":          done.Qualifiers,
		"tournamentCompleted": done.TournamentCompleted,
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func stagePath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return "", "", false
	}
	return tournamentID, stageID, true
}

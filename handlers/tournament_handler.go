package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MichaelPain/FutHaxball-sub001/engine"
	"github.com/MichaelPain/FutHaxball-sub001/models"
	"github.com/MichaelPain/FutHaxball-sub001/repositories"
	"github.com/MichaelPain/FutHaxball-sub001/services"
)

const defaultListLimit = 20

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type stageRequest struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Format             models.Format        `json:"format"`
	Order              int                  `json:"order"`
	QualificationCount int                  `json:"qualificationCount"`
	Settings           models.StageSettings `json:"settings"`
}

func (s stageRequest) spec() engine.StageSpec {
	return engine.StageSpec{
		ID:                 s.ID,
		Name:               s.Name,
		Format:             s.Format,
		Order:              s.Order,
		QualificationCount: s.QualificationCount,
		Settings:           s.Settings,
	}
}

type createTournamentRequest struct {
	Name                 string         `json:"name"`
	Format               models.Format  `json:"format"`
	MinParticipants      int            `json:"minParticipants"`
	MaxParticipants      int            `json:"maxParticipants"`
	RegistrationClosesAt *time.Time     `json:"registrationClosesAt"`
	Stages               []stageRequest `json:"stages"`
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := services.CreateTournamentInput{
		Name:                 req.Name,
		Format:               req.Format,
		MinParticipants:      req.MinParticipants,
		MaxParticipants:      req.MaxParticipants,
		RegistrationClosesAt: req.RegistrationClosesAt,
	}
	for _, s := range req.Stages {
		input.Stages = append(input.Stages, s.spec())
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments?status=a,b&format=x&limit=n&offset=m
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter
	query := r.URL.Query()

	if statusStr := query.Get("status"); statusStr != "" {
		for _, s := range strings.Split(statusStr, ",") {
			status := models.TournamentStatus(strings.TrimSpace(s))
			if !validStatus(status) {
				badRequestResponse(w, r, errors.New("invalid status query parameter"))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if formatStr := query.Get("format"); formatStr != "" {
		format, err := models.ParseFormat(formatStr)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter.Format = &format
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	} else {
		filter.Limit = defaultListLimit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func validStatus(s models.TournamentStatus) bool {
	switch s {
	case models.StatusDraft, models.StatusRegistration, models.StatusUpcoming,
		models.StatusActive, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

// OpenRegistrationHandler handles POST /tournaments/{tournamentID}/registration/open
func (h *TournamentHandler) OpenRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.tournamentService.OpenRegistration)
}

// CloseRegistrationHandler handles POST /tournaments/{tournamentID}/registration/close
func (h *TournamentHandler) CloseRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.tournamentService.CloseRegistration)
}

// CancelHandler handles POST /tournaments/{tournamentID}/cancel
func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.tournamentService.Cancel)
}

func (h *TournamentHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (*models.Tournament, error)) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := op(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler handles POST /tournaments/{tournamentID}/advance
func (h *TournamentHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	done, started, err := h.tournamentService.Advance(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"startedStage": started}
	if done != nil {
		resp["completedStage"] = done.Stage
		resp["qualifiers"] = done.Qualifiers
		resp["tournamentCompleted"] = done.TournamentCompleted
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

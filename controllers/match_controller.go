package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitalong_server/models"
	"gitalong_server/services"
)

// MatchController handles HTTP requests for match lifecycle
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// HandleListMatches returns the authenticated actor's matches.
func (mc *MatchController) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	matches, err := mc.MatchService.ListForActor(r.Context(), session)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// HandleGetMatch returns one match by id.
func (mc *MatchController) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	match, err := mc.MatchService.Get(r.Context(), session, mux.Vars(r)["matchId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

// HandleSetStatus moves a match between lifecycle statuses.
func (mc *MatchController) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var request struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	match, err := mc.MatchService.SetStatus(r.Context(), session, mux.Vars(r)["matchId"], models.MatchStatus(request.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, match)
}

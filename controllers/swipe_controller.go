package controllers

import (
	"encoding/json"
	"net/http"

	"gitalong_server/models"
	"gitalong_server/services"
)

// SwipeController handles HTTP requests for swipe recording
type SwipeController struct {
	SwipeService *services.SwipeService
}

// NewSwipeController creates a new SwipeController instance
func NewSwipeController(swipeService *services.SwipeService) *SwipeController {
	return &SwipeController{SwipeService: swipeService}
}

// HandleRecordSwipe records a directional swipe from the authenticated
// actor toward a target.
func (sc *SwipeController) HandleRecordSwipe(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var request struct {
		ActorID    string `json:"actorId"`
		TargetID   string `json:"targetId"`
		TargetKind string `json:"targetKind"`
		Direction  string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.ActorID == "" {
		request.ActorID = session.ActorID
	}

	result, err := sc.SwipeService.Record(
		r.Context(),
		session,
		request.ActorID,
		request.TargetID,
		models.TargetKind(request.TargetKind),
		models.SwipeDirection(request.Direction),
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleAcceptContributor records a maintainer's acceptance of an
// interested contributor on behalf of a project.
func (sc *SwipeController) HandleAcceptContributor(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var request struct {
		ProjectID string `json:"projectId"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := sc.SwipeService.RecordAcceptance(r.Context(), session, request.ProjectID, request.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

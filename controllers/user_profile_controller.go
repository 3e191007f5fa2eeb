package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitalong_server/models"
	"gitalong_server/services"
)

// UserProfileController handles profile and project CRUD
type UserProfileController struct {
	ProfileService *services.UserProfileService
}

// NewUserProfileController creates a new UserProfileController instance
func NewUserProfileController(profileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{ProfileService: profileService}
}

// HandleGetProfile returns a profile by actor id.
func (pc *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := pc.ProfileService.GetProfile(r.Context(), mux.Vars(r)["actorId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// HandleUpsertProfile creates or replaces the caller's profile.
func (pc *UserProfileController) HandleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if profile.ActorID == "" {
		profile.ActorID = session.ActorID
	}

	saved, err := pc.ProfileService.UpsertProfile(r.Context(), session, profile)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// HandleDeleteProfile removes the caller's profile.
func (pc *UserProfileController) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	if err := pc.ProfileService.DeleteProfile(r.Context(), session, mux.Vars(r)["actorId"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleGetProject returns a project by id.
func (pc *UserProfileController) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := pc.ProfileService.GetProject(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// HandleUpsertProject creates or replaces a project owned by the
// caller.
func (pc *UserProfileController) HandleUpsertProject(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var project models.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	saved, err := pc.ProfileService.UpsertProject(r.Context(), session, project)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

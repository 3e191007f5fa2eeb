package controllers

import (
	"net/http"
	"strconv"

	"gitalong_server/services"
)

// RecommendationController handles project recommendation requests
type RecommendationController struct {
	RecommendationService *services.RecommendationService
}

// NewRecommendationController creates a new RecommendationController instance
func NewRecommendationController(recommendationService *services.RecommendationService) *RecommendationController {
	return &RecommendationController{RecommendationService: recommendationService}
}

// HandleRecommendProjects returns ranked project recommendations for
// the authenticated actor. The optional `limit` query parameter caps
// the response size.
func (rc *RecommendationController) HandleRecommendProjects(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, services.ErrInvalidArgument)
			return
		}
		limit = parsed
	}

	recommendations, err := rc.RecommendationService.RecommendProjects(r.Context(), session, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recommendations})
}

package routes

import (
	"gitalong_server/controllers"
	"gitalong_server/services"

	"github.com/gorilla/mux"
)

// RegisterRecommendationRoutes sets up the recommendation endpoint under /api/recommendations
func RegisterRecommendationRoutes(r *mux.Router, recommendationService *services.RecommendationService) {
	controller := controllers.NewRecommendationController(recommendationService)

	r.HandleFunc("/api/recommendations", controller.HandleRecommendProjects).Methods("GET")
}

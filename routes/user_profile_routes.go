package routes

import (
	"gitalong_server/controllers"
	"gitalong_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up profile and project CRUD under /api/profiles and /api/projects
func RegisterUserProfileRoutes(r *mux.Router, profileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()
	profileRouter.HandleFunc("", controller.HandleUpsertProfile).Methods("PUT")
	profileRouter.HandleFunc("/{actorId}", controller.HandleGetProfile).Methods("GET")
	profileRouter.HandleFunc("/{actorId}", controller.HandleDeleteProfile).Methods("DELETE")

	projectRouter := r.PathPrefix("/api/projects").Subrouter()
	projectRouter.HandleFunc("", controller.HandleUpsertProject).Methods("PUT")
	projectRouter.HandleFunc("/{projectId}", controller.HandleGetProject).Methods("GET")
}

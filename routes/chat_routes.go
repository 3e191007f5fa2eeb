package routes

import (
	"go.uber.org/zap"

	"gitalong_server/controllers"
	"gitalong_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up message routes under /api/messages and the
// websocket subscription endpoint under /ws
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, log *zap.Logger) {
	controller := controllers.NewChatController(chatService, log)

	chatRouter := r.PathPrefix("/api/messages").Subrouter()
	chatRouter.HandleFunc("", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/read", controller.HandleMarkRead).Methods("POST")

	r.HandleFunc("/ws/conversations/{conversationId}", controller.HandleSubscribe).Methods("GET")
}

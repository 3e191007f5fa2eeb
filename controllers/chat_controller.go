package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gitalong_server/services"
)

// ChatController handles message sending, read receipts and the
// websocket subscription endpoint.
type ChatController struct {
	ChatService *services.ChatService
	Log         *zap.Logger

	upgrader websocket.Upgrader
}

// NewChatController creates a new ChatController instance
func NewChatController(chatService *services.ChatService, log *zap.Logger) *ChatController {
	return &ChatController{
		ChatService: chatService,
		Log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleSendMessage appends a message to a conversation.
func (cc *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var input services.SendInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	msg, err := cc.ChatService.Send(r.Context(), session, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// HandleMarkRead flips the read flag on messages addressed to the
// caller.
func (cc *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	var request struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := cc.ChatService.MarkRead(r.Context(), session, request.ConversationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// HandleSubscribe upgrades to a websocket and streams the conversation
// in order. The optional `since` query parameter is the last-seen
// message cursor; on reconnect the client passes it back and only the
// difference is replayed.
func (cc *ChatController) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromRequest(r)
	if !ok {
		respondError(w, services.ErrUnauthenticated)
		return
	}

	conversationID := mux.Vars(r)["conversationId"]
	since := r.URL.Query().Get("since")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream, err := cc.ChatService.Subscribe(ctx, session, conversationID, since)
	if err != nil {
		respondError(w, err)
		return
	}

	conn, err := cc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if cc.Log != nil {
			cc.Log.Warn("websocket upgrade failed", zap.Error(err))
		}
		return
	}
	defer conn.Close()

	// Drain the client side only to notice the close; sends go through
	// the POST endpoint. A close ends the subscription.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for msg := range stream {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

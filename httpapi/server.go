// Package httpapi is the pull side of the engine: every read model and
// every mutation that does not need a live socket goes through here. All
// /api routes sit behind bearer authentication; the caller identity always
// comes from the verified token, never from the request body.
package httpapi

import (
	"log/slog"
	"net/http"

	"huddle/auth"
	"huddle/services"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var validate = validator.New()

type Server struct {
	log           *slog.Logger
	verifier      auth.Verifier
	chats         *services.ChatService
	reactions     *services.ReactionService
	posts         *services.PostService
	notifications *services.NotificationService
}

func NewServer(log *slog.Logger, verifier auth.Verifier, chats *services.ChatService,
	reactions *services.ReactionService, posts *services.PostService,
	notifications *services.NotificationService) *Server {
	return &Server{
		log:           log,
		verifier:      verifier,
		chats:         chats,
		reactions:     reactions,
		posts:         posts,
		notifications: notifications,
	}
}

// Routes mounts every endpoint on one mux. The websocket handler is mounted
// as-is; it carries its own token check because browsers cannot set headers
// on an upgrade request.
func (s *Server) Routes(ws http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	if ws != nil {
		mux.Handle("GET /ws", ws)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	api := http.NewServeMux()
	api.HandleFunc("GET /api/chats", s.listChats)
	api.HandleFunc("GET /api/chats/{partnerId}", s.getConversation)
	api.HandleFunc("POST /api/chats/{partnerId}/read", s.markRead)
	api.HandleFunc("POST /api/messages", s.sendMessage)
	api.HandleFunc("DELETE /api/messages/{id}", s.removeMessage)
	api.HandleFunc("GET /api/messages/search", s.searchMessages)
	api.HandleFunc("GET /api/posts", s.listPosts)
	api.HandleFunc("POST /api/posts", s.createPost)
	api.HandleFunc("GET /api/posts/{id}", s.getPost)
	api.HandleFunc("POST /api/posts/{id}/react", s.react)
	api.HandleFunc("GET /api/posts/{id}/comments", s.listComments)
	api.HandleFunc("POST /api/posts/{id}/comments", s.addComment)
	api.HandleFunc("GET /api/notifications", s.listNotifications)
	api.HandleFunc("POST /api/notifications/read", s.markNotificationsRead)

	mux.Handle("/api/", requireAuth(s.verifier, api))
	return mux
}

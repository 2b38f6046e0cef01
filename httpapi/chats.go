package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "huddle/errors"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=4000"`
}

type conversationResponse struct {
	PartnerOnline bool         `json:"partner_online"`
	Messages      []messageDTO `json:"messages"`
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.chats.GetRecentChats(userID(r.Context()))
	if err != nil {
		s.log.Error("list chats", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTO(summaries, toConversationDTO))
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	messages, online, err := s.chats.GetConversation(userID(r.Context()), r.PathValue("partnerId"))
	if err != nil {
		s.log.Error("get conversation", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{
		PartnerOnline: online,
		Messages:      mapDTO(messages, toMessageDTO),
	})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.chats.MarkRead(userID(r.Context()), r.PathValue("partnerId")); err != nil {
		s.log.Error("mark read", "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidPayload, err))
		return
	}
	sender := userID(r.Context())
	if req.ReceiverID == sender {
		writeError(w, fmt.Errorf("%w: cannot message yourself", apperrors.ErrInvalidPayload))
		return
	}
	message, err := s.chats.SendMessage(r.Context(), sender, req.ReceiverID, req.Content)
	if err != nil {
		s.log.Error("send message", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageDTO(message))
}

func (s *Server) removeMessage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: malformed message id", apperrors.ErrInvalidPayload))
		return
	}
	if err := s.chats.RemoveMessage(id, userID(r.Context())); err != nil {
		s.log.Error("remove message", "error", err, "message_id", id)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, fmt.Errorf("%w: missing query", apperrors.ErrInvalidPayload))
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, fmt.Errorf("%w: malformed limit", apperrors.ErrInvalidPayload))
			return
		}
		// The index drives a top-N search with this value; cap it so a
		// client cannot ask for an arbitrarily large N.
		limit = min(parsed, maxSearchLimit)
	}
	messages, err := s.chats.SearchMessages(r.Context(), userID(r.Context()), query, limit)
	if err != nil {
		s.log.Error("search messages", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTO(messages, toMessageDTO))
}

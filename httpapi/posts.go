package httpapi

import (
	"fmt"
	"net/http"

	"huddle/domain"
	apperrors "huddle/errors"

	"github.com/google/uuid"
)

type createPostRequest struct {
	Content string `json:"content" validate:"required,max=8000"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type reactRequest struct {
	Reaction string `json:"reaction" validate:"required,oneof=like dislike"`
}

type reactResponse struct {
	Reaction string `json:"reaction"`
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.ListPosts(0)
	if err != nil {
		s.log.Error("list posts", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTO(posts, toPostDTO))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidPayload, err))
		return
	}
	post, err := s.posts.CreatePost(userID(r.Context()), req.Content)
	if err != nil {
		s.log.Error("create post", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostDTO(post))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	post, err := s.posts.GetPost(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post))
}

// react toggles the caller's reaction and answers with the state it landed
// on; an empty reaction means the toggle cleared it.
func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req reactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidPayload, err))
		return
	}
	state, _, err := s.reactions.React(userID(r.Context()), id, domain.ReactionType(req.Reaction))
	if err != nil {
		s.log.Error("react", "error", err, "post_id", id)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reactResponse{Reaction: string(state)})
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := s.posts.ListComments(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTO(comments, toCommentDTO))
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidPayload, err))
		return
	}
	comment, err := s.posts.AddComment(userID(r.Context()), id, req.Content)
	if err != nil {
		s.log.Error("add comment", "error", err, "post_id", id)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", apperrors.ErrInvalidPayload)
	}
	return id, nil
}

package httpapi

import (
	"time"

	"huddle/domain"

	"github.com/samber/lo"
)

type messageDTO struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	Read       bool      `json:"read"`
}

func toMessageDTO(m domain.Message) messageDTO {
	return messageDTO{
		ID:         m.ID.String(),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
		Read:       m.Read,
	}
}

type conversationDTO struct {
	PartnerID     string    `json:"partner_id"`
	LastMessageID string    `json:"last_message_id"`
	LastMessage   string    `json:"last_message"`
	LastSenderID  string    `json:"last_sender_id"`
	LastTimestamp time.Time `json:"last_timestamp"`
	UnreadCount   int       `json:"unread_count"`
}

func toConversationDTO(c domain.ConversationSummary) conversationDTO {
	return conversationDTO{
		PartnerID:     c.PartnerID,
		LastMessageID: c.LastMessageID.String(),
		LastMessage:   c.LastMessage,
		LastSenderID:  c.LastSenderID,
		LastTimestamp: c.LastTimestamp,
		UnreadCount:   c.UnreadCount,
	}
}

type postDTO struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
}

func toPostDTO(p domain.Post) postDTO {
	return postDTO{
		ID:        p.ID.String(),
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Likes:     p.Likes,
		Dislikes:  p.Dislikes,
	}
}

type commentDTO struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentDTO(c domain.Comment) commentDTO {
	return commentDTO{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

type notificationDTO struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func toNotificationDTO(n domain.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func mapDTO[T any, D any](in []T, f func(T) D) []D {
	return lo.Map(in, func(item T, _ int) D { return f(item) })
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"huddle/domain"
	apperrors "huddle/errors"
	"huddle/moderation"
	"huddle/repositories"

	"github.com/google/uuid"
)

type IChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID, content string) (domain.Message, error)
	GetConversation(userID, partnerID string) ([]domain.Message, bool, error)
	GetRecentChats(userID string) ([]domain.ConversationSummary, error)
	MarkRead(userID, senderID string) error
	RemoveMessage(id uuid.UUID, requesterID string) error
	SearchMessages(ctx context.Context, userID, query string, limit int) ([]domain.Message, error)
}

// ChatService owns the direct-message flow: persistence, moderation, the
// live push to the receiver, and the derived conversation views.
type ChatService struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	publisher Publisher
	presence  Presence
	filter    *moderation.Filter
	index     Indexer
}

func NewChatService(log *slog.Logger, messages repositories.IMessageRepository,
	publisher Publisher, presence Presence, filter *moderation.Filter, index Indexer) *ChatService {
	return &ChatService{
		log:       log,
		messages:  messages,
		publisher: publisher,
		presence:  presence,
		filter:    filter,
		index:     index,
	}
}

// SendMessage persists the (moderated) message, then pushes it best-effort
// to the receiver's live connections. The sender gets the stored record
// back from this call; only the receiver is pushed to.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID, content string) (domain.Message, error) {
	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    s.filter.Mask(content),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}
	if err := s.index.IndexMessage(message); err != nil {
		// The store is the source of truth; a lagging index only hides the
		// message from search, not from the conversation.
		s.log.Warn("failed to index message", "message_id", message.ID, "error", err)
	}
	s.publisher.DeliverMessage(receiverID, message)
	return message, nil
}

// GetConversation returns all messages between the two users in ascending
// time order, plus the partner's live presence for UI decoration.
func (s *ChatService) GetConversation(userID, partnerID string) ([]domain.Message, bool, error) {
	messages, err := s.messages.Conversation(userID, partnerID)
	if err != nil {
		return nil, false, err
	}
	return messages, s.presence.Online(partnerID), nil
}

// GetRecentChats builds one summary per distinct partner from the flat
// message log: walk the user's messages newest first and materialize a
// summary on the first encounter of each partner. Because the walk is
// already time-descending, first-wins makes that message the most recent
// one by construction; later messages of a seen partner are skipped. One
// pass, O(messages), no MAX aggregation.
func (s *ChatService) GetRecentChats(userID string) ([]domain.ConversationSummary, error) {
	messages, err := s.messages.InboxDescending(userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.UnreadBySender(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	summaries := make([]domain.ConversationSummary, 0)
	for _, message := range messages {
		partner := message.PartnerOf(userID)
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		summaries = append(summaries, domain.ConversationSummary{
			PartnerID:     partner,
			LastMessageID: message.ID,
			LastMessage:   message.Content,
			LastSenderID:  message.SenderID,
			LastTimestamp: message.CreatedAt,
			UnreadCount:   unread[partner],
		})
	}
	return summaries, nil
}

// MarkRead flips everything unread from senderID to userID. Idempotent.
func (s *ChatService) MarkRead(userID, senderID string) error {
	return s.messages.MarkRead(userID, senderID)
}

// RemoveMessage unsends a message. Only the sender may do this; summaries
// are recomputed fresh from the log, so the deletion is reflected on the
// next query without any counter surgery.
func (s *ChatService) RemoveMessage(id uuid.UUID, requesterID string) error {
	if err := s.messages.Delete(id, requesterID); err != nil {
		return err
	}
	if err := s.index.Remove(id); err != nil {
		s.log.Warn("failed to drop message from index", "message_id", id, "error", err)
	}
	return nil
}

// SearchMessages resolves index hits back through the store, so results
// reflect the log as of now (an unsent message cannot resurface even if the
// index still holds it).
func (s *ChatService) SearchMessages(ctx context.Context, userID, query string, limit int) ([]domain.Message, error) {
	ids, err := s.index.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.messages.GetByID(id)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

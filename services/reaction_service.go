package services

import (
	"fmt"
	"log/slog"
	"time"

	"huddle/domain"
	apperrors "huddle/errors"
	"huddle/repositories"

	"github.com/google/uuid"
)

type IReactionService interface {
	React(userID string, contentID uuid.UUID, reaction domain.ReactionType) (domain.ReactionType, bool, error)
}

// ReactionService applies the tri-state toggle and owns its one side
// effect: a notification to the content owner, produced exclusively on the
// none-to-reaction transition. Switching like/dislike or toggling off never
// re-notifies; that asymmetry is what keeps a flip-flopping user from
// spamming the owner.
type ReactionService struct {
	log           *slog.Logger
	reactions     repositories.IReactionRepository
	posts         repositories.IPostRepository
	notifications repositories.INotificationRepository
	publisher     Publisher
}

func NewReactionService(log *slog.Logger, reactions repositories.IReactionRepository,
	posts repositories.IPostRepository, notifications repositories.INotificationRepository,
	publisher Publisher) *ReactionService {
	return &ReactionService{
		log:           log,
		reactions:     reactions,
		posts:         posts,
		notifications: notifications,
		publisher:     publisher,
	}
}

func (s *ReactionService) React(userID string, contentID uuid.UUID, reaction domain.ReactionType) (domain.ReactionType, bool, error) {
	if !reaction.Valid() {
		return domain.ReactionNone, false,
			fmt.Errorf("%w: unknown reaction type %q", apperrors.ErrInvalidPayload, reaction)
	}
	post, err := s.posts.GetByID(contentID)
	if err != nil {
		return domain.ReactionNone, false, err
	}

	state, created, err := s.reactions.Toggle(userID, contentID, reaction)
	if err != nil {
		return domain.ReactionNone, false, err
	}

	if created && post.AuthorID != userID {
		s.notifyOwner(userID, post, state)
	}
	return state, created, nil
}

func (s *ReactionService) notifyOwner(reactorID string, post domain.Post, reaction domain.ReactionType) {
	notification := domain.Notification{
		ID:      uuid.New(),
		UserID:  post.AuthorID,
		Type:    domain.NotificationReaction,
		Message: fmt.Sprintf("%s reacted to your post", reactorID),
		Data: map[string]string{
			"post_id":  post.ID.String(),
			"user_id":  reactorID,
			"reaction": string(reaction),
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifications.Store(notification); err != nil {
		s.log.Error("failed to store reaction notification",
			"post_id", post.ID, "user_id", reactorID, "error", err)
		return
	}
	s.publisher.DeliverNotification(post.AuthorID, notification)
}

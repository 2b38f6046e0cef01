package services

import (
	"fmt"
	"log/slog"
	"time"

	"huddle/domain"
	"huddle/moderation"
	"huddle/repositories"

	"github.com/google/uuid"
)

type IPostService interface {
	CreatePost(authorID, content string) (domain.Post, error)
	GetPost(id uuid.UUID) (domain.Post, error)
	ListPosts(limit int) ([]domain.Post, error)
	AddComment(userID string, postID uuid.UUID, content string) (domain.Comment, error)
	ListComments(postID uuid.UUID) ([]domain.Comment, error)
}

// PostService manages the content reactions and comments attach to.
type PostService struct {
	log           *slog.Logger
	posts         repositories.IPostRepository
	reactions     repositories.IReactionRepository
	notifications repositories.INotificationRepository
	publisher     Publisher
	filter        *moderation.Filter
}

func NewPostService(log *slog.Logger, posts repositories.IPostRepository,
	reactions repositories.IReactionRepository, notifications repositories.INotificationRepository,
	publisher Publisher, filter *moderation.Filter) *PostService {
	return &PostService{
		log:           log,
		posts:         posts,
		reactions:     reactions,
		notifications: notifications,
		publisher:     publisher,
		filter:        filter,
	}
}

func (s *PostService) CreatePost(authorID, content string) (domain.Post, error) {
	post := domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   s.filter.Mask(content),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Store(post); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

func (s *PostService) GetPost(id uuid.UUID) (domain.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return domain.Post{}, err
	}
	return s.withTallies(post)
}

func (s *PostService) ListPosts(limit int) ([]domain.Post, error) {
	posts, err := s.posts.ListDescending(limit)
	if err != nil {
		return nil, err
	}
	for i, post := range posts {
		if posts[i], err = s.withTallies(post); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// AddComment stores the comment and notifies the post owner, unless the
// owner is commenting on their own post.
func (s *PostService) AddComment(userID string, postID uuid.UUID, content string) (domain.Comment, error) {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return domain.Comment{}, err
	}
	comment := domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   s.filter.Mask(content),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.StoreComment(comment); err != nil {
		return domain.Comment{}, err
	}

	if post.AuthorID != userID {
		notification := domain.Notification{
			ID:      uuid.New(),
			UserID:  post.AuthorID,
			Type:    domain.NotificationComment,
			Message: fmt.Sprintf("%s commented on your post", userID),
			Data: map[string]string{
				"post_id":    post.ID.String(),
				"comment_id": comment.ID.String(),
				"user_id":    userID,
			},
			CreatedAt: time.Now().UTC(),
		}
		if err := s.notifications.Store(notification); err != nil {
			s.log.Error("failed to store comment notification",
				"post_id", postID, "user_id", userID, "error", err)
		} else {
			s.publisher.DeliverNotification(post.AuthorID, notification)
		}
	}
	return comment, nil
}

func (s *PostService) ListComments(postID uuid.UUID) ([]domain.Comment, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, err
	}
	return s.posts.CommentsAscending(postID)
}

func (s *PostService) withTallies(post domain.Post) (domain.Post, error) {
	likes, dislikes, err := s.reactions.Tally(post.ID)
	if err != nil {
		return domain.Post{}, err
	}
	post.Likes, post.Dislikes = likes, dislikes
	return post, nil
}

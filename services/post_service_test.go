package services

import (
	"log/slog"
	"testing"

	"huddle/domain"
	apperrors "huddle/errors"
	"huddle/moderation"
	"huddle/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newPostService(t *testing.T, publisher *fakePublisher) (*PostService, repositories.ReactionRepository) {
	t.Helper()
	db := openTestDB(t)
	posts := repositories.NewPostRepository(db, slog.Default())
	reactions := repositories.NewReactionRepository(db, slog.Default())
	notifications := repositories.NewNotificationRepository(db, slog.Default())
	filter, err := moderation.New([]string{"badger"}, '*')
	require.NoError(t, err)
	return NewPostService(slog.Default(), posts, reactions, notifications, publisher, filter), reactions
}

func Test_CreatePost_And_Tallies(t *testing.T) {
	req := require.New(t)
	service, reactions := newPostService(t, &fakePublisher{})

	post, err := service.CreatePost("alice", "a badger post")
	req.NoError(err)
	req.Equal("a ****** post", post.Content)

	_, _, err = reactions.Toggle("bob", post.ID, domain.ReactionLike)
	req.NoError(err)
	_, _, err = reactions.Toggle("clara", post.ID, domain.ReactionDislike)
	req.NoError(err)

	fetched, err := service.GetPost(post.ID)
	req.NoError(err)
	req.Equal(1, fetched.Likes)
	req.Equal(1, fetched.Dislikes)

	listed, err := service.ListPosts(10)
	req.NoError(err)
	req.Len(listed, 1)
	req.Equal(fetched, listed[0])
}

func Test_AddComment_NotifiesOwner(t *testing.T) {
	req := require.New(t)
	publisher := &fakePublisher{}
	service, _ := newPostService(t, publisher)

	post, err := service.CreatePost("owner", "hello")
	req.NoError(err)

	comment, err := service.AddComment("visitor", post.ID, "nice one")
	req.NoError(err)

	req.Len(publisher.notifications, 1)
	req.Equal([]string{"owner"}, publisher.recipients)
	req.Equal(domain.NotificationComment, publisher.notifications[0].Type)
	req.Equal(comment.ID.String(), publisher.notifications[0].Data["comment_id"])

	// Self-comments stay silent.
	_, err = service.AddComment("owner", post.ID, "thanks")
	req.NoError(err)
	req.Len(publisher.notifications, 1)

	comments, err := service.ListComments(post.ID)
	req.NoError(err)
	req.Len(comments, 2)
}

func Test_AddComment_UnknownPost(t *testing.T) {
	req := require.New(t)
	service, _ := newPostService(t, &fakePublisher{})

	_, err := service.AddComment("visitor", uuid.New(), "hello?")
	req.ErrorIs(err, apperrors.ErrNotFound)

	_, err = service.ListComments(uuid.New())
	req.ErrorIs(err, apperrors.ErrNotFound)
}

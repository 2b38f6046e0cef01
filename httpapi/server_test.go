package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"huddle/auth"
	"huddle/domain"
	"huddle/moderation"
	"huddle/repositories"
	"huddle/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nullPublisher struct{}

func (nullPublisher) DeliverNotification(string, domain.Notification) {}
func (nullPublisher) DeliverMessage(string, domain.Message)           {}

type nullPresence struct{}

func (nullPresence) Online(string) bool { return false }

type spyIndexer struct {
	searchLimits []int
}

func (i *spyIndexer) IndexMessage(domain.Message) error { return nil }
func (i *spyIndexer) Remove(uuid.UUID) error            { return nil }
func (i *spyIndexer) Search(_ context.Context, _, _ string, limit int) ([]uuid.UUID, error) {
	i.searchLimits = append(i.searchLimits, limit)
	return nil, nil
}

type apiFixture struct {
	verifier auth.Verifier
	server   *httptest.Server
	index    *spyIndexer
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	req := require.New(t)
	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	filter, err := moderation.New(nil, '*')
	req.NoError(err)

	messages := repositories.NewMessageRepository(db, log)
	posts := repositories.NewPostRepository(db, log)
	reactions := repositories.NewReactionRepository(db, log)
	notifications := repositories.NewNotificationRepository(db, log)

	index := &spyIndexer{}
	chatService := services.NewChatService(log, messages, nullPublisher{}, nullPresence{}, filter, index)
	postService := services.NewPostService(log, posts, reactions, notifications, nullPublisher{}, filter)
	reactionService := services.NewReactionService(log, reactions, posts, notifications, nullPublisher{})
	notificationService := services.NewNotificationService(log, notifications)

	verifier := auth.NewVerifier("api-test-secret")
	api := NewServer(log, verifier, chatService, reactionService, postService, notificationService)
	server := httptest.NewServer(api.Routes(nil))
	t.Cleanup(server.Close)

	return &apiFixture{verifier: verifier, server: server, index: index}
}

// do issues a request as the given user. An empty user sends no credential.
func (f *apiFixture) do(t *testing.T, user, method, path string, body any) *http.Response {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &payload)
	require.NoError(t, err)
	if user != "" {
		token, err := f.verifier.Issue(user, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func Test_Routes_RejectUnauthenticated(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	for _, path := range []string{"/api/chats", "/api/posts", "/api/notifications"} {
		resp := f.do(t, "", http.MethodGet, path, nil)
		req.Equal(http.StatusUnauthorized, resp.StatusCode, path)
	}

	// The health probe stays open.
	resp := f.do(t, "", http.MethodGet, "/healthz", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
}

func Test_SendMessage_And_Conversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given alice writes to bob twice.
	resp := f.do(t, "alice", http.MethodPost, "/api/messages",
		map[string]string{"receiver_id": "bob", "content": "first"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	sent := decode[messageDTO](t, resp)
	req.Equal("alice", sent.SenderID)
	req.Equal("first", sent.Content)

	resp = f.do(t, "alice", http.MethodPost, "/api/messages",
		map[string]string{"receiver_id": "bob", "content": "second"})
	req.Equal(http.StatusCreated, resp.StatusCode)

	// When bob pulls the conversation.
	resp = f.do(t, "bob", http.MethodGet, "/api/chats/alice", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	conversation := decode[conversationResponse](t, resp)

	// Then both messages come back ascending and unread.
	req.Len(conversation.Messages, 2)
	req.Equal("first", conversation.Messages[0].Content)
	req.Equal("second", conversation.Messages[1].Content)
	req.False(conversation.Messages[0].Read)

	// And the chat list shows one partner with two unread.
	resp = f.do(t, "bob", http.MethodGet, "/api/chats", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	chats := decode[[]conversationDTO](t, resp)
	req.Len(chats, 1)
	req.Equal("alice", chats[0].PartnerID)
	req.Equal("second", chats[0].LastMessage)
	req.Equal(2, chats[0].UnreadCount)

	// When bob marks the chat read the counter drops to zero.
	resp = f.do(t, "bob", http.MethodPost, "/api/chats/alice/read", nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, "bob", http.MethodGet, "/api/chats", nil)
	chats = decode[[]conversationDTO](t, resp)
	req.Equal(0, chats[0].UnreadCount)
}

func Test_SendMessage_ValidationFailures(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "alice", http.MethodPost, "/api/messages",
		map[string]string{"receiver_id": "bob"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, "alice", http.MethodPost, "/api/messages",
		map[string]string{"receiver_id": "alice", "content": "hi me"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_RemoveMessage_SenderOnly(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "alice", http.MethodPost, "/api/messages",
		map[string]string{"receiver_id": "bob", "content": "oops"})
	sent := decode[messageDTO](t, resp)

	// The receiver cannot unsend the sender's message.
	resp = f.do(t, "bob", http.MethodDelete, "/api/messages/"+sent.ID, nil)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, "alice", http.MethodDelete, "/api/messages/"+sent.ID, nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	// A second delete finds nothing.
	resp = f.do(t, "alice", http.MethodDelete, "/api/messages/"+sent.ID, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func Test_Posts_React_Toggle(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "owner", http.MethodPost, "/api/posts",
		map[string]string{"content": "hello world"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	post := decode[postDTO](t, resp)

	// Like, switch to dislike, then toggle off.
	resp = f.do(t, "fan", http.MethodPost, "/api/posts/"+post.ID+"/react",
		map[string]string{"reaction": "like"})
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("like", decode[reactResponse](t, resp).Reaction)

	resp = f.do(t, "fan", http.MethodPost, "/api/posts/"+post.ID+"/react",
		map[string]string{"reaction": "dislike"})
	req.Equal("dislike", decode[reactResponse](t, resp).Reaction)

	resp = f.do(t, "fan", http.MethodPost, "/api/posts/"+post.ID+"/react",
		map[string]string{"reaction": "dislike"})
	req.Equal("", decode[reactResponse](t, resp).Reaction)

	// Tallies on the post reflect the final state.
	resp = f.do(t, "owner", http.MethodGet, "/api/posts/"+post.ID, nil)
	fetched := decode[postDTO](t, resp)
	req.Equal(0, fetched.Likes)
	req.Equal(0, fetched.Dislikes)

	// The owner got exactly one notification for the whole dance.
	resp = f.do(t, "owner", http.MethodGet, "/api/notifications", nil)
	notifications := decode[[]notificationDTO](t, resp)
	req.Len(notifications, 1)
	req.Equal("reaction", notifications[0].Type)
}

func Test_React_UnknownPost(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "fan", http.MethodPost, "/api/posts/"+uuid.NewString()+"/react",
		map[string]string{"reaction": "like"})
	req.Equal(http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, "fan", http.MethodPost, "/api/posts/not-a-uuid/react",
		map[string]string{"reaction": "like"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, "fan", http.MethodPost, "/api/posts/"+uuid.NewString()+"/react",
		map[string]string{"reaction": "love"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func Test_Comments_RoundTrip(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "owner", http.MethodPost, "/api/posts",
		map[string]string{"content": "discuss"})
	post := decode[postDTO](t, resp)

	resp = f.do(t, "reader", http.MethodPost, "/api/posts/"+post.ID+"/comments",
		map[string]string{"content": "nice one"})
	req.Equal(http.StatusCreated, resp.StatusCode)

	resp = f.do(t, "owner", http.MethodGet, "/api/posts/"+post.ID+"/comments", nil)
	comments := decode[[]commentDTO](t, resp)
	req.Len(comments, 1)
	req.Equal("reader", comments[0].AuthorID)
	req.Equal("nice one", comments[0].Content)

	// Commenting notified the post owner.
	resp = f.do(t, "owner", http.MethodGet, "/api/notifications", nil)
	notifications := decode[[]notificationDTO](t, resp)
	req.Len(notifications, 1)
	req.Equal("comment", notifications[0].Type)

	resp = f.do(t, "owner", http.MethodPost, "/api/notifications/read", nil)
	req.Equal(http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, "owner", http.MethodGet, "/api/notifications", nil)
	notifications = decode[[]notificationDTO](t, resp)
	req.True(notifications[0].Read)
}

func Test_SearchMessages_LimitClamped(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	resp := f.do(t, "alice", http.MethodGet, "/api/messages/search?q=hi", nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp = f.do(t, "alice", http.MethodGet, "/api/messages/search?q=hi&limit=1000000", nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp = f.do(t, "alice", http.MethodGet, "/api/messages/search?q=hi&limit=0", nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// Default for the first call, the cap for the oversized one.
	req.Equal([]int{defaultSearchLimit, maxSearchLimit}, f.index.searchLimits)
}

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=../mocks/mock_post_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"huddle/domain"
	apperrors "huddle/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type IPostRepository interface {
	Store(p domain.Post) error
	GetByID(id uuid.UUID) (domain.Post, error)
	ListDescending(limit int) ([]domain.Post, error)
	StoreComment(c domain.Comment) error
	CommentsAscending(postID uuid.UUID) ([]domain.Comment, error)
}

// PostRepository persists posts under "post:{timestamp_padded}:{uuid}" with
// an id index, and comments under "comment:{postId}:{timestamp_padded}:{uuid}".
type PostRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPostRepository(db *badger.DB, log *slog.Logger) PostRepository {
	return PostRepository{db: db, log: log}
}

type storedPost struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

type storedComment struct {
	ID      string `json:"id"`
	Post    string `json:"post"`
	Author  string `json:"author"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

func postKey(at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("post:%019d:%s", at.UnixNano(), id))
}

func postIDKey(id uuid.UUID) []byte {
	return []byte("postid:" + id.String())
}

func commentKey(postID uuid.UUID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("comment:%s:%019d:%s", postID, at.UnixNano(), id))
}

func (r PostRepository) Store(p domain.Post) error {
	data, err := json.Marshal(storedPost{
		ID:      p.ID.String(),
		Author:  p.AuthorID,
		Content: p.Content,
		At:      p.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	key := postKey(p.CreatedAt, p.ID)
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(postIDKey(p.ID), key)
	})
	if err != nil {
		return transient(err)
	}
	return nil
}

func (r PostRepository) GetByID(id uuid.UUID) (domain.Post, error) {
	var post domain.Post
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postIDKey(id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: post %s", apperrors.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		record, err := txn.Get(key)
		if err != nil {
			return err
		}
		var stored storedPost
		if err := record.Value(func(value []byte) error {
			return json.Unmarshal(value, &stored)
		}); err != nil {
			return err
		}
		post, err = toPost(stored)
		return err
	})
	return post, err
}

// ListDescending returns up to limit posts, newest first. limit <= 0 means
// no limit.
func (r PostRepository) ListDescending(limit int) ([]domain.Post, error) {
	prefix := []byte("post:")
	var posts []domain.Post
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte("post:"), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(posts) == limit {
				break
			}
			var stored storedPost
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			p, err := toPost(stored)
			if err != nil {
				return err
			}
			posts = append(posts, p)
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return posts, nil
}

func (r PostRepository) StoreComment(c domain.Comment) error {
	data, err := json.Marshal(storedComment{
		ID:      c.ID.String(),
		Post:    c.PostID.String(),
		Author:  c.AuthorID,
		Content: c.Content,
		At:      c.CreatedAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(commentKey(c.PostID, c.CreatedAt, c.ID), data)
	})
	if err != nil {
		return transient(err)
	}
	return nil
}

func (r PostRepository) CommentsAscending(postID uuid.UUID) ([]domain.Comment, error) {
	prefix := []byte(fmt.Sprintf("comment:%s:", postID))
	var comments []domain.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored storedComment
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			c, err := toComment(stored)
			if err != nil {
				return err
			}
			comments = append(comments, c)
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return comments, nil
}

func toPost(stored storedPost) (domain.Post, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Post{}, err
	}
	return domain.Post{
		ID:        parsedID,
		AuthorID:  stored.Author,
		Content:   stored.Content,
		CreatedAt: time.Unix(0, stored.At).UTC(),
	}, nil
}

func toComment(stored storedComment) (domain.Comment, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Comment{}, err
	}
	parsedPostID, err := uuid.Parse(stored.Post)
	if err != nil {
		return domain.Comment{}, err
	}
	return domain.Comment{
		ID:        parsedID,
		PostID:    parsedPostID,
		AuthorID:  stored.Author,
		Content:   stored.Content,
		CreatedAt: time.Unix(0, stored.At).UTC(),
	}, nil
}

//go:generate go run go.uber.org/mock/mockgen -source=reaction.go -destination=../mocks/mock_reaction_repository.go -package=mocks
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

type IReactionRepository interface {
	Toggle(userID string, contentID uuid.UUID, reaction domain.ReactionType) (domain.ReactionType, bool, error)
	Get(userID string, contentID uuid.UUID) (domain.Reaction, error)
	Tally(contentID uuid.UUID) (likes, dislikes int, err error)
}

// ReactionRepository persists at most one reaction row per (user, content)
// pair under "reaction:{contentId}:{userId}". The key itself enforces the
// uniqueness invariant: two racing creates for the same pair collide on one
// key, and Badger's conflict detection turns the loser into ErrConflict.
type ReactionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewReactionRepository(db *badger.DB, log *slog.Logger) ReactionRepository {
	return ReactionRepository{db: db, log: log}
}

type storedReaction struct {
	ID   string `json:"id"`
	User string `json:"user"`
	Type string `json:"type"`
	At   int64  `json:"at"`
}

func reactionKey(contentID uuid.UUID, userID string) []byte {
	return []byte(fmt.Sprintf("reaction:%s:%s", contentID, keySegment(userID)))
}

// Toggle applies one step of the tri-state machine inside a single
// transaction and reports the resulting state plus whether a new row was
// created (the only transition that notifies). A conflicting concurrent
// toggle from the same user is recovered by re-running the transaction
// once; a second conflict surfaces as ErrConflict.
func (r ReactionRepository) Toggle(userID string, contentID uuid.UUID, reaction domain.ReactionType) (domain.ReactionType, bool, error) {
	state, created, err := r.toggle(userID, contentID, reaction)
	if err == badger.ErrConflict {
		r.log.Debug("reaction toggle conflicted, retrying once",
			"user_id", userID, "content_id", contentID)
		state, created, err = r.toggle(userID, contentID, reaction)
	}
	if err == badger.ErrConflict {
		return domain.ReactionNone, false,
			fmt.Errorf("%w: concurrent reaction on %s by %s", apperrors.ErrConflict, contentID, userID)
	}
	if err != nil {
		return domain.ReactionNone, false, err
	}
	return state, created, nil
}

func (r ReactionRepository) toggle(userID string, contentID uuid.UUID, reaction domain.ReactionType) (domain.ReactionType, bool, error) {
	key := reactionKey(contentID, userID)
	var state domain.ReactionType
	var created bool
	err := r.db.Update(func(txn *badger.Txn) error {
		state, created = domain.ReactionNone, false
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			// NONE -> T: create the row.
			data, err := json.Marshal(storedReaction{
				ID:   uuid.NewString(),
				User: userID,
				Type: string(reaction),
				At:   time.Now().UTC().UnixNano(),
			})
			if err != nil {
				return err
			}
			state, created = reaction, true
			return txn.Set(key, data)
		}
		if err != nil {
			return err
		}

		var stored storedReaction
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &stored)
		}); err != nil {
			return err
		}
		if stored.Type == string(reaction) {
			// T -> NONE: re-applying the same type toggles off.
			return txn.Delete(key)
		}
		// T -> T': switch in place, same row.
		stored.Type = string(reaction)
		data, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		state = reaction
		return txn.Set(key, data)
	})
	return state, created, err
}

func (r ReactionRepository) Get(userID string, contentID uuid.UUID) (domain.Reaction, error) {
	var reaction domain.Reaction
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reactionKey(contentID, userID))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: no reaction on %s by %s", apperrors.ErrNotFound, contentID, userID)
		}
		if err != nil {
			return err
		}
		var stored storedReaction
		if err := item.Value(func(value []byte) error {
			return json.Unmarshal(value, &stored)
		}); err != nil {
			return err
		}
		reaction, err = toReaction(stored, contentID)
		return err
	})
	return reaction, err
}

// Tally counts the per-type reaction rows of one piece of content.
func (r ReactionRepository) Tally(contentID uuid.UUID) (int, int, error) {
	prefix := []byte(fmt.Sprintf("reaction:%s:", contentID))
	var likes, dislikes int
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored storedReaction
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			switch domain.ReactionType(stored.Type) {
			case domain.ReactionLike:
				likes++
			case domain.ReactionDislike:
				dislikes++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, transient(err)
	}
	return likes, dislikes, nil
}

func toReaction(stored storedReaction, contentID uuid.UUID) (domain.Reaction, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Reaction{}, err
	}
	return domain.Reaction{
		ID:        parsedID,
		UserID:    stored.User,
		ContentID: contentID,
		Type:      domain.ReactionType(stored.Type),
		CreatedAt: time.Unix(0, stored.At).UTC(),
	}, nil
}

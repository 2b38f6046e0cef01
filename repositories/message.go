//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"huddle/domain"
	apperrors "huddle/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(m domain.Message) error
	GetByID(id uuid.UUID) (domain.Message, error)
	Conversation(userID, partnerID string) ([]domain.Message, error)
	InboxDescending(userID string) ([]domain.Message, error)
	UnreadBySender(userID string) (map[string]int, error)
	MarkRead(userID, senderID string) error
	Delete(id uuid.UUID, requesterID string) error
}

// MessageRepository persists direct messages in BadgerDB under three key
// families:
//
//	msg:{pairKey}:{timestamp_padded}:{uuid}  canonical record, one copy
//	inbox:{userId}:{timestamp_padded}:{uuid} per-participant ref -> canonical key
//	msgid:{uuid}                             id index -> canonical key
//
// The pair key orders the two participant ids lexicographically so both
// sides of a conversation share one prefix; the 19-digit zero-padded
// UnixNano makes a plain prefix scan chronological, with the UUID as a
// collision disconnector for same-nanosecond messages.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type storedMessage struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
	At       int64  `json:"at"`
	Read     bool   `json:"read"`
}

// keySegments escapes user-supplied id material before it is spliced
// between key delimiters. User ids are opaque strings from the token, so a
// ":" or "|" inside one would otherwise forge another pair's prefix and
// leak messages across conversations.
var keySegments = strings.NewReplacer("%", "%25", ":", "%3A", "|", "%7C")

func keySegment(s string) string {
	return keySegments.Replace(s)
}

func pairKey(a, b string) string {
	a, b = keySegment(a), keySegment(b)
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func canonicalKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		pairKey(m.SenderID, m.ReceiverID), m.CreatedAt.UnixNano(), m.ID))
}

func inboxKey(userID string, m domain.Message) []byte {
	return []byte(fmt.Sprintf("inbox:%s:%019d:%s", keySegment(userID), m.CreatedAt.UnixNano(), m.ID))
}

func idKey(id uuid.UUID) []byte {
	return []byte("msgid:" + id.String())
}

// Store writes the canonical record plus one inbox ref per participant and
// the id index, all in a single transaction.
func (r MessageRepository) Store(m domain.Message) error {
	data, err := json.Marshal(fromMessage(m))
	if err != nil {
		return err
	}
	canonical := canonicalKey(m)
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(canonical, data); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(m.SenderID, m), canonical); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(m.ReceiverID, m), canonical); err != nil {
			return err
		}
		return txn.Set(idKey(m.ID), canonical)
	})
	if err != nil {
		return transient(err)
	}
	return nil
}

func (r MessageRepository) GetByID(id uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		canonical, err := resolveID(txn, id)
		if err != nil {
			return err
		}
		m, err = readMessage(txn, canonical)
		return err
	})
	return m, err
}

// Conversation returns every message between the two users, strictly
// ascending by creation time. Pure query, no mutation.
func (r MessageRepository) Conversation(userID, partnerID string) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", pairKey(userID, partnerID)))
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored storedMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			m, err := toMessage(stored)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return messages, nil
}

// InboxDescending returns every message the user sent or received, newest
// first. This is the input of the recent-chats walk, so descending order is
// part of the contract, not a convenience.
func (r MessageRepository) InboxDescending(userID string) ([]domain.Message, error) {
	prefixStr := fmt.Sprintf("inbox:%s:", keySegment(userID))
	prefix := []byte(prefixStr)
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append([]byte(prefixStr), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var canonical []byte
			err := it.Item().Value(func(value []byte) error {
				canonical = append([]byte(nil), value...)
				return nil
			})
			if err != nil {
				return err
			}
			m, err := readMessage(txn, canonical)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return messages, nil
}

// UnreadBySender counts unread messages addressed to the user, grouped by
// the sender. Senders with no unread messages have no entry.
func (r MessageRepository) UnreadBySender(userID string) (map[string]int, error) {
	prefix := []byte(fmt.Sprintf("inbox:%s:", keySegment(userID)))
	counts := make(map[string]int)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var canonical []byte
			err := it.Item().Value(func(value []byte) error {
				canonical = append([]byte(nil), value...)
				return nil
			})
			if err != nil {
				return err
			}
			m, err := readMessage(txn, canonical)
			if err != nil {
				return err
			}
			if m.ReceiverID == userID && !m.Read {
				counts[m.SenderID]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return counts, nil
}

// MarkRead flips every unread message from senderID to userID to read.
// Idempotent: a second call finds nothing unread and writes nothing.
func (r MessageRepository) MarkRead(userID, senderID string) error {
	prefix := []byte(fmt.Sprintf("msg:%s:", pairKey(userID, senderID)))
	err := r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var stored storedMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			if stored.Receiver != userID || stored.Sender != senderID || stored.Read {
				continue
			}
			stored.Read = true
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return transient(err)
	}
	return nil
}

// Delete removes a message and all its index entries. Only the sender may
// unsend; anyone else gets ErrForbidden.
func (r MessageRepository) Delete(id uuid.UUID, requesterID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		canonical, err := resolveID(txn, id)
		if err != nil {
			return err
		}
		m, err := readMessage(txn, canonical)
		if err != nil {
			return err
		}
		if m.SenderID != requesterID {
			return fmt.Errorf("%w: message %s belongs to %s", apperrors.ErrForbidden, id, m.SenderID)
		}
		if err := txn.Delete(canonical); err != nil {
			return err
		}
		if err := txn.Delete(inboxKey(m.SenderID, m)); err != nil {
			return err
		}
		if err := txn.Delete(inboxKey(m.ReceiverID, m)); err != nil {
			return err
		}
		return txn.Delete(idKey(id))
	})
}

func resolveID(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(idKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: message %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func readMessage(txn *badger.Txn, canonical []byte) (domain.Message, error) {
	item, err := txn.Get(canonical)
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, fmt.Errorf("%w: record %s", apperrors.ErrNotFound, canonical)
	}
	if err != nil {
		return domain.Message{}, err
	}
	var stored storedMessage
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &stored)
	}); err != nil {
		return domain.Message{}, err
	}
	return toMessage(stored)
}

func fromMessage(m domain.Message) storedMessage {
	return storedMessage{
		ID:       m.ID.String(),
		Sender:   m.SenderID,
		Receiver: m.ReceiverID,
		Content:  m.Content,
		At:       m.CreatedAt.UnixNano(),
		Read:     m.Read,
	}
}

func toMessage(stored storedMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   stored.Sender,
		ReceiverID: stored.Receiver,
		Content:    stored.Content,
		CreatedAt:  time.Unix(0, stored.At).UTC(),
		Read:       stored.Read,
	}, nil
}

func transient(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
}

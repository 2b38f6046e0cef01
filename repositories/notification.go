//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"huddle/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type INotificationRepository interface {
	Store(n domain.Notification) error
	ListDescending(userID string, limit int) ([]domain.Notification, error)
	MarkAllRead(userID string) error
}

// NotificationRepository persists notifications under
// "notif:{userId}:{timestamp_padded}:{uuid}", so a reverse prefix scan
// yields a user's notifications newest first.
type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

type storedNotification struct {
	ID      string            `json:"id"`
	User    string            `json:"user"`
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
	Read    bool              `json:"read"`
	At      int64             `json:"at"`
}

func notificationKey(userID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("notif:%s:%019d:%s", keySegment(userID), at.UnixNano(), id))
}

func (r NotificationRepository) Store(n domain.Notification) error {
	data, err := json.Marshal(fromNotification(n))
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(notificationKey(n.UserID, n.CreatedAt, n.ID), data)
	})
	if err != nil {
		return transient(err)
	}
	return nil
}

// ListDescending returns up to limit notifications, newest first.
// limit <= 0 means no limit.
func (r NotificationRepository) ListDescending(userID string, limit int) ([]domain.Notification, error) {
	prefixStr := fmt.Sprintf("notif:%s:", keySegment(userID))
	prefix := []byte(prefixStr)
	var notifications []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte(prefixStr), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(notifications) == limit {
				break
			}
			var stored storedNotification
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			n, err := toNotification(stored)
			if err != nil {
				return err
			}
			notifications = append(notifications, n)
		}
		return nil
	})
	if err != nil {
		return nil, transient(err)
	}
	return notifications, nil
}

// MarkAllRead flips every unread notification of the user. Idempotent.
func (r NotificationRepository) MarkAllRead(userID string) error {
	prefix := []byte(fmt.Sprintf("notif:%s:", keySegment(userID)))
	err := r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			var stored storedNotification
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &stored)
			})
			if err != nil {
				return err
			}
			if stored.Read {
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

func fromNotification(n domain.Notification) storedNotification {
	return storedNotification{
		ID:      n.ID.String(),
		User:    n.UserID,
		Type:    string(n.Type),
		Message: n.Message,
		Data:    n.Data,
		Read:    n.Read,
		At:      n.CreatedAt.UnixNano(),
	}
}

func toNotification(stored storedNotification) (domain.Notification, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		ID:        parsedID,
		UserID:    stored.User,
		Type:      domain.NotificationType(stored.Type),
		Message:   stored.Message,
		Data:      stored.Data,
		Read:      stored.Read,
		CreatedAt: time.Unix(0, stored.At).UTC(),
	}, nil
}

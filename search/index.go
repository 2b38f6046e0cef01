// Package search maintains a full-text index over message content.
// The index is advisory: the message log in the store stays the source of
// truth, search only returns candidate ids that the caller re-reads (and so
// never resurrects an unsent message).
package search

import (
	"context"
	"log/slog"

	"huddle/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// Index wraps a bluge writer. Safe for concurrent use.
type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// IndexMessage makes a stored message findable by either participant.
func (i *Index) IndexMessage(m domain.Message) error {
	doc := bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewTextField("content", m.Content)).
		AddField(bluge.NewKeywordField("participant", m.SenderID)).
		AddField(bluge.NewKeywordField("participant", m.ReceiverID))
	return i.writer.Update(doc.ID(), doc)
}

// Remove drops an unsent message from the index.
func (i *Index) Remove(id uuid.UUID) error {
	return i.writer.Delete(bluge.Identifier(id.String()))
}

// Search returns the ids of the best-matching messages the user
// participates in, relevance order.
func (i *Index) Search(ctx context.Context, userID, query string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("failed to close index reader", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(userID).SetField("participant"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, err := uuid.ParseBytes(value); err == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

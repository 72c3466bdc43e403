//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"group-chat/domain"
)

const journalPrefix = "msg:"

type IJournalRepository interface {
	Store(message domain.Message) error
	Recent(limit int) ([]domain.Message, error)
}

// JournalRepository keeps a process-lifetime record of delivered messages.
// The backing BadgerDB is expected to be opened with WithInMemory, so
// nothing survives a restart; the journal only feeds the debug inspector.
type JournalRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewJournalRepository(db *badger.DB, log *slog.Logger) JournalRepository {
	return JournalRepository{db: db, log: log}
}

type diskMessage struct {
	ID      uuid.UUID `json:"id"`
	Scope   string    `json:"scope"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store records a message under a key formatted as
// "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (j JournalRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		journalPrefix,
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Recent returns the newest messages, most recent first. Thanks to the
// padded timestamp in the key a reverse prefix scan walks them in time order.
func (j JournalRepository) Recent(limit int) ([]domain.Message, error) {
	var stored []diskMessage
	err := j.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(journalPrefix)
		// Seek past every possible key under the prefix, then walk backwards.
		seek := append(append([]byte{}, prefix...), 0xFF)

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(stored) >= limit {
				break
			}
			var m diskMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				j.log.Warn("Skipping unreadable journal entry", "err", err)
				continue
			}
			stored = append(stored, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toMessages(stored), nil
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:      m.ID,
		Scope:   m.Scope,
		Author:  m.SenderID,
		Content: m.Content,
		At:      m.CreatedAt,
	}
}

func toMessages(stored []diskMessage) []domain.Message {
	return lo.Map(stored, func(item diskMessage, _ int) domain.Message {
		return domain.Message{
			ID:        item.ID,
			Scope:     item.Scope,
			SenderID:  item.Author,
			Content:   item.Content,
			CreatedAt: item.At,
		}
	})
}

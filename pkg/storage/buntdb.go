package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/stocklens/pkg/core"
	"github.com/tidwall/buntdb"
)

const (
	DefaultHistory = 50

	sequenceIndex = "sequence_index"
	keyPrefix     = "status:"
)

// record is the stored form of a status; the sequence keeps insertion order
type record struct {
	Sequence int64       `json:"seq"`
	Status   core.Status `json:"status"`
}

// StatusStorage implements core.StatusRecorder using BuntDB
type StatusStorage struct {
	lastID  int64
	history int
	db      *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory(history int) (*StatusStorage, error) {
	return NewStatusStorage(":memory:", history)
}

// FromFile creates a file-based storage
func FromFile(file string, history int) (*StatusStorage, error) {
	return NewStatusStorage(file, history)
}

// NewStatusStorage opens a BuntDB storage that keeps the newest history statuses.
// A non-positive history falls back to DefaultHistory.
func NewStatusStorage(sourceFile string, history int) (*StatusStorage, error) {
	if history <= 0 {
		history = DefaultHistory
	}

	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(sequenceIndex, keyPrefix+"*", buntdb.IndexJSON("seq"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &StatusStorage{history: history, db: db}
	if err := storage.restoreSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

// restoreSequence continues numbering after the newest stored record
func (b *StatusStorage) restoreSequence() error {
	return b.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(sequenceIndex, func(_, value string) bool {
			var r record
			if err := json.Unmarshal([]byte(value), &r); err == nil {
				b.lastID = r.Sequence
			}
			return false
		})
	})
}

// getID generates a unique, increasing sequence number
func (b *StatusStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// Save stores a status and drops the oldest ones beyond the history size
func (b *StatusStorage) Save(status core.Status) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		r := record{Sequence: b.getID(), Status: status}
		content, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}

		_, _, err = tx.Set(keyPrefix+strconv.FormatInt(r.Sequence, 10), string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store status: %w", err)
		}

		return b.prune(tx)
	})
}

func (b *StatusStorage) prune(tx *buntdb.Tx) error {
	count, err := tx.Len()
	if err != nil {
		return err
	}

	excess := count - b.history
	if excess <= 0 {
		return nil
	}

	stale := make([]string, 0, excess)
	err = tx.Ascend(sequenceIndex, func(key, _ string) bool {
		stale = append(stale, key)
		return len(stale) < excess
	})
	if err != nil {
		return fmt.Errorf("failed to iterate over statuses: %w", err)
	}

	for _, key := range stale {
		if _, err := tx.Delete(key); err != nil {
			return fmt.Errorf("failed to drop status %s: %w", key, err)
		}
	}
	return nil
}

// Statuses returns up to limit statuses, newest first
func (b *StatusStorage) Statuses(limit int) ([]core.Status, error) {
	statuses := make([]core.Status, 0)
	if limit <= 0 {
		return statuses, nil
	}

	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.Descend(sequenceIndex, func(_, value string) bool {
			var r record
			if decodeErr = json.Unmarshal([]byte(value), &r); decodeErr != nil {
				return false
			}
			statuses = append(statuses, r.Status)
			return len(statuses) < limit
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over statuses: %w", err)
		}
		if decodeErr != nil {
			return fmt.Errorf("failed to unmarshal status: %w", decodeErr)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return statuses, nil
}

// Close closes the database connection
func (b *StatusStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mintedhq/minted-go/models"
)

const conversationsBucket = "conversations"

// SnapshotStore persists the conversation list across launches so the menu
// renders before the first network refresh. The remote API stays the system
// of record: snapshots are only ever replaced wholesale, never merged.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// SaveConversations replaces the stored snapshot with the given list.
func (s *SnapshotStore) SaveConversations(conversations []models.Conversation) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.Update(func(tx *bolt.Tx) error {
		// Recreate the bucket so the snapshot reflects the list exactly.
		if tx.Bucket([]byte(conversationsBucket)) != nil {
			if err := tx.DeleteBucket([]byte(conversationsBucket)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(conversationsBucket))
		if err != nil {
			return err
		}
		for _, conv := range conversations {
			enc, err := json.Marshal(conv)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(conv.ID), enc); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadConversations reads the stored snapshot. A missing file or bucket
// yields an empty list.
func (s *SnapshotStore) LoadConversations() ([]models.Conversation, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	var conversations []models.Conversation
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(conversationsBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var conv models.Conversation
			if err := json.Unmarshal(v, &conv); err != nil {
				// Skip malformed entries instead of failing the whole load.
				return nil
			}
			conversations = append(conversations, conv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

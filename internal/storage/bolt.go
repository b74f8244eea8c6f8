package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const recordBucket = "entries"

// ErrNoRecord is returned when a record id is not in the store.
var ErrNoRecord = errors.New("storage: no such record")

// BoltStore keeps records in a single-file bbolt database.
type BoltStore struct {
	db     *bbolt.DB
	logger *zap.Logger
}

var _ RecordStore = (*BoltStore)(nil)

// Options configures New.
type Options struct {
	DBPath string
	Logger *zap.Logger
}

// New opens the database at opts.DBPath, creating it if needed.
func New(opts Options) (*BoltStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bbolt.Open(opts.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Debug("record store opened", zap.String("db_path", opts.DBPath))
	return &BoltStore{db: db, logger: logger}, nil
}

// Insert stores a new record, assigning an id and save time when absent,
// and returns the record id.
func (s *BoltStore) Insert(rec EntryRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(recordBucket))
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		return b.Put([]byte(rec.ID), encoded)
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("record inserted",
		zap.String("id", rec.ID),
		zap.String("library", rec.LibraryID),
		zap.String("content_type", rec.ContentType))
	return rec.ID, nil
}

// Update replaces an existing record. A zero SavedAt keeps the stored one.
func (s *BoltStore) Update(rec EntryRecord) error {
	if rec.ID == "" {
		return ErrNoRecord
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(recordBucket))
		v := b.Get([]byte(rec.ID))
		if v == nil {
			return ErrNoRecord
		}
		if rec.SavedAt.IsZero() {
			var existing EntryRecord
			if err := json.Unmarshal(v, &existing); err == nil {
				rec.SavedAt = existing.SavedAt
			}
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		return b.Put([]byte(rec.ID), encoded)
	})
}

// Delete removes a record.
func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(recordBucket))
		if b.Get([]byte(id)) == nil {
			return ErrNoRecord
		}
		return b.Delete([]byte(id))
	})
}

// Get loads one record.
func (s *BoltStore) Get(id string) (EntryRecord, error) {
	var rec EntryRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(recordBucket))
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNoRecord
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return EntryRecord{}, err
	}
	return rec, nil
}

// List returns records newest first, filtered to a library when libraryID
// is non-empty. limit <= 0 means all.
func (s *BoltStore) List(libraryID string, limit int) ([]EntryRecord, error) {
	var records []EntryRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(recordBucket))
		return b.ForEach(func(k, v []byte) error {
			var rec EntryRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("skipping unreadable record",
					zap.ByteString("key", k), zap.Error(err))
				return nil
			}
			if libraryID != "" && rec.LibraryID != libraryID {
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SavedAt.After(records[j].SavedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
)

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger

	mu        sync.Mutex
	observers map[string]map[int]func(domain.Snapshot)
	nextObs   int
}

// NewBadgerRepository creates and initializes a new BadgerDB repository.
// It opens the database at the specified path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.Info("BadgerDB opened successfully at path: ", dbPath)

	return &BadgerRepository{
		db:        db,
		log:       logger.WithField("component", "repository"),
		observers: make(map[string]map[int]func(domain.Snapshot)),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	err := r.db.Close()
	if err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// documentKey format: user:{userID}:{collection}:{docID}
func documentKey(userID string, c Collection, id string) []byte {
	return []byte(fmt.Sprintf("user:%s:%s:%s", userID, c, id))
}

// userPrefix format: user:{userID}:
func userPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("user:%s:", userID))
}

func checkUser(userID string) error {
	if userID == "" || strings.Contains(userID, ":") {
		return domain.Validationf("invalid user id %q", userID)
	}
	return nil
}

// Add stores doc under a new UUID.
func (r *BadgerRepository) Add(ctx context.Context, userID string, c Collection, doc any) (string, error) {
	if err := checkUser(userID); err != nil {
		return "", err
	}
	id := uuid.NewString()
	log := r.log.WithFields(logrus.Fields{"user_id": userID, "collection": c, "doc_id": id})

	value, err := encodeWithID(doc, id)
	if err != nil {
		log.WithError(err).Error("Failed to marshal document")
		return "", fmt.Errorf("failed to marshal %s document: %w", c, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(documentKey(userID, c, id), value))
	})
	if err != nil {
		log.WithError(err).Error("Failed to add document to BadgerDB")
		return "", fmt.Errorf("failed to add %s document: %w", c, err)
	}

	log.Debug("Document added")
	r.publish(ctx, userID)
	return id, nil
}

// Update merges fields into the stored document.
func (r *BadgerRepository) Update(ctx context.Context, userID string, c Collection, id string, fields Fields) error {
	return r.BulkUpdate(ctx, userID, c, []string{id}, fields)
}

// BulkUpdate merges fields into every listed document inside one transaction.
// If any document is missing nothing is written.
func (r *BadgerRepository) BulkUpdate(ctx context.Context, userID string, c Collection, ids []string, fields Fields) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	log := r.log.WithFields(logrus.Fields{"user_id": userID, "collection": c, "count": len(ids)})

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := patch(txn, documentKey(userID, c, id), fields); err != nil {
				return fmt.Errorf("%s %s: %w", c, id, err)
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to update documents in BadgerDB")
		return fmt.Errorf("failed to update %s: %w", c, err)
	}

	log.Debug("Documents updated")
	r.publish(ctx, userID)
	return nil
}

// Remove deletes one document.
func (r *BadgerRepository) Remove(ctx context.Context, userID string, c Collection, id string) error {
	return r.BulkDelete(ctx, userID, c, []string{id})
}

// BulkDelete deletes every listed document inside one transaction.
func (r *BadgerRepository) BulkDelete(ctx context.Context, userID string, c Collection, ids []string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	log := r.log.WithFields(logrus.Fields{"user_id": userID, "collection": c, "count": len(ids)})

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(documentKey(userID, c, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to delete documents from BadgerDB")
		return fmt.Errorf("failed to delete %s: %w", c, err)
	}

	log.Debug("Documents deleted")
	r.publish(ctx, userID)
	return nil
}

// Seed writes every document of snap with its own id.
func (r *BadgerRepository) Seed(ctx context.Context, userID string, snap domain.Snapshot) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	log := r.log.WithField("user_id", userID)

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, c := range snap.Categories {
			if err := set(txn, userID, Categories, c.ID, c); err != nil {
				return err
			}
		}
		for _, f := range snap.Folders {
			if err := set(txn, userID, Folders, f.ID, f); err != nil {
				return err
			}
		}
		for _, l := range snap.Labels {
			if err := set(txn, userID, Labels, l.ID, l); err != nil {
				return err
			}
		}
		for _, b := range snap.Bookmarks {
			if err := set(txn, userID, Bookmarks, b.ID, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to seed user data")
		return fmt.Errorf("failed to seed data for user %s: %w", userID, err)
	}

	log.Info("User data seeded")
	r.publish(ctx, userID)
	return nil
}

// Reset deletes every document of the user.
func (r *BadgerRepository) Reset(ctx context.Context, userID string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	log := r.log.WithField("user_id", userID)

	err := r.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		prefix := userPrefix(userID)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to reset user data")
		return fmt.Errorf("failed to reset data for user %s: %w", userID, err)
	}

	log.Info("User data reset")
	r.publish(ctx, userID)
	return nil
}

// Snapshot reads every collection of the user in one read-only transaction.
func (r *BadgerRepository) Snapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	if err := checkUser(userID); err != nil {
		return domain.Snapshot{}, err
	}
	snap := domain.Snapshot{
		Bookmarks:  []domain.Bookmark{},
		Folders:    []domain.Folder{},
		Categories: []domain.Category{},
		Labels:     []domain.Label{},
	}
	prefix := userPrefix(userID)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			c, _, ok := strings.Cut(strings.TrimPrefix(key, string(prefix)), ":")
			if !ok {
				continue
			}
			err := item.Value(func(val []byte) error {
				return decodeInto(&snap, Collection(c), val)
			})
			if err != nil {
				return fmt.Errorf("failed to decode document %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).WithField("user_id", userID).Error("Failed to read snapshot from BadgerDB")
		return domain.Snapshot{}, fmt.Errorf("failed to read snapshot for user %s: %w", userID, err)
	}
	return snap, nil
}

// Subscribe registers fn to receive the user's snapshot after every write.
func (r *BadgerRepository) Subscribe(userID string, fn func(domain.Snapshot)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextObs
	r.nextObs++
	if r.observers[userID] == nil {
		r.observers[userID] = make(map[int]func(domain.Snapshot))
	}
	r.observers[userID][id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers[userID], id)
		if len(r.observers[userID]) == 0 {
			delete(r.observers, userID)
		}
	}
}

// publish delivers a fresh snapshot to the user's observers. Observers run
// on the writer's goroutine, after the write has committed.
func (r *BadgerRepository) publish(ctx context.Context, userID string) {
	r.mu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(r.observers[userID]))
	for _, fn := range r.observers[userID] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap, err := r.Snapshot(ctx, userID)
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"observers": len(fns),
		}).Error("Failed to publish snapshot; subscribers keep their previous state")
		return
	}
	for _, fn := range fns {
		fn(snap.Clone())
	}
}

func set(txn *badger.Txn, userID string, c Collection, id string, doc any) error {
	value, err := encodeWithID(doc, id)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", c, id, err)
	}
	return txn.SetEntry(badger.NewEntry(documentKey(userID, c, id), value))
}

// patch merges fields into the JSON document stored at key.
func patch(txn *badger.Txn, key []byte, fields Fields) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for name, v := range fields {
		if name == "id" {
			continue
		}
		if v == nil {
			delete(doc, name)
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal field %s: %w", name, err)
		}
		doc[name] = encoded
	}

	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return txn.SetEntry(badger.NewEntry(key, value))
}

// encodeWithID marshals doc as a JSON object whose "id" field is id.
func encodeWithID(doc any, id string) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	fields["id"], _ = json.Marshal(id)
	return json.Marshal(fields)
}

func decodeInto(snap *domain.Snapshot, c Collection, val []byte) error {
	switch c {
	case Bookmarks:
		var b domain.Bookmark
		if err := json.Unmarshal(val, &b); err != nil {
			return err
		}
		snap.Bookmarks = append(snap.Bookmarks, b)
	case Folders:
		var f domain.Folder
		if err := json.Unmarshal(val, &f); err != nil {
			return err
		}
		snap.Folders = append(snap.Folders, f)
	case Categories:
		var cat domain.Category
		if err := json.Unmarshal(val, &cat); err != nil {
			return err
		}
		snap.Categories = append(snap.Categories, cat)
	case Labels:
		var l domain.Label
		if err := json.Unmarshal(val, &l); err != nil {
			return err
		}
		snap.Labels = append(snap.Labels, l)
	}
	return nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}

// Package library is the per-user application state: the latest store
// snapshot, the selected view and every command a user can issue.
package library

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"snippit/internal/archive"
	"snippit/internal/bulk"
	"snippit/internal/domain"
	"snippit/internal/storage"
)

// Options tunes a Library. The zero value is usable.
type Options struct {
	// Fetcher backs the archival workflow. Nil disables archiving.
	Fetcher archive.Fetcher
	// Notify receives transient user-facing messages.
	Notify archive.Notifier
	// Defaults seeds an empty library when SeedDefaults is set and is the
	// target of ResetToDefaults.
	Defaults     domain.Snapshot
	SeedDefaults bool
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Library holds one user's state. Commands write through the store and the
// resulting snapshot arrives back through the store subscription, so reads
// always see a single consistent snapshot.
type Library struct {
	userID   string
	store    storage.Repository
	log      logrus.FieldLogger
	now      func() time.Time
	defaults domain.Snapshot
	notifyFn archive.Notifier

	selection *bulk.Selection
	bulk      *bulk.Coordinator
	archiver  *archive.Workflow

	// unsubscribe is set once during Open.
	unsubscribe func()

	mu              sync.RWMutex
	snap            domain.Snapshot
	delivered       bool
	filter          domain.ActiveFilter
	search          string
	sortBy          domain.SortBy
	privateUnlocked bool
}

// Open subscribes to userID's collections, loads the current snapshot and
// seeds defaults into an empty library when asked to.
func Open(ctx context.Context, userID string, store storage.Repository, logger logrus.FieldLogger, opts Options) (*Library, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := logger.WithFields(logrus.Fields{"component": "library", "user_id": userID})

	l := &Library{
		userID:    userID,
		store:     store,
		log:       log,
		now:       now,
		defaults:  opts.Defaults,
		notifyFn:  opts.Notify,
		selection: bulk.NewSelection(),
		filter:    domain.AllView(),
		sortBy:    domain.SortNewest,
		snap:      emptySnapshot(),
	}
	l.bulk = bulk.NewCoordinator(userID, store, l.selection, logger)
	if opts.Fetcher != nil {
		l.archiver = archive.NewWorkflow(userID, store, opts.Fetcher, opts.Notify, logger)
	}

	l.unsubscribe = store.Subscribe(userID, l.receive)

	initial, err := store.Snapshot(ctx, userID)
	if err != nil {
		l.unsubscribe()
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	l.mu.Lock()
	if !l.delivered {
		l.snap = initial
	}
	l.mu.Unlock()

	if opts.SeedDefaults && initial.IsEmpty() {
		if err := store.Seed(ctx, userID, opts.Defaults); err != nil {
			l.unsubscribe()
			return nil, fmt.Errorf("failed to seed library: %w", err)
		}
		log.Info("Seeded default library")
	}
	return l, nil
}

func emptySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Bookmarks:  []domain.Bookmark{},
		Folders:    []domain.Folder{},
		Categories: []domain.Category{},
		Labels:     []domain.Label{},
	}
}

// receive replaces the held snapshot. The store calls it after every write.
func (l *Library) receive(s domain.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = s
	l.delivered = true
	l.log.WithField("bookmarks", len(s.Bookmarks)).Debug("Snapshot received")
}

// Close stops receiving snapshots.
func (l *Library) Close() {
	l.unsubscribe()
}

// UserID returns the namespace this library belongs to.
func (l *Library) UserID() string { return l.userID }

// Snapshot returns a copy of the current snapshot.
func (l *Library) Snapshot() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap.Clone()
}

// current returns the held snapshot without copying. Callers must not
// mutate it.
func (l *Library) current() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *Library) bookmark(id string) (domain.Bookmark, error) {
	b, ok := l.current().Bookmark(id)
	if !ok {
		return domain.Bookmark{}, fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

// unlockedBookmark is bookmark for commands that reveal or act on a
// bookmark's content. Private bookmarks need the unlock signal.
func (l *Library) unlockedBookmark(id string) (domain.Bookmark, error) {
	b, err := l.bookmark(id)
	if err != nil {
		return domain.Bookmark{}, err
	}
	if b.IsPrivate && !l.PrivateUnlocked() {
		return domain.Bookmark{}, domain.ErrPrivateLocked
	}
	return b, nil
}

func (l *Library) notify(msg string) {
	if l.notifyFn != nil {
		l.notifyFn(msg)
	}
}

// writeFailed logs a store write error and wraps it for the caller.
func (l *Library) writeFailed(err error, op string) error {
	l.log.WithError(err).WithField("op", op).Error("Store write failed")
	return fmt.Errorf("%s: %w", op, err)
}

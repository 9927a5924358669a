package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
	"snippit/internal/storage"
)

// State is the archival state of a single bookmark.
type State int

const (
	StateIdle State = iota
	StateArchiving
	StateArchived
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateArchiving:
		return "archiving"
	case StateArchived:
		return "archived"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrAlreadyArchiving is returned when an archival for the same bookmark is
// still in flight.
var ErrAlreadyArchiving = &Error{Reason: ReasonBusy, Message: "This bookmark is already being archived."}

// Store is the write side of the entity store the workflow needs.
type Store interface {
	Update(ctx context.Context, userID string, c storage.Collection, id string, fields storage.Fields) error
}

// Notifier receives transient user-facing messages.
type Notifier func(message string)

// Workflow archives bookmarks for one user.
type Workflow struct {
	userID  string
	store   Store
	fetcher Fetcher
	notify  Notifier
	log     logrus.FieldLogger

	mu       sync.Mutex
	current  string
	inFlight map[string]struct{}
}

// NewWorkflow creates an archival workflow. notify may be nil.
func NewWorkflow(userID string, store Store, fetcher Fetcher, notify Notifier, logger logrus.FieldLogger) *Workflow {
	if notify == nil {
		notify = func(string) {}
	}
	return &Workflow{
		userID:   userID,
		store:    store,
		fetcher:  fetcher,
		notify:   notify,
		log:      logger.WithFields(logrus.Fields{"component": "archive", "user_id": userID}),
		inFlight: make(map[string]struct{}),
	}
}

// Current returns the id of the most recently started archival, or "" when
// none is running. It is a display hint, not a lock.
func (w *Workflow) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// State reports the archival state of b.
func (w *Workflow) State(b domain.Bookmark) State {
	w.mu.Lock()
	_, running := w.inFlight[b.ID]
	w.mu.Unlock()
	switch {
	case running:
		return StateArchiving
	case b.IsArchived():
		return StateArchived
	case b.ArchiveFailed:
		return StateFailed
	default:
		return StateIdle
	}
}

func (w *Workflow) begin(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[id]; ok {
		return false
	}
	w.inFlight[id] = struct{}{}
	w.current = id
	return true
}

func (w *Workflow) end(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, id)
	if w.current == id {
		w.current = ""
	}
}

// Archive fetches, validates and stores a snapshot of b's page. On failure
// the bookmark is marked archive_failed and the classified *Error is
// returned. It blocks until the attempt completes.
func (w *Workflow) Archive(ctx context.Context, b domain.Bookmark) error {
	if !w.begin(b.ID) {
		return ErrAlreadyArchiving
	}
	defer w.end(b.ID)

	log := w.log.WithFields(logrus.Fields{"bookmark_id": b.ID, "url": b.URL})

	if err := w.store.Update(ctx, w.userID, storage.Bookmarks, b.ID, storage.Fields{domain.FieldArchiveFailed: false}); err != nil {
		log.WithError(err).Error("Failed to reset archive state")
		return &Error{Reason: ReasonStorage, Message: "Failed to archive bookmark.", Err: err}
	}
	w.notify(fmt.Sprintf("Archiving %q...", b.Title))

	html, err := w.fetcher.Fetch(ctx, b.URL)
	if err == nil {
		err = Validate(html)
	}
	if err != nil {
		return w.fail(ctx, log, b, err)
	}

	if err := w.store.Update(ctx, w.userID, storage.Bookmarks, b.ID, storage.Fields{
		domain.FieldArchivedHTML:  html,
		domain.FieldArchiveFailed: false,
	}); err != nil {
		log.WithError(err).Error("Failed to store archived content")
		return &Error{Reason: ReasonStorage, Message: "Failed to archive bookmark.", Err: err}
	}
	log.WithField("chars", len(html)).Info("Bookmark archived")
	w.notify("Page archived successfully!")
	return nil
}

func (w *Workflow) fail(ctx context.Context, log logrus.FieldLogger, b domain.Bookmark, cause error) error {
	var archiveErr *Error
	if !errors.As(cause, &archiveErr) {
		archiveErr = &Error{Reason: ReasonNetwork, Message: "Failed to archive bookmark.", Err: cause}
	}
	log.WithError(cause).WithField("reason", archiveErr.Reason).Warn("Archival failed")

	if err := w.store.Update(ctx, w.userID, storage.Bookmarks, b.ID, storage.Fields{
		domain.FieldArchivedHTML:  nil,
		domain.FieldArchiveFailed: true,
	}); err != nil {
		log.WithError(err).Error("Failed to record archive failure")
	}
	w.notify(fmt.Sprintf("Archive failed: %s", archiveErr.Message))
	return archiveErr
}

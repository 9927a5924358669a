package storage

import (
	"context"

	"snippit/internal/domain"
)

// Collection names one of a user's document sets.
type Collection string

const (
	Bookmarks  Collection = "bookmarks"
	Folders    Collection = "folders"
	Categories Collection = "categories"
	Labels     Collection = "labels"
)

// Fields is a partial document update keyed by persisted field name.
// A nil value removes the field from the stored document.
type Fields map[string]any

// Repository is the per-user entity store. Every committed write triggers a
// fresh Snapshot delivery to the user's subscribers.
type Repository interface {
	// Snapshot reads all four collections of a user in one consistent view.
	Snapshot(ctx context.Context, userID string) (domain.Snapshot, error)

	// Add stores doc under a newly generated id and returns that id.
	Add(ctx context.Context, userID string, c Collection, doc any) (string, error)

	// Update merges fields into an existing document.
	Update(ctx context.Context, userID string, c Collection, id string, fields Fields) error

	// Remove deletes a document. Removing a missing document is not an error.
	Remove(ctx context.Context, userID string, c Collection, id string) error

	// BulkUpdate applies the same fields to every id in one atomic batch.
	BulkUpdate(ctx context.Context, userID string, c Collection, ids []string, fields Fields) error

	// BulkDelete removes every id in one atomic batch.
	BulkDelete(ctx context.Context, userID string, c Collection, ids []string) error

	// Seed writes a whole snapshot, keeping document ids, in one batch.
	Seed(ctx context.Context, userID string, snap domain.Snapshot) error

	// Reset deletes every document of a user in one batch.
	Reset(ctx context.Context, userID string) error

	// Subscribe registers fn for snapshots of userID and returns the
	// function that removes it.
	Subscribe(userID string, fn func(domain.Snapshot)) (unsubscribe func())

	// Close gracefully shuts down the repository connection.
	Close() error
}

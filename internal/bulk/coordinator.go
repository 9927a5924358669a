// Package bulk applies one mutation to every selected bookmark.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
	"snippit/internal/storage"
)

// Store is the subset of the entity store bulk operations write through.
type Store interface {
	Update(ctx context.Context, userID string, c storage.Collection, id string, fields storage.Fields) error
	BulkUpdate(ctx context.Context, userID string, c storage.Collection, ids []string, fields storage.Fields) error
	BulkDelete(ctx context.Context, userID string, c storage.Collection, ids []string) error
}

// Coordinator runs bulk operations over a Selection. Every operation empties
// the selection, whether or not its writes succeed.
type Coordinator struct {
	userID string
	store  Store
	sel    *Selection
	log    logrus.FieldLogger
}

// NewCoordinator creates a coordinator for one user's selection.
func NewCoordinator(userID string, store Store, sel *Selection, logger logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		userID: userID,
		store:  store,
		sel:    sel,
		log:    logger.WithFields(logrus.Fields{"component": "bulk", "user_id": userID}),
	}
}

// Move relocates every selected bookmark into folderID as one atomic batch.
// The category is cleared and privacy follows the target folder.
func (c *Coordinator) Move(ctx context.Context, folderID string) (int, error) {
	ids := c.sel.take()
	if len(ids) == 0 {
		return 0, nil
	}
	err := c.store.BulkUpdate(ctx, c.userID, storage.Bookmarks, ids, storage.Fields{
		domain.FieldFolderID:   folderID,
		domain.FieldCategoryID: nil,
		domain.FieldIsPrivate:  folderID == domain.PrivateFolderID,
	})
	if err != nil {
		c.log.WithError(err).WithField("count", len(ids)).Error("Bulk move failed")
		return 0, fmt.Errorf("move %d bookmarks: %w", len(ids), err)
	}
	c.log.WithFields(logrus.Fields{"count": len(ids), "folder_id": folderID}).Info("Bookmarks moved")
	return len(ids), nil
}

// AddLabels unions labelIDs into the label set of every selected bookmark.
// Each bookmark is written separately, so a failure leaves earlier writes in
// place; all failures are joined into the returned error. current supplies
// the bookmarks' present label sets.
func (c *Coordinator) AddLabels(ctx context.Context, current []domain.Bookmark, labelIDs []string) (int, error) {
	ids := c.sel.take()
	if len(ids) == 0 || len(labelIDs) == 0 {
		return 0, nil
	}

	byID := make(map[string]domain.Bookmark, len(current))
	for _, b := range current {
		byID[b.ID] = b
	}

	var errs []error
	updated := 0
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			errs = append(errs, fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound))
			continue
		}
		labels := Union(b.Labels, labelIDs)
		if err := c.store.Update(ctx, c.userID, storage.Bookmarks, id, storage.Fields{domain.FieldLabels: labels}); err != nil {
			errs = append(errs, fmt.Errorf("bookmark %s: %w", id, err))
			continue
		}
		updated++
	}

	log := c.log.WithFields(logrus.Fields{"count": updated, "failed": len(errs)})
	if len(errs) > 0 {
		log.Warn("Bulk label add partially failed")
		return updated, errors.Join(errs...)
	}
	log.Info("Labels added to bookmarks")
	return updated, nil
}

// Delete removes every selected bookmark as one atomic batch.
func (c *Coordinator) Delete(ctx context.Context) (int, error) {
	ids := c.sel.take()
	if len(ids) == 0 {
		return 0, nil
	}
	if err := c.store.BulkDelete(ctx, c.userID, storage.Bookmarks, ids); err != nil {
		c.log.WithError(err).WithField("count", len(ids)).Error("Bulk delete failed")
		return 0, fmt.Errorf("delete %d bookmarks: %w", len(ids), err)
	}
	c.log.WithField("count", len(ids)).Info("Bookmarks deleted")
	return len(ids), nil
}

// Union returns existing followed by the members of added it lacks.
func Union(existing, added []string) []string {
	out := slices.Clone(existing)
	if out == nil {
		out = []string{}
	}
	for _, id := range added {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

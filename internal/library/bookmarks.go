package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"snippit/internal/archive"
	"snippit/internal/domain"
	"snippit/internal/location"
	"snippit/internal/storage"
)

// BookmarkInput is the editable part of a bookmark.
type BookmarkInput struct {
	URL         string
	Title       string
	Description string
	Notes       string
	ImageURL    string
	Labels      []string
	Location    location.Location
}

func (l *Library) validateInput(in BookmarkInput) (BookmarkInput, error) {
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)
	if in.URL == "" || in.Title == "" {
		return in, domain.Validationf("A bookmark needs a URL and a title.")
	}
	if !in.Location.Valid() {
		return in, domain.Validationf("A bookmark can be in a folder or a category, not both.")
	}
	s := l.current()
	if in.Location.FolderID != "" {
		if _, ok := s.Folder(in.Location.FolderID); !ok {
			return in, domain.Validationf("Folder %q does not exist.", in.Location.FolderID)
		}
	}
	if in.Location.CategoryID != "" {
		if _, ok := s.Category(in.Location.CategoryID); !ok {
			return in, domain.Validationf("Category %q does not exist.", in.Location.CategoryID)
		}
	}
	if in.Labels == nil {
		in.Labels = []string{}
	}
	return in, nil
}

// SaveBookmark creates a bookmark when id is empty and updates it otherwise.
// It returns the bookmark id. Privacy always follows the folder.
func (l *Library) SaveBookmark(ctx context.Context, id string, in BookmarkInput) (string, error) {
	in, err := l.validateInput(in)
	if err != nil {
		return "", err
	}
	isPrivate := in.Location.FolderID == domain.PrivateFolderID

	if id == "" {
		b := domain.Bookmark{
			URL:         in.URL,
			Title:       in.Title,
			Description: in.Description,
			Notes:       in.Notes,
			ImageURL:    in.ImageURL,
			FolderID:    in.Location.FolderID,
			CategoryID:  in.Location.CategoryID,
			Labels:      in.Labels,
			CreatedAt:   l.now().UTC(),
			IsPrivate:   isPrivate,
		}
		newID, err := l.store.Add(ctx, l.userID, storage.Bookmarks, b)
		if err != nil {
			return "", l.writeFailed(err, "add bookmark")
		}
		l.notify("Bookmark created successfully!")
		return newID, nil
	}

	if _, err := l.bookmark(id); err != nil {
		return "", err
	}
	fields := storage.Fields{
		domain.FieldURL:         in.URL,
		domain.FieldTitle:       in.Title,
		domain.FieldDescription: in.Description,
		domain.FieldNotes:       in.Notes,
		domain.FieldImageURL:    nilIfEmpty(in.ImageURL),
		domain.FieldLabels:      in.Labels,
		domain.FieldFolderID:    nilIfEmpty(in.Location.FolderID),
		domain.FieldCategoryID:  nilIfEmpty(in.Location.CategoryID),
		domain.FieldIsPrivate:   isPrivate,
	}
	if err := l.store.Update(ctx, l.userID, storage.Bookmarks, id, fields); err != nil {
		return "", l.writeFailed(err, "update bookmark")
	}
	l.notify("Bookmark updated successfully!")
	return id, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RemoveBookmark deletes one bookmark.
func (l *Library) RemoveBookmark(ctx context.Context, id string) error {
	if err := l.store.Remove(ctx, l.userID, storage.Bookmarks, id); err != nil {
		return l.writeFailed(err, "remove bookmark")
	}
	return nil
}

// Visit records that the user opened a bookmark and returns its URL.
func (l *Library) Visit(ctx context.Context, id string) (string, error) {
	b, err := l.unlockedBookmark(id)
	if err != nil {
		return "", err
	}
	err = l.store.Update(ctx, l.userID, storage.Bookmarks, id, storage.Fields{
		domain.FieldVisitCount:    b.VisitCount + 1,
		domain.FieldLastVisitedAt: l.now().UTC(),
	})
	if err != nil {
		return "", l.writeFailed(err, "visit bookmark")
	}
	return b.URL, nil
}

// MarkUnread resets the visit count so the bookmark returns to the unread bucket.
func (l *Library) MarkUnread(ctx context.Context, id string) error {
	if _, err := l.bookmark(id); err != nil {
		return err
	}
	if err := l.store.Update(ctx, l.userID, storage.Bookmarks, id, storage.Fields{domain.FieldVisitCount: 0}); err != nil {
		return l.writeFailed(err, "mark unread")
	}
	return nil
}

// ToggleFavorite flips a bookmark's favorite flag.
func (l *Library) ToggleFavorite(ctx context.Context, id string) error {
	b, err := l.bookmark(id)
	if err != nil {
		return err
	}
	if err := l.store.Update(ctx, l.userID, storage.Bookmarks, id, storage.Fields{domain.FieldIsFavorite: !b.IsFavorite}); err != nil {
		return l.writeFailed(err, "toggle favorite")
	}
	return nil
}

// BulkMove moves the selection into folderID.
func (l *Library) BulkMove(ctx context.Context, folderID string) (int, error) {
	if _, ok := l.current().Folder(folderID); !ok {
		l.selection.Clear()
		return 0, domain.Validationf("Folder %q does not exist.", folderID)
	}
	return l.bulk.Move(ctx, folderID)
}

// BulkAddLabels adds labelIDs to every selected bookmark.
func (l *Library) BulkAddLabels(ctx context.Context, labelIDs []string) (int, error) {
	return l.bulk.AddLabels(ctx, l.current().Bookmarks, labelIDs)
}

// BulkDelete deletes every selected bookmark.
func (l *Library) BulkDelete(ctx context.Context) (int, error) {
	return l.bulk.Delete(ctx)
}

// ShareFolder renders a folder's bookmarks as shareable plain text.
func (l *Library) ShareFolder(folderID string) (string, error) {
	s := l.current()
	f, ok := s.Folder(folderID)
	if !ok {
		return "", fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	if f.IsReserved() {
		return "", domain.Invariantf("The %q folder cannot be shared.", f.Name)
	}
	var blocks []string
	for _, b := range s.Bookmarks {
		if b.FolderID == folderID {
			blocks = append(blocks, b.Title+"\n"+b.URL)
		}
	}
	if len(blocks) == 0 {
		return "", domain.Validationf("This folder is empty.")
	}
	return fmt.Sprintf("Bookmarks from %q:\n\n", f.Name) + strings.Join(blocks, "\n\n"), nil
}

// Export writes the full snapshot as indented JSON.
func (l *Library) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.Snapshot()); err != nil {
		return fmt.Errorf("failed to export library: %w", err)
	}
	return nil
}

// ResetToDefaults deletes every document and re-seeds the defaults.
func (l *Library) ResetToDefaults(ctx context.Context) error {
	if err := l.store.Reset(ctx, l.userID); err != nil {
		return l.writeFailed(err, "reset library")
	}
	if err := l.store.Seed(ctx, l.userID, l.defaults); err != nil {
		return l.writeFailed(err, "seed library")
	}
	l.resetFilterIf(func(domain.ActiveFilter) bool { return true })
	l.log.Info("Library reset to defaults")
	return nil
}

// Archive snapshots a bookmark's page. It blocks until the attempt ends.
func (l *Library) Archive(ctx context.Context, id string) error {
	if l.archiver == nil {
		return domain.Validationf("Archiving is not configured.")
	}
	b, err := l.unlockedBookmark(id)
	if err != nil {
		return err
	}
	return l.archiver.Archive(ctx, b)
}

// Archiving returns the id of the archival most recently started, or "".
func (l *Library) Archiving() string {
	if l.archiver == nil {
		return ""
	}
	return l.archiver.Current()
}

// ArchiveState reports where a bookmark stands in the archival workflow.
func (l *Library) ArchiveState(id string) (archive.State, error) {
	b, err := l.bookmark(id)
	if err != nil {
		return archive.StateIdle, err
	}
	switch {
	case l.archiver != nil:
		return l.archiver.State(b), nil
	case b.IsArchived():
		return archive.StateArchived, nil
	case b.ArchiveFailed:
		return archive.StateFailed, nil
	default:
		return archive.StateIdle, nil
	}
}

package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
	"snippit/internal/storage"
)

// AddCategory creates a category and returns its id.
func (l *Library) AddCategory(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validationf("Category name cannot be empty.")
	}
	id, err := l.store.Add(ctx, l.userID, storage.Categories, domain.Category{Name: name})
	if err != nil {
		return "", l.writeFailed(err, "add category")
	}
	return id, nil
}

// RenameCategory changes a category's name.
func (l *Library) RenameCategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Validationf("Category name cannot be empty.")
	}
	if _, ok := l.current().Category(id); !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if err := l.store.Update(ctx, l.userID, storage.Categories, id, storage.Fields{domain.FieldName: name}); err != nil {
		return l.writeFailed(err, "rename category")
	}
	return nil
}

// DeleteCategory removes a category that no folder and no bookmark
// references directly.
func (l *Library) DeleteCategory(ctx context.Context, id string) error {
	s := l.current()
	c, ok := s.Category(id)
	if !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if slices.ContainsFunc(s.Folders, func(f domain.Folder) bool { return f.CategoryID == id }) {
		return domain.Invariantf("Cannot delete %q. Please delete or move all folders from this category first.", c.Name)
	}
	if slices.ContainsFunc(s.Bookmarks, func(b domain.Bookmark) bool { return b.CategoryID == id }) {
		return domain.Invariantf("Cannot delete %q. Please delete or move all bookmarks directly assigned to this category first.", c.Name)
	}
	if err := l.store.Remove(ctx, l.userID, storage.Categories, id); err != nil {
		return l.writeFailed(err, "delete category")
	}
	l.resetFilterIf(func(f domain.ActiveFilter) bool { return f.Kind == domain.FilterCategory && f.ID == id })
	return nil
}

// AddFolder creates an unpinned folder inside categoryID.
func (l *Library) AddFolder(ctx context.Context, name, categoryID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validationf("Folder name cannot be empty.")
	}
	if categoryID == "" {
		return "", domain.Validationf("A folder needs a category.")
	}
	if _, ok := l.current().Category(categoryID); !ok {
		return "", domain.Validationf("Category %q does not exist.", categoryID)
	}
	id, err := l.store.Add(ctx, l.userID, storage.Folders, domain.Folder{Name: name, CategoryID: categoryID})
	if err != nil {
		return "", l.writeFailed(err, "add folder")
	}
	return id, nil
}

func (l *Library) mutableFolder(id string) (domain.Folder, error) {
	f, ok := l.current().Folder(id)
	if !ok {
		return domain.Folder{}, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if f.IsReserved() {
		return domain.Folder{}, domain.Invariantf("The %q folder cannot be changed.", f.Name)
	}
	return f, nil
}

// RenameFolder changes a folder's name.
func (l *Library) RenameFolder(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Validationf("Folder name cannot be empty.")
	}
	if _, err := l.mutableFolder(id); err != nil {
		return err
	}
	if err := l.store.Update(ctx, l.userID, storage.Folders, id, storage.Fields{domain.FieldName: name}); err != nil {
		return l.writeFailed(err, "rename folder")
	}
	return nil
}

// TogglePin flips a folder's pinned flag.
func (l *Library) TogglePin(ctx context.Context, id string) error {
	f, err := l.mutableFolder(id)
	if err != nil {
		return err
	}
	if err := l.store.Update(ctx, l.userID, storage.Folders, id, storage.Fields{domain.FieldIsPinned: !f.IsPinned}); err != nil {
		return l.writeFailed(err, "toggle pin")
	}
	return nil
}

// DeleteFolder removes a folder after moving its bookmarks into the first
// other folder. The last ordinary folder cannot be deleted.
func (l *Library) DeleteFolder(ctx context.Context, id string) error {
	f, err := l.mutableFolder(id)
	if err != nil {
		return err
	}
	s := l.current()

	fallback := ""
	for _, other := range s.Folders {
		if other.ID != id && !other.IsReserved() {
			fallback = other.ID
			break
		}
	}
	if fallback == "" {
		return domain.Invariantf("Cannot delete %q as it is your only folder.", f.Name)
	}

	var orphans []string
	for _, b := range s.Bookmarks {
		if b.FolderID == id {
			orphans = append(orphans, b.ID)
		}
	}
	if len(orphans) > 0 {
		err := l.store.BulkUpdate(ctx, l.userID, storage.Bookmarks, orphans, storage.Fields{
			domain.FieldFolderID:  fallback,
			domain.FieldIsPrivate: false,
		})
		if err != nil {
			return l.writeFailed(err, "reassign folder bookmarks")
		}
	}
	if err := l.store.Remove(ctx, l.userID, storage.Folders, id); err != nil {
		return l.writeFailed(err, "delete folder")
	}
	l.log.WithFields(logrus.Fields{"folder_id": id, "fallback": fallback, "moved": len(orphans)}).Info("Folder deleted")
	l.resetFilterIf(func(af domain.ActiveFilter) bool {
		return (af.Kind == domain.FilterFolder || af.Kind == domain.FilterPinned) && af.ID == id
	})
	return nil
}

// AddLabel returns the label named name, creating it when no label matches
// case-insensitively. The check is advisory: concurrent adds may both create.
func (l *Library) AddLabel(ctx context.Context, name string) (domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Label{}, domain.Validationf("Label name cannot be empty")
	}
	for _, existing := range l.current().Labels {
		if strings.EqualFold(existing.Name, name) {
			return existing, nil
		}
	}
	label := domain.Label{Name: name}
	id, err := l.store.Add(ctx, l.userID, storage.Labels, label)
	if err != nil {
		return domain.Label{}, l.writeFailed(err, "add label")
	}
	label.ID = id
	return label, nil
}

// DeleteLabel strips the label from every bookmark and then removes it.
// Bookmarks are written one at a time; failures are joined.
func (l *Library) DeleteLabel(ctx context.Context, id string) error {
	s := l.current()
	if _, ok := s.Label(id); !ok {
		return fmt.Errorf("label %s: %w", id, domain.ErrNotFound)
	}

	var errs []error
	for _, b := range s.Bookmarks {
		if !b.HasLabel(id) {
			continue
		}
		kept := slices.DeleteFunc(slices.Clone(b.Labels), func(label string) bool { return label == id })
		if kept == nil {
			kept = []string{}
		}
		if err := l.store.Update(ctx, l.userID, storage.Bookmarks, b.ID, storage.Fields{domain.FieldLabels: kept}); err != nil {
			errs = append(errs, fmt.Errorf("bookmark %s: %w", b.ID, err))
		}
	}
	if err := l.store.Remove(ctx, l.userID, storage.Labels, id); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return l.writeFailed(errors.Join(errs...), "delete label")
	}
	return nil
}

func (l *Library) resetFilterIf(match func(domain.ActiveFilter) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if match(l.filter) {
		l.filter = domain.AllView()
		l.selection.Clear()
	}
}

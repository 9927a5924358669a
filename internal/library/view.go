package library

import (
	"snippit/internal/bulk"
	"snippit/internal/domain"
	"snippit/internal/filter"
	"snippit/internal/location"
	"snippit/internal/readinglist"
)

// FrequentlyVisitedCount is how many bookmarks the frequently visited strip holds.
const FrequentlyVisitedCount = 4

// SetPrivateUnlocked records the externally supplied re-authentication
// result. Locking while the private view is active falls back to all bookmarks.
func (l *Library) SetPrivateUnlocked(unlocked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.privateUnlocked = unlocked
	if !unlocked && l.filter.IsPrivate() {
		l.filter = domain.AllView()
		l.selection.Clear()
	}
}

// PrivateUnlocked reports whether the private view may be shown.
func (l *Library) PrivateUnlocked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.privateUnlocked
}

// SetFilter changes the active view and clears the selection. The private
// folder view requires the unlock signal.
func (l *Library) SetFilter(f domain.ActiveFilter) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f.IsPrivate() && !l.privateUnlocked {
		return domain.ErrPrivateLocked
	}
	l.filter = f
	l.selection.Clear()
	return nil
}

// Filter returns the active view.
func (l *Library) Filter() domain.ActiveFilter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter
}

// SetSearch changes the search term and clears the selection.
func (l *Library) SetSearch(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.search = term
	l.selection.Clear()
}

// SetSort changes the view order.
func (l *Library) SetSort(s domain.SortBy) error {
	switch s {
	case domain.SortNewest, domain.SortOldest, domain.SortMostVisited, domain.SortTitle:
	default:
		return domain.Validationf("Unknown sort order %q.", s)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sortBy = s
	return nil
}

// Visible returns the bookmarks of the active view, searched and sorted.
func (l *Library) Visible() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.visibleLocked()
}

func (l *Library) visibleLocked() []domain.Bookmark {
	q := filter.Query{Filter: l.filter, Search: l.search, SortBy: l.sortBy, Now: l.now()}
	return filter.Apply(l.snap.Bookmarks, l.snap.Folders, q)
}

// ReadingList splits the active view into unread and read buckets. The
// boolean is false when the active view is not a reading-list view.
func (l *Library) ReadingList() (readinglist.Buckets, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !filter.IsReadingListView(l.filter, l.snap.Folders) {
		return readinglist.Buckets{}, false
	}
	return readinglist.Split(l.visibleLocked()), true
}

// FrequentlyVisited returns the most visited non-private bookmarks.
func (l *Library) FrequentlyVisited() []domain.Bookmark {
	return filter.FrequentlyVisited(l.current().Bookmarks, FrequentlyVisitedCount)
}

// Resolver returns a location resolver over the current folders and categories.
func (l *Library) Resolver() *location.Resolver {
	s := l.current()
	return location.NewResolver(s.Folders, s.Categories, l.log)
}

// InitialLocation is where a bookmark added from the active view goes.
func (l *Library) InitialLocation() location.Location {
	return location.Initial(l.Filter())
}

// Selection returns the bulk selection.
func (l *Library) Selection() *bulk.Selection {
	return l.selection
}

// SelectAll toggles selection of every visible bookmark.
func (l *Library) SelectAll() {
	l.selection.SelectAll(l.Visible())
}

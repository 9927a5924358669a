package filter

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"snippit/internal/domain"
)

// AbandonedAfter is how long a bookmark may go unvisited before it counts as abandoned.
const AbandonedAfter = 30 * 24 * time.Hour

// Query is the user-selected view over a snapshot.
type Query struct {
	Filter domain.ActiveFilter
	Search string
	SortBy domain.SortBy

	// Now anchors the abandoned cutoff. Zero means time.Now().
	Now time.Time
}

// Apply derives the ordered list a view shows. It never mutates its inputs
// and returns a fresh slice.
//
// Stages run in order: privacy partition, view predicate, search, stable sort.
func Apply(bookmarks []domain.Bookmark, folders []domain.Folder, q Query) []domain.Bookmark {
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	match := viewPredicate(q.Filter, folders, now)
	search := strings.ToLower(q.Search)

	out := make([]domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.IsPrivate != q.Filter.IsPrivate() {
			continue
		}
		if !match(b) || !matchesSearch(b, search) {
			continue
		}
		out = append(out, b)
	}

	slices.SortStableFunc(out, comparator(q.SortBy))
	return out
}

func viewPredicate(f domain.ActiveFilter, folders []domain.Folder, now time.Time) func(domain.Bookmark) bool {
	switch f.Kind {
	case domain.FilterFavorites:
		return func(b domain.Bookmark) bool { return b.IsFavorite }
	case domain.FilterArchived:
		return func(b domain.Bookmark) bool { return b.IsArchived() }
	case domain.FilterAbandoned:
		cutoff := now.Add(-AbandonedAfter)
		return func(b domain.Bookmark) bool {
			if b.LastVisitedAt != nil {
				return b.LastVisitedAt.Before(cutoff)
			}
			return b.CreatedAt.Before(cutoff)
		}
	case domain.FilterCategory:
		inCategory := make(map[string]bool)
		for _, folder := range folders {
			if folder.CategoryID == f.ID {
				inCategory[folder.ID] = true
			}
		}
		return func(b domain.Bookmark) bool {
			return b.CategoryID == f.ID || (b.FolderID != "" && inCategory[b.FolderID])
		}
	case domain.FilterFolder, domain.FilterPinned:
		return func(b domain.Bookmark) bool { return b.FolderID == f.ID }
	case domain.FilterLabel:
		return func(b domain.Bookmark) bool {
			for _, id := range f.LabelIDs {
				if b.HasLabel(id) {
					return true
				}
			}
			return false
		}
	default:
		return func(domain.Bookmark) bool { return true }
	}
}

// matchesSearch expects term already lowercased.
func matchesSearch(b domain.Bookmark, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), term) ||
		strings.Contains(strings.ToLower(b.Description), term) ||
		strings.Contains(strings.ToLower(b.URL), term)
}

func comparator(sortBy domain.SortBy) func(a, b domain.Bookmark) int {
	switch sortBy {
	case domain.SortOldest:
		return func(a, b domain.Bookmark) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortMostVisited:
		return func(a, b domain.Bookmark) int { return b.VisitCount - a.VisitCount }
	case domain.SortTitle:
		// Collators keep internal buffers; one per Apply call.
		c := collate.New(language.Und)
		return func(a, b domain.Bookmark) int { return c.CompareString(a.Title, b.Title) }
	default:
		return func(a, b domain.Bookmark) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// IsReadingListView reports whether f shows reading-list semantics: the
// reading category itself, or a folder (pinned or not) inside it.
func IsReadingListView(f domain.ActiveFilter, folders []domain.Folder) bool {
	switch f.Kind {
	case domain.FilterCategory:
		return f.ID == domain.ReadingListCategoryID
	case domain.FilterFolder, domain.FilterPinned:
		for _, folder := range folders {
			if folder.ID == f.ID {
				return folder.CategoryID == domain.ReadingListCategoryID
			}
		}
	}
	return false
}

// FrequentlyVisited returns up to n non-private bookmarks with the highest
// visit counts. Ties keep their input order.
func FrequentlyVisited(bookmarks []domain.Bookmark, n int) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if !b.IsPrivate {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, comparator(domain.SortMostVisited))
	if len(out) > n {
		out = out[:n]
	}
	return out
}

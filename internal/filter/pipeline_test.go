package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippit/internal/domain"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func ids(bookmarks []domain.Bookmark) []string {
	out := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, b.ID)
	}
	return out
}

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

const day = 24 * time.Hour

func fixture() ([]domain.Bookmark, []domain.Folder) {
	folders := []domain.Folder{
		{ID: "projects", Name: "Projects", CategoryID: "work"},
		{ID: "to-read", Name: "To Read", CategoryID: domain.ReadingListCategoryID},
		{ID: domain.PrivateFolderID, Name: "Private", CategoryID: "personal", IsPrivate: true},
	}
	bookmarks := []domain.Bookmark{
		{ID: "b1", Title: "Go Blog", URL: "https://go.dev/blog", FolderID: "projects", CreatedAt: now.Add(-1 * day), IsFavorite: true, Labels: []string{"go"}},
		{ID: "b2", Title: "Rust Book", URL: "https://doc.rust-lang.org", Description: "The book", CategoryID: "work", CreatedAt: now.Add(-2 * day), VisitCount: 5},
		{ID: "b3", Title: "Long Read", URL: "https://example.com/essay", FolderID: "to-read", CreatedAt: now.Add(-40 * day), LastVisitedAt: ago(31 * day), ArchivedHTML: "<html></html>"},
		{ID: "b4", Title: "Secret", URL: "https://secret.example", FolderID: domain.PrivateFolderID, IsPrivate: true, CreatedAt: now.Add(-3 * day), Labels: []string{"go"}},
		{ID: "b5", Title: "apple pie", URL: "https://recipes.example", CreatedAt: now.Add(-50 * day), Labels: []string{"food"}},
	}
	return bookmarks, folders
}

func TestApply_ViewPredicates(t *testing.T) {
	bookmarks, folders := fixture()

	tests := []struct {
		name   string
		filter domain.ActiveFilter
		want   []string
	}{
		{"all excludes private", domain.AllView(), []string{"b1", "b2", "b3", "b5"}},
		{"favorites", domain.FavoritesView(), []string{"b1"}},
		{"archived", domain.ArchivedView(), []string{"b3"}},
		{"abandoned", domain.AbandonedView(), []string{"b3", "b5"}},
		{"category direct and via folder", domain.CategoryView("work", "Work"), []string{"b1", "b2"}},
		{"folder", domain.FolderView("projects", "Projects"), []string{"b1"}},
		{"pinned", domain.PinnedView("to-read", "To Read"), []string{"b3"}},
		{"label any of", domain.LabelView("Go or Food", "go", "food"), []string{"b1", "b5"}},
		{"label without ids", domain.LabelView("None"), []string{}},
		{"unknown kind passes all", domain.ActiveFilter{Kind: "trending"}, []string{"b1", "b2", "b3", "b5"}},
		{"private folder", domain.FolderView(domain.PrivateFolderID, "Private"), []string{"b4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(bookmarks, folders, Query{Filter: tt.filter, Now: now})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_PrivacyPartitionIsExclusive(t *testing.T) {
	bookmarks, folders := fixture()
	views := []domain.ActiveFilter{
		domain.AllView(), domain.FavoritesView(), domain.ArchivedView(), domain.AbandonedView(),
		domain.CategoryView("personal", "Personal"), domain.LabelView("Go", "go"),
		{Kind: "unknown"},
	}
	for _, v := range views {
		for _, b := range Apply(bookmarks, folders, Query{Filter: v, Now: now}) {
			assert.False(t, b.IsPrivate, "view %q leaked private bookmark %s", v.Kind, b.ID)
		}
	}

	// Any filter kind pointed at the private id shows only private bookmarks.
	private := domain.ActiveFilter{Kind: domain.FilterAll, ID: domain.PrivateFolderID}
	for _, b := range Apply(bookmarks, folders, Query{Filter: private, Now: now}) {
		assert.True(t, b.IsPrivate)
	}
}

func TestApply_Search(t *testing.T) {
	bookmarks, folders := fixture()

	got := Apply(bookmarks, folders, Query{Filter: domain.AllView(), Search: "BOOK", Now: now})
	assert.Equal(t, []string{"b2"}, ids(got), "matches title case-insensitively")

	got = Apply(bookmarks, folders, Query{Filter: domain.AllView(), Search: "go.dev", Now: now})
	assert.Equal(t, []string{"b1"}, ids(got), "matches url")

	got = Apply(bookmarks, folders, Query{Filter: domain.AllView(), Search: "the book", Now: now})
	assert.Equal(t, []string{"b2"}, ids(got), "matches description")

	all := Apply(bookmarks, folders, Query{Filter: domain.AllView(), Now: now})
	for _, term := range []string{"e", "https", "zzz", "Read"} {
		narrowed := Apply(bookmarks, folders, Query{Filter: domain.AllView(), Search: term, Now: now})
		assert.Subset(t, ids(all), ids(narrowed), "search %q must narrow", term)
	}
}

func TestApply_Sort(t *testing.T) {
	bookmarks, folders := fixture()

	tests := []struct {
		sortBy domain.SortBy
		want   []string
	}{
		{domain.SortNewest, []string{"b1", "b2", "b3", "b5"}},
		{"", []string{"b1", "b2", "b3", "b5"}},
		{domain.SortOldest, []string{"b5", "b3", "b2", "b1"}},
		{domain.SortMostVisited, []string{"b2", "b1", "b3", "b5"}},
		{domain.SortTitle, []string{"b5", "b1", "b3", "b2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sortBy), func(t *testing.T) {
			q := Query{Filter: domain.AllView(), SortBy: tt.sortBy, Now: now}
			first := Apply(bookmarks, folders, q)
			assert.Equal(t, tt.want, ids(first))
			assert.Equal(t, ids(first), ids(Apply(bookmarks, folders, q)), "sorting is deterministic")
		})
	}
}

func TestApply_SortIsStable(t *testing.T) {
	same := now.Add(-time.Hour)
	bookmarks := []domain.Bookmark{
		{ID: "x", Title: "Same", CreatedAt: same},
		{ID: "y", Title: "Same", CreatedAt: same},
		{ID: "z", Title: "Same", CreatedAt: same},
	}
	for _, s := range []domain.SortBy{domain.SortNewest, domain.SortOldest, domain.SortMostVisited, domain.SortTitle} {
		got := Apply(bookmarks, nil, Query{Filter: domain.AllView(), SortBy: s, Now: now})
		assert.Equal(t, []string{"x", "y", "z"}, ids(got), "ties keep input order for %s", s)
	}
}

func TestApply_AbandonedBoundary(t *testing.T) {
	bookmarks := []domain.Bookmark{
		{ID: "exact", CreatedAt: now.Add(-90 * day), LastVisitedAt: ago(30 * day)},
		{ID: "older", CreatedAt: now.Add(-90 * day), LastVisitedAt: ago(31 * day)},
		{ID: "recent-visit", CreatedAt: now.Add(-90 * day), LastVisitedAt: ago(day)},
		{ID: "created-exact", CreatedAt: now.Add(-30 * day)},
		{ID: "created-older", CreatedAt: now.Add(-31 * day)},
	}
	got := Apply(bookmarks, nil, Query{Filter: domain.AbandonedView(), SortBy: domain.SortTitle, Now: now})
	assert.ElementsMatch(t, []string{"older", "created-older"}, ids(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	bookmarks, folders := fixture()
	before := ids(bookmarks)
	_ = Apply(bookmarks, folders, Query{Filter: domain.AllView(), SortBy: domain.SortTitle, Now: now})
	assert.Equal(t, before, ids(bookmarks))
}

func TestIsReadingListView(t *testing.T) {
	_, folders := fixture()

	assert.True(t, IsReadingListView(domain.CategoryView(domain.ReadingListCategoryID, "Reading List"), folders))
	assert.True(t, IsReadingListView(domain.FolderView("to-read", "To Read"), folders))
	assert.True(t, IsReadingListView(domain.PinnedView("to-read", "To Read"), folders))
	assert.False(t, IsReadingListView(domain.FolderView("projects", "Projects"), folders))
	assert.False(t, IsReadingListView(domain.FolderView("missing", "Missing"), folders))
	assert.False(t, IsReadingListView(domain.AllView(), folders))
}

func TestFrequentlyVisited(t *testing.T) {
	bookmarks := []domain.Bookmark{
		{ID: "a", VisitCount: 1},
		{ID: "b", VisitCount: 9},
		{ID: "p", VisitCount: 100, IsPrivate: true},
		{ID: "c", VisitCount: 4},
		{ID: "d", VisitCount: 4},
		{ID: "e", VisitCount: 0},
	}
	got := FrequentlyVisited(bookmarks, 4)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids(got))
}

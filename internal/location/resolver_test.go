package location

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippit/internal/domain"
)

var (
	testCategories = []domain.Category{
		{ID: "work", Name: "Work"},
		{ID: domain.ReadingListCategoryID, Name: "Reading List"},
	}
	testFolders = []domain.Folder{
		{ID: "projects", Name: "Projects", CategoryID: "work"},
		{ID: "orphan", Name: "Orphan", CategoryID: "gone"},
	}
)

func newTestResolver(t *testing.T) (*Resolver, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return NewResolver(testFolders, testCategories, logger), hook
}

func TestResolver_Path(t *testing.T) {
	r, _ := newTestResolver(t)

	tests := []struct {
		name     string
		bookmark domain.Bookmark
		want     string
	}{
		{"folder with category", domain.Bookmark{FolderID: "projects"}, "Work / Projects"},
		{"folder with unknown category", domain.Bookmark{FolderID: "orphan"}, "Orphan"},
		{"direct category", domain.Bookmark{CategoryID: "work"}, "Work"},
		{"unknown folder", domain.Bookmark{FolderID: "nope"}, NoLocation},
		{"unknown category", domain.Bookmark{CategoryID: "nope"}, NoLocation},
		{"no location", domain.Bookmark{}, NoLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Path(tt.bookmark))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r, hook := newTestResolver(t)

	loc, ok := r.Resolve("projects")
	require.True(t, ok)
	assert.Equal(t, Location{FolderID: "projects"}, loc, "selecting a folder clears the category")

	loc, ok = r.Resolve("work")
	require.True(t, ok)
	assert.Equal(t, Location{CategoryID: "work"}, loc, "selecting a category clears the folder")

	loc, ok = r.Resolve("")
	require.True(t, ok)
	assert.True(t, loc.IsZero())
	assert.Empty(t, hook.AllEntries())

	loc, ok = r.Resolve("missing")
	assert.False(t, ok)
	assert.True(t, loc.IsZero())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "missing", hook.LastEntry().Data["selection"])
}

func TestResolver_EffectiveCategory(t *testing.T) {
	r, _ := newTestResolver(t)

	c, ok := r.EffectiveCategory(domain.Bookmark{FolderID: "projects"})
	require.True(t, ok)
	assert.Equal(t, "work", c.ID)

	c, ok = r.EffectiveCategory(domain.Bookmark{CategoryID: domain.ReadingListCategoryID})
	require.True(t, ok)
	assert.Equal(t, "Reading List", c.Name)

	_, ok = r.EffectiveCategory(domain.Bookmark{FolderID: "orphan"})
	assert.False(t, ok)

	_, ok = r.EffectiveCategory(domain.Bookmark{})
	assert.False(t, ok)
}

func TestLocation_Valid(t *testing.T) {
	assert.True(t, Location{}.Valid())
	assert.True(t, Location{FolderID: "f"}.Valid())
	assert.True(t, Location{CategoryID: "c"}.Valid())
	assert.False(t, Location{FolderID: "f", CategoryID: "c"}.Valid())
}

func TestInitial(t *testing.T) {
	assert.Equal(t, Location{FolderID: "f1"}, Initial(domain.FolderView("f1", "F1")))
	assert.Equal(t, Location{CategoryID: "c1"}, Initial(domain.CategoryView("c1", "C1")))
	assert.True(t, Initial(domain.PinnedView("f1", "F1")).IsZero())
	assert.True(t, Initial(domain.AllView()).IsZero())
}

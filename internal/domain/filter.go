package domain

// FilterKind names the view a user has selected.
type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterFavorites FilterKind = "favorites"
	FilterArchived  FilterKind = "archived"
	FilterAbandoned FilterKind = "abandoned"
	FilterCategory  FilterKind = "category"
	FilterFolder    FilterKind = "folder"
	FilterLabel     FilterKind = "label"
	FilterPinned    FilterKind = "pinned"
)

// ActiveFilter selects which bookmarks a view shows. It is ephemeral and
// never persisted. Build it with the constructors below: category, folder and
// pinned views carry a single ID, label views carry a set of LabelIDs.
type ActiveFilter struct {
	Kind FilterKind
	Name string

	ID       string
	LabelIDs []string
}

// AllView is the default view.
func AllView() ActiveFilter {
	return ActiveFilter{Kind: FilterAll, Name: "All Bookmarks"}
}

func FavoritesView() ActiveFilter {
	return ActiveFilter{Kind: FilterFavorites, Name: "Favorites"}
}

func ArchivedView() ActiveFilter {
	return ActiveFilter{Kind: FilterArchived, Name: "Archived"}
}

func AbandonedView() ActiveFilter {
	return ActiveFilter{Kind: FilterAbandoned, Name: "Abandoned"}
}

func CategoryView(id, name string) ActiveFilter {
	return ActiveFilter{Kind: FilterCategory, ID: id, Name: name}
}

func FolderView(id, name string) ActiveFilter {
	return ActiveFilter{Kind: FilterFolder, ID: id, Name: name}
}

func PinnedView(id, name string) ActiveFilter {
	return ActiveFilter{Kind: FilterPinned, ID: id, Name: name}
}

// LabelView matches bookmarks carrying any of ids.
func LabelView(name string, ids ...string) ActiveFilter {
	return ActiveFilter{Kind: FilterLabel, LabelIDs: ids, Name: name}
}

// IsPrivate reports whether the filter targets the private collection.
func (f ActiveFilter) IsPrivate() bool {
	return f.ID == PrivateFolderID
}

// SortBy orders a view.
type SortBy string

const (
	SortNewest      SortBy = "newest"
	SortOldest      SortBy = "oldest"
	SortMostVisited SortBy = "most-visited"
	SortTitle       SortBy = "title"
)

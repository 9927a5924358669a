package domain

import "time"

const (
	// PrivateFolderID identifies the single protected folder holding private bookmarks.
	PrivateFolderID = "private"

	// ReadingListCategoryID identifies the category whose folders and bookmarks
	// get read/unread bucketing.
	ReadingListCategoryID = "reading"
)

// Persisted field names, used for partial updates against the store.
const (
	FieldURL           = "url"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldNotes         = "notes"
	FieldImageURL      = "image_url"
	FieldFolderID      = "folder_id"
	FieldCategoryID    = "category_id"
	FieldLabels        = "labels"
	FieldIsFavorite    = "is_favorite"
	FieldVisitCount    = "visit_count"
	FieldLastVisitedAt = "last_visited_at"
	FieldArchivedHTML  = "archived_html"
	FieldArchiveFailed = "archive_failed"
	FieldIsPrivate     = "is_private"
	FieldName          = "name"
	FieldIsPinned      = "is_pinned"
)

// Bookmark is a saved web link.
type Bookmark struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	ImageURL    string `json:"image_url,omitempty"`

	// FolderID and CategoryID are mutually exclusive; both empty means "No Location".
	FolderID   string `json:"folder_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`

	// Labels holds label identifiers. Order carries no meaning.
	Labels []string `json:"labels"`

	CreatedAt  time.Time `json:"created_at"`
	IsFavorite bool      `json:"is_favorite"`

	// VisitCount grows on every visit and drops back to 0 on "mark unread".
	VisitCount    int        `json:"visit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`

	// ArchivedHTML is the raw page snapshot captured by the archival workflow.
	ArchivedHTML  string `json:"archived_html,omitempty"`
	ArchiveFailed bool   `json:"archive_failed,omitempty"`

	// IsPrivate is true iff FolderID == PrivateFolderID.
	IsPrivate bool `json:"is_private,omitempty"`
}

// HasLabel reports whether the bookmark carries the label id.
func (b Bookmark) HasLabel(id string) bool {
	for _, l := range b.Labels {
		if l == id {
			return true
		}
	}
	return false
}

// IsArchived reports whether a page snapshot is stored.
func (b Bookmark) IsArchived() bool {
	return b.ArchivedHTML != ""
}

// Folder groups bookmarks under a category.
type Folder struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	IsPinned   bool   `json:"is_pinned"`
	IsPrivate  bool   `json:"is_private,omitempty"`
}

// IsReserved reports whether f is the protected private folder.
func (f Folder) IsReserved() bool {
	return f.ID == PrivateFolderID
}

// Category is the top level of the location hierarchy.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is a free-form tag; many-to-many with bookmarks.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

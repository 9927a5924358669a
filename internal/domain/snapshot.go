package domain

import "slices"

// Snapshot is one consistent read of a user's four collections.
// Derived views are always computed from a single Snapshot.
type Snapshot struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	Folders    []Folder   `json:"folders"`
	Categories []Category `json:"categories"`
	Labels     []Label    `json:"labels"`
}

// IsEmpty reports whether the snapshot holds no documents at all.
func (s Snapshot) IsEmpty() bool {
	return len(s.Bookmarks) == 0 && len(s.Folders) == 0 && len(s.Categories) == 0 && len(s.Labels) == 0
}

// Bookmark looks up a bookmark by id.
func (s Snapshot) Bookmark(id string) (Bookmark, bool) {
	for _, b := range s.Bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return Bookmark{}, false
}

// Folder looks up a folder by id.
func (s Snapshot) Folder(id string) (Folder, bool) {
	for _, f := range s.Folders {
		if f.ID == id {
			return f, true
		}
	}
	return Folder{}, false
}

// Category looks up a category by id.
func (s Snapshot) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Label looks up a label by id.
func (s Snapshot) Label(id string) (Label, bool) {
	for _, l := range s.Labels {
		if l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// Clone returns a deep copy so callers can't mutate shared state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Bookmarks:  make([]Bookmark, len(s.Bookmarks)),
		Folders:    slices.Clone(s.Folders),
		Categories: slices.Clone(s.Categories),
		Labels:     slices.Clone(s.Labels),
	}
	for i, b := range s.Bookmarks {
		b.Labels = slices.Clone(b.Labels)
		if b.LastVisitedAt != nil {
			t := *b.LastVisitedAt
			b.LastVisitedAt = &t
		}
		out.Bookmarks[i] = b
	}
	return out
}

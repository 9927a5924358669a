package location

import (
	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
)

// NoLocation is the display path for a bookmark outside any folder or category.
const NoLocation = "No Location"

// Location is where a bookmark lives. At most one field is set.
type Location struct {
	FolderID   string
	CategoryID string
}

// IsZero reports whether neither folder nor category is set.
func (l Location) IsZero() bool {
	return l.FolderID == "" && l.CategoryID == ""
}

// Valid reports whether the folder XOR category XOR none rule holds.
func (l Location) Valid() bool {
	return l.FolderID == "" || l.CategoryID == ""
}

// Of returns the stored location of a bookmark.
func Of(b domain.Bookmark) Location {
	return Location{FolderID: b.FolderID, CategoryID: b.CategoryID}
}

// Resolver maps bookmarks to display paths and combined-selector values to locations.
type Resolver struct {
	folders    []domain.Folder
	categories []domain.Category
	log        logrus.FieldLogger
}

// NewResolver builds a resolver over the given folder and category sets.
func NewResolver(folders []domain.Folder, categories []domain.Category, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		folders:    folders,
		categories: categories,
		log:        logger.WithField("component", "location"),
	}
}

// Path renders "<Category> / <Folder>", "<Category>" or NoLocation.
// A folder whose category is unknown renders as just its name.
func (r *Resolver) Path(b domain.Bookmark) string {
	if b.FolderID != "" {
		if f, ok := r.folder(b.FolderID); ok {
			if c, ok := r.category(f.CategoryID); ok && c.Name != "" {
				return c.Name + " / " + f.Name
			}
			return f.Name
		}
	} else if b.CategoryID != "" {
		if c, ok := r.category(b.CategoryID); ok {
			return c.Name
		}
	}
	return NoLocation
}

// EffectiveCategory returns the category a bookmark belongs to, either
// directly or through its folder.
func (r *Resolver) EffectiveCategory(b domain.Bookmark) (domain.Category, bool) {
	id := b.CategoryID
	if b.FolderID != "" {
		f, ok := r.folder(b.FolderID)
		if !ok {
			return domain.Category{}, false
		}
		id = f.CategoryID
	}
	return r.category(id)
}

// Resolve turns a combined-selector value into a location. Folders are
// matched before categories. An empty value means no location. A value that
// matches neither yields the zero Location and false, with a warning.
func (r *Resolver) Resolve(value string) (Location, bool) {
	if value == "" {
		return Location{}, true
	}
	if _, ok := r.folder(value); ok {
		return Location{FolderID: value}, true
	}
	if _, ok := r.category(value); ok {
		return Location{CategoryID: value}, true
	}
	r.log.WithField("selection", value).Warn("Selected location does not match any known category or folder")
	return Location{}, false
}

// Initial returns the location pre-selected when adding a bookmark from
// the given view.
func Initial(f domain.ActiveFilter) Location {
	switch f.Kind {
	case domain.FilterFolder:
		return Location{FolderID: f.ID}
	case domain.FilterCategory:
		return Location{CategoryID: f.ID}
	default:
		return Location{}
	}
}

func (r *Resolver) folder(id string) (domain.Folder, bool) {
	for _, f := range r.folders {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Folder{}, false
}

func (r *Resolver) category(id string) (domain.Category, bool) {
	if id == "" {
		return domain.Category{}, false
	}
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

// Package seed provides the default library every new user starts with.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"snippit/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type file struct {
	Categories []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"categories"`
	Folders []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		Pinned   bool   `yaml:"pinned"`
		Private  bool   `yaml:"private"`
	} `yaml:"folders"`
	Labels []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"labels"`
}

// Defaults returns the built-in starting library.
func Defaults() (domain.Snapshot, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a YAML library definition and checks that every folder
// points at a defined category and that the private folder exists.
func Parse(data []byte) (domain.Snapshot, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to parse seed data: %w", err)
	}

	snap := domain.Snapshot{
		Bookmarks:  []domain.Bookmark{},
		Folders:    make([]domain.Folder, 0, len(f.Folders)),
		Categories: make([]domain.Category, 0, len(f.Categories)),
		Labels:     make([]domain.Label, 0, len(f.Labels)),
	}
	for _, c := range f.Categories {
		if c.ID == "" || c.Name == "" {
			return domain.Snapshot{}, fmt.Errorf("seed category needs an id and a name: %+v", c)
		}
		snap.Categories = append(snap.Categories, domain.Category{ID: c.ID, Name: c.Name})
	}

	hasPrivate := false
	for _, fo := range f.Folders {
		if _, ok := snap.Category(fo.Category); !ok {
			return domain.Snapshot{}, fmt.Errorf("seed folder %q references unknown category %q", fo.ID, fo.Category)
		}
		isPrivate := fo.ID == domain.PrivateFolderID
		if fo.Private != isPrivate {
			return domain.Snapshot{}, fmt.Errorf("seed folder %q: only the %q folder may be private", fo.ID, domain.PrivateFolderID)
		}
		hasPrivate = hasPrivate || isPrivate
		snap.Folders = append(snap.Folders, domain.Folder{
			ID:         fo.ID,
			Name:       fo.Name,
			CategoryID: fo.Category,
			IsPinned:   fo.Pinned,
			IsPrivate:  isPrivate,
		})
	}
	if !hasPrivate {
		return domain.Snapshot{}, fmt.Errorf("seed data has no %q folder", domain.PrivateFolderID)
	}

	for _, l := range f.Labels {
		snap.Labels = append(snap.Labels, domain.Label{ID: l.ID, Name: l.Name})
	}
	return snap, nil
}

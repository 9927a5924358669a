package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"snippit/internal/domain"
	"snippit/internal/filter"
	"snippit/internal/library"
	"snippit/internal/location"
)

type handlers struct {
	registry *library.Registry
	log      logrus.FieldLogger
}

type errorResponse struct {
	Error string `json:"error"`
}

// bookmarkResponse is a bookmark as listed over HTTP. The archived page is
// served separately.
type bookmarkResponse struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location"`
	FolderID      string     `json:"folder_id,omitempty"`
	CategoryID    string     `json:"category_id,omitempty"`
	Labels        []string   `json:"labels"`
	CreatedAt     time.Time  `json:"created_at"`
	IsFavorite    bool       `json:"is_favorite"`
	VisitCount    int        `json:"visit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
	Archived      bool       `json:"archived"`
	ArchiveFailed bool       `json:"archive_failed,omitempty"`
}

type listResponse struct {
	View      string             `json:"view"`
	Count     int                `json:"count"`
	Bookmarks []bookmarkResponse `json:"bookmarks"`
	Unread    []string           `json:"unread"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// snapshot reads the user's documents. Unknown users get an empty snapshot
// and are not persisted.
func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) (domain.Snapshot, bool) {
	snap, err := h.registry.Snapshot(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid user id")
		} else {
			h.log.WithError(err).Error("Failed to read library")
			writeError(w, http.StatusInternalServerError, "failed to read library")
		}
		return domain.Snapshot{}, false
	}
	return snap, true
}

// parseView maps the view and id query parameters onto a filter.
func parseView(view, id string) (domain.ActiveFilter, error) {
	needID := func(f domain.ActiveFilter) (domain.ActiveFilter, error) {
		if id == "" {
			return domain.ActiveFilter{}, domain.Validationf("view %q needs an id", view)
		}
		return f, nil
	}
	switch domain.FilterKind(view) {
	case "", domain.FilterAll:
		return domain.AllView(), nil
	case domain.FilterFavorites:
		return domain.FavoritesView(), nil
	case domain.FilterArchived:
		return domain.ArchivedView(), nil
	case domain.FilterAbandoned:
		return domain.AbandonedView(), nil
	case domain.FilterCategory:
		return needID(domain.CategoryView(id, id))
	case domain.FilterFolder:
		return needID(domain.FolderView(id, id))
	case domain.FilterPinned:
		return needID(domain.PinnedView(id, id))
	case domain.FilterLabel:
		return needID(domain.LabelView(id, strings.Split(id, ",")...))
	default:
		return domain.ActiveFilter{}, domain.Validationf("unknown view %q", view)
	}
}

func parseSort(s string) (domain.SortBy, error) {
	switch sortBy := domain.SortBy(s); sortBy {
	case "":
		return domain.SortNewest, nil
	case domain.SortNewest, domain.SortOldest, domain.SortMostVisited, domain.SortTitle:
		return sortBy, nil
	default:
		return "", domain.Validationf("unknown sort %q", s)
	}
}

// listBookmarks applies a view to the user's snapshot. It does not touch the
// user's own view state.
func (h *handlers) listBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := parseView(q.Get("view"), q.Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if view.IsPrivate() {
		writeError(w, http.StatusForbidden, domain.ErrPrivateLocked.Error())
		return
	}
	sortBy, err := parseSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	visible := filter.Apply(snap.Bookmarks, snap.Folders, filter.Query{
		Filter: view,
		Search: q.Get("q"),
		SortBy: sortBy,
	})

	resolver := location.NewResolver(snap.Folders, snap.Categories, h.log)
	resp := listResponse{
		View:      string(view.Kind),
		Count:     len(visible),
		Bookmarks: make([]bookmarkResponse, 0, len(visible)),
	}
	for _, b := range visible {
		resp.Bookmarks = append(resp.Bookmarks, toResponse(b, resolver))
	}
	if filter.IsReadingListView(view, snap.Folders) {
		resp.Unread = []string{}
		for _, b := range visible {
			if b.VisitCount == 0 {
				resp.Unread = append(resp.Unread, b.ID)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toResponse(b domain.Bookmark, r *location.Resolver) bookmarkResponse {
	return bookmarkResponse{
		ID:            b.ID,
		URL:           b.URL,
		Title:         b.Title,
		Description:   b.Description,
		Location:      r.Path(b),
		FolderID:      b.FolderID,
		CategoryID:    b.CategoryID,
		Labels:        b.Labels,
		CreatedAt:     b.CreatedAt,
		IsFavorite:    b.IsFavorite,
		VisitCount:    b.VisitCount,
		LastVisitedAt: b.LastVisitedAt,
		Archived:      b.IsArchived(),
		ArchiveFailed: b.ArchiveFailed,
	}
}

// archivedPage serves the stored page snapshot inside a sandbox.
func (h *handlers) archivedPage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	b, found := snap.Bookmark(chi.URLParam(r, "bookmarkID"))
	switch {
	case !found:
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	case b.IsPrivate:
		writeError(w, http.StatusForbidden, domain.ErrPrivateLocked.Error())
		return
	case !b.IsArchived():
		writeError(w, http.StatusNotFound, "bookmark has no archived copy")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "sandbox")
	_, _ = w.Write([]byte(b.ArchivedHTML))
}

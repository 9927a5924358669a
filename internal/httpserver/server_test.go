package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippit/internal/domain"
	"snippit/internal/library"
	"snippit/internal/location"
	"snippit/internal/seed"
	"snippit/internal/storage"
)

type fixture struct {
	router  http.Handler
	lib     *library.Library
	repo    *storage.BadgerRepository
	hook    *test.Hook
	public  string
	secret  string
	reading string
}

func setup(t *testing.T) fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	repo, err := storage.NewBadgerRepository(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repo.Close()) })

	defaults, err := seed.Defaults()
	require.NoError(t, err)
	reg := library.NewRegistry(repo, logger, library.Options{Defaults: defaults, SeedDefaults: true})
	t.Cleanup(reg.Close)

	ctx := context.Background()
	lib, err := reg.Get(ctx, "u1")
	require.NoError(t, err)

	add := func(title string, loc location.Location) string {
		id, err := lib.SaveBookmark(ctx, "", library.BookmarkInput{URL: "https://example.com/" + title, Title: title, Location: loc})
		require.NoError(t, err)
		return id
	}
	f := fixture{
		router:  Router(reg, logger),
		lib:     lib,
		repo:    repo,
		hook:    hook,
		public:  add("gopher", location.Location{FolderID: "tools"}),
		secret:  add("diary", location.Location{FolderID: domain.PrivateFolderID}),
		reading: add("essay", location.Location{FolderID: "articles"}),
	}
	return f
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	f := setup(t)
	rec := get(t, f.router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "http_request", entry.Message)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, rec.Body.Len(), entry.Data["bytes"])
	assert.NotEmpty(t, entry.Data["request_id"])

	get(t, f.router, "/users/u1/bookmarks?view=everything")
	assert.Equal(t, http.StatusBadRequest, f.hook.LastEntry().Data["status"])
}

func TestListBookmarks(t *testing.T) {
	f := setup(t)

	resp := decodeList(t, get(t, f.router, "/users/u1/bookmarks"))
	assert.Equal(t, "all", resp.View)
	assert.Equal(t, 2, resp.Count, "private bookmarks are never listed")
	for _, b := range resp.Bookmarks {
		assert.NotEqual(t, f.secret, b.ID)
	}

	resp = decodeList(t, get(t, f.router, "/users/u1/bookmarks?view=folder&id=tools"))
	require.Len(t, resp.Bookmarks, 1)
	assert.Equal(t, f.public, resp.Bookmarks[0].ID)
	assert.Equal(t, "Work / Tools", resp.Bookmarks[0].Location)
	assert.Nil(t, resp.Unread)

	resp = decodeList(t, get(t, f.router, "/users/u1/bookmarks?q=GOPH"))
	require.Len(t, resp.Bookmarks, 1)
	assert.Equal(t, "gopher", resp.Bookmarks[0].Title)

	resp = decodeList(t, get(t, f.router, "/users/u1/bookmarks?sort=title"))
	require.Len(t, resp.Bookmarks, 2)
	assert.Equal(t, "essay", resp.Bookmarks[0].Title)
}

func TestListBookmarks_ReadingListView(t *testing.T) {
	f := setup(t)
	resp := decodeList(t, get(t, f.router, "/users/u1/bookmarks?view=category&id=reading"))
	assert.Equal(t, []string{f.reading}, resp.Unread)

	_, err := f.lib.Visit(context.Background(), f.reading)
	require.NoError(t, err)
	resp = decodeList(t, get(t, f.router, "/users/u1/bookmarks?view=category&id=reading"))
	assert.Equal(t, []string{}, resp.Unread)
	assert.Equal(t, 1, resp.Bookmarks[0].VisitCount)
}

func TestListBookmarks_UnknownUserIsNotPersisted(t *testing.T) {
	f := setup(t)

	resp := decodeList(t, get(t, f.router, "/users/stranger/bookmarks"))
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Bookmarks)
	assert.Equal(t, http.StatusNotFound, get(t, f.router, "/users/stranger/bookmarks/any/archive").Code)

	snap, err := f.repo.Snapshot(context.Background(), "stranger")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty(), "reads never seed a library")
}

func TestListBookmarks_Errors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		path string
		want int
	}{
		{path: "/users/u1/bookmarks?view=folder&id=private", want: http.StatusForbidden},
		{path: "/users/u1/bookmarks?view=pinned&id=private", want: http.StatusForbidden},
		{path: "/users/u1/bookmarks?view=folder", want: http.StatusBadRequest},
		{path: "/users/u1/bookmarks?view=everything", want: http.StatusBadRequest},
		{path: "/users/u1/bookmarks?sort=random", want: http.StatusBadRequest},
		{path: "/users/a:b/bookmarks", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, f.router, tt.path)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestArchivedPage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	html := "<html><title>Gopher</title>" + strings.Repeat("g", 1100) + "</html>"
	require.NoError(t, f.repo.Update(ctx, "u1", storage.Bookmarks, f.public, storage.Fields{domain.FieldArchivedHTML: html}))
	require.NoError(t, f.repo.Update(ctx, "u1", storage.Bookmarks, f.secret, storage.Fields{domain.FieldArchivedHTML: html}))

	rec := get(t, f.router, "/users/u1/bookmarks/"+f.public+"/archive")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, html, rec.Body.String())
	assert.Equal(t, "sandbox", rec.Header().Get("Content-Security-Policy"))

	assert.Equal(t, http.StatusForbidden, get(t, f.router, "/users/u1/bookmarks/"+f.secret+"/archive").Code)
	assert.Equal(t, http.StatusNotFound, get(t, f.router, "/users/u1/bookmarks/"+f.reading+"/archive").Code)
	assert.Equal(t, http.StatusNotFound, get(t, f.router, "/users/u1/bookmarks/missing/archive").Code)
}

func TestParseView(t *testing.T) {
	v, err := parseView("label", "a,b")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterLabel, v.Kind)
	assert.Equal(t, []string{"a", "b"}, v.LabelIDs)

	v, err = parseView("", "")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, v.Kind)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippit/internal/archive"
	"snippit/internal/domain"
	"snippit/internal/library"
	"snippit/internal/location"
	"snippit/internal/seed"
	"snippit/internal/storage"
)

type fakeScraper struct {
	title, description string
	err                error
}

func (f fakeScraper) ScrapeMetadata(context.Context, string) (string, string, error) {
	return f.title, f.description, f.err
}

func newTestCommands(t *testing.T, scraper archive.MetadataScraper) (*Commands, *library.Registry) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo, err := storage.NewBadgerRepository(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, repo.Close()) })

	defaults, err := seed.Defaults()
	require.NoError(t, err)
	reg := library.NewRegistry(repo, logger, library.Options{Defaults: defaults, SeedDefaults: true})
	t.Cleanup(reg.Close)
	return NewCommands(reg, scraper, logger), reg
}

func onlyBookmark(t *testing.T, reg *library.Registry, userID string) domain.Bookmark {
	t.Helper()
	lib, err := reg.Get(context.Background(), userID)
	require.NoError(t, err)
	snap := lib.Snapshot()
	require.Len(t, snap.Bookmarks, 1)
	return snap.Bookmarks[0]
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs []string
	}{
		{text: "/add https://go.dev The Go site", wantName: "/add", wantArgs: []string{"https://go.dev", "The", "Go", "site"}},
		{text: "/LIST@snippit_bot  rust ", wantName: "/list", wantArgs: []string{"rust"}},
		{text: "/favorites", wantName: "/favorites", wantArgs: []string{}},
		{text: "   ", wantName: "", wantArgs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := parseCommand(tt.text)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestReplyForError(t *testing.T) {
	assert.Equal(t, "This folder is empty.", replyForError(domain.Validationf("This folder is empty.")))
	assert.Equal(t, "Nothing found with that id.", replyForError(fmt.Errorf("bookmark x: %w", domain.ErrNotFound)))
	assert.Equal(t, "Archive failed: Proxy service returned status 500.",
		replyForError(&archive.Error{Reason: archive.ReasonProxyStatus, Message: "Proxy service returned status 500."}))
	assert.Equal(t, "Something went wrong. Please try again.", replyForError(errors.New("disk on fire")))
}

func TestCommands_AddAndList(t *testing.T) {
	cmds, reg := newTestCommands(t, nil)
	ctx := context.Background()

	reply := cmds.Execute(ctx, "42", "/add https://go.dev/doc The Go docs")
	assert.True(t, strings.HasPrefix(reply, `Saved "The Go docs"`), reply)

	b := onlyBookmark(t, reg, "42")
	assert.Equal(t, "https://go.dev/doc", b.URL)
	assert.Equal(t, "The Go docs", b.Title)
	assert.True(t, location.Of(b).IsZero())

	list := cmds.Execute(ctx, "42", "/list")
	assert.Contains(t, list, "Your bookmarks (1):")
	assert.Contains(t, list, "The Go docs")
	assert.Contains(t, list, location.NoLocation)
	assert.Contains(t, list, "id "+b.ID)

	assert.Equal(t, "Your bookmarks: none yet.", cmds.Execute(ctx, "42", "/list rust"))
	assert.Equal(t, "Your bookmarks: none yet.", cmds.Execute(ctx, "7", "/list"), "users do not share bookmarks")
}

func TestCommands_AddUsesScrapedTitle(t *testing.T) {
	cmds, reg := newTestCommands(t, fakeScraper{title: "Scraped", description: "From the page"})
	cmds.Execute(context.Background(), "42", "/add https://example.com")

	b := onlyBookmark(t, reg, "42")
	assert.Equal(t, "Scraped", b.Title)
	assert.Equal(t, "From the page", b.Description)
}

func TestCommands_AddFallsBackToHost(t *testing.T) {
	cmds, reg := newTestCommands(t, fakeScraper{err: errors.New("no browser")})
	cmds.Execute(context.Background(), "42", "/add https://example.com/page")
	assert.Equal(t, "example.com", onlyBookmark(t, reg, "42").Title)
}

func TestCommands_AddRejectsNonLinks(t *testing.T) {
	cmds, _ := newTestCommands(t, nil)
	assert.Equal(t, `"notaurl" is not a web link.`, cmds.Execute(context.Background(), "42", "/add notaurl"))
	assert.Equal(t, "Usage: /add <url> [title]", cmds.Execute(context.Background(), "42", "/add"))
}

func TestCommands_VisitUnreadFavorites(t *testing.T) {
	cmds, reg := newTestCommands(t, nil)
	ctx := context.Background()
	cmds.Execute(ctx, "42", "/add https://go.dev Go")
	id := onlyBookmark(t, reg, "42").ID

	assert.Equal(t, "https://go.dev", cmds.Execute(ctx, "42", "/visit "+id))
	assert.Equal(t, 1, onlyBookmark(t, reg, "42").VisitCount)

	assert.Equal(t, "Marked as unread.", cmds.Execute(ctx, "42", "/unread "+id))
	assert.Zero(t, onlyBookmark(t, reg, "42").VisitCount)

	assert.Equal(t, "Nothing found with that id.", cmds.Execute(ctx, "42", "/unread nope"))
	assert.Equal(t, "Usage: /unread <id>", cmds.Execute(ctx, "42", "/unread"))
	assert.Equal(t, "Your favorites: none yet.", cmds.Execute(ctx, "42", "/favorites"))
}

func TestCommands_ArchiveWithoutFetcher(t *testing.T) {
	cmds, reg := newTestCommands(t, nil)
	ctx := context.Background()
	cmds.Execute(ctx, "42", "/add https://go.dev Go")
	id := onlyBookmark(t, reg, "42").ID

	assert.Equal(t, "Archiving is not configured.", cmds.Execute(ctx, "42", "/archive "+id))
}

func TestCommands_ShareAndUnknown(t *testing.T) {
	cmds, _ := newTestCommands(t, nil)
	ctx := context.Background()

	assert.Equal(t, "This folder is empty.", cmds.Execute(ctx, "42", "/share tools"))
	assert.True(t, strings.HasPrefix(cmds.Execute(ctx, "42", "/dance"), "Unknown command."))
	assert.Contains(t, cmds.Execute(ctx, "42", "/start"), "/add <url> [title]")
}

func TestCommands_PrivateFolderStaysLocked(t *testing.T) {
	cmds, reg := newTestCommands(t, nil)
	ctx := context.Background()
	lib, err := reg.Get(ctx, "42")
	require.NoError(t, err)
	id, err := lib.SaveBookmark(ctx, "", library.BookmarkInput{
		URL:      "https://example.com/secret",
		Title:    "Secret",
		Location: location.Location{FolderID: domain.PrivateFolderID},
	})
	require.NoError(t, err)

	reply := cmds.Execute(ctx, "42", "/share "+domain.PrivateFolderID)
	assert.Equal(t, `The "Private" folder cannot be shared.`, reply)
	assert.Equal(t, "The private folder is locked.", cmds.Execute(ctx, "42", "/visit "+id))
	assert.NotContains(t, cmds.Execute(ctx, "42", "/list"), "example.com/secret")
	assert.Zero(t, onlyBookmark(t, reg, "42").VisitCount)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"snippit/internal/archive"
	"snippit/internal/domain"
	"snippit/internal/library"
	"snippit/internal/location"
)

// maxListed caps how many bookmarks one reply shows.
const maxListed = 20

const helpText = `Commands:
/add <url> [title] - save a bookmark
/list [search] - list your bookmarks
/favorites - list your favorites
/visit <id> - open a bookmark and count the visit
/unread <id> - move a bookmark back to unread
/archive <id> - save a copy of the page
/share <folder id> - share a folder as text`

// Commands turns chat text into library operations. It has no Telegram
// dependency so replies can be produced and checked directly.
type Commands struct {
	registry *library.Registry
	scraper  archive.MetadataScraper
	log      logrus.FieldLogger
	table    map[string]func(ctx context.Context, lib *library.Library, args []string) (string, error)
}

// NewCommands creates the command set. scraper is optional; without it
// /add requires an explicit title or falls back to the URL.
func NewCommands(registry *library.Registry, scraper archive.MetadataScraper, logger logrus.FieldLogger) *Commands {
	c := &Commands{
		registry: registry,
		scraper:  scraper,
		log:      logger.WithField("component", "bot_commands"),
	}
	c.table = map[string]func(context.Context, *library.Library, []string) (string, error){
		"/start":     c.start,
		"/help":      c.start,
		"/add":       c.add,
		"/list":      c.list,
		"/favorites": c.favorites,
		"/visit":     c.visit,
		"/unread":    c.unread,
		"/archive":   c.archive,
		"/share":     c.share,
	}
	return c
}

// Names returns the registered command names.
func (c *Commands) Names() []string {
	names := make([]string, 0, len(c.table))
	for name := range c.table {
		names = append(names, name)
	}
	return names
}

// Execute runs one command line for userID and returns the reply text.
func (c *Commands) Execute(ctx context.Context, userID, text string) string {
	name, args := parseCommand(text)
	log := c.log.WithFields(logrus.Fields{"user_id": userID, "command": name})

	fn, ok := c.table[name]
	if !ok {
		return "Unknown command.\n\n" + helpText
	}
	lib, err := c.registry.Get(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Failed to open library")
		return replyForError(err)
	}
	reply, err := fn(ctx, lib, args)
	if err != nil {
		log.WithError(err).Warn("Command failed")
		return replyForError(err)
	}
	log.Debug("Command handled")
	return reply
}

// parseCommand splits "/cmd@bot a b" into "/cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return name, fields[1:]
}

// replyForError keeps user-facing messages and hides internal errors.
func replyForError(err error) string {
	var archiveErr *archive.Error
	switch {
	case errors.As(err, &archiveErr):
		return "Archive failed: " + archiveErr.Message
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvariant):
		return err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "Nothing found with that id."
	case errors.Is(err, domain.ErrPrivateLocked):
		return "The private folder is locked."
	default:
		return "Something went wrong. Please try again."
	}
}

func (c *Commands) start(context.Context, *library.Library, []string) (string, error) {
	return "Welcome to Snippit! Send me links to keep them organised.\n\n" + helpText, nil
}

func (c *Commands) add(ctx context.Context, lib *library.Library, args []string) (string, error) {
	if len(args) == 0 {
		return "Usage: /add <url> [title]", nil
	}
	raw := args[0]
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.Validationf("%q is not a web link.", raw)
	}

	title := strings.Join(args[1:], " ")
	var description string
	if title == "" && c.scraper != nil {
		scraped, desc, err := c.scraper.ScrapeMetadata(ctx, raw)
		if err != nil {
			c.log.WithError(err).WithField("url", raw).Warn("Metadata scrape failed")
		}
		title, description = scraped, desc
	}
	if title == "" {
		title = u.Host
	}

	id, err := lib.SaveBookmark(ctx, "", library.BookmarkInput{
		URL:         raw,
		Title:       title,
		Description: description,
		Location:    lib.InitialLocation(),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Saved %q (id %s).", title, id), nil
}

func (c *Commands) list(_ context.Context, lib *library.Library, args []string) (string, error) {
	if err := lib.SetFilter(domain.AllView()); err != nil {
		return "", err
	}
	lib.SetSearch(strings.Join(args, " "))
	return formatList("Your bookmarks", lib.Visible(), lib.Resolver()), nil
}

func (c *Commands) favorites(_ context.Context, lib *library.Library, _ []string) (string, error) {
	if err := lib.SetFilter(domain.FavoritesView()); err != nil {
		return "", err
	}
	lib.SetSearch("")
	return formatList("Your favorites", lib.Visible(), lib.Resolver()), nil
}

func oneID(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", domain.Validationf("Usage: %s", usage)
	}
	return args[0], nil
}

func (c *Commands) visit(ctx context.Context, lib *library.Library, args []string) (string, error) {
	id, err := oneID(args, "/visit <id>")
	if err != nil {
		return "", err
	}
	return lib.Visit(ctx, id)
}

func (c *Commands) unread(ctx context.Context, lib *library.Library, args []string) (string, error) {
	id, err := oneID(args, "/unread <id>")
	if err != nil {
		return "", err
	}
	if err := lib.MarkUnread(ctx, id); err != nil {
		return "", err
	}
	return "Marked as unread.", nil
}

func (c *Commands) archive(ctx context.Context, lib *library.Library, args []string) (string, error) {
	id, err := oneID(args, "/archive <id>")
	if err != nil {
		return "", err
	}
	if err := lib.Archive(ctx, id); err != nil {
		return "", err
	}
	return "Page archived.", nil
}

func (c *Commands) share(_ context.Context, lib *library.Library, args []string) (string, error) {
	id, err := oneID(args, "/share <folder id>")
	if err != nil {
		return "", err
	}
	return lib.ShareFolder(id)
}

// formatList renders bookmarks as a numbered list with their location.
func formatList(heading string, bookmarks []domain.Bookmark, r *location.Resolver) string {
	if len(bookmarks) == 0 {
		return heading + ": none yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):\n", heading, len(bookmarks))
	for i, b := range bookmarks {
		if i == maxListed {
			fmt.Fprintf(&sb, "\n...and %d more.", len(bookmarks)-maxListed)
			break
		}
		star := ""
		if b.IsFavorite {
			star = " ★"
		}
		fmt.Fprintf(&sb, "\n%d. %s%s\n%s\n%s · id %s\n", i+1, b.Title, star, b.URL, r.Path(b), b.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"linkstash/internal/models"
)

// Store is the slice of the bookmark service the executor needs.
type Store interface {
	ListReading(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Bookmark, error)
	Search(ctx context.Context, userID primitive.ObjectID, query string, limit int64) ([]models.Bookmark, error)
	QuickAdd(ctx context.Context, userID primitive.ObjectID, url, title string, tags []string, description string) (*models.Bookmark, error)
}

const (
	listAllLimit = 10
	searchLimit  = 5

	usageMessage = "❌ Invalid format. Use: add [url] | [title] | [tags]\n\n" +
		"Example: add https://example.com | Example Site | tech,tutorial"

	// HelpMessage is the command reference, used both as the WhatsApp
	// fallback reply and as a reply to explicit "help" requests.
	HelpMessage = "📖 *Available Commands:*\n\n" +
		"• *reading list* - Show your reading list\n" +
		"• *list* or *show all* - Show all bookmarks\n" +
		"• *add [url] | [title] | [tags]* - Add new bookmark\n" +
		"• *search [query]* - Search bookmarks\n" +
		"• *help* - Show this help message\n\n" +
		"Example:\n" +
		"add https://example.com | Example | tech,tutorial"
)

// Executor runs parsed commands against the bookmark store. Store failures
// are rendered as in-chat error strings, never returned: the webhook
// response stays a success so the platform does not redeliver.
type Executor struct {
	store Store
}

func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

func (e *Executor) Execute(ctx context.Context, cmd Command, userID primitive.ObjectID) string {
	switch cmd.Kind {
	case KindListReading:
		return e.listReading(ctx, userID)
	case KindListAll:
		return e.listAll(ctx, userID)
	case KindAdd:
		return e.add(ctx, cmd, userID)
	case KindSearch:
		return e.search(ctx, cmd.Query, userID)
	default:
		return HelpMessage
	}
}

func (e *Executor) listReading(ctx context.Context, userID primitive.ObjectID) string {
	bookmarks, err := e.store.ListReading(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error fetching reading list for chat")
		return "❌ Error fetching reading list: " + err.Error()
	}

	if len(bookmarks) == 0 {
		return "📚 Your reading list is empty."
	}

	return renderList("📚 *Your Reading List:*", bookmarks, true)
}

func (e *Executor) listAll(ctx context.Context, userID primitive.ObjectID) string {
	bookmarks, err := e.store.ListRecent(ctx, userID, listAllLimit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error fetching bookmarks for chat")
		return "❌ Error fetching bookmarks: " + err.Error()
	}

	if len(bookmarks) == 0 {
		return "📑 You have no bookmarks yet."
	}

	return renderList("📑 *Your Latest Bookmarks:*", bookmarks, false)
}

func (e *Executor) add(ctx context.Context, cmd Command, userID primitive.ObjectID) string {
	if cmd.Invalid {
		return usageMessage
	}

	bm, err := e.store.QuickAdd(ctx, userID, cmd.URL, cmd.Title, cmd.Tags, cmd.Description)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Msg("Error adding bookmark from chat")
		return "❌ Error adding bookmark: " + err.Error()
	}

	return "✅ Bookmark added successfully!\n\n" +
		fmt.Sprintf("📌 *%s*\n", bm.Title) +
		fmt.Sprintf("🔗 %s\n", bm.URL) +
		fmt.Sprintf("🏷️ %s", strings.Join(bm.Tags, ", "))
}

func (e *Executor) search(ctx context.Context, query string, userID primitive.ObjectID) string {
	bookmarks, err := e.store.Search(ctx, userID, query, searchLimit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.Hex()).Str("query", query).Msg("Error searching bookmarks for chat")
		return "❌ Error searching bookmarks: " + err.Error()
	}

	if len(bookmarks) == 0 {
		return fmt.Sprintf("🔍 No bookmarks found for %q", query)
	}

	return renderList(fmt.Sprintf("🔍 *Search results for %q:*", query), bookmarks, false)
}

// renderList produces the 1-indexed numbered rendering shared by all list
// replies. Descriptions are shown only on the reading list.
func renderList(header string, bookmarks []models.Bookmark, withDescription bool) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	for i, bm := range bookmarks {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, bm.Title)
		fmt.Fprintf(&b, "   🔗 %s\n", bm.URL)
		if withDescription && bm.Description != "" {
			fmt.Fprintf(&b, "   📝 %s\n", bm.Description)
		}
		if len(bm.Tags) > 0 {
			fmt.Fprintf(&b, "   🏷️ %s\n", strings.Join(bm.Tags, ", "))
		}
		b.WriteString("\n")
	}

	return b.String()
}

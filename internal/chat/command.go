// Package chat implements the chat-command dispatcher shared by the
// Telegram and WhatsApp webhook handlers: a grammar that classifies raw
// message text into typed commands, and an executor that runs them against
// the bookmark store and renders a human-readable reply.
package chat

import "strings"

type Kind string

const (
	KindListReading  Kind = "list_reading"
	KindListAll      Kind = "list_all"
	KindAdd          Kind = "add"
	KindSearch       Kind = "search"
	KindUnrecognized Kind = "unrecognized"
)

// Command is the parsed intent of one inbound chat message. It is built and
// consumed within a single request and never persisted.
type Command struct {
	Kind        Kind
	URL         string
	Title       string
	Tags        []string
	Description string
	Query       string
	Raw         string

	// Invalid marks an "add" whose payload had fewer than two segments.
	// The executor answers it with a usage message; it is not a parse
	// failure.
	Invalid bool
}

// rule pairs a predicate over the lowered text with a command constructor.
// Rules are evaluated top to bottom; prefix rules come before keyword
// containment so that "add ..." or "search ..." always win over an
// incidental "reading" or "list" inside the payload.
type rule struct {
	match func(lowered string) bool
	build func(raw, lowered string) Command
}

var rules = []rule{
	{
		match: func(s string) bool { return strings.HasPrefix(s, "add ") },
		build: parseAdd,
	},
	{
		match: func(s string) bool { return strings.HasPrefix(s, "search ") },
		build: func(raw, lowered string) Command {
			return Command{Kind: KindSearch, Raw: raw, Query: strings.TrimSpace(lowered[len("search "):])}
		},
	},
	{
		match: func(s string) bool { return strings.Contains(s, "reading") },
		build: func(raw, _ string) Command { return Command{Kind: KindListReading, Raw: raw} },
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "show all") || strings.Contains(s, "all bookmarks") || strings.Contains(s, "list")
		},
		build: func(raw, _ string) Command { return Command{Kind: KindListAll, Raw: raw} },
	},
}

// Parse classifies raw message text into a Command. It is pure and total:
// any input yields a command, with unmatched text falling through to
// KindUnrecognized. Matching is case-insensitive on the trimmed input.
func Parse(text string) Command {
	raw := strings.TrimSpace(text)
	lowered := strings.ToLower(raw)

	for _, r := range rules {
		if r.match(lowered) {
			return r.build(raw, lowered)
		}
	}

	return Command{Kind: KindUnrecognized, Raw: raw}
}

// parseAdd splits the payload after "add " on "|": url | title | tags | description.
// Tags default to ["general"] when the segment is absent.
func parseAdd(raw, lowered string) Command {
	cmd := Command{Kind: KindAdd, Raw: raw}

	parts := strings.Split(lowered[len("add "):], "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < 2 {
		cmd.Invalid = true
		return cmd
	}

	cmd.URL = parts[0]
	cmd.Title = parts[1]
	cmd.Tags = []string{"general"}
	if len(parts) > 2 {
		var tags []string
		for _, t := range strings.Split(parts[2], ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			cmd.Tags = tags
		}
	}
	if len(parts) > 3 {
		cmd.Description = parts[3]
	}

	return cmd
}

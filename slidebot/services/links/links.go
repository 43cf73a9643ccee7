// Package links finds slide deck URLs in chat message text.
package links

import (
	"html"
	"regexp"

	"slidebot/slidebot/utils/types"
)

// Extractor matches links to one slide host in allow-listed channels.
type Extractor struct {
	pattern *regexp.Regexp
	allowed map[string]struct{}
}

// NewExtractor builds an extractor for host. Slack wraps links as <url> or
// <url|label>, so angle brackets and pipes terminate a match.
func NewExtractor(host string, allowedChannels []string) *Extractor {
	allowed := make(map[string]struct{}, len(allowedChannels))
	for _, id := range allowedChannels {
		allowed[id] = struct{}{}
	}
	return &Extractor{
		pattern: regexp.MustCompile(`https?://` + regexp.QuoteMeta(host) + `/[^\s<>|]+`),
		allowed: allowed,
	}
}

func (e *Extractor) Allowed(channelID string) bool {
	_, ok := e.allowed[channelID]
	return ok
}

// Extract returns the slide links in text, in order of appearance. Nothing is
// returned for channels outside the allow-list.
func (e *Extractor) Extract(channelID, text string) []types.Link {
	if !e.Allowed(channelID) {
		return nil
	}
	matches := e.pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]types.Link, 0, len(matches))
	// Slack escapes &, < and > in message text
	for _, m := range matches {
		out = append(out, types.Link(html.UnescapeString(m)))
	}
	return out
}

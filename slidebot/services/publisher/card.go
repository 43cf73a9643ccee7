package publisher

import (
	"fmt"

	"slidebot/slidebot/config"
	"slidebot/slidebot/utils/types"
)

// BuildCard fills the reply card for a successful run.
func BuildCard(cfg config.CardConfig, msg types.Message, link types.Link, hosted string) types.ReplyCard {
	return types.ReplyCard{
		Title:       cfg.Title,
		Description: cfg.Description,
		Color:       cfg.Color,
		Fields: []types.CardField{
			{Name: cfg.SourceLabel, Value: markdownLink(string(link), cfg.LinkText)},
			{Name: cfg.HostedLabel, Value: markdownLink(hosted, cfg.LinkText)},
		},
		Footer:       cfg.Footer,
		ThumbnailURL: cfg.ThumbnailURL,
		SourceLink:   string(link),
		HostedLink:   hosted,
		Author:       msg.Author,
	}
}

// Slack mrkdwn link syntax
func markdownLink(url, text string) string {
	if text == "" {
		return fmt.Sprintf("<%s>", url)
	}
	return fmt.Sprintf("<%s|%s>", url, text)
}

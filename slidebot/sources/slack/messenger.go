package slack

import (
	"context"
	"fmt"

	"slidebot/slidebot/utils/types"

	"github.com/slack-go/slack"
)

// API is the part of *slack.Client the bot uses.
type API interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	DeleteMessageContext(ctx context.Context, channel, messageTimestamp string) (string, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

// Messenger posts pipeline replies to Slack.
type Messenger struct {
	api API
}

func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

func threadOf(msg types.Message) string {
	if msg.ThreadTimestamp != "" {
		return msg.ThreadTimestamp
	}
	return msg.Timestamp
}

func (m *Messenger) Reply(ctx context.Context, msg types.Message, text string) (types.MessageRef, error) {
	channel, ts, err := m.api.PostMessageContext(ctx, msg.ChannelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadOf(msg)),
	)
	if err != nil {
		return types.MessageRef{}, fmt.Errorf("post reply: %w", err)
	}
	return types.MessageRef{ChannelID: channel, Timestamp: ts}, nil
}

func (m *Messenger) Delete(ctx context.Context, ref types.MessageRef) error {
	if _, _, err := m.api.DeleteMessageContext(ctx, ref.ChannelID, ref.Timestamp); err != nil {
		return fmt.Errorf("delete message %s: %w", ref.Timestamp, err)
	}
	return nil
}

func (m *Messenger) Send(ctx context.Context, channelID, text string) error {
	if _, _, err := m.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// SendCard replies in thread, mentioning the requester, with the card as an
// attachment.
func (m *Messenger) SendCard(ctx context.Context, msg types.Message, card types.ReplyCard) error {
	opts := []slack.MsgOption{
		slack.MsgOptionAttachments(CardAttachment(card)),
		slack.MsgOptionTS(threadOf(msg)),
	}
	if card.Author.ID != "" {
		opts = append(opts, slack.MsgOptionText(fmt.Sprintf("<@%s>", card.Author.ID), false))
	}
	if _, _, err := m.api.PostMessageContext(ctx, msg.ChannelID, opts...); err != nil {
		return fmt.Errorf("post card: %w", err)
	}
	return nil
}

// CardAttachment renders a reply card as a Slack attachment.
func CardAttachment(card types.ReplyCard) slack.Attachment {
	fields := make([]slack.AttachmentField, 0, len(card.Fields))
	for _, f := range card.Fields {
		fields = append(fields, slack.AttachmentField{Title: f.Name, Value: f.Value})
	}
	return slack.Attachment{
		Color:      card.Color,
		AuthorName: card.Author.Name,
		AuthorIcon: card.Author.AvatarURL,
		Title:      card.Title,
		Text:       card.Description,
		Fields:     fields,
		Footer:     card.Footer,
		ThumbURL:   card.ThumbnailURL,
		Fallback:   card.Title + ": " + card.HostedLink,
		MarkdownIn: []string{"fields"},
	}
}

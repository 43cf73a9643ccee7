// slidebot/utils/types/chat.go
package types

// Author identifies who sent a message.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	ChannelID       string `json:"channel_id"`
	Timestamp       string `json:"ts"`
	ThreadTimestamp string `json:"thread_ts,omitempty"`
	Text            string `json:"text"`
	Author          Author `json:"author"`
}

// MessageRef points at a message the bot posted, so it can be deleted.
type MessageRef struct {
	ChannelID string
	Timestamp string
}

type CardField struct {
	Name  string
	Value string
}

// ReplyCard is the structured success reply.
type ReplyCard struct {
	Title        string
	Description  string
	Color        string
	Fields       []CardField
	Footer       string
	ThumbnailURL string
	SourceLink   string
	HostedLink   string
	Author       Author
}

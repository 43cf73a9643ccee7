package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// Config holds the Slack credentials.
type Config struct {
	BotToken string // xoxb-*
	AppToken string // xapp-*
	Debug    bool
}

// MessageHandler receives every message the bot should look at.
type MessageHandler func(ctx context.Context, msg types.Message)

// Listener receives channel messages over Socket Mode.
type Listener struct {
	api        API
	socketMode *socketmode.Client
	handler    MessageHandler
	botUserID  string
	wg         sync.WaitGroup
}

// NewClient validates the tokens and builds the Web API client.
func NewClient(cfg Config) (*slack.Client, error) {
	if !strings.HasPrefix(cfg.BotToken, "xoxb-") {
		return nil, fmt.Errorf("invalid bot token format, expected xoxb-*")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("invalid app token format, expected xapp-*")
	}
	return slack.New(
		cfg.BotToken,
		slack.OptionAppLevelToken(cfg.AppToken),
		slack.OptionDebug(cfg.Debug),
	), nil
}

func NewListener(client *slack.Client, debug bool, handler MessageHandler) *Listener {
	return &Listener{
		api:        client,
		socketMode: socketmode.New(client, socketmode.OptionDebug(debug)),
		handler:    handler,
	}
}

// Run connects and dispatches messages until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	auth, err := l.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	l.botUserID = auth.UserID
	logging.AppLogger.Info("We have logged in", zap.String("user", auth.User), zap.String("team", auth.Team))

	go l.loop(ctx)
	return l.socketMode.RunContext(ctx)
}

// Wait blocks until every in-flight message has been handled.
func (l *Listener) Wait() {
	l.wg.Wait()
}

func (l *Listener) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-l.socketMode.Events:
			if !ok {
				return
			}
			l.dispatch(ctx, envelope)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, envelope socketmode.Event) {
	switch envelope.Type {
	case socketmode.EventTypeConnecting:
		logging.AppLogger.Info("Connecting to Slack with Socket Mode...")
	case socketmode.EventTypeConnectionError:
		logging.ErrorLogger.Error("Slack connection failed", zap.Any("data", envelope.Data))
	case socketmode.EventTypeConnected:
		logging.AppLogger.Info("Connected to Slack with Socket Mode")
	case socketmode.EventTypeEventsAPI:
		event, ok := envelope.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if envelope.Request != nil {
			l.socketMode.Ack(*envelope.Request)
		}
		if event.Type != slackevents.CallbackEvent {
			return
		}
		ev, ok := event.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return
		}
		msg, ok := l.toMessage(ctx, ev)
		if !ok {
			return
		}
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handler(ctx, msg)
		}()
	}
}

// toMessage drops bot traffic and system subtypes, and resolves the author.
func (l *Listener) toMessage(ctx context.Context, ev *slackevents.MessageEvent) (types.Message, bool) {
	if ev.BotID != "" || ev.SubType != "" || ev.User == "" || ev.User == l.botUserID {
		return types.Message{}, false
	}
	msg := types.Message{
		ChannelID:       ev.Channel,
		Timestamp:       ev.TimeStamp,
		ThreadTimestamp: ev.ThreadTimeStamp,
		Text:            ev.Text,
		Author:          types.Author{ID: ev.User, Name: ev.User},
	}
	user, err := l.api.GetUserInfoContext(ctx, ev.User)
	if err != nil {
		logging.AppLogger.Info("user lookup failed", zap.String("user", ev.User), zap.Error(err))
		return msg, true
	}
	msg.Author.Name = user.Name
	if user.Profile.DisplayName != "" {
		msg.Author.Name = user.Profile.DisplayName
	}
	msg.Author.AvatarURL = user.Profile.Image72
	return msg, true
}

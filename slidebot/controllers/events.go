package controllers

import (
	"context"
	"time"

	"slidebot/slidebot/utils/logging"
	"slidebot/slidebot/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// Subscriber hands out run event streams.
type Subscriber interface {
	Subscribe(buffer int) (<-chan types.RunEvent, func())
}

type EventsController struct {
	hub          Subscriber
	writeTimeout time.Duration
}

func NewEventsController(hub Subscriber) *EventsController {
	return &EventsController{hub: hub, writeTimeout: 5 * time.Second}
}

// Stream forwards pipeline transitions to conn as JSON until the peer leaves.
func (c *EventsController) Stream(ctx context.Context, conn *websocket.Conn) {
	events, cancel := c.hub.Subscribe(64)
	defer cancel()

	// nothing is read from operators; this also handles their close frames
	ctx = conn.CloseRead(ctx)
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "shutting down")
				return
			}
			writeCtx, done := context.WithTimeout(ctx, c.writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			done()
			if err != nil {
				logging.RequestLogger.Info("event stream closed", zap.Error(err))
				return
			}
		}
	}
}

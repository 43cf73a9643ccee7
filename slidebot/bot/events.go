package bot

import (
	"sync"

	"slidebot/slidebot/utils/types"
)

// Hub fans run events out to subscribers. Slow subscribers lose events
// instead of stalling a pipeline.
type Hub struct {
	mu   sync.Mutex
	subs map[chan types.RunEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan types.RunEvent]struct{})}
}

// Subscribe returns a channel of events and a cancel func that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan types.RunEvent, func()) {
	ch := make(chan types.RunEvent, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(ev types.RunEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

package statusserver

import "sync"

// Hub fans out published status events to every subscribed SSE client,
// the engine-event analogue of the teacher's raw SOL broadcast channel.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	buffer *EventBuffer
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[chan []byte]struct{}),
		buffer: NewEventBuffer(defaultEventBufSize),
	}
}

// Publish appends data to the catchup buffer and fans it out to every
// live subscriber. A subscriber whose channel is full is skipped rather
// than blocking the publisher.
func (h *Hub) Publish(data []byte) {
	h.buffer.Write(data)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
		}
	}
}

// Subscribe registers a new SSE client and returns its event channel.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber's channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Catchup returns the buffered events for a client that just connected.
func (h *Hub) Catchup() []byte {
	return h.buffer.Bytes()
}

package dialogue

import "sync"

// ProgressEvent is a fire-and-forget notification emitted while a profile is
// being synthesized, keyed by session.
type ProgressEvent struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// ProgressHub fans out synthesis progress to at most one subscriber per
// session. Publishing never blocks generation: with no subscriber, or a slow
// one, events are dropped.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[string]chan ProgressEvent
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: make(map[string]chan ProgressEvent)}
}

// Subscribe registers a listener for one session and returns the event
// channel plus a cancel func. A later Subscribe for the same session replaces
// the earlier one.
func (h *ProgressHub) Subscribe(sessionID string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 8)
	h.mu.Lock()
	if prev, ok := h.subs[sessionID]; ok {
		close(prev)
	}
	h.subs[sessionID] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if current, ok := h.subs[sessionID]; ok && current == ch {
			delete(h.subs, sessionID)
			close(ch)
		}
	}
	return ch, cancel
}

func (h *ProgressHub) Publish(sessionID, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[sessionID]
	if !ok {
		return
	}
	// The send stays under the lock: channels are only ever closed while it
	// is held, and the non-blocking buffered send cannot stall publishers.
	select {
	case ch <- ProgressEvent{SessionID: sessionID, Text: text}:
	default:
	}
}

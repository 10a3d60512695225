package server

import (
	"sync"
	"time"

	"repohealth/internal/progress"
)

const (
	watchBuffer    = 64
	watchRetention = 30 * time.Second
)

// WatchHub pairs a generation request with the websocket that watches it.
// Both sides look the channel up by the client-chosen watch id, and either
// may arrive first. Channels are buffered and never closed; the emitter
// side drops events once the buffer fills with nobody draining it.
type WatchHub struct {
	mu       sync.Mutex
	channels map[string]chan progress.Event
}

func NewWatchHub() *WatchHub {
	return &WatchHub{channels: make(map[string]chan progress.Event)}
}

func (h *WatchHub) channel(id string) chan progress.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[id]
	if !ok {
		ch = make(chan progress.Event, watchBuffer)
		h.channels[id] = ch
	}
	return ch
}

// Emitter returns a progress emitter feeding the watch channel for id.
func (h *WatchHub) Emitter(id string) progress.Emitter {
	return &progress.ChannelEmitter{Ch: h.channel(id)}
}

// Watch returns the event channel for id, creating it when the watcher
// connects before the generation request lands.
func (h *WatchHub) Watch(id string) <-chan progress.Event {
	return h.channel(id)
}

// Release schedules the channel for removal. The delay lets a watcher that
// connects just after the run finished still drain the buffered events.
func (h *WatchHub) Release(id string) {
	time.AfterFunc(watchRetention, func() { h.Forget(id) })
}

// Forget drops the channel for id immediately. Safe to call twice.
func (h *WatchHub) Forget(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, id)
}

// Package progress streams stage events from a running analysis to
// whoever is watching, typically a websocket subscriber. Emitters travel
// on the context so deep callees never need an explicit wiring.
package progress

import "context"

type EventType string

const (
	EventTypeStage    EventType = "stage"
	EventTypeLog      EventType = "log"
	EventTypeComplete EventType = "complete"
	EventTypeError    EventType = "error"
)

// Event is one step of a report generation run.
type Event struct {
	Type    EventType `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`
	Percent int       `json:"percent"`
}

// Emitter receives events during execution.
type Emitter interface {
	Emit(event Event)
	EmitStage(stage string, percent int, message string)
	EmitError(message string)
}

type emitterKey struct{}

// WithEmitter attaches an emitter to the context.
func WithEmitter(ctx context.Context, emitter Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, emitter)
}

// EmitterFrom retrieves the emitter from context, or returns a no-op emitter.
func EmitterFrom(ctx context.Context) Emitter {
	if e, ok := ctx.Value(emitterKey{}).(Emitter); ok {
		return e
	}
	return noopEmitter{}
}

// noopEmitter discards all events.
type noopEmitter struct{}

func (noopEmitter) Emit(Event)                    {}
func (noopEmitter) EmitStage(string, int, string) {}
func (noopEmitter) EmitError(string)              {}

// ChannelEmitter sends events to a channel. Sends never block: a slow or
// absent consumer drops events rather than stalling the analysis.
type ChannelEmitter struct {
	Ch chan<- Event
}

func (e *ChannelEmitter) Emit(event Event) {
	select {
	case e.Ch <- event:
	default: // non-blocking
	}
}

func (e *ChannelEmitter) EmitStage(stage string, percent int, message string) {
	e.Emit(Event{Type: EventTypeStage, Stage: stage, Percent: percent, Message: message})
}

func (e *ChannelEmitter) EmitError(message string) {
	e.Emit(Event{Type: EventTypeError, Message: message, Percent: 100})
}

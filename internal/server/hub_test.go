package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repohealth/internal/progress"
)

func TestWatchHubEmitterFirst(t *testing.T) {
	hub := NewWatchHub()

	hub.Emitter("w1").EmitStage("heuristics", 20, "scoring")

	select {
	case ev := <-hub.Watch("w1"):
		require.Equal(t, "heuristics", ev.Stage)
		require.Equal(t, 20, ev.Percent)
	default:
		t.Fatal("event should already be buffered")
	}
}

func TestWatchHubWatcherFirst(t *testing.T) {
	hub := NewWatchHub()

	events := hub.Watch("w2")
	hub.Emitter("w2").Emit(progress.Event{Type: progress.EventTypeComplete, Percent: 100})

	select {
	case ev := <-events:
		require.Equal(t, progress.EventTypeComplete, ev.Type)
	default:
		t.Fatal("both sides must share one channel")
	}
}

func TestWatchHubForget(t *testing.T) {
	hub := NewWatchHub()

	old := hub.Watch("w3")
	hub.Forget("w3")
	hub.Forget("w3")

	// A new lookup after Forget starts a fresh channel.
	hub.Emitter("w3").EmitStage("snapshot", 10, "")
	select {
	case <-old:
		t.Fatal("forgotten channel must not receive new events")
	default:
	}
	require.Len(t, hub.Watch("w3"), 1)
}

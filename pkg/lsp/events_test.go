package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventBusDelivery(t *testing.T) {
	bus := NewEventBus()
	var got []Event
	unsub := bus.Subscribe(func(e Event) {
		got = append(got, e)
	})

	bus.Publish(Event{Kind: EventFileParsed, File: "/tmp/x/main.scr", Version: 1})
	bus.Publish(Event{Kind: EventFileChecked, File: "/tmp/x/main.scr", Version: 1})

	require.Len(t, got, 2)
	require.Equal(t, EventFileParsed, got[0].Kind)
	require.Equal(t, EventFileChecked, got[1].Kind)

	unsub()
	bus.Publish(Event{Kind: EventFileParsed, File: "/tmp/x/main.scr", Version: 2})
	require.Len(t, got, 2)
}

func TestEventBusNormalizesFilePaths(t *testing.T) {
	bus := NewEventBus()
	var got Event
	bus.Subscribe(func(e Event) { got = e })
	bus.Publish(Event{Kind: EventFileChecked, File: "/tmp/x/../x/main.scr"})
	require.Equal(t, "/tmp/x/main.scr", got.File)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	count := 0
	bus.Subscribe(func(Event) { count++ })
	bus.Subscribe(func(Event) { count++ })
	bus.Publish(Event{Kind: EventFileChecked})
	require.Equal(t, 2, count)
}

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventBus_DeliversToCalendarSubscribers(t *testing.T) {
	bus := NewEventBus()
	ch5, cancel5 := bus.Subscribe(5)
	defer cancel5()
	ch9, cancel9 := bus.Subscribe(9)
	defer cancel9()

	taskID := int64(3)
	bus.Publish(Event{Type: "task.created", Entity: "task", CalendarID: 5, TaskID: &taskID})

	select {
	case msg := <-ch5:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		require.Equal(t, "task.created", ev.Type)
		require.Equal(t, int64(5), ev.CalendarID)
	default:
		t.Fatal("subscriber on calendar 5 got nothing")
	}

	select {
	case <-ch9:
		t.Fatal("event leaked to another calendar")
	default:
	}
}

func TestEventBus_DropsWhenSubscriberIsSlow(t *testing.T) {
	bus := NewEventBus()
	ch, cancel := bus.Subscribe(5)
	defer cancel()

	// Fill the buffer and one more; the overflow must not block Publish.
	for i := 0; i < cap(ch)+1; i++ {
		bus.Publish(Event{Type: "task.updated", CalendarID: 5})
	}
	require.Len(t, ch, cap(ch))
}

func TestEventBus_CancelStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	ch, cancel := bus.Subscribe(5)
	cancel()

	bus.Publish(Event{Type: "task.updated", CalendarID: 5})
	_, open := <-ch
	require.False(t, open)
}

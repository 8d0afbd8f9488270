package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyThatEmployee(t *testing.T) {
	hub := NewHub()

	chA, cleanupA := hub.Subscribe("emp-a")
	defer cleanupA()
	chB, cleanupB := hub.Subscribe("emp-b")
	defer cleanupB()

	hub.Publish(Event{EmployeeID: "emp-a", Name: EventAttendanceUpdated, Data: map[string]string{"event_type": "clock_in"}})

	select {
	case ev := <-chA:
		assert.Equal(t, EventAttendanceUpdated, ev.Name)
	default:
		t.Fatal("expected event for emp-a")
	}

	select {
	case <-chB:
		t.Fatal("emp-b must not receive emp-a events")
	default:
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("emp-a")
	assert.Equal(t, 1, hub.SubscriberCount("emp-a"))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount("emp-a"))
	_, open := <-ch
	assert.False(t, open)

	// publishing to nobody is a no-op
	hub.Publish(Event{EmployeeID: "emp-a", Name: EventAttendanceUpdated})
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("emp-a")
	defer cleanup()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish(Event{EmployeeID: "emp-a", Name: EventAttendanceUpdated, Data: i})
	}

	assert.Len(t, ch, hub.bufferSize)
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := NewHub()
	chA, cleanupA := hub.Subscribe("emp-a")
	chB, cleanupB := hub.Subscribe("emp-b")

	hub.Close()
	hub.Close()

	_, open := <-chA
	assert.False(t, open)
	_, open = <-chB
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("emp-a"))

	// cleanup after Close must not close the channel twice
	cleanupA()
	cleanupB()

	late, cleanupLate := hub.Subscribe("emp-a")
	defer cleanupLate()
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("emp-a"))

	hub.Publish(Event{EmployeeID: "emp-a", Name: EventAttendanceUpdated})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	err := Write(&buf, Event{Name: EventAttendanceUpdated, Data: map[string]string{"status": "present"}})
	require.NoError(t, err)

	assert.Equal(t, "event: attendance.updated\ndata: {\"status\":\"present\"}\n\n", buf.String())
}

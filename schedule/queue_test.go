package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/schedule"
)

func TestQueue_OrderAndDedupe(t *testing.T) {
	// GIVEN: Events pushed out of order, with one duplicate
	q := schedule.NewQueue([]airline.ScheduleEvent{
		{ExecutionTime: 300, ScheduleID: "s-3"},
		{ExecutionTime: 100, ScheduleID: "s-1"},
	})
	assert.True(t, q.Push(airline.ScheduleEvent{ExecutionTime: 200, ScheduleID: "s-2"}))
	assert.True(t, q.Push(airline.ScheduleEvent{ExecutionTime: 200, ScheduleID: "s-4"}))
	assert.False(t, q.Push(airline.ScheduleEvent{ExecutionTime: 100, ScheduleID: "s-1"}))

	// THEN: Events come out by time, ties in insertion order
	require.Equal(t, 4, q.Len())
	var got []airline.ScheduleID
	for _, e := range q.Events() {
		got = append(got, e.ScheduleID)
	}
	assert.Equal(t, []airline.ScheduleID{"s-1", "s-2", "s-4", "s-3"}, got)

	// WHEN: Popping at 200
	var popped []airline.ScheduleID
	for {
		e, ok := q.PopDue(200)
		if !ok {
			break
		}
		popped = append(popped, e.ScheduleID)
	}

	// THEN: Only due events leave the queue
	assert.Equal(t, []airline.ScheduleID{"s-1", "s-2", "s-4"}, popped)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_DropSchedule(t *testing.T) {
	q := schedule.NewQueue(nil)
	q.Push(airline.ScheduleEvent{ExecutionTime: 10, ScheduleID: "s-1"})
	q.Push(airline.ScheduleEvent{ExecutionTime: 20, ScheduleID: "s-2"})
	q.Push(airline.ScheduleEvent{ExecutionTime: 30, ScheduleID: "s-1"})

	assert.Equal(t, 2, q.DropSchedule("s-1"))
	assert.Equal(t, 0, q.DropSchedule("s-1"))
	require.Equal(t, 1, q.Len())
	assert.Equal(t, airline.ScheduleID("s-2"), q.Events()[0].ScheduleID)
}

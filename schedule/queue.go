package schedule

import (
	"sort"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

// Queue holds materialized occurrences ordered by ExecutionTime. Events
// with the same time keep insertion order.
type Queue struct {
	events []airline.ScheduleEvent
}

func NewQueue(events []airline.ScheduleEvent) *Queue {
	q := &Queue{}
	for _, e := range events {
		q.Push(e)
	}
	return q
}

// Push inserts the event unless the same occurrence is already queued.
func (q *Queue) Push(e airline.ScheduleEvent) bool {
	for _, existing := range q.events {
		if existing.ScheduleID == e.ScheduleID && existing.ExecutionTime == e.ExecutionTime {
			return false
		}
	}
	i := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].ExecutionTime > e.ExecutionTime
	})
	q.events = append(q.events, airline.ScheduleEvent{})
	copy(q.events[i+1:], q.events[i:])
	q.events[i] = e
	return true
}

// PopDue removes and returns the earliest event due at now, if any.
func (q *Queue) PopDue(now generic.Tick) (airline.ScheduleEvent, bool) {
	if len(q.events) == 0 || q.events[0].ExecutionTime > now {
		return airline.ScheduleEvent{}, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e, true
}

// DropSchedule removes every queued occurrence of a schedule.
func (q *Queue) DropSchedule(id airline.ScheduleID) int {
	kept := q.events[:0]
	dropped := 0
	for _, e := range q.events {
		if e.ScheduleID == id {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	q.events = kept
	return dropped
}

func (q *Queue) Len() int { return len(q.events) }

// Events returns a copy in execution order.
func (q *Queue) Events() []airline.ScheduleEvent {
	return append([]airline.ScheduleEvent{}, q.events...)
}

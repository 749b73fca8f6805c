package schedule

import (
	"context"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/generic"
)

// Materialize registers today's occurrences. It runs at most once per
// simulated day; the returned slice holds only the events that were new.
func (e *Engine) Materialize(ctx context.Context, now generic.Tick) ([]airline.ScheduleEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	added, err := e.materialize(ctx, now)
	e.updateGauges()
	return added, err
}

func (e *Engine) materialize(ctx context.Context, now generic.Tick) ([]airline.ScheduleEvent, error) {
	if e.lastRegistration != NoRegistration && now-e.lastRegistration < generic.Day {
		return nil, nil
	}

	span := now.Weekday().Span()
	weekStart := now.WeekStart()

	var added []airline.ScheduleEvent
	for _, s := range e.repo.All() {
		if !s.Window().StartsWithin(span) {
			continue
		}
		ev := occurrence(s, weekStart)
		if e.queue.Push(ev) {
			added = append(added, ev)
		}
	}

	if err := e.persistQueue(ctx); err != nil {
		return added, err
	}
	e.lastRegistration = now.DayStart()
	if err := e.state.Put(ctx, generic.KeyLastRegistration, e.lastRegistration); err != nil {
		return added, err
	}

	e.logger.Debug().
		Str("day", now.Weekday().String()).
		Int("events", len(added)).
		Int("pending", e.queue.Len()).
		Msg("schedule events materialized")
	if e.metrics != nil {
		e.metrics.EventsMaterialized.Add(float64(len(added)))
	}
	if len(added) > 0 {
		e.bus.Publish(events.EventEventsMaterialized, events.Payload{
			"day":    now.Weekday().String(),
			"count":  len(added),
			"tick":   int64(now),
			"events": added,
		})
	}
	return added, nil
}

// occurrence is the schedule's flight in the week starting at weekStart.
// A window that wraps past Sunday fires in the following week.
func occurrence(s airline.Schedule, weekStart generic.Tick) airline.ScheduleEvent {
	return airline.ScheduleEvent{
		ExecutionTime: weekStart + s.Window().EffectiveEnd(),
		ScheduleID:    s.ID,
		ContractID:    s.ContractID,
	}
}

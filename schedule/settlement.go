package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/generic"
)

// Reasons an event is skipped or an asset removed. Used as metric labels.
const (
	SkipScheduleMissing  = "schedule_missing"
	SkipContractMismatch = "contract_mismatch"
	SkipContractMissing  = "contract_missing"
	SkipAlreadySettled   = "already_settled"

	RemovedLeaseEnded = "lease_ended"
	RemovedSold       = "sold"
)

// TickReport is what one tick did.
type TickReport struct {
	Now           generic.Tick            `json:"now"`
	Materialized  []airline.ScheduleEvent `json:"materialized,omitempty"`
	Settled       []airline.ScheduleEvent `json:"settled,omitempty"`
	Skipped       []airline.ScheduleEvent `json:"skipped,omitempty"`
	Expired       []airline.ContractID    `json:"expired,omitempty"`
	RemovedAssets []airline.AssetID       `json:"removed_assets,omitempty"`
}

// Tick runs one simulation step at now. Settlement failures for single
// flights are logged and joined into the returned error; the tick still
// runs to the end.
func (e *Engine) Tick(ctx context.Context, now generic.Tick) (TickReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.updateGauges()

	report := TickReport{Now: now}
	if e.metrics != nil {
		e.metrics.Ticks.Inc()
		e.metrics.Playtime.Set(float64(now))
	}

	added, err := e.materialize(ctx, now)
	report.Materialized = added
	if err != nil {
		return report, fmt.Errorf("materialize: %w", err)
	}

	resolved, errs := e.settleDue(ctx, now, &report)

	for _, s := range resolved {
		c, ok := e.contracts.Contract(s.ContractID)
		if !ok || !c.ExpiredBy(now) {
			continue
		}
		if _, still := e.repo.Get(s.ContractID); !still {
			continue
		}
		if err := e.endSchedule(ctx, s, now, "expired"); err != nil {
			errs = append(errs, err)
			continue
		}
		report.Expired = append(report.Expired, s.ContractID)
		if e.metrics != nil {
			e.metrics.ContractsExpired.Inc()
		}
		e.bus.Publish(events.EventContractExpired, events.Payload{
			"contract": string(s.ContractID),
			"tick":     int64(now),
		})
	}

	for _, a := range e.fleet.LeasedAssets() {
		if !a.LeaseEndedBy(now) {
			continue
		}
		if err := e.removeAsset(ctx, a.ID, RemovedLeaseEnded, now); err != nil {
			errs = append(errs, err)
			continue
		}
		report.RemovedAssets = append(report.RemovedAssets, a.ID)
	}

	return report, errors.Join(errs...)
}

// settleDue pays out every event due at now. It returns the schedules of
// every occurrence that came due, paid or not, so their contracts can be
// checked for expiry.
func (e *Engine) settleDue(ctx context.Context, now generic.Tick, report *TickReport) ([]airline.Schedule, []error) {
	var (
		resolved []airline.Schedule
		errs     []error
	)
	for {
		ev, ok := e.queue.PopDue(now)
		if !ok {
			break
		}
		if err := e.persistQueue(ctx); err != nil {
			// Ledger untouched; leave the event for the next tick.
			e.queue.Push(ev)
			errs = append(errs, err)
			break
		}

		log := e.logger.With().
			Str("schedule", string(ev.ScheduleID)).
			Str("contract", string(ev.ContractID)).
			Int64("execution_time", int64(ev.ExecutionTime)).
			Logger()

		flight, reason := e.resolve(ev)
		if reason != "" {
			log.Warn().Str("reason", reason).Msg("stale schedule event dropped")
			e.skip(ev, reason, report)
			continue
		}
		resolved = append(resolved, flight.Schedule)

		err := e.ledger.SettleFlight(ctx, flight)
		switch {
		case errors.Is(err, generic.ErrAlreadySettled):
			log.Info().Msg("flight already settled, skipping")
			e.skip(ev, SkipAlreadySettled, report)
			continue
		case err != nil:
			log.Error().Err(err).Msg("flight settlement failed")
			errs = append(errs, fmt.Errorf("settle %s: %w", ev.SettlementKey(), err))
			continue
		}

		report.Settled = append(report.Settled, ev)
		if e.metrics != nil {
			e.metrics.FlightsSettled.Inc()
		}
		log.Debug().Str("route", flight.Contract.Route()).Msg("flight settled")

		if e.missions != nil {
			if err := e.missions.NotifyFlight(ctx, flight); err != nil {
				log.Error().Err(err).Msg("mission progress failed")
			}
		}
		e.bus.Publish(events.EventFlightSettled, events.Payload{
			"schedule":       string(ev.ScheduleID),
			"contract":       string(ev.ContractID),
			"asset":          string(flight.Schedule.AssetID()),
			"execution_time": int64(ev.ExecutionTime),
			"profit":         flight.Schedule.Option.Profit().String(),
		})
	}
	return resolved, errs
}

// resolve finds the schedule and contract an event belongs to. A non-empty
// reason means the event is stale.
func (e *Engine) resolve(ev airline.ScheduleEvent) (airline.Flight, string) {
	s, ok := e.repo.GetByID(ev.ScheduleID)
	if !ok {
		return airline.Flight{}, SkipScheduleMissing
	}
	if s.ContractID != ev.ContractID {
		return airline.Flight{}, SkipContractMismatch
	}
	c, ok := e.contracts.Contract(ev.ContractID)
	if !ok {
		return airline.Flight{}, SkipContractMissing
	}
	return airline.Flight{Schedule: s, Contract: c, ExecutionTime: ev.ExecutionTime}, ""
}

func (e *Engine) skip(ev airline.ScheduleEvent, reason string, report *TickReport) {
	report.Skipped = append(report.Skipped, ev)
	if e.metrics != nil {
		e.metrics.SettlementsSkipped.WithLabelValues(reason).Inc()
	}
}

// endSchedule removes a schedule and everything hanging off it: queued
// occurrences, the contract's reputation and the asset's hub lock once the
// asset has nothing left to fly.
func (e *Engine) endSchedule(ctx context.Context, s airline.Schedule, now generic.Tick, reason string) error {
	if _, err := e.repo.Remove(ctx, s.ContractID); err != nil {
		return err
	}
	if e.queue.DropSchedule(s.ID) > 0 {
		if err := e.persistQueue(ctx); err != nil {
			return err
		}
	}

	log := e.logger.With().
		Str("contract", string(s.ContractID)).
		Str("asset", string(s.AssetID())).
		Str("reason", reason).
		Logger()

	var errs []error
	if err := e.reputation.Lose(ctx, s.ContractID, now); err != nil {
		errs = append(errs, fmt.Errorf("revoke reputation: %w", err))
	}
	if err := e.contracts.MarkExpired(ctx, s.ContractID, now); err != nil {
		errs = append(errs, err)
	}
	if len(e.repo.ForAsset(s.AssetID())) == 0 {
		if _, ok := e.fleet.Asset(s.AssetID()); ok {
			if err := e.fleet.ClearHub(ctx, s.AssetID()); err != nil {
				errs = append(errs, err)
			}
		}
	}

	log.Info().Msg("schedule removed")
	e.bus.Publish(events.EventScheduleRemoved, events.Payload{
		"schedule": string(s.ID),
		"contract": string(s.ContractID),
		"asset":    string(s.AssetID()),
		"reason":   reason,
	})
	return errors.Join(errs...)
}

// removeAsset ends every schedule the asset flies and takes it out of the
// hangar.
func (e *Engine) removeAsset(ctx context.Context, assetID airline.AssetID, reason string, now generic.Tick) error {
	var errs []error
	for _, s := range e.repo.ForAsset(assetID) {
		if err := e.endSchedule(ctx, s, now, reason); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := e.fleet.Remove(ctx, assetID); err != nil {
		return errors.Join(append(errs, err)...)
	}

	e.logger.Info().Str("asset", string(assetID)).Str("reason", reason).Msg("asset removed")
	if e.metrics != nil {
		e.metrics.AssetsRemoved.WithLabelValues(reason).Inc()
	}
	e.bus.Publish(events.EventAssetRemoved, events.Payload{
		"asset":  string(assetID),
		"reason": reason,
		"tick":   int64(now),
	})
	return errors.Join(errs...)
}

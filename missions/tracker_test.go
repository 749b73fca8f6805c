package missions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/events"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/generic/store"
	"github.com/warp/airline-engine/missions"
)

type failingPayer struct{}

func (failingPayer) Deposit(context.Context, generic.EntityID, decimal.Decimal, generic.Tick, string, string) error {
	return errors.New("ledger unavailable")
}

func flightTo(dest airline.AirportCode, at generic.Tick) airline.Flight {
	return airline.Flight{
		Contract:      airline.Contract{ID: "c", Hub: "JFK", Destination: dest},
		ExecutionTime: at,
	}
}

func TestTracker_CompletesAndPaysOnce(t *testing.T) {
	// GIVEN: A mission to fly twice to BOS worth $5,000
	ctx := context.Background()
	mem := store.NewMemory()
	ledger := airline.NewFlightLedger(mem)
	bus := events.NewBus()
	done := bus.Subscribe(events.EventMissionCompleted)
	tracker := missions.NewTracker(mem, ledger, bus, zerolog.Nop())
	require.NoError(t, tracker.Add(ctx, missions.Mission{
		ID: "m-1", Title: "Boston shuttle", Destination: "BOS", Target: 2, Reward: decimal.NewFromInt(5000),
	}))

	// WHEN: Two BOS flights and one LAX flight fire
	require.NoError(t, tracker.NotifyFlight(ctx, flightTo("BOS", 100)))
	require.NoError(t, tracker.NotifyFlight(ctx, flightTo("LAX", 150)))
	require.NoError(t, tracker.NotifyFlight(ctx, flightTo("BOS", 200)))
	require.NoError(t, tracker.NotifyFlight(ctx, flightTo("BOS", 300)))

	// THEN: The mission completed at the second BOS flight and paid once
	list := tracker.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)
	assert.Equal(t, 2, list[0].Progress)
	assert.Equal(t, generic.Tick(200), list[0].CompletedAt)

	cash, err := ledger.Cash(ctx, generic.Year)
	require.NoError(t, err)
	assert.True(t, cash.Value.Equal(decimal.NewFromInt(5000)))
	assert.Len(t, done, 1)

	// AND: Progress survives a reload
	reloaded := missions.NewTracker(mem, ledger, nil, zerolog.Nop())
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.List()[0].Completed)
}

func TestTracker_RejectsEmptyTarget(t *testing.T) {
	tracker := missions.NewTracker(store.NewMemory(), nil, nil, zerolog.Nop())
	assert.Error(t, tracker.Add(context.Background(), missions.Mission{ID: "m"}))
}

func TestTracker_FailedPaymentStillCountsAndPersists(t *testing.T) {
	// GIVEN: Two one-flight missions and a payer that always fails
	ctx := context.Background()
	mem := store.NewMemory()
	tracker := missions.NewTracker(mem, failingPayer{}, nil, zerolog.Nop())
	require.NoError(t, tracker.Add(ctx, missions.Mission{ID: "m-1", Title: "First BOS", Destination: "BOS", Target: 1, Reward: decimal.NewFromInt(1000)}))
	require.NoError(t, tracker.Add(ctx, missions.Mission{ID: "m-2", Title: "Any flight", Target: 1}))

	// WHEN: A BOS flight fires
	err := tracker.NotifyFlight(ctx, flightTo("BOS", 100))

	// THEN: The payment error surfaces, but both missions counted the flight
	require.Error(t, err)
	list := tracker.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].Completed)
	assert.True(t, list[1].Completed)

	// AND: The progress was saved
	reloaded := missions.NewTracker(mem, nil, nil, zerolog.Nop())
	require.NoError(t, reloaded.Load(ctx))
	assert.True(t, reloaded.List()[0].Completed)
	assert.True(t, reloaded.List()[1].Completed)
}

package schedule_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/generic/store"
	"github.com/warp/airline-engine/schedule"
)

func sched(id string, asset airline.AssetID, start, end generic.Tick) airline.Schedule {
	return airline.Schedule{
		ID:         airline.ScheduleID("s-" + id),
		ContractID: airline.ContractID("c-" + id),
		Start:      start,
		End:        end,
		Option:     airline.ContractOption{AssetID: asset, TotalTime: generic.Window{Start: start, End: end}.Length()},
	}
}

// useTimeFixture overlaps freely; the repository trusts its callers.
func useTimeFixture() []airline.Schedule {
	return []airline.Schedule{
		sched("A", "N1", 1000, 2000),
		sched("B", "N1", 1500, 2000),
		sched("C", "N1", 2000, 2500),
		sched("D", "N1", 4500, 7500),
		sched("E", "N1", 5000, 6000),
		sched("F", "N1", 6000, 6500),
		sched("G", "N1", 6000, 7600),
		sched("H", "N1", 6500, 1200),
		sched("I", "N1", 10000, 500),
		sched("J", "N1", 10000, 10050),
	}
}

func newRepo(t *testing.T, schedules ...airline.Schedule) (*schedule.Repository, generic.StateStore) {
	t.Helper()
	ctx := context.Background()
	state := store.NewMemory()
	repo := schedule.NewRepository(state, nil)
	for _, s := range schedules {
		require.NoError(t, repo.Add(ctx, s, ""))
	}
	return repo, state
}

// =============================================================================
// DAY MEMBERSHIP
// =============================================================================

func TestRepository_ForDay_WrappingWindow(t *testing.T) {
	// GIVEN: A Friday departure that lands back on Monday, and a Sunday
	// night hop that crosses midnight into Monday
	repo, _ := newRepo(t,
		sched("fri", "N1", 6500, 1200),
		sched("sun", "N2", 10000, 500),
	)

	ids := func(day generic.Weekday) []airline.ContractID {
		var out []airline.ContractID
		for _, s := range repo.ForDay(day) {
			out = append(out, s.ContractID)
		}
		return out
	}

	// THEN: Every day the windows touch lists them, including Monday
	assert.Equal(t, []airline.ContractID{"c-fri"}, ids(generic.Friday))
	assert.Equal(t, []airline.ContractID{"c-fri"}, ids(generic.Saturday))
	assert.Equal(t, []airline.ContractID{"c-fri", "c-sun"}, ids(generic.Sunday))
	assert.Equal(t, []airline.ContractID{"c-fri", "c-sun"}, ids(generic.Monday))
	assert.Empty(t, ids(generic.Tuesday))
	assert.Empty(t, ids(generic.Thursday))
}

// =============================================================================
// USE TIME
// =============================================================================

func TestRepository_UseTimeForAsset(t *testing.T) {
	// GIVEN: Ten windows on one asset, two of them wrapping
	repo, _ := newRepo(t, useTimeFixture()...)

	// THEN: Busy ticks per day match the hand-computed totals
	want := map[generic.Weekday]generic.Tick{
		generic.Monday:    2140,
		generic.Tuesday:   1560,
		generic.Wednesday: 0,
		generic.Thursday:  2020,
		generic.Friday:    4080,
		generic.Saturday:  2140,
		generic.Sunday:    1570,
	}
	var total generic.Tick
	for day, ticks := range want {
		assert.Equal(t, ticks, repo.UseTimeForAsset("N1", day), day.String())
		total += ticks
	}

	// AND: The week adds up to the summed window lengths
	var lengths generic.Tick
	for _, s := range useTimeFixture() {
		lengths += s.Window().Length()
	}
	assert.Equal(t, lengths, total)
	assert.Equal(t, 134, repo.Utilization("N1"))

	// AND: Another asset is idle
	assert.Equal(t, generic.Tick(0), repo.UseTimeForAsset("N2", generic.Friday))
}

// =============================================================================
// AVAILABILITY
// =============================================================================

func TestRepository_IsPlaneAvailable(t *testing.T) {
	repo, _ := newRepo(t,
		sched("day", "N1", 1000, 2000),
		sched("wrap", "N1", 10000, 500),
	)

	tests := []struct {
		name string
		w    generic.Window
		want bool
	}{
		{"touching end conflicts", generic.Window{Start: 2000, End: 2500}, false},
		{"touching start conflicts", generic.Window{Start: 600, End: 1000}, false},
		{"one tick after is free", generic.Window{Start: 2001, End: 2500}, true},
		{"inside gap is free", generic.Window{Start: 3000, End: 9000}, true},
		{"monday tail of wrap conflicts", generic.Window{Start: 100, End: 200}, false},
		{"sunday before wrap is free", generic.Window{Start: 9000, End: 9999}, true},
		{"candidate wrapping over wrap conflicts", generic.Window{Start: 9500, End: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.IsPlaneAvailable("N1", tt.w))
		})
	}

	// AND: Windows on other assets never conflict
	assert.True(t, repo.IsPlaneAvailable("N2", generic.Window{Start: 1000, End: 2000}))

	clash, busy := repo.Conflict("N1", generic.Window{Start: 1900, End: 2100})
	require.True(t, busy)
	assert.Equal(t, airline.ContractID("c-day"), clash.ContractID)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

type recordingHubs struct {
	hubs map[airline.AssetID]airline.AirportCode
	fail error
}

func (r *recordingHubs) SetHub(_ context.Context, id airline.AssetID, hub airline.AirportCode) error {
	if r.fail != nil {
		return r.fail
	}
	r.hubs[id] = hub
	return nil
}

func TestRepository_AddRemovePersist(t *testing.T) {
	// GIVEN: A repository wired to a hub recorder
	ctx := context.Background()
	state := store.NewMemory()
	hubs := &recordingHubs{hubs: map[airline.AssetID]airline.AirportCode{}}
	repo := schedule.NewRepository(state, hubs)

	// WHEN: Two schedules are added and one removed
	require.NoError(t, repo.Add(ctx, sched("1", "N1", 100, 200), "JFK"))
	require.NoError(t, repo.Add(ctx, sched("2", "N2", 300, 400), "LAX"))
	removed, err := repo.Remove(ctx, "c-1")
	require.NoError(t, err)

	// THEN: The hub lock was applied and the removal returned the schedule
	assert.Equal(t, airline.AirportCode("JFK"), hubs.hubs["N1"])
	assert.Equal(t, airline.ScheduleID("s-1"), removed.ID)

	// AND: A fresh repository sees only the survivor
	reloaded := schedule.NewRepository(state, nil)
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, 1, reloaded.Len())
	got, ok := reloaded.GetByID("s-2")
	require.True(t, ok)
	assert.Equal(t, generic.Window{Start: 300, End: 400}, got.Window())

	_, err = repo.Remove(ctx, "c-1")
	assert.ErrorIs(t, err, generic.ErrScheduleNotFound)
}

func TestRepository_AddRollsBackWhenHubLockFails(t *testing.T) {
	// GIVEN: A hub locker that refuses every lock
	ctx := context.Background()
	state := store.NewMemory()
	hubs := &recordingHubs{hubs: map[airline.AssetID]airline.AirportCode{}, fail: errors.New("hangar offline")}
	repo := schedule.NewRepository(state, hubs)

	// WHEN: A schedule is added
	err := repo.Add(ctx, sched("1", "N1", 100, 200), "JFK")

	// THEN: The add fails and leaves nothing behind, in memory or on disk
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
	reloaded := schedule.NewRepository(state, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 0, reloaded.Len())
}

// =============================================================================
// DRAFT
// =============================================================================

func TestDraftWindow(t *testing.T) {
	c := airline.Contract{ID: "c-1", DepartureTime: 40}

	t.Run("boarding before monday wraps to sunday", func(t *testing.T) {
		w, err := schedule.DraftWindow(c, airline.ContractOption{BoardingTime: 120, TotalTime: 600})
		require.NoError(t, err)
		assert.Equal(t, generic.Window{Start: 10000, End: 520}, w)
		assert.True(t, w.Wraps())

		again, err := schedule.DraftWindow(c, airline.ContractOption{BoardingTime: 120, TotalTime: 600})
		require.NoError(t, err)
		assert.Equal(t, w, again)
	})

	t.Run("total time out of range", func(t *testing.T) {
		for _, total := range []generic.Tick{0, -5, generic.Week} {
			_, err := schedule.DraftWindow(c, airline.ContractOption{TotalTime: total})
			assert.ErrorIs(t, err, generic.ErrInvalidWindow)
		}
	})

	t.Run("negative boarding time", func(t *testing.T) {
		_, err := schedule.DraftWindow(c, airline.ContractOption{BoardingTime: -1, TotalTime: 100})
		assert.ErrorIs(t, err, generic.ErrInvalidWindow)
	})
}

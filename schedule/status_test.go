package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/airline-engine/generic"
	"github.com/warp/airline-engine/schedule"
)

func TestStatusAt(t *testing.T) {
	day := sched("day", "N1", 1000, 2000)
	wrap := sched("wrap", "N1", 6500, 1200)

	t.Run("outbound leg", func(t *testing.T) {
		st := schedule.StatusAt(day, generic.Week*5+1100)
		assert.True(t, st.InTheAir)
		assert.Equal(t, schedule.LegThere, st.Leg)
		assert.Equal(t, generic.Tick(100), st.Elapsed)
		assert.Equal(t, generic.Tick(900), st.Remaining)
		assert.Equal(t, 10, st.Progress)
	})

	t.Run("return leg across the week boundary", func(t *testing.T) {
		st := schedule.StatusAt(wrap, generic.Week*3+1100)
		assert.True(t, st.InTheAir)
		assert.Equal(t, schedule.LegBack, st.Leg)
		assert.Equal(t, generic.Tick(4680), st.Elapsed)
		assert.Equal(t, generic.Tick(100), st.Remaining)
	})

	t.Run("halfway turns back", func(t *testing.T) {
		st := schedule.StatusAt(day, 1500)
		assert.Equal(t, schedule.LegBack, st.Leg)
	})

	t.Run("landed", func(t *testing.T) {
		st := schedule.StatusAt(day, generic.Week+2001)
		assert.False(t, st.InTheAir)
		assert.Empty(t, st.Leg)
	})

	t.Run("last tick still flying", func(t *testing.T) {
		st := schedule.StatusAt(day, 2000)
		assert.True(t, st.InTheAir)
		assert.Equal(t, 100, st.Progress)
	})
}

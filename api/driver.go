/*
driver.go - Wall-clock tick loop

PURPOSE:
  Advances the simulation clock by one tick every Interval of real time,
  so the world keeps moving while the server runs.

DESIGN:
  - Runs a background goroutine driven by a time.Ticker
  - Pause stops advancing without stopping the goroutine
  - Each tick persists playtime and the wall-clock time it ran at; paused
    ticks and Stop still record the wall clock, so paused time is never
    replayed as offline time
  - On Start, time spent offline since the last run is replayed, bounded
    by MaxCatchUp ticks

CONFIGURATION:
  - Interval:   Wall-clock time per tick (default: 1s)
  - MaxCatchUp: Ticks replayed at most on start (0 disables catch-up)

USAGE:
  driver := NewTickDriver(game, logger)
  driver.Start(ctx)
  // ... later
  driver.Stop()

SEE ALSO:
  - game.go: Advance
  - config/config.go: SimConfig
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/airline-engine/generic"
)

// TickDriver advances the game clock in real time.
type TickDriver struct {
	Game       *Game
	Interval   time.Duration
	MaxCatchUp int64

	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	paused  bool
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTickDriver creates a driver ticking once per second.
func NewTickDriver(game *Game, logger zerolog.Logger) *TickDriver {
	return &TickDriver{
		Game:     game,
		Interval: time.Second,
		logger:   logger.With().Str("component", "driver").Logger(),
		now:      time.Now,
	}
}

// Start catches up on offline time, then begins ticking.
func (d *TickDriver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	if n, err := d.catchUp(ctx); err != nil {
		d.logger.Error().Err(err).Msg("offline catch-up failed")
	} else if n > 0 {
		d.logger.Info().Int64("ticks", n).Msg("caught up on offline time")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running = true
	d.wg.Add(1)
	go d.run(runCtx)

	d.logger.Info().Dur("interval", d.Interval).Bool("paused", d.paused).Msg("tick driver started")
}

// Stop halts the loop and waits for the current tick to finish.
func (d *TickDriver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.running = false
	d.mu.Unlock()

	d.wg.Wait()
	d.markWallclock(context.Background())
	d.logger.Info().Msg("tick driver stopped")
}

func (d *TickDriver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

func (d *TickDriver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

func (d *TickDriver) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func (d *TickDriver) run(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if d.Paused() {
				d.markWallclock(ctx)
				continue
			}
			d.step(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// step runs one tick. Failures are logged; the loop keeps going.
func (d *TickDriver) step(ctx context.Context) {
	now, err := d.Game.Advance(ctx, 1)
	if err != nil {
		d.logger.Error().Err(err).Str("tick", now.String()).Msg("tick failed")
	}
	d.markWallclock(ctx)
}

// catchUp replays the ticks that would have run while the server was down.
func (d *TickDriver) catchUp(ctx context.Context) (int64, error) {
	if d.MaxCatchUp <= 0 || d.Interval <= 0 {
		return 0, nil
	}

	var last int64
	found, err := d.Game.Store.Get(ctx, generic.KeyLastWallclock, &last)
	if err != nil || !found {
		return 0, err
	}

	missed := int64(d.now().Sub(time.Unix(last, 0)) / d.Interval)
	if missed <= 0 {
		return 0, nil
	}
	if missed > d.MaxCatchUp {
		d.logger.Warn().Int64("missed", missed).Int64("max", d.MaxCatchUp).Msg("offline time truncated")
		missed = d.MaxCatchUp
	}

	_, err = d.Game.Advance(ctx, generic.Tick(missed))
	d.markWallclock(ctx)
	return missed, err
}

func (d *TickDriver) markWallclock(ctx context.Context) {
	if err := d.Game.Store.Put(ctx, generic.KeyLastWallclock, d.now().Unix()); err != nil {
		d.logger.Error().Err(err).Msg("failed to save wall clock")
	}
}

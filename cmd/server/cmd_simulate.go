package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/airline-engine/generic"
)

var flagTicks int64

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the simulation headless for a number of ticks",
	Long:  "Advance the clock without a server, then print the cash statement, reputation and pending flights.",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Int64Var(&flagTicks, "ticks", int64(generic.Week), "ticks to run (one tick is one minute)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if flagTicks <= 0 {
		return fmt.Errorf("--ticks must be positive")
	}
	ctx := context.Background()

	game, store, err := openGame(ctx, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	start := game.Clock.Now()
	now, err := game.Advance(ctx, generic.Tick(flagTicks))
	if err != nil {
		logger.Warn().Err(err).Msg("some ticks reported errors")
	}

	statement, err := game.Ledger.Statement(ctx, "")
	if err != nil {
		return err
	}
	score, err := game.Reputation.Score(ctx, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "simulated %s -> %s (%d ticks)\n", start, now, flagTicks)
	fmt.Fprintf(out, "schedules:  %d active, %d pending flights\n", len(game.Engine.Schedules()), len(game.Engine.Pending()))
	fmt.Fprintf(out, "cash:       credits %s, debits %s, net %s\n",
		statement.Credits.Value.StringFixed(2), statement.Debits.Value.StringFixed(2), statement.Net.Value.StringFixed(2))
	fmt.Fprintf(out, "reputation: %s\n", score.Value.String())
	for _, m := range game.Missions.List() {
		fmt.Fprintf(out, "mission:    %-32s %d/%d\n", m.Title, m.Progress, m.Target)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"home_energy/internal/service"
)

var (
	rtDevice   int
	rtInterval time.Duration
	rtDuration time.Duration
	rtSeed     int64
)

var realtimeCmd = &cobra.Command{
	Use:   "realtime",
	Short: "Stream one reading per interval for a bounded duration",
	Long: `Emits readings paced in wall-clock time, retrying transient failures with a
constant backoff. Readings whose retries run out are dropped and counted.
Ctrl-C stops the stream and prints what was sent.`,
	RunE: runRealtime,
}

func init() {
	realtimeCmd.Flags().IntVar(&rtDevice, "device", 0, "device id (default: all devices)")
	realtimeCmd.Flags().DurationVar(&rtInterval, "interval", 10*time.Second, "sampling interval")
	realtimeCmd.Flags().DurationVar(&rtDuration, "duration", 10*time.Minute, "how long to stream")
	realtimeCmd.Flags().Int64Var(&rtSeed, "seed", 1, "random seed")
	rootCmd.AddCommand(realtimeCmd)
}

func runRealtime(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	r, err := openRunner(ctx)
	if err != nil {
		return err
	}
	defer r.close()

	devices, err := r.selectDevices(ctx, rtDevice)
	if err != nil {
		return err
	}

	// one paced loop per device; a hard failure on one stops the rest
	var dropped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range devices {
		g.Go(func() error {
			rep, err := r.generator.Generate(gctx, r.session, service.GenerateParams{
				DeviceID: d.ID,
				Category: string(d.Category),
				Mode:     service.ModeRealtime,
				Interval: rtInterval,
				Seed:     rtSeed + int64(d.ID),
				Duration: rtDuration,
			})
			printReport(cmd, d, rep)
			if err != nil && !errors.Is(err, service.ErrPointsDropped) {
				return fmt.Errorf("device %d: %w", d.ID, err)
			}
			if err != nil {
				dropped.Add(int64(rep.Dropped))
				r.log.Warnw("realtime_points_dropped", "device_id", d.ID, "dropped", rep.Dropped)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := dropped.Load(); n > 0 {
		return fmt.Errorf("%d readings: %w", n, service.ErrPointsDropped)
	}
	return nil
}

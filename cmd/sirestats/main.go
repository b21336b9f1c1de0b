// Command sirestats recounts the stored statistics of every sire from
// its recorded insemination outcomes. Meant for one-off runs after bulk
// data loads or migrations. By default only sires whose stored counters
// drifted from their live event counts are touched; -force recomputes
// every sire.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/bovipred/bovipred-backend/internal/app"
)

const recomputeWorkers = 8

func main() {
	force := flag.Bool("force", false, "recompute every sire, even when counters match")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()

	ids, err := a.Services.Sire.ListIDs(ctx)
	if err != nil {
		a.Log.Error("Could not list sires", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Recomputing sire statistics", "count", len(ids), "force", *force)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recomputeWorkers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if !*force {
				stale, err := a.Services.Sire.NeedsRecomputation(gctx, id)
				if err != nil {
					a.Log.Warn("Staleness check failed", "semental_id", id, "error", err)
					return nil
				}
				if !stale {
					return nil
				}
			}
			if _, err := a.Services.Sire.RecomputeStatistics(gctx, id); err != nil {
				a.Log.Warn("Recompute failed", "semental_id", id, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.Log.Error("Recompute aborted", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Done")
}

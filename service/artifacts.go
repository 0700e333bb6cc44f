package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/log"
	"golang.org/x/sync/errgroup"
)

// LoadArtifacts loads the circuit artifacts of every layout concurrently,
// downloading the ones missing from the local cache.
func LoadArtifacts(timeout time.Duration, artifacts map[string]*circuits.CircuitArtifacts) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for layout, ca := range artifacts {
		g.Go(func() error {
			if err := ca.LoadAll(ctx); err != nil {
				return fmt.Errorf("layout %s: %w", layout, err)
			}
			log.Debugw("circuit artifacts loaded", "layout", layout)
			return nil
		})
	}
	return g.Wait()
}

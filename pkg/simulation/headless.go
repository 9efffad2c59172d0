package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// HeadlessFrame is the simulated time of one headless tick.
const HeadlessFrame = time.Second / 60

// Summary describes a flock after a headless run.
type Summary struct {
	Stats    flock.Stats
	Centroid geometry.Vector3D
	Spread   float64 // mean distance to the centroid
	MinY     float64
	MaxY     float64
	Elapsed  time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("ticks=%d centroid=%s spread=%.2f y=[%.2f, %.2f] queryFailures=%d elapsed=%s",
		s.Stats.Ticks, s.Centroid, s.Spread, s.MinY, s.MaxY, s.Stats.QueryFailures, s.Elapsed)
}

// RunHeadless drives the flock described by cfg for ticks steps without actor
// system or window, logging progress every second of wall time.
func RunHeadless(ctx context.Context, cfg *Config, ticks int, logger log.Logger) (Summary, error) {
	if logger == nil {
		logger = log.DiscardLogger
	}
	f, _, err := cfg.NewFlock(logger)
	if err != nil {
		return Summary{}, err
	}
	logger.Infof("headless run: %d boids, %d ticks, %d workers, %s neighborhood",
		f.Len(), ticks, cfg.Workers, cfg.Neighborhood)

	start := time.Now()
	lastLog := start
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return Summarize(f.Snapshot(), f.Stats(), time.Since(start)), fmt.Errorf("headless run stopped after %d ticks: %w", i, err)
		}
		f.Tick(HeadlessFrame)
		if time.Since(lastLog) >= time.Second {
			logger.Infof("📊 tick %d/%d, last step %s", i+1, ticks, f.Stats().LastTickDuration)
			lastLog = time.Now()
		}
	}
	return Summarize(f.Snapshot(), f.Stats(), time.Since(start)), nil
}

// Summarize measures the shape of a flock snapshot.
func Summarize(agents []flock.AgentState, stats flock.Stats, elapsed time.Duration) Summary {
	s := Summary{Stats: stats, Elapsed: elapsed}
	if len(agents) == 0 {
		return s
	}
	s.MinY, s.MaxY = math.Inf(1), math.Inf(-1)
	for _, a := range agents {
		s.Centroid = s.Centroid.Add(a.Position)
		s.MinY = math.Min(s.MinY, a.Position.Y)
		s.MaxY = math.Max(s.MaxY, a.Position.Y)
	}
	s.Centroid = s.Centroid.Mul(1 / float64(len(agents)))
	for _, a := range agents {
		s.Spread += a.Position.DistanceTo(s.Centroid)
	}
	s.Spread /= float64(len(agents))
	return s
}

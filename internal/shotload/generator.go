package shotload

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
)

// profile is a plausible launch window for one kind of club. Each value is
// drawn uniformly from [min, max].
type profile struct {
	name       string
	weight     int
	ballSpeed  [2]float64 // m/s
	launch     [2]float64 // degrees
	spin       [2]float64 // rpm
	horizontal [2]float64 // degrees
	spinAxis   [2]float64 // degrees
}

var profiles = []profile{
	{"driver", 3, [2]float64{58, 76}, [2]float64{9, 15}, [2]float64{2000, 3200}, [2]float64{-4, 4}, [2]float64{-12, 12}},
	{"wood", 1, [2]float64{54, 68}, [2]float64{10, 14}, [2]float64{3000, 4200}, [2]float64{-3, 3}, [2]float64{-10, 10}},
	{"iron", 4, [2]float64{40, 58}, [2]float64{14, 24}, [2]float64{4500, 7500}, [2]float64{-3, 3}, [2]float64{-8, 8}},
	{"wedge", 2, [2]float64{28, 42}, [2]float64{26, 36}, [2]float64{8000, 10500}, [2]float64{-2, 2}, [2]float64{-6, 6}},
}

// Generator produces deterministic synthetic shots.
type Generator struct {
	rng   *rand.Rand
	total int
	next  int64
	clock time.Time
}

// NewGenerator creates a generator whose output depends only on seed and first.
func NewGenerator(seed uint64, first int64) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		next:  first,
		clock: time.Date(2025, 11, 30, 4, 0, 0, 0, time.UTC),
	}
	for _, p := range profiles {
		g.total += p.weight
	}
	return g
}

func (g *Generator) between(r [2]float64) float64 {
	return r[0] + g.rng.Float64()*(r[1]-r[0])
}

func (g *Generator) pick() profile {
	n := g.rng.IntN(g.total)
	for _, p := range profiles {
		if n < p.weight {
			return p
		}
		n -= p.weight
	}
	return profiles[0]
}

// Next returns the next shot. Shot numbers are consecutive and timestamps
// advance by a few seconds per shot.
func (g *Generator) Next() Shot {
	p := g.pick()
	number := g.next
	g.next++
	g.clock = g.clock.Add(time.Duration(5+g.rng.IntN(25)) * time.Second)
	ts := g.clock.UnixNano()

	hand := "RH"
	if g.rng.IntN(10) == 0 {
		hand = "LH"
	}

	return Shot{
		Club: p.name,
		Msg: model.ShotMessage{
			ShotNumber:          &number,
			TimestampNS:         &ts,
			BallSpeed:           model.Float(round1(g.between(p.ballSpeed))),
			VerticalLaunchAngle: model.Float(round1(g.between(p.launch))),
			HorizontalLaunch:    model.Float(round1(g.between(p.horizontal))),
			TotalSpin:           model.Float(math.Round(g.between(p.spin))),
			SpinAxis:            model.Float(round1(g.between(p.spinAxis))),
			Handedness:          hand,
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// generateShots creates the configured number of shots.
func generateShots(ctx context.Context, config *Config, stats *Stats) []Shot {
	logger.Get().Info(ctx, "generating shots", logger.Int("numShots", config.NumShots), logger.Int64("seed", int64(config.Seed)))

	g := NewGenerator(config.Seed, config.FirstShot)
	shots := make([]Shot, config.NumShots)
	for i := range shots {
		shots[i] = g.Next()
	}

	stats.ShotsGenerated = len(shots)
	return shots
}

package energy

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"home_energy/internal/models"
)

// Synthetic draw profiles, in kW.
const (
	RefrigeratorKW     = 0.15
	RefrigeratorJitter = 0.10 // fraction of RefrigeratorKW

	ACDayStart  = 10
	ACDayEnd    = 18
	ACDayMinKW  = 1.2
	ACDayMaxKW  = 1.8
	ACIdleMaxKW = 0.02

	WasherActivation = 0.35
	WasherMinKW      = 0.5
	WasherMaxKW      = 1.0

	LightingMinKW = 0.2
	LightingMaxKW = 0.6

	TVMinKW = 0.10
	TVMaxKW = 0.15

	ComputerStart = 9
	ComputerEnd   = 17
	ComputerMinKW = 0.15
	ComputerMaxKW = 0.25

	OtherMinKW = 0.02
	OtherMaxKW = 0.10
)

// hourWindow is a half-open [from, to) range of hours.
type hourWindow struct{ from, to int }

func (w hourWindow) has(h int) bool { return w.from <= h && h < w.to }

var (
	washerWindows   = []hourWindow{{7, 10}, {18, 21}}
	lightingWindows = []hourWindow{{6, 9}, {18, 23}}
	tvWindows       = []hourWindow{{19, 23}}
)

func inAny(ws []hourWindow, h int) bool {
	for _, w := range ws {
		if w.has(h) {
			return true
		}
	}
	return false
}

// Generator produces plausible draws per category. It keeps no state between
// calls: the random stream of each sample is derived from (seed, category, ts).
type Generator struct {
	seed uint64
}

func NewGenerator(seed int64) Generator {
	return Generator{seed: uint64(seed)}
}

func (g Generator) rng(c models.Category, ts time.Time) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(c))
	return rand.New(rand.NewPCG(g.seed^h.Sum64(), uint64(ts.Unix())))
}

// Sample returns the synthetic draw in kW for category at ts (hour in ts's location).
func (g Generator) Sample(c models.Category, ts time.Time) float64 {
	r := g.rng(c, ts)
	h := ts.Hour()

	switch c {
	case models.CategoryRefrigerator:
		return RefrigeratorKW * (1 + between(r, -RefrigeratorJitter, RefrigeratorJitter))
	case models.CategoryAirConditioner:
		if h >= ACDayStart && h < ACDayEnd {
			return between(r, ACDayMinKW, ACDayMaxKW)
		}
		return between(r, 0, ACIdleMaxKW)
	case models.CategoryWashingMachine:
		if inAny(washerWindows, h) && r.Float64() < WasherActivation {
			return between(r, WasherMinKW, WasherMaxKW)
		}
		return 0
	case models.CategoryLighting:
		if inAny(lightingWindows, h) {
			return between(r, LightingMinKW, LightingMaxKW)
		}
		return 0
	case models.CategoryTelevision:
		if inAny(tvWindows, h) {
			return between(r, TVMinKW, TVMaxKW)
		}
		return 0
	case models.CategoryComputer:
		if h >= ComputerStart && h < ComputerEnd {
			return between(r, ComputerMinKW, ComputerMaxKW)
		}
		return 0
	default:
		return between(r, OtherMinKW, OtherMaxKW)
	}
}

func between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

package engine

import (
	"sync"

	"golang.org/x/exp/rand"

	"github.com/yourusername/dabengine/internal/grid"
)

// Default exploration schedule.
const (
	DefaultExploration      = 0.3
	DefaultExplorationDecay = 0.999
	DefaultMinExploration   = 0.05
)

// Exploration gate probabilities: while exploring, a completing move is
// still preferred with 0.95, then strategic with 0.8, then safe with 0.7.
// Each gate is checked independently; a failed gate falls through to the
// next tier, and only the final fallback draws uniformly from all moves.
const (
	exploreCompletingGate = 0.95
	exploreStrategicGate  = 0.8
	exploreSafeGate       = 0.7
)

// strategicProgressCutoff bounds the game phase in which exploitation still
// prefers strategic moves over safe ones.
const strategicProgressCutoff = 0.6

// Choice records which tier a selection came from and whether it was an
// exploration draw, for decision tracing.
type Choice struct {
	Edge     grid.Edge
	Tier     string // "completing", "strategic", "safe", "unsafe" or "any"
	Explored bool
}

// Policy selects moves under a decaying epsilon-greedy schedule. The
// exploration rate is process-wide state owned by the policy; it decays
// multiplicatively after every selection and never drops below the floor.
type Policy struct {
	epsilon float64
	decay   float64
	floor   float64
	rng     *rand.Rand
	mu      sync.Mutex
}

// NewPolicy creates a policy with the given starting exploration rate,
// multiplicative decay, floor, and random seed. The values are used as
// given; epsilon 0 means pure exploitation. Defaulting of unset options
// happens in NewEngine.
func NewPolicy(epsilon, decay, floor float64, seed uint64) *Policy {
	if seed == 0 {
		seed = 1
	}
	return &Policy{
		epsilon: epsilon,
		decay:   decay,
		floor:   floor,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Epsilon returns the current exploration rate.
func (p *Policy) Epsilon() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epsilon
}

// Select picks one legal move for the board and decays the exploration rate.
// state must be the board's state key and tiers its classification; progress
// is the fraction of boxes already completed. Returns false when there are
// no legal moves, which callers must treat as game over, not an error.
func (p *Policy) Select(b *grid.Board, state string, tiers MoveTiers, table *QTable, progress float64) (Choice, bool) {
	if len(tiers.All) == 0 {
		return Choice{}, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var choice Choice
	if p.rng.Float64() < p.epsilon {
		choice = p.explore(tiers)
	} else {
		choice = exploit(b, state, tiers, table, progress)
	}

	p.epsilon = p.epsilon * p.decay
	if p.epsilon < p.floor {
		p.epsilon = p.floor
	}
	return choice, true
}

func (p *Policy) explore(tiers MoveTiers) Choice {
	switch {
	case len(tiers.Completing) > 0 && p.rng.Float64() < exploreCompletingGate:
		return Choice{Edge: pickRandom(p.rng, tiers.Completing), Tier: "completing", Explored: true}
	case len(tiers.Strategic) > 0 && p.rng.Float64() < exploreStrategicGate:
		return Choice{Edge: pickRandom(p.rng, tiers.Strategic), Tier: "strategic", Explored: true}
	case len(tiers.Safe) > 0 && p.rng.Float64() < exploreSafeGate:
		return Choice{Edge: pickRandom(p.rng, tiers.Safe), Tier: "safe", Explored: true}
	default:
		return Choice{Edge: pickRandom(p.rng, tiers.All), Tier: "any", Explored: true}
	}
}

func exploit(b *grid.Board, state string, tiers MoveTiers, table *QTable, progress float64) Choice {
	switch {
	case len(tiers.Completing) > 0:
		return Choice{Edge: argmaxQ(table, state, tiers.Completing), Tier: "completing"}
	case len(tiers.Strategic) > 0 && progress < strategicProgressCutoff:
		return Choice{Edge: argmaxQ(table, state, tiers.Strategic), Tier: "strategic"}
	case len(tiers.Safe) > 0:
		return Choice{Edge: argmaxQ(table, state, tiers.Safe), Tier: "safe"}
	case len(tiers.Unsafe) > 0:
		return Choice{Edge: minRisk(b, tiers.Unsafe), Tier: "unsafe"}
	default:
		return Choice{Edge: tiers.All[0], Tier: "any"}
	}
}

func pickRandom(rng *rand.Rand, moves []grid.Edge) grid.Edge {
	return moves[rng.Intn(len(moves))]
}

// argmaxQ returns the move with the highest recorded value, first in
// enumeration order on ties.
func argmaxQ(table *QTable, state string, moves []grid.Edge) grid.Edge {
	best := moves[0]
	bestValue := table.Get(state, best.Key())
	for _, e := range moves[1:] {
		if v := table.Get(state, e.Key()); v > bestValue {
			best = e
			bestValue = v
		}
	}
	return best
}

// minRisk returns the move conceding the fewest boxes, first in enumeration
// order on ties.
func minRisk(b *grid.Board, moves []grid.Edge) grid.Edge {
	best := moves[0]
	bestRisk := Risk(b, best)
	for _, e := range moves[1:] {
		if r := Risk(b, e); r < bestRisk {
			best = e
			bestRisk = r
		}
	}
	return best
}

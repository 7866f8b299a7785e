package engine

import (
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/yourusername/dabengine/internal/grid"
)

// Learning defaults.
const (
	DefaultLearningRate   = 0.2
	DefaultDiscountFactor = 0.9
	DefaultSaveSampling   = 0.1
)

// Outcome statuses returned by ApplyOutcome.
const (
	StatusUpdated         = "updated"
	StatusNoPriorDecision = "no_prior_decision"
)

// Options configures an Engine. Zero-valued fields fall back to defaults;
// an empty TablePath disables persistence. Exploration and SaveSampling
// accept negative values to mean an explicit zero (pure exploitation, never
// save on the sampled schedule).
type Options struct {
	TablePath        string  // Where the q-table is persisted ("" = in-memory only)
	LearningRate     float64 // Alpha (default 0.2)
	DiscountFactor   float64 // Gamma (default 0.9)
	Exploration      float64 // Starting epsilon (default 0.3)
	ExplorationDecay float64 // Multiplicative decay per decision (default 0.999)
	MinExploration   float64 // Epsilon floor (default 0.05)
	SaveSampling     float64 // Probability of persisting after an update (default 0.1)
	Seed             uint64  // Random seed (0 = fixed default, reproducible)
}

// UpdateResult reports the effect of applying an observed outcome.
type UpdateResult struct {
	Status   string  // StatusUpdated or StatusNoPriorDecision
	NewValue float64 // Updated Q(prev_state, action), zero on no-op
	Reward   float64 // Reward used for the update (supplied or derived)
}

// EngineStats is a read-only snapshot of the learning state.
type EngineStats struct {
	ExplorationRate float64    `json:"exploration_rate"`
	TableStates     int        `json:"q_table_size"`
	LearningRate    float64    `json:"learning_rate"`
	DiscountFactor  float64    `json:"discount_factor"`
	Values          ValueStats `json:"values"`
}

// lastDecision is the single-slot retention of the most recent decision's
// (state, action) pair, consumed by the next ApplyOutcome. One in-flight
// game at a time; correlating sessions is the transport's job.
type lastDecision struct {
	state  string
	action string
	valid  bool
}

// Engine wires the move classifier, the selection policy and the Q-table
// behind the three operations the transport layer needs: choose a move,
// apply an observed outcome, and snapshot stats.
type Engine struct {
	table  *QTable
	policy *Policy

	alpha     float64
	gamma     float64
	tablePath string
	sampling  float64

	mu      sync.Mutex
	last    lastDecision
	saveRng *rand.Rand
}

// NewEngine creates an engine, restoring any persisted Q-table from
// opts.TablePath. A missing or unreadable table is not an error.
func NewEngine(opts Options) *Engine {
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultLearningRate
	}
	if opts.DiscountFactor <= 0 {
		opts.DiscountFactor = DefaultDiscountFactor
	}
	if opts.Exploration < 0 {
		// Pure exploitation; the floor must not resurrect exploration.
		opts.Exploration = 0
		opts.MinExploration = -1
	} else if opts.Exploration == 0 {
		opts.Exploration = DefaultExploration
	}
	if opts.ExplorationDecay <= 0 {
		opts.ExplorationDecay = DefaultExplorationDecay
	}
	if opts.MinExploration < 0 {
		opts.MinExploration = 0
	} else if opts.MinExploration == 0 {
		opts.MinExploration = DefaultMinExploration
	}
	if opts.SaveSampling < 0 {
		opts.SaveSampling = 0
	} else if opts.SaveSampling == 0 {
		opts.SaveSampling = DefaultSaveSampling
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}

	var table *QTable
	if opts.TablePath != "" {
		table = LoadQTable(opts.TablePath)
	} else {
		table = NewQTable()
	}

	return &Engine{
		table:     table,
		policy:    NewPolicy(opts.Exploration, opts.ExplorationDecay, opts.MinExploration, seed),
		alpha:     opts.LearningRate,
		gamma:     opts.DiscountFactor,
		tablePath: opts.TablePath,
		sampling:  opts.SaveSampling,
		saveRng:   rand.New(rand.NewSource(seed + 1)),
	}
}

// Table exposes the underlying Q-table for inspection.
func (e *Engine) Table() *QTable {
	return e.table
}

// ChooseMove classifies the board's legal moves, selects one under the
// policy, and retains the (state, action) pair for the next ApplyOutcome.
// A nil edge means no legal moves remain; that is game over, not an error.
func (e *Engine) ChooseMove(b *grid.Board, agentID string) *grid.Edge {
	state := b.StateKey()
	tiers := Classify(b)

	choice, ok := e.policy.Select(b, state, tiers, e.table, b.Progress())
	if !ok {
		return nil
	}

	e.mu.Lock()
	e.last = lastDecision{state: state, action: choice.Edge.Key(), valid: true}
	e.mu.Unlock()

	log.Info().
		Str("player", agentID).
		Str("move", choice.Edge.Key()).
		Str("tier", choice.Tier).
		Bool("explored", choice.Explored).
		Msg("move chosen")
	return &choice.Edge
}

// ApplyOutcome feeds the observed result of the last decision back into the
// Q-table. When reward is zero and boxes were completed this transition, the
// reward is derived from the square-ownership delta between the retained
// previous state and the new board. The table is persisted on a sampled
// schedule rather than on every update.
func (e *Engine) ApplyOutcome(newBoard *grid.Board, reward float64, completedSquares []string, agentID string) UpdateResult {
	e.mu.Lock()
	last := e.last
	e.mu.Unlock()

	if !last.valid {
		log.Warn().Msg("outcome received with no prior decision")
		return UpdateResult{Status: StatusNoPriorDecision}
	}

	newState := newBoard.StateKey()

	if reward == 0 && len(completedSquares) > 0 {
		prevSquares := grid.ParseStateSquares(last.state)
		reward = Reward(prevSquares, newBoard.Squares, agentID, newBoard.BoxCount())
	}

	newValue := e.table.Update(last.state, last.action, reward, newState, e.alpha, e.gamma)
	log.Info().
		Str("action", last.action).
		Float64("reward", reward).
		Float64("new_q", newValue).
		Msg("q-value updated")

	e.maybeSave()
	return UpdateResult{Status: StatusUpdated, NewValue: newValue, Reward: reward}
}

// maybeSave persists the table with probability sampling. Losing unsaved
// increments on a crash is acceptable; corrupting the stored table is not,
// which SaveFile's atomic replace guarantees.
func (e *Engine) maybeSave() {
	if e.tablePath == "" {
		return
	}
	e.mu.Lock()
	roll := e.saveRng.Float64()
	e.mu.Unlock()
	if roll >= e.sampling {
		return
	}
	if err := e.table.SaveFile(e.tablePath); err != nil {
		log.Error().Err(err).Msg("sampled q-table save failed, learning continues unpersisted")
	}
}

// Stats returns a read-only snapshot of the learning state.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		ExplorationRate: e.policy.Epsilon(),
		TableStates:     e.table.Len(),
		LearningRate:    e.alpha,
		DiscountFactor:  e.gamma,
		Values:          e.table.Stats(),
	}
}

// Close persists the table one final time. Safe to call when persistence is
// disabled.
func (e *Engine) Close() error {
	if e.tablePath == "" {
		return nil
	}
	return e.table.SaveFile(e.tablePath)
}

package engine

import (
	"sync"
)

// QTable is a sparse mapping of state key to per-action value estimates.
// Entries default to zero: an unseen (state, action) pair is
// indistinguishable from one estimated at zero. Safe for concurrent use.
type QTable struct {
	states map[string]map[string]float64
	mu     sync.RWMutex
}

// NewQTable creates an empty table.
func NewQTable() *QTable {
	return &QTable{
		states: make(map[string]map[string]float64),
	}
}

// Get returns the value estimate for taking action from state, zero if the
// pair has never been written.
func (t *QTable) Get(state, action string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.states[state][action]
}

// Set writes a value estimate directly.
func (t *QTable) Set(state, action string, value float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	actions := t.states[state]
	if actions == nil {
		actions = make(map[string]float64)
		t.states[state] = actions
	}
	actions[action] = value
}

// MaxValue returns the highest recorded value among the state's actions,
// zero when the state has none.
func (t *QTable) MaxValue(state string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maxRecorded(t.states[state])
}

// maxRecorded returns the highest value in the action map, zero when empty.
// Callers must hold the table lock.
func maxRecorded(actions map[string]float64) float64 {
	best := 0.0
	first := true
	for _, v := range actions {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

// Update applies the one-step value-learning rule
//
//	Q(s,a) <- Q(s,a) + alpha * (reward + gamma*max_a' Q(s',a') - Q(s,a))
//
// and returns the new estimate.
func (t *QTable) Update(prevState, action string, reward float64, nextState string, alpha, gamma float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	maxFuture := maxRecorded(t.states[nextState])
	current := t.states[prevState][action]
	updated := current + alpha*(reward+gamma*maxFuture-current)

	actions := t.states[prevState]
	if actions == nil {
		actions = make(map[string]float64)
		t.states[prevState] = actions
	}
	actions[action] = updated
	return updated
}

// Len returns the number of distinct states in the table.
func (t *QTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.states)
}

// Entries returns a deep copy of the table contents.
func (t *QTable) Entries() map[string]map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]map[string]float64, len(t.states))
	for state, actions := range t.states {
		copied := make(map[string]float64, len(actions))
		for action, v := range actions {
			copied[action] = v
		}
		out[state] = copied
	}
	return out
}

// Merge folds persisted entries into the table, overwriting any existing
// values for the same (state, action) pairs.
func (t *QTable) Merge(entries map[string]map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for state, actions := range entries {
		existing := t.states[state]
		if existing == nil {
			existing = make(map[string]float64, len(actions))
			t.states[state] = existing
		}
		for action, v := range actions {
			existing[action] = v
		}
	}
}

// Values returns every stored value as a flat slice, for statistics.
func (t *QTable) Values() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var values []float64
	for _, actions := range t.states {
		for _, v := range actions {
			values = append(values, v)
		}
	}
	return values
}

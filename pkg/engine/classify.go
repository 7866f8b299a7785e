// Package engine implements the decision core for a dots-and-boxes player:
// a tactical move classifier, a shaped reward model, a persistent Q-table
// with one-step value updates, and an epsilon-greedy selection policy.
package engine

import (
	"github.com/yourusername/dabengine/internal/grid"
)

// MoveTiers partitions the legal moves of a board by tactical value. The
// four tiers are mutually exclusive and together cover All.
type MoveTiers struct {
	Completing []grid.Edge // Moves that complete at least one box
	Strategic  []grid.Edge // Moves that develop a potential chain
	Safe       []grid.Edge // Moves that neither complete nor concede anything
	Unsafe     []grid.Edge // Moves that hand the opponent a free box
	All        []grid.Edge // Every legal move, in enumeration order
}

// EnumerateMoves returns every undrawn edge in a fixed order: horizontal
// edges row by row, then vertical edges row by row. Selection tie-breaks
// depend on this order staying stable.
func EnumerateMoves(b *grid.Board) []grid.Edge {
	var moves []grid.Edge
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size-1; col++ {
			e := grid.MustEdge(row, col, row, col+1)
			if !b.Drawn(e) {
				moves = append(moves, e)
			}
		}
	}
	for row := 0; row < b.Size-1; row++ {
		for col := 0; col < b.Size; col++ {
			e := grid.MustEdge(row, col, row+1, col)
			if !b.Drawn(e) {
				moves = append(moves, e)
			}
		}
	}
	return moves
}

// CountBoxSides counts how many of a box's four bounding edges are drawn.
// Out-of-range box positions count as zero.
func CountBoxSides(b *grid.Board, box grid.Box) int {
	if !box.InRange(b.Size) {
		return 0
	}
	count := 0
	for _, e := range box.Edges() {
		if b.Drawn(e) {
			count++
		}
	}
	return count
}

// CompletesSquare reports whether drawing the edge would raise any adjacent
// box from three sides to four.
func CompletesSquare(b *grid.Board, e grid.Edge) bool {
	after := b.With(e)
	for _, box := range e.Boxes(b.Size) {
		if CountBoxSides(after, box) == 4 {
			return true
		}
	}
	return false
}

// GivesAwaySquare reports whether drawing the edge would leave any adjacent
// box at exactly three sides, handing the opponent a free completion.
func GivesAwaySquare(b *grid.Board, e grid.Edge) bool {
	after := b.With(e)
	for _, box := range e.Boxes(b.Size) {
		if CountBoxSides(after, box) == 3 {
			return true
		}
	}
	return false
}

// IsStrategic reports whether drawing the edge develops a potential chain:
// it leaves at least one adjacent box at exactly two sides, and either some
// box next to that developing box sits at exactly one side, or the move
// creates two developing boxes at once. This is a heuristic proxy for chain
// setups, not a chain-length computation.
func IsStrategic(b *grid.Board, e grid.Edge) bool {
	after := b.With(e)

	var developing []grid.Box
	for _, box := range e.Boxes(b.Size) {
		if CountBoxSides(after, box) == 2 {
			developing = append(developing, box)
		}
	}
	if len(developing) == 0 {
		return false
	}

	for _, box := range developing {
		for _, adj := range box.Neighbors() {
			if !adj.InRange(b.Size) {
				continue
			}
			if CountBoxSides(after, adj) == 1 {
				return true
			}
		}
	}
	return len(developing) > 1
}

// Risk counts the adjacent boxes that would reach exactly three sides if the
// edge were drawn. Lower is better; unsafe moves always score at least one.
func Risk(b *grid.Board, e grid.Edge) int {
	after := b.With(e)
	atRisk := 0
	for _, box := range e.Boxes(b.Size) {
		if CountBoxSides(after, box) == 3 {
			atRisk++
		}
	}
	return atRisk
}

// Classify partitions the legal moves into tiers using a strict priority:
// completing beats unsafe beats strategic beats safe. Every move lands in
// exactly one tier.
func Classify(b *grid.Board) MoveTiers {
	tiers := MoveTiers{All: EnumerateMoves(b)}
	for _, e := range tiers.All {
		switch {
		case CompletesSquare(b, e):
			tiers.Completing = append(tiers.Completing, e)
		case GivesAwaySquare(b, e):
			tiers.Unsafe = append(tiers.Unsafe, e)
		case IsStrategic(b, e):
			tiers.Strategic = append(tiers.Strategic, e)
		default:
			tiers.Safe = append(tiers.Safe, e)
		}
	}
	return tiers
}

package grid

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Board is the canonical representation of a position: the set of drawn
// edges and the ownership of completed boxes.
type Board struct {
	Size    int            // Dots per side
	Lines   map[Edge]bool  // Drawn edges; an edge is present iff drawn
	Squares map[Box]string // Completed boxes, mapped to the owner's player ID
}

// NewBoard creates an empty board with the given number of dots per side.
// A size below 2 falls back to DefaultSize.
func NewBoard(size int) *Board {
	if size < 2 {
		size = DefaultSize
	}
	return &Board{
		Size:    size,
		Lines:   make(map[Edge]bool),
		Squares: make(map[Box]string),
	}
}

// BoxCount returns the total number of boxes on the board.
func (b *Board) BoxCount() int {
	n := b.Size - 1
	return n * n
}

// Progress returns the fraction of boxes completed, in [0, 1].
func (b *Board) Progress() float64 {
	return float64(len(b.Squares)) / float64(b.BoxCount())
}

// Drawn reports whether the edge has been drawn.
func (b *Board) Drawn(e Edge) bool {
	return b.Lines[e]
}

// With returns a copy of the board with one additional edge drawn. Square
// ownership is shared, not copied; callers must not mutate it on the copy.
func (b *Board) With(e Edge) *Board {
	lines := make(map[Edge]bool, len(b.Lines)+1)
	for k := range b.Lines {
		lines[k] = true
	}
	lines[e] = true
	return &Board{Size: b.Size, Lines: lines, Squares: b.Squares}
}

// StateKey returns a deterministic, order-independent encoding of the board:
// the sorted drawn-edge keys followed by the sorted box:owner pairs. Boards
// with identical lines and squares always produce identical keys regardless
// of insertion order.
func (b *Board) StateKey() string {
	lineKeys := make([]string, 0, len(b.Lines))
	for e := range b.Lines {
		lineKeys = append(lineKeys, e.Key())
	}
	sort.Strings(lineKeys)

	squarePairs := make([]string, 0, len(b.Squares))
	for box, owner := range b.Squares {
		squarePairs = append(squarePairs, box.Key()+":"+owner)
	}
	sort.Strings(squarePairs)

	var sb strings.Builder
	sb.WriteString("lines:")
	sb.WriteString(strings.Join(lineKeys, ","))
	sb.WriteString("|squares:")
	sb.WriteString(strings.Join(squarePairs, ";"))
	return sb.String()
}

// ParseStateSquares recovers the box ownership embedded in a state key.
// Unparseable pairs are skipped; a key with no squares section yields an
// empty map.
func ParseStateSquares(stateKey string) map[Box]string {
	squares := make(map[Box]string)
	_, part, ok := strings.Cut(stateKey, "|squares:")
	if !ok || part == "" {
		return squares
	}
	for _, pair := range strings.Split(part, ";") {
		key, owner, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		box, err := ParseBoxKey(key)
		if err != nil {
			continue
		}
		squares[box] = owner
	}
	return squares
}

// boardJSON is the wire format: objects keyed by canonical edge and box keys.
type boardJSON struct {
	Size    int               `json:"size,omitempty"`
	Lines   map[string]bool   `json:"lines"`
	Squares map[string]string `json:"squares"`
}

// MarshalJSON encodes the board in its wire format.
func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{
		Size:    b.Size,
		Lines:   make(map[string]bool, len(b.Lines)),
		Squares: make(map[string]string, len(b.Squares)),
	}
	for e := range b.Lines {
		out.Lines[e.Key()] = true
	}
	for box, owner := range b.Squares {
		out.Squares[box.Key()] = owner
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire format, normalizing edge keys and rejecting
// malformed ones. Lines mapped to false are treated as undrawn and dropped.
func (b *Board) UnmarshalJSON(data []byte) error {
	var in boardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	size := in.Size
	if size < 2 {
		size = DefaultSize
	}
	b.Size = size
	b.Lines = make(map[Edge]bool, len(in.Lines))
	b.Squares = make(map[Box]string, len(in.Squares))

	for key, drawn := range in.Lines {
		if !drawn {
			continue
		}
		e, err := ParseEdgeKey(key)
		if err != nil {
			return err
		}
		b.Lines[e] = true
	}
	for key, owner := range in.Squares {
		box, err := ParseBoxKey(key)
		if err != nil {
			return err
		}
		if !box.InRange(size) {
			return fmt.Errorf("%w: box %q outside %dx%d grid", ErrBadKey, key, size-1, size-1)
		}
		b.Squares[box] = owner
	}
	return nil
}

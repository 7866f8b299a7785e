// Package grid implements the board model and state encoding for a
// dots-and-boxes grid.
//
// A board lives on Size x Size dots. An edge joins two adjacent dots and is
// the unit of a move; a box is a unit cell bounded by four edges and is owned
// by whoever drew its fourth edge. Edge keys always list the lexicographically
// smaller endpoint first, and every constructor in this package normalizes
// endpoint order so that producers and consumers can never disagree on a key.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSize is the number of dots per side, yielding a 4x4 box grid.
const DefaultSize = 5

// ErrBadKey is returned when an edge or box key does not match the canonical
// "r1,c1-r2,c2" / "r,c" format.
var ErrBadKey = errors.New("grid: malformed key")

// Point is a dot on the grid, addressed by row and column.
type Point struct {
	Row int
	Col int
}

// Less orders points lexicographically, row first.
func (p Point) Less(q Point) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Col < q.Col
}

func (p Point) String() string {
	return strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
}

// Edge is a drawn or drawable line between two adjacent dots. The zero value
// is not a valid edge; use NewEdge.
type Edge struct {
	A Point // Smaller endpoint
	B Point // Larger endpoint
}

// NewEdge builds an edge from two adjacent dots, normalizing endpoint order
// so the smaller point always comes first.
func NewEdge(a, b Point) (Edge, error) {
	if b.Less(a) {
		a, b = b, a
	}
	dr := b.Row - a.Row
	dc := b.Col - a.Col
	if !(dr == 0 && dc == 1) && !(dr == 1 && dc == 0) {
		return Edge{}, fmt.Errorf("%w: points %v and %v are not adjacent", ErrBadKey, a, b)
	}
	return Edge{A: a, B: b}, nil
}

// MustEdge is NewEdge for statically known coordinates; it panics on
// non-adjacent points.
func MustEdge(r1, c1, r2, c2 int) Edge {
	e, err := NewEdge(Point{r1, c1}, Point{r2, c2})
	if err != nil {
		panic(err)
	}
	return e
}

// Horizontal reports whether the edge runs along a row.
func (e Edge) Horizontal() bool {
	return e.A.Row == e.B.Row
}

// Key returns the canonical string form "r1,c1-r2,c2".
func (e Edge) Key() string {
	return e.A.String() + "-" + e.B.String()
}

func (e Edge) String() string {
	return e.Key()
}

// Boxes returns the boxes bordering the edge on a grid with the given number
// of dots per side. An edge borders at most two boxes; edges on the outer rim
// border one.
func (e Edge) Boxes(size int) []Box {
	boxes := make([]Box, 0, 2)
	if e.Horizontal() {
		if e.A.Row > 0 {
			boxes = append(boxes, Box{e.A.Row - 1, e.A.Col})
		}
		if e.A.Row < size-1 {
			boxes = append(boxes, Box{e.A.Row, e.A.Col})
		}
	} else {
		if e.A.Col > 0 {
			boxes = append(boxes, Box{e.A.Row, e.A.Col - 1})
		}
		if e.A.Col < size-1 {
			boxes = append(boxes, Box{e.A.Row, e.A.Col})
		}
	}
	return boxes
}

// ParseEdgeKey parses a canonical edge key. Keys with swapped endpoints are
// accepted and normalized; anything else fails with ErrBadKey.
func ParseEdgeKey(key string) (Edge, error) {
	left, right, ok := strings.Cut(key, "-")
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	a, err := parsePoint(left)
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	b, err := parsePoint(right)
	if err != nil {
		return Edge{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return NewEdge(a, b)
}

func parsePoint(s string) (Point, error) {
	rs, cs, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, ErrBadKey
	}
	row, err := strconv.Atoi(rs)
	if err != nil || row < 0 {
		return Point{}, ErrBadKey
	}
	col, err := strconv.Atoi(cs)
	if err != nil || col < 0 {
		return Point{}, ErrBadKey
	}
	return Point{Row: row, Col: col}, nil
}

// Box is a unit cell, addressed by its top-left dot.
type Box struct {
	Row int
	Col int
}

// Key returns the canonical string form "r,c".
func (b Box) Key() string {
	return strconv.Itoa(b.Row) + "," + strconv.Itoa(b.Col)
}

func (b Box) String() string {
	return b.Key()
}

// InRange reports whether the box exists on a grid with the given number of
// dots per side.
func (b Box) InRange(size int) bool {
	return b.Row >= 0 && b.Row < size-1 && b.Col >= 0 && b.Col < size-1
}

// Edges returns the four bounding edges: top, right, bottom, left.
func (b Box) Edges() [4]Edge {
	return [4]Edge{
		{Point{b.Row, b.Col}, Point{b.Row, b.Col + 1}},         // top
		{Point{b.Row, b.Col + 1}, Point{b.Row + 1, b.Col + 1}}, // right
		{Point{b.Row + 1, b.Col}, Point{b.Row + 1, b.Col + 1}}, // bottom
		{Point{b.Row, b.Col}, Point{b.Row + 1, b.Col}},         // left
	}
}

// Neighbors returns the four orthogonally adjacent box positions, including
// ones that may be off the grid.
func (b Box) Neighbors() [4]Box {
	return [4]Box{
		{b.Row - 1, b.Col},
		{b.Row + 1, b.Col},
		{b.Row, b.Col - 1},
		{b.Row, b.Col + 1},
	}
}

// ParseBoxKey parses a canonical box key "r,c".
func ParseBoxKey(key string) (Box, error) {
	p, err := parsePoint(key)
	if err != nil {
		return Box{}, fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return Box{Row: p.Row, Col: p.Col}, nil
}

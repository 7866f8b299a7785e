package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEdgeNormalizesEndpointOrder(t *testing.T) {
	forward, err := NewEdge(Point{0, 0}, Point{0, 1})
	require.NoError(t, err)
	backward, err := NewEdge(Point{0, 1}, Point{0, 0})
	require.NoError(t, err)

	require.Equal(t, forward, backward, "endpoint order must not matter")
	require.Equal(t, "0,0-0,1", forward.Key())
}

func TestNewEdgeRejectsNonAdjacentPoints(t *testing.T) {
	cases := [][2]Point{
		{{0, 0}, {0, 2}}, // skips a dot
		{{0, 0}, {1, 1}}, // diagonal
		{{0, 0}, {0, 0}}, // same dot
		{{2, 3}, {0, 0}}, // far apart
	}
	for _, c := range cases {
		_, err := NewEdge(c[0], c[1])
		require.ErrorIs(t, err, ErrBadKey, "points %v and %v", c[0], c[1])
	}
}

func TestParseEdgeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "horizontal", key: "0,0-0,1", want: "0,0-0,1"},
		{name: "vertical", key: "1,2-2,2", want: "1,2-2,2"},
		{name: "swapped endpoints normalized", key: "0,1-0,0", want: "0,0-0,1"},
		{name: "missing separator", key: "0,0", wantErr: true},
		{name: "diagonal", key: "0,0-1,1", wantErr: true},
		{name: "garbage", key: "abc", wantErr: true},
		{name: "negative coordinate", key: "-1,0-0,0", wantErr: true},
		{name: "trailing junk", key: "0,0-0,1x", wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := ParseEdgeKey(tc.key)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrBadKey)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, e.Key())
		})
	}
}

func TestEdgeBoxes(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want []Box
	}{
		{name: "top rim horizontal", edge: MustEdge(0, 0, 0, 1), want: []Box{{0, 0}}},
		{name: "bottom rim horizontal", edge: MustEdge(4, 2, 4, 3), want: []Box{{3, 2}}},
		{name: "interior horizontal", edge: MustEdge(2, 1, 2, 2), want: []Box{{1, 1}, {2, 1}}},
		{name: "left rim vertical", edge: MustEdge(1, 0, 2, 0), want: []Box{{1, 0}}},
		{name: "right rim vertical", edge: MustEdge(1, 4, 2, 4), want: []Box{{1, 3}}},
		{name: "interior vertical", edge: MustEdge(1, 2, 2, 2), want: []Box{{1, 1}, {1, 2}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.edge.Boxes(DefaultSize))
		})
	}
}

func TestBoxEdges(t *testing.T) {
	edges := Box{1, 2}.Edges()
	keys := make([]string, 0, 4)
	for _, e := range edges {
		keys = append(keys, e.Key())
	}
	require.ElementsMatch(t,
		[]string{"1,2-1,3", "1,3-2,3", "2,2-2,3", "1,2-2,2"},
		keys)
}

func TestBoxInRange(t *testing.T) {
	require.True(t, Box{0, 0}.InRange(DefaultSize))
	require.True(t, Box{3, 3}.InRange(DefaultSize))
	require.False(t, Box{4, 0}.InRange(DefaultSize))
	require.False(t, Box{0, 4}.InRange(DefaultSize))
	require.False(t, Box{-1, 0}.InRange(DefaultSize))
}

func TestParseBoxKey(t *testing.T) {
	b, err := ParseBoxKey("2,3")
	require.NoError(t, err)
	require.Equal(t, Box{2, 3}, b)

	for _, bad := range []string{"", "2", "2,", "a,b", "2,3,4"} {
		_, err := ParseBoxKey(bad)
		require.ErrorIs(t, err, ErrBadKey, "key %q", bad)
	}
}

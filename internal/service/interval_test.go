package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name string
		a, b interval
		want bool
	}{
		{"disjoint", interval{start: 60, end: 120}, interval{start: 120, end: 180}, false},
		{"touching boundaries do not overlap", interval{start: 0, end: 60}, interval{start: 60, end: 90}, false},
		{"partial overlap", interval{start: 60, end: 130}, interval{start: 120, end: 180}, true},
		{"containment", interval{start: 60, end: 180}, interval{start: 90, end: 120}, true},
		{"identical", interval{start: 60, end: 120}, interval{start: 60, end: 120}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, overlaps(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestFindConflict(t *testing.T) {
	occupied := []interval{
		{start: 480, end: 570, bookingID: 1},
		{start: 600, end: 690, bookingID: 2},
	}

	hit, found := findConflict(occupied, interval{start: 540, end: 630}, 0)
	assert.True(t, found)
	assert.Equal(t, int64(1), hit.bookingID)

	_, found = findConflict(occupied, interval{start: 570, end: 600}, 0)
	assert.False(t, found, "gap between bookings is free")

	_, found = findConflict(occupied, interval{start: 480, end: 570}, 1)
	assert.False(t, found, "excluded booking must not conflict with itself")
}

func TestFirstGap(t *testing.T) {
	t.Run("empty day places at window start", func(t *testing.T) {
		start, ok := firstGap(nil, 480, 600, 90)
		assert.True(t, ok)
		assert.Equal(t, 480, start)
	})

	t.Run("gap between bookings", func(t *testing.T) {
		occupied := []interval{{start: 480, end: 570}, {start: 660, end: 750}}
		start, ok := firstGap(occupied, 480, 780, 90)
		assert.True(t, ok)
		assert.Equal(t, 570, start)
	})

	t.Run("tail gap", func(t *testing.T) {
		occupied := []interval{{start: 480, end: 570}}
		start, ok := firstGap(occupied, 480, 700, 90)
		assert.True(t, ok)
		assert.Equal(t, 570, start)
	})

	t.Run("no gap fits", func(t *testing.T) {
		occupied := []interval{{start: 480, end: 570}}
		_, ok := firstGap(occupied, 480, 600, 90)
		assert.False(t, ok)
	})

	t.Run("overlapping occupied entries advance past the furthest end", func(t *testing.T) {
		occupied := []interval{{start: 480, end: 600}, {start: 500, end: 550}}
		start, ok := firstGap(occupied, 480, 720, 90)
		assert.True(t, ok)
		assert.Equal(t, 600, start)
	})
}

func TestReservationGrid(t *testing.T) {
	grid := newReservationGrid()
	grid.add(1, 2, interval{start: 600, end: 690})
	grid.add(1, 2, interval{start: 480, end: 570})

	list := grid.intervals(1, 2)
	assert.Len(t, list, 2)
	assert.Equal(t, 480, list[0].start, "list stays sorted by start")

	assert.Empty(t, grid.intervals(1, 3), "other days are independent")
	assert.Empty(t, grid.intervals(2, 2), "other rooms are independent")
}

func TestReservationGridAddClamped(t *testing.T) {
	grid := newReservationGrid()
	grid.addClamped(1, 0, interval{start: 400, end: 500}, 480, 600)
	grid.addClamped(1, 0, interval{start: 300, end: 400}, 480, 600)

	list := grid.intervals(1, 0)
	assert.Len(t, list, 1, "intervals outside the window are dropped")
	assert.Equal(t, 480, list[0].start)
	assert.Equal(t, 500, list[0].end)
}

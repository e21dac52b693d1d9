package service

import "sort"

// interval is a half-open [start, end) time range in minutes since midnight.
// bookingID is zero for tentative reservations that only exist in memory.
type interval struct {
	start     int
	end       int
	bookingID int64
}

// overlaps is the half-open intersection test: two intervals collide iff
// each starts before the other ends.
func overlaps(a, b interval) bool {
	return a.start < b.end && b.start < a.end
}

// findConflict scans a start-sorted interval list for the first entry
// overlapping the candidate. excludeID skips one booking so an update does
// not conflict with its own prior placement; zero disables the exclusion.
func findConflict(sorted []interval, candidate interval, excludeID int64) (interval, bool) {
	for _, itv := range sorted {
		if itv.start >= candidate.end {
			break
		}
		if excludeID != 0 && itv.bookingID == excludeID {
			continue
		}
		if overlaps(itv, candidate) {
			return itv, true
		}
	}
	return interval{}, false
}

// firstGap returns the start of the first gap of at least slotMinutes within
// [winStart, winEnd) given a start-sorted occupied list, or false when no
// gap fits.
func firstGap(sorted []interval, winStart, winEnd, slotMinutes int) (int, bool) {
	prev := winStart
	for _, itv := range sorted {
		if itv.start-prev >= slotMinutes {
			return prev, true
		}
		if itv.end > prev {
			prev = itv.end
		}
	}
	if winEnd-prev >= slotMinutes {
		return prev, true
	}
	return 0, false
}

type roomDayKey struct {
	roomID int64
	day    int
}

// reservationGrid is the per-request tentative reservation set: a map from
// (room, day) to a start-sorted occupied interval list. It is rebuilt for
// every suggestion request and discarded with the response.
type reservationGrid struct {
	slots map[roomDayKey][]interval
}

func newReservationGrid() *reservationGrid {
	return &reservationGrid{slots: make(map[roomDayKey][]interval)}
}

// add inserts the interval keeping the room/day list sorted by start.
func (g *reservationGrid) add(roomID int64, day int, itv interval) {
	key := roomDayKey{roomID: roomID, day: day}
	list := append(g.slots[key], itv)
	sort.Slice(list, func(i, j int) bool { return list[i].start < list[j].start })
	g.slots[key] = list
}

// addClamped truncates the interval to [winStart, winEnd) before inserting;
// intervals fully outside the window are dropped.
func (g *reservationGrid) addClamped(roomID int64, day int, itv interval, winStart, winEnd int) {
	if itv.start < winStart {
		itv.start = winStart
	}
	if itv.end > winEnd {
		itv.end = winEnd
	}
	if itv.start >= itv.end {
		return
	}
	g.add(roomID, day, itv)
}

// intervals returns the occupied list for a room/day, sorted by start.
func (g *reservationGrid) intervals(roomID int64, day int) []interval {
	return g.slots[roomDayKey{roomID: roomID, day: day}]
}

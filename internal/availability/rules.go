package availability

import (
	"sort"
	"time"

	"rentals/pkg/model"
)

// checkHouse applies exclusive occupancy. Each confirmed stay blocks
// [check_in, check_out + buffer); the buffer trails the existing stay only.
func checkHouse(house *model.Resource, start, end time.Time, reservations []*model.Reservation) Verdict {
	for _, r := range reservations {
		if r == nil || !r.Counts() {
			continue
		}
		bufferedOut := r.CheckOut.Add(house.CleaningBuffer)
		if r.CheckIn.Before(end) && bufferedOut.After(start) {
			return Verdict{Reason: ReasonBufferOverlap, Conflict: r}
		}
	}
	return Verdict{Available: true, Reason: ReasonAvailable}
}

// dayStarts lists the start instant of every calendar day from the day of
// start (in start's location) up to but excluding end.
func dayStarts(start, end time.Time) []time.Time {
	y, m, d := start.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, start.Location())

	var days []time.Time
	for day.Before(end) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// covers reports whether r occupies the day starting at d.
func covers(r *model.Reservation, d time.Time) bool {
	return !r.CheckIn.After(d) && d.Before(r.CheckOut)
}

func scanCenter(center *model.Resource, start, end time.Time, reservations []*model.Reservation) Verdict {
	for _, d := range dayStarts(start, end) {
		occupancy := 0
		for _, r := range reservations {
			if r == nil || !r.Counts() {
				continue
			}
			if covers(r, d) {
				occupancy++
			}
		}
		if occupancy >= center.TotalInventory {
			return Verdict{Reason: ReasonInventoryFull, FullDay: d, Occupancy: occupancy}
		}
	}
	return Verdict{Available: true, Reason: ReasonAvailable}
}

func sweepCenter(center *model.Resource, start, end time.Time, reservations []*model.Reservation) Verdict {
	days := dayStarts(start, end)
	diff := make([]int, len(days)+1)

	for _, r := range reservations {
		if r == nil || !r.Counts() {
			continue
		}
		// Covered days are those with CheckIn <= d < CheckOut, i.e. [lo, hi).
		lo := sort.Search(len(days), func(i int) bool { return !days[i].Before(r.CheckIn) })
		hi := sort.Search(len(days), func(i int) bool { return !days[i].Before(r.CheckOut) })
		if lo < hi {
			diff[lo]++
			diff[hi]--
		}
	}

	occupancy := 0
	for i, d := range days {
		occupancy += diff[i]
		if occupancy >= center.TotalInventory {
			return Verdict{Reason: ReasonInventoryFull, FullDay: d, Occupancy: occupancy}
		}
	}
	return Verdict{Available: true, Reason: ReasonAvailable}
}

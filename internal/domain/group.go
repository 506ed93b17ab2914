package domain

import (
	"slices"
)

// Default paging parameters for significant events.
const (
	DefaultThreshold = 5.0
	DefaultPageSize  = 4
)

// Group is one page of significant events, most recent first.
type Group []Event

// GroupSignificant filters events at or above threshold, orders them most
// recent first and splits them into pages of pageSize. The last page may be
// shorter. A non-positive pageSize falls back to DefaultPageSize.
//
// The input slice is never modified and equal inputs always produce equal
// groupings: ties on time keep their input order.
func GroupSignificant(events []Event, threshold float64, pageSize int) []Group {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	significant := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Magnitude >= threshold {
			significant = append(significant, e)
		}
	}
	if len(significant) == 0 {
		return nil
	}
	sortByRecency(significant)

	groups := make([]Group, 0, (len(significant)+pageSize-1)/pageSize)
	for chunk := range slices.Chunk(significant, pageSize) {
		groups = append(groups, Group(slices.Clip(chunk)))
	}
	return groups
}

// SortByRecency returns a copy of events ordered most recent first.
func SortByRecency(events []Event) []Event {
	out := slices.Clone(events)
	sortByRecency(out)
	return out
}

// SortByMagnitude returns a copy of events ordered largest first, so large
// markers are listed before the small ones drawn over them.
func SortByMagnitude(events []Event) []Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b Event) int {
		switch {
		case a.Magnitude > b.Magnitude:
			return -1
		case a.Magnitude < b.Magnitude:
			return 1
		default:
			return 0
		}
	})
	return out
}

func sortByRecency(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return b.Time.Compare(a.Time)
	})
}

// GroupSizes reports the length of every group, in order.
func GroupSizes(groups []Group) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g)
	}
	return sizes
}

// Package timeslot holds the half-open interval arithmetic every scheduling
// decision is built on. An interval [start, end) contains start but not end,
// so back-to-back slots never collide.
package timeslot

import "time"

type OverlapKind int

const (
	// Adjacent means the intervals do not intersect, including when they touch.
	Adjacent OverlapKind = iota
	// CompleteOverlap means A fully contains B.
	CompleteOverlap
	// ContainedWithin means B fully contains A.
	ContainedWithin
	// PartialOverlap means they intersect but neither contains the other.
	PartialOverlap
)

func (k OverlapKind) String() string {
	switch k {
	case CompleteOverlap:
		return "complete_overlap"
	case ContainedWithin:
		return "contained_within"
	case PartialOverlap:
		return "partial_overlap"
	default:
		return "adjacent"
	}
}

func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ClassifyOverlap checks containment of B in A first, so identical intervals
// report CompleteOverlap.
func ClassifyOverlap(aStart, aEnd, bStart, bEnd time.Time) OverlapKind {
	if !Overlaps(aStart, aEnd, bStart, bEnd) {
		return Adjacent
	}
	if !aStart.After(bStart) && !aEnd.Before(bEnd) {
		return CompleteOverlap
	}
	if !bStart.After(aStart) && !bEnd.Before(aEnd) {
		return ContainedWithin
	}
	return PartialOverlap
}

// OverlapMinutes returns the length of the intersection in whole minutes.
func OverlapMinutes(aStart, aEnd, bStart, bEnd time.Time) int {
	return int(OverlapDuration(aStart, aEnd, bStart, bEnd) / time.Minute)
}

func OverlapDuration(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if d := hi.Sub(lo); d > 0 {
		return d
	}
	return 0
}

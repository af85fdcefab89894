package service

import (
	"fmt"
	"strconv"
	"strings"
)

type ResourceKind string

const (
	ResourceInstructor ResourceKind = "instructor"
	ResourceRoom       ResourceKind = "room"
)

// clockToMinutes parses "15:04" into minutes since midnight.
func clockToMinutes(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	return h*60 + m, nil
}

// overlaps reports half-open interval intersection: [aStart, aEnd) and
// [bStart, bEnd) conflict only if they truly share minutes, so a class
// ending 10:00 does not conflict with one starting 10:00.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

package domain

import (
	"sort"
	"time"
)

// Event is one immutable timeline entry.
type Event struct {
	Status    Status
	Note      string
	Timestamp time.Time
	UpdatedBy *Actor
}

func (e Event) clone() Event {
	if e.UpdatedBy != nil {
		by := *e.UpdatedBy
		e.UpdatedBy = &by
	}
	return e
}

// TimelineView selects how a timeline is projected for reading.
type TimelineView string

const (
	// TimelineFull returns every event, newest first.
	TimelineFull TimelineView = "full"
	// TimelineDisplay keeps only the newest event per status.
	TimelineDisplay TimelineView = "display"
)

// ParseTimelineView defaults empty input to the full view.
func ParseTimelineView(raw string) (TimelineView, error) {
	switch TimelineView(raw) {
	case "", TimelineFull:
		return TimelineFull, nil
	case TimelineDisplay:
		return TimelineDisplay, nil
	default:
		return "", ErrInvalidTimelineView
	}
}

// Project applies the view to the events. The input slice is left untouched.
func (v TimelineView) Project(events []Event) []Event {
	if v == TimelineDisplay {
		return DisplayTimeline(events)
	}
	return FullTimeline(events)
}

// FullTimeline returns a copy of every event sorted newest first.
// Events sharing a timestamp keep their append order reversed.
func FullTimeline(events []Event) []Event {
	out := make([]Event, len(events))
	for i := range events {
		out[len(events)-1-i] = events[i].clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// DisplayTimeline sorts newest first and keeps only the first event of each status.
// Later repeats of a status are dropped from the view, never from storage.
func DisplayTimeline(events []Event) []Event {
	sorted := FullTimeline(events)
	seen := make(map[Status]struct{}, len(sorted))
	out := make([]Event, 0, len(sorted))
	for _, event := range sorted {
		if _, dup := seen[event.Status]; dup {
			continue
		}
		seen[event.Status] = struct{}{}
		out = append(out, event)
	}
	return out
}

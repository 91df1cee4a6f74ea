package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayTimeline_KeepsNewestPerStatus(t *testing.T) {
	events := []Event{
		{Status: StatusAwaitingApproval, Note: "placed", Timestamp: at(0)},
		{Status: StatusConfirmed, Note: "approved", Timestamp: at(1)},
		{Status: StatusProcessing, Note: "packing", Timestamp: at(2)},
		{Status: StatusProcessing, Note: "packing corrected", Timestamp: at(3)},
		{Status: StatusShipped, Note: "shipped", Timestamp: at(4)},
	}

	view := DisplayTimeline(events)
	require.Len(t, view, 4)
	require.Equal(t, StatusShipped, view[0].Status)
	require.Equal(t, "packing corrected", view[1].Note)
	require.Equal(t, StatusConfirmed, view[2].Status)
	require.Equal(t, StatusAwaitingApproval, view[3].Status)
	require.Len(t, events, 5)
}

func TestFullTimeline_KeepsEveryEvent(t *testing.T) {
	events := []Event{
		{Status: StatusProcessing, Note: "second", Timestamp: at(3)},
		{Status: StatusAwaitingApproval, Note: "placed", Timestamp: at(0)},
		{Status: StatusProcessing, Note: "first", Timestamp: at(2)},
	}

	view := FullTimeline(events)
	require.Len(t, view, 3)
	require.Equal(t, []string{"second", "first", "placed"}, []string{view[0].Note, view[1].Note, view[2].Note})
	require.Equal(t, "second", events[0].Note)
}

func TestFullTimeline_SameTimestampNewestAppendFirst(t *testing.T) {
	events := []Event{
		{Status: StatusConfirmed, Note: "a", Timestamp: at(1)},
		{Status: StatusProcessing, Note: "b", Timestamp: at(1)},
	}
	view := FullTimeline(events)
	require.Equal(t, "b", view[0].Note)
	require.Equal(t, "a", view[1].Note)
}

func TestTimelineView_Project(t *testing.T) {
	order := orderIn(t, StatusShipped)
	order.Timeline = append(order.Timeline, Event{Status: StatusShipped, Note: "tracking updated", Timestamp: at(10)})

	full, err := ParseTimelineView("")
	require.NoError(t, err)
	require.Len(t, full.Project(order.Timeline), 5)

	display, err := ParseTimelineView("display")
	require.NoError(t, err)
	projected := display.Project(order.Timeline)
	require.Len(t, projected, 4)
	require.Equal(t, "tracking updated", projected[0].Note)

	_, err = ParseTimelineView("compact")
	require.ErrorIs(t, err, ErrInvalidTimelineView)
}

func TestTimeline_EmptyInput(t *testing.T) {
	require.Empty(t, DisplayTimeline(nil))
	require.Empty(t, FullTimeline(nil))
}

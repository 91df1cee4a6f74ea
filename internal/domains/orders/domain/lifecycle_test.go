package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvanceStatus_StrictForwardOrder(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		err  error
	}{
		{name: "confirmed to processing", from: StatusConfirmed, to: StatusProcessing},
		{name: "processing to shipped", from: StatusProcessing, to: StatusShipped},
		{name: "shipped to delivered", from: StatusShipped, to: StatusDelivered},
		{name: "reapply confirmed", from: StatusConfirmed, to: StatusConfirmed, err: ErrInvalidTransition},
		{name: "skip to shipped", from: StatusConfirmed, to: StatusShipped, err: ErrInvalidTransition},
		{name: "skip to delivered", from: StatusConfirmed, to: StatusDelivered, err: ErrInvalidTransition},
		{name: "revisit processing", from: StatusShipped, to: StatusProcessing, err: ErrInvalidTransition},
		{name: "cancel through validator", from: StatusConfirmed, to: StatusCancelled, err: ErrInvalidTransition},
		{name: "reject through validator", from: StatusProcessing, to: StatusRejected, err: ErrInvalidTransition},
		{name: "into terminal delivered", from: StatusDelivered, to: StatusDelivered, err: ErrAlreadyTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := orderIn(t, tt.from)
			next, err := AdvanceStatus(order, testAdmin, tt.to, "", at(20))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Nil(t, next)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.to, next.Status)
			require.Equal(t, order.Version+1, next.Version)
			require.Len(t, next.Timeline, len(order.Timeline)+1)
			latest, _ := next.LatestEvent()
			require.Equal(t, tt.to, latest.Status)
			require.Equal(t, at(20), latest.Timestamp)
			require.Equal(t, testAdmin, *latest.UpdatedBy)
			require.Equal(t, "Order status updated to "+string(tt.to), latest.Note)
		})
	}
}

func TestAdvanceStatus_DoesNotMutateInput(t *testing.T) {
	order := orderIn(t, StatusConfirmed)
	before := order.Clone()

	_, err := AdvanceStatus(order, testAdmin, StatusProcessing, "packed", at(5))
	require.NoError(t, err)
	require.Equal(t, before, order)
}

func TestAdvanceStatus_Authorization(t *testing.T) {
	confirmed := orderIn(t, StatusConfirmed)

	_, err := AdvanceStatus(confirmed, testOwner, StatusProcessing, "", at(5))
	require.ErrorIs(t, err, ErrForbidden)

	_, err = AdvanceStatus(confirmed, Actor{ID: "x", Role: "courier"}, StatusProcessing, "", at(5))
	require.ErrorIs(t, err, ErrForbidden)

	pending := newTestOrder(t)
	_, err = AdvanceStatus(pending, testAdmin, StatusConfirmed, "", at(5))
	require.ErrorIs(t, err, ErrForbidden)
	_, err = AdvanceStatus(pending, testAdmin, StatusProcessing, "", at(5))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAdvanceStatus_TerminalBeforeAdminCheck(t *testing.T) {
	delivered := orderIn(t, StatusDelivered)

	_, err := AdvanceStatus(delivered, testOwner, StatusDelivered, "", at(30))
	require.ErrorIs(t, err, ErrAlreadyTerminal)

	_, err = AdvanceStatus(delivered, Actor{ID: "x", Role: "courier"}, StatusDelivered, "", at(30))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAdvanceStatus_RejectsUnknownStatus(t *testing.T) {
	_, err := AdvanceStatus(orderIn(t, StatusConfirmed), testAdmin, Status("teleported"), "", at(5))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdvanceStatus_KeepsNote(t *testing.T) {
	next, err := AdvanceStatus(orderIn(t, StatusProcessing), testAdmin, StatusShipped, "  AWB 12345 ", at(9))
	require.NoError(t, err)
	latest, _ := next.LatestEvent()
	require.Equal(t, "AWB 12345", latest.Note)
}

func TestAvailableTransitions(t *testing.T) {
	pending := newTestOrder(t)
	require.Equal(t, []Status{StatusConfirmed, StatusCancelled, StatusRejected}, AvailableTransitions(pending, testAdmin))
	require.Equal(t, []Status{StatusCancelled}, AvailableTransitions(pending, testOwner))
	require.Empty(t, AvailableTransitions(pending, Actor{ID: "cust-2", Role: RoleCustomer}))

	confirmed := orderIn(t, StatusConfirmed)
	require.Equal(t, []Status{StatusProcessing, StatusCancelled}, AvailableTransitions(confirmed, testAdmin))

	require.Empty(t, AvailableTransitions(orderIn(t, StatusDelivered), testAdmin))
}

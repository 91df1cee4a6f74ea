package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	testAdmin = Actor{ID: "admin-1", Role: RoleAdmin}
	testOwner = Actor{ID: "cust-1", Role: RoleCustomer}
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("ord-1", "ORD-20240612-000001", testOwner.ID, decimal.RequireFromString("49.99"), "inr", PaymentPending, testNow)
	require.NoError(t, err)
	return order
}

func at(minutes int) time.Time {
	return testNow.Add(time.Duration(minutes) * time.Minute)
}

// orderIn walks a fresh order through the lifecycle until it reaches status.
func orderIn(t *testing.T, status Status) *Order {
	t.Helper()
	order := newTestOrder(t)
	var err error
	switch status {
	case StatusAwaitingApproval:
		return order
	case StatusRejected:
		order, err = Reject(order, testAdmin, "out of stock", at(1))
		require.NoError(t, err)
		return order
	case StatusCancelled:
		order, err = Cancel(order, testOwner, "changed mind", at(1))
		require.NoError(t, err)
		return order
	}
	order, err = Approve(order, testAdmin, "", at(1))
	require.NoError(t, err)
	for i, next := range []Status{StatusProcessing, StatusShipped, StatusDelivered} {
		if order.Status == status {
			break
		}
		order, err = AdvanceStatus(order, testAdmin, next, "", at(2+i))
		require.NoError(t, err)
	}
	require.Equal(t, status, order.Status)
	return order
}

func TestNewOrder_StartsAwaitingApproval(t *testing.T) {
	order := newTestOrder(t)

	require.Equal(t, StatusAwaitingApproval, order.Status)
	require.Equal(t, ApprovalPending, order.Approval().Status)
	require.Equal(t, "INR", order.Currency)
	require.Equal(t, int64(1), order.Version)
	require.Len(t, order.Timeline, 1)
	require.Equal(t, StatusAwaitingApproval, order.Timeline[0].Status)
	require.Equal(t, testOwner.ID, order.Timeline[0].UpdatedBy.ID)
}

func TestNewOrder_RejectsInvalidInput(t *testing.T) {
	_, err := NewOrder("ord-1", "ORD-1", "cust-1", decimal.NewFromInt(-1), "INR", PaymentPending, testNow)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewOrder("", "ORD-1", "cust-1", decimal.Zero, "INR", PaymentPending, testNow)
	require.ErrorIs(t, err, ErrMissingID)

	_, err = NewOrder("ord-1", " ", "cust-1", decimal.Zero, "INR", PaymentPending, testNow)
	require.ErrorIs(t, err, ErrMissingOrderNumber)

	_, err = NewOrder("ord-1", "ORD-1", "", decimal.Zero, "INR", PaymentPending, testNow)
	require.ErrorIs(t, err, ErrMissingCustomer)
}

func TestApproval_PendingIffAwaitingApproval(t *testing.T) {
	for _, status := range Statuses {
		order := orderIn(t, status)
		pending := order.Approval().Status == ApprovalPending
		require.Equal(t, status == StatusAwaitingApproval, pending, "status %s", status)
		require.NoError(t, order.Validate())
	}
}

func TestApproval_DerivedStates(t *testing.T) {
	require.Equal(t, ApprovalApproved, orderIn(t, StatusShipped).Approval().Status)
	require.Equal(t, ApprovalRejected, orderIn(t, StatusRejected).Approval().Status)
	require.Equal(t, ApprovalWithdrawn, orderIn(t, StatusCancelled).Approval().Status)

	order := orderIn(t, StatusConfirmed)
	cancelled, err := Cancel(order, testOwner, "found it cheaper", at(5))
	require.NoError(t, err)
	approval := cancelled.Approval()
	require.Equal(t, ApprovalApproved, approval.Status)
	require.Equal(t, testAdmin.ID, approval.DecidedBy.ID)
	require.Equal(t, at(1), *approval.DecidedAt)
}

func TestValidate_DetectsInconsistentState(t *testing.T) {
	order := newTestOrder(t)
	order.Status = StatusProcessing
	require.ErrorIs(t, order.Validate(), ErrInconsistentState)

	order = newTestOrder(t)
	order.Decision = &Decision{DecidedBy: testAdmin, DecidedAt: testNow}
	require.ErrorIs(t, order.Validate(), ErrInconsistentState)

	order = newTestOrder(t)
	order.Status = StatusRejected
	order.Decision = &Decision{Remarks: "  ", DecidedBy: testAdmin}
	require.ErrorIs(t, order.Validate(), ErrInconsistentState)
}

func TestClone_DoesNotShareMemory(t *testing.T) {
	order := orderIn(t, StatusConfirmed)
	clone := order.Clone()

	clone.Timeline[0].Note = "changed"
	clone.Timeline[0].UpdatedBy.ID = "someone"
	clone.Decision.Remarks = "changed"

	require.Equal(t, "Order placed", order.Timeline[0].Note)
	require.Equal(t, testOwner.ID, order.Timeline[0].UpdatedBy.ID)
	require.Empty(t, order.Decision.Remarks)
}

func TestTerminalStatuses_RejectEveryTransition(t *testing.T) {
	for _, status := range []Status{StatusDelivered, StatusCancelled, StatusRejected} {
		order := orderIn(t, status)
		for _, to := range Statuses {
			_, err := AdvanceStatus(order, testAdmin, to, "", at(10))
			require.Error(t, err, "advance %s -> %s", status, to)
		}
		_, err := Approve(order, testAdmin, "", at(10))
		require.ErrorIs(t, err, ErrNotPending)
		_, err = Reject(order, testAdmin, "late", at(10))
		require.ErrorIs(t, err, ErrNotPending)
		_, err = Cancel(order, testOwner, "late", at(10))
		require.ErrorIs(t, err, ErrNotCancellable)
		_, err = Cancel(order, testAdmin, "late", at(10))
		require.ErrorIs(t, err, ErrNotCancellable)
	}
}

func TestScenario_ApproveThenAdvance(t *testing.T) {
	o1 := newTestOrder(t)

	o1, err := Approve(o1, testAdmin, "", at(1))
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, o1.Status)
	require.Equal(t, ApprovalApproved, o1.Approval().Status)

	_, err = AdvanceStatus(o1, testAdmin, StatusShipped, "", at(2))
	require.ErrorIs(t, err, ErrInvalidTransition)

	o1, err = AdvanceStatus(o1, testAdmin, StatusProcessing, "", at(3))
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, o1.Status)

	_, err = Cancel(o1, testOwner, "changed mind", at(4))
	require.ErrorIs(t, err, ErrNotCancellable)
}

func TestScenario_RejectRequiresReason(t *testing.T) {
	o2 := newTestOrder(t)

	_, err := Reject(o2, testAdmin, "", at(1))
	require.ErrorIs(t, err, ErrReasonRequired)

	o2, err = Reject(o2, testAdmin, "out of stock", at(2))
	require.NoError(t, err)
	require.Equal(t, StatusRejected, o2.Status)
	require.Equal(t, ApprovalRejected, o2.Approval().Status)

	_, err = Approve(o2, testAdmin, "", at(3))
	require.ErrorIs(t, err, ErrNotPending)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, status)

	_, err = ParseStatus("lost")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("")
	require.NoError(t, err)
	require.Equal(t, PaymentPending, status)

	status, err = ParsePaymentStatus("completed")
	require.NoError(t, err)
	require.Equal(t, PaymentCompleted, status)

	_, err = ParsePaymentStatus("charged")
	require.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

package domain

// TransitionKind classifies an edge of the lifecycle graph.
type TransitionKind string

const (
	KindApproval     TransitionKind = "approval"
	KindRejection    TransitionKind = "rejection"
	KindFulfillment  TransitionKind = "fulfillment"
	KindCancellation TransitionKind = "cancellation"
)

type edge struct {
	from Status
	to   Status
}

type rule struct {
	kind  TransitionKind
	roles []Role
}

func (r rule) permits(role Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	adminOnly        = []Role{RoleAdmin}
	customerAndAdmin = []Role{RoleCustomer, RoleAdmin}
)

// transitions is the single source of truth for every status change.
// Any pair missing here is rejected by every operation.
var transitions = map[edge]rule{
	{StatusAwaitingApproval, StatusConfirmed}: {kind: KindApproval, roles: adminOnly},
	{StatusAwaitingApproval, StatusRejected}:  {kind: KindRejection, roles: adminOnly},
	{StatusConfirmed, StatusProcessing}:       {kind: KindFulfillment, roles: adminOnly},
	{StatusProcessing, StatusShipped}:         {kind: KindFulfillment, roles: adminOnly},
	{StatusShipped, StatusDelivered}:          {kind: KindFulfillment, roles: adminOnly},
	{StatusAwaitingApproval, StatusCancelled}: {kind: KindCancellation, roles: customerAndAdmin},
	{StatusConfirmed, StatusCancelled}:        {kind: KindCancellation, roles: customerAndAdmin},
}

func lookup(from, to Status, kind TransitionKind) (rule, bool) {
	r, ok := transitions[edge{from: from, to: to}]
	if !ok || r.kind != kind {
		return rule{}, false
	}
	return r, true
}

// KindOf reports the kind of the edge from -> to, if the edge exists.
func KindOf(from, to Status) (TransitionKind, bool) {
	r, ok := transitions[edge{from: from, to: to}]
	return r.kind, ok
}

// AvailableTransitions lists the statuses the actor could move the order to next.
// It is advisory; every mutation re-checks against the freshly loaded order.
func AvailableTransitions(order *Order, actor Actor) []Status {
	if order == nil || order.Status.Terminal() {
		return nil
	}
	var out []Status
	for _, to := range Statuses {
		r, ok := transitions[edge{from: order.Status, to: to}]
		if !ok || !r.permits(actor.Role) {
			continue
		}
		if r.kind == KindCancellation && !actor.IsAdmin() && !order.OwnedBy(actor.ID) {
			continue
		}
		out = append(out, to)
	}
	return out
}

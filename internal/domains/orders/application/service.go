package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

const defaultCurrency = "INR"

// Service orchestrates the order lifecycle use cases.
// Every mutation re-reads the order, applies a pure domain operation and
// persists it with a conditional update on the status and version it read.
type Service struct {
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	now         func() time.Time
	newID       func() string
	currency    string
}

// Option configures optional collaborators.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key replay for mutations.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithPublisher sets where status changes are announced after they are stored.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how order ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithDefaultCurrency sets the currency used when checkout omits one.
func WithDefaultCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.TrimSpace(currency); c != "" {
			s.currency = strings.ToUpper(c)
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: ports.NoopPublisher{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		currency:  defaultCurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder ingests a checked-out order in awaiting_approval.
func (s *Service) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	customerID := strings.TrimSpace(input.CustomerID)
	if !input.Actor.IsAdmin() {
		if customerID != "" && customerID != input.Actor.ID {
			return nil, mapError(domain.ErrForbidden)
		}
		customerID = input.Actor.ID
	}
	input.CustomerID = customerID
	return s.idempotent(ctx, input.IdempotencyKey,
		func() (string, error) { return FingerprintPlaceOrder(input) },
		func() (*domain.Order, error) { return s.placeOrder(ctx, input) },
	)
}

func (s *Service) placeOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	payment, err := domain.ParsePaymentStatus(input.PaymentStatus)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	id := s.newID()
	orderNumber := strings.TrimSpace(input.OrderNumber)
	if orderNumber == "" {
		orderNumber = generateOrderNumber(id, now)
	}
	currency := input.Currency
	if strings.TrimSpace(currency) == "" {
		currency = s.currency
	}
	order, err := domain.NewOrder(id, orderNumber, input.CustomerID, input.TotalAmount, currency, payment, now)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.NewStatusChanged(nil, saved))
	return saved, nil
}

// GetOrder loads an order visible to the actor.
func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	if !canView(input.Actor, order) {
		return nil, mapError(domain.ErrForbidden)
	}
	return order, nil
}

// ListOrders returns orders matching the filter. Customers are scoped to their own orders.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	filter := ports.ListFilter{CustomerID: strings.TrimSpace(input.CustomerID)}
	if !input.Actor.IsAdmin() {
		if filter.CustomerID != "" && filter.CustomerID != input.Actor.ID {
			return nil, mapError(domain.ErrForbidden)
		}
		filter.CustomerID = input.Actor.ID
	}
	for _, raw := range input.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	approval, err := parseApprovalFilter(input.ApprovalStatus)
	if err != nil {
		return nil, mapError(err)
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	if approval == "" {
		return orders, nil
	}
	filtered := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		if order.Approval().Status == approval {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

// ApproveOrder runs the approval gate's approve decision.
func (s *Service) ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	return s.idempotent(ctx, input.IdempotencyKey,
		func() (string, error) { return FingerprintApprove(input) },
		func() (*domain.Order, error) {
			return s.transition(ctx, input.OrderID, func(order *domain.Order, now time.Time) (*domain.Order, error) {
				return domain.Approve(order, input.Actor, input.Remarks, now)
			})
		},
	)
}

// RejectOrder runs the approval gate's reject decision.
func (s *Service) RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Remarks) == "" && input.Actor.IsAdmin() {
		return nil, mapError(domain.ErrReasonRequired)
	}
	return s.idempotent(ctx, input.IdempotencyKey,
		func() (string, error) { return FingerprintReject(input) },
		func() (*domain.Order, error) {
			return s.transition(ctx, input.OrderID, func(order *domain.Order, now time.Time) (*domain.Order, error) {
				return domain.Reject(order, input.Actor, input.Remarks, now)
			})
		},
	)
}

// UpdateOrderStatus advances fulfillment through the transition validator.
func (s *Service) UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	return s.idempotent(ctx, input.IdempotencyKey,
		func() (string, error) { return FingerprintUpdateStatus(input) },
		func() (*domain.Order, error) {
			return s.transition(ctx, input.OrderID, func(order *domain.Order, now time.Time) (*domain.Order, error) {
				return domain.AdvanceStatus(order, input.Actor, status, input.Note, now)
			})
		},
	)
}

// CancelOrder runs the cancellation policy.
func (s *Service) CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	return s.idempotent(ctx, input.IdempotencyKey,
		func() (string, error) { return FingerprintCancel(input) },
		func() (*domain.Order, error) {
			return s.transition(ctx, input.OrderID, func(order *domain.Order, now time.Time) (*domain.Order, error) {
				return domain.Cancel(order, input.Actor, input.Reason, now)
			})
		},
	)
}

// Timeline returns the order's timeline in the requested view. The full view is the default.
func (s *Service) Timeline(ctx context.Context, input types.TimelineInput) ([]domain.Event, error) {
	view, err := domain.ParseTimelineView(strings.TrimSpace(strings.ToLower(input.View)))
	if err != nil {
		return nil, mapError(err)
	}
	order, err := s.GetOrder(ctx, types.OrderIdentifier{Actor: input.Actor, OrderID: input.OrderID})
	if err != nil {
		return nil, err
	}
	return view.Project(order.Timeline), nil
}

// DashboardStats aggregates the full order set for the admin dashboard.
func (s *Service) DashboardStats(ctx context.Context, input types.DashboardInput) (domain.Stats, error) {
	if err := requireActor(input.Actor); err != nil {
		return domain.Stats{}, err
	}
	if !input.Actor.IsAdmin() {
		return domain.Stats{}, mapError(domain.ErrForbidden)
	}
	orders, err := s.repo.List(ctx, ports.ListFilter{})
	if err != nil {
		return domain.Stats{}, mapError(err)
	}
	return domain.Aggregate(orders), nil
}

type transitionFunc func(order *domain.Order, now time.Time) (*domain.Order, error)

// transition applies fn to the stored order and persists the result conditionally.
// When another actor wins the race, fn is re-derived against the fresh order so the
// caller sees the precise reason (for example NotPending) when one exists.
func (s *Service) transition(ctx context.Context, orderID string, fn transitionFunc) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	next, err := fn(current, now)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, next, ports.Precondition{Status: current.Status, Version: current.Version})
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			if fresh, getErr := s.repo.GetByID(ctx, orderID); getErr == nil {
				if _, reErr := fn(fresh, now); reErr != nil {
					return nil, mapError(reErr)
				}
			}
		}
		return nil, mapError(err)
	}
	s.publish(ctx, domain.NewStatusChanged(current, saved))
	return saved, nil
}

// publish is best effort: the transition is already durable, so adapters log their own failures.
func (s *Service) publish(ctx context.Context, event domain.StatusChanged) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.PublishStatusChanged(ctx, event)
}

func requireActor(actor domain.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || !actor.Role.Valid() {
		return mapError(domain.ErrForbidden)
	}
	return nil
}

func canView(actor domain.Actor, order *domain.Order) bool {
	return actor.IsAdmin() || order.OwnedBy(actor.ID)
}

func parseApprovalFilter(raw string) (domain.ApprovalStatus, error) {
	switch status := domain.ApprovalStatus(strings.TrimSpace(strings.ToLower(raw))); status {
	case "", domain.ApprovalPending, domain.ApprovalApproved, domain.ApprovalRejected, domain.ApprovalWithdrawn:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func generateOrderNumber(id string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

var _ ports.Service = (*Service)(nil)

package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

const tracerName = "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func actorAttrs(actor domain.Actor) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	}
}

// PlaceOrder ingests a checked-out order.
func (s *Service) PlaceOrder(ctx context.Context, input types.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder", actorAttrs(input.Actor)...)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("actor.id", input.Actor.ID))
	order, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("actor.id", input.Actor.ID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordPlaced(ctx)
	s.logInfo(ctx, "order placed", slog.String("order.id", order.ID), slog.String("order.number", order.OrderNumber))
	return order, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", append(actorAttrs(input.Actor), attribute.String("order.id", input.OrderID))...)
	defer span.End()

	order, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.OrderID))
	}
	return order, nil
}

// ListOrders returns orders visible to the actor.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) ([]*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders",
		append(actorAttrs(input.Actor), attribute.StringSlice("order.statuses.requested", input.Statuses))...)
	defer span.End()

	orders, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.Any("statuses", input.Statuses))
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	s.logInfo(ctx, "listed orders", slog.Int("count", len(orders)))
	return orders, nil
}

// ApproveOrder records an admin approval.
func (s *Service) ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error) {
	return s.transition(ctx, "Service.ApproveOrder", input.Actor, input.OrderID, func(ctx context.Context) (*domain.Order, error) {
		return s.inner.ApproveOrder(ctx, input)
	})
}

// RejectOrder records an admin rejection.
func (s *Service) RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error) {
	return s.transition(ctx, "Service.RejectOrder", input.Actor, input.OrderID, func(ctx context.Context) (*domain.Order, error) {
		return s.inner.RejectOrder(ctx, input)
	})
}

// UpdateOrderStatus advances fulfillment.
func (s *Service) UpdateOrderStatus(ctx context.Context, input types.UpdateOrderStatusInput) (*domain.Order, error) {
	return s.transition(ctx, "Service.UpdateOrderStatus", input.Actor, input.OrderID, func(ctx context.Context) (*domain.Order, error) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("order.status.requested", input.Status))
		return s.inner.UpdateOrderStatus(ctx, input)
	})
}

// CancelOrder cancels an order on behalf of its owner or an admin.
func (s *Service) CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error) {
	return s.transition(ctx, "Service.CancelOrder", input.Actor, input.OrderID, func(ctx context.Context) (*domain.Order, error) {
		return s.inner.CancelOrder(ctx, input)
	})
}

// Timeline returns the projected timeline.
func (s *Service) Timeline(ctx context.Context, input types.TimelineInput) ([]domain.Event, error) {
	ctx, span := s.startSpan(ctx, "Service.Timeline",
		append(actorAttrs(input.Actor), attribute.String("order.id", input.OrderID), attribute.String("timeline.view", input.View))...)
	defer span.End()

	events, err := s.inner.Timeline(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load timeline", slog.String("order.id", input.OrderID))
	}
	span.SetAttributes(attribute.Int("timeline.events", len(events)))
	return events, nil
}

// DashboardStats aggregates dashboard figures.
func (s *Service) DashboardStats(ctx context.Context, input types.DashboardInput) (domain.Stats, error) {
	ctx, span := s.startSpan(ctx, "Service.DashboardStats", actorAttrs(input.Actor)...)
	defer span.End()

	stats, err := s.inner.DashboardStats(ctx, input)
	if err != nil {
		return domain.Stats{}, s.handleError(ctx, span, err, "failed to compute dashboard stats")
	}
	span.SetAttributes(
		attribute.Int("dashboard.total_orders", stats.TotalOrders),
		attribute.Int("dashboard.pending_approvals", stats.PendingApprovals),
	)
	return stats, nil
}

func (s *Service) transition(ctx context.Context, name string, actor domain.Actor, orderID string, fn func(context.Context) (*domain.Order, error)) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, name, append(actorAttrs(actor), attribute.String("order.id", orderID))...)
	defer span.End()

	s.logInfo(ctx, "transitioning order", slog.String("operation", name), slog.String("order.id", orderID))
	order, err := fn(ctx)
	if err != nil {
		s.metrics.recordFailure(ctx, name, application.ErrorCode(err))
		return nil, s.handleError(ctx, span, err, "order transition failed",
			slog.String("operation", name),
			slog.String("order.id", orderID),
			slog.String("code", application.ErrorCode(err)),
		)
	}
	span.SetAttributes(attribute.String("order.status", string(order.Status)), attribute.Int64("order.version", order.Version))
	s.metrics.recordTransition(ctx, name, order.Status)
	s.logInfo(ctx, "order transitioned",
		slog.String("operation", name),
		slog.String("order.id", order.ID),
		slog.String("status", string(order.Status)),
	)
	return order, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced       metric.Int64Counter
	transitions        metric.Int64Counter
	transitionFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of applied order transitions"))
	transitionFailures, _ := m.Int64Counter("orders.service.transition_failures", metric.WithDescription("Number of rejected order transitions"))
	return serviceMetrics{
		ordersPlaced:       ordersPlaced,
		transitions:        transitions,
		transitionFailures: transitionFailures,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context) {
	addCounter(ctx, m.ordersPlaced, 1)
}

func (m serviceMetrics) recordTransition(ctx context.Context, operation string, status domain.Status) {
	addCounter(ctx, m.transitions, 1,
		attribute.String("operation", operation),
		attribute.String("order.status", string(status)),
	)
}

func (m serviceMetrics) recordFailure(ctx context.Context, operation, code string) {
	if code == "" {
		code = "unexpected"
	}
	addCounter(ctx, m.transitionFailures, 1,
		attribute.String("operation", operation),
		attribute.String("error.code", code),
	)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)

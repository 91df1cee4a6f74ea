package observability

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	ordersmemory "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/memory"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

func TestService_RecordsSpansAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := New(application.NewService(ordersmemory.NewRepository()),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	ctx := context.Background()
	customer := domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}
	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

	order, err := svc.PlaceOrder(ctx, types.PlaceOrderInput{Actor: customer, TotalAmount: decimal.NewFromInt(20)})
	require.NoError(t, err)
	_, err = svc.ApproveOrder(ctx, types.ApproveOrderInput{Actor: admin, OrderID: order.ID})
	require.NoError(t, err)
	_, err = svc.ApproveOrder(ctx, types.ApproveOrderInput{Actor: admin, OrderID: order.ID})
	require.ErrorIs(t, err, application.ErrStateConflict)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	require.Equal(t, "Service.PlaceOrder", spans[0].Name())
	require.Equal(t, "Service.ApproveOrder", spans[1].Name())
	require.Equal(t, codes.Error, spans[2].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(1), totals["orders.service.placed"])
	require.Equal(t, int64(1), totals["orders.service.transitions"])
	require.Equal(t, int64(1), totals["orders.service.transition_failures"])
}

func TestService_DefaultsAreNoop(t *testing.T) {
	svc := New(application.NewService(ordersmemory.NewRepository()), WithLogger(nil), WithTracer(nil))
	_, err := svc.DashboardStats(context.Background(), types.DashboardInput{Actor: domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}})
	require.ErrorIs(t, err, application.ErrForbidden)
}

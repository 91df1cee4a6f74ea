package ordersserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	ordershttpmapper "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/http/mapper"
	ordersmemory "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	apierrors "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/shared/errors"
)

type caller struct {
	id   string
	role string
}

var (
	adminCaller    = caller{id: "admin-1", role: "admin"}
	customerCaller = caller{id: "cust-1", role: "customer"}
	otherCaller    = caller{id: "cust-2", role: "customer"}
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := ordersapp.NewService(ordersmemory.NewRepository(), ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()))
	return NewRouter(ApiHandleFunctions{
		OrderAPI: NewOrderAPI(service),
		AdminAPI: NewAdminAPI(service, ordersworkflows.NewInlineDecisionWorkflows(service)),
	})
}

func do(t *testing.T, router http.Handler, who caller, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.id != "" {
		req.Header.Set(HeaderActorID, who.id)
	}
	if who.role != "" {
		req.Header.Set(HeaderActorRole, who.role)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) ordershttpmapper.Order {
	t.Helper()
	var order ordershttpmapper.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order), w.Body.String())
	return order
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	require.Equal(t, apierrors.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem), w.Body.String())
	return problem
}

func placeOrder(t *testing.T, router http.Handler) ordershttpmapper.Order {
	t.Helper()
	w := do(t, router, customerCaller, http.MethodPost, "/v1/orders", map[string]any{"totalAmount": "1499.5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeOrder(t, w)
}

func TestPlaceOrder_ReturnsAwaitingApproval(t *testing.T) {
	router := newTestRouter(t)

	order := placeOrder(t, router)
	require.Equal(t, "awaiting_approval", order.Status)
	require.Equal(t, "pending", order.AdminApproval.Status)
	require.Equal(t, "cust-1", order.CustomerID)
	require.Equal(t, "1499.50", order.TotalAmount)
	require.Len(t, order.Timeline, 1)
	require.Equal(t, []string{"cancelled"}, order.AllowedTransitions)
}

func TestScenarioO1_ApproveAdvanceThenCancelRefused(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)

	w := do(t, router, adminCaller, http.MethodPost, "/v1/admin/orders/"+order.ID+"/approve", map[string]any{"remarks": "looks good"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeOrder(t, w)
	require.Equal(t, "confirmed", approved.Status)
	require.Equal(t, "approved", approved.AdminApproval.Status)
	require.Equal(t, "looks good", approved.AdminApproval.Remarks)
	require.NotNil(t, approved.AdminApproval.DecidedBy)
	require.Equal(t, "admin-1", approved.AdminApproval.DecidedBy.ID)
	require.Len(t, approved.Timeline, 2)

	w = do(t, router, adminCaller, http.MethodPatch, "/v1/admin/orders/"+order.ID+"/status", map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusConflict, w.Code)
	problem := decodeProblem(t, w)
	require.Equal(t, "invalid_transition", problem.Code)
	require.Equal(t, "refetch", problem.Recovery)

	w = do(t, router, adminCaller, http.MethodPatch, "/v1/admin/orders/"+order.ID+"/status", map[string]any{"status": "processing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "processing", decodeOrder(t, w).Status)

	w = do(t, router, customerCaller, http.MethodPost, "/v1/orders/"+order.ID+"/cancel", map[string]any{"reason": "changed mind"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "not_cancellable", decodeProblem(t, w).Code)
}

func TestScenarioO2_RejectNeedsReasonAndIsFinal(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)

	w := do(t, router, adminCaller, http.MethodPost, "/v1/admin/orders/"+order.ID+"/reject", map[string]any{"remarks": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decodeProblem(t, w)
	require.Equal(t, "reason_required", problem.Code)
	require.Equal(t, "fix-input", problem.Recovery)

	w = do(t, router, adminCaller, http.MethodPost, "/v1/admin/orders/"+order.ID+"/reject", map[string]any{"remarks": "out of stock"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rejected := decodeOrder(t, w)
	require.Equal(t, "rejected", rejected.Status)
	require.Empty(t, rejected.AllowedTransitions)

	w = do(t, router, adminCaller, http.MethodPost, "/v1/admin/orders/"+order.ID+"/approve", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "not_pending", decodeProblem(t, w).Code)
}

func TestAuthentication(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, caller{}, http.MethodGet, "/v1/orders", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, caller{id: "x", role: "superuser"}, http.MethodGet, "/v1/orders", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, customerCaller, http.MethodGet, "/v1/admin/dashboard/stats", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "forbidden", decodeProblem(t, w).Code)

	w = do(t, router, caller{}, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrder_HiddenFromOtherCustomers(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)

	w := do(t, router, otherCaller, http.MethodGet, "/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not_found", decodeProblem(t, w).Code)

	w = do(t, router, customerCaller, http.MethodGet, "/v1/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, order.ID, decodeOrder(t, w).ID)
}

func TestListOrders_StatusFilter(t *testing.T) {
	router := newTestRouter(t)
	first := placeOrder(t, router)
	placeOrder(t, router)

	w := do(t, router, adminCaller, http.MethodPost, "/v1/admin/orders/"+first.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, adminCaller, http.MethodGet, "/v1/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []ordershttpmapper.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, first.ID, orders[0].ID)

	w = do(t, router, adminCaller, http.MethodGet, "/v1/orders?status=confirmed,awaiting_approval", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 2)

	w = do(t, router, otherCaller, http.MethodGet, "/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Empty(t, orders)
}

func TestTimeline_Views(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)

	w := do(t, router, customerCaller, http.MethodGet, "/v1/orders/"+order.ID+"/timeline?view=display", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var events []ordershttpmapper.TimelineEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	require.Equal(t, "awaiting_approval", events[0].Status)

	w = do(t, router, customerCaller, http.MethodGet, "/v1/orders/"+order.ID+"/timeline?view=sideways", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_timeline_view", decodeProblem(t, w).Code)
}

func TestUpdateOrderStatus_ValidationProblem(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)

	w := do(t, router, adminCaller, http.MethodPatch, "/v1/admin/orders/"+order.ID+"/status", map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decodeProblem(t, w)
	require.Equal(t, "invalid_request", problem.Code)
	fields, ok := problem.Extensions["fields"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "oneof", fields["status"])

	w = do(t, router, customerCaller, http.MethodPost, "/v1/orders", map[string]any{"totalAmount": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", decodeProblem(t, w).Code)
}

func TestIdempotencyKey_ReplaysAndConflicts(t *testing.T) {
	router := newTestRouter(t)
	order := placeOrder(t, router)
	path := "/v1/admin/orders/" + order.ID + "/approve"

	first := do(t, router, adminCaller, http.MethodPost, path, map[string]any{"remarks": "ok"}, HeaderIdempotencyKey, "key-1")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	replay := do(t, router, adminCaller, http.MethodPost, path, map[string]any{"remarks": "ok"}, HeaderIdempotencyKey, "key-1")
	require.Equal(t, http.StatusOK, replay.Code, replay.Body.String())
	require.Equal(t, decodeOrder(t, first).Version, decodeOrder(t, replay).Version)

	conflict := do(t, router, adminCaller, http.MethodPost, path, map[string]any{"remarks": "different"}, HeaderIdempotencyKey, "key-1")
	require.Equal(t, http.StatusUnprocessableEntity, conflict.Code)
	require.Equal(t, "idempotency_conflict", decodeProblem(t, conflict).Code)
}

func TestDashboardStats(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router)

	w := do(t, router, adminCaller, http.MethodGet, "/v1/admin/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats ordershttpmapper.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalOrders)
	require.Equal(t, 1, stats.PendingApprovals)
	require.Equal(t, "0.00", stats.Revenue.TotalRevenue)
}

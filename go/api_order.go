package ordersserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	ordershttpmapper "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	ordersports "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
	apierrors "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/shared/errors"
)

// OrderAPI serves the customer-facing order endpoints. Admins may use them too.
type OrderAPI struct {
	service  ordersports.Service
	validate *validatorv10.Validate
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service, validate: NewValidator()}
}

// Post /v1/orders
// Places an order from a checked-out cart
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload ordershttpmapper.PlaceOrderRequest
	if !bindAndValidate(c, &payload, api.validator()) {
		return
	}
	amount, err := ordershttpmapper.ParseAmount(payload.TotalAmount)
	if err != nil {
		respondProblem(c, apierrors.NewInvalidRequestProblem("totalAmount must be a decimal number", map[string]string{"totalAmount": "numeric"}))
		return
	}
	actor := actorFrom(c)
	order, err := api.service.PlaceOrder(c.Request.Context(), orderstypes.PlaceOrderInput{
		Actor:          actor,
		IdempotencyKey: idempotencyKey(c),
		OrderNumber:    payload.OrderNumber,
		CustomerID:     payload.CustomerID,
		TotalAmount:    amount,
		Currency:       strings.ToUpper(payload.Currency),
		PaymentStatus:  payload.PaymentStatus,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordershttpmapper.FromDomainOrder(order, actor))
}

// Get /v1/orders
// Lists orders visible to the actor, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var statuses []string
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "status", query, &statuses); err != nil {
		respondProblem(c, apierrors.NewInvalidRequestProblem(err.Error(), map[string]string{"status": "form"}))
		return
	}
	actor := actorFrom(c)
	orders, err := api.service.ListOrders(c.Request.Context(), orderstypes.ListOrdersInput{
		Actor:          actor,
		Statuses:       splitCSV(statuses),
		CustomerID:     query.Get("customerId"),
		ApprovalStatus: query.Get("approvalStatus"),
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrders(orders, actor))
}

// Get /v1/orders/:orderId
// Returns a single order with its timeline
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	actor := actorFrom(c)
	order, err := api.service.GetOrder(c.Request.Context(), orderstypes.OrderIdentifier{Actor: actor, OrderID: id})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order, actor))
}

// Get /v1/orders/:orderId/timeline
// Returns the order timeline as the full audit log or the customer display view
func (api *OrderAPI) GetOrderTimeline(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	events, err := api.service.Timeline(c.Request.Context(), orderstypes.TimelineInput{
		Actor:   actorFrom(c),
		OrderID: id,
		View:    c.Query("view"),
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainTimeline(events))
}

// Post /v1/orders/:orderId/cancel
// Cancels an order before fulfillment starts
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload ordershttpmapper.CancelOrderRequest
	if !bindOptionalBody(c, &payload, api.validator()) {
		return
	}
	actor := actorFrom(c)
	order, err := api.service.CancelOrder(c.Request.Context(), orderstypes.CancelOrderInput{
		Actor:          actor,
		IdempotencyKey: idempotencyKey(c),
		OrderID:        id,
		Reason:         payload.Reason,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order, actor))
}

func (api *OrderAPI) validator() *validatorv10.Validate {
	if api.validate == nil {
		api.validate = NewValidator()
	}
	return api.validate
}

func parseOrderID(c *gin.Context) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", c.Param("orderId"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil || strings.TrimSpace(id) == "" {
		respondProblem(c, apierrors.NewInvalidRequestProblem("orderId path parameter is required", map[string]string{"orderId": "required"}))
		return "", false
	}
	return id, true
}

// splitCSV accepts both ?status=a&status=b and ?status=a,b.
func splitCSV(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

package ordersserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	ordershttpmapper "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	ordersports "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

// AdminAPI serves the admin-only order endpoints. Approve and reject run
// through the decision workflows when they are configured.
type AdminAPI struct {
	service   ordersports.Service
	workflows ordersports.DecisionWorkflows
	validate  *validatorv10.Validate
}

// NewAdminAPI creates an AdminAPI. workflows may be nil.
func NewAdminAPI(service ordersports.Service, workflows ordersports.DecisionWorkflows) AdminAPI {
	return AdminAPI{service: service, workflows: workflows, validate: NewValidator()}
}

// Post /v1/admin/orders/:orderId/approve
// Approves a pending order
func (api *AdminAPI) ApproveOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload ordershttpmapper.ApproveOrderRequest
	if !bindOptionalBody(c, &payload, api.validator()) {
		return
	}
	actor := actorFrom(c)
	order, err := api.approve(c.Request.Context(), orderstypes.ApproveOrderInput{
		Actor:          actor,
		IdempotencyKey: idempotencyKey(c),
		OrderID:        id,
		Remarks:        payload.Remarks,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order, actor))
}

// Post /v1/admin/orders/:orderId/reject
// Rejects a pending order with a reason
func (api *AdminAPI) RejectOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload ordershttpmapper.RejectOrderRequest
	if !bindOptionalBody(c, &payload, api.validator()) {
		return
	}
	actor := actorFrom(c)
	order, err := api.reject(c.Request.Context(), orderstypes.RejectOrderInput{
		Actor:          actor,
		IdempotencyKey: idempotencyKey(c),
		OrderID:        id,
		Remarks:        payload.Remarks,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order, actor))
}

// Patch /v1/admin/orders/:orderId/status
// Advances fulfillment by one stage
func (api *AdminAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var payload ordershttpmapper.UpdateOrderStatusRequest
	if !bindAndValidate(c, &payload, api.validator()) {
		return
	}
	actor := actorFrom(c)
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), orderstypes.UpdateOrderStatusInput{
		Actor:          actor,
		IdempotencyKey: idempotencyKey(c),
		OrderID:        id,
		Status:         payload.Status,
		Note:           payload.Note,
	})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order, actor))
}

// Get /v1/admin/dashboard/stats
// Returns order counts and delivered revenue
func (api *AdminAPI) GetDashboardStats(c *gin.Context) {
	stats, err := api.service.DashboardStats(c.Request.Context(), orderstypes.DashboardInput{Actor: actorFrom(c)})
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainStats(stats))
}

func (api *AdminAPI) approve(ctx context.Context, input orderstypes.ApproveOrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.ApproveOrder(ctx, input)
	}
	return api.service.ApproveOrder(ctx, input)
}

func (api *AdminAPI) reject(ctx context.Context, input orderstypes.RejectOrderInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.RejectOrder(ctx, input)
	}
	return api.service.RejectOrder(ctx, input)
}

func (api *AdminAPI) validator() *validatorv10.Validate {
	if api.validate == nil {
		api.validate = NewValidator()
	}
	return api.validate
}

package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Admin routes additionally require the admin role.
	Admin bool
}

// ApiHandleFunctions groups the API implementations served by the router.
type ApiHandleFunctions struct {
	OrderAPI OrderAPI
	AdminAPI AdminAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.New(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(gin.Recovery())
	router.GET("/healthz", Healthz)

	v1 := router.Group("/v1", RequireActor())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if route.Admin {
			handlers = append([]gin.HandlerFunc{RequireAdmin()}, handlers...)
		}
		v1.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	orders := handleFunctions.OrderAPI
	admin := handleFunctions.AdminAPI
	return []Route{
		{Name: "PlaceOrder", Method: http.MethodPost, Pattern: "/orders", HandlerFunc: orders.PlaceOrder},
		{Name: "ListOrders", Method: http.MethodGet, Pattern: "/orders", HandlerFunc: orders.ListOrders},
		{Name: "GetOrder", Method: http.MethodGet, Pattern: "/orders/:orderId", HandlerFunc: orders.GetOrder},
		{Name: "GetOrderTimeline", Method: http.MethodGet, Pattern: "/orders/:orderId/timeline", HandlerFunc: orders.GetOrderTimeline},
		{Name: "CancelOrder", Method: http.MethodPost, Pattern: "/orders/:orderId/cancel", HandlerFunc: orders.CancelOrder},
		{Name: "ApproveOrder", Method: http.MethodPost, Pattern: "/admin/orders/:orderId/approve", HandlerFunc: admin.ApproveOrder, Admin: true},
		{Name: "RejectOrder", Method: http.MethodPost, Pattern: "/admin/orders/:orderId/reject", HandlerFunc: admin.RejectOrder, Admin: true},
		{Name: "UpdateOrderStatus", Method: http.MethodPatch, Pattern: "/admin/orders/:orderId/status", HandlerFunc: admin.UpdateOrderStatus, Admin: true},
		{Name: "GetDashboardStats", Method: http.MethodGet, Pattern: "/admin/dashboard/stats", HandlerFunc: admin.GetDashboardStats, Admin: true},
	}
}

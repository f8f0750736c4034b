package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, transferHandler *TransferHandler, orderHandler *OrderHandler, groupHandler *GroupHandler) {
	if transferHandler != nil {
		server.POST("/api/v1/transfers", transferHandler.StartTransfer)
	}
	if orderHandler != nil {
		server.GET("/api/v1/orders/:id", orderHandler.GetOrder)
		server.POST("/api/v1/orders/:id/cancel", orderHandler.CancelOrder)
	}
	if groupHandler != nil {
		server.GET("/api/v1/groups/validate", groupHandler.ValidateGroup)
	}
}

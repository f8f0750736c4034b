package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
)

type OrderHandler struct {
	getOrder    app.GetOrder
	cancelOrder app.CancelOrder
}

func NewOrderHandler(getOrder app.GetOrder, cancelOrder app.CancelOrder) *OrderHandler {
	return &OrderHandler{getOrder: getOrder, cancelOrder: cancelOrder}
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	out, err := h.getOrder.Execute(c.Request().Context(), app.GetOrderInput{
		ID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidOrderID) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_order_id",
				Message: "id must be a valid UUID",
			}})
		}
		if errors.Is(err, app.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "order not found",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get order",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	out, err := h.cancelOrder.Execute(c.Request().Context(), app.CancelOrderInput{
		ID: c.Param("id"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidOrderID):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_order_id",
				Message: "id must be a valid UUID",
			}})
		case errors.Is(err, app.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "order not found",
			}})
		case errors.Is(err, app.ErrOrderNotCancellable):
			return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
				Code:    "not_cancellable",
				Message: "only pending or processing orders can be cancelled",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to cancel order",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

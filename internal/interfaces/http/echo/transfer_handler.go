package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
)

type TransferHandler struct {
	useCase app.StartTransfer
}

type startTransferRequest struct {
	OrderID         string `json:"order_id"`
	SourceGroupLink string `json:"source_group_link"`
	TargetGroupLink string `json:"target_group_link"`
	MemberLimit     int    `json:"member_limit"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func NewTransferHandler(useCase app.StartTransfer) *TransferHandler {
	return &TransferHandler{useCase: useCase}
}

func (h *TransferHandler) StartTransfer(c echo.Context) error {
	var req startTransferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.StartTransferInput{
		OrderID:         req.OrderID,
		SourceGroupLink: req.SourceGroupLink,
		TargetGroupLink: req.TargetGroupLink,
		MemberLimit:     req.MemberLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidOrderID):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_order_id",
				Message: "order_id must be a valid UUID",
			}})
		case errors.Is(err, app.ErrInvalidGroupLink):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_group_link",
				Message: "group links must look like https://t.me/groupname",
			}})
		case errors.Is(err, app.ErrSameGroup):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "same_group",
				Message: "source and target groups must be different",
			}})
		case errors.Is(err, app.ErrInvalidMemberLimit):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_member_limit",
				Message: "member_limit must be between 1 and 100000",
			}})
		case errors.Is(err, app.ErrOrderNotPending):
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "order_not_pending",
				Message: "order not found or not in pending status",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to enqueue transfer",
		}})
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

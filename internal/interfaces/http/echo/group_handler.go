package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
)

type GroupHandler struct {
	useCase app.ValidateGroup
}

func NewGroupHandler(useCase app.ValidateGroup) *GroupHandler {
	return &GroupHandler{useCase: useCase}
}

func (h *GroupHandler) ValidateGroup(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.ValidateGroupInput{
		GroupLink: c.QueryParam("link"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidGroupLink) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_group_link",
				Message: "link must look like https://t.me/groupname",
			}})
		}
		return c.JSON(http.StatusBadGateway, apiResponse{Error: &errorBody{
			Code:    "validation_unavailable",
			Message: "could not reach telegram to validate the group",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

package bootstrap

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	app "github.com/boostgram/transfer-service/internal/application/transfer"
	"github.com/boostgram/transfer-service/internal/infrastructure/repository"
	httpecho "github.com/boostgram/transfer-service/internal/interfaces/http/echo"
)

func NewHTTPServer(db *gorm.DB, factory app.ClientFactory, logger zerolog.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("1M"))

	jobRepo := repository.NewTransferJobRepository(db)
	startTransfer := app.NewStartTransfer(jobRepo)
	transferHandler := httpecho.NewTransferHandler(startTransfer)

	orderQueryRepo := repository.NewOrderQueryRepository(db)
	getOrder := app.NewGetOrder(orderQueryRepo)
	cancelOrder := app.NewCancelOrder(jobRepo)
	orderHandler := httpecho.NewOrderHandler(getOrder, cancelOrder)

	validateGroup := app.NewValidateGroup(factory, logger)
	groupHandler := httpecho.NewGroupHandler(validateGroup)

	httpecho.RegisterRoutes(server, transferHandler, orderHandler, groupHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server
}

package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/services"
	"load-tracker/pkg/utils"
)

type NotificationController struct {
	notificationService *services.NotificationService
	logger              *zap.Logger
}

func NewNotificationController(notificationService *services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

func (c *NotificationController) GetQueue(ctx echo.Context) error {
	res, err := c.notificationService.List(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Notification queue retrieved", http.StatusOK)
}

func (c *NotificationController) CountQueue(ctx echo.Context) error {
	n, err := c.notificationService.Count(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, dto.NotificationCountDTO{Count: n}, "Notification count", http.StatusOK)
}

// ProcessQueue runs one of the queue operations: ss, sa or ns.
func (c *NotificationController) ProcessQueue(ctx echo.Context) error {
	var in dto.ProcessQueueDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.notificationService.Process(ctx.Request().Context(), in.Operation, in.NotificationIDs)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("notification queue processed",
		zap.String("operation", in.Operation),
		zap.Int("selected", len(in.NotificationIDs)),
		zap.Int("sent", res.Sent),
		zap.Int("deleted", res.Deleted))
	return utils.SuccessResponse(ctx, res, "Notification queue processed", http.StatusOK)
}

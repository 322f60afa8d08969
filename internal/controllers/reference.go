package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/services"
	"load-tracker/pkg/utils"
)

type ReferenceController struct {
	referenceService *services.ReferenceService
	logger           *zap.Logger
}

func NewReferenceController(referenceService *services.ReferenceService, logger *zap.Logger) *ReferenceController {
	return &ReferenceController{referenceService: referenceService, logger: logger}
}

func (c *ReferenceController) GetDeliveryStatuses(ctx echo.Context) error {
	res, err := c.referenceService.DeliveryStatuses(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Delivery statuses retrieved", http.StatusOK)
}

func (c *ReferenceController) GetCompletionStatuses(ctx echo.Context) error {
	res, err := c.referenceService.CompletionStatuses(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Completion statuses retrieved", http.StatusOK)
}

func (c *ReferenceController) GetNotificationGroups(ctx echo.Context) error {
	res, err := c.referenceService.NotificationGroups(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Notification groups retrieved", http.StatusOK)
}

package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/services"
	"load-tracker/pkg/utils"
)

type LocationController struct {
	locationService *services.LocationService
	logger          *zap.Logger
}

func NewLocationController(locationService *services.LocationService, logger *zap.Logger) *LocationController {
	return &LocationController{locationService: locationService, logger: logger}
}

func (c *LocationController) GetLocations(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	values, err := listValues(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.locationService.List(reqCtx, userID, values)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return respondViewList(ctx, "Locations retrieved", list)
}

func (c *LocationController) FindLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Location found", http.StatusOK)
}

func (c *LocationController) CreateLocation(ctx echo.Context) error {
	var in dto.CreateLocationDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.Create(ctx.Request().Context(), in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Location created", http.StatusCreated)
}

func (c *LocationController) UpdateLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateLocationDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.Update(ctx.Request().Context(), id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Location updated", http.StatusOK)
}

func (c *LocationController) DeleteLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.locationService.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Location deleted", http.StatusOK)
}

func (c *LocationController) CloseLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.Close(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Close confirmation", http.StatusOK)
}

// MergeLocation folds the location in the path into the one named by merge_to.
func (c *LocationController) MergeLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.MergeLocationDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.Merge(ctx.Request().Context(), id, in.TargetID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Locations merged", http.StatusOK)
}

func (c *LocationController) LoadsAtLocation(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.LoadsAt(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Load query stashed", http.StatusOK)
}

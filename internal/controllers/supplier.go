package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/services"
	"load-tracker/pkg/utils"
)

type SupplierController struct {
	supplierService *services.SupplierService
	logger          *zap.Logger
}

func NewSupplierController(supplierService *services.SupplierService, logger *zap.Logger) *SupplierController {
	return &SupplierController{supplierService: supplierService, logger: logger}
}

func (c *SupplierController) GetSuppliers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	values, err := listValues(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.supplierService.List(reqCtx, userID, values)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return respondViewList(ctx, "Suppliers retrieved", list)
}

func (c *SupplierController) FindSupplier(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.supplierService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Supplier found", http.StatusOK)
}

func (c *SupplierController) CreateSupplier(ctx echo.Context) error {
	var in dto.CreateSupplierDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.supplierService.Create(ctx.Request().Context(), in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Supplier created", http.StatusCreated)
}

func (c *SupplierController) UpdateSupplier(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var in dto.UpdateSupplierDTO
	if err := ctx.Bind(&in); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"), c.logger)
	}
	if err := ctx.Validate(&in); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.supplierService.Update(ctx.Request().Context(), id, in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Supplier updated", http.StatusOK)
}

func (c *SupplierController) DeleteSupplier(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.supplierService.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Supplier deleted", http.StatusOK)
}

func (c *SupplierController) CloseSupplier(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.supplierService.Close(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Close confirmation", http.StatusOK)
}

func (c *SupplierController) LoadsFromSupplier(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.supplierService.LoadsFrom(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Load query stashed", http.StatusOK)
}

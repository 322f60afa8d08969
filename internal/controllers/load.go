package controllers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/services"
	"load-tracker/pkg/utils"
	"load-tracker/pkg/validation"
)

const (
	loadDataField  = "data"
	loadPhotoField = "photo"
	photoContext   = "load_photo"
)

type LoadController struct {
	loadService *services.LoadService
	logger      *zap.Logger
}

func NewLoadController(loadService *services.LoadService, logger *zap.Logger) *LoadController {
	return &LoadController{loadService: loadService, logger: logger}
}

func (c *LoadController) GetLoads(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	values, err := listValues(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	list, err := c.loadService.List(reqCtx, userID, values)
	if err != nil {
		c.logger.Error("GetLoads: list failed", zap.Uint64("userID", userID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return respondViewList(ctx, "Loads retrieved", list)
}

func (c *LoadController) FindLoad(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.loadService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Load found", http.StatusOK)
}

func (c *LoadController) CreateLoad(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var in dto.CreateLoadDTO
	photo, closePhoto, err := c.bindLoadForm(ctx, &in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer closePhoto()

	res, err := c.loadService.Create(reqCtx, userID, in, photo)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Load created", http.StatusCreated)
}

func (c *LoadController) UpdateLoad(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var in dto.UpdateLoadDTO
	photo, closePhoto, err := c.bindLoadForm(ctx, &in)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer closePhoto()

	res, err := c.loadService.Update(reqCtx, userID, id, in, photo)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Load updated", http.StatusOK)
}

func (c *LoadController) DeleteLoad(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.loadService.Delete(reqCtx, userID, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Load deleted", http.StatusOK)
}

func (c *LoadController) CloseLoad(ctx echo.Context) error {
	id, err := utils.ParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.loadService.Close(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Close confirmation", http.StatusOK)
}

// bindLoadForm reads a load form. Multipart requests carry the JSON in the
// "data" field plus an optional "photo" file; anything else is bound as a
// plain JSON body. The returned func closes the uploaded file.
func (c *LoadController) bindLoadForm(ctx echo.Context, in interface{}) (*services.PhotoUpload, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := ctx.Bind(in); err != nil {
			return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := ctx.Validate(in); err != nil {
			return nil, noop, err
		}
		return nil, noop, nil
	}

	data := ctx.FormValue(loadDataField)
	if data == "" {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "field 'data' with the JSON form is missing")
	}
	if err := json.Unmarshal([]byte(data), in); err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "field 'data' is not valid JSON")
	}
	if err := ctx.Validate(in); err != nil {
		return nil, noop, err
	}

	header, err := ctx.FormFile(loadPhotoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "could not read photo")
	}
	return openPhoto(header)
}

func openPhoto(header *multipart.FileHeader) (*services.PhotoUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "could not open photo")
	}
	closer := func() { _ = file.Close() }
	if err := validation.ValidateFile(header, file, photoContext); err != nil {
		closer()
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &services.PhotoUpload{Reader: file, Filename: header.Filename}, closer, nil
}

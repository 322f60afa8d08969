package utils

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"load-tracker/pkg/contextkeys"
	apperrors "load-tracker/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

// ParamID parses a positive numeric path parameter.
func ParamID(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewInvalidInputError("invalid %s", name)
	}
	return id, nil
}

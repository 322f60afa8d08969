package controllers

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"load-tracker/internal/services"
	"load-tracker/pkg/api"
)

// listValues collects the view parameters of a list request. A POST carries
// the submitted view form; its fields are merged over the query string.
func listValues(ctx echo.Context) (url.Values, error) {
	values := url.Values{}
	for k, v := range ctx.QueryParams() {
		values[k] = append([]string(nil), v...)
	}
	if ctx.Request().Method != http.MethodPost {
		return values, nil
	}
	form, err := ctx.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}
	for k, v := range form {
		values[k] = append([]string(nil), v...)
	}
	return values, nil
}

func respondViewList[T any](ctx echo.Context, message string, list *services.ViewList[T]) error {
	view := api.NewViewMeta(list.View, list.Context, list.Saved)
	return api.SuccessList(ctx, message, list.Items, list.Total, list.Page, list.PageSize, view)
}

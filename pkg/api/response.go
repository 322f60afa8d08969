package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
	View       *ViewMeta       `json:"view,omitempty"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// ViewMeta describes the saved view a list was rendered with, so the client
// can redraw its filter, sort and column controls.
type ViewMeta struct {
	Source   vista.Source                 `json:"source"`
	Name     string                       `json:"name,omitempty"`
	Issues   []*apperrors.ValidationError `json:"issues,omitempty"`
	Warnings []string                     `json:"warnings,omitempty"`
	Context  vista.Context                `json:"context"`
	Saved    []vista.Saved                `json:"saved"`
}

func NewViewMeta(res vista.Result, vctx vista.Context, saved []vista.Saved) *ViewMeta {
	if saved == nil {
		saved = make([]vista.Saved, 0)
	}
	return &ViewMeta{
		Source:   res.Source,
		Name:     res.Name,
		Issues:   res.Issues,
		Warnings: res.Warnings,
		Context:  vctx,
		Saved:    saved,
	}
}

func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int, view *ViewMeta) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
		},
		View: view,
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

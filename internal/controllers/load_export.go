package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/pkg/utils"
	"load-tracker/pkg/vista"
)

const exportSheet = "Loads"

func boolCell(valid, v bool) interface{} {
	if !valid {
		return ""
	}
	if v {
		return "Yes"
	}
	return "No"
}

func refName(ref *dto.ShortDTO) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

// exportCell renders one column of a load the way the list shows it.
func exportCell(l dto.LoadDTO, column string) interface{} {
	switch column {
	case "job_name":
		return l.JobName
	case "po_number":
		return l.PONumber
	case "supplier":
		return refName(l.Supplier)
	case "spo_number":
		return l.SPONumber
	case "description":
		return l.Description
	case "notes":
		return l.Notes
	case "location":
		return refName(l.Location)
	case "delivery_status":
		return refName(l.DeliveryStatus)
	case "delivery_status__is_active":
		return boolCell(l.DeliveryIsPending.Valid, l.DeliveryIsPending.Bool)
	case "completion_status":
		return refName(l.CompletionStatus)
	case "completion_status__is_active":
		return boolCell(l.CompletionIsPending.Valid, l.CompletionIsPending.Bool)
	case "created_when":
		return l.CreatedWhen
	case "updated_when":
		return l.UpdatedWhen
	case "do_install":
		return l.DoInstallLabel
	case "photo":
		return l.Photo.String
	}
	return ""
}

func exportHeaders(vctx vista.Context) ([]string, []interface{}) {
	labels := make(map[string]string, len(vctx.Fields))
	for _, f := range vctx.Fields {
		labels[f.Name] = f.Label
	}
	columns := append([]string{"id"}, vctx.ShowColumns...)
	headers := make([]interface{}, 0, len(columns))
	headers = append(headers, "ID")
	for _, col := range vctx.ShowColumns {
		headers = append(headers, labels[col])
	}
	return columns, headers
}

func buildLoadWorkbook(loads []dto.LoadDTO, vctx vista.Context) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	columns, headers := exportHeaders(vctx)
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i, l := range loads {
		row := make([]interface{}, 0, len(columns))
		row = append(row, l.ID)
		for _, col := range columns[1:] {
			row = append(row, exportCell(l, col))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ExportLoads streams the loads of the user's current view as an xlsx file.
func (c *LoadController) ExportLoads(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	loads, vctx, err := c.loadService.Export(reqCtx, userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	f, err := buildLoadWorkbook(loads, vctx)
	if err != nil {
		c.logger.Error("ExportLoads: workbook failed", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("loads_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().Header().Set("X-Export-Rows", strconv.Itoa(len(loads)))
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

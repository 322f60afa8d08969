package routes

import (
	"github.com/labstack/echo/v4"

	"load-tracker/internal/controllers"
)

func runSupplierRouter(secureGroup *echo.Group, ctrl *controllers.SupplierController) {
	suppliers := secureGroup.Group("/suppliers")
	suppliers.GET("", ctrl.GetSuppliers)
	suppliers.POST("", ctrl.GetSuppliers)
	suppliers.POST("/create", ctrl.CreateSupplier)
	suppliers.GET("/:id", ctrl.FindSupplier)
	suppliers.PUT("/:id", ctrl.UpdateSupplier)
	suppliers.DELETE("/:id", ctrl.DeleteSupplier)
	suppliers.GET("/:id/close", ctrl.CloseSupplier)
	suppliers.GET("/:id/loads", ctrl.LoadsFromSupplier)
}

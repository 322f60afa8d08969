package routes

import (
	"github.com/labstack/echo/v4"

	"load-tracker/internal/controllers"
)

func runLoadRouter(secureGroup *echo.Group, ctrl *controllers.LoadController) {
	loads := secureGroup.Group("/loads")
	loads.GET("", ctrl.GetLoads)
	loads.POST("", ctrl.GetLoads)
	loads.POST("/create", ctrl.CreateLoad)
	loads.GET("/export", ctrl.ExportLoads)
	loads.GET("/:id", ctrl.FindLoad)
	loads.PUT("/:id", ctrl.UpdateLoad)
	loads.DELETE("/:id", ctrl.DeleteLoad)
	loads.GET("/:id/close", ctrl.CloseLoad)
}

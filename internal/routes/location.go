package routes

import (
	"github.com/labstack/echo/v4"

	"load-tracker/internal/controllers"
)

func runLocationRouter(secureGroup *echo.Group, ctrl *controllers.LocationController) {
	locations := secureGroup.Group("/locations")
	locations.GET("", ctrl.GetLocations)
	locations.POST("", ctrl.GetLocations)
	locations.POST("/create", ctrl.CreateLocation)
	locations.GET("/:id", ctrl.FindLocation)
	locations.PUT("/:id", ctrl.UpdateLocation)
	locations.DELETE("/:id", ctrl.DeleteLocation)
	locations.GET("/:id/close", ctrl.CloseLocation)
	locations.POST("/:id/merge", ctrl.MergeLocation)
	locations.GET("/:id/loads", ctrl.LoadsAtLocation)
}

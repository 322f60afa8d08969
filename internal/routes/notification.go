package routes

import (
	"github.com/labstack/echo/v4"

	"load-tracker/internal/controllers"
)

func runNotificationRouter(secureGroup *echo.Group, ctrl *controllers.NotificationController) {
	notifications := secureGroup.Group("/notifications")
	notifications.GET("/queue", ctrl.GetQueue)
	notifications.POST("/queue", ctrl.ProcessQueue)
	notifications.GET("/count", ctrl.CountQueue)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"load-tracker/internal/controllers"
)

func runReferenceRouter(secureGroup *echo.Group, ctrl *controllers.ReferenceController) {
	secureGroup.GET("/delivery-statuses", ctrl.GetDeliveryStatuses)
	secureGroup.GET("/completion-statuses", ctrl.GetCompletionStatuses)
	secureGroup.GET("/notification-groups", ctrl.GetNotificationGroups)
}

package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"load-tracker/internal/controllers"
	"load-tracker/internal/repositories"
	"load-tracker/internal/services"
	"load-tracker/pkg/config"
	"load-tracker/pkg/filestorage"
	"load-tracker/pkg/mailer"
	"load-tracker/pkg/middleware"
	"load-tracker/pkg/service"
	"load-tracker/pkg/vista"
)

type Loggers struct {
	Main         *zap.Logger
	Auth         *zap.Logger
	Load         *zap.Logger
	Notification *zap.Logger
	Vista        *zap.Logger
}

// InitRouter builds the dependency graph and registers every /api route.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	mail mailer.Mailer,
	loggers *Loggers,
	cfg *config.Config,
) error {
	loggers.Main.Info("InitRouter: registering routes")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Server.UploadsPath)
	if err != nil {
		return err
	}
	txManager := repositories.NewTxManager(dbConn)

	// repositories
	loadRepo := repositories.NewLoadRepository(dbConn, loggers.Load)
	historyRepo := repositories.NewLoadHistoryRepository(dbConn)
	locationRepo := repositories.NewLocationRepository(dbConn, loggers.Main)
	supplierRepo := repositories.NewSupplierRepository(dbConn)
	deliveryStatusRepo := repositories.NewStatusRepository(dbConn, repositories.DeliveryStatusTable)
	completionStatusRepo := repositories.NewStatusRepository(dbConn, repositories.CompletionStatusTable)
	groupRepo := repositories.NewNotificationGroupRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	vistaRepo := repositories.NewVistaRepository(dbConn, txManager, loggers.Vista)
	stashRepo := repositories.NewStashRepository(repositories.NewRedisCacheRepository(redisClient), cfg.Vista.StashTTL)

	// services
	limits := vista.Limits{
		MaxSearchKeys:   cfg.Vista.MaxSearchKeys,
		DefaultPageSize: cfg.Vista.DefaultPageSize,
		MaxPageSize:     cfg.Vista.MaxPageSize,
	}
	views, err := services.NewViewManagers(vistaRepo, stashRepo, limits, loggers.Vista)
	if err != nil {
		return err
	}
	notificationService := services.NewNotificationService(
		notificationRepo, loadRepo, groupRepo, mail, cfg.App.BaseURL, loggers.Notification,
	)
	loadService := services.NewLoadService(
		txManager, loadRepo, historyRepo, locationRepo, deliveryStatusRepo, completionStatusRepo,
		groupRepo, notificationService, fileStorage, views.Loads, loggers.Load,
	)
	locationService := services.NewLocationService(txManager, locationRepo, loadRepo, views.Locations, views.Loads, loggers.Main)
	supplierService := services.NewSupplierService(supplierRepo, views.Suppliers, views.Loads, loggers.Main)
	referenceService := services.NewReferenceService(deliveryStatusRepo, completionStatusRepo, groupRepo, loggers.Main)

	// routers
	secureGroup := api.Group("", authMW.Auth)

	runLoadRouter(secureGroup, controllers.NewLoadController(loadService, loggers.Load))
	runLocationRouter(secureGroup, controllers.NewLocationController(locationService, loggers.Main))
	runSupplierRouter(secureGroup, controllers.NewSupplierController(supplierService, loggers.Main))
	runNotificationRouter(secureGroup, controllers.NewNotificationController(notificationService, loggers.Notification))
	runReferenceRouter(secureGroup, controllers.NewReferenceController(referenceService, loggers.Main))

	e.Static("/uploads", cfg.Server.UploadsPath)

	loggers.Main.Info("InitRouter: routes registered")
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"load-tracker/internal/routes"
	"load-tracker/migrations"
	"load-tracker/pkg/config"
	"load-tracker/pkg/database/postgresql"
	apperrors "load-tracker/pkg/errors"
	applogger "load-tracker/pkg/logger"
	"load-tracker/pkg/mailer"
	appmiddleware "load-tracker/pkg/middleware"
	"load-tracker/pkg/service"
	"load-tracker/pkg/utils"
	"load-tracker/pkg/validation"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.App.LogLevel, cfg.App.LogFile)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "internal server error", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	e.Validator = validation.New()

	dbConn, err := postgresql.ConnectDB(cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("could not connect to PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	sqlDB := stdlib.OpenDBFromPool(dbConn)
	if err := migrations.Up(sqlDB); err != nil {
		logger.Fatal("could not apply migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("could not connect to Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	mail, err := mailer.New(cfg.Mail, logger.Named("mail"))
	if err != nil {
		logger.Fatal("could not set up mail", zap.Error(err))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)

	loggers := &routes.Loggers{
		Main:         logger,
		Auth:         logger.Named("auth"),
		Load:         logger.Named("load"),
		Notification: logger.Named("notification"),
		Vista:        logger.Named("vista"),
	}
	if err := routes.InitRouter(e, dbConn, redisClient, jwtSvc, mail, loggers, cfg); err != nil {
		logger.Fatal("could not initialise routes", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

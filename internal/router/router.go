package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"microblog/internal/handlers"
	"microblog/internal/middleware"
	"microblog/internal/repositories"
	"microblog/internal/service"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.Logger())
}

// SetupRoutes wires repositories, service, handlers and auth explicitly;
// every dependency is constructed once here and passed down, no package
// globals.
func SetupRoutes(e *echo.Echo, users repositories.UserRepository, tweets repositories.TweetRepository, log *slog.Logger) {
	svc := service.NewUserService(users, tweets, log)
	userHandler := handlers.NewUserHandler(svc)

	e.GET("/health", handlers.HealthCheck)
	userHandler.RegisterPublicRoutes(e)

	usersGroup := e.Group("/users")
	usersGroup.Use(middleware.BasicAuth(svc))
	userHandler.RegisterUserRoutes(usersGroup)

	log.Info("routes configured")
}

package server

import (
	"time"

	"blogapi/internal/config"
	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
	"blogapi/internal/repositories"
	"blogapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Deps are the long-lived resources the HTTP app is built on.
type Deps struct {
	Config *config.Config
	Store  repositories.Store
	// Events may be nil to disable event publishing.
	Events services.EventPublisher
	Log    logrus.FieldLogger
}

// New wires services and handlers into a Fiber app.
func New(deps Deps) *fiber.App {
	cfg := deps.Config

	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire)
	authService := services.NewAuthService(deps.Store.Users(), services.NewBcryptHasher(services.PasswordCost), tokens, deps.Events, deps.Log)
	postService := services.NewPostService(deps.Store, deps.Events, deps.Log)
	commentService := services.NewCommentService(deps.Store, deps.Events, deps.Log)

	validate := handlers.NewValidator()
	authHandler := handlers.NewAuthHandler(authService, validate, cfg.CookieSecure)
	postHandler := handlers.NewPostHandler(postService, commentService, validate)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: middleware.ErrorHandler(deps.Log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(deps.Log))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": deps.Events != nil,
		})
	})

	authRequired := middleware.AuthRequired(tokens)
	authHandler.RegisterRoutes(app, authRequired)
	postHandler.RegisterRoutes(app, authRequired)

	app.Use(middleware.NotFound)
	return app
}

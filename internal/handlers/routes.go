package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/middleware"
	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type Deps struct {
	Store         storage.Storage
	Hub           *realtime.Hub
	Notifier      *realtime.Notifier
	JWTSecret     string
	JWTExpiresMin int
	UploadDir     string
	AllowOrigins  string
}

// NewApp builds the fiber app with every route mounted.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Static("/uploads", d.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		return success(c, fiber.StatusOK, "", fiber.Map{
			"status":  "ok",
			"storage": d.Store.Backend(),
		})
	})

	uploads := Uploads{Dir: d.UploadDir}
	authH := &AuthHandler{Store: d.Store, JWTSecret: d.JWTSecret, Expires: d.JWTExpiresMin}
	userH := &UserHandler{Store: d.Store, Uploads: uploads, Auth: authH}
	serviceH := &ServiceHandler{Store: d.Store, Uploads: uploads}
	jobH := &JobHandler{Store: d.Store, Uploads: uploads}
	appH := &ApplicationHandler{Store: d.Store, Uploads: uploads, Notifier: d.Notifier}
	orderH := &OrderHandler{Store: d.Store, Notifier: d.Notifier}
	reviewH := &ReviewHandler{Store: d.Store, Notifier: d.Notifier}

	auth := []fiber.Handler{
		middleware.JWTFromCookie(d.JWTSecret),
		middleware.AttachJWTLocals(),
	}
	storedRole := func(ctx context.Context, id int) (string, error) {
		u, err := d.Store.GetUser(ctx, id)
		if err != nil || u == nil {
			return "", err
		}
		return string(u.Role), nil
	}
	protected := func(h ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, auth...), h...)
	}

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/me", protected(authH.Me)...)

	api.Get("/users/:id", userH.Get)
	api.Put("/users/:id", protected(userH.Update)...)
	api.Get("/users/:id/services", serviceH.ListByUser)
	api.Get("/users/:id/jobs", jobH.ListByUser)
	api.Get("/users/:id/applications", protected(appH.ListByUser)...)
	api.Get("/users/:id/orders", protected(orderH.ListByUser)...)

	api.Get("/services", serviceH.List)
	api.Get("/services/:id", serviceH.Get)
	api.Post("/services", protected(middleware.RequireRoles(storedRole, string(models.RoleFreelancer)), serviceH.Create)...)
	api.Put("/services/:id", protected(serviceH.Update)...)
	api.Post("/services/:id/orders", protected(orderH.Create)...)
	api.Get("/services/:id/reviews", reviewH.ListForService)
	api.Post("/services/:id/reviews", protected(reviewH.Create)...)

	api.Get("/jobs", jobH.List)
	api.Get("/jobs/:id", jobH.Get)
	api.Post("/jobs", protected(middleware.RequireRoles(storedRole, string(models.RoleEmployer)), jobH.Create)...)
	api.Put("/jobs/:id", protected(jobH.Update)...)
	api.Get("/jobs/:id/applications", protected(appH.ListForJob)...)
	api.Post("/jobs/:id/applications", protected(appH.Create)...)

	api.Put("/applications/:id/status", protected(appH.UpdateStatus)...)
	api.Put("/orders/:id/status", protected(orderH.UpdateStatus)...)

	if d.Hub != nil {
		notifyH := &NotificationHandler{Hub: d.Hub}
		app.Get("/ws/notifications", protected(RequireUpgrade, websocket.New(notifyH.Serve))...)
	}

	return app
}

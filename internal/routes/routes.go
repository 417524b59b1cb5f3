package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxroom/server/internal/handlers"
	"voxroom/server/internal/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check (public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Voxroom API is running",
		})
	})

	// Prometheus metrics (public)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.StrictRateLimiter(), handlers.Register)
	auth.Post("/login", middleware.StrictRateLimiter(), handlers.Login)
	auth.Post("/refresh", middleware.StrictRateLimiter(), handlers.RefreshToken)
	auth.Post("/logout", middleware.AuthMiddleware, handlers.Logout)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetMe)

	// User routes (protected)
	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/:userId", handlers.GetUser)
	users.Put("/me", handlers.UpdateProfile)
	users.Post("/:userId/follow", handlers.FollowUser)
	users.Delete("/:userId/follow", handlers.UnfollowUser)

	// Room routes (protected)
	rooms := api.Group("/rooms", middleware.AuthMiddleware)
	rooms.Post("/", handlers.CreateRoom)
	rooms.Get("/", middleware.RelaxedRateLimiter(), handlers.ListRooms)
	rooms.Get("/search", middleware.RelaxedRateLimiter(), handlers.SearchRooms)
	rooms.Get("/:roomId", handlers.GetRoom)
	rooms.Post("/:roomId/join", handlers.JoinRoom)
	rooms.Post("/leave", handlers.LeaveRoom)
	rooms.Post("/moderators/:userId", handlers.PromoteModerator)
	rooms.Delete("/members/:userId", handlers.RemoveFromRoom)
	rooms.Post("/:roomId/end", handlers.EndRoom)
	rooms.Delete("/:roomId", handlers.DeleteRoom)
	rooms.Get("/:roomId/messages", handlers.GetMessages)

	// Message routes (protected)
	messages := api.Group("/messages", middleware.AuthMiddleware)
	messages.Post("/", middleware.MessageRateLimiter(), handlers.SendMessage)

	// Upload routes (protected)
	uploads := api.Group("/upload", middleware.AuthMiddleware)
	uploads.Post("/avatar", middleware.UploadRateLimiter(), handlers.UploadAvatar)

	// Serve uploaded files (public)
	app.Get("/uploads/avatars/:filename", handlers.GetFile)

	// WebSocket route (protected)
	api.Get("/ws", middleware.AuthMiddleware, handlers.WebSocketUpgrade, websocket.New(handlers.WebSocketHandler))

	// WebSocket stats (protected, for debugging)
	api.Get("/ws/stats", middleware.AuthMiddleware, handlers.GetWebSocketStats)
}

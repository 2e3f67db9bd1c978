package FiberConfig

import (
	"fmt"

	"Bhumi/Controllers"
	"Bhumi/Models"
	"Bhumi/Reconciler"
	"Bhumi/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func SetupRoutes(app *fiber.App, reconciler *Reconciler.AssignmentReconciler) {
	db := Models.DB

	// Initialize handlers
	landController := Controllers.NewLandController(db, reconciler)
	assignedTaskController := Controllers.NewAssignedTaskController(db, reconciler)
	taskController := Controllers.NewTaskController(db)
	notificationController := Controllers.NewNotificationController(db)

	// API group
	api := app.Group("/api")

	// Auth
	api.Post("/Login", Controllers.Login)
	api.Post("/Logout", Controllers.Logout)
	api.Get("/User", middleware.Verify(0), Controllers.User)
	api.Post("/RegisterUser", middleware.Verify(Models.PermissionAdmin), Controllers.RegisterUser)
	api.Get("/FetchUsers", middleware.Verify(Models.PermissionAdmin), Controllers.FetchUsers)
	api.Post("/UpdateToken", middleware.Verify(0), Controllers.UpdateToken)

	// Land routes - creating or editing a land drives the reconciler
	lands := api.Group("/lands", middleware.Verify(Models.PermissionEmployee))
	lands.Get("/", landController.GetLands)
	lands.Get("/:id", landController.GetLand)
	lands.Post("/", middleware.Verify(Models.PermissionManager), landController.CreateLand)
	lands.Put("/:id/tasks", middleware.Verify(Models.PermissionManager), landController.UpdateLandTasks)

	// Task catalog and capability directory
	tasks := api.Group("/tasks", middleware.Verify(Models.PermissionEmployee))
	tasks.Get("/", taskController.GetTasks)
	tasks.Get("/:id/employees", taskController.GetEligibleEmployees)
	tasks.Post("/capabilities", middleware.Verify(Models.PermissionManager), taskController.GrantCapability)

	// Employee workflow actions
	assigned := api.Group("/assigned-tasks", middleware.Verify(Models.PermissionEmployee))
	assigned.Get("/mine", assignedTaskController.GetMyTasks)
	assigned.Post("/:id/start", assignedTaskController.Start)
	assigned.Post("/:id/submit", assignedTaskController.Submit)

	// Admin workflow actions
	assigned.Get("/", middleware.Verify(Models.PermissionManager), assignedTaskController.GetAssignedTasks)
	assigned.Get("/statistics", middleware.Verify(Models.PermissionManager), assignedTaskController.GetStatistics)
	assigned.Post("/:id/approve", middleware.Verify(Models.PermissionManager), assignedTaskController.Approve)
	assigned.Post("/:id/reject", middleware.Verify(Models.PermissionManager), assignedTaskController.Reject)
	assigned.Post("/:id/reassign", middleware.Verify(Models.PermissionManager), assignedTaskController.Reassign)
	assigned.Post("/:id/reset", middleware.Verify(Models.PermissionManager), assignedTaskController.Reset)
	assigned.Post("/:id/mark-complete", middleware.Verify(Models.PermissionManager), assignedTaskController.MarkComplete)
	assigned.Delete("/:id", middleware.Verify(Models.PermissionManager), assignedTaskController.Delete)

	// Notifications
	notifications := api.Group("/notifications", middleware.Verify(0))
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Get("/unread-count", notificationController.GetUnreadCount)
	notifications.Post("/:id/read", notificationController.MarkRead)
}

func FiberConfig(reconciler *Reconciler.AssignmentReconciler) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, reconciler)

	app.Listen(":3000")
}

// Package routes wires controllers to their URL groups. All business
// routes live under /api; auth is mounted at the root like the rest of
// the platform expects.
package routes

import (
	"github.com/DevAngelSanchez/rifas-rest-api/controller"
	"github.com/DevAngelSanchez/rifas-rest-api/kafka"
	"github.com/DevAngelSanchez/rifas-rest-api/middleware"
	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/DevAngelSanchez/rifas-rest-api/service"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func Register(app *fiber.App, db *gorm.DB, events *kafka.Producer, jwtSecret, proofDir string) {
	auth := middleware.AuthRequired(jwtSecret)
	admin := middleware.RoleRequired(model.RoleAdmin)

	registerAuthRoutes(app, db, jwtSecret, auth)

	api := app.Group("/api")
	registerUserRoutes(api, db, auth, admin)
	registerSchoolRoutes(api, db, auth, admin)
	registerRoomRoutes(api, db, auth, admin)
	registerRaffleRoutes(api, db, events, auth, admin)
	registerTicketRoutes(api, db, auth, admin)
	registerInvoiceRoutes(api, db, events, proofDir, auth, admin)
}

func registerAuthRoutes(app *fiber.App, db *gorm.DB, jwtSecret string, auth fiber.Handler) {
	ac := &controller.AuthController{DB: db, JWTSecret: jwtSecret}

	g := app.Group("/auth")
	g.Post("/register", ac.Register)
	g.Post("/login", ac.Login)
	g.Get("/me", auth, ac.Me)
}

func registerUserRoutes(api fiber.Router, db *gorm.DB, auth, admin fiber.Handler) {
	uc := &controller.UserController{DB: db}

	g := api.Group("/users")
	g.Get("/", auth, admin, uc.List)
	g.Get("/:id", auth, admin, uc.Get)
	g.Post("/", auth, admin, uc.Create)
	g.Patch("/:id", auth, admin, uc.Update)
	g.Delete("/:id", auth, admin, uc.Delete)
}

func registerSchoolRoutes(api fiber.Router, db *gorm.DB, auth, admin fiber.Handler) {
	sc := &controller.SchoolController{DB: db}

	g := api.Group("/schools")
	g.Get("/", auth, sc.List)
	g.Get("/:id", auth, sc.Get)
	g.Post("/", auth, admin, sc.Create)
	g.Patch("/:id", auth, admin, sc.Update)
	g.Delete("/:id", auth, admin, sc.Delete)
}

func registerRoomRoutes(api fiber.Router, db *gorm.DB, auth, admin fiber.Handler) {
	rc := &controller.RoomController{DB: db}

	g := api.Group("/rooms")
	g.Get("/", auth, rc.List)
	g.Get("/:id", auth, rc.Get)
	g.Post("/", auth, admin, rc.Create)
	g.Patch("/:id", auth, admin, rc.Update)
	g.Delete("/:id", auth, admin, rc.Delete)
}

func registerRaffleRoutes(api fiber.Router, db *gorm.DB, events *kafka.Producer, auth, admin fiber.Handler) {
	rc := &controller.RaffleController{
		Raffles: &service.RaffleService{DB: db, Events: events},
	}

	g := api.Group("/raffles")
	// "summary" before ":id" so it is not captured as an id.
	g.Get("/summary", auth, admin, rc.Summary)
	g.Get("/", auth, rc.List)
	g.Get("/:id", auth, rc.Get)
	g.Get("/:id/students", auth, admin, rc.Students)
	g.Get("/:id/export", auth, admin, rc.Export)
	g.Post("/", auth, admin, rc.Create)
	g.Patch("/:id", auth, admin, rc.Update)
	g.Delete("/:id", auth, admin, rc.Delete)
}

func registerTicketRoutes(api fiber.Router, db *gorm.DB, auth, admin fiber.Handler) {
	tc := &controller.TicketController{
		Tickets: &service.TicketService{DB: db},
	}

	api.Get("/raffles/:raffleId/tickets", auth, admin, tc.ListByRaffle)
	api.Get("/raffles/:raffleId/tickets/mine", auth, tc.Mine)

	g := api.Group("/tickets")
	g.Get("/:id", auth, tc.Get)
	g.Patch("/:id/assign", auth, admin, tc.Assign)
}

func registerInvoiceRoutes(api fiber.Router, db *gorm.DB, events *kafka.Producer, proofDir string, auth, admin fiber.Handler) {
	ic := &controller.InvoiceController{
		Invoices: &service.InvoiceService{DB: db, Events: events},
		ProofDir: proofDir,
	}

	g := api.Group("/invoices")
	g.Post("/submit-payment", auth, ic.SubmitPayment)
	g.Patch("/pay/:ticketId", auth, ic.MarkTicketPaid)
	g.Patch("/:id/status", auth, admin, ic.UpdateStatus)
	g.Get("/", auth, admin, ic.List)
	g.Get("/:id", auth, ic.Get)
}

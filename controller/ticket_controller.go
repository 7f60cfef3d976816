package controller

import (
	"strconv"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/DevAngelSanchez/rifas-rest-api/service"
	"github.com/gofiber/fiber/v2"
)

type TicketController struct {
	Tickets *service.TicketService
}

// GET /raffles/:raffleId/tickets?status=
func (tc *TicketController) ListByRaffle(c *fiber.Ctx) error {
	raffleID, err := strconv.Atoi(c.Params("raffleId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid raffle id"})
	}

	tickets, err := tc.Tickets.ListByRaffle(uint(raffleID), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tickets": tickets, "count": len(tickets)})
}

// GET /tickets/:id
func (tc *TicketController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	userID := c.Locals("user_id").(uint)
	role := c.Locals("user_role").(string)

	ticket, err := tc.Tickets.Get(uint(id), userID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ticket": ticket})
}

// GET /raffles/:raffleId/tickets/mine
func (tc *TicketController) Mine(c *fiber.Ctx) error {
	raffleID, err := strconv.Atoi(c.Params("raffleId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid raffle id"})
	}

	userID := c.Locals("user_id").(uint)
	tickets, err := tc.Tickets.Mine(uint(raffleID), userID)
	if err != nil {
		return respondError(c, err)
	}

	totalPaid, totalPending := 0, 0
	for _, t := range tickets {
		switch t.Status {
		case model.TicketPaid:
			totalPaid++
		case model.TicketPending:
			totalPending++
		}
	}

	return c.JSON(fiber.Map{
		"tickets": tickets,
		"stats": fiber.Map{
			"totalTickets": len(tickets),
			"totalPaid":    totalPaid,
			"totalPending": totalPending,
		},
	})
}

// PATCH /tickets/:id/assign
func (tc *TicketController) Assign(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var body struct {
		OwnerName  string  `json:"ownerName"`
		OwnerPhone *string `json:"ownerPhone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	ticket, err := tc.Tickets.Assign(uint(id), body.OwnerName, body.OwnerPhone)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ticket assigned", "ticket": ticket})
}

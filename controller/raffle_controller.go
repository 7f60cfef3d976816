package controller

import (
	"fmt"
	"strconv"

	"github.com/DevAngelSanchez/rifas-rest-api/export"
	"github.com/DevAngelSanchez/rifas-rest-api/service"
	"github.com/gofiber/fiber/v2"
)

type RaffleController struct {
	Raffles *service.RaffleService
}

// POST /raffles
func (rc *RaffleController) Create(c *fiber.Ctx) error {
	var in service.CreateRaffleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	in.OrganizerID = c.Locals("user_id").(uint)

	raffle, ticketCount, err := rc.Raffles.Create(in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": fmt.Sprintf("raffle %q created with %d tickets assigned", raffle.Title, ticketCount),
		"raffle":  raffle,
	})
}

// GET /raffles?status=
func (rc *RaffleController) List(c *fiber.Ctx) error {
	raffles, err := rc.Raffles.List(c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"raffles": raffles, "count": len(raffles)})
}

// GET /raffles/summary
func (rc *RaffleController) Summary(c *fiber.Ctx) error {
	summary, err := rc.Raffles.Summarize()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GET /raffles/:id
func (rc *RaffleController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	raffle, stats, err := rc.Raffles.Get(uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"raffle": raffle, "stats": stats})
}

// GET /raffles/:id/students
func (rc *RaffleController) Students(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	students, err := rc.Raffles.Students(uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"raffleId": uint(id), "students": students})
}

// PATCH /raffles/:id
func (rc *RaffleController) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var in service.UpdateRaffleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	raffle, err := rc.Raffles.Update(uint(id), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "raffle updated", "raffle": raffle})
}

// DELETE /raffles/:id
func (rc *RaffleController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	if err := rc.Raffles.Delete(uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "raffle and all its tickets deleted"})
}

// GET /raffles/:id/export
func (rc *RaffleController) Export(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	raffle, _, err := rc.Raffles.Get(uint(id))
	if err != nil {
		return respondError(c, err)
	}

	f, err := export.BuildRaffleReport(raffle)
	if err != nil {
		return respondError(c, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=raffle-%d.xlsx", raffle.ID))
	return c.Send(buf.Bytes())
}

package controller

import (
	"log"

	"github.com/DevAngelSanchez/rifas-rest-api/service"
	"github.com/gofiber/fiber/v2"
)

func kindToHTTP(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindNoRecipients, service.KindEmptyUpdate:
		return fiber.StatusBadRequest
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindIneligible:
		return fiber.StatusConflict
	case service.KindAccessDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps a service error to its HTTP shape. Domain errors
// carry their own message (and field issues for validation failures);
// anything else is logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	if de, ok := service.AsError(err); ok {
		body := fiber.Map{"message": de.Message}
		if len(de.Fields) > 0 {
			body["errors"] = de.Fields
		}
		return c.Status(kindToHTTP(de.Kind)).JSON(body)
	}

	log.Printf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{"message": "something went wrong"})
}

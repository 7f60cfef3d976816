package controller

import (
	"errors"
	"strconv"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SchoolController struct {
	DB *gorm.DB
}

func (sc *SchoolController) List(c *fiber.Ctx) error {
	var schools []model.School
	if err := sc.DB.Preload("Rooms").Order("name asc").Find(&schools).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"schools": schools, "count": len(schools)})
}

func (sc *SchoolController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var school model.School
	if err := sc.DB.Preload("Rooms").First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "school not found"})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"school": school})
}

func (sc *SchoolController) Create(c *fiber.Ctx) error {
	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	if body.Name == "" {
		return c.Status(400).JSON(fiber.Map{"message": "name is required"})
	}

	school := model.School{Name: body.Name, Address: body.Address}
	if err := sc.DB.Create(&school).Error; err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "school created", "school": school})
}

func (sc *SchoolController) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var body struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	var school model.School
	if err := sc.DB.First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "school not found"})
		}
		return respondError(c, err)
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Address != nil {
		updates["address"] = *body.Address
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "at least one field is required to update the school"})
	}

	if err := sc.DB.Model(&school).Updates(updates).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "school updated", "school": school})
}

func (sc *SchoolController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var school model.School
	if err := sc.DB.First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "school not found"})
		}
		return respondError(c, err)
	}

	if err := sc.DB.Delete(&school).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "school deleted"})
}

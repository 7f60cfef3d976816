package controller

import (
	"errors"
	"strconv"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RoomController struct {
	DB *gorm.DB
}

// GET /rooms?schoolId=
func (rc *RoomController) List(c *fiber.Ctx) error {
	q := rc.DB.Preload("School").Order("name asc")
	if schoolID := c.Query("schoolId"); schoolID != "" {
		q = q.Where("school_id = ?", schoolID)
	}

	var rooms []model.Room
	if err := q.Find(&rooms).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"rooms": rooms, "count": len(rooms)})
}

func (rc *RoomController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var room model.Room
	if err := rc.DB.Preload("School").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "room not found"})
		}
		return respondError(c, err)
	}

	var students []model.User
	if err := rc.DB.Where("room_id = ? AND role = ?", room.ID, model.RoleStudent).
		Order("created_at asc").Find(&students).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"room": room, "students": students})
}

func (rc *RoomController) Create(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		SchoolID uint   `json:"schoolId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	if body.Name == "" || body.SchoolID == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "name and schoolId are required"})
	}

	var school model.School
	if err := rc.DB.First(&school, body.SchoolID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid school id"})
	}

	room := model.Room{Name: body.Name, SchoolID: body.SchoolID}
	if err := rc.DB.Create(&room).Error; err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "room created", "room": room})
}

func (rc *RoomController) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var body struct {
		Name *string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	if body.Name == nil {
		return c.Status(400).JSON(fiber.Map{"message": "at least one field is required to update the room"})
	}

	var room model.Room
	if err := rc.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "room not found"})
		}
		return respondError(c, err)
	}

	if err := rc.DB.Model(&room).Update("name", *body.Name).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "room updated", "room": room})
}

func (rc *RoomController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var room model.Room
	if err := rc.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "room not found"})
		}
		return respondError(c, err)
	}

	if err := rc.DB.Delete(&room).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "room deleted"})
}

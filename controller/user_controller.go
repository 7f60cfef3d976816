package controller

import (
	"errors"
	"strconv"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

// GET /users?role=&schoolId=&roomId=
func (uc *UserController) List(c *fiber.Ctx) error {
	q := uc.DB.Preload("School").Preload("Room").Order("created_at desc")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if schoolID := c.Query("schoolId"); schoolID != "" {
		q = q.Where("school_id = ?", schoolID)
	}
	if roomID := c.Query("roomId"); roomID != "" {
		q = q.Where("room_id = ?", roomID)
	}

	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var user model.User
	if err := uc.DB.Preload("School").Preload("Room").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "user not found"})
		}
		return respondError(c, err)
	}

	var tickets []model.Ticket
	if err := uc.DB.Where("owner_id = ?", user.ID).Preload("Raffle").Order("number asc").Find(&tickets).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user, "tickets": tickets})
}

func (uc *UserController) Create(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		SchoolID *uint  `json:"schoolId"`
		RoomID   *uint  `json:"roomId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	if body.Email == "" || len(body.Password) < 6 || body.Name == "" {
		return c.Status(400).JSON(fiber.Map{"message": "email, name and a password of at least 6 characters are required"})
	}
	if body.Role == "" {
		body.Role = model.RoleStudent
	}
	if body.Role != model.RoleAdmin && body.Role != model.RoleStudent {
		return c.Status(400).JSON(fiber.Map{"message": "unknown role"})
	}

	var existing model.User
	if err := uc.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"message": "email is already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	if body.SchoolID != nil {
		var school model.School
		if err := uc.DB.First(&school, *body.SchoolID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "invalid school id"})
		}
	}
	if body.RoomID != nil {
		var room model.Room
		if err := uc.DB.First(&room, *body.RoomID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "invalid room id"})
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, err)
	}

	user := model.User{
		Email:    body.Email,
		Password: string(hashed),
		Name:     body.Name,
		Role:     body.Role,
		SchoolID: body.SchoolID,
		RoomID:   body.RoomID,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "user created", "user": user})
}

func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var body struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		SchoolID *uint   `json:"schoolId"`
		RoomID   *uint   `json:"roomId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	var user model.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "user not found"})
		}
		return respondError(c, err)
	}

	updates := map[string]interface{}{}
	if body.Email != nil {
		updates["email"] = *body.Email
	}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.Role != nil {
		if *body.Role != model.RoleAdmin && *body.Role != model.RoleStudent {
			return c.Status(400).JSON(fiber.Map{"message": "unknown role"})
		}
		updates["role"] = *body.Role
	}
	if body.Password != nil {
		if len(*body.Password) < 6 {
			return c.Status(400).JSON(fiber.Map{"message": "password must be at least 6 characters"})
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			return respondError(c, err)
		}
		updates["password"] = string(hashed)
	}
	if body.SchoolID != nil {
		var school model.School
		if err := uc.DB.First(&school, *body.SchoolID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "invalid school id"})
		}
		updates["school_id"] = *body.SchoolID
	}
	if body.RoomID != nil {
		var room model.Room
		if err := uc.DB.First(&room, *body.RoomID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "invalid room id"})
		}
		updates["room_id"] = *body.RoomID
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "at least one field is required to update the user"})
	}

	if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "user updated", "user": user})
}

// Delete removes the user. Pre-assigned unpaid tickets lose their
// owner reference; paid history stays intact.
func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var user model.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "user not found"})
		}
		return respondError(c, err)
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Ticket{}).
			Where("owner_id = ?", user.ID).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "user deleted"})
}

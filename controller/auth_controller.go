package controller

import (
	"errors"
	"time"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB        *gorm.DB
	JWTSecret string
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}
	if body.Email == "" || len(body.Password) < 6 || body.Name == "" {
		return c.Status(400).JSON(fiber.Map{"message": "email, name and a password of at least 6 characters are required"})
	}
	if body.Role == "" {
		body.Role = model.RoleAdmin
	}
	if body.Role != model.RoleAdmin && body.Role != model.RoleStudent {
		return c.Status(400).JSON(fiber.Map{"message": "unknown role"})
	}

	var existing model.User
	if err := ac.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return c.Status(400).JSON(fiber.Map{"message": "email is already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
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
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "user created", "user": user})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	var user model.User
	if err := ac.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"message": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"message": "invalid credentials"})
	}

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"name": user.Name,
		"exp":  time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ac.JWTSecret))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"token": signed, "user": user})
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user model.User
	err := ac.DB.Preload("School").Preload("Room").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"message": "user not found"})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

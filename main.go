package main

import (
	"fmt"
	"log"
	"os"

	"github.com/DevAngelSanchez/rifas-rest-api/kafka"
	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/DevAngelSanchez/rifas-rest-api/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func initDB() {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASS", "postgres")
	name := getEnv("DB_NAME", "rifasdb")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", host, user, pass, name, port)
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect db:", err)
	}

	if err := DB.AutoMigrate(
		&model.School{},
		&model.Room{},
		&model.User{},
		&model.Raffle{},
		&model.Invoice{},
		&model.Ticket{},
	); err != nil {
		log.Fatal(err)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	initDB()
	jwtSecret := getEnv("JWT_SECRET", "secret")
	proofDir := getEnv("PROOF_DIR", "./public/uploads/proofs")

	events := kafka.NewProducer(os.Getenv("KAFKA_BROKER"))
	defer events.Close()

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowMethods: "GET,HEAD,POST,PUT,PATCH,DELETE",
	}))
	app.Static("/uploads/proofs", proofDir)

	routes.Register(app, DB, events, jwtSecret, proofDir)

	if err := app.Listen(":" + getEnv("PORT", "3000")); err != nil {
		log.Fatal(err)
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

package service

import (
	"fmt"
	"testing"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.School{},
		&model.Room{},
		&model.User{},
		&model.Raffle{},
		&model.Invoice{},
		&model.Ticket{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createRoom(t *testing.T, db *gorm.DB) model.Room {
	t.Helper()

	school := model.School{Name: "Colegio " + t.Name(), Address: "Av. Principal"}
	if err := db.Create(&school).Error; err != nil {
		t.Fatalf("failed to create school: %v", err)
	}

	room := model.Room{Name: "5to A", SchoolID: school.ID}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return room
}

// createStudents registers n students in the room. Insertion order is
// the roster order the allocation engine sees.
func createStudents(t *testing.T, db *gorm.DB, room model.Room, n int) []model.User {
	t.Helper()

	students := make([]model.User, n)
	for i := range students {
		roomID := room.ID
		schoolID := room.SchoolID
		students[i] = model.User{
			Email:    fmt.Sprintf("student%d-%s@test.local", i+1, t.Name()),
			Password: "hashed",
			Name:     fmt.Sprintf("Student %d", i+1),
			Role:     model.RoleStudent,
			SchoolID: &schoolID,
			RoomID:   &roomID,
		}
		if err := db.Create(&students[i]).Error; err != nil {
			t.Fatalf("failed to create student: %v", err)
		}
	}
	return students
}

func createAdmin(t *testing.T, db *gorm.DB) model.User {
	t.Helper()

	admin := model.User{
		Email:    fmt.Sprintf("admin-%s@test.local", t.Name()),
		Password: "hashed",
		Name:     "Admin",
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	return admin
}

func expectKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()

	if err == nil {
		t.Fatal("expected a domain error, got nil")
	}
	de, ok := AsError(err)
	if !ok {
		t.Fatalf("expected a domain error, got %T: %v", err, err)
	}
	if de.Kind != kind {
		t.Fatalf("expected kind %d, got %d (%s)", kind, de.Kind, de.Message)
	}
	return de
}

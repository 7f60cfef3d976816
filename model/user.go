package model

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // "ADMIN" or "STUDENT"
	SchoolID  *uint     `json:"schoolId"`
	School    *School   `json:"school,omitempty"`
	RoomID    *uint     `json:"roomId"`
	Room      *Room     `json:"room,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

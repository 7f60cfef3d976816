package model

import "time"

// Room is a section inside a school; raffles are scoped to one room.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	SchoolID  uint      `json:"schoolId"`
	School    *School   `json:"school,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

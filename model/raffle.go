package model

import "time"

const (
	RaffleDraft     = "DRAFT"
	RaffleActive    = "ACTIVE"
	RaffleClosed    = "CLOSED"
	RaffleCancelled = "CANCELLED"
)

// IsTerminalRaffleStatus reports whether a raffle status admits no
// further transitions. Tickets of a terminal raffle cannot be mutated.
func IsTerminalRaffleStatus(status string) bool {
	return status == RaffleClosed || status == RaffleCancelled
}

type Raffle struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Prize       string     `json:"prize"`
	TicketPrice float64    `json:"ticketPrice"`
	DrawDate    *time.Time `json:"drawDate"`
	RoomID      uint       `json:"roomId"`
	Room        *Room      `json:"room,omitempty"`
	OrganizerID uint       `json:"organizerId"`
	Organizer   *User      `json:"organizer,omitempty"`
	Status      string     `json:"status"`
	Tickets     []Ticket   `gorm:"constraint:OnDelete:CASCADE" json:"tickets,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

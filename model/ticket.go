package model

import "time"

const (
	TicketPending  = "PENDING"
	TicketAssigned = "ASSIGNED"
	TicketPaid     = "PAID"
)

// Ticket is one numbered unit of a raffle. Number is assigned once at
// raffle creation and never changes; a ticket stays on its raffle for
// its whole lifetime.
type Ticket struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RaffleID   uint      `gorm:"uniqueIndex:idx_ticket_raffle_number" json:"raffleId"`
	Raffle     *Raffle   `json:"raffle,omitempty"`
	Number     int       `gorm:"uniqueIndex:idx_ticket_raffle_number" json:"number"`
	OwnerID    *uint     `json:"ownerId"`
	Owner      *User     `json:"owner,omitempty"`
	OwnerName  *string   `json:"ownerName"`
	OwnerPhone *string   `json:"ownerPhone"`
	Status     string    `json:"status"`
	InvoiceID  *uint     `json:"invoiceId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

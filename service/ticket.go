package service

import (
	"errors"
	"fmt"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"gorm.io/gorm"
)

// TicketService covers the ticket read paths and the manual
// assignment of a ticket to a named buyer.
type TicketService struct {
	DB *gorm.DB
}

// Get loads one ticket, visible to admins and to the ticket's owner.
func (s *TicketService) Get(id uint, userID uint, role string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.DB.
		Preload("Raffle").
		Preload("Owner").
		Preload("Owner.Room").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("ticket not found")
		}
		return nil, err
	}

	if !CanAccess(role, ticket.OwnerID, userID) {
		return nil, AccessDenied("you can only view your own tickets")
	}
	return &ticket, nil
}

// ListByRaffle returns a raffle's tickets ordered by number, optionally
// filtered by status.
func (s *TicketService) ListByRaffle(raffleID uint, status string) ([]model.Ticket, error) {
	var raffle model.Raffle
	if err := s.DB.First(&raffle, raffleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("raffle not found")
		}
		return nil, err
	}

	q := s.DB.Where("raffle_id = ?", raffleID).
		Preload("Owner").
		Order("number asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var tickets []model.Ticket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// Mine returns the caller's tickets for a raffle.
func (s *TicketService) Mine(raffleID, userID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.DB.Where("raffle_id = ? AND owner_id = ?", raffleID, userID).
		Preload("Raffle").
		Order("number asc").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// Assign records a named buyer on an unpaid ticket. The ticket moves to
// ASSIGNED; payment still goes through the reconciliation flows.
func (s *TicketService) Assign(id uint, ownerName string, ownerPhone *string) (*model.Ticket, error) {
	if ownerName == "" {
		return nil, Validation("invalid assignment data",
			FieldError{Field: "ownerName", Message: "ownerName is required"})
	}

	var ticket model.Ticket
	if err := s.DB.Preload("Raffle").First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("ticket not found")
		}
		return nil, err
	}
	if ticket.Status == model.TicketPaid {
		return nil, Ineligible(fmt.Sprintf("ticket #%d has already been paid", ticket.Number))
	}
	if ticket.Raffle != nil && model.IsTerminalRaffleStatus(ticket.Raffle.Status) {
		return nil, Ineligible("the raffle has concluded and no longer accepts changes")
	}

	err := s.DB.Model(&ticket).Updates(map[string]interface{}{
		"status":      model.TicketAssigned,
		"owner_name":  ownerName,
		"owner_phone": ownerPhone,
	}).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

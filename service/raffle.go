package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/DevAngelSanchez/rifas-rest-api/allocation"
	"github.com/DevAngelSanchez/rifas-rest-api/kafka"
	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"gorm.io/gorm"
)

// RaffleService orchestrates raffle creation (allocation + atomic
// persistence of the full ticket set) and the later status changes.
type RaffleService struct {
	DB     *gorm.DB
	Events *kafka.Producer
}

type CreateRaffleInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Prize        string     `json:"prize"`
	TicketPrice  float64    `json:"ticketPrice"`
	TotalTickets int        `json:"totalTickets"`
	RoomID       uint       `json:"roomId"`
	DrawDate     *time.Time `json:"drawDate"`
	OrganizerID  uint       `json:"-"`
}

func (in CreateRaffleInput) validate() *Error {
	var fields []FieldError
	if len(in.Title) < 3 {
		fields = append(fields, FieldError{Field: "title", Message: "title must be at least 3 characters"})
	}
	if len(in.Prize) < 3 {
		fields = append(fields, FieldError{Field: "prize", Message: "prize must be described"})
	}
	if in.TicketPrice <= 0 {
		fields = append(fields, FieldError{Field: "ticketPrice", Message: "ticket price must be positive"})
	}
	if in.TotalTickets < 1 {
		fields = append(fields, FieldError{Field: "totalTickets", Message: "a raffle needs at least 1 ticket"})
	}
	if in.RoomID == 0 {
		fields = append(fields, FieldError{Field: "roomId", Message: "roomId is required"})
	}
	if len(fields) > 0 {
		return Validation("invalid raffle data", fields...)
	}
	return nil
}

// Create resolves the room's student roster, runs the allocation engine
// and persists the raffle plus every ticket in one transaction. It
// returns the raffle and the number of tickets created.
func (s *RaffleService) Create(in CreateRaffleInput) (*model.Raffle, int, error) {
	if err := in.validate(); err != nil {
		return nil, 0, err
	}

	var room model.Room
	if err := s.DB.First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, NotFound("room not found")
		}
		return nil, 0, err
	}

	// Roster order is the allocation order: registration time
	// ascending, id as tie-break.
	var studentIDs []uint
	err := s.DB.Model(&model.User{}).
		Where("role = ? AND room_id = ?", model.RoleStudent, in.RoomID).
		Order("created_at asc, id asc").
		Pluck("id", &studentIDs).Error
	if err != nil {
		return nil, 0, err
	}
	if len(studentIDs) == 0 {
		return nil, 0, NoRecipients("there are no students registered in this room to assign tickets to")
	}

	assignments, err := allocation.Distribute(studentIDs, in.TotalTickets)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidTicketCount) {
			return nil, 0, Validation("invalid raffle data",
				FieldError{Field: "totalTickets", Message: "a raffle needs at least 1 ticket"})
		}
		return nil, 0, err
	}
	slots := allocation.Slots(assignments)

	raffle := model.Raffle{
		Title:       in.Title,
		Description: in.Description,
		Prize:       in.Prize,
		TicketPrice: in.TicketPrice,
		DrawDate:    in.DrawDate,
		RoomID:      in.RoomID,
		OrganizerID: in.OrganizerID,
		Status:      model.RaffleActive,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&raffle).Error; err != nil {
			return err
		}

		tickets := make([]model.Ticket, len(slots))
		for i, slot := range slots {
			ownerID := slot.OwnerID
			tickets[i] = model.Ticket{
				RaffleID: raffle.ID,
				Number:   slot.Number,
				OwnerID:  &ownerID,
				Status:   model.TicketPending,
			}
		}
		return tx.CreateInBatches(&tickets, 500).Error
	})
	if err != nil {
		return nil, 0, err
	}

	s.Events.PublishRaffleCreated(map[string]interface{}{
		"raffle_id":     raffle.ID,
		"title":         raffle.Title,
		"room_id":       in.RoomID,
		"total_tickets": len(slots),
		"created_at":    raffle.CreatedAt.Format(time.RFC3339),
	})

	return &raffle, len(slots), nil
}

type UpdateRaffleInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Prize       *string    `json:"prize"`
	TicketPrice *float64   `json:"ticketPrice"`
	DrawDate    *time.Time `json:"drawDate"`
	Status      *string    `json:"status"`
}

// Update applies a partial edit. It never re-runs allocation: the
// ticket set is fixed at creation time. Raffles in a terminal status
// cannot be edited.
func (s *RaffleService) Update(id uint, in UpdateRaffleInput) (*model.Raffle, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		if len(*in.Title) < 3 {
			return nil, Validation("invalid raffle data",
				FieldError{Field: "title", Message: "title must be at least 3 characters"})
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Prize != nil {
		if len(*in.Prize) < 3 {
			return nil, Validation("invalid raffle data",
				FieldError{Field: "prize", Message: "prize must be described"})
		}
		updates["prize"] = *in.Prize
	}
	if in.TicketPrice != nil {
		if *in.TicketPrice <= 0 {
			return nil, Validation("invalid raffle data",
				FieldError{Field: "ticketPrice", Message: "ticket price must be positive"})
		}
		updates["ticket_price"] = *in.TicketPrice
	}
	if in.DrawDate != nil {
		updates["draw_date"] = *in.DrawDate
	}
	if in.Status != nil {
		switch *in.Status {
		case model.RaffleDraft, model.RaffleActive, model.RaffleClosed, model.RaffleCancelled:
			updates["status"] = *in.Status
		default:
			return nil, Validation("invalid raffle data",
				FieldError{Field: "status", Message: "unknown raffle status"})
		}
	}

	if len(updates) == 0 {
		return nil, EmptyUpdate("at least one field is required to update the raffle")
	}

	var raffle model.Raffle
	if err := s.DB.First(&raffle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("raffle not found")
		}
		return nil, err
	}
	if model.IsTerminalRaffleStatus(raffle.Status) {
		return nil, Ineligible(fmt.Sprintf("raffle is %s and can no longer be edited", raffle.Status))
	}

	if err := s.DB.Model(&raffle).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &raffle, nil
}

// Delete removes the raffle and every ticket it owns in one
// transaction. Invoices are a separate aggregate and survive as
// financial records.
func (s *RaffleService) Delete(id uint) error {
	var raffle model.Raffle
	if err := s.DB.First(&raffle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("raffle not found")
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("raffle_id = ?", id).Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Raffle{}, id).Error
	})
}

// TicketStats is the paid/pending breakdown shown alongside a raffle.
type TicketStats struct {
	TotalTickets   int `json:"totalTickets"`
	PaidTickets    int `json:"paidTickets"`
	PendingTickets int `json:"pendingTickets"`
}

// Get returns a raffle with its tickets ordered by number.
func (s *RaffleService) Get(id uint) (*model.Raffle, *TicketStats, error) {
	var raffle model.Raffle
	err := s.DB.
		Preload("Organizer").
		Preload("Room").
		Preload("Tickets", func(db *gorm.DB) *gorm.DB {
			return db.Order("tickets.number asc")
		}).
		Preload("Tickets.Owner").
		First(&raffle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFound("raffle not found")
		}
		return nil, nil, err
	}

	stats := &TicketStats{TotalTickets: len(raffle.Tickets)}
	for _, t := range raffle.Tickets {
		switch t.Status {
		case model.TicketPaid:
			stats.PaidTickets++
		case model.TicketPending:
			stats.PendingTickets++
		}
	}
	return &raffle, stats, nil
}

// List returns raffles newest first, optionally filtered by status.
func (s *RaffleService) List(status string) ([]model.Raffle, error) {
	q := s.DB.Preload("Organizer").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var raffles []model.Raffle
	if err := q.Find(&raffles).Error; err != nil {
		return nil, err
	}
	return raffles, nil
}

// Summary is the dashboard aggregate over all raffles.
type Summary struct {
	ActiveRaffles int64 `json:"activeRaffles"`
	TotalTickets  int64 `json:"totalTickets"`
	PaidTickets   int64 `json:"paidTickets"`
}

func (s *RaffleService) Summarize() (*Summary, error) {
	var out Summary
	if err := s.DB.Model(&model.Raffle{}).Where("status = ?", model.RaffleActive).Count(&out.ActiveRaffles).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Ticket{}).Count(&out.TotalTickets).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Ticket{}).Where("status = ?", model.TicketPaid).Count(&out.PaidTickets).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// TicketRef is a ticket as listed under its student.
type TicketRef struct {
	ID     uint   `json:"id"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

// RaffleStudent groups one student's tickets for a raffle.
type RaffleStudent struct {
	ID      uint        `json:"id"`
	Name    string      `json:"name"`
	Room    *string     `json:"room"`
	Tickets []TicketRef `json:"tickets"`
}

// Students groups a raffle's tickets by their pre-assigned student,
// sorted by student name. Tickets without an owner are skipped.
func (s *RaffleService) Students(raffleID uint) ([]RaffleStudent, error) {
	var raffle model.Raffle
	if err := s.DB.First(&raffle, raffleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("raffle not found")
		}
		return nil, err
	}

	var tickets []model.Ticket
	err := s.DB.Where("raffle_id = ?", raffleID).
		Preload("Owner").
		Preload("Owner.Room").
		Order("number asc").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	byStudent := map[uint]*RaffleStudent{}
	for _, t := range tickets {
		if t.Owner == nil {
			continue
		}
		entry, ok := byStudent[t.Owner.ID]
		if !ok {
			entry = &RaffleStudent{ID: t.Owner.ID, Name: t.Owner.Name}
			if t.Owner.Room != nil {
				name := t.Owner.Room.Name
				entry.Room = &name
			}
			byStudent[t.Owner.ID] = entry
		}
		entry.Tickets = append(entry.Tickets, TicketRef{ID: t.ID, Number: t.Number, Status: t.Status})
	}

	out := make([]RaffleStudent, 0, len(byStudent))
	for _, entry := range byStudent {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

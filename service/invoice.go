package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/DevAngelSanchez/rifas-rest-api/kafka"
	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"gorm.io/gorm"
)

// InvoiceService turns payment submissions into atomic ticket-batch
// transitions plus exactly one invoice per submission.
type InvoiceService struct {
	DB     *gorm.DB
	Events *kafka.Producer
}

type SubmitPaymentInput struct {
	TicketIDs     []uint   `json:"ticketIds"`
	OwnerName     string   `json:"ownerName"`
	OwnerPhone    *string  `json:"ownerPhone"`
	TotalAmount   float64  `json:"totalAmount"`
	PaymentMethod string   `json:"paymentMethod"`
	Reference     *string  `json:"reference"`
	AmountBss     *float64 `json:"amountBss"`
	AmountUsd     *float64 `json:"amountUsd"`
	BcvRate       *float64 `json:"bcvRate"`
	ProofURL      *string  `json:"proofUrl"`
	UserID        uint     `json:"-"`
}

func (in SubmitPaymentInput) validate() *Error {
	var fields []FieldError
	if len(in.TicketIDs) == 0 {
		fields = append(fields, FieldError{Field: "ticketIds", Message: "at least one ticket is required"})
	}
	if in.OwnerName == "" {
		fields = append(fields, FieldError{Field: "ownerName", Message: "ownerName is required"})
	}
	if in.TotalAmount <= 0 {
		fields = append(fields, FieldError{Field: "totalAmount", Message: "totalAmount must be positive"})
	}
	if in.PaymentMethod == "" {
		fields = append(fields, FieldError{Field: "paymentMethod", Message: "paymentMethod is required"})
	}

	// Bolívar methods must report the amount in Bs, cash in dollars
	// the USD amount.
	switch in.PaymentMethod {
	case model.MethodTransferencia, model.MethodPagoMovil:
		if in.AmountBss == nil {
			fields = append(fields, FieldError{Field: "amountBss",
				Message: fmt.Sprintf("amountBss is required for %q payments", in.PaymentMethod)})
		}
	case model.MethodEfectivoUSD:
		if in.AmountUsd == nil {
			fields = append(fields, FieldError{Field: "amountUsd",
				Message: fmt.Sprintf("amountUsd is required for %q payments", in.PaymentMethod)})
		}
	}

	if len(fields) > 0 {
		return Validation("invalid payment data", fields...)
	}
	return nil
}

// SubmitPayment validates the ticket batch and, in one transaction,
// creates a PENDING invoice (an admin confirms or rejects it later) and
// flips every ticket to PAID pointing at it. The status-qualified
// UPDATE inside the transaction is the authoritative eligibility check:
// if a concurrent submission already claimed any of the tickets, the
// affected-row count comes up short and the whole transaction rolls
// back, so a ticket can never be spent twice.
func (s *InvoiceService) SubmitPayment(in SubmitPaymentInput) (*model.Invoice, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tickets []model.Ticket
	if err := s.DB.Where("id IN ?", in.TicketIDs).Find(&tickets).Error; err != nil {
		return nil, err
	}
	if len(tickets) != len(in.TicketIDs) {
		return nil, NotFound("one or more tickets do not exist")
	}

	raffleIDs := map[uint]bool{}
	for _, t := range tickets {
		if t.Status != model.TicketPending {
			return nil, Ineligible(fmt.Sprintf("ticket #%d is %s and cannot be submitted for payment", t.Number, t.Status))
		}
		raffleIDs[t.RaffleID] = true
	}

	// A concluded raffle no longer accepts ticket mutation.
	ids := make([]uint, 0, len(raffleIDs))
	for id := range raffleIDs {
		ids = append(ids, id)
	}
	var closed int64
	err := s.DB.Model(&model.Raffle{}).
		Where("id IN ? AND status IN ?", ids, []string{model.RaffleClosed, model.RaffleCancelled}).
		Count(&closed).Error
	if err != nil {
		return nil, err
	}
	if closed > 0 {
		return nil, Ineligible("the raffle has concluded and no longer accepts payments")
	}

	userID := in.UserID
	invoice := model.Invoice{
		UserID:        &userID,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		Reference:     in.Reference,
		ProofURL:      in.ProofURL,
		AmountBss:     in.AmountBss,
		AmountUsd:     in.AmountUsd,
		BcvRate:       in.BcvRate,
		Status:        model.InvoicePending,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Ticket{}).
			Where("id IN ? AND status = ?", in.TicketIDs, model.TicketPending).
			Updates(map[string]interface{}{
				"status":      model.TicketPaid,
				"invoice_id":  invoice.ID,
				"owner_name":  in.OwnerName,
				"owner_phone": in.OwnerPhone,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(in.TicketIDs)) {
			return Ineligible("one or more tickets were claimed by another payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Tickets").First(&invoice, invoice.ID).Error; err != nil {
		return nil, err
	}

	s.Events.PublishInvoiceCreated(map[string]interface{}{
		"invoice_id":     invoice.ID,
		"user_id":        in.UserID,
		"total_amount":   invoice.TotalAmount,
		"payment_method": invoice.PaymentMethod,
		"ticket_ids":     in.TicketIDs,
		"created_at":     invoice.CreatedAt.Format(time.RFC3339),
	})

	return &invoice, nil
}

// MarkTicketPaid is the administrative single-ticket path: it settles
// one ticket immediately, creating a COMPLETED invoice at the raffle's
// ticket price with no review step.
func (s *InvoiceService) MarkTicketPaid(ticketID uint, paymentMethod, reference string) (*model.Invoice, error) {
	var fields []FieldError
	if paymentMethod == "" {
		fields = append(fields, FieldError{Field: "paymentMethod", Message: "paymentMethod is required"})
	}
	if reference == "" {
		fields = append(fields, FieldError{Field: "reference", Message: "reference is required"})
	}
	if len(fields) > 0 {
		return nil, Validation("invalid payment data", fields...)
	}

	var ticket model.Ticket
	if err := s.DB.Preload("Raffle").First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("ticket not found")
		}
		return nil, err
	}
	if ticket.Raffle == nil {
		return nil, NotFound("ticket not found")
	}
	if ticket.Status == model.TicketPaid {
		return nil, Ineligible(fmt.Sprintf("ticket #%d has already been paid and invoiced", ticket.Number))
	}
	if model.IsTerminalRaffleStatus(ticket.Raffle.Status) {
		return nil, Ineligible("the raffle has concluded and no longer accepts payments")
	}

	ref := reference
	invoice := model.Invoice{
		UserID:        ticket.OwnerID,
		TotalAmount:   ticket.Raffle.TicketPrice,
		PaymentMethod: paymentMethod,
		Reference:     &ref,
		Status:        model.InvoiceCompleted,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status <> ?", ticket.ID, model.TicketPaid).
			Updates(map[string]interface{}{
				"status":     model.TicketPaid,
				"invoice_id": invoice.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return Ineligible(fmt.Sprintf("ticket #%d has already been paid and invoiced", ticket.Number))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Events.PublishInvoiceCreated(map[string]interface{}{
		"invoice_id":     invoice.ID,
		"ticket_id":      ticket.ID,
		"total_amount":   invoice.TotalAmount,
		"payment_method": invoice.PaymentMethod,
		"created_at":     invoice.CreatedAt.Format(time.RFC3339),
	})

	return &invoice, nil
}

// UpdateStatus confirms or rejects a PENDING invoice. Rejection frees
// the tickets: they return to PENDING with no invoice so their owner
// can resubmit.
func (s *InvoiceService) UpdateStatus(id uint, status string) (*model.Invoice, error) {
	if status != model.InvoiceCompleted && status != model.InvoiceFailed {
		return nil, Validation("invalid invoice status",
			FieldError{Field: "status", Message: "status must be COMPLETED or FAILED"})
	}

	var invoice model.Invoice
	if err := s.DB.First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("invoice not found")
		}
		return nil, err
	}
	if invoice.Status != model.InvoicePending {
		return nil, Ineligible(fmt.Sprintf("invoice is already %s", invoice.Status))
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invoice).Update("status", status).Error; err != nil {
			return err
		}
		if status == model.InvoiceFailed {
			return tx.Model(&model.Ticket{}).
				Where("invoice_id = ?", invoice.ID).
				Updates(map[string]interface{}{
					"status":     model.TicketPending,
					"invoice_id": nil,
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Get loads one invoice, enforcing the owner-visibility rule: only an
// admin or the invoice's user may see it.
func (s *InvoiceService) Get(id uint, userID uint, role string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.DB.
		Preload("User").
		Preload("Tickets").
		Preload("Tickets.Raffle").
		First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("invoice not found")
		}
		return nil, err
	}

	if !CanAccess(role, invoice.UserID, userID) {
		return nil, AccessDenied("this invoice does not belong to you")
	}
	return &invoice, nil
}

// List returns invoices newest first with optional status/user filters.
func (s *InvoiceService) List(status string, userID *uint) ([]model.Invoice, error) {
	q := s.DB.Preload("User").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var invoices []model.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

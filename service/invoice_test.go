package service

import (
	"testing"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"gorm.io/gorm"
)

// createActiveRaffle seeds a room with students and an ACTIVE raffle,
// returning the raffle and its tickets ordered by number.
func createActiveRaffle(t *testing.T, db *gorm.DB, studentCount, totalTickets int) (*model.Raffle, []model.Ticket, []model.User) {
	t.Helper()

	room := createRoom(t, db)
	students := createStudents(t, db, room, studentCount)
	admin := createAdmin(t, db)

	svc := &RaffleService{DB: db}
	in := validCreateInput(room.ID, admin.ID)
	in.TotalTickets = totalTickets

	raffle, _, err := svc.Create(in)
	if err != nil {
		t.Fatalf("failed to create raffle: %v", err)
	}

	var tickets []model.Ticket
	if err := db.Where("raffle_id = ?", raffle.ID).Order("number asc").Find(&tickets).Error; err != nil {
		t.Fatalf("failed to load tickets: %v", err)
	}
	return raffle, tickets, students
}

func validSubmitInput(ticketIDs []uint, userID uint) SubmitPaymentInput {
	bss := 1850.0
	rate := 37.0
	return SubmitPaymentInput{
		TicketIDs:     ticketIDs,
		OwnerName:     "María Pérez",
		TotalAmount:   50,
		PaymentMethod: model.MethodTransferencia,
		AmountBss:     &bss,
		BcvRate:       &rate,
		UserID:        userID,
	}
}

func TestSubmitPaymentRequiresTickets(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}

	_, err := svc.SubmitPayment(validSubmitInput(nil, 1))
	de := expectKind(t, err, KindValidation)

	found := false
	for _, f := range de.Fields {
		if f.Field == "ticketIds" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a ticketIds issue, got %v", de.Fields)
	}
}

func TestSubmitPaymentConditionalAmounts(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	cases := []struct {
		method       string
		missingField string
	}{
		{model.MethodTransferencia, "amountBss"},
		{model.MethodPagoMovil, "amountBss"},
		{model.MethodEfectivoUSD, "amountUsd"},
	}

	for _, tc := range cases {
		in := validSubmitInput([]uint{tickets[0].ID}, students[0].ID)
		in.PaymentMethod = tc.method
		in.AmountBss = nil
		in.AmountUsd = nil

		_, err := svc.SubmitPayment(in)
		de := expectKind(t, err, KindValidation)

		found := false
		for _, f := range de.Fields {
			if f.Field == tc.missingField {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected a %s issue, got %v", tc.method, tc.missingField, de.Fields)
		}
	}
}

func TestSubmitPaymentCreatesPendingInvoice(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	ids := []uint{tickets[0].ID, tickets[1].ID}
	phone := "0414-5551234"
	in := validSubmitInput(ids, students[0].ID)
	in.OwnerPhone = &phone

	invoice, err := svc.SubmitPayment(in)
	if err != nil {
		t.Fatalf("SubmitPayment failed: %v", err)
	}

	// The batch flow never auto-completes; an admin reviews it later.
	if invoice.Status != model.InvoicePending {
		t.Errorf("invoice should be PENDING, got %s", invoice.Status)
	}
	if len(invoice.Tickets) != 2 {
		t.Errorf("invoice should reference 2 tickets, got %d", len(invoice.Tickets))
	}

	var paid []model.Ticket
	if err := db.Where("id IN ?", ids).Find(&paid).Error; err != nil {
		t.Fatalf("failed to reload tickets: %v", err)
	}
	for _, ticket := range paid {
		if ticket.Status != model.TicketPaid {
			t.Errorf("ticket #%d should be PAID, got %s", ticket.Number, ticket.Status)
		}
		if ticket.InvoiceID == nil || *ticket.InvoiceID != invoice.ID {
			t.Errorf("ticket #%d not linked to invoice", ticket.Number)
		}
		if ticket.OwnerName == nil || *ticket.OwnerName != "María Pérez" {
			t.Errorf("ticket #%d buyer name not recorded", ticket.Number)
		}
		if ticket.OwnerPhone == nil || *ticket.OwnerPhone != phone {
			t.Errorf("ticket #%d buyer phone not recorded", ticket.Number)
		}
	}
}

func TestSubmitPaymentUnknownTicket(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	_, err := svc.SubmitPayment(validSubmitInput([]uint{tickets[0].ID, 9999}, students[0].ID))
	expectKind(t, err, KindNotFound)
}

func TestSubmitPaymentRejectsNonPendingTickets(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	ids := []uint{tickets[0].ID, tickets[1].ID}
	if _, err := svc.SubmitPayment(validSubmitInput(ids, students[0].ID)); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// An overlapping second submission must fail wholesale: the ticket
	// cannot be spent twice.
	overlap := []uint{tickets[1].ID, tickets[2].ID}
	_, err := svc.SubmitPayment(validSubmitInput(overlap, students[1].ID))
	expectKind(t, err, KindIneligible)

	var invoices int64
	db.Model(&model.Invoice{}).Count(&invoices)
	if invoices != 1 {
		t.Errorf("failed submission leaked an invoice: %d rows", invoices)
	}

	var untouched model.Ticket
	if err := db.First(&untouched, tickets[2].ID).Error; err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	if untouched.Status != model.TicketPending {
		t.Errorf("ticket #%d should still be PENDING, got %s", untouched.Number, untouched.Status)
	}
}

func TestSubmitPaymentPaidTicketLeavesNoInvoice(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	if err := db.Model(&model.Ticket{}).Where("id = ?", tickets[0].ID).
		Update("status", model.TicketPaid).Error; err != nil {
		t.Fatalf("failed to pre-pay ticket: %v", err)
	}

	_, err := svc.SubmitPayment(validSubmitInput([]uint{tickets[0].ID}, students[0].ID))
	expectKind(t, err, KindIneligible)

	var invoices int64
	db.Model(&model.Invoice{}).Count(&invoices)
	if invoices != 0 {
		t.Errorf("failed submission left an invoice behind: %d rows", invoices)
	}
}

func TestSubmitPaymentRejectsConcludedRaffle(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	raffle, tickets, students := createActiveRaffle(t, db, 2, 4)

	if err := db.Model(raffle).Update("status", model.RaffleClosed).Error; err != nil {
		t.Fatalf("failed to close raffle: %v", err)
	}

	_, err := svc.SubmitPayment(validSubmitInput([]uint{tickets[0].ID}, students[0].ID))
	expectKind(t, err, KindIneligible)
}

func TestMarkTicketPaid(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	raffle, tickets, _ := createActiveRaffle(t, db, 2, 4)

	invoice, err := svc.MarkTicketPaid(tickets[0].ID, "Efectivo USD", "ref-42")
	if err != nil {
		t.Fatalf("MarkTicketPaid failed: %v", err)
	}

	// Admin registration settles immediately at the raffle's price.
	if invoice.Status != model.InvoiceCompleted {
		t.Errorf("invoice should be COMPLETED, got %s", invoice.Status)
	}
	if invoice.TotalAmount != raffle.TicketPrice {
		t.Errorf("invoice amount %v, want ticket price %v", invoice.TotalAmount, raffle.TicketPrice)
	}

	var ticket model.Ticket
	if err := db.First(&ticket, tickets[0].ID).Error; err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	if ticket.Status != model.TicketPaid || ticket.InvoiceID == nil || *ticket.InvoiceID != invoice.ID {
		t.Errorf("ticket not settled: status=%s invoiceId=%v", ticket.Status, ticket.InvoiceID)
	}

	// Paying the same ticket again must fail.
	_, err = svc.MarkTicketPaid(tickets[0].ID, "Efectivo USD", "ref-43")
	expectKind(t, err, KindIneligible)
}

func TestMarkTicketPaidNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}

	_, err := svc.MarkTicketPaid(404, "Efectivo USD", "ref-1")
	expectKind(t, err, KindNotFound)
}

func TestUpdateStatusRejectionFreesTickets(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	ids := []uint{tickets[0].ID, tickets[1].ID}
	invoice, err := svc.SubmitPayment(validSubmitInput(ids, students[0].ID))
	if err != nil {
		t.Fatalf("SubmitPayment failed: %v", err)
	}

	if _, err := svc.UpdateStatus(invoice.ID, model.InvoiceFailed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	var freed []model.Ticket
	if err := db.Where("id IN ?", ids).Find(&freed).Error; err != nil {
		t.Fatalf("failed to reload tickets: %v", err)
	}
	for _, ticket := range freed {
		if ticket.Status != model.TicketPending || ticket.InvoiceID != nil {
			t.Errorf("ticket #%d not freed: status=%s invoiceId=%v", ticket.Number, ticket.Status, ticket.InvoiceID)
		}
	}

	// A settled invoice cannot be re-reviewed.
	_, err = svc.UpdateStatus(invoice.ID, model.InvoiceCompleted)
	expectKind(t, err, KindIneligible)
}

func TestUpdateStatusValidatesTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}

	_, err := svc.UpdateStatus(1, model.InvoicePending)
	expectKind(t, err, KindValidation)
}

func TestInvoiceVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := &InvoiceService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	invoice, err := svc.SubmitPayment(validSubmitInput([]uint{tickets[0].ID}, students[0].ID))
	if err != nil {
		t.Fatalf("SubmitPayment failed: %v", err)
	}

	// The owner and any admin can read it.
	if _, err := svc.Get(invoice.ID, students[0].ID, model.RoleStudent); err != nil {
		t.Errorf("owner should see their invoice: %v", err)
	}
	if _, err := svc.Get(invoice.ID, 12345, model.RoleAdmin); err != nil {
		t.Errorf("admin should see any invoice: %v", err)
	}

	// Another student gets AccessDenied, not NotFound: existence is
	// not hidden.
	_, err = svc.Get(invoice.ID, students[1].ID, model.RoleStudent)
	expectKind(t, err, KindAccessDenied)

	_, err = svc.Get(9999, students[0].ID, model.RoleStudent)
	expectKind(t, err, KindNotFound)
}

func TestTicketVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := &TicketService{DB: db}
	_, tickets, students := createActiveRaffle(t, db, 2, 4)

	// tickets[0] belongs to students[0] (base 2 each).
	if _, err := svc.Get(tickets[0].ID, students[0].ID, model.RoleStudent); err != nil {
		t.Errorf("owner should see their ticket: %v", err)
	}

	_, err := svc.Get(tickets[0].ID, students[1].ID, model.RoleStudent)
	expectKind(t, err, KindAccessDenied)
}

func TestAssignTicket(t *testing.T) {
	db := setupTestDB(t)
	svc := &TicketService{DB: db}
	inv := &InvoiceService{DB: db}
	_, tickets, _ := createActiveRaffle(t, db, 2, 4)

	phone := "0424-5559876"
	if _, err := svc.Assign(tickets[0].ID, "Pedro Gómez", &phone); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	var reloaded model.Ticket
	if err := db.First(&reloaded, tickets[0].ID).Error; err != nil {
		t.Fatalf("failed to reload ticket: %v", err)
	}
	if reloaded.Status != model.TicketAssigned {
		t.Errorf("ticket should be ASSIGNED, got %s", reloaded.Status)
	}
	if reloaded.OwnerName == nil || *reloaded.OwnerName != "Pedro Gómez" {
		t.Errorf("buyer name not recorded")
	}

	// A paid ticket cannot be re-assigned.
	if _, err := inv.MarkTicketPaid(tickets[1].ID, "Efectivo USD", "ref-9"); err != nil {
		t.Fatalf("MarkTicketPaid failed: %v", err)
	}
	_, err := svc.Assign(tickets[1].ID, "Otro Comprador", nil)
	expectKind(t, err, KindIneligible)
}

// Package export renders raffle read models as downloadable
// spreadsheets. It is purely presentational.
package export

import (
	"fmt"

	"github.com/DevAngelSanchez/rifas-rest-api/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Tickets"

// BuildRaffleReport writes a raffle's ticket roll into an xlsx
// workbook: one row per ticket with its owner, status and invoice
// reference, plus a totals block at the bottom.
func BuildRaffleReport(raffle *model.Raffle) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headers := []interface{}{"Number", "Student", "Buyer", "Phone", "Status", "Invoice"}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, err
	}

	paid := 0
	for i, t := range raffle.Tickets {
		student := ""
		if t.Owner != nil {
			student = t.Owner.Name
		}
		buyer, phone := "", ""
		if t.OwnerName != nil {
			buyer = *t.OwnerName
		}
		if t.OwnerPhone != nil {
			phone = *t.OwnerPhone
		}
		invoiceRef := ""
		if t.InvoiceID != nil {
			invoiceRef = fmt.Sprintf("INV-%d", *t.InvoiceID)
		}
		if t.Status == model.TicketPaid {
			paid++
		}

		row := []interface{}{t.Number, student, buyer, phone, t.Status, invoiceRef}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	summaryRow := len(raffle.Tickets) + 3
	summary := [][]interface{}{
		{"Raffle", raffle.Title},
		{"Prize", raffle.Prize},
		{"Ticket price", raffle.TicketPrice},
		{"Total tickets", len(raffle.Tickets)},
		{"Paid tickets", paid},
		{"Collected", float64(paid) * raffle.TicketPrice},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", summaryRow+i)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

package controller

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DevAngelSanchez/rifas-rest-api/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxProofSize = 5 * 1024 * 1024 // 5MB

type InvoiceController struct {
	Invoices *service.InvoiceService
	// ProofDir is where uploaded payment proofs are stored; they are
	// served back under /uploads/proofs.
	ProofDir string
}

// POST /invoices/submit-payment
//
// Accepts JSON, or multipart/form-data when a proof file is attached.
func (ic *InvoiceController) SubmitPayment(c *fiber.Ctx) error {
	var in service.SubmitPaymentInput

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		parsed, err := ic.parseMultipart(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"message": err.Error()})
		}
		in = *parsed
	} else if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	in.UserID = c.Locals("user_id").(uint)

	invoice, err := ic.Invoices.SubmitPayment(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "payment submitted for review", "invoice": invoice})
}

func (ic *InvoiceController) parseMultipart(c *fiber.Ctx) (*service.SubmitPaymentInput, error) {
	ticketIDs, err := parseTicketIDs(c.FormValue("ticketIds"))
	if err != nil {
		return nil, err
	}

	totalAmount, _ := strconv.ParseFloat(c.FormValue("totalAmount"), 64)

	in := &service.SubmitPaymentInput{
		TicketIDs:     ticketIDs,
		OwnerName:     c.FormValue("ownerName"),
		OwnerPhone:    optionalString(c.FormValue("ownerPhone")),
		TotalAmount:   totalAmount,
		PaymentMethod: c.FormValue("paymentMethod"),
		Reference:     optionalString(c.FormValue("reference")),
		AmountBss:     optionalFloat(c.FormValue("amountBss")),
		AmountUsd:     optionalFloat(c.FormValue("amountUsd")),
		BcvRate:       optionalFloat(c.FormValue("bcvRate")),
	}

	file, err := c.FormFile("proof")
	if err == nil && file != nil {
		url, err := ic.saveProof(c, file)
		if err != nil {
			return nil, err
		}
		in.ProofURL = &url
	}
	return in, nil
}

// saveProof stores an uploaded image/PDF (≤5MB) under ProofDir with a
// unique name and returns its public URL. File contents are never
// inspected beyond the declared content type.
func (ic *InvoiceController) saveProof(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if file.Size > maxProofSize {
		return "", fmt.Errorf("proof file exceeds the 5MB limit")
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return "", fmt.Errorf("proof must be an image or a PDF")
	}

	if err := os.MkdirAll(ic.ProofDir, 0o755); err != nil {
		return "", err
	}

	name := "proof-" + uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveFile(file, filepath.Join(ic.ProofDir, name)); err != nil {
		return "", err
	}
	return "/uploads/proofs/" + name, nil
}

// PATCH /invoices/pay/:ticketId
func (ic *InvoiceController) MarkTicketPaid(c *fiber.Ctx) error {
	ticketID, err := strconv.Atoi(c.Params("ticketId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid ticket id"})
	}

	var body struct {
		PaymentMethod string `json:"paymentMethod"`
		Reference     string `json:"reference"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	invoice, err := ic.Invoices.MarkTicketPaid(uint(ticketID), body.PaymentMethod, body.Reference)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ticket marked as paid, invoice created", "invoice": invoice})
}

// PATCH /invoices/:id/status
func (ic *InvoiceController) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid payload"})
	}

	invoice, err := ic.Invoices.UpdateStatus(uint(id), body.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "invoice updated", "invoice": invoice})
}

// GET /invoices?status=&userId=
func (ic *InvoiceController) List(c *fiber.Ctx) error {
	var userID *uint
	if raw := c.Query("userId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "invalid userId"})
		}
		u := uint(parsed)
		userID = &u
	}

	invoices, err := ic.Invoices.List(c.Query("status"), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"invoices": invoices, "count": len(invoices)})
}

// GET /invoices/:id
func (ic *InvoiceController) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "invalid id"})
	}

	userID := c.Locals("user_id").(uint)
	role := c.Locals("user_role").(string)

	invoice, err := ic.Invoices.Get(uint(id), userID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"invoice": invoice})
}

func parseTicketIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}

	// Accept a JSON array ("[1,2,3]") or a comma-separated list.
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		return ids, nil
	}

	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid ticketIds value %q", raw)
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

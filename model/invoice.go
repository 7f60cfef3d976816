package model

import "time"

const (
	InvoicePending   = "PENDING"
	InvoiceCompleted = "COMPLETED"
	InvoiceFailed    = "FAILED"
)

// Payment methods understood by the reconciliation flow. Bolívar-based
// methods require amountBss, cash in dollars requires amountUsd.
const (
	MethodTransferencia = "Transferencia"
	MethodPagoMovil     = "Pago Móvil"
	MethodEfectivoUSD   = "Efectivo USD"
)

type Invoice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `json:"userId"`
	User          *User     `json:"user,omitempty"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod"`
	Reference     *string   `json:"reference"`
	ProofURL      *string   `json:"proofUrl"`
	AmountBss     *float64  `json:"amountBss"`
	AmountUsd     *float64  `json:"amountUsd"`
	BcvRate       *float64  `json:"bcvRate"`
	Status        string    `json:"status"`
	Tickets       []Ticket  `json:"tickets,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

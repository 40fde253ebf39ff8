package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del recibo.
const (
	InstallmentPendiente = "Pendiente"
	InstallmentPagado    = "Pagado"
	InstallmentVencido   = "Vencido"
)

// Installment recibo (parcialidad) de una póliza. TotalAmount siempre es la suma
// de sus cuatro componentes.
type Installment struct {
	ID             string
	PolicyID       string
	Number         int // 1-based, contiguo por póliza
	DueDate        time.Time
	PremiumNet     decimal.Decimal
	PolicyFee      decimal.Decimal
	Surcharges     decimal.Decimal
	VATAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         string
	WhatsAppSent   bool
	WhatsAppStatus string
}

// IsPaid indica si el recibo ya fue cobrado.
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentPagado
}

// Package collections decide, para una póliza y un día dados, si corresponde
// enviar un recordatorio de cobranza y con qué texto y urgencia.
//
// Evaluate es puro: no hace I/O ni muta la entrada, y para el mismo par
// (snapshot, today) siempre devuelve lo mismo.
package collections

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/whatsapp"
)

// Textos por defecto cuando falta el join correspondiente.
const (
	PlaceholderClient  = "Cliente"
	PlaceholderInsurer = "Aseguradora"
	PlaceholderLine    = "Seguro"
)

// GraceDays periodo de gracia de las pólizas de pago anual.
const GraceDays = 30

// Tier variante del recordatorio.
type Tier string

const (
	TierDomiciledNotice    Tier = "domiciliado_aviso"
	TierAnnualReminder     Tier = "anual_previo"
	TierAnnualGraceUrgent  Tier = "anual_gracia_urgente"
	TierFractionalReminder Tier = "fraccionado_previo"
	TierFractionalUrgent   Tier = "fraccionado_urgente"
)

// IsUrgent indica si la variante es de escalamiento.
func (t Tier) IsUrgent() bool {
	return t == TierAnnualGraceUrgent || t == TierFractionalUrgent
}

// Snapshot datos de la póliza ya resueltos (joins y recibo objetivo) que consume el motor.
type Snapshot struct {
	PolicyID           string
	ClientName         string
	Phone              string
	PolicyType         string // ramo
	InsurerName        string
	PolicyNumber       string
	AmountDue          decimal.Decimal
	PaymentMethod      entity.PaymentMethod
	StartDate          time.Time
	EndDate            time.Time
	DueDate            time.Time // vencimiento del recibo objetivo
	SubBranch          string
	Notes              string
	CurrentInstallment int
	TotalInstallments  int
	PaymentLink        string
	Currency           string
	Status             string
	IsDomiciled        bool
}

// Category régimen de cobranza; el flag de domiciliación manda sobre la forma de pago.
func (s *Snapshot) Category() entity.PaymentCategory {
	if s.IsDomiciled {
		return entity.CategoryDomiciled
	}
	return s.PaymentMethod.Category()
}

// ReceiptNumber identificador "actual/total" del recibo; ceros cuentan como 1.
func (s *Snapshot) ReceiptNumber() string {
	return fmt.Sprintf("%d/%d", atLeastOne(s.CurrentInstallment), atLeastOne(s.TotalInstallments))
}

// Notification recordatorio listo para el colaborador de envío.
type Notification struct {
	PolicyID           string               `json:"policy_id"`
	PolicyNumber       string               `json:"policy_number"`
	ClientName         string               `json:"client_name"`
	RecipientPhone     string               `json:"phone"`
	RecipientAvailable bool                 `json:"recipient_available"`
	MessageBody        string               `json:"message"`
	UrgencyDays        int                  `json:"urgency_days"`
	PaymentMethod      entity.PaymentMethod `json:"payment_method"`
	Tier               Tier                 `json:"tier"`
	IsDomiciled        bool                 `json:"is_domiciled"`
	PaymentLink        string               `json:"payment_link,omitempty"`
	ReceiptNumber      string               `json:"receipt_number"`
	WhatsAppLink       string               `json:"whatsapp_link,omitempty"`
}

// DaysRemaining días de calendario entre today y due, comparando solo la fecha
// (cada una en su propia zona). Negativo si due ya pasó.
func DaysRemaining(due, today time.Time) int {
	return int(civil(due).Sub(civil(today)).Hours() / 24)
}

// Classify aplica las ventanas de disparo de cada régimen.
//
//	Domiciliado:  0 < d ≤ 7
//	Anual:        0 < d ≤ 21, o −30 < d ≤ −20 (gracia por vencer)
//	Fraccionado:  0 < d ≤ 10, y 0 ≤ d ≤ 2 escala a urgente
//
// En d == 0 solo dispara el fraccionado urgente (último día para pagar).
func Classify(category entity.PaymentCategory, d int) (Tier, bool) {
	switch category {
	case entity.CategoryDomiciled:
		if d > 0 && d <= 7 {
			return TierDomiciledNotice, true
		}
	case entity.CategoryFractional:
		tier, ok := Tier(""), false
		if d > 0 && d <= 10 {
			tier, ok = TierFractionalReminder, true
		}
		// La urgencia se evalúa después y sobrescribe.
		if d >= 0 && d <= 2 {
			tier, ok = TierFractionalUrgent, true
		}
		return tier, ok
	default:
		if d > 0 && d <= 21 {
			return TierAnnualReminder, true
		}
		if d > -GraceDays && d <= -20 {
			return TierAnnualGraceUrgent, true
		}
	}
	return "", false
}

// Evaluate devuelve el recordatorio que corresponde hoy o nil.
// Nunca falla: fecha de vencimiento vacía equivale a "no vence", montos ilegibles ya llegan en 0.
func Evaluate(s Snapshot, today time.Time) *Notification {
	if s.Status == entity.PolicyStatusCancelada {
		return nil
	}
	if s.DueDate.IsZero() {
		return nil
	}

	d := DaysRemaining(s.DueDate, today)
	tier, ok := Classify(s.Category(), d)
	if !ok {
		return nil
	}

	s = withPlaceholders(s)
	body := Render(tier, s, d)
	phone, reachable := whatsapp.NormalizePhone(s.Phone)

	n := &Notification{
		PolicyID:           s.PolicyID,
		PolicyNumber:       s.PolicyNumber,
		ClientName:         s.ClientName,
		RecipientPhone:     phone,
		RecipientAvailable: reachable,
		MessageBody:        body,
		UrgencyDays:        d,
		PaymentMethod:      s.PaymentMethod,
		Tier:               tier,
		IsDomiciled:        s.IsDomiciled,
		PaymentLink:        s.PaymentLink,
		ReceiptNumber:      s.ReceiptNumber(),
	}
	if reachable {
		n.WhatsAppLink = whatsapp.Link(phone, body)
	}
	return n
}

func withPlaceholders(s Snapshot) Snapshot {
	if s.ClientName == "" {
		s.ClientName = PlaceholderClient
	}
	if s.InsurerName == "" {
		s.InsurerName = PlaceholderInsurer
	}
	if s.PolicyType == "" {
		s.PolicyType = PlaceholderLine
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = entity.PaymentAnual
	}
	return s
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

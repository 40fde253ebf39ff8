package collections

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Seguros-api/pkg/money"
)

// blank texto para campos vacíos; la línea nunca se omite.
const blank = "—"

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate fecha larga en español: "15 de marzo de 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return blank
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// CancellationDate fecha en la que una póliza anual sin pago pierde la cobertura.
func CancellationDate(due time.Time) time.Time {
	return due.AddDate(0, 0, GraceDays)
}

// Render arma el mensaje: saludo según la variante, ficha de la póliza,
// cláusula de gracia (o de no gracia) y enlace de pago si existe.
func Render(tier Tier, s Snapshot, d int) string {
	var b strings.Builder
	amount := money.FormatWithSymbol(s.AmountDue, s.Currency)
	deadline := s.DueDate

	switch tier {
	case TierDomiciledNotice:
		fmt.Fprintf(&b, "¡Hola *%s*! 💳 Te avisamos que el *%s* %s intentará el cargo automático de tu seguro por *%s*.",
			s.ClientName, FormatDate(s.DueDate), s.InsurerName, amount)
	case TierAnnualReminder:
		fmt.Fprintf(&b, "¡Hola *%s*! 👋 El próximo *%s* vence el recibo de tu seguro de %s con %s.",
			s.ClientName, FormatDate(s.DueDate), s.PolicyType, s.InsurerName)
	case TierAnnualGraceUrgent:
		deadline = CancellationDate(s.DueDate)
		fmt.Fprintf(&b, "⚠️ ¡Hola *%s*! Tu seguro de %s está en *periodo de gracia* y estamos a días de la cancelación definitiva del contrato.",
			s.ClientName, s.PolicyType)
	case TierFractionalReminder:
		fmt.Fprintf(&b, "¡Hola *%s*! 👋 Ya se acerca la fecha de pago de la fracción de tu seguro de %s.",
			s.ClientName, s.PolicyType)
	case TierFractionalUrgent:
		fmt.Fprintf(&b, "🚨 ¡Hola *%s*! %s es el último día para que se refleje el pago de tu recibo del seguro de %s.",
			s.ClientName, lastDayLabel(d), s.PolicyType)
	}

	b.WriteString("\n\n")
	writeField(&b, "Asegurado", s.ClientName)
	writeField(&b, "Aseguradora", s.InsurerName)
	writeField(&b, "Ramo", branch(s.PolicyType, s.SubBranch))
	writeField(&b, "Póliza", s.PolicyNumber)
	writeField(&b, "Recibo", s.ReceiptNumber())
	writeField(&b, "Vigencia", FormatDate(s.StartDate)+" al "+FormatDate(s.EndDate))
	writeField(&b, "Forma de pago", string(s.PaymentMethod))
	writeField(&b, "Fecha límite", FormatDate(deadline))
	writeField(&b, "Total", amount)
	b.WriteString("\n")

	b.WriteString(clause(tier, s))

	if link := strings.TrimSpace(s.PaymentLink); link != "" {
		fmt.Fprintf(&b, "\n\n🔗 Paga aquí: %s", link)
	}
	return b.String()
}

func clause(tier Tier, s Snapshot) string {
	switch tier {
	case TierDomiciledNotice:
		return "✅ Solo asegúrate de tener fondos o línea de crédito disponible para que el cargo pase a la primera y no te quedes sin protección."
	case TierAnnualReminder:
		return fmt.Sprintf("Cuentas con un periodo de gracia de %d días, pero *te recomendamos liquidarlo antes del %s*. "+
			"Si tienes un siniestro durante el periodo de gracia, la aseguradora puede exigir el pago total de la prima antes de atenderte.",
			GraceDays, FormatDate(s.DueDate))
	case TierAnnualGraceUrgent:
		return fmt.Sprintf("Tu fecha máxima para no perder tus coberturas es el *%s*. "+
			"Un siniestro hoy implicaría pagar deducible y prima de golpe.",
			FormatDate(CancellationDate(s.DueDate)))
	case TierFractionalUrgent:
		return "Al ser un pago fraccionado *no hay días de gracia*: si el pago no entra a tiempo, la cobertura se pausa y habría que tramitar la rehabilitación."
	default:
		return "Al ser un pago fraccionado *no hay días de gracia*: si el pago no se refleja en la fecha límite, la protección se pausa en automático."
	}
}

func lastDayLabel(d int) string {
	switch d {
	case 0:
		return "Hoy"
	case 1:
		return "Mañana"
	default:
		return "Pasado mañana"
	}
}

func branch(line, sub string) string {
	if strings.TrimSpace(sub) == "" {
		return line
	}
	return line + " / " + sub
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = blank
	}
	fmt.Fprintf(b, "*%s:* %s\n", label, value)
}

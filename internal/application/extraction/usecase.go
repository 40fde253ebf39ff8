// Package extraction convierte la lectura por IA de una póliza en PDF en un borrador
// validado: fechas, moneda, forma de pago y económicos pasan por las mismas reglas
// que la captura manual.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Seguros-api/internal/application/ports"
	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/pkg/logger"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// MaxPDFSize tamaño máximo aceptado del archivo.
const MaxPDFSize = 10 << 20

// timeout máximo de la llamada al servicio de IA.
const extractTimeout = 60 * time.Second

var pdfMagic = []byte("%PDF-")

// Draft borrador de póliza a partir de la lectura por IA. Nada se guarda.
type Draft struct {
	PolicyNumber  string
	InsurerName   string
	StartDate     time.Time
	EndDate       time.Time
	Currency      string
	PaymentMethod entity.PaymentMethod
	Economics     entity.Economics
	// Lo que la IA leyó como IVA y prima total, para comparar con lo calculado.
	ReportedVAT   decimal.Decimal
	ReportedTotal decimal.Decimal
	Missing       []string
	Warnings      []premium.Warning
}

// UseCase caso de uso de extracción.
type UseCase struct {
	extractor ports.PolicyExtractor
	log       *logger.Logger
}

// NewUseCase construye el caso de uso. extractor nil deja el servicio deshabilitado.
func NewUseCase(extractor ports.PolicyExtractor, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{extractor: extractor, log: log.Component("extraction")}
}

// ParsePolicyPDF envía el PDF al servicio de IA y valida su respuesta.
func (uc *UseCase) ParsePolicyPDF(ctx context.Context, pdf []byte) (*Draft, error) {
	if uc.extractor == nil {
		return nil, domain.ErrExtractorUnavailable
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, domain.ErrInvalidDocument
	}
	if len(pdf) > MaxPDFSize {
		return nil, fmt.Errorf("%w: el archivo supera %d MB", domain.ErrInvalidInput, MaxPDFSize>>20)
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	fields, err := uc.extractor.ExtractPolicyFields(ctx, pdf)
	if err != nil {
		uc.log.Error().Err(err).Int("bytes", len(pdf)).Msg("extracción de póliza fallida")
		return nil, fmt.Errorf("extraer póliza: %w", err)
	}

	d := Sanitize(fields)
	uc.log.Info().
		Str("policy_number", d.PolicyNumber).
		Strs("missing", d.Missing).
		Int("warnings", len(d.Warnings)).
		Msg("póliza extraída")
	return d, nil
}

// Sanitize valida el mapa devuelto por la IA. Nunca falla: lo ilegible queda vacío
// y se reporta en Missing.
func Sanitize(fields map[string]any) *Draft {
	d := &Draft{}
	if fields == nil {
		fields = map[string]any{}
	}

	d.PolicyNumber = str(fields, "policy_number")
	d.InsurerName = str(fields, "insurer_name")
	d.StartDate = date(fields, "start_date")
	d.EndDate = date(fields, "end_date")
	d.Currency = currency(str(fields, "currency"))
	d.PaymentMethod = entity.ParsePaymentMethod(str(fields, "payment_method"))

	res := premium.Compute(premium.Input{
		PremiumNet: raw(fields, "premium_net"),
		PolicyFee:  raw(fields, "policy_fee"),
		Surcharge: premium.Adjustment{
			Amount: raw(fields, "surcharge_amount"),
			Source: premium.EditedAmount,
		},
	})
	d.Economics = res.Economics
	d.Warnings = res.Warnings
	d.ReportedVAT = money.Round(money.ParseAny(fields["vat_amount"]))
	d.ReportedTotal = money.Round(money.ParseAny(fields["premium_total"]))

	required := []struct {
		key     string
		missing bool
	}{
		{"policy_number", d.PolicyNumber == ""},
		{"insurer_name", d.InsurerName == ""},
		{"start_date", d.StartDate.IsZero()},
		{"end_date", d.EndDate.IsZero()},
		{"premium_net", isMissing(fields["premium_net"])},
	}
	for _, r := range required {
		if r.missing {
			d.Missing = append(d.Missing, r.key)
		}
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		d.Warnings = append(d.Warnings, premium.Warning{Field: "end_date", Message: "el fin de vigencia es anterior al inicio"})
	}
	if d.ReportedTotal.IsPositive() && d.ReportedTotal.Sub(d.Economics.PremiumTotal).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		d.Warnings = append(d.Warnings, premium.Warning{
			Field:   "premium_total",
			Message: fmt.Sprintf("la póliza indica %s y el cálculo da %s",
				money.Format(d.ReportedTotal), money.Format(d.Economics.PremiumTotal)),
		})
	}
	return d
}

func str(fields map[string]any, key string) string {
	if isMissing(fields[key]) {
		return ""
	}
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func raw(fields map[string]any, key string) money.Raw {
	if isMissing(fields[key]) {
		return ""
	}
	return money.Raw(money.ParseAny(fields[key]).String())
}

// date acepta solo YYYY-MM-DD; cualquier otra cosa queda vacía.
func date(fields map[string]any, key string) time.Time {
	t, err := time.Parse(time.DateOnly, str(fields, key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func currency(s string) string {
	switch c := strings.ToUpper(s); c {
	case "USD", "EUR", "MXN":
		return c
	case "DLLS", "DOLARES", "DÓLARES", "US$":
		return "USD"
	default:
		return "MXN"
	}
}

func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "null")
	default:
		return false
	}
}

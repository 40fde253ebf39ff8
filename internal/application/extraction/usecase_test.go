package extraction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Seguros-api/internal/application/extraction"
	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

type fakeExtractor struct {
	fields map[string]any
	err    error
	calls  int
}

func (f *fakeExtractor) ExtractPolicyFields(ctx context.Context, pdf []byte) (map[string]any, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("se esperaba un contexto con tiempo límite")
	}
	return f.fields, f.err
}

var samplePDF = []byte("%PDF-1.7\n...contenido...")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParsePolicyPDF_RespuestaCompleta(t *testing.T) {
	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"policy_number": " AU-77 ",
		"insurer_name": "Quálitas",
		"start_date": "2025-02-01",
		"end_date": "2026-02-01",
		"currency": "mxn",
		"payment_method": "Pago Semestral",
		"premium_net": 10000,
		"policy_fee": "$500.00",
		"surcharge_amount": "500",
		"vat_amount": 1760,
		"premium_total": "12,760.00"
	}`), &fields))

	uc := extraction.NewUseCase(&fakeExtractor{fields: fields}, nil)
	d, err := uc.ParsePolicyPDF(context.Background(), samplePDF)

	require.NoError(t, err)
	assert.Equal(t, "AU-77", d.PolicyNumber)
	assert.Equal(t, "Quálitas", d.InsurerName)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), d.StartDate)
	assert.Equal(t, "MXN", d.Currency)
	assert.Equal(t, entity.PaymentSemestral, d.PaymentMethod)
	assert.True(t, d.Economics.SurchargeAmount.Equal(dec("500")))
	assert.True(t, d.Economics.SurchargePercent.Equal(dec("5")))
	assert.True(t, d.Economics.PremiumTotal.Equal(dec("12760")))
	assert.True(t, d.ReportedTotal.Equal(dec("12760")))
	assert.Empty(t, d.Missing)
	assert.Empty(t, d.Warnings)
}

func TestSanitize_RespuestaNoConfiable(t *testing.T) {
	d := extraction.Sanitize(map[string]any{
		"policy_number":  nil,
		"start_date":     "01/02/2025",
		"end_date":       "2024-01-01",
		"currency":       "dólares",
		"payment_method": 12,
		"premium_net":    -3000.5,
		"policy_fee":     "null",
		"premium_total":  "9999",
	})

	assert.Empty(t, d.PolicyNumber)
	assert.True(t, d.StartDate.IsZero(), "solo se acepta YYYY-MM-DD")
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, entity.PaymentAnual, d.PaymentMethod)
	assert.True(t, d.Economics.PremiumNet.IsZero(), "negativos se llevan a cero")
	assert.True(t, d.Economics.PolicyFee.IsZero())
	assert.ElementsMatch(t, []string{"policy_number", "insurer_name", "start_date"}, d.Missing)

	fields := make([]string, 0, len(d.Warnings))
	for _, w := range d.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Contains(t, fields, "premium_net")
	assert.Contains(t, fields, "premium_total")
}

func TestSanitize_MapaNil(t *testing.T) {
	d := extraction.Sanitize(nil)
	assert.Equal(t, "MXN", d.Currency)
	assert.Len(t, d.Missing, 5)
}

func TestParsePolicyPDF_Errores(t *testing.T) {
	_, err := extraction.NewUseCase(nil, nil).ParsePolicyPDF(context.Background(), samplePDF)
	assert.ErrorIs(t, err, domain.ErrExtractorUnavailable)

	ext := &fakeExtractor{}
	uc := extraction.NewUseCase(ext, nil)

	_, err = uc.ParsePolicyPDF(context.Background(), []byte("PK\x03\x04 no es pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.Zero(t, ext.calls)

	ext.err = errors.New("HTTP 529")
	_, err = uc.ParsePolicyPDF(context.Background(), samplePDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 529")
}

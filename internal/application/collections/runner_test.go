package collections_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcollections "github.com/jhoicas/Seguros-api/internal/application/collections"
	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakePortfolio struct {
	policies []entity.PortfolioPolicy
	err      error
}

func (f *fakePortfolio) ListActive(ctx context.Context) ([]entity.PortfolioPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.PortfolioPolicy, 0, len(f.policies))
	for _, p := range f.policies {
		if !p.Policy.IsCancelled() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePortfolio) GetPortfolioPolicy(ctx context.Context, id string) (*entity.PortfolioPolicy, error) {
	for i := range f.policies {
		if f.policies[i].Policy.ID == id {
			return &f.policies[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeInstallments struct {
	mu      sync.Mutex
	rows    map[string][]entity.Installment
	failFor map[string]error
	delay   time.Duration
	updates []string
}

func newFakeInstallments() *fakeInstallments {
	return &fakeInstallments{rows: map[string][]entity.Installment{}, failFor: map[string]error{}}
}

func (f *fakeInstallments) ListByPolicy(ctx context.Context, policyID string) ([]entity.Installment, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[policyID]; err != nil {
		return nil, err
	}
	return append([]entity.Installment(nil), f.rows[policyID]...), nil
}

func (f *fakeInstallments) ReplaceForPolicy(ctx context.Context, policyID string, rows []entity.Installment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[policyID] = append([]entity.Installment(nil), rows...)
	return nil
}

func (f *fakeInstallments) UpdateWhatsAppStatus(ctx context.Context, policyID string, number int, sent bool, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows[policyID] {
		if f.rows[policyID][i].Number == number {
			f.rows[policyID][i].WhatsAppSent = sent
			f.rows[policyID][i].WhatsAppStatus = status
			f.updates = append(f.updates, fmt.Sprintf("%s#%d=%s", policyID, number, status))
			return nil
		}
	}
	return domain.ErrNotFound
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	mexico = mustLocation("America/Mexico_City")
	today  = time.Date(2025, time.March, 10, 8, 0, 0, 0, mexico)
)

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

func day(offset int) time.Time {
	return time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func portfolioPolicy(id, number string, method entity.PaymentMethod, endOffset int) entity.PortfolioPolicy {
	return entity.PortfolioPolicy{
		Policy: entity.Policy{
			ID:                 id,
			PolicyNumber:       number,
			Status:             entity.PolicyStatusVigente,
			PaymentMethod:      method,
			StartDate:          day(endOffset).AddDate(-1, 0, 0),
			EndDate:            day(endOffset),
			Currency:           "MXN",
			TotalInstallments:  1,
			CurrentInstallment: 1,
			Economics: entity.Economics{
				PremiumNet:   decimal.NewFromInt(10000),
				PremiumTotal: decimal.NewFromInt(12180),
			},
		},
		Client:   &entity.Client{ID: "cli-" + id, FirstName: "Ana", LastName: "López", Phone: "5512345678"},
		Insurer:  &entity.Insurer{ID: "ins-1", Name: "Grupo Nacional Provincial", Alias: "GNP"},
		LineName: "Autos",
	}
}

func newUseCase(p *fakePortfolio, inst *fakeInstallments, cfg appcollections.Config) *appcollections.UseCase {
	if cfg.Location == nil {
		cfg.Location = mexico
	}
	return appcollections.NewUseCase(p, inst, cfg, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// RunDaily
// ──────────────────────────────────────────────────────────────────────────────

func TestRunDaily_FiltraYOrdenaPorUrgencia(t *testing.T) {
	cancelled := portfolioPolicy("p-cancel", "C-1", entity.PaymentAnual, 10)
	cancelled.Policy.Status = entity.PolicyStatusCancelada

	portfolio := &fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-anual", "A-1", entity.PaymentAnual, 15),
		portfolioPolicy("p-lejos", "A-2", entity.PaymentAnual, 60),
		portfolioPolicy("p-gracia", "A-3", entity.PaymentContado, -25),
		cancelled,
	}}
	inst := newFakeInstallments()
	inst.rows["p-trim"] = []entity.Installment{
		{Number: 1, DueDate: day(-80), TotalAmount: decimal.NewFromInt(3000), Status: entity.InstallmentPagado},
		{Number: 2, DueDate: day(1), TotalAmount: decimal.NewFromInt(3045), Status: entity.InstallmentPendiente},
		{Number: 3, DueDate: day(92), TotalAmount: decimal.NewFromInt(3045), Status: entity.InstallmentPendiente},
	}
	portfolio.policies = append(portfolio.policies, portfolioPolicy("p-trim", "T-1", entity.PaymentTrimestral, 280))

	uc := newUseCase(portfolio, inst, appcollections.Config{Concurrency: 2})
	res, err := uc.RunDaily(context.Background(), today)

	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.Equal(t, 4, res.Evaluated)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Notifications, 3)

	assert.Equal(t, "p-gracia", res.Notifications[0].PolicyID)
	assert.Equal(t, collections.TierAnnualGraceUrgent, res.Notifications[0].Tier)

	assert.Equal(t, "p-trim", res.Notifications[1].PolicyID)
	assert.Equal(t, collections.TierFractionalUrgent, res.Notifications[1].Tier)
	assert.Equal(t, "2/3", res.Notifications[1].ReceiptNumber)
	assert.Contains(t, res.Notifications[1].MessageBody, "$3,045.00")

	assert.Equal(t, "p-anual", res.Notifications[2].PolicyID)
	assert.Equal(t, 15, res.Notifications[2].UrgencyDays)
	assert.Equal(t, "5512345678", res.Notifications[2].RecipientPhone)
}

func TestRunDaily_Idempotente(t *testing.T) {
	portfolio := &fakePortfolio{}
	for i := 0; i < 20; i++ {
		portfolio.policies = append(portfolio.policies,
			portfolioPolicy(fmt.Sprintf("p-%02d", i), fmt.Sprintf("N-%02d", i%5), entity.PaymentAnual, 5+i%3))
	}
	uc := newUseCase(portfolio, newFakeInstallments(), appcollections.Config{Concurrency: 4})

	first, err := uc.RunDaily(context.Background(), today)
	require.NoError(t, err)
	second, err := uc.RunDaily(context.Background(), today)
	require.NoError(t, err)

	assert.Len(t, first.Notifications, 20)
	assert.Equal(t, first.Notifications, second.Notifications)
}

func TestRunDaily_DatosIncompletosSeMarcanNoSeExcluyen(t *testing.T) {
	sinCliente := portfolioPolicy("p-1", "A-1", entity.PaymentAnual, 10)
	sinCliente.Client = nil
	sinCliente.Insurer = nil
	sinCliente.LineName = ""

	sinTelefono := portfolioPolicy("p-2", "A-2", entity.PaymentAnual, 10)
	sinTelefono.Client.Phone = ""

	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{sinCliente, sinTelefono}},
		newFakeInstallments(), appcollections.Config{})
	res, err := uc.RunDaily(context.Background(), today)

	require.NoError(t, err)
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, collections.PlaceholderClient, res.Notifications[0].ClientName)
	assert.False(t, res.Notifications[0].RecipientAvailable)
	assert.False(t, res.Notifications[1].RecipientAvailable)

	require.Len(t, res.Flagged, 2)
	assert.ElementsMatch(t,
		[]string{appcollections.FlagMissingClient, appcollections.FlagMissingInsurer, appcollections.FlagMissingLine},
		res.Flagged[0].Reasons)
	assert.Equal(t, []string{appcollections.FlagMissingPhone}, res.Flagged[1].Reasons)
}

func TestRunDaily_TelefonoInvalidoSeMarca(t *testing.T) {
	corto := portfolioPolicy("p-1", "A-1", entity.PaymentAnual, 10)
	corto.Client.Phone = "123"

	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{corto}},
		newFakeInstallments(), appcollections.Config{})
	res, err := uc.RunDaily(context.Background(), today)

	require.NoError(t, err)
	require.Len(t, res.Notifications, 1)
	assert.False(t, res.Notifications[0].RecipientAvailable)
	require.Len(t, res.Flagged, 1)
	assert.Equal(t, []string{appcollections.FlagMissingPhone}, res.Flagged[0].Reasons)
}

func TestRunDaily_FechaExplicitaEnUTCConservaElDia(t *testing.T) {
	// 2025-03-31 anual: faltan 21 días desde el 10 de marzo, límite de la ventana.
	portfolio := &fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-anual", "A-1", entity.PaymentAnual, 21),
	}}
	uc := newUseCase(portfolio, newFakeInstallments(), appcollections.Config{})

	res, err := uc.RunDaily(context.Background(), time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	y, m, d := res.Date.Date()
	assert.Equal(t, []int{2025, 3, 10}, []int{y, int(m), d}, "la fecha no se recorre al día anterior")
	assert.Equal(t, mexico, res.Date.Location())
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, 21, res.Notifications[0].UrgencyDays)
}

func TestRunDaily_ErrorDeLecturaNoAbortaLaCorrida(t *testing.T) {
	inst := newFakeInstallments()
	inst.failFor["p-1"] = errors.New("conexión reiniciada")

	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-1", "A-1", entity.PaymentAnual, 10),
		portfolioPolicy("p-2", "A-2", entity.PaymentAnual, 10),
	}}, inst, appcollections.Config{})

	res, err := uc.RunDaily(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "p-2", res.Notifications[0].PolicyID)
	require.Len(t, res.Flagged, 1)
	assert.Equal(t, "p-1", res.Flagged[0].PolicyID)
}

func TestRunDaily_TodosLosRecibosPagados(t *testing.T) {
	inst := newFakeInstallments()
	inst.rows["p-1"] = []entity.Installment{
		{Number: 1, DueDate: day(1), Status: entity.InstallmentPagado},
	}
	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-1", "M-1", entity.PaymentMensual, 1),
	}}, inst, appcollections.Config{})

	res, err := uc.RunDaily(context.Background(), today)
	require.NoError(t, err)
	assert.Empty(t, res.Notifications)
	assert.Equal(t, 1, res.Skipped)
}

func TestRunDaily_TiempoLimiteDevuelveParcial(t *testing.T) {
	inst := newFakeInstallments()
	inst.delay = time.Second

	portfolio := &fakePortfolio{}
	for i := 0; i < 6; i++ {
		portfolio.policies = append(portfolio.policies, portfolioPolicy(fmt.Sprintf("p-%d", i), "A", entity.PaymentAnual, 10))
	}
	uc := newUseCase(portfolio, inst, appcollections.Config{Concurrency: 2, Deadline: 20 * time.Millisecond})

	res, err := uc.RunDaily(context.Background(), today)
	require.NoError(t, err)
	assert.True(t, res.Partial)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "tiempo límite")
	assert.Less(t, res.Evaluated, 6)
}

func TestRunDaily_ErrorAlCargarCartera(t *testing.T) {
	uc := newUseCase(&fakePortfolio{err: errors.New("db caída")}, newFakeInstallments(), appcollections.Config{})

	_, err := uc.RunDaily(context.Background(), today)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cargar cartera")
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordDelivery
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordDelivery(t *testing.T) {
	inst := newFakeInstallments()
	inst.rows["p-1"] = []entity.Installment{{Number: 1}, {Number: 2}}
	uc := newUseCase(&fakePortfolio{}, inst, appcollections.Config{})

	err := uc.RecordDelivery(context.Background(), appcollections.DeliveryOutcome{
		PolicyID: "p-1", InstallmentNumber: 2, Sent: true,
	})
	require.NoError(t, err)
	assert.True(t, inst.rows["p-1"][1].WhatsAppSent)
	assert.Equal(t, appcollections.DeliverySent, inst.rows["p-1"][1].WhatsAppStatus)

	err = uc.RecordDelivery(context.Background(), appcollections.DeliveryOutcome{
		PolicyID: "p-1", InstallmentNumber: 1, Status: "número inválido",
	})
	require.NoError(t, err)
	assert.Equal(t, "número inválido", inst.rows["p-1"][0].WhatsAppStatus)
}

func TestRecordDelivery_Validaciones(t *testing.T) {
	uc := newUseCase(&fakePortfolio{}, newFakeInstallments(), appcollections.Config{})

	err := uc.RecordDelivery(context.Background(), appcollections.DeliveryOutcome{InstallmentNumber: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = uc.RecordDelivery(context.Background(), appcollections.DeliveryOutcome{PolicyID: "p-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = uc.RecordDelivery(context.Background(), appcollections.DeliveryOutcome{PolicyID: "p-x", InstallmentNumber: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpcomingRenewals
// ──────────────────────────────────────────────────────────────────────────────

func TestUpcomingRenewals_VencidasPrimero(t *testing.T) {
	sinCliente := portfolioPolicy("p-4", "R-4", entity.PaymentAnual, 0)
	sinCliente.Client = nil

	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-1", "R-1", entity.PaymentAnual, 20),
		portfolioPolicy("p-2", "R-2", entity.PaymentAnual, -3),
		portfolioPolicy("p-3", "R-3", entity.PaymentAnual, 45),
		sinCliente,
	}}, newFakeInstallments(), appcollections.Config{})

	out, err := uc.UpcomingRenewals(context.Background(), today, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "p-2", out[0].PolicyID)
	assert.True(t, out[0].Expired)
	assert.Equal(t, -3, out[0].DaysRemaining)
	assert.Equal(t, "p-4", out[1].PolicyID)
	assert.Equal(t, "Cliente desconocido", out[1].ClientName)
	assert.Equal(t, "p-1", out[2].PolicyID)
	assert.Equal(t, "Ana López", out[2].ClientName)
	assert.Equal(t, "GNP", out[2].InsurerName)

	limited, err := uc.UpcomingRenewals(context.Background(), today, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpcomingRenewals_FechaExplicitaEnUTC(t *testing.T) {
	uc := newUseCase(&fakePortfolio{policies: []entity.PortfolioPolicy{
		portfolioPolicy("p-1", "R-1", entity.PaymentAnual, 0),
	}}, newFakeInstallments(), appcollections.Config{})

	out, err := uc.UpcomingRenewals(context.Background(), time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].DaysRemaining, "vence hoy, no mañana")
}

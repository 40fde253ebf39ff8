package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Seguros-api/internal/application/collections"
	"github.com/jhoicas/Seguros-api/internal/application/dto"
	"github.com/jhoicas/Seguros-api/internal/application/extraction"
	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain"
	domcollections "github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	apphttp "github.com/jhoicas/Seguros-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Seguros-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePolicies struct {
	lastQuote policy.QuoteInput
	lastID    string
	err       error
}

func (f *fakePolicies) Rules(_ context.Context, insurerID, method string) (entity.PaymentMethod, premium.PaymentRules, error) {
	m := entity.ParsePaymentMethod(method)
	return m, premium.DefaultRuleTable().Resolve(m, insurerID), f.err
}

func (f *fakePolicies) Quote(_ context.Context, in policy.QuoteInput) (*policy.Quote, error) {
	f.lastQuote = in
	if f.err != nil {
		return nil, f.err
	}
	res := premium.Compute(in.Economics)
	return &policy.Quote{
		PaymentMethod: entity.ParsePaymentMethod(in.PaymentMethod),
		Rules:         premium.PaymentRules{InstallmentCount: 1},
		Economics:     res.Economics,
		Installments:  premium.GenerateInstallments(res.Economics, 1, in.StartDate, time.Now()),
	}, nil
}

func (f *fakePolicies) UpdateEconomics(ctx context.Context, id string, in policy.QuoteInput) (*policy.Quote, error) {
	f.lastID = id
	return f.Quote(ctx, in)
}

func (f *fakePolicies) OverrideInstallments(_ context.Context, id string, edits []policy.InstallmentEdit) (*policy.OverrideResult, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &policy.OverrideResult{PremiumTotal: decimal.NewFromInt(100)}, nil
}

func (f *fakePolicies) SchedulePDF(_ context.Context, id string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("%PDF-1.4 calendario"), "recibos_" + id + ".pdf", nil
}

type fakeParser struct {
	got []byte
	err error
}

func (f *fakeParser) ParsePolicyPDF(_ context.Context, pdf []byte) (*extraction.Draft, error) {
	f.got = pdf
	if f.err != nil {
		return nil, f.err
	}
	return extraction.Sanitize(map[string]any{"policy_number": "AU-1", "premium_net": 1000}), nil
}

type fakeCollections struct {
	today    time.Time
	ranFor   time.Time
	outcomes []collections.DeliveryOutcome
}

func (f *fakeCollections) Today() time.Time { return f.today }

func (f *fakeCollections) RunDaily(_ context.Context, today time.Time) (*collections.BatchResult, error) {
	f.ranFor = today
	return &collections.BatchResult{
		Date: today,
		Notifications: []domcollections.Notification{
			{PolicyID: "p-1", PolicyNumber: "GNP-1", Tier: domcollections.TierFractionalUrgent, UrgencyDays: 1},
		},
		Evaluated: 1,
		Flagged:   []collections.Flag{},
		Warnings:  []string{},
	}, nil
}

func (f *fakeCollections) UpcomingRenewals(_ context.Context, _ time.Time, limit int) ([]collections.Renewal, error) {
	out := []collections.Renewal{{PolicyID: "p-1"}, {PolicyID: "p-2"}}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCollections) RecordDelivery(_ context.Context, in collections.DeliveryOutcome) error {
	if in.PolicyID == "" {
		return domain.ErrInvalidInput
	}
	if in.PolicyID == "no-existe" {
		return domain.ErrNotFound
	}
	f.outcomes = append(f.outcomes, in)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const testN8NKey = "n8n-test-key"

type testServer struct {
	app         *fiber.App
	policies    *fakePolicies
	parser      *fakeParser
	collections *fakeCollections
}

func newTestServer() *testServer {
	s := &testServer{
		app:         fiber.New(),
		policies:    &fakePolicies{},
		parser:      &fakeParser{},
		collections: &fakeCollections{today: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)},
	}
	apphttp.Router(s.app, apphttp.RouterDeps{
		Policies:    s.policies,
		Parser:      s.parser,
		Collections: s.collections,
		JWTSecret:   testJWTSecret,
		N8NAPIKey:   testN8NKey,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, auth string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) doJSON(t *testing.T, method, path, auth, body string) *http.Response {
	t.Helper()
	return s.do(t, method, path, auth, strings.NewReader(body), fiber.MIMEApplicationJSON)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ──────────────────────────────────────────────────────────────────────────────
// Premiums
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	resp := newTestServer().do(t, http.MethodGet, "/health", "", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCompute_CalculaTotal(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPost, "/api/premiums/compute", tokenForRole(t, pkgjwt.RoleAgent),
		`{"premium_net":"10,000.00","policy_fee":500}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Economics struct {
			VATAmount    decimal.Decimal `json:"vat_amount"`
			PremiumTotal decimal.Decimal `json:"premium_total"`
		} `json:"economics"`
		Warnings []premium.Warning `json:"warnings"`
	}
	decode(t, resp, &body)
	assert.True(t, body.Economics.VATAmount.Equal(decimal.NewFromInt(1680)))
	assert.True(t, body.Economics.PremiumTotal.Equal(decimal.NewFromInt(12180)))
	assert.Empty(t, body.Warnings)
}

func TestCompute_SinToken(t *testing.T) {
	resp := newTestServer().doJSON(t, http.MethodPost, "/api/premiums/compute", "", `{}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRules_GNPMensual(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/premiums/rules?insurer_id=GNP&payment_method=mensual",
		tokenForRole(t, pkgjwt.RoleAgent), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		PaymentMethod    string           `json:"payment_method"`
		InstallmentCount int              `json:"installment_count"`
		SurchargePercent decimal.Decimal  `json:"surcharge_percent"`
		PolicyFee        *decimal.Decimal `json:"policy_fee"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "Mensual", body.PaymentMethod)
	assert.Equal(t, 12, body.InstallmentCount)
	assert.True(t, body.SurchargePercent.Equal(decimal.NewFromInt(9)))
	require.NotNil(t, body.PolicyFee)
	assert.True(t, body.PolicyFee.Equal(decimal.NewFromInt(650)))
}

func TestPreviewInstallments_AplicaReglasPorDefecto(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPost, "/api/premiums/installments/preview", tokenForRole(t, pkgjwt.RoleAgent),
		`{"insurer_id":"gnp","payment_method":"Mensual","start_date":"2025-01-15","premium_net":12000}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, s.policies.lastQuote.ApplyRules)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), s.policies.lastQuote.StartDate)
}

func TestPreviewInstallments_FechaInvalida(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPost, "/api/premiums/installments/preview", tokenForRole(t, pkgjwt.RoleAgent),
		`{"start_date":"15/01/2025"}`)
	var body map[string]string
	decode(t, resp, &body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Policies
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateEconomics_NoAplicaReglasPorDefecto(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPut, "/api/policies/pol-9/economics", tokenForRole(t, pkgjwt.RoleAgent),
		`{"premium_net":1000}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pol-9", s.policies.lastID)
	assert.False(t, s.policies.lastQuote.ApplyRules)
}

func TestUpdateEconomics_NoEncontrada(t *testing.T) {
	s := newTestServer()
	s.policies.err = domain.ErrNotFound
	resp := s.doJSON(t, http.MethodPut, "/api/policies/x/economics", tokenForRole(t, pkgjwt.RoleAgent), `{}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOverrideInstallments_SoloAdmin(t *testing.T) {
	s := newTestServer()
	body := `{"installments":[{"installment_number":1,"due_date":"2025-02-01","premium_net":"100"}]}`

	resp := s.doJSON(t, http.MethodPut, "/api/policies/p-1/installments", tokenForRole(t, pkgjwt.RoleAgent), body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.doJSON(t, http.MethodPut, "/api/policies/p-1/installments", tokenForRole(t, pkgjwt.RoleAdmin), body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSchedulePDF_Descarga(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/policies/p-1/installments/pdf", tokenForRole(t, pkgjwt.RoleAgent), nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "recibos_p-1.pdf")
}

func TestSchedulePDF_SinCliente(t *testing.T) {
	s := newTestServer()
	s.policies.err = domain.ErrMissingClient
	resp := s.do(t, http.MethodGet, "/api/policies/p-1/installments/pdf", tokenForRole(t, pkgjwt.RoleAgent), nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestErrorInterno_NoExponeDetalle(t *testing.T) {
	s := newTestServer()
	s.policies.err = errors.New("pq: connection refused 10.0.0.5")
	resp := s.do(t, http.MethodGet, "/api/policies/p-1/installments/pdf", tokenForRole(t, pkgjwt.RoleAgent), nil, "")
	var body map[string]string
	decode(t, resp, &body)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body["message"], "10.0.0.5")
}

func multipartPDF(t *testing.T, field string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "poliza.pdf")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestParse_Multipart(t *testing.T) {
	s := newTestServer()
	body, ct := multipartPDF(t, "file", []byte("%PDF-1.7 contenido"))
	resp := s.do(t, http.MethodPost, "/api/policies/parse", tokenForRole(t, pkgjwt.RoleAgent), body, ct)

	var out map[string]any
	decode(t, resp, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AU-1", out["policy_number"])
	assert.Equal(t, []byte("%PDF-1.7 contenido"), s.parser.got)
	assert.Contains(t, out["missing"], "insurer_name")
}

func TestParse_SinArchivo(t *testing.T) {
	s := newTestServer()
	body, ct := multipartPDF(t, "otro", []byte("%PDF-"))
	resp := s.do(t, http.MethodPost, "/api/policies/parse", tokenForRole(t, pkgjwt.RoleAgent), body, ct)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParse_IANoConfigurada(t *testing.T) {
	s := newTestServer()
	s.parser.err = domain.ErrExtractorUnavailable
	body, ct := multipartPDF(t, "file", []byte("%PDF-1.7"))
	resp := s.do(t, http.MethodPost, "/api/policies/parse", tokenForRole(t, pkgjwt.RoleAgent), body, ct)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Collections / webhook
// ──────────────────────────────────────────────────────────────────────────────

func TestRenewals_Limit(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/collections/renewals?limit=1", tokenForRole(t, pkgjwt.RoleAgent), nil, "")

	var body struct {
		Total int `json:"total"`
	}
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, body.Total)
}

func TestWebhook_RequiereAPIKey(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/webhooks/collections", tokenForRole(t, pkgjwt.RoleAdmin), nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el JWT no sirve como API key")
}

func TestWebhook_UsaHoyPorDefecto(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/webhooks/collections", "Bearer "+testN8NKey, nil, "")

	var body struct {
		Notifications []map[string]any `json:"notifications"`
		Partial       bool             `json:"partial"`
	}
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, s.collections.today, s.collections.ranFor)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "fraccionado_urgente", body.Notifications[0]["tier"])
}

func TestWebhook_FechaExplicita(t *testing.T) {
	s := newTestServer()
	resp := s.do(t, http.MethodGet, "/api/webhooks/collections?date=2025-04-01", "Bearer "+testN8NKey, nil, "")
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), s.collections.ranFor)

	resp = s.do(t, http.MethodGet, "/api/webhooks/collections?date=01-04-2025", "Bearer "+testN8NKey, nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type portfolioStub struct{ policies []entity.PortfolioPolicy }

func (p portfolioStub) ListActive(context.Context) ([]entity.PortfolioPolicy, error) {
	return p.policies, nil
}

func (p portfolioStub) GetPortfolioPolicy(_ context.Context, id string) (*entity.PortfolioPolicy, error) {
	for i := range p.policies {
		if p.policies[i].Policy.ID == id {
			return &p.policies[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type installmentStub struct{}

func (installmentStub) ListByPolicy(context.Context, string) ([]entity.Installment, error) {
	return nil, nil
}

func (installmentStub) ReplaceForPolicy(context.Context, string, []entity.Installment) error {
	return nil
}

func (installmentStub) UpdateWhatsAppStatus(context.Context, string, int, bool, string) error {
	return nil
}

func TestWebhook_FechaExplicitaEnZonaDeMexico(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		loc = time.FixedZone("CST", -6*60*60)
	}
	anual := entity.PortfolioPolicy{
		Policy: entity.Policy{
			ID: "p-1", PolicyNumber: "A-1", Status: entity.PolicyStatusVigente,
			PaymentMethod: entity.PaymentAnual, Currency: "MXN",
			StartDate: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			Economics: entity.Economics{PremiumTotal: decimal.NewFromInt(12180)},
		},
		Client:   &entity.Client{ID: "cli-1", FirstName: "Ana", Phone: "5512345678"},
		Insurer:  &entity.Insurer{ID: "ins-1", Alias: "GNP"},
		LineName: "Autos",
	}
	uc := collections.NewUseCase(portfolioStub{policies: []entity.PortfolioPolicy{anual}}, installmentStub{},
		collections.Config{Location: loc}, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Policies:    &fakePolicies{},
		Parser:      &fakeParser{},
		Collections: uc,
		JWTSecret:   testJWTSecret,
		N8NAPIKey:   testN8NKey,
	})
	s := &testServer{app: app}

	resp := s.do(t, http.MethodGet, "/api/webhooks/collections?date=2025-03-10", "Bearer "+testN8NKey, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res collections.BatchResult
	decode(t, resp, &res)
	assert.Equal(t, "2025-03-10", res.Date.Format("2006-01-02"))
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, 21, res.Notifications[0].UrgencyDays)
}

func TestOutcomes_Individual(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPost, "/api/webhooks/collections/outcomes", "Bearer "+testN8NKey,
		`{"policy_id":"p-1","installment_number":2,"sent":true}`)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, s.collections.outcomes, 1)
	assert.Equal(t, 2, s.collections.outcomes[0].InstallmentNumber)

	resp = s.doJSON(t, http.MethodPost, "/api/webhooks/collections/outcomes", "Bearer "+testN8NKey,
		`{"policy_id":"no-existe","installment_number":1,"sent":true}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOutcomes_Lote(t *testing.T) {
	s := newTestServer()
	resp := s.doJSON(t, http.MethodPost, "/api/webhooks/collections/outcomes", "Bearer "+testN8NKey,
		`{"outcomes":[{"policy_id":"p-1","installment_number":1,"sent":true},{"policy_id":"no-existe","installment_number":1}]}`)

	var body struct {
		Recorded int `json:"recorded"`
		Failed   []struct {
			Code string `json:"code"`
		} `json:"failed"`
	}
	decode(t, resp, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, body.Recorded)
	require.Len(t, body.Failed, 1)
	assert.Equal(t, "no-existe", body.Failed[0].Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

type fakeAuth struct{}

func (fakeAuth) Register(_ context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: "u-2", Email: in.Email, Role: pkgjwt.RoleAgent}, nil
}

func (fakeAuth) Login(_ context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Password != "secreto123" {
		return nil, domain.ErrUnauthorized
	}
	return &dto.LoginResponse{Token: "tok", User: dto.UserResponse{ID: "u-1", Email: in.Email}}, nil
}

func newAuthServer() *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Auth: fakeAuth{}, JWTSecret: testJWTSecret})
	return app
}

func TestLogin_Publico(t *testing.T) {
	app := newAuthServer()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.mx","password":"secreto123"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.mx","password":"mal"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_SoloAdmin(t *testing.T) {
	app := newAuthServer()
	body := `{"email":"nuevo@agencia.mx","password":"secreto123"}`

	for _, tc := range []struct {
		role string
		want int
	}{
		{pkgjwt.RoleAgent, http.StatusForbidden},
		{pkgjwt.RoleAdmin, http.StatusCreated},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		req.Header.Set("Authorization", tokenForRole(t, tc.role))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, resp.StatusCode, tc.role)
	}
}

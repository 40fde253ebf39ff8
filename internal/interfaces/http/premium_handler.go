package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Seguros-api/internal/application/dto"
	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// policyService contrato que cumple *policy.UseCase; la interfaz permite probar los handlers con fakes.
type policyService interface {
	Rules(ctx context.Context, insurerID, paymentMethod string) (entity.PaymentMethod, premium.PaymentRules, error)
	Quote(ctx context.Context, in policy.QuoteInput) (*policy.Quote, error)
	UpdateEconomics(ctx context.Context, policyID string, in policy.QuoteInput) (*policy.Quote, error)
	OverrideInstallments(ctx context.Context, policyID string, edits []policy.InstallmentEdit) (*policy.OverrideResult, error)
	SchedulePDF(ctx context.Context, policyID string) ([]byte, string, error)
}

// PremiumHandler cálculo de primas, reglas por aseguradora y vista previa de recibos.
type PremiumHandler struct {
	policies policyService
	log      *logger.Logger
}

// NewPremiumHandler construye el handler.
func NewPremiumHandler(policies policyService, log *logger.Logger) *PremiumHandler {
	return &PremiumHandler{policies: policies, log: log}
}

// Compute godoc
// @Summary      Calcular económicos de una póliza
// @Description  Recargo, descuento, IVA y prima total. Nunca falla por datos ilegibles:
//               valen 0 y las inconsistencias se devuelven como advertencias.
// @Tags         premiums
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.EconomicsRequest  true  "Económicos capturados"
// @Success      200   {object}  dto.ComputeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/premiums/compute [post]
func (h *PremiumHandler) Compute(c *fiber.Ctx) error {
	var req dto.EconomicsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	res := premium.Compute(req.ToInput())
	warnings := res.Warnings
	if warnings == nil {
		warnings = []premium.Warning{}
	}
	return c.JSON(dto.ComputeResponse{Economics: dto.NewEconomicsResponse(res.Economics), Warnings: warnings})
}

// Rules godoc
// @Summary      Reglas de cobro por aseguradora y forma de pago
// @Tags         premiums
// @Security     Bearer
// @Produce      json
// @Param        insurer_id      query     string  false  "ID, alias o nombre de la aseguradora"
// @Param        payment_method  query     string  false  "Contado, Anual, Semestral, Trimestral, Mensual o Domiciliado"
// @Success      200             {object}  dto.RulesResponse
// @Failure      401             {object}  dto.ErrorResponse
// @Router       /api/premiums/rules [get]
func (h *PremiumHandler) Rules(c *fiber.Ctx) error {
	method, rules, err := h.policies.Rules(c.UserContext(), c.Query("insurer_id"), c.Query("payment_method"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewRulesResponse(method, rules))
}

// PreviewInstallments godoc
// @Summary      Vista previa del calendario de recibos
// @Description  Aplica las reglas de la aseguradora (apply_rules=true por defecto), calcula
//               los económicos y genera los recibos sin guardar nada.
// @Tags         premiums
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.QuoteRequest  true  "Económicos, aseguradora, forma de pago e inicio de vigencia"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/premiums/installments/preview [post]
func (h *PremiumHandler) PreviewInstallments(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := req.ToQuoteInput(true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.policies.Quote(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewQuoteResponse(q))
}

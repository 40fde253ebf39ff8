package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Seguros-api/internal/application/collections"
	"github.com/jhoicas/Seguros-api/internal/application/dto"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// collectionsService contrato que cumple *collections.UseCase.
type collectionsService interface {
	Today() time.Time
	RunDaily(ctx context.Context, today time.Time) (*collections.BatchResult, error)
	UpcomingRenewals(ctx context.Context, today time.Time, limit int) ([]collections.Renewal, error)
	RecordDelivery(ctx context.Context, in collections.DeliveryOutcome) error
}

// CollectionsHandler cobranza: renovaciones para la UI y webhook del colaborador de mensajería.
type CollectionsHandler struct {
	svc collectionsService
	log *logger.Logger
}

// NewCollectionsHandler construye el handler.
func NewCollectionsHandler(svc collectionsService, log *logger.Logger) *CollectionsHandler {
	return &CollectionsHandler{svc: svc, log: log}
}

// Renewals godoc
// @Summary      Pólizas por renovar
// @Description  Pólizas cuyo fin de vigencia cae en los próximos 30 días o ya pasó.
// @Tags         collections
// @Security     Bearer
// @Produce      json
// @Param        limit  query     int  false  "Máximo de resultados (0 = todos)"
// @Success      200    {object}  dto.RenewalsResponse
// @Router       /api/collections/renewals [get]
func (h *CollectionsHandler) Renewals(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	list, err := h.svc.UpcomingRenewals(c.UserContext(), h.svc.Today(), limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RenewalsResponse{Renewals: list, Total: len(list)})
}

// DailyNotifications godoc
// @Summary      Recordatorios de cobranza del día
// @Description  Consumido por n8n. No marca nada como enviado: repetir la llamada el mismo día
//               devuelve el mismo resultado. partial=true si se alcanzó el tiempo límite.
// @Tags         webhooks
// @Security     N8NApiKey
// @Produce      json
// @Param        date  query     string  false  "Fecha a evaluar (YYYY-MM-DD); por defecto hoy"
// @Success      200   {object}  collections.BatchResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/webhooks/collections [get]
func (h *CollectionsHandler) DailyNotifications(c *fiber.Ctx) error {
	today := h.svc.Today()
	if q := c.Query("date"); q != "" {
		d, err := dto.ParseDate("date", q)
		if err != nil {
			return writeError(c, h.log, err)
		}
		today = d
	}
	res, err := h.svc.RunDaily(c.UserContext(), today)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// RecordOutcomes godoc
// @Summary      Registrar resultado de envío
// @Description  Acepta un resultado suelto o {"outcomes": [...]}. En lote, los que fallan
//               se devuelven en failed y el resto se guarda.
// @Tags         webhooks
// @Security     N8NApiKey
// @Accept       json
// @Produce      json
// @Param        body  body      dto.DeliveryOutcomesRequest  true  "Resultados de envío"
// @Success      200   {object}  dto.DeliveryOutcomesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/webhooks/collections/outcomes [post]
func (h *CollectionsHandler) RecordOutcomes(c *fiber.Ctx) error {
	var batch dto.DeliveryOutcomesRequest
	if err := c.BodyParser(&batch); err != nil {
		return badBody(c)
	}
	if len(batch.Outcomes) == 0 {
		var single dto.DeliveryOutcomeRequest
		if err := c.BodyParser(&single); err != nil {
			return badBody(c)
		}
		if err := h.svc.RecordDelivery(c.UserContext(), single.ToOutcome()); err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.DeliveryOutcomesResponse{Recorded: 1, Failed: []dto.ErrorResponse{}})
	}

	resp := dto.DeliveryOutcomesResponse{Failed: []dto.ErrorResponse{}}
	for _, o := range batch.Outcomes {
		if err := h.svc.RecordDelivery(c.UserContext(), o.ToOutcome()); err != nil {
			resp.Failed = append(resp.Failed, dto.ErrorResponse{Code: o.PolicyID, Message: err.Error()})
			continue
		}
		resp.Recorded++
	}
	return c.JSON(resp)
}

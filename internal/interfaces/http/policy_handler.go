package http

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Seguros-api/internal/application/dto"
	"github.com/jhoicas/Seguros-api/internal/application/extraction"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// policyParser contrato que cumple *extraction.UseCase.
type policyParser interface {
	ParsePolicyPDF(ctx context.Context, pdf []byte) (*extraction.Draft, error)
}

// PolicyHandler escritura de económicos, calendario manual, PDF y lectura de pólizas por IA.
type PolicyHandler struct {
	policies policyService
	parser   policyParser
	log      *logger.Logger
}

// NewPolicyHandler construye el handler.
func NewPolicyHandler(policies policyService, parser policyParser, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{policies: policies, parser: parser, log: log}
}

// UpdateEconomics godoc
// @Summary      Guardar económicos y regenerar recibos
// @Description  Si cambia la aseguradora o la forma de pago se aplican su recargo y derecho de póliza.
//               Los recibos se regeneran en la misma transacción.
// @Tags         policies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "ID de la póliza"
// @Param        body  body      dto.QuoteRequest  true  "Económicos"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/policies/{id}/economics [put]
func (h *PolicyHandler) UpdateEconomics(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := req.ToQuoteInput(false)
	if err != nil {
		return writeError(c, h.log, err)
	}
	q, err := h.policies.UpdateEconomics(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewQuoteResponse(q))
}

// OverrideInstallments godoc
// @Summary      Editar el calendario de recibos a mano
// @Description  Reemplaza los recibos. El total de cada fila y la prima total se recalculan.
// @Tags         policies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                           true  "ID de la póliza"
// @Param        body  body      dto.OverrideInstallmentsRequest  true  "Recibos numerados 1..N"
// @Success      200   {object}  dto.OverrideInstallmentsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/policies/{id}/installments [put]
func (h *PolicyHandler) OverrideInstallments(c *fiber.Ctx) error {
	var req dto.OverrideInstallmentsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	edits, err := req.ToEdits()
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.policies.OverrideInstallments(c.UserContext(), c.Params("id"), edits)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewOverrideInstallmentsResponse(res))
}

// SchedulePDF godoc
// @Summary      Descargar el calendario de recibos en PDF
// @Tags         policies
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID de la póliza"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/policies/{id}/installments/pdf [get]
func (h *PolicyHandler) SchedulePDF(c *fiber.Ctx) error {
	pdf, filename, err := h.policies.SchedulePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

// Parse godoc
// @Summary      Leer una póliza en PDF con IA
// @Description  Devuelve un borrador validado: nada se guarda. Los campos que no se pudieron
//               leer se listan en missing.
// @Tags         policies
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Póliza en PDF (máx. 10 MB)"
// @Success      200   {object}  dto.ParsedPolicyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Failure      415   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/policies/parse [post]
func (h *PolicyHandler) Parse(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo 'file' requerido"})
	}
	if fh.Size > extraction.MaxPDFSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "FILE_TOO_LARGE", Message: "el archivo supera 10 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, fmt.Errorf("abrir archivo: %w", err))
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, extraction.MaxPDFSize+1))
	if err != nil {
		return writeError(c, h.log, fmt.Errorf("leer archivo: %w", err))
	}
	draft, err := h.parser.ParsePolicyPDF(c.UserContext(), content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewParsedPolicyResponse(draft))
}

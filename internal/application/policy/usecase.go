// Package policy implementa el flujo de escritura de una póliza:
// reglas de la aseguradora → cálculo de económicos → persistencia → regeneración de recibos.
package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Seguros-api/internal/domain"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
	"github.com/jhoicas/Seguros-api/pkg/logger"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

// QuoteInput datos capturados para cotizar o guardar los económicos de una póliza.
type QuoteInput struct {
	InsurerID     string
	PaymentMethod string // texto libre; se normaliza con entity.ParsePaymentMethod
	IsDomiciled   *bool  // nil = conservar el valor guardado
	StartDate     time.Time
	ApplyRules    bool // fuerza recargo y derecho de la aseguradora aunque nada haya cambiado
	Economics     premium.Input
}

// Quote resultado del cálculo: reglas aplicadas, económicos y calendario.
type Quote struct {
	PaymentMethod entity.PaymentMethod
	Rules         premium.PaymentRules
	Economics     entity.Economics
	Warnings      []premium.Warning
	Installments  []entity.Installment
}

// UseCase casos de uso de escritura y consulta de pólizas.
type UseCase struct {
	tx           TxRunner
	portfolio    repository.PortfolioRepository
	installments repository.InstallmentRepository
	insurers     repository.InsurerRepository
	rules        *premium.RuleTable
	pdf          SchedulePDFGenerator
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. rules nil usa las reglas de fábrica.
func NewUseCase(
	tx TxRunner,
	portfolio repository.PortfolioRepository,
	installments repository.InstallmentRepository,
	insurers repository.InsurerRepository,
	rules *premium.RuleTable,
	pdf SchedulePDFGenerator,
	log *logger.Logger,
) *UseCase {
	if rules == nil {
		rules = premium.DefaultRuleTable()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		tx:           tx,
		portfolio:    portfolio,
		installments: installments,
		insurers:     insurers,
		rules:        rules,
		pdf:          pdf,
		log:          log.Component("policy"),
		now:          time.Now,
	}
}

// Rules devuelve las reglas de cobro para aseguradora + forma de pago.
func (uc *UseCase) Rules(ctx context.Context, insurerID, paymentMethod string) (entity.PaymentMethod, premium.PaymentRules, error) {
	method := entity.ParsePaymentMethod(paymentMethod)
	rules, err := uc.resolve(ctx, insurerID, method)
	if err != nil {
		return "", premium.PaymentRules{}, err
	}
	return method, rules, nil
}

// Quote calcula económicos y calendario sin guardar nada.
func (uc *UseCase) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	method := entity.ParsePaymentMethod(in.PaymentMethod)
	rules, err := uc.resolve(ctx, in.InsurerID, method)
	if err != nil {
		return nil, err
	}
	input := in.Economics
	if in.ApplyRules {
		input = applyRules(input, rules)
	}
	res := premium.Compute(input)
	rows := premium.GenerateInstallments(res.Economics, rules.InstallmentCount, in.StartDate, uc.now())

	return &Quote{
		PaymentMethod: method,
		Rules:         rules,
		Economics:     res.Economics,
		Warnings:      res.Warnings,
		Installments:  rows,
	}, nil
}

// UpdateEconomics recalcula y guarda los económicos de la póliza y regenera sus recibos
// en una sola transacción. Si cambió la aseguradora o la forma de pago (o la póliza aún
// no tenía económicos) se aplican recargo y derecho de la aseguradora.
func (uc *UseCase) UpdateEconomics(ctx context.Context, policyID string, in QuoteInput) (*Quote, error) {
	if strings.TrimSpace(policyID) == "" {
		return nil, fmt.Errorf("%w: id de póliza requerido", domain.ErrInvalidInput)
	}

	var quote *Quote
	err := uc.tx.RunPolicy(ctx, func(policies repository.PolicyRepository, installments repository.InstallmentRepository) error {
		p, err := policies.GetByID(ctx, policyID)
		if err != nil {
			return err
		}

		method := p.PaymentMethod
		if strings.TrimSpace(in.PaymentMethod) != "" || method == "" {
			method = entity.ParsePaymentMethod(in.PaymentMethod)
		}
		insurerID := p.InsurerID
		if id := strings.TrimSpace(in.InsurerID); id != "" {
			insurerID = id
		}

		rules, err := uc.resolve(ctx, insurerID, method)
		if err != nil {
			return err
		}

		changed := insurerID != p.InsurerID || method != p.PaymentMethod || !hasEconomics(p.Economics)
		input := in.Economics
		if changed || in.ApplyRules {
			input = applyRules(input, rules)
		}
		res := premium.Compute(input)

		p.InsurerID = insurerID
		p.PaymentMethod = method
		p.TotalInstallments = rules.InstallmentCount
		if p.CurrentInstallment < 1 || p.CurrentInstallment > rules.InstallmentCount {
			p.CurrentInstallment = 1
		}
		if in.IsDomiciled != nil {
			p.IsDomiciled = *in.IsDomiciled
		}
		if method == entity.PaymentDomiciliado {
			p.IsDomiciled = true
		}
		if !in.StartDate.IsZero() {
			p.StartDate = in.StartDate
		}
		p.Economics = res.Economics

		if err := policies.UpdateEconomics(ctx, p); err != nil {
			return fmt.Errorf("guardar económicos: %w", err)
		}

		prev, err := installments.ListByPolicy(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("leer recibos: %w", err)
		}
		rows := premium.GenerateInstallments(res.Economics, rules.InstallmentCount, p.StartDate, uc.now())
		for i := range rows {
			rows[i].ID = uuid.New().String()
			rows[i].PolicyID = p.ID
		}
		warnings := append(res.Warnings, carryInstallmentState(prev, rows)...)
		if err := installments.ReplaceForPolicy(ctx, p.ID, rows); err != nil {
			return fmt.Errorf("regenerar recibos: %w", err)
		}

		quote = &Quote{
			PaymentMethod: method,
			Rules:         rules,
			Economics:     res.Economics,
			Warnings:      warnings,
			Installments:  rows,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("policy_id", policyID).
		Str("payment_method", string(quote.PaymentMethod)).
		Int("installments", len(quote.Installments)).
		Str("premium_total", quote.Economics.PremiumTotal.StringFixed(money.Places)).
		Int("warnings", len(quote.Warnings)).
		Msg("económicos de póliza guardados")
	return quote, nil
}

// resolve busca las reglas probando ID, alias y nombre de la aseguradora.
// Una aseguradora inexistente no es error: se cotiza sin reglas especiales.
func (uc *UseCase) resolve(ctx context.Context, insurerID string, method entity.PaymentMethod) (premium.PaymentRules, error) {
	insurerID = strings.TrimSpace(insurerID)
	if insurerID == "" {
		return uc.rules.Resolve(method), nil
	}
	keys := []string{insurerID}
	ins, err := uc.insurers.GetByID(ctx, insurerID)
	switch {
	case err == nil && ins != nil:
		keys = append(keys, ins.Alias, ins.Name)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return premium.PaymentRules{}, fmt.Errorf("obtener aseguradora: %w", err)
	}
	return uc.rules.Resolve(method, keys...), nil
}

// applyRules fija el recargo por porcentaje y el derecho de póliza de la aseguradora.
func applyRules(in premium.Input, rules premium.PaymentRules) premium.Input {
	in.Surcharge = premium.Adjustment{
		Percent: money.Raw(rules.SurchargePercent.String()),
		Source:  premium.EditedPercent,
	}
	if rules.PolicyFee != nil {
		in.PolicyFee = money.Raw(rules.PolicyFee.String())
	}
	return in
}

// carryInstallmentState conserva estado de pago y de envío de los recibos anteriores.
// Con el mismo número de recibos se copian por número; si cambió el número no hay
// correspondencia y, cuando había recibos pagados, se devuelve una advertencia.
func carryInstallmentState(prev, rows []entity.Installment) []premium.Warning {
	if len(prev) == 0 {
		return nil
	}
	if len(prev) == len(rows) {
		byNumber := make(map[int]entity.Installment, len(prev))
		for _, r := range prev {
			byNumber[r.Number] = r
		}
		for i := range rows {
			old, ok := byNumber[rows[i].Number]
			if !ok {
				continue
			}
			if old.Status != "" {
				rows[i].Status = old.Status
			}
			rows[i].WhatsAppSent = old.WhatsAppSent
			rows[i].WhatsAppStatus = old.WhatsAppStatus
		}
		return nil
	}

	paid := 0
	for _, r := range prev {
		if r.Status == entity.InstallmentPagado {
			paid++
		}
	}
	if paid == 0 {
		return nil
	}
	return []premium.Warning{{
		Field: "installments",
		Message: fmt.Sprintf("el calendario anterior tenía %d recibo(s) pagado(s) y cambió el número de recibos: "+
			"los nuevos quedan pendientes, marque a mano los que ya se cobraron", paid),
	}}
}

func hasEconomics(e entity.Economics) bool {
	return !e.PremiumNet.IsZero() || !e.PremiumTotal.IsZero()
}

// Package collections orquesta la cobranza diaria: carga la cartera, evalúa cada
// póliza con el motor de reglas y entrega los recordatorios al colaborador de envío.
package collections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// Config parámetros de la corrida diaria.
type Config struct {
	Location    *time.Location // zona en la que se decide "hoy"
	Deadline    time.Duration  // tiempo máximo de la corrida; 0 = sin límite
	Concurrency int            // pólizas evaluadas en paralelo
}

// Flag póliza con datos incompletos que igual generó recordatorio, o cuya lectura falló.
type Flag struct {
	PolicyID     string   `json:"policy_id"`
	PolicyNumber string   `json:"policy_number"`
	Reasons      []string `json:"reasons"`
}

// BatchResult resultado de una corrida. Notifications va ordenado por urgencia y número de póliza.
type BatchResult struct {
	Date          time.Time                  `json:"date"`
	Notifications []collections.Notification `json:"notifications"`
	Evaluated     int                        `json:"evaluated"`
	Skipped       int                        `json:"skipped"`
	Flagged       []Flag                     `json:"flagged"`
	Partial       bool                       `json:"partial"`
	Warnings      []string                   `json:"warnings"`
}

// UseCase casos de uso de cobranza.
type UseCase struct {
	portfolio    repository.PortfolioRepository
	installments repository.InstallmentRepository
	cfg          Config
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. log puede ser nil.
func NewUseCase(
	portfolio repository.PortfolioRepository,
	installments repository.InstallmentRepository,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 8
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		portfolio:    portfolio,
		installments: installments,
		cfg:          cfg,
		log:          log.Component("collections"),
		now:          time.Now,
	}
}

// Today fecha actual en la zona configurada.
func (uc *UseCase) Today() time.Time {
	return civilDay(uc.now().In(uc.cfg.Location), uc.cfg.Location)
}

// civilDay toma año, mes y día de t tal como vienen (sin convertir de zona) y los
// fija a medianoche en loc. Una fecha explícita "2025-03-10" llega como medianoche
// UTC y debe seguir siendo el 10 en la zona de la agencia.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// outcome resultado de evaluar una póliza.
type outcome struct {
	notification *collections.Notification
	flag         *Flag
	evaluated    bool
}

// RunDaily evalúa todas las pólizas no canceladas para today y devuelve los recordatorios.
// No marca nada como enviado: llamadas repetidas el mismo día devuelven el mismo resultado.
// Si se alcanza el tiempo límite devuelve lo evaluado hasta ese momento con Partial=true.
func (uc *UseCase) RunDaily(ctx context.Context, today time.Time) (*BatchResult, error) {
	today = civilDay(today, uc.cfg.Location)
	if uc.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Deadline)
		defer cancel()
	}

	result := &BatchResult{
		Date:          today,
		Notifications: []collections.Notification{},
		Flagged:       []Flag{},
		Warnings:      []string{},
	}

	policies, err := uc.portfolio.ListActive(ctx)
	if err != nil {
		if isTimeout(err) {
			result.Partial = true
			result.Warnings = append(result.Warnings, "tiempo límite alcanzado al cargar la cartera")
			uc.log.Warn().Err(err).Msg("cobranza: cartera no cargada a tiempo")
			return result, nil
		}
		return nil, fmt.Errorf("cargar cartera: %w", err)
	}

	outcomes := make([]outcome, len(policies))
	g := new(errgroup.Group)
	g.SetLimit(uc.cfg.Concurrency)
	for i := range policies {
		g.Go(func() error {
			outcomes[i] = uc.evaluate(ctx, policies[i], today)
			return nil
		})
	}
	_ = g.Wait()

	pending := 0
	for _, o := range outcomes {
		if !o.evaluated {
			pending++
			continue
		}
		result.Evaluated++
		if o.flag != nil {
			result.Flagged = append(result.Flagged, *o.flag)
		}
		if o.notification == nil {
			result.Skipped++
			continue
		}
		result.Notifications = append(result.Notifications, *o.notification)
	}

	if pending > 0 {
		result.Partial = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("tiempo límite alcanzado: %d de %d pólizas sin evaluar", pending, len(policies)))
	}

	sortNotifications(result.Notifications)
	sort.Slice(result.Flagged, func(i, j int) bool { return result.Flagged[i].PolicyID < result.Flagged[j].PolicyID })

	uc.log.Info().
		Str("date", today.Format(time.DateOnly)).
		Int("policies", len(policies)).
		Int("evaluated", result.Evaluated).
		Int("notifications", len(result.Notifications)).
		Int("flagged", len(result.Flagged)).
		Bool("partial", result.Partial).
		Msg("cobranza diaria evaluada")

	return result, nil
}

// evaluate lee los recibos de una póliza y aplica el motor. Nunca devuelve error:
// un fallo de lectura marca la póliza y la corrida sigue.
func (uc *UseCase) evaluate(ctx context.Context, pp entity.PortfolioPolicy, today time.Time) outcome {
	if ctx.Err() != nil {
		return outcome{}
	}
	if pp.Policy.IsCancelled() {
		return outcome{evaluated: true}
	}

	rows, err := uc.installments.ListByPolicy(ctx, pp.Policy.ID)
	if err != nil {
		if isTimeout(err) || ctx.Err() != nil {
			return outcome{}
		}
		uc.log.Error().Err(err).Str("policy_id", pp.Policy.ID).Msg("cobranza: no se pudieron leer los recibos")
		return outcome{evaluated: true, flag: &Flag{
			PolicyID:     pp.Policy.ID,
			PolicyNumber: pp.Policy.PolicyNumber,
			Reasons:      []string{"error_lectura_recibos"},
		}}
	}

	snap, flags, ok := BuildSnapshot(pp, rows)
	if !ok {
		return outcome{evaluated: true}
	}

	out := outcome{evaluated: true, notification: collections.Evaluate(snap, today)}
	if out.notification != nil && len(flags) > 0 {
		out.flag = &Flag{PolicyID: pp.Policy.ID, PolicyNumber: pp.Policy.PolicyNumber, Reasons: flags}
	}
	return out
}

func sortNotifications(ns []collections.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		a, b := ns[i], ns[j]
		if a.UrgencyDays != b.UrgencyDays {
			return a.UrgencyDays < b.UrgencyDays
		}
		if a.PolicyNumber != b.PolicyNumber {
			return a.PolicyNumber < b.PolicyNumber
		}
		return a.PolicyID < b.PolicyID
	})
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

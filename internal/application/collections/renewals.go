package collections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
)

// RenewalWindowDays pólizas que terminan dentro de esta ventana entran al listado.
const RenewalWindowDays = 30

// Renewal póliza próxima a renovar o ya vencida.
type Renewal struct {
	PolicyID      string    `json:"policy_id"`
	PolicyNumber  string    `json:"policy_number"`
	ClientName    string    `json:"client_name"`
	InsurerName   string    `json:"insurer_name"`
	LineName      string    `json:"line_name"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
	Expired       bool      `json:"expired"`
}

// UpcomingRenewals pólizas cuyo fin de vigencia cae en los próximos 30 días o ya pasó.
// Ordena primero las vencidas y luego por cercanía. limit <= 0 no recorta.
func (uc *UseCase) UpcomingRenewals(ctx context.Context, today time.Time, limit int) ([]Renewal, error) {
	policies, err := uc.portfolio.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar cartera: %w", err)
	}
	today = civilDay(today, uc.cfg.Location)

	out := make([]Renewal, 0)
	for _, pp := range policies {
		p := pp.Policy
		if p.IsCancelled() || p.EndDate.IsZero() {
			continue
		}
		d := collections.DaysRemaining(p.EndDate, today)
		if d > RenewalWindowDays {
			continue
		}
		out = append(out, Renewal{
			PolicyID:      p.ID,
			PolicyNumber:  p.PolicyNumber,
			ClientName:    fullName(pp.Client),
			InsurerName:   insurerName(pp.Insurer),
			LineName:      pp.LineName,
			EndDate:       p.EndDate,
			DaysRemaining: d,
			Expired:       d < 0,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysRemaining != out[j].DaysRemaining {
			return out[i].DaysRemaining < out[j].DaysRemaining
		}
		return out[i].PolicyNumber < out[j].PolicyNumber
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func fullName(c *entity.Client) string {
	if c == nil {
		return "Cliente desconocido"
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return collections.PlaceholderClient
	}
	return name
}

func insurerName(i *entity.Insurer) string {
	if i == nil {
		return collections.PlaceholderInsurer
	}
	return i.DisplayName()
}

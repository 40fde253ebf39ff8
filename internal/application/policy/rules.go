package policy

import (
	"context"

	"github.com/jhoicas/Seguros-api/internal/domain/premium"
	"github.com/jhoicas/Seguros-api/internal/domain/repository"
	"github.com/jhoicas/Seguros-api/pkg/logger"
)

// LoadRuleTable carga las reglas por aseguradora desde la BD. Si la tabla está vacía
// o la lectura falla, usa las reglas de fábrica y lo deja registrado.
func LoadRuleTable(ctx context.Context, insurers repository.InsurerRepository, log *logger.Logger) *premium.RuleTable {
	if log == nil {
		log = logger.Nop()
	}
	rows, err := insurers.ListPaymentRules(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reglas de aseguradoras no disponibles, se usan las de fábrica")
		return premium.DefaultRuleTable()
	}
	if len(rows) == 0 {
		log.Info().Msg("sin reglas de aseguradoras en BD, se usan las de fábrica")
		return premium.DefaultRuleTable()
	}
	table := premium.RuleTableFromEntities(rows)
	log.Info().Int("insurers", table.Len()).Msg("reglas de aseguradoras cargadas")
	return table
}

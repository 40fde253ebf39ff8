// Package pdf genera el calendario de recibos de una póliza en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Aseguradora + Póliza  │  Ramo + Vigencia           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ASEGURADO: Nombre / Tel / Email / Forma de pago             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Vence | Prima | Derecho | Recargo | IVA | Total  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Prima total + Pagado + Pendiente                   │
//	│  FOOTER: QR con la liga de pago (si existe)                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Seguros-api/internal/application/policy"
	"github.com/jhoicas/Seguros-api/internal/domain/collections"
	"github.com/jhoicas/Seguros-api/internal/domain/entity"
	"github.com/jhoicas/Seguros-api/pkg/money"
)

var _ policy.SchedulePDFGenerator = (*MarotoScheduleGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorPaid    = &props.Color{Red: 30, Green: 130, Blue: 60}
	colorOverdue = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoScheduleGenerator implementa policy.SchedulePDFGenerator usando Maroto v2.
type MarotoScheduleGenerator struct {
	agency string
}

// NewMarotoScheduleGenerator construye el generador. agency aparece como autor del PDF.
func NewMarotoScheduleGenerator(agency string) *MarotoScheduleGenerator {
	return &MarotoScheduleGenerator{agency: agency}
}

// GenerateSchedulePDF genera el PDF y devuelve sus bytes.
func (g *MarotoScheduleGenerator) GenerateSchedulePDF(_ context.Context, s *policy.Schedule) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("pdf: calendario vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Calendario de recibos", true).
		WithAuthor(nonEmpty(g.agency, "Seguros"), true).
		Build()

	m := maroto.New(cfg)
	p := s.Policy.Policy

	m.AddRows(headerRow(s.Policy))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(insuredRow(s.Policy))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(s.Installments, p.Currency)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(s.Installments, s.Total, p.Currency))

	if p.PaymentLink != "" {
		m.AddRows(line.NewRow(3))
		m.AddRows(paymentLinkRow(p.PaymentLink))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(pp entity.PortfolioPolicy) core.Row {
	p := pp.Policy
	insurer := "—"
	if pp.Insurer != nil {
		insurer = pp.Insurer.DisplayName()
	}
	branch := nonEmpty(pp.LineName, "—")
	if p.SubBranch != "" {
		branch += " / " + p.SubBranch
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(insurer, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Póliza: "+nonEmpty(p.PolicyNumber, "—"), props.Text{
				Size: 10, Top: 9, Style: fontstyle.Bold,
			}),
		),
		col.New(5).Add(
			text.New("CALENDARIO DE RECIBOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(branch, props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Vigencia: %s al %s",
				collections.FormatDate(p.StartDate), collections.FormatDate(p.EndDate)),
				props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func insuredRow(pp entity.PortfolioPolicy) core.Row {
	name, phone, email := "—", "—", "—"
	if c := pp.Client; c != nil {
		name = nonEmpty(strings.TrimSpace(c.FirstName+" "+c.LastName), "—")
		phone = nonEmpty(c.Phone, "—")
		email = nonEmpty(c.Email, "—")
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ASEGURADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("Tel: %s   |   Email: %s   |   Forma de pago: %s   |   Moneda: %s",
				phone, email, pp.Policy.PaymentMethod, nonEmpty(pp.Policy.Currency, "MXN"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Vence", 2, align.Left),
		h("Prima neta", 2, align.Right),
		h("Derecho", 1, align.Right),
		h("Recargo", 1, align.Right),
		h("IVA", 1, align.Right),
		h("Total", 2, align.Right),
		h("Estado", 2, align.Center),
	)
}

// tableRows una fila por recibo.
func tableRows(rows []entity.Installment, currency string) []core.Row {
	amount := func(d decimal.Decimal, size int) core.Col {
		return col.New(size).Add(text.New(money.FormatWithSymbol(d, currency),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(rows))
	for _, in := range rows {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(in.Number), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(in.DueDate.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
			amount(in.PremiumNet, 2),
			amount(in.PolicyFee, 1),
			amount(in.Surcharges, 1),
			amount(in.VATAmount, 1),
			amount(in.TotalAmount, 2),
			col.New(2).Add(text.New(in.Status, props.Text{
				Size: 8, Align: align.Center, Top: 1, Color: statusColor(in.Status),
			})),
		))
	}
	return result
}

func totalsRow(rows []entity.Installment, total decimal.Decimal, currency string) core.Row {
	paid := decimal.Zero
	for i := range rows {
		if rows[i].IsPaid() {
			paid = paid.Add(rows[i].TotalAmount)
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Pagado:"),
			label("Pendiente:"),
			text.New("PRIMA TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(money.FormatWithSymbol(paid, currency)),
			value(money.FormatWithSymbol(total.Sub(paid), currency)),
			text.New(money.FormatWithSymbol(total, currency), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

func paymentLinkRow(link string) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(link, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Escanea el código QR para pagar en línea.", props.Text{
				Size: 9, Top: 4, Left: 3, Style: fontstyle.Bold, Color: colorPrimary,
			}),
			text.New(link, props.Text{Size: 7, Top: 12, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(status string) *props.Color {
	switch status {
	case entity.InstallmentPagado:
		return colorPaid
	case entity.InstallmentVencido:
		return colorOverdue
	default:
		return colorGray
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

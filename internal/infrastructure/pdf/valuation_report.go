// Package pdf genera el informe PDF de valorización diaria del stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tenant + alcance    │  Días + fecha de cálculo     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Alcance | Valor | Origen                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: primer día / último día / variación                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ valuation.ReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa valuation.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateValuationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateValuationPDF(_ context.Context, data valuation.ReportData) ([]byte, error) {
	if data.Series == nil {
		return nil, fmt.Errorf("pdf: serie vacía")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización diaria de stock", true).
		WithAuthor(data.TenantCode, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range tableRows(data.Series.Points) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	if len(data.Series.Points) > 0 {
		m.AddRows(summaryRow(data.Series.Points))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data valuation.ReportData) core.Row {
	truncated := ""
	if data.Series.Truncated {
		truncated = " (recortado al máximo)"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("VALORIZACIÓN DIARIA DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(data.TenantCode+" · "+data.LocationLabel, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("%d días%s", data.Series.Days, truncated), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Calculado: "+data.Series.ComputedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
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
		h("Fecha", 3, align.Left),
		h("Alcance", 3, align.Left),
		h("Valor", 4, align.Right),
		h("Origen", 2, align.Center),
	)
}

// tableRows una fila por punto de la serie.
func tableRows(points []dto.ValuationPointDTO) []core.Row {
	result := make([]core.Row, 0, len(points))
	for _, p := range points {
		origin := "calculado"
		if p.FromCache {
			origin = "caché"
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(p.ValuationDate, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(scopeLabel(p), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(
				formatCents(p.TotalValueCents)+" "+p.Currency,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(origin, props.Text{Size: 7, Align: align.Center, Top: 1, Color: colorGray})),
		))
	}
	return result
}

// summaryRow primer y último día de la serie y su diferencia.
func summaryRow(points []dto.ValuationPointDTO) core.Row {
	first, last := points[0], points[len(points)-1]
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(4),
		col.New(4).Add(
			label("Valor al "+first.ValuationDate+":"),
			label("Valor al "+last.ValuationDate+":"),
			label("Variación:"),
		),
		col.New(4).Add(
			value(formatCents(first.TotalValueCents)+" "+first.Currency),
			value(formatCents(last.TotalValueCents)+" "+last.Currency),
			text.New(formatCents(last.TotalValueCents-first.TotalValueCents)+" "+last.Currency, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func scopeLabel(p dto.ValuationPointDTO) string {
	if p.Scope == dto.ScopeLocation && p.StockLocationID != nil {
		return "Ubicación " + strconv.FormatInt(*p.StockLocationID, 10)
	}
	return "Todas"
}

// formatCents formatea céntimos con puntos de miles y coma decimal.
// Ej: 2500000 → "25.000,00", -5 → "-0,05"
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s,%02d", sign, formatThousands(strconv.FormatInt(cents/100, 10)), cents%100)
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

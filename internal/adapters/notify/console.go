package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/polylens/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el report en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.Report) error {
	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(report domain.Report) {
	now := report.ScannedAt.Format("15:04:05")
	summary := report.Summary()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d mkts → sig:%d find:%d strat:%d",
		now, summary.Markets, summary.Signals, summary.Findings, len(report.Strategies))

	shown := 0
	for _, sig := range report.TopSignals() {
		if shown >= 3 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s %.2f", sig.Type, shortID(sig.PrimaryMarket, 12), sig.Score)
		shown++
	}
	for _, f := range report.HighFindings() {
		fmt.Fprintf(&sb, " | !%s", f.Title)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime señales, findings y estrategias con tablas.
func (c *Console) printFull(report domain.Report) {
	now := report.ScannedAt.Format("15:04:05")
	summary := report.Summary()

	fmt.Fprintf(c.out, "\n[%s] run %s — %d markets, %d signals, %d findings\n",
		now, shortID(report.RunID, 8), summary.Markets, summary.Signals, summary.Findings)

	c.printSignals(report)
	c.printFindings(report)
	for _, sr := range report.Strategies {
		c.printStrategy(sr)
	}
	c.printErrors(report)
}

// printSignals imprime la tabla de señales ordenada por score.
func (c *Console) printSignals(report domain.Report) {
	signals := report.TopSignals()
	if len(signals) == 0 {
		fmt.Fprintln(c.out, "  no signals detected")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Type", "Market", "Related", "Score", "Conf", "Description")

	for i, sig := range signals {
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(sig.Type),
			shortID(sig.PrimaryMarket, 16),
			shortID(sig.RelatedMarket, 16),
			fmt.Sprintf("%.3f", sig.Score),
			fmt.Sprintf("%.2f", sig.Confidence),
			truncate(sig.Description, 60),
		)
	}
	table.Render()
}

// printFindings lista las inconsistencias con su severidad.
func (c *Console) printFindings(report domain.Report) {
	if len(report.Findings) == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n=== CONSISTENCY (%d findings) ===\n", len(report.Findings))
	for _, f := range report.Findings {
		fmt.Fprintf(c.out, "  [%-6s] %s — %s\n", f.Severity, f.Title, f.Detail)
	}
}

// printStrategy imprime los legs de una estrategia, los extremos de su curva
// de payoff y la proyección de time-decay.
func (c *Console) printStrategy(sr domain.StrategyResult) {
	s := sr.Strategy
	fmt.Fprintf(c.out, "\n=== STRATEGY %s [%s] — %s ===\n",
		shortID(s.ID, 8), s.Mode, s.Primary.Label(50))
	fmt.Fprintf(c.out, "  capital at risk: $%.2f\n", s.CapitalAtRisk())

	table := tablewriter.NewWriter(c.out)
	table.Header("Leg", "Side", "Outcome", "Market", "Price", "Shares", "Notional", "Fill VWAP", "Slip")

	for i, leg := range s.Legs {
		vwap, slip := "-", "-"
		if i < len(sr.Fills) && sr.Fills[i].Filled > 0 {
			f := sr.Fills[i]
			vwap = fmt.Sprintf("%.4f", f.VWAP)
			slip = fmt.Sprintf("%+.4f", f.Slippage)
			if f.Partial {
				vwap += "*" // fill parcial
			}
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			string(leg.Side),
			string(leg.Outcome),
			leg.Market.Label(30),
			fmt.Sprintf("%.4f", leg.Price),
			fmt.Sprintf("%.1f", leg.Shares),
			fmt.Sprintf("$%.2f", leg.Notional()),
			vwap,
			slip,
		)
	}
	table.Render()

	if n := len(s.PayoffCurve); n > 0 {
		lo, hi := s.PayoffCurve[0], s.PayoffCurve[n-1]
		fmt.Fprintf(c.out, "  payoff: EV(p=%.2f)=$%.2f … EV(p=%.2f)=$%.2f\n",
			lo.PTrue, lo.EV, hi.PTrue, hi.EV)
	}
	for _, row := range s.Decay {
		fmt.Fprintf(c.out, "  decay %3.0fd: ×%.3f  expected %.4f  MtM $%+.2f\n",
			row.Days, row.Multiplier, row.ExpectedPrice, row.MarkToMarket)
	}
	for _, r := range s.Rationale {
		fmt.Fprintf(c.out, "  · %s\n", r)
	}
}

// printErrors lista los slots de mercado que fallaron en el ciclo.
func (c *Console) printErrors(report domain.Report) {
	var failed int
	for _, res := range report.Results {
		if res.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n  ⚠ %d market(s) failed this cycle:\n", failed)
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(c.out, "    %s: %v\n", res.Market.Label(40), res.Err)
		}
	}
}

// shortID trunca un identificador largo (condition IDs, UUIDs) para la tabla.
func shortID(s string, n int) string {
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// truncate corta un string a n runas. Las descripciones llegan con texto de
// preguntas de mercado, así que el corte tiene que respetar UTF-8.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

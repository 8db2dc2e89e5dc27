package domain

// consistency.go — chequeos de consistencia lógica sobre un cluster de
// mercados relacionados: overround/underround, paridad YES/NO, estructura
// temporal y liquidez/staleness. Opera solo sobre metadata de mercados.

import (
	"fmt"
	"sort"
	"time"
)

// Defaults de ScanConfig.
const (
	DefaultOverroundMax   = 1.03
	DefaultUnderroundMin  = 0.97
	DefaultParityTol      = 0.04
	DefaultTermTol        = 0.01
	DefaultMaxSpread      = 0.05
	DefaultMinLiquidity   = 60000.0
	DefaultStaleAfter     = 15 * time.Minute
	DefaultMaxFindings    = 6
	minExclusiveGroupSize = 2
)

// Severity clasifica la gravedad de un finding.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Finding es una inconsistencia detectada en el cluster.
type Finding struct {
	Severity Severity
	Title    string
	Detail   string
}

// ScanConfig parametriza el scanner de consistencia.
type ScanConfig struct {
	OverroundMax  float64
	UnderroundMin float64
	ParityTol     float64
	TermTol       float64
	MaxSpread     float64
	MinLiquidity  float64
	StaleAfter    time.Duration
	MaxFindings   int
}

// DefaultScanConfig devuelve la configuración estándar.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		OverroundMax:  DefaultOverroundMax,
		UnderroundMin: DefaultUnderroundMin,
		ParityTol:     DefaultParityTol,
		TermTol:       DefaultTermTol,
		MaxSpread:     DefaultMaxSpread,
		MinLiquidity:  DefaultMinLiquidity,
		StaleAfter:    DefaultStaleAfter,
		MaxFindings:   DefaultMaxFindings,
	}
}

// ScanConsistency ejecuta todos los chequeos sobre el cluster dado y
// devuelve como máximo MaxFindings findings, truncando en orden de
// detección: overround/paridad antes que term structure antes que
// liquidez/staleness. El orden de salida es determinista.
func ScanConsistency(markets []Market, now time.Time, cfg ScanConfig) []Finding {
	if cfg.MaxFindings <= 0 {
		cfg.MaxFindings = DefaultMaxFindings
	}

	var findings []Finding
	findings = append(findings, checkOverround(markets, cfg)...)
	findings = append(findings, checkParity(markets, cfg)...)
	findings = append(findings, checkTermStructure(markets, cfg)...)
	findings = append(findings, checkLiquidity(markets, now, cfg)...)

	if len(findings) > cfg.MaxFindings {
		findings = findings[:cfg.MaxFindings]
	}
	return findings
}

// checkOverround suma los YES mids de cada grupo mutuamente excluyente.
// Suma > OverroundMax → High (nombrando los dos mayores contribuyentes);
// suma < UnderroundMin → Medium.
func checkOverround(markets []Market, cfg ScanConfig) []Finding {
	groups := make(map[string][]Market)
	for _, m := range markets {
		if m.MutuallyExclusive && m.ClusterKey != "" {
			groups[m.ClusterKey] = append(groups[m.ClusterKey], m)
		}
	}

	var findings []Finding
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) < minExclusiveGroupSize {
			continue
		}

		var sum float64
		for _, m := range group {
			sum += m.YesMid
		}

		switch {
		case sum > cfg.OverroundMax:
			// Ordenar por contribución para nombrar a los dos mayores.
			byMid := append([]Market(nil), group...)
			sort.Slice(byMid, func(i, j int) bool { return byMid[i].YesMid > byMid[j].YesMid })
			findings = append(findings, Finding{
				Severity: SeverityHigh,
				Title:    "overround",
				Detail: fmt.Sprintf("exclusive group %q sums to %.3f; largest contributors: %s (%.2f), %s (%.2f)",
					key, sum, byMid[0].Label(40), byMid[0].YesMid, byMid[1].Label(40), byMid[1].YesMid),
			})
		case sum < cfg.UnderroundMin:
			findings = append(findings, Finding{
				Severity: SeverityMedium,
				Title:    "underround",
				Detail:   fmt.Sprintf("exclusive group %q sums to %.3f, below %.2f", key, sum, cfg.UnderroundMin),
			})
		}
	}
	return findings
}

// checkParity marca mercados donde |yesMid + noMid - 1| excede la tolerancia.
func checkParity(markets []Market, cfg ScanConfig) []Finding {
	var findings []Finding
	for _, m := range markets {
		if m.YesMid <= 0 || m.NoMid <= 0 {
			continue
		}
		if gap := m.ParityGap(); gap > cfg.ParityTol {
			findings = append(findings, Finding{
				Severity: SeverityHigh,
				Title:    "YES/NO parity break",
				Detail: fmt.Sprintf("%s: yes %.3f + no %.3f deviates %.3f from 1.0",
					m.Label(40), m.YesMid, m.NoMid, gap),
			})
		}
	}
	return findings
}

// checkTermStructure agrupa por TermKey, ordena por horizonte ascendente y
// marca inversiones: un plazo corto no debería cotizar por encima del largo
// en más de TermTol.
func checkTermStructure(markets []Market, cfg ScanConfig) []Finding {
	groups := make(map[string][]Market)
	for _, m := range markets {
		if m.TermKey != "" {
			groups[m.TermKey] = append(groups[m.TermKey], m)
		}
	}

	var findings []Finding
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].HorizonDays < group[j].HorizonDays })

		for i := 0; i+1 < len(group); i++ {
			short, long := group[i], group[i+1]
			if short.YesMid > long.YesMid+cfg.TermTol {
				findings = append(findings, Finding{
					Severity: SeverityMedium,
					Title:    "term structure violation",
					Detail: fmt.Sprintf("%s (%.0fd, %.3f) prices above %s (%.0fd, %.3f)",
						short.Label(30), short.HorizonDays, short.YesMid,
						long.Label(30), long.HorizonDays, long.YesMid),
				})
			}
		}
	}
	return findings
}

// checkLiquidity marca spreads anchos, liquidez fina y books stale.
func checkLiquidity(markets []Market, now time.Time, cfg ScanConfig) []Finding {
	var findings []Finding
	for _, m := range markets {
		if m.Spread > cfg.MaxSpread {
			findings = append(findings, Finding{
				Severity: SeverityMedium,
				Title:    "wide spread",
				Detail:   fmt.Sprintf("%s: spread %.3f above %.2f", m.Label(40), m.Spread, cfg.MaxSpread),
			})
		}
		if m.Liquidity > 0 && m.Liquidity < cfg.MinLiquidity {
			findings = append(findings, Finding{
				Severity: SeverityLow,
				Title:    "thin liquidity",
				Detail:   fmt.Sprintf("%s: $%.0f in book, below $%.0f floor", m.Label(40), m.Liquidity, cfg.MinLiquidity),
			})
		}
		if age := m.StalenessAge(now); age > cfg.StaleAfter {
			findings = append(findings, Finding{
				Severity: SeverityLow,
				Title:    "stale book",
				Detail:   fmt.Sprintf("%s: last update %s ago", m.Label(40), age.Round(time.Minute)),
			})
		}
	}
	return findings
}

// sortedKeys devuelve las keys del map ordenadas para output determinista.
func sortedKeys(groups map[string][]Market) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

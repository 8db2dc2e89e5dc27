package analysis

import "github.com/alejandrodnm/polylens/internal/domain"

// FilterConfig contiene los criterios mínimos para conservar una señal.
type FilterConfig struct {
	// MinScore descarta señales con score menor.
	MinScore float64
	// MinConfidence descarta señales con confidence menor.
	MinConfidence float64
	// Types limita los tipos de señal admitidos; vacío = todos.
	Types []domain.SignalType
}

// DefaultFilterConfig devuelve una configuración permisiva.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{}
}

// Filter aplica los criterios configurados sobre las señales de un report.
type Filter struct {
	cfg     FilterConfig
	allowed map[domain.SignalType]bool
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	var allowed map[domain.SignalType]bool
	if len(cfg.Types) > 0 {
		allowed = make(map[domain.SignalType]bool, len(cfg.Types))
		for _, t := range cfg.Types {
			allowed[t] = true
		}
	}
	return &Filter{cfg: cfg, allowed: allowed}
}

// Apply poda in-slot las señales que no pasan los criterios. Los slots y su
// orden se conservan.
func (f *Filter) Apply(results []domain.MarketResult) {
	for i := range results {
		kept := results[i].Signals[:0:0]
		for _, sig := range results[i].Signals {
			if f.passes(sig) {
				kept = append(kept, sig)
			}
		}
		results[i].Signals = kept
	}
}

// passes devuelve true si la señal supera todos los criterios.
func (f *Filter) passes(sig domain.Signal) bool {
	if sig.Score < f.cfg.MinScore {
		return false
	}
	if sig.Confidence < f.cfg.MinConfidence {
		return false
	}
	if f.allowed != nil && !f.allowed[sig.Type] {
		return false
	}
	return true
}

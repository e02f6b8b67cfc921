package provider

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ports"
)

// FormatPDF selects the PDF variant of the fincen and fbi_ic3 sources.
const FormatPDF = "pdf"

// Factory builds a source from its configuration entry.
type Factory func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource

var registry = map[string]Factory{
	domain.SourceCFPB: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		return NewCFPBSource(cfg, client, logger)
	},
	domain.SourceOCC: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		if strings.EqualFold(cfg.Format, FormatHTML) {
			return NewOCCListingSource(cfg, client, logger)
		}
		return NewOCCSource(cfg, client, logger)
	},
	domain.SourceSEC: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		if strings.EqualFold(cfg.Format, FormatHTML) {
			return NewSECListingSource(cfg, client, logger)
		}
		return NewSECSource(cfg, client, logger)
	},
	domain.SourceOFAC: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		return NewOFACSource(cfg, client, logger)
	},
	domain.SourceFinCEN: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		if strings.EqualFold(cfg.Format, FormatPDF) {
			return NewFinCENSARSource(cfg, client, logger)
		}
		return NewFinCENSource(cfg, client, logger)
	},
	domain.SourceFBIIC3: func(cfg config.SourceConfig, client Doer, logger zerolog.Logger) ports.AlertSource {
		if strings.EqualFold(cfg.Format, FormatPDF) {
			return NewIC3ReportSource(cfg, client, logger)
		}
		return NewIC3Source(cfg, client, logger)
	},
}

// order is the default run order when no sources are requested.
var order = []string{
	domain.SourceCFPB,
	domain.SourceOCC,
	domain.SourceSEC,
	domain.SourceOFAC,
	domain.SourceFinCEN,
	domain.SourceFBIIC3,
}

// Names lists every registered source in default run order.
func Names() []string {
	return append([]string{}, order...)
}

func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Build constructs the active sources. requested selects and orders them;
// when empty every registered source is considered. Unknown names are
// warned about, sources that are disabled or missing from the
// configuration are skipped with an info line.
func Build(cfg *config.RegulatoryConfig, requested []string, client Doer, logger zerolog.Logger) []ports.AlertSource {
	names := requested
	if len(names) == 0 {
		names = order
	}

	sources := []ports.AlertSource{}
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		factory, ok := Lookup(name)
		if !ok {
			logger.Warn().Str("source", name).Strs("known", order).Msg("unknown source, skipping")
			continue
		}

		var srcCfg config.SourceConfig
		if cfg != nil {
			srcCfg, ok = cfg.Source(name)
		}
		if !ok || !srcCfg.Enabled {
			logger.Info().Str("source", name).Msg("source disabled, skipping")
			continue
		}

		sources = append(sources, factory(srcCfg, client, logger))
	}

	return sources
}

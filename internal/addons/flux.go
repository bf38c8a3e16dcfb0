package addons

import (
	"github.com/imamik/mreks/internal/addons/helm"
	"github.com/imamik/mreks/internal/config"
)

// Flux returns the continuous-reconciliation release pointed at the
// configured git repository.
func Flux(cfg config.FluxConfig) Release {
	spec := mustChart(helm.ChartFlux).
		WithRepository(cfg.ChartRepository).
		WithVersion(cfg.ChartVersion)

	values := helm.Values{}
	values.Set("git.url", cfg.GitURL)

	return Release{
		Name:      "flux",
		Namespace: "flux",
		Kind:      KindReconciliation,
		Chart:     spec,
		Values:    values,
	}
}

package addons

import (
	"fmt"

	"github.com/imamik/mreks/internal/addons/helm"
)

// Kind identifies the purpose of an add-on.
type Kind string

// Add-on kinds. The five cluster kinds are installed in this order.
const (
	KindIngressController Kind = "ingress-controller"
	KindAutoscaler        Kind = "autoscaler"
	KindInsights          Kind = "insights"
	KindNetworkPolicy     Kind = "network-policy"
	KindMonitoring        Kind = "monitoring"
	KindReconciliation    Kind = "reconciliation"
)

// ClusterKinds lists the kinds every cluster receives, in install order.
func ClusterKinds() []Kind {
	return []Kind{KindIngressController, KindAutoscaler, KindInsights, KindNetworkPolicy, KindMonitoring}
}

// Release is one Helm release to install into a cluster.
type Release struct {
	Name      string         `yaml:"name" json:"name"`
	Namespace string         `yaml:"namespace" json:"namespace"`
	Kind      Kind           `yaml:"kind" json:"kind"`
	Chart     helm.ChartSpec `yaml:"chart" json:"chart"`
	Values    helm.Values    `yaml:"values,omitempty" json:"values,omitempty"`
}

func (r Release) String() string {
	return fmt.Sprintf("%s/%s (%s)", r.Namespace, r.Name, r.Chart)
}

// Validate checks that the release can be installed.
func (r Release) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("release of %s has no name", r.Chart)
	}
	if r.Namespace == "" {
		return fmt.Errorf("release %s has no namespace", r.Name)
	}
	return r.Chart.Validate()
}

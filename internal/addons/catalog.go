package addons

import (
	"github.com/imamik/mreks/internal/addons/helm"
	"github.com/imamik/mreks/internal/topology"
)

// ForCluster returns the five add-on releases bound to handle's cluster, in
// install order. The set is the same for every region.
func ForCluster(handle topology.ClusterHandle) []Release {
	return []Release{
		loadBalancerController(handle),
		clusterAutoscaler(handle),
		cloudWatchMetrics(handle),
		tigeraOperator(),
		prometheus(),
	}
}

func mustChart(name string) helm.ChartSpec {
	spec, err := helm.GetChartSpec(name)
	if err != nil {
		panic(err)
	}
	return spec
}

func loadBalancerController(handle topology.ClusterHandle) Release {
	return Release{
		Name:      "aws-load-balancer-controller",
		Namespace: "kube-system",
		Kind:      KindIngressController,
		Chart:     mustChart(helm.ChartLoadBalancerController),
		Values: helm.Values{
			"clusterName": handle.Name,
			"region":      handle.Region.Name,
			"serviceAccount": helm.Values{
				"create": true,
				"name":   "aws-load-balancer-controller",
			},
		},
	}
}

func clusterAutoscaler(handle topology.ClusterHandle) Release {
	return Release{
		Name:      "cluster-autoscaler",
		Namespace: "kube-system",
		Kind:      KindAutoscaler,
		Chart:     mustChart(helm.ChartClusterAutoscaler),
		Values: helm.Values{
			"cloudProvider": "aws",
			"awsRegion":     handle.Region.Name,
			"autoDiscovery": helm.Values{
				"clusterName": handle.Name,
			},
			"extraArgs": helm.Values{
				"balance-similar-node-groups":   true,
				"skip-nodes-with-system-pods":   false,
				"skip-nodes-with-local-storage": false,
			},
		},
	}
}

func cloudWatchMetrics(handle topology.ClusterHandle) Release {
	return Release{
		Name:      "aws-cloudwatch-metrics",
		Namespace: "amazon-cloudwatch",
		Kind:      KindInsights,
		Chart:     mustChart(helm.ChartCloudWatchMetrics),
		Values: helm.Values{
			"clusterName": handle.Name,
		},
	}
}

func tigeraOperator() Release {
	return Release{
		Name:      "calico",
		Namespace: "tigera-operator",
		Kind:      KindNetworkPolicy,
		Chart:     mustChart(helm.ChartTigeraOperator),
		Values: helm.Values{
			"installation": helm.Values{
				"kubernetesProvider": "EKS",
				"cni": helm.Values{
					"type": "AmazonVPC",
				},
			},
		},
	}
}

func prometheus() Release {
	pv := func() helm.Values {
		return helm.Values{"persistentVolume": helm.Values{"storageClass": "gp2"}}
	}
	return Release{
		Name:      "prometheus",
		Namespace: "prometheus",
		Kind:      KindMonitoring,
		Chart:     mustChart(helm.ChartPrometheus),
		Values: helm.Values{
			"alertmanager": pv(),
			"server":       pv(),
		},
	}
}

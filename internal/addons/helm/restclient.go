package helm

import (
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// InMemoryRESTClientGetter satisfies Helm's RESTClientGetter from kubeconfig
// bytes, so no kubeconfig file has to exist on disk. The REST config and the
// discovery cache are built once and shared by every action.
type InMemoryRESTClientGetter struct {
	kubeconfig []byte
	namespace  string

	configOnce sync.Once
	restConfig *rest.Config
	configErr  error

	discoveryOnce sync.Once
	discovery     discovery.CachedDiscoveryInterface
	discoveryErr  error
}

// NewInMemoryRESTClientGetter creates a getter for kubeconfig scoped to namespace.
func NewInMemoryRESTClientGetter(kubeconfig []byte, namespace string) *InMemoryRESTClientGetter {
	return &InMemoryRESTClientGetter{kubeconfig: kubeconfig, namespace: namespace}
}

// ToRESTConfig returns the REST config parsed from the kubeconfig.
func (g *InMemoryRESTClientGetter) ToRESTConfig() (*rest.Config, error) {
	g.configOnce.Do(func() {
		g.restConfig, g.configErr = clientcmd.RESTConfigFromKubeConfig(g.kubeconfig)
	})
	return g.restConfig, g.configErr
}

// ToDiscoveryClient returns a memory-cached discovery client.
func (g *InMemoryRESTClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	g.discoveryOnce.Do(func() {
		cfg, err := g.ToRESTConfig()
		if err != nil {
			g.discoveryErr = err
			return
		}
		dc, err := discovery.NewDiscoveryClientForConfig(cfg)
		if err != nil {
			g.discoveryErr = err
			return
		}
		g.discovery = memory.NewMemCacheClient(dc)
	})
	return g.discovery, g.discoveryErr
}

// ToRESTMapper returns a deferred mapper backed by the cached discovery client.
func (g *InMemoryRESTClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader returns a client config that resolves the getter's
// namespace as the default namespace.
func (g *InMemoryRESTClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	raw, err := clientcmd.Load(g.kubeconfig)
	if err != nil {
		// Surfaces the parse error from every ClientConfig call.
		cfg, _ := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
		return cfg
	}
	overrides := &clientcmd.ConfigOverrides{}
	overrides.Context.Namespace = g.namespace
	return clientcmd.NewDefaultClientConfig(*raw, overrides)
}

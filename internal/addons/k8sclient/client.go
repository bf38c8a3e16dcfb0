package k8sclient

import (
	"context"
	"fmt"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// FieldManager identifies mreks as the owner of applied fields.
const FieldManager = "mreks"

// Client applies manifests to one cluster.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply
	// and returns a reference to every applied object, in document order.
	ApplyManifests(ctx context.Context, manifests []byte) ([]ObjectRef, error)

	// EnsureNamespace creates the namespace if it does not exist.
	EnsureNamespace(ctx context.Context, name string) error

	// ServerVersion returns the API server's git version, e.g. "v1.32.3-eks-4096722".
	ServerVersion() (string, error)

	// RefreshDiscovery rebuilds the REST mapper to pick up newly installed CRDs.
	RefreshDiscovery(ctx context.Context) error
}

type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	restConfig    *rest.Config

	mu     sync.RWMutex
	mapper meta.RESTMapper
}

// NewFromKubeconfig creates a Client from kubeconfig bytes.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}
	return NewFromRESTConfig(restConfig)
}

// NewFromRESTConfig creates a Client from a REST config.
func NewFromRESTConfig(restConfig *rest.Config) (Client, error) {
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	mapper, err := discoverMapper(restConfig)
	if err != nil {
		return nil, err
	}

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		restConfig:    restConfig,
		mapper:        mapper,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients.
// Discovery refresh is a no-op for such clients.
func NewFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface, mapper meta.RESTMapper) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

func discoverMapper(restConfig *rest.Config) (meta.RESTMapper, error) {
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get API group resources: %w", err)
	}
	return restmapper.NewDiscoveryRESTMapper(groupResources), nil
}

func (c *client) RefreshDiscovery(_ context.Context) error {
	if c.restConfig == nil {
		return nil
	}

	mapper, err := discoverMapper(c.restConfig)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.mapper = mapper
	c.mu.Unlock()
	return nil
}

func (c *client) restMapper() meta.RESTMapper {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mapper
}

func (c *client) EnsureNamespace(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("namespace name is required")
	}

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
	_, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{FieldManager: FieldManager})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

func (c *client) ServerVersion() (string, error) {
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	return info.GitVersion, nil
}

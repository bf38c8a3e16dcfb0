package k8sclient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"
)

type recordedPatch struct {
	Resource  string
	Namespace string
	Name      string
	Type      types.PatchType
	Object    map[string]any
}

type patchRecorder struct {
	mu      sync.Mutex
	patches []recordedPatch
	failOn  string
}

func (r *patchRecorder) react(action k8stesting.Action) (bool, runtime.Object, error) {
	pa := action.(k8stesting.PatchAction)
	if pa.GetName() == r.failOn {
		return true, nil, errors.New("admission webhook denied the request")
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(pa.GetPatch()); err != nil {
		return true, nil, err
	}

	r.mu.Lock()
	r.patches = append(r.patches, recordedPatch{
		Resource:  pa.GetResource().Resource,
		Namespace: pa.GetNamespace(),
		Name:      pa.GetName(),
		Type:      pa.GetPatchType(),
		Object:    obj.Object,
	})
	r.mu.Unlock()
	return true, obj, nil
}

// setupApplyTestClient returns a client whose dynamic patches are recorded
// instead of applied; the fake dynamic client cannot serve apply patches.
func setupApplyTestClient(t *testing.T) (Client, *patchRecorder) {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset()
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)

	rec := &patchRecorder{}
	dynamicClient.PrependReactor("patch", "*", rec.react)

	return NewFromClients(clientset, dynamicClient, createApplyTestMapper()), rec
}

func createApplyTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name:             "",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
					{Name: "services", Namespaced: true, Kind: "Service"},
					{Name: "serviceaccounts", Namespaced: true, Kind: "ServiceAccount"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name:             "apps",
				Versions:         []metav1.GroupVersionForDiscovery{{GroupVersion: "apps/v1", Version: "v1"}},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "apps/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "deployments", Namespaced: true, Kind: "Deployment"},
				},
			},
		},
	}

	return restmapper.NewDiscoveryRESTMapper(resources)
}

func TestApplyManifests_Empty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		manifests string
	}{
		{"empty", ``},
		{"separators only", "---\n---\n---\n"},
		{"whitespace", "\n\n---\n\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, rec := setupApplyTestClient(t)

			refs, err := c.ApplyManifests(context.Background(), []byte(tt.manifests))
			require.NoError(t, err)
			assert.Empty(t, refs)
			assert.Empty(t, rec.patches)
		})
	}
}

func TestApplyManifests_InvalidYAML(t *testing.T) {
	t.Parallel()
	c, _ := setupApplyTestClient(t)

	_, err := c.ApplyManifests(context.Background(), []byte(`{invalid yaml: [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode manifest")
}

func TestApplyManifests_NoKindInDocument(t *testing.T) {
	t.Parallel()
	c, _ := setupApplyTestClient(t)

	_, err := c.ApplyManifests(context.Background(), []byte("apiVersion: v1\nmetadata:\n  name: test\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Kind")
}

func TestApplyManifests_MultiDocument(t *testing.T) {
	t.Parallel()
	c, rec := setupApplyTestClient(t)

	manifests := []byte(`---
apiVersion: v1
kind: Namespace
metadata:
  name: flask
---
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: flask-app
  namespace: flask
spec:
  replicas: 2
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
data:
  region: us-west-2
`)

	refs, err := c.ApplyManifests(context.Background(), manifests)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, ObjectRef{APIVersion: "v1", Kind: "Namespace", Name: "flask"}, refs[0])
	assert.Equal(t, "Deployment flask/flask-app", refs[1].String())
	assert.Equal(t, "default", refs[2].Namespace, "namespaced objects default to the default namespace")

	require.Len(t, rec.patches, 3)
	for _, p := range rec.patches {
		assert.Equal(t, types.ApplyPatchType, p.Type)
	}
	assert.Equal(t, "namespaces", rec.patches[0].Resource)
	assert.Empty(t, rec.patches[0].Namespace)
	assert.Equal(t, "deployments", rec.patches[1].Resource)
	assert.Equal(t, "flask", rec.patches[1].Namespace)
	assert.Equal(t, "default", rec.patches[2].Namespace)
}

func TestApplyManifests_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	c, rec := setupApplyTestClient(t)
	rec.failOn = "second"

	manifests := []byte(`apiVersion: v1
kind: ConfigMap
metadata: {name: first, namespace: default}
---
apiVersion: v1
kind: ConfigMap
metadata: {name: second, namespace: default}
---
apiVersion: v1
kind: ConfigMap
metadata: {name: third, namespace: default}
`)

	refs, err := c.ApplyManifests(context.Background(), manifests)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply ConfigMap default/second")
	assert.Contains(t, err.Error(), "admission webhook denied")
	require.Len(t, refs, 1)
	assert.Equal(t, "first", refs[0].Name)
	assert.Len(t, rec.patches, 1)
}

func TestApplyManifests_UnknownKind(t *testing.T) {
	t.Parallel()
	c, _ := setupApplyTestClient(t)

	manifests := []byte(`apiVersion: source.toolkit.fluxcd.io/v1
kind: GitRepository
metadata:
  name: app
`)

	_, err := c.ApplyManifests(context.Background(), manifests)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get REST mapping")
}

func TestApplyObject_NoKind(t *testing.T) {
	t.Parallel()
	c, _ := setupApplyTestClient(t)

	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"metadata":   map[string]any{"name": "test"},
	}}

	_, err := c.(*client).applyObject(context.Background(), obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kind set")
}

func TestEnsureNamespace(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "flux"}})
	c := NewFromClients(clientset, nil, createApplyTestMapper())

	require.NoError(t, c.EnsureNamespace(context.Background(), "flux"), "existing namespace is fine")
	require.NoError(t, c.EnsureNamespace(context.Background(), "prometheus"))

	_, err := clientset.CoreV1().Namespaces().Get(context.Background(), "prometheus", metav1.GetOptions{})
	require.NoError(t, err)

	assert.Error(t, c.EnsureNamespace(context.Background(), ""))
}

func TestServerVersion(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset()
	clientset.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: "v1.32.3-eks-4096722"}

	c := NewFromClients(clientset, nil, createApplyTestMapper())
	v, err := c.ServerVersion()
	require.NoError(t, err)
	assert.Equal(t, "v1.32.3-eks-4096722", v)
}

func TestRefreshDiscovery_NoopForInjectedClients(t *testing.T) {
	t.Parallel()
	c, _ := setupApplyTestClient(t)
	assert.NoError(t, c.RefreshDiscovery(context.Background()))
}

func TestNewFromKubeconfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		kubeconfig []byte
	}{
		{"garbage", []byte(`invalid kubeconfig content`)},
		{"empty", []byte{}},
		{"no clusters", []byte("apiVersion: v1\nkind: Config\nclusters: []\ncontexts: []\nusers: []\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFromKubeconfig(tt.kubeconfig)
			require.Error(t, err)
		})
	}
}

func TestObjectRef_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Namespace/flux", ObjectRef{Kind: "Namespace", Name: "flux"}.String())
	assert.Equal(t, "Service flux/memcached", ObjectRef{Kind: "Service", Namespace: "flux", Name: "memcached"}.String())
}

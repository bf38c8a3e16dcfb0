package k8sclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ObjectRef identifies an applied object.
type ObjectRef struct {
	APIVersion string
	Kind       string
	Namespace  string
	Name       string
}

func (r ObjectRef) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s %s/%s", r.Kind, r.Namespace, r.Name)
}

// ApplyManifests applies multi-document YAML using Server-Side Apply.
// Each document is parsed and applied separately; empty documents are
// skipped. Applying stops at the first failing document.
func (c *client) ApplyManifests(ctx context.Context, manifests []byte) ([]ObjectRef, error) {
	decoder := yaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)

	var applied []ObjectRef
	for docIndex := 0; ; docIndex++ {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return applied, fmt.Errorf("failed to decode manifest document %d: %w", docIndex, err)
		}

		if len(obj.Object) == 0 {
			continue
		}

		ref, err := c.applyObject(ctx, &obj)
		if err != nil {
			return applied, fmt.Errorf("failed to apply %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
		}
		applied = append(applied, ref)
	}

	return applied, nil
}

func (c *client) applyObject(ctx context.Context, obj *unstructured.Unstructured) (ObjectRef, error) {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return ObjectRef{}, fmt.Errorf("object has no kind set")
	}

	mapping, err := c.restMapper().RESTMapping(gvk.GroupKind(), gvk.Version)
	if meta.IsNoMatchError(err) && c.restConfig != nil {
		// The kind may come from a CRD installed after discovery ran.
		if rerr := c.RefreshDiscovery(ctx); rerr != nil {
			return ObjectRef{}, rerr
		}
		mapping, err = c.restMapper().RESTMapping(gvk.GroupKind(), gvk.Version)
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	namespace := obj.GetNamespace()
	namespaced := mapping.Scope.Name() == meta.RESTScopeNameNamespace
	if namespaced && namespace == "" {
		namespace = "default"
		obj.SetNamespace(namespace)
	}
	if !namespaced {
		namespace = ""
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return ObjectRef{}, fmt.Errorf("failed to marshal object to JSON: %w", err)
	}

	force := true
	opts := metav1.PatchOptions{FieldManager: FieldManager, Force: &force}

	resource := c.dynamicClient.Resource(mapping.Resource)
	if namespaced {
		_, err = resource.Namespace(namespace).Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts)
	} else {
		_, err = resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts)
	}
	if err != nil {
		return ObjectRef{}, fmt.Errorf("server-side apply failed: %w", err)
	}

	return ObjectRef{
		APIVersion: obj.GetAPIVersion(),
		Kind:       gvk.Kind,
		Namespace:  namespace,
		Name:       obj.GetName(),
	}, nil
}

// Package kube publishes bootstrap artifacts into a Kubernetes namespace
// and synchronizes previously published, annotation-marked artifacts back
// out of it.
//
// Public records become ConfigMaps, sensitive records become Secrets.
// The cluster connection and resolved namespace are threaded through an
// explicit Context value rather than process-wide state, so tests can
// substitute a fake clientset and runs stay isolated.
package kube

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// nsFile is where the service account namespace is mounted when running
// inside a cluster.
const nsFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// Context carries the cluster client, the resolved namespace and the
// logger into the publisher and synchronizer.
type Context struct {
	context.Context
	Client    kubernetes.Interface
	Namespace string
	Log       *logrus.Entry
}

// NewContext bundles an existing client into a Context.
func NewContext(ctx context.Context, client kubernetes.Interface, namespace string, log *logrus.Entry) *Context {
	return &Context{
		Context:   ctx,
		Client:    client,
		Namespace: namespace,
		Log:       log.WithField("namespace", namespace),
	}
}

// Connect builds a clientset from the in-cluster service account when
// available, falling back to the given kubeconfig path (or the standard
// default location when empty).
func Connect(kubeconfig string) (kubernetes.Interface, error) {
	if kubeconfig == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return kubernetes.NewForConfig(cfg)
		}
		kubeconfig = clientcmd.RecommendedHomeFile
	}
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig %s: %w", kubeconfig, err)
	}
	return kubernetes.NewForConfig(cfg)
}

// ResolveNamespace picks the namespace for a run: the explicit flag value
// when set, otherwise the pod's service account namespace, otherwise
// "default".
func ResolveNamespace(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if data, err := os.ReadFile(nsFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns
		}
	}
	return "default"
}

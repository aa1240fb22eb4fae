package kube

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Fetch reads one public object by name and returns its data entries.
// Used to retrieve a single well-known record (the shared genesis, the
// static-peer list) without paging through the whole namespace.
func Fetch(ctx *Context, name string) (map[string]string, error) {
	cfgmap, err := ctx.Client.CoreV1().ConfigMaps(ctx.Namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get cfgmap %s/%s: %w", ctx.Namespace, name, err)
	}
	return cfgmap.Data, nil
}

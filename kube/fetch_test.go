package kube

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestFetch(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "besu-genesis", Namespace: "boot-ns"},
		Data:       map[string]string{"genesis.json": "{}"},
	})

	data, err := Fetch(testContext(client), "besu-genesis")
	require.NoError(err)
	require.Equal("{}", data["genesis.json"])

	_, err = Fetch(testContext(client), "missing")
	require.Error(err)
	require.Contains(err.Error(), "boot-ns/missing")
}

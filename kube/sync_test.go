package kube

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/forgenet/forgenet/artifacts"
)

type memorySink struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemorySink() *memorySink {
	return &memorySink{entries: map[string]string{}}
}

func (s *memorySink) WriteEntry(_ context.Context, object, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[object+"/"+key] = value
	return nil
}

func annotated(name string, data map[string]string) corev1.ConfigMap {
	return corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Annotations: map[string]string{artifacts.AnnotationKey: artifacts.AnnotationInterfaceBundle},
		},
		Data: data,
	}
}

func plain(name string) corev1.ConfigMap {
	return corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Data:       map[string]string{"k": "v"},
	}
}

// pageReactor replays a scripted sequence of list responses (or errors).
type listStep struct {
	err   error
	items []corev1.ConfigMap
	next  string
}

func pageReactor(steps []listStep) k8stesting.ReactionFunc {
	call := 0
	return func(k8stesting.Action) (bool, runtime.Object, error) {
		step := steps[call]
		if call < len(steps)-1 {
			call++
		}
		if step.err != nil {
			return true, nil, step.err
		}
		return true, &corev1.ConfigMapList{
			ListMeta: metav1.ListMeta{Continue: step.next},
			Items:    step.items,
		}, nil
	}
}

// TestSyncPaginates walks two pages, filters by the discovery annotation
// and reports the matched totals.
func TestSyncPaginates(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{items: []corev1.ConfigMap{
			annotated("bundle-a", map[string]string{"Token.json": "{}"}),
			plain("besu-genesis"),
		}, next: "t1"},
		{items: []corev1.ConfigMap{
			annotated("bundle-b", map[string]string{"Registry.json": "{}", "Registry.bin": "0x"}),
		}},
	}))

	sink := newMemorySink()
	totals, err := NewSynchronizer(testContext(client)).Sync(artifacts.AnnotationInterfaceBundle, sink)
	require.NoError(err)

	require.Equal(2, totals.Objects)
	require.Equal(3, totals.Entries)
	require.Equal("{}", sink.entries["bundle-a/Token.json"])
	require.Equal("0x", sink.entries["bundle-b/Registry.bin"])
	require.NotContains(sink.entries, "besu-genesis/k")
}

// TestSyncZeroMatches: nothing carrying the annotation is a normal,
// non-error outcome.
func TestSyncZeroMatches(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{items: []corev1.ConfigMap{plain("besu-genesis")}},
	}))

	totals, err := NewSynchronizer(testContext(client)).Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.NoError(err)
	require.Zero(totals.Objects)
	require.Zero(totals.Entries)
}

// TestSyncTokenReplay: a store returning the same continuation token
// twice is a protocol violation and fails immediately instead of
// looping forever.
func TestSyncTokenReplay(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{items: []corev1.ConfigMap{annotated("bundle-a", map[string]string{"a": "1"})}, next: "t1"},
		{items: []corev1.ConfigMap{annotated("bundle-b", map[string]string{"b": "2"})}, next: "t1"},
	}))

	_, err := NewSynchronizer(testContext(client)).Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.ErrorIs(err, ErrTokenReplayed)
}

// TestSyncResnapshot: an expired consistency cursor restarts the listing
// from the beginning and the run still completes with correct totals.
func TestSyncResnapshot(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{err: apierrors.NewResourceExpired("the provided continue parameter is too old")},
		{items: []corev1.ConfigMap{annotated("bundle-a", map[string]string{"Token.json": "{}"})}},
	}))

	totals, err := NewSynchronizer(testContext(client)).Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.NoError(err)
	require.Equal(1, totals.Objects)
	require.Equal(1, totals.Entries)
}

// TestSyncResnapshotCeiling: a store that keeps expiring the cursor
// eventually fails instead of restarting forever.
func TestSyncResnapshotCeiling(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{err: apierrors.NewResourceExpired("too old")},
	}))

	_, err := NewSynchronizer(testContext(client)).Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.Error(err)
	require.Contains(err.Error(), "expired")
}

// TestSyncRetry: transient throttling is retried with exponential
// backoff and the same cursor, then the run completes.
func TestSyncRetry(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{err: apierrors.NewTooManyRequests("slow down", 1)},
		{err: apierrors.NewServiceUnavailable("try later")},
		{items: []corev1.ConfigMap{annotated("bundle-a", map[string]string{"Token.json": "{}"})}},
	}))

	var delays []time.Duration
	syncer := NewSynchronizer(testContext(client),
		WithBackoff(10*time.Millisecond),
		withSleeper(func(d time.Duration) { delays = append(delays, d) }),
	)
	totals, err := syncer.Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.NoError(err)
	require.Equal(1, totals.Objects)

	// base, then base doubled.
	require.Equal([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, delays)
}

// TestSyncRetryCeiling: exceeding the retry ceiling is fatal.
func TestSyncRetryCeiling(t *testing.T) {
	require := require.New(t)

	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "configmaps", pageReactor([]listStep{
		{err: apierrors.NewTooManyRequests("slow down", 1)},
	}))

	var sleeps int
	syncer := NewSynchronizer(testContext(client),
		withSleeper(func(time.Duration) { sleeps++ }),
	)
	_, err := syncer.Sync(artifacts.AnnotationInterfaceBundle, newMemorySink())
	require.Error(err)
	require.Contains(err.Error(), "throttled")
	require.Equal(defaultMaxRetries, sleeps)
}

// TestDirSink verifies entries land at <dir>/<object>/<key>.
func TestDirSink(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	sink := DirSink{Dir: dir}
	require.NoError(sink.WriteEntry(context.Background(), "bundle-a", "Token.json", "{}"))

	raw, err := os.ReadFile(filepath.Join(dir, "bundle-a", "Token.json"))
	require.NoError(err)
	require.Equal("{}", string(raw))
}

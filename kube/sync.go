package kube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/forgenet/forgenet/artifacts"
)

// ErrTokenReplayed reports a pagination protocol violation: the store
// returned a continuation token it had already returned during the same
// listing. Retrying cannot fix a store that violates its own contract,
// so the listing fails immediately instead of looping forever.
var ErrTokenReplayed = errors.New("continuation token replayed by store")

const (
	defaultPageSize       = 100
	defaultBaseDelay      = 500 * time.Millisecond
	defaultMaxRetries     = 5
	defaultMaxResnapshots = 3
)

// Sink receives the data entries of every matched object.
type Sink interface {
	WriteEntry(ctx context.Context, object, key, value string) error
}

// DirSink writes each entry to <dir>/<object>/<key>.
type DirSink struct {
	Dir string
}

func (s DirSink) WriteEntry(_ context.Context, object, key, value string) error {
	dir := filepath.Join(s.Dir, object)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sink directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, key)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write entry %s: %w", path, err)
	}
	return nil
}

// Totals summarizes one completed synchronization.
type Totals struct {
	Objects int
	Entries int
}

// Synchronizer pages through the namespace's public objects and hands
// the data entries of every object carrying the expected discovery
// annotation to a sink.
type Synchronizer struct {
	ctx            *Context
	pageSize       int64
	baseDelay      time.Duration
	maxRetries     int
	maxResnapshots int
	sleep          func(time.Duration)
}

// SyncOpt is for configuring a Synchronizer.
type SyncOpt func(*Synchronizer)

// WithPageSize overrides the list page size bound.
func WithPageSize(n int64) SyncOpt {
	return func(s *Synchronizer) { s.pageSize = n }
}

// WithBackoff overrides the retry base delay.
func WithBackoff(d time.Duration) SyncOpt {
	return func(s *Synchronizer) { s.baseDelay = d }
}

// withSleeper substitutes the delay function, for tests.
func withSleeper(f func(time.Duration)) SyncOpt {
	return func(s *Synchronizer) { s.sleep = f }
}

// NewSynchronizer wires a Synchronizer to the given cluster context.
func NewSynchronizer(ctx *Context, opts ...SyncOpt) *Synchronizer {
	s := &Synchronizer{
		ctx:            ctx,
		pageSize:       defaultPageSize,
		baseDelay:      defaultBaseDelay,
		maxRetries:     defaultMaxRetries,
		maxResnapshots: defaultMaxResnapshots,
		sleep:          time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cursor is the pagination state: the opaque continuation token plus the
// set of tokens already seen during the current listing, used to detect
// a replayed token.
type cursor struct {
	token string
	seen  map[string]struct{}
}

func newCursor() *cursor {
	return &cursor{seen: map[string]struct{}{}}
}

// advance moves to the next page token, failing on a replay.
func (c *cursor) advance(next string) error {
	if _, dup := c.seen[next]; dup {
		return fmt.Errorf("token %q: %w", next, ErrTokenReplayed)
	}
	c.seen[next] = struct{}{}
	c.token = next
	return nil
}

// reset discards the token and the dedup history; the listing restarts
// from the beginning.
func (c *cursor) reset() {
	c.token = ""
	c.seen = map[string]struct{}{}
}

// Sync lists all public objects annotated with the given discovery value
// and writes their data entries to the sink. Zero matches is a normal,
// non-error outcome.
//
// Transient store statuses (rate limited, unavailable) are retried with
// exponential backoff up to a fixed ceiling. An expired consistency
// cursor restarts the listing from scratch, up to its own ceiling; a
// successful page resets both counters.
func (s *Synchronizer) Sync(annotation string, sink Sink) (Totals, error) {
	var totals Totals
	cur := newCursor()
	retries, resnapshots := 0, 0

	for {
		list, err := s.ctx.Client.CoreV1().ConfigMaps(s.ctx.Namespace).List(s.ctx, metav1.ListOptions{
			Limit:    s.pageSize,
			Continue: cur.token,
		})
		switch {
		case err == nil:
		case apierrors.IsResourceExpired(err) || apierrors.IsGone(err):
			resnapshots++
			if resnapshots > s.maxResnapshots {
				return totals, fmt.Errorf("list artifacts: cursor expired %d times: %w", resnapshots, err)
			}
			s.ctx.Log.WithField("attempt", resnapshots).Warn("cursor expired, restarting listing")
			cur.reset()
			totals = Totals{}
			retries = 0
			continue
		case apierrors.IsTooManyRequests(err) || apierrors.IsServiceUnavailable(err):
			retries++
			if retries > s.maxRetries {
				return totals, fmt.Errorf("list artifacts: still throttled after %d attempts: %w", retries, err)
			}
			delay := s.baseDelay << (retries - 1)
			s.ctx.Log.WithFields(map[string]interface{}{
				"attempt": retries,
				"delay":   delay.String(),
			}).Warn("store throttled, backing off")
			s.sleep(delay)
			continue
		default:
			return totals, fmt.Errorf("list artifacts: %w", err)
		}
		retries, resnapshots = 0, 0

		matched := filterByAnnotation(list.Items, annotation)
		if err := s.writePage(matched, sink); err != nil {
			return totals, err
		}
		for _, item := range matched {
			totals.Objects++
			totals.Entries += len(item.Data)
		}

		next := list.GetContinue()
		if next == "" {
			s.ctx.Log.WithFields(map[string]interface{}{
				"objects": totals.Objects,
				"entries": totals.Entries,
			}).Info("synchronization complete")
			return totals, nil
		}
		if err := cur.advance(next); err != nil {
			return totals, err
		}
	}
}

// writePage fans the matched objects' entries out to the sink. Pages are
// strictly sequential, but entries within one page are independent.
func (s *Synchronizer) writePage(items []corev1.ConfigMap, sink Sink) error {
	eg, ctx := errgroup.WithContext(s.ctx)
	for _, item := range items {
		name := item.Name
		for key, value := range item.Data {
			key, value := key, value
			eg.Go(func() error {
				if err := sink.WriteEntry(ctx, name, key, value); err != nil {
					return fmt.Errorf("object %s: %w", name, err)
				}
				return nil
			})
		}
	}
	return eg.Wait()
}

func filterByAnnotation(items []corev1.ConfigMap, annotation string) []corev1.ConfigMap {
	var matched []corev1.ConfigMap
	for _, item := range items {
		if item.Annotations[artifacts.AnnotationKey] == annotation {
			matched = append(matched, item)
		}
	}
	return matched
}

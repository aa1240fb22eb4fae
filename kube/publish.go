package kube

import (
	"fmt"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/forgenet/forgenet/artifacts"
)

// Outcome is the terminal state one record reached during a publish run.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCreated
	OutcomeSkippedConflict
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkippedConflict:
		return "skippedConflict"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Result pairs one record with its outcome.
type Result struct {
	Record  artifacts.Record
	Outcome Outcome
	Err     error
}

// Publisher creates artifact records as namespaced objects. Public
// records become ConfigMaps, sensitive records become Secrets.
type Publisher struct {
	ctx *Context
}

// NewPublisher wires a Publisher to the given cluster context.
func NewPublisher(ctx *Context) *Publisher {
	return &Publisher{ctx: ctx}
}

// Publish attempts every record concurrently and joins the outcomes.
//
// Before any record is attempted a single connectivity/permission probe
// runs against both store primitives; a failing probe aborts the run with
// one clear error instead of a per-record cascade. The run succeeds only
// if every record ends created or skippedConflict; on failure the error
// names every failed record, not just the first one.
func (p *Publisher) Publish(records []artifacts.Record) ([]Result, error) {
	if err := p.probe(); err != nil {
		return nil, err
	}

	results := make([]Result, len(records))
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.attempt(records[i])
		}(i)
	}
	wg.Wait()

	created, skipped := 0, 0
	var failed []string
	for _, res := range results {
		switch res.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeSkippedConflict:
			skipped++
		case OutcomeFailed:
			failed = append(failed, fmt.Sprintf("%s: %v", res.Record.Name, res.Err))
		}
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("publish failed for %d of %d records: %s",
			len(failed), len(records), strings.Join(failed, "; "))
	}
	p.ctx.Log.WithFields(map[string]interface{}{
		"created": created,
		"skipped": skipped,
	}).Info("publish complete")
	return results, nil
}

// probe issues one bounded list against each store primitive, converting
// a Cartesian product of per-record permission failures into one upfront
// error.
func (p *Publisher) probe() error {
	opts := metav1.ListOptions{Limit: 1}
	if _, err := p.ctx.Client.CoreV1().ConfigMaps(p.ctx.Namespace).List(p.ctx, opts); err != nil {
		return fmt.Errorf("probe configmaps in %s: %w", p.ctx.Namespace, err)
	}
	if _, err := p.ctx.Client.CoreV1().Secrets(p.ctx.Namespace).List(p.ctx, opts); err != nil {
		return fmt.Errorf("probe secrets in %s: %w", p.ctx.Namespace, err)
	}
	return nil
}

func (p *Publisher) attempt(rec artifacts.Record) Result {
	err := p.create(rec)
	switch {
	case err == nil:
		p.ctx.Log.WithField("record", rec.Name).Debug("created")
		return Result{Record: rec, Outcome: OutcomeCreated}
	case apierrors.IsAlreadyExists(err) && rec.OnConflict == artifacts.OnConflictSkip:
		p.ctx.Log.WithField("record", rec.Name).Info("already exists, skipping")
		return Result{Record: rec, Outcome: OutcomeSkippedConflict}
	default:
		return Result{Record: rec, Outcome: OutcomeFailed, Err: err}
	}
}

func (p *Publisher) create(rec artifacts.Record) error {
	meta := metav1.ObjectMeta{Name: rec.Name}
	if rec.Annotation != "" {
		meta.Annotations = map[string]string{artifacts.AnnotationKey: rec.Annotation}
	}
	immutable := rec.Immutable

	if rec.Sensitive {
		secret := &corev1.Secret{
			ObjectMeta: meta,
			Immutable:  &immutable,
			StringData: map[string]string{rec.DataKey: rec.Value},
			Type:       corev1.SecretTypeOpaque,
		}
		_, err := p.ctx.Client.CoreV1().Secrets(p.ctx.Namespace).Create(p.ctx, secret, metav1.CreateOptions{})
		if err != nil && !apierrors.IsAlreadyExists(err) {
			return fmt.Errorf("create secret %s/%s: %w", p.ctx.Namespace, rec.Name, err)
		}
		return err
	}
	cfgmap := &corev1.ConfigMap{
		ObjectMeta: meta,
		Immutable:  &immutable,
		Data:       map[string]string{rec.DataKey: rec.Value},
	}
	_, err := p.ctx.Client.CoreV1().ConfigMaps(p.ctx.Namespace).Create(p.ctx, cfgmap, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("create cfgmap %s/%s: %w", p.ctx.Namespace, rec.Name, err)
	}
	return err
}

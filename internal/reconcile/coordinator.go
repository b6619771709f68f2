// Package reconcile converges an *arr service onto a DesiredState: it ensures
// the custom format exists, then ensures the quality profile exists, deriving
// it from a template on first run. Existence by name is the only match
// criterion; nothing is ever updated or deleted.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/poiley/arr-quality/internal/adapters"
	irv1 "github.com/poiley/arr-quality/internal/ir/v1"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	// OutcomeUnchanged means nothing was created; the service had already converged
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeChanged means at least one resource was created
	OutcomeChanged Outcome = "changed"
	// OutcomeFailed means a step failed and the run stopped there
	OutcomeFailed Outcome = "failed"
)

// Exit codes understood by configuration management tooling.
const (
	ExitUnchanged = 0
	ExitFailed    = 1
	ExitChanged   = 2
)

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeUnchanged:
		return ExitUnchanged
	case OutcomeChanged:
		return ExitChanged
	default:
		return ExitFailed
	}
}

// Recorder receives run telemetry. metrics.Recorder implements it.
type Recorder interface {
	RecordCreated(resourceType string)
	RecordRun(outcome string, duration time.Duration)
}

// Result describes a finished run.
type Result struct {
	RunID               string
	Outcome             Outcome
	CustomFormatID      int
	CustomFormatCreated bool
	ProfileCreated      bool

	// Err is set when Outcome is OutcomeFailed
	Err error
}

// Changed reports whether the run created anything, including a custom
// format created before a later step failed.
func (r Result) Changed() bool {
	return r.CustomFormatCreated || r.ProfileCreated
}

// Coordinator runs the custom format and quality profile steps in order.
type Coordinator struct {
	Client  adapters.Client
	Desired irv1.DesiredState

	// Recorder is optional
	Recorder Recorder
}

// Run performs one convergence pass. It stops at the first error and does
// not undo earlier steps; the next run picks up from whatever exists.
func (c *Coordinator) Run(ctx context.Context) Result {
	start := time.Now()
	res := Result{RunID: uuid.New().String()}

	log := logf.FromContext(ctx).WithValues("run", res.RunID)
	ctx = logf.IntoContext(ctx, log)

	res.finish(c.run(ctx, &res))
	if res.Err != nil {
		log.Error(res.Err, "Reconciliation failed")
	} else {
		log.Info("Reconciliation finished", "outcome", res.Outcome)
	}

	if c.Recorder != nil {
		c.Recorder.RecordRun(string(res.Outcome), time.Since(start))
	}
	return res
}

func (c *Coordinator) run(ctx context.Context, res *Result) error {
	cf := c.Desired.CustomFormat
	id, created, err := EnsureCustomFormat(ctx, c.Client, cf)
	if err != nil {
		return fmt.Errorf("custom format %q: %w", cf.Name, err)
	}
	res.CustomFormatID = id
	res.CustomFormatCreated = created
	if created {
		c.recordCreated(adapters.ResourceCustomFormat)
	}

	qp := c.Desired.QualityProfile
	created, err = EnsureQualityProfile(ctx, c.Client, qp, id, cf.Name)
	if err != nil {
		return fmt.Errorf("quality profile %q: %w", qp.Name, err)
	}
	res.ProfileCreated = created
	if created {
		c.recordCreated(adapters.ResourceQualityProfile)
	}

	return nil
}

func (r *Result) finish(err error) {
	switch {
	case err != nil:
		r.Outcome = OutcomeFailed
		r.Err = err
	case r.Changed():
		r.Outcome = OutcomeChanged
	default:
		r.Outcome = OutcomeUnchanged
	}
}

func (c *Coordinator) recordCreated(resourceType string) {
	if c.Recorder != nil {
		c.Recorder.RecordCreated(resourceType)
	}
}

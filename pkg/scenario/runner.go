package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/custody/pkg/core"
)

// ErrUnknownEntity is the rejection for a view of an id nobody holds.
var ErrUnknownEntity = fmt.Errorf("%w: unknown entity", core.ErrRejected)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Index int    `json:"index" yaml:"index"`
	Op    string `json:"op" yaml:"op"`
	// OK reports whether the outcome matched the step expectation.
	OK       bool   `json:"ok" yaml:"ok"`
	Rejected bool   `json:"rejected" yaml:"rejected"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	// ID is the id produced by the step, if any.
	ID   string           `json:"id,omitempty" yaml:"id,omitempty"`
	View *core.RecordView `json:"view,omitempty" yaml:"view,omitempty"`
}

// Report summarises a scenario run.
type Report struct {
	Name    string       `json:"name" yaml:"name"`
	Results []StepResult `json:"results" yaml:"results"`
	Passed  int          `json:"passed" yaml:"passed"`
	Failed  int          `json:"failed" yaml:"failed"`
}

// OK reports whether every step met its expectation.
func (r Report) OK() bool { return r.Failed == 0 }

// Runner executes steps against a service. Aliases bound with `as` persist
// across calls, so a REPL session can refer back to earlier steps.
type Runner struct {
	svc     *core.Service
	aliases map[string]string
	logger  *slog.Logger
	count   int
}

// NewRunner returns a Runner for svc. A nil logger discards.
func NewRunner(svc *core.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{svc: svc, aliases: map[string]string{}, logger: logger}
}

// Aliases returns a copy of the bound aliases.
func (r *Runner) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Run executes every step of sc in order. Rejections are recorded in the
// report; any other error stops the run and is returned with the partial
// report.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Report, error) {
	rep := Report{Name: sc.Name}
	for _, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := r.Exec(step)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", sc.Name, err)
		}
		rep.Results = append(rep.Results, res)
		if res.OK {
			rep.Passed++
		} else {
			rep.Failed++
		}
	}
	r.logger.Debug("scenario finished", "scenario", sc.Name, "passed", rep.Passed, "failed", rep.Failed)
	return rep, nil
}

// Exec runs a single step. A step that fails validation does not take an
// index.
func (r *Runner) Exec(step Step) (StepResult, error) {
	if err := step.Validate(); err != nil {
		return StepResult{Op: step.Op}, err
	}
	r.count++
	res := StepResult{Index: r.count, Op: step.Op}

	id, view, err := r.dispatch(step)
	if err != nil && !core.IsRejection(err) {
		return res, fmt.Errorf("step %d (%s): %w", r.count, step.Op, err)
	}

	res.ID = id
	res.View = view
	if err != nil {
		res.Rejected = true
		res.Error = err.Error()
	}
	res.OK = res.Rejected == (step.Expect == ExpectRejected)

	if step.As != "" && id != "" {
		r.aliases[step.As] = id
	}
	r.logger.Debug("step executed", "op", step.Op, "id", id, "rejected", res.Rejected, "ok", res.OK)
	return res, nil
}

func (r *Runner) resolve(ref string) string {
	if id, ok := r.aliases[ref]; ok {
		return id
	}
	return ref
}

func (r *Runner) actor(ref string) string {
	if ref == "" {
		return core.OwnerID
	}
	return r.resolve(ref)
}

func (r *Runner) dispatch(step Step) (string, *core.RecordView, error) {
	switch step.Op {
	case OpConnect:
		sess, err := r.svc.Connect(step.Name)
		if err != nil {
			return "", nil, err
		}
		return sess.Address, nil, nil

	case OpCreateRecord:
		rec, err := r.svc.CreateRecord(deref(step.Title), deref(step.Description), step.Metadata)
		if err != nil {
			return "", nil, err
		}
		return rec.TransactionRef, nil, nil

	case OpCreateCollaborator:
		e, err := r.svc.CreateCollaborator(step.Name)
		return e.ID, nil, err

	case OpRequestPermission:
		req, err := r.svc.RequestPermission(r.resolve(step.Entity), core.Permission(step.Kind))
		return req.ID, nil, err

	case OpResolveRequest:
		return "", nil, r.svc.ResolveRequest(r.resolve(step.Request), step.Granted)

	case OpRevokePermission:
		return "", nil, r.svc.RevokePermission(r.resolve(step.Entity), core.Permission(step.Kind))

	case OpWrite:
		patch := core.Patch{Title: step.Title, Description: step.Description, Metadata: step.Metadata}
		return "", nil, r.svc.Write(r.actor(step.Entity), patch)

	case OpLoad:
		return "", nil, r.svc.LoadInto(r.resolve(step.Entity))

	case OpGenerateOwner:
		po, err := r.svc.GenerateOwner(step.Name)
		return po.ID, nil, err

	case OpRemoveOwner:
		return "", nil, r.svc.RemovePotentialOwner(r.resolve(step.Target))

	case OpTransfer:
		ev, err := r.svc.Transfer(r.resolve(step.Target))
		return ev.TransactionRef, nil, err

	case OpView:
		id := r.actor(step.Entity)
		v, ok := r.svc.View(id)
		if !ok {
			return "", nil, fmt.Errorf("%w %q", ErrUnknownEntity, id)
		}
		return "", &v, nil
	}
	return "", nil, fmt.Errorf("%w: unknown op %q", ErrInvalidScenario, step.Op)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

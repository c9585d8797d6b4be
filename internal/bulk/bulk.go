// Package bulk reconciles a set of join rows against a desired set with one independent
// request per difference, and classifies the combined outcome.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/obs"
)

type Outcome string

const (
	AllSucceeded Outcome = "all_succeeded"
	Partial      Outcome = "partial"
	AllFailed    Outcome = "all_failed"
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Failure is one rejected request of a batch.
type Failure struct {
	Op     Op     `json:"op"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

type Result struct {
	Added    []string  `json:"added"`
	Removed  []string  `json:"removed"`
	Failures []Failure `json:"failures"`
	Outcome  Outcome   `json:"outcome"`
}

// Refresh reports whether the list should be reloaded: everything but a total failure
// changed (or may have changed) server state.
func (r Result) Refresh() bool {
	return r.Outcome != AllFailed
}

// Err turns a non-successful result into a PartialBatchError or BatchFailedError that
// lists every failure.
func (r Result) Err() error {
	switch r.Outcome {
	case Partial:
		return internal.NewPartialBatchError(r.summary("Some changes could not be applied"), r.Failures)
	case AllFailed:
		return internal.NewBatchFailedError(r.summary("No changes could be applied"), r.Failures)
	}
	return nil
}

func (r Result) summary(lead string) string {
	parts := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		parts[i] = fmt.Sprintf("%s %s: %s", f.Op, f.Target, f.Reason)
	}
	return lead + ": " + strings.Join(parts, "; ")
}

// Diff returns desired minus current and current minus desired, each in input order.
func Diff[ID comparable](current, desired []ID) (toAdd, toRemove []ID) {
	inCurrent := make(map[ID]struct{}, len(current))
	for _, id := range current {
		inCurrent[id] = struct{}{}
	}
	inDesired := make(map[ID]struct{}, len(desired))
	for _, id := range desired {
		inDesired[id] = struct{}{}
	}

	for _, id := range desired {
		if _, ok := inCurrent[id]; !ok {
			toAdd = append(toAdd, id)
			inCurrent[id] = struct{}{}
		}
	}
	for _, id := range current {
		if _, ok := inDesired[id]; !ok {
			toRemove = append(toRemove, id)
			inDesired[id] = struct{}{}
		}
	}
	return toAdd, toRemove
}

// Coordinator runs batches. Limit caps concurrent requests; zero means all at once.
type Coordinator struct {
	limit  int
	logger *slog.Logger
}

func NewCoordinator(limit int, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{limit: limit, logger: logger}
}

// Reconcile issues add for every id in desired but not current and remove for every id in
// current but not desired, concurrently and in no particular order. It waits for all of
// them; one failure never cancels the others.
func Reconcile[ID comparable](ctx context.Context, c *Coordinator, current, desired []ID,
	add func(context.Context, ID) error, remove func(context.Context, ID) error) Result {

	toAdd, toRemove := Diff(current, desired)
	res := Result{Added: []string{}, Removed: []string{}, Failures: []Failure{}}
	if len(toAdd)+len(toRemove) == 0 {
		res.Outcome = AllSucceeded
		return res
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}

	run := func(op Op, id ID, fn func(context.Context, ID) error) {
		g.Go(func() error {
			err := fn(ctx, id)
			target := fmt.Sprint(id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, Failure{Op: op, Target: target, Reason: reason(err)})
				return nil
			}
			if op == OpAdd {
				res.Added = append(res.Added, target)
			} else {
				res.Removed = append(res.Removed, target)
			}
			return nil
		})
	}
	for _, id := range toAdd {
		run(OpAdd, id, add)
	}
	for _, id := range toRemove {
		run(OpRemove, id, remove)
	}
	_ = g.Wait()

	total := len(toAdd) + len(toRemove)
	switch len(res.Failures) {
	case 0:
		res.Outcome = AllSucceeded
	case total:
		res.Outcome = AllFailed
	default:
		res.Outcome = Partial
	}

	obs.IncBatchOutcome(string(res.Outcome))
	c.logger.Info("batch reconciled",
		"adds", len(toAdd),
		"removes", len(toRemove),
		"failures", len(res.Failures),
		"outcome", res.Outcome)
	return res
}

func reason(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// Package generation orchestrates test-case generation across one or more
// provider adapters: provider resolution, concurrent dispatch, partial
// failure handling, aggregation, and final shaping.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phoenixqa/smartcase/internal/adapter/ai/prompt"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

// Option is a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithProviderOrder fixes the invocation order used when the request selects
// every provider. Names not registered are ignored; registered providers
// missing from the list are appended alphabetically.
func WithProviderOrder(names []string) Option {
	return func(o *Orchestrator) {
		if len(names) > 0 {
			o.preferredOrder = names
		}
	}
}

// Orchestrator fans a generation request out to the selected providers and
// assembles the aggregate result. It holds no per-request state and is safe
// for concurrent use.
type Orchestrator struct {
	providers      map[string]testgen.Provider
	preferredOrder []string
	order          []string
}

// New creates an Orchestrator over the given providers. Provider names must
// be unique; registration order does not matter because invocation order is
// deterministic (configured order, then alphabetical).
func New(providers []testgen.Provider, opts ...Option) (*Orchestrator, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	o := &Orchestrator{providers: make(map[string]testgen.Provider, len(providers))}
	for _, p := range providers {
		if _, dup := o.providers[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate provider: %s", p.Name())
		}
		o.providers[p.Name()] = p
	}

	for _, opt := range opts {
		opt(o)
	}

	o.order = o.resolveOrder()
	return o, nil
}

// resolveOrder computes the fixed "all" invocation order: the preferred
// order first, then any remaining providers alphabetically.
func (o *Orchestrator) resolveOrder() []string {
	seen := make(map[string]bool, len(o.providers))
	order := make([]string, 0, len(o.providers))
	for _, name := range o.preferredOrder {
		if _, ok := o.providers[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}

	rest := make([]string, 0, len(o.providers))
	for name := range o.providers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// ProviderNames returns the resolved "all" invocation order.
func (o *Orchestrator) ProviderNames() []string {
	names := make([]string, len(o.order))
	copy(names, o.order)
	return names
}

// outcome is one provider's settled result: records or an error, never both.
type outcome struct {
	provider string
	plain    []testgen.PlainTestCase
	bdd      []testgen.BDDScenario
	err      error
}

// Generate runs one generation request. If at least one selected provider
// succeeds the call succeeds, with failed providers reported as warnings;
// only when every provider fails does it return an AllFailedError.
// Cancelling ctx propagates to all in-flight provider calls.
func (o *Orchestrator) Generate(ctx context.Context, req testgen.GenerateRequest) (*testgen.Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	selected, err := o.resolveSelection(req.Provider)
	if err != nil {
		return nil, err
	}

	// Built once and shared; adapters only ever read it.
	inst, err := prompt.Build(req)
	if err != nil {
		return nil, err
	}

	outcomes := o.dispatch(ctx, selected, req.Format, inst)

	result, err := aggregate(req, outcomes)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "generation complete",
		"format", req.Format,
		"providers", len(selected),
		"records", result.Len(),
		"warnings", len(result.Warnings),
		"duration", time.Since(start),
	)
	return result, nil
}

// resolveSelection maps the request's provider field to a concrete ordered
// adapter list.
func (o *Orchestrator) resolveSelection(selection string) ([]testgen.Provider, error) {
	if selection == testgen.ProviderAll {
		selected := make([]testgen.Provider, 0, len(o.order))
		for _, name := range o.order {
			selected = append(selected, o.providers[name])
		}
		return selected, nil
	}

	p, ok := o.providers[selection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider: %q", testgen.ErrInvalidInput, selection)
	}
	return []testgen.Provider{p}, nil
}

// dispatch invokes every selected provider and waits for all of them to
// settle. A single provider runs synchronously; multiple providers run
// concurrently with no short-circuit in either direction.
func (o *Orchestrator) dispatch(ctx context.Context, selected []testgen.Provider, format testgen.Format, inst testgen.Instruction) []outcome {
	outcomes := make([]outcome, len(selected))

	if len(selected) == 1 {
		outcomes[0] = invoke(ctx, selected[0], format, inst)
		return outcomes
	}

	var g errgroup.Group
	for i, p := range selected {
		g.Go(func() error {
			outcomes[i] = invoke(ctx, p, format, inst)
			return nil
		})
	}
	// Tasks never return errors; failures live in their outcome.
	_ = g.Wait()
	return outcomes
}

func invoke(ctx context.Context, p testgen.Provider, format testgen.Format, inst testgen.Instruction) outcome {
	out := outcome{provider: p.Name()}
	switch format {
	case testgen.FormatBDD:
		out.bdd, out.err = p.GenerateBDD(ctx, inst)
	default:
		out.plain, out.err = p.GeneratePlain(ctx, inst)
	}
	if out.err != nil {
		slog.WarnContext(ctx, "provider failed",
			"provider", p.Name(),
			"format", format,
			"error", out.err,
		)
	}
	return out
}

// aggregate concatenates settled outcomes in invocation order, stamps the
// provider tag, renumbers plain ids contiguously from 1, and truncates to
// the requested case count.
func aggregate(req testgen.GenerateRequest, outcomes []outcome) (*testgen.Result, error) {
	result := &testgen.Result{Format: req.Format}
	failed := 0

	for _, out := range outcomes {
		if out.err != nil {
			failed++
			result.Warnings = append(result.Warnings, testgen.Warning{
				Provider: out.provider,
				Reason:   out.err.Error(),
			})
			continue
		}
		for _, tc := range out.plain {
			if tc.Provider == "" {
				tc.Provider = out.provider
			}
			result.Plain = append(result.Plain, tc)
		}
		for _, sc := range out.bdd {
			if sc.Provider == "" {
				sc.Provider = out.provider
			}
			result.BDD = append(result.BDD, sc)
		}
	}

	if failed == len(outcomes) {
		return nil, &testgen.AllFailedError{Reasons: result.Warnings}
	}

	for i := range result.Plain {
		result.Plain[i].ID = i + 1
	}

	if req.CaseCount > 0 {
		if len(result.Plain) > req.CaseCount {
			result.Plain = result.Plain[:req.CaseCount]
		}
		if len(result.BDD) > req.CaseCount {
			result.BDD = result.BDD[:req.CaseCount]
		}
	}
	return result, nil
}

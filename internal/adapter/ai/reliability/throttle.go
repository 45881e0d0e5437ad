// Package reliability provides wrappers that sit between the orchestrator
// and a provider adapter. The throttle keeps calls under a provider's quota
// without the adapter or the orchestrator knowing about rate limits.
package reliability

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

// Throttled decorates a provider with a token-bucket rate limit. It is
// itself a testgen.Provider, so it drops into the orchestrator unchanged.
type Throttled struct {
	inner   testgen.Provider
	limiter *rate.Limiter
}

// Throttle wraps p so that calls proceed at most rps per second with the
// given burst. A non-positive rps returns p unchanged.
func Throttle(p testgen.Provider, rps float64, burst int) testgen.Provider {
	if rps <= 0 {
		return p
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{inner: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Name returns the wrapped provider's identifier.
func (t *Throttled) Name() string { return t.inner.Name() }

// GeneratePlain waits for a rate token, then delegates.
func (t *Throttled) GeneratePlain(ctx context.Context, inst testgen.Instruction) ([]testgen.PlainTestCase, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.GeneratePlain(ctx, inst)
}

// GenerateBDD waits for a rate token, then delegates.
func (t *Throttled) GenerateBDD(ctx context.Context, inst testgen.Instruction) ([]testgen.BDDScenario, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.inner.GenerateBDD(ctx, inst)
}

func (t *Throttled) wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: rate limiter: %v", testgen.ErrProviderError, t.inner.Name(), err)
	}
	return nil
}

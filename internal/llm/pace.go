package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type pacedModel struct {
	next    Model
	limiter *rate.Limiter
}

// Paced spaces out calls to next at rps with the given burst.
// rps <= 0 returns next unchanged. A paced call that fails is not repeated.
func Paced(next Model, rps float64, burst int) Model {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &pacedModel{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (p *pacedModel) Complete(ctx context.Context, img Image) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return p.next.Complete(ctx, img)
}

package score

import (
	"context"
	"fmt"
	"math"

	"github.com/ppiankov/contribproof/internal/model"
)

// Input is everything a dimension may score
type Input struct {
	Claim   model.OwnershipClaim
	Verdict model.Verdict
}

// Dimension computes one component of the score vector, in [0,1]
type Dimension interface {
	Score(ctx context.Context, in Input) (float64, error)
}

// DimensionFunc adapts a function to Dimension
type DimensionFunc func(ctx context.Context, in Input) (float64, error)

// Score implements Dimension
func (f DimensionFunc) Score(ctx context.Context, in Input) (float64, error) {
	return f(ctx, in)
}

// Constant returns a dimension that always scores v
func Constant(v float64) Dimension {
	return DimensionFunc(func(context.Context, Input) (float64, error) {
		return v, nil
	})
}

// OracleConfirmation scores 1.0 when the oracle confirmed the claim and 0.0 otherwise
func OracleConfirmation() Dimension {
	return DimensionFunc(func(_ context.Context, in Input) (float64, error) {
		if in.Verdict.Confirmed {
			return 1.0, nil
		}
		return 0.0, nil
	})
}

// Engine turns an oracle verdict into a score vector and an overall verdict
type Engine struct {
	ownership    Dimension
	quality      Dimension
	authenticity Dimension
	uniqueness   Dimension
}

// Option replaces one of the engine's dimensions
type Option func(*Engine)

// WithOwnership sets the ownership dimension
func WithOwnership(d Dimension) Option { return func(e *Engine) { e.ownership = d } }

// WithQuality sets the quality dimension
func WithQuality(d Dimension) Option { return func(e *Engine) { e.quality = d } }

// WithAuthenticity sets the authenticity dimension
func WithAuthenticity(d Dimension) Option { return func(e *Engine) { e.authenticity = d } }

// WithUniqueness sets the uniqueness dimension
func WithUniqueness(d Dimension) Option { return func(e *Engine) { e.uniqueness = d } }

// NewEngine creates an engine. Every dimension defaults to a constant 1.0
// until a real scorer is plugged in.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		ownership:    Constant(1.0),
		quality:      Constant(1.0),
		authenticity: Constant(1.0),
		uniqueness:   Constant(1.0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the vector and the overall result.
// valid mirrors the oracle verdict; score is 1.0 when valid and 0.0 otherwise.
func (e *Engine) Score(ctx context.Context, claim model.OwnershipClaim, verdict model.Verdict) (model.ScoreResult, error) {
	in := Input{Claim: claim, Verdict: verdict}

	var vector model.ScoreVector
	dims := []struct {
		name string
		dim  Dimension
		dst  *model.Score
	}{
		{"ownership", e.ownership, &vector.Ownership},
		{"quality", e.quality, &vector.Quality},
		{"authenticity", e.authenticity, &vector.Authenticity},
		{"uniqueness", e.uniqueness, &vector.Uniqueness},
	}

	for _, d := range dims {
		v, err := d.dim.Score(ctx, in)
		if err != nil {
			return model.ScoreResult{}, fmt.Errorf("score %s: %w", d.name, err)
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return model.ScoreResult{}, fmt.Errorf("score %s: %v is outside [0,1]", d.name, v)
		}
		*d.dst = model.Score(v)
	}

	valid := verdict.Confirmed
	overall := 0.0
	if valid {
		overall = 1.0
	}

	return model.ScoreResult{
		Vector: vector,
		Score:  model.Score(overall),
		Valid:  valid,
	}, nil
}

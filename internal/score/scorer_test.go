package score

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/contribproof/internal/model"
)

var claim = model.OwnershipClaim{WalletAddress: "0xABC", FileHash: "deadbeef"}

func TestEngine_Score_Confirmed(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Score(context.Background(), claim, model.Verdict{Confirmed: true})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if !result.Valid {
		t.Error("Expected valid result for confirmed verdict")
	}
	if result.Score != 1.0 {
		t.Errorf("Expected score 1.0, got %v", result.Score)
	}

	want := model.ScoreVector{Ownership: 1, Quality: 1, Authenticity: 1, Uniqueness: 1}
	if result.Vector != want {
		t.Errorf("Expected placeholder vector %+v, got %+v", want, result.Vector)
	}
}

func TestEngine_Score_Denied(t *testing.T) {
	engine := NewEngine()

	result, err := engine.Score(context.Background(), claim, model.Verdict{Confirmed: false})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.Valid {
		t.Error("Expected invalid result for denied verdict")
	}
	if result.Score != 0.0 {
		t.Errorf("Expected score 0.0, got %v", result.Score)
	}

	// Placeholders do not follow the verdict
	if result.Vector.Ownership != 1.0 {
		t.Errorf("Expected placeholder ownership 1.0, got %v", result.Vector.Ownership)
	}
}

func TestEngine_Score_PluggedDimensions(t *testing.T) {
	var seen Input
	quality := DimensionFunc(func(_ context.Context, in Input) (float64, error) {
		seen = in
		return 0.42, nil
	})

	engine := NewEngine(
		WithOwnership(OracleConfirmation()),
		WithQuality(quality),
		WithAuthenticity(Constant(0.5)),
		WithUniqueness(Constant(0)),
	)

	verdict := model.Verdict{Confirmed: false, StatusCode: 200}
	result, err := engine.Score(context.Background(), claim, verdict)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	want := model.ScoreVector{Ownership: 0, Quality: 0.42, Authenticity: 0.5, Uniqueness: 0}
	if result.Vector != want {
		t.Errorf("Expected %+v, got %+v", want, result.Vector)
	}
	if seen.Claim != claim || seen.Verdict != verdict {
		t.Errorf("Expected dimension to receive claim and verdict, got %+v", seen)
	}

	// Overall score depends only on the verdict
	if result.Score != 0 || result.Valid {
		t.Errorf("Expected invalid 0.0 overall, got %v/%v", result.Score, result.Valid)
	}
}

func TestEngine_Score_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"negative", -0.1},
		{"above one", 1.5},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(WithUniqueness(Constant(tt.value)))
			_, err := engine.Score(context.Background(), claim, model.Verdict{Confirmed: true})
			if err == nil {
				t.Fatal("Expected out-of-range dimension to fail")
			}
			if !strings.Contains(err.Error(), "uniqueness") {
				t.Errorf("Expected error to name the dimension, got %v", err)
			}
		})
	}
}

func TestEngine_Score_PropagatesDimensionError(t *testing.T) {
	boom := errors.New("scorer offline")
	engine := NewEngine(WithAuthenticity(DimensionFunc(func(context.Context, Input) (float64, error) {
		return 0, boom
	})))

	_, err := engine.Score(context.Background(), claim, model.Verdict{Confirmed: true})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped dimension error, got %v", err)
	}
}

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is a float in [0,1] that always renders with a fractional part,
// so whole values encode as 1.0 / 0.0 rather than 1 / 0.
type Score float64

// MarshalJSON implements json.Marshaler
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("score %v is not a finite number", f)
	}

	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return []byte(out), nil
}

// ScoreVector is the multi-dimensional trust score of a contribution
type ScoreVector struct {
	Ownership    Score `json:"ownership"`    // Does the data belong to the contributor?
	Quality      Score `json:"quality"`      // How high quality is the data?
	Authenticity Score `json:"authenticity"` // Has the data been tampered with?
	Uniqueness   Score `json:"uniqueness"`   // How unique is it relative to other datasets?
}

// ScoreResult is the scoring engine output: per-dimension scores plus the overall verdict
type ScoreResult struct {
	Vector ScoreVector
	Score  Score
	Valid  bool
}

// ProofDocument is the proof-of-contribution record handed to the publisher.
// Field order here is the field order in the rendered JSON.
type ProofDocument struct {
	DLPID        int            `json:"dlp_id"`
	Score        Score          `json:"score"`
	Valid        bool           `json:"valid"`
	Ownership    Score          `json:"ownership"`
	Quality      Score          `json:"quality"`
	Authenticity Score          `json:"authenticity"`
	Uniqueness   Score          `json:"uniqueness"`
	Attributes   map[string]any `json:"attributes"` // Public, part of the provenance record
	Metadata     map[string]any `json:"metadata"`   // Private, written onchain by the publisher
}

// Attribute and metadata keys
const (
	AttrTotalScore = "total_score"
	MetaDLPID      = "dlp_id"
)

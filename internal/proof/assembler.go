// Package proof assembles the proof-of-contribution document.
package proof

import "github.com/ppiankov/contribproof/internal/model"

// Assemble builds the proof document for a scored contribution. It has no side
// effects; the same inputs always produce an equal document.
func Assemble(dlpID int, result model.ScoreResult) model.ProofDocument {
	return model.ProofDocument{
		DLPID:        dlpID,
		Score:        result.Score,
		Valid:        result.Valid,
		Ownership:    result.Vector.Ownership,
		Quality:      result.Vector.Quality,
		Authenticity: result.Vector.Authenticity,
		Uniqueness:   result.Vector.Uniqueness,
		Attributes: map[string]any{
			model.AttrTotalScore: result.Score,
		},
		Metadata: map[string]any{
			model.MetaDLPID: dlpID,
		},
	}
}

package rag

import (
	"github.com/askksa/askksa/internal/lang"
	"github.com/askksa/askksa/internal/models"
)

// SelectHistory returns the prior turns to include in the prompt: the
// chronological suffix of at most maxTurns entries, keeping only user and
// assistant turns whose own detected language matches queryIsRTL. Mixing
// Urdu and English turns in one generation call makes the model drift
// between output languages, so mismatched turns are dropped. Order is
// preserved; malformed turns are skipped silently.
func SelectHistory(turns []models.ConversationTurn, queryIsRTL bool, maxTurns int) []models.ConversationTurn {
	if maxTurns <= 0 {
		return nil
	}
	start := len(turns) - maxTurns
	if start < 0 {
		start = 0
	}
	var kept []models.ConversationTurn
	for _, turn := range turns[start:] {
		if turn.Role != models.RoleUser && turn.Role != models.RoleAssistant {
			continue
		}
		if turn.Content == "" {
			continue
		}
		if lang.IsRTL(turn.Content) != queryIsRTL {
			continue
		}
		kept = append(kept, turn)
	}
	return kept
}

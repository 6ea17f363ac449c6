// Package arbiter holds the administrative overrides for matches the teams
// cannot settle themselves. Authorization is the caller's concern; these
// transforms trust that an admin invoked them.
package arbiter

import (
	"github.com/tourneyops/match-engine/internal/match"
)

// Reset returns a post-draft match to active play: every submission unit
// back to awaiting both teams, dispute reason cleared, any tentative result
// discarded. The draft outcome is kept.
func Reset(m match.Match) (match.Match, error) {
	if m.State == match.StateDrafting {
		return m, match.ErrInvalidTurn
	}
	next := m.Clone()
	for i := range next.Units {
		next.Units[i] = match.Submission{}
	}
	next.State = match.StatePlaying
	next.DisputeReason = ""
	next.WinnerID = ""
	next.FinalScore = nil
	return next, nil
}

// ForceSubmit records a final result bypassing validation and
// reconciliation. The only checks are that the tally is not a tie and the
// named winner is one of the two teams; this is an escape hatch, not a
// ruleset check.
func ForceSubmit(m match.Match, scoreA, scoreB int, winnerID string) (match.Match, error) {
	if scoreA == scoreB {
		return m, &match.ScoreError{Rule: 3, Reason: "forced result cannot be a tie"}
	}
	if _, err := m.SeatOf(winnerID); err != nil {
		return m, err
	}
	next := m.Clone()
	next.State = match.StateCompleted
	next.WinnerID = winnerID
	next.FinalScore = &match.Score{A: scoreA, B: scoreB}
	next.DisputeReason = ""
	return next, nil
}

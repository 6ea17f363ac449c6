package score

import "github.com/tourneyops/match-engine/internal/match"

// Validate checks a raw round-score pair against the competitive ruleset.
// Rules apply in order and the first failure wins; the returned ScoreError
// carries the rule number.
//
// Rule 5 rejects a 13 with the opponent at 12 or more. The ruleset treats
// that as a game that must continue into overtime rather than a terminal
// score, so 13-12 is not accepted here.
func Validate(a, b int) error {
	if a < 0 || a > 999 || b < 0 || b > 999 {
		return &match.ScoreError{Rule: 1, Reason: "rounds must be between 0 and 999"}
	}
	if a == 0 && b == 0 {
		return &match.ScoreError{Rule: 2, Reason: "scores cannot both be zero"}
	}
	if a == b {
		return &match.ScoreError{Rule: 3, Reason: "tied scores are not permitted"}
	}
	winner, loser := a, b
	if b > a {
		winner, loser = b, a
	}
	if winner < 13 {
		return &match.ScoreError{Rule: 4, Reason: "winning score must be at least 13"}
	}
	if winner == 13 && loser >= 12 {
		return &match.ScoreError{Rule: 5, Reason: "13 with opponent at 12+ must continue to overtime"}
	}
	if winner > 13 && winner-loser != 2 {
		return &match.ScoreError{Rule: 6, Reason: "overtime must be won by exactly two"}
	}
	return nil
}

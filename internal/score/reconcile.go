package score

import "github.com/tourneyops/match-engine/internal/match"

type EventType string

const (
	EvtScoreRecorded  EventType = "ScoreRecorded"
	EvtUnitAgreed     EventType = "UnitAgreed"
	EvtUnitMismatched EventType = "UnitMismatched"
	EvtMatchCompleted EventType = "MatchCompleted"
	EvtDisputeRaised  EventType = "DisputeRaised"
)

type Event struct {
	Type     EventType
	Team     match.Team
	Unit     int
	WinnerID string
	Reason   string
}

// Submit records one team's score for a submission unit. When the
// counterpart has already submitted, the two reports are compared field for
// field: equal settles the unit, unequal leaves it mismatched for agree or
// dispute. Zero events with a nil error means the match was already
// completed and the submission was accepted as a no-op; a client racing the
// series-completion check must not see an error for a moot unit.
func Submit(m match.Match, team match.Team, unit int, sc match.Score) ([]Event, match.Match, error) {
	if m.State == match.StateCompleted {
		return nil, m, nil
	}
	if err := activeCheck(m); err != nil {
		return nil, m, err
	}
	if unit < 0 || unit >= len(m.Units) {
		return nil, m, match.ErrUnsupportedCommand
	}
	if err := Validate(sc.A, sc.B); err != nil {
		return nil, m, err
	}
	if m.Units[unit].Submitted(team) {
		return nil, m, match.ErrAlreadySubmitted
	}

	next := m.Clone()
	next.Units[unit].Record(team, sc)
	events := []Event{{Type: EvtScoreRecorded, Team: team, Unit: unit}}
	if next.State == match.StatePlaying {
		next.State = match.StateAwaitingResults
	}

	events = append(events, settle(&next, unit)...)
	return events, next, nil
}

// Agree adopts the counterpart's reported score as the caller's own. Valid
// when the unit is mismatched or when only the counterpart has submitted.
// An already-agreed unit is a no-op so retried calls are safe.
func Agree(m match.Match, team match.Team, unit int) ([]Event, match.Match, error) {
	if m.State == match.StateCompleted {
		return nil, m, nil
	}
	if err := activeCheck(m); err != nil {
		return nil, m, err
	}
	if unit < 0 || unit >= len(m.Units) {
		return nil, m, match.ErrUnsupportedCommand
	}
	u := m.Units[unit]
	if u.Status() == match.UnitAgreed {
		return nil, m, nil
	}
	theirs := u.ScoreOf(team.Other())
	if theirs == nil {
		return nil, m, match.ErrInvalidTurn
	}

	next := m.Clone()
	next.Units[unit].Record(team, *theirs)
	events := []Event{{Type: EvtScoreRecorded, Team: team, Unit: unit}}
	if next.State == match.StatePlaying {
		next.State = match.StateAwaitingResults
	}

	events = append(events, settle(&next, unit)...)
	return events, next, nil
}

// Dispute escalates the whole match, freezing team-driven reconciliation
// until an administrator acts. Disputing an already-disputed match is a
// harmless no-op.
func Dispute(m match.Match, team match.Team, reason string) ([]Event, match.Match, error) {
	switch m.State {
	case match.StateDisputed:
		return nil, m, nil
	case match.StatePlaying, match.StateAwaitingResults:
	default:
		return nil, m, match.ErrInvalidTurn
	}

	next := m.Clone()
	next.State = match.StateDisputed
	next.DisputeReason = reason
	return []Event{{Type: EvtDisputeRaised, Team: team, Reason: reason}}, next, nil
}

// Wins tallies agreed units per seat.
func Wins(m match.Match) (a, b int) {
	for _, u := range m.Units {
		if u.Status() != match.UnitAgreed {
			continue
		}
		if u.TeamAScore.A > u.TeamAScore.B {
			a++
		} else {
			b++
		}
	}
	return a, b
}

// WinsNeeded is the agreed unit wins required to take the match.
func WinsNeeded(f match.Format) int {
	if f == match.FormatThreeMapSeries {
		return 2
	}
	return 1
}

func activeCheck(m match.Match) error {
	switch m.State {
	case match.StateDisputed:
		return match.ErrDisputeRequired
	case match.StatePlaying, match.StateAwaitingResults:
		return nil
	default:
		return match.ErrInvalidTurn
	}
}

// settle re-derives the unit's status after a recorded score and completes
// the match once either seat holds enough agreed wins.
func settle(next *match.Match, unit int) []Event {
	var events []Event
	switch next.Units[unit].Status() {
	case match.UnitMismatched:
		events = append(events, Event{Type: EvtUnitMismatched, Unit: unit})
	case match.UnitAgreed:
		events = append(events, Event{Type: EvtUnitAgreed, Unit: unit})
		a, b := Wins(*next)
		need := WinsNeeded(next.Format)
		if a >= need || b >= need {
			winner := match.TeamA
			if b > a {
				winner = match.TeamB
			}
			next.State = match.StateCompleted
			next.WinnerID = next.TeamID(winner)
			next.FinalScore = &match.Score{A: a, B: b}
			events = append(events, Event{Type: EvtMatchCompleted, WinnerID: next.WinnerID})
		}
	}
	return events
}

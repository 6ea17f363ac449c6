package score

import (
	"errors"
	"testing"

	"github.com/tourneyops/match-engine/internal/match"
)

// playing returns a match past its draft with n empty submission units.
func playing(n int) match.Match {
	format := match.FormatSingleMap
	if n > 1 {
		format = match.FormatThreeMapSeries
	}
	m := match.New("m1", format, "alpha", "bravo", nil)
	m.State = match.StatePlaying
	m.Units = make([]match.Submission, n)
	return m
}

func mustSubmit(t *testing.T, m match.Match, team match.Team, unit int, sc match.Score) ([]Event, match.Match) {
	t.Helper()
	events, next, err := Submit(m, team, unit, sc)
	if err != nil {
		t.Fatalf("submit unit %d for %s: %v", unit, team, err)
	}
	return events, next
}

func hasEvent(events []Event, want EventType) bool {
	for _, e := range events {
		if e.Type == want {
			return true
		}
	}
	return false
}

func TestSubmitAgreementCompletesSingleMap(t *testing.T) {
	m := playing(1)

	events, m := mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 8})
	if m.Units[0].Status() != match.UnitOneSubmitted {
		t.Fatalf("status = %s, want one_submitted", m.Units[0].Status())
	}
	if m.State != match.StateAwaitingResults {
		t.Fatalf("state = %s, want awaiting_results", m.State)
	}
	if hasEvent(events, EvtMatchCompleted) {
		t.Fatal("completed after one submission")
	}

	events, m = mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 8})
	if m.Units[0].Status() != match.UnitAgreed {
		t.Fatalf("status = %s, want agreed", m.Units[0].Status())
	}
	if !hasEvent(events, EvtMatchCompleted) {
		t.Fatalf("no completion event: %+v", events)
	}
	if m.State != match.StateCompleted || m.WinnerID != "alpha" {
		t.Fatalf("state = %s winner = %s, want completed/alpha", m.State, m.WinnerID)
	}
	if m.FinalScore == nil || *m.FinalScore != (match.Score{A: 1, B: 0}) {
		t.Fatalf("final score = %+v, want 1-0", m.FinalScore)
	}
}

func TestSubmitMismatchLeavesMatchOpen(t *testing.T) {
	m := playing(1)
	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 8})
	events, m := mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 9})

	if !hasEvent(events, EvtUnitMismatched) {
		t.Fatalf("no mismatch event: %+v", events)
	}
	if m.Units[0].Status() != match.UnitMismatched {
		t.Fatalf("status = %s, want mismatched", m.Units[0].Status())
	}
	if m.State != match.StateAwaitingResults || m.WinnerID != "" {
		t.Fatalf("mismatch advanced the match: state=%s winner=%q", m.State, m.WinnerID)
	}
}

func TestAgreeAdoptsCounterpartScore(t *testing.T) {
	m := playing(1)
	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 8})
	_, m = mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 9})

	events, m, err := Agree(m, match.TeamB, 0)
	if err != nil {
		t.Fatalf("agree: %v", err)
	}
	if !hasEvent(events, EvtUnitAgreed) || !hasEvent(events, EvtMatchCompleted) {
		t.Fatalf("events = %+v", events)
	}
	if *m.Units[0].TeamBScore != (match.Score{A: 13, B: 8}) {
		t.Fatalf("B score = %+v, want copy of A's", m.Units[0].TeamBScore)
	}

	// A retried agree on the settled match is harmless.
	events, _, err = Agree(m, match.TeamB, 0)
	if err != nil || len(events) != 0 {
		t.Fatalf("duplicate agree: events=%+v err=%v", events, err)
	}
}

func TestAgreeBeforeCounterpartSubmits(t *testing.T) {
	m := playing(1)
	_, _, err := Agree(m, match.TeamB, 0)
	if !errors.Is(err, match.ErrInvalidTurn) {
		t.Fatalf("err = %v, want %v", err, match.ErrInvalidTurn)
	}
}

func TestResubmitRequiresAgree(t *testing.T) {
	m := playing(1)
	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 8})
	_, _, err := Submit(m, match.TeamA, 0, match.Score{A: 13, B: 8})
	if !errors.Is(err, match.ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want %v", err, match.ErrAlreadySubmitted)
	}
}

func TestSubmitStateGuards(t *testing.T) {
	drafting := match.New("m1", match.FormatSingleMap, "alpha", "bravo", nil)

	disputed := playing(1)
	disputed.State = match.StateDisputed

	cases := []struct {
		name    string
		m       match.Match
		wantErr error
	}{
		{"during draft", drafting, match.ErrInvalidTurn},
		{"while disputed", disputed, match.ErrDisputeRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Submit(tc.m, match.TeamA, 0, match.Score{A: 13, B: 8})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestInvalidScoreRejected(t *testing.T) {
	m := playing(1)
	_, _, err := Submit(m, match.TeamA, 0, match.Score{A: 13, B: 12})
	var se *match.ScoreError
	if !errors.As(err, &se) || se.Rule != 5 {
		t.Fatalf("err = %v, want rule 5 ScoreError", err)
	}
}

func TestUnknownUnitRejected(t *testing.T) {
	m := playing(1)
	_, _, err := Submit(m, match.TeamA, 3, match.Score{A: 13, B: 8})
	if !errors.Is(err, match.ErrUnsupportedCommand) {
		t.Fatalf("err = %v, want %v", err, match.ErrUnsupportedCommand)
	}
}

func TestSeriesCompletesAtTwoWinsAndMootDeciderIsHarmless(t *testing.T) {
	m := playing(3)

	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 2})
	_, m = mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 2})
	if m.State == match.StateCompleted {
		t.Fatal("completed after one map")
	}

	_, m = mustSubmit(t, m, match.TeamA, 1, match.Score{A: 13, B: 11})
	events, m := mustSubmit(t, m, match.TeamB, 1, match.Score{A: 13, B: 11})
	if !hasEvent(events, EvtMatchCompleted) {
		t.Fatalf("no completion at two wins: %+v", events)
	}
	if m.WinnerID != "alpha" || *m.FinalScore != (match.Score{A: 2, B: 0}) {
		t.Fatalf("winner = %s final = %+v", m.WinnerID, m.FinalScore)
	}

	// A straggler reporting the decider must succeed without effect.
	events, next, err := Submit(m, match.TeamB, 2, match.Score{A: 5, B: 13})
	if err != nil {
		t.Fatalf("moot submission errored: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("moot submission produced events: %+v", events)
	}
	if next.WinnerID != "alpha" || next.Units[2].TeamBSubmitted {
		t.Fatal("moot submission altered the result")
	}
}

func TestSeriesSplitGoesToDecider(t *testing.T) {
	m := playing(3)
	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 2})
	_, m = mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 2})
	_, m = mustSubmit(t, m, match.TeamA, 1, match.Score{A: 4, B: 13})
	_, m = mustSubmit(t, m, match.TeamB, 1, match.Score{A: 4, B: 13})

	if m.State == match.StateCompleted {
		t.Fatal("completed at one win apiece")
	}

	_, m = mustSubmit(t, m, match.TeamA, 2, match.Score{A: 5, B: 13})
	_, m = mustSubmit(t, m, match.TeamB, 2, match.Score{A: 5, B: 13})
	if m.State != match.StateCompleted || m.WinnerID != "bravo" {
		t.Fatalf("state = %s winner = %s, want completed/bravo", m.State, m.WinnerID)
	}
	if *m.FinalScore != (match.Score{A: 1, B: 2}) {
		t.Fatalf("final = %+v, want 1-2", m.FinalScore)
	}
}

func TestDispute(t *testing.T) {
	m := playing(1)
	_, m = mustSubmit(t, m, match.TeamA, 0, match.Score{A: 13, B: 8})
	_, m = mustSubmit(t, m, match.TeamB, 0, match.Score{A: 13, B: 9})

	events, m, err := Dispute(m, match.TeamB, "scoreboard screenshot differs")
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if !hasEvent(events, EvtDisputeRaised) {
		t.Fatalf("events = %+v", events)
	}
	if m.State != match.StateDisputed || m.DisputeReason == "" {
		t.Fatalf("state = %s reason = %q", m.State, m.DisputeReason)
	}

	// Repeating the escalation is a no-op, not an error.
	events, _, err = Dispute(m, match.TeamA, "still wrong")
	if err != nil || len(events) != 0 {
		t.Fatalf("repeat dispute: events=%+v err=%v", events, err)
	}

	// Disputing a completed match is a caller error.
	done := playing(1)
	done.State = match.StateCompleted
	if _, _, err := Dispute(done, match.TeamA, "too late"); !errors.Is(err, match.ErrInvalidTurn) {
		t.Fatalf("err = %v, want %v", err, match.ErrInvalidTurn)
	}
}

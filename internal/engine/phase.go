package engine

import "github.com/tourneyops/match-engine/internal/match"

type Phase string

const (
	PhaseBanning       Phase = "banning"
	PhaseSelectMap     Phase = "select_map"
	PhaseSelectSide    Phase = "select_side"
	PhaseAssignDecider Phase = "assign_decider" // system step, no actor
	PhaseDone          Phase = "done"
)

type Slot string

const (
	SlotSelected Slot = "selected_map"
	SlotMap1     Slot = "map1"
	SlotMap2     Slot = "map2"
	SlotDecider  Slot = "decider"
)

// Turn is the current draft step. Team is empty when no team may act
// (system steps and the completed draft).
type Turn struct {
	Phase Phase
	Team  match.Team
	Slot  Slot
}

// DeriveTurn recomputes the draft step from the populated fields of the
// snapshot alone. It is the single source of truth for both formats: there
// is no stored phase or cursor that could drift from the record.
//
// Turn ownership is fixed by the ruleset. Team A initiates each ban pair and
// every side choice except map 2; Team B selects map 2 and picks the side
// for map 1, so A picks the side for map 2 as compensation.
func DeriveTurn(m match.Match) Turn {
	if m.Format == match.FormatSingleMap {
		return deriveSingle(m)
	}
	return deriveSeries(m)
}

func deriveSingle(m match.Match) Turn {
	if m.SelectedMap != nil {
		return Turn{Phase: PhaseDone}
	}
	// Alternating bans, A first, until one map survives.
	return Turn{Phase: PhaseBanning, Team: banActor(m.TotalBans())}
}

func deriveSeries(m match.Match) Turn {
	switch {
	case m.TotalBans() < 2:
		return Turn{Phase: PhaseBanning, Team: banActor(m.TotalBans())}
	case m.Map1 == nil:
		return Turn{Phase: PhaseSelectMap, Team: match.TeamA, Slot: SlotMap1}
	case m.Map1.Side == "":
		return Turn{Phase: PhaseSelectSide, Team: match.TeamB, Slot: SlotMap1}
	case m.Map2 == nil:
		return Turn{Phase: PhaseSelectMap, Team: match.TeamB, Slot: SlotMap2}
	case m.Map2.Side == "":
		return Turn{Phase: PhaseSelectSide, Team: match.TeamA, Slot: SlotMap2}
	case m.TotalBans() < 4:
		return Turn{Phase: PhaseBanning, Team: banActor(m.TotalBans())}
	case m.Decider == nil:
		return Turn{Phase: PhaseAssignDecider, Slot: SlotDecider}
	case m.Decider.Side == "":
		return Turn{Phase: PhaseSelectSide, Team: match.TeamA, Slot: SlotDecider}
	default:
		return Turn{Phase: PhaseDone}
	}
}

// banActor alternates A/B within each ban pair: A on even totals, B on odd.
func banActor(totalBans int) match.Team {
	if totalBans%2 == 0 {
		return match.TeamA
	}
	return match.TeamB
}

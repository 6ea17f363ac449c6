package engine

import (
	"slices"

	"github.com/tourneyops/match-engine/internal/match"
)

type CommandType string

const (
	CmdBanMap     CommandType = "BanMap"
	CmdSelectMap  CommandType = "SelectMap"
	CmdSelectSide CommandType = "SelectSide"
)

type Command struct {
	Type    CommandType
	Team    match.Team
	MapName string
	Side    match.Side
}

type EventType string

const (
	EvtMapBanned       EventType = "MapBanned"
	EvtMapSelected     EventType = "MapSelected"
	EvtSideChosen      EventType = "SideChosen"
	EvtMapAutoSelected EventType = "MapAutoSelected"
	EvtDeciderAssigned EventType = "DeciderAssigned"
	EvtDraftCompleted  EventType = "DraftCompleted"
)

type Event struct {
	Type    EventType
	Team    match.Team
	MapName string
	Side    match.Side
	Slot    Slot
}

// Apply validates one draft action against the snapshot and returns the
// events it produced plus the next record. A nil error with zero events
// means the action was an exact duplicate of one already recorded; callers
// must not write in that case, which is what makes retried calls safe.
//
// The automatic transitions (single-map auto-select, decider assignment)
// fire inside the Apply whose action satisfies their precondition, so under
// conditional writes they happen exactly once no matter how many clients
// observe the triggering state.
func Apply(m match.Match, cmd Command) ([]Event, match.Match, error) {
	switch cmd.Type {
	case CmdBanMap:
		return applyBan(m, cmd)
	case CmdSelectMap:
		return applySelectMap(m, cmd)
	case CmdSelectSide:
		return applySelectSide(m, cmd)
	default:
		return nil, m, match.ErrUnsupportedCommand
	}
}

func applyBan(m match.Match, cmd Command) ([]Event, match.Match, error) {
	// Duplicate re-submission of a ban this team already holds succeeds
	// without mutating, even if the draft has since moved on.
	if slices.Contains(m.Bans(cmd.Team), cmd.MapName) {
		return nil, m, nil
	}

	turn := DeriveTurn(m)
	if turn.Phase != PhaseBanning {
		return nil, m, match.ErrMapUnavailable
	}
	if turn.Team != cmd.Team {
		return nil, m, match.ErrInvalidTurn
	}
	if !m.InPool(cmd.MapName) || m.Taken(cmd.MapName) {
		return nil, m, match.ErrMapUnavailable
	}

	next := m.Clone()
	if cmd.Team == match.TeamA {
		next.BansA = append(next.BansA, cmd.MapName)
	} else {
		next.BansB = append(next.BansB, cmd.MapName)
	}
	events := []Event{{Type: EvtMapBanned, Team: cmd.Team, MapName: cmd.MapName}}

	events = append(events, autoAdvance(&next)...)
	return events, next, nil
}

func applySelectMap(m match.Match, cmd Command) ([]Event, match.Match, error) {
	turn := DeriveTurn(m)
	if turn.Phase != PhaseSelectMap {
		return nil, m, match.ErrMapUnavailable
	}
	if turn.Team != cmd.Team {
		return nil, m, match.ErrInvalidTurn
	}
	if !m.InPool(cmd.MapName) || m.Taken(cmd.MapName) {
		return nil, m, match.ErrMapUnavailable
	}

	next := m.Clone()
	slot := &match.MapSlot{MapName: cmd.MapName}
	switch turn.Slot {
	case SlotMap1:
		next.Map1 = slot
	case SlotMap2:
		next.Map2 = slot
	default:
		return nil, m, match.ErrUnsupportedCommand
	}
	events := []Event{{Type: EvtMapSelected, Team: cmd.Team, MapName: cmd.MapName, Slot: turn.Slot}}
	return events, next, nil
}

func applySelectSide(m match.Match, cmd Command) ([]Event, match.Match, error) {
	turn := DeriveTurn(m)
	if turn.Phase != PhaseSelectSide || turn.Team != cmd.Team {
		return nil, m, match.ErrInvalidTurn
	}
	if cmd.Side != match.SideAttack && cmd.Side != match.SideDefense {
		return nil, m, match.ErrUnsupportedCommand
	}

	next := m.Clone()
	var slot *match.MapSlot
	switch turn.Slot {
	case SlotMap1:
		slot = next.Map1
	case SlotMap2:
		slot = next.Map2
	case SlotDecider:
		slot = next.Decider
	}
	slot.Side = cmd.Side
	events := []Event{{Type: EvtSideChosen, Team: cmd.Team, MapName: slot.MapName, Side: cmd.Side, Slot: turn.Slot}}

	events = append(events, autoAdvance(&next)...)
	return events, next, nil
}

// autoAdvance applies any system transition the last action unlocked and
// marks the draft complete when nothing is left to decide.
func autoAdvance(next *match.Match) []Event {
	var events []Event

	turn := DeriveTurn(*next)

	// Single map: once one unbanned map remains it becomes the selection
	// with no explicit pick action.
	if next.Format == match.FormatSingleMap && turn.Phase == PhaseBanning {
		if rem := next.Remaining(); len(rem) == 1 {
			next.SelectedMap = &match.MapSlot{MapName: rem[0]}
			events = append(events, Event{Type: EvtMapAutoSelected, MapName: rem[0], Slot: SlotSelected})
			turn = DeriveTurn(*next)
		}
	}

	// Series: the decider is whatever survives the second ban pair.
	if turn.Phase == PhaseAssignDecider {
		rem := next.Remaining()
		next.Decider = &match.MapSlot{MapName: rem[0]}
		events = append(events, Event{Type: EvtDeciderAssigned, MapName: rem[0], Slot: SlotDecider})
		turn = DeriveTurn(*next)
	}

	if turn.Phase == PhaseDone && next.State == match.StateDrafting {
		next.State = match.StatePlaying
		n := 1
		if next.Format == match.FormatThreeMapSeries {
			n = 3
		}
		next.Units = make([]match.Submission, n)
		events = append(events, Event{Type: EvtDraftCompleted})
	}
	return events
}

// ContainsEvent reports whether an event of the given type is present.
func ContainsEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

package match

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidTurn = errors.New("invalid turn")
var ErrMapUnavailable = errors.New("map unavailable")
var ErrAlreadySubmitted = errors.New("score already submitted")
var ErrNotInMatch = errors.New("caller is not in this match")
var ErrDisputeRequired = errors.New("match is disputed, admin action required")
var ErrConcurrentModification = errors.New("concurrent modification, retry")
var ErrNotAuthorized = errors.New("not authorized")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrNotFound = errors.New("match not found")
var ErrInvalidPool = errors.New("invalid map pool")

// ScoreError is a RoundScoreValidator rejection. Rule is the 1-based number
// of the first rule that failed.
type ScoreError struct {
	Rule   int
	Reason string
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("invalid score (rule %d): %s", e.Rule, e.Reason)
}

type Format string

const (
	FormatSingleMap      Format = "single_map"
	FormatThreeMapSeries Format = "three_map_series"
)

type Side string

const (
	SideAttack  Side = "attack"
	SideDefense Side = "defense"
)

type State string

const (
	StateDrafting        State = "drafting"
	StatePlaying         State = "playing"
	StateAwaitingResults State = "awaiting_results"
	StateDisputed        State = "disputed"
	StateCompleted       State = "completed"
)

// Team identifies one of the two seats in a match, independent of the opaque
// team IDs bound to them.
type Team string

const (
	TeamA Team = "team_a"
	TeamB Team = "team_b"
)

func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// DefaultMapPool is the current competitive seven-map rotation.
var DefaultMapPool = []string{"Abyss", "Bind", "Corrode", "Haven", "Pearl", "Split", "Sunset"}

// Score is one reported map result: A rounds for team A, B rounds for team B.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// MapSlot is a drafted map. Side is the starting side of the team that did
// NOT pick the map, and is empty until chosen.
type MapSlot struct {
	MapName string `json:"map_name"`
	Side    Side   `json:"side,omitempty"`
}

// Submission is the score-reporting state for one played map. A team's score
// is non-nil iff its submitted flag is true.
type Submission struct {
	TeamASubmitted bool   `json:"team_a_submitted"`
	TeamBSubmitted bool   `json:"team_b_submitted"`
	TeamAScore     *Score `json:"team_a_score,omitempty"`
	TeamBScore     *Score `json:"team_b_score,omitempty"`
}

// UnitStatus is derived from the submission flags every time; it is never
// persisted, so a reconnecting client reconstructs it from the record alone.
type UnitStatus string

const (
	UnitAwaitingBoth UnitStatus = "awaiting_both"
	UnitOneSubmitted UnitStatus = "one_submitted"
	UnitAgreed       UnitStatus = "agreed"
	UnitMismatched   UnitStatus = "mismatched"
)

func (s Submission) Status() UnitStatus {
	switch {
	case !s.TeamASubmitted && !s.TeamBSubmitted:
		return UnitAwaitingBoth
	case s.TeamASubmitted != s.TeamBSubmitted:
		return UnitOneSubmitted
	case *s.TeamAScore == *s.TeamBScore:
		return UnitAgreed
	default:
		return UnitMismatched
	}
}

func (s Submission) Submitted(t Team) bool {
	if t == TeamA {
		return s.TeamASubmitted
	}
	return s.TeamBSubmitted
}

func (s Submission) ScoreOf(t Team) *Score {
	if t == TeamA {
		return s.TeamAScore
	}
	return s.TeamBScore
}

func (s *Submission) Record(t Team, sc Score) {
	if t == TeamA {
		s.TeamASubmitted = true
		s.TeamAScore = &sc
	} else {
		s.TeamBSubmitted = true
		s.TeamBScore = &sc
	}
}

type Match struct {
	ID      string `json:"id"`
	Format  Format `json:"format"`
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id"`

	MapPool []string `json:"map_pool"`
	BansA   []string `json:"bans_a"`
	BansB   []string `json:"bans_b"`

	// Series slots. SelectedMap is used by the single-map format; Map1, Map2
	// and Decider by the three-map series. The decider is never picked by a
	// team action.
	SelectedMap *MapSlot `json:"selected_map,omitempty"`
	Map1        *MapSlot `json:"map1,omitempty"`
	Map2        *MapSlot `json:"map2,omitempty"`
	Decider     *MapSlot `json:"decider,omitempty"`

	Units []Submission `json:"units"`

	State         State  `json:"state"`
	WinnerID      string `json:"winner_id,omitempty"`
	FinalScore    *Score `json:"final_score,omitempty"`
	DisputeReason string `json:"dispute_reason,omitempty"`
}

// New creates a match in the drafting state. Pass nil pool for the default
// rotation.
func New(id string, format Format, teamAID, teamBID string, pool []string) Match {
	if pool == nil {
		pool = DefaultMapPool
	}
	return Match{
		ID:      id,
		Format:  format,
		TeamAID: teamAID,
		TeamBID: teamBID,
		MapPool: slices.Clone(pool),
		BansA:   []string{},
		BansB:   []string{},
		State:   StateDrafting,
	}
}

// ValidatePool checks that a pool can carry a full draft for the format.
// Names must be distinct and non-empty. The three-map series consumes four
// bans and two picks and leaves the decider as the sole survivor, so its
// pool is exactly seven maps; a single-map draft alternates bans down to one
// survivor and works with any two or more.
func ValidatePool(f Format, pool []string) error {
	seen := make(map[string]struct{}, len(pool))
	for _, name := range pool {
		if name == "" {
			return ErrInvalidPool
		}
		if _, dup := seen[name]; dup {
			return ErrInvalidPool
		}
		seen[name] = struct{}{}
	}
	switch f {
	case FormatThreeMapSeries:
		if len(pool) != 7 {
			return ErrInvalidPool
		}
	default:
		if len(pool) < 2 {
			return ErrInvalidPool
		}
	}
	return nil
}

// SeatOf resolves an opaque team ID to its seat.
func (m Match) SeatOf(teamID string) (Team, error) {
	switch teamID {
	case m.TeamAID:
		return TeamA, nil
	case m.TeamBID:
		return TeamB, nil
	default:
		return "", ErrNotInMatch
	}
}

func (m Match) TeamID(t Team) string {
	if t == TeamA {
		return m.TeamAID
	}
	return m.TeamBID
}

func (m Match) Bans(t Team) []string {
	if t == TeamA {
		return m.BansA
	}
	return m.BansB
}

func (m Match) TotalBans() int {
	return len(m.BansA) + len(m.BansB)
}

// Taken reports whether a map name is already banned or selected anywhere.
func (m Match) Taken(name string) bool {
	if slices.Contains(m.BansA, name) || slices.Contains(m.BansB, name) {
		return true
	}
	for _, slot := range []*MapSlot{m.SelectedMap, m.Map1, m.Map2, m.Decider} {
		if slot != nil && slot.MapName == name {
			return true
		}
	}
	return false
}

// InPool reports whether a map name belongs to this match's pool.
func (m Match) InPool(name string) bool {
	return slices.Contains(m.MapPool, name)
}

// Remaining returns the pool entries that are neither banned nor selected.
func (m Match) Remaining() []string {
	var out []string
	for _, name := range m.MapPool {
		if !m.Taken(name) {
			out = append(out, name)
		}
	}
	return out
}

// PlayedMaps returns the drafted slots in play order.
func (m Match) PlayedMaps() []*MapSlot {
	if m.Format == FormatSingleMap {
		if m.SelectedMap == nil {
			return nil
		}
		return []*MapSlot{m.SelectedMap}
	}
	var out []*MapSlot
	for _, slot := range []*MapSlot{m.Map1, m.Map2, m.Decider} {
		if slot != nil {
			out = append(out, slot)
		}
	}
	return out
}

// Clone returns a deep copy safe to mutate without aliasing the original.
func (m Match) Clone() Match {
	out := m
	out.MapPool = slices.Clone(m.MapPool)
	out.BansA = slices.Clone(m.BansA)
	out.BansB = slices.Clone(m.BansB)
	out.SelectedMap = cloneSlot(m.SelectedMap)
	out.Map1 = cloneSlot(m.Map1)
	out.Map2 = cloneSlot(m.Map2)
	out.Decider = cloneSlot(m.Decider)
	if m.FinalScore != nil {
		fs := *m.FinalScore
		out.FinalScore = &fs
	}
	out.Units = make([]Submission, len(m.Units))
	for i, u := range m.Units {
		cu := u
		if u.TeamAScore != nil {
			sc := *u.TeamAScore
			cu.TeamAScore = &sc
		}
		if u.TeamBScore != nil {
			sc := *u.TeamBScore
			cu.TeamBScore = &sc
		}
		out.Units[i] = cu
	}
	return out
}

func cloneSlot(s *MapSlot) *MapSlot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideAttack, SideDefense:
		return Side(s), true
	default:
		return "", false
	}
}

func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatSingleMap, FormatThreeMapSeries:
		return Format(s), true
	default:
		return "", false
	}
}

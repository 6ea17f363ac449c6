// Package wire holds the messages shared by the HTTP and websocket layers.
package wire

import (
	"errors"
	"net/http"

	"github.com/tourneyops/match-engine/internal/engine"
	"github.com/tourneyops/match-engine/internal/match"
	"github.com/tourneyops/match-engine/internal/store"
)

// SnapshotMessage is the match record plus the state clients would otherwise
// re-derive themselves: the current draft turn and per-unit statuses.
type SnapshotMessage struct {
	Type         string             `json:"type"` // "StateSnapshot"
	Version      int                `json:"version"`
	Match        match.Match        `json:"match"`
	Phase        engine.Phase       `json:"phase"`
	ActiveTeamID string             `json:"active_team_id,omitempty"`
	AwaitingSlot engine.Slot        `json:"awaiting_slot,omitempty"`
	Units        []match.UnitStatus `json:"unit_statuses,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "Error"
	Code    string `json:"code"`
	Message string `json:"message"`
	Rule    int    `json:"rule,omitempty"` // validator rule number, score_invalid only
}

func NewSnapshot(snap store.Snapshot) SnapshotMessage {
	m := snap.Match
	turn := engine.DeriveTurn(m)
	msg := SnapshotMessage{
		Type:         "StateSnapshot",
		Version:      snap.Version,
		Match:        m,
		Phase:        turn.Phase,
		AwaitingSlot: turn.Slot,
	}
	if turn.Team != "" {
		msg.ActiveTeamID = m.TeamID(turn.Team)
	}
	for _, u := range m.Units {
		msg.Units = append(msg.Units, u.Status())
	}
	return msg
}

// NewError maps an operation error to its wire shape and HTTP status.
func NewError(err error) (ErrorMessage, int) {
	var se *match.ScoreError
	if errors.As(err, &se) {
		return ErrorMessage{Type: "Error", Code: "score_invalid", Message: se.Error(), Rule: se.Rule}, http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, match.ErrInvalidTurn):
		return errMsg("invalid_turn", err), http.StatusConflict
	case errors.Is(err, match.ErrMapUnavailable):
		return errMsg("map_unavailable", err), http.StatusConflict
	case errors.Is(err, match.ErrAlreadySubmitted):
		return errMsg("already_submitted", err), http.StatusConflict
	case errors.Is(err, match.ErrDisputeRequired):
		return errMsg("dispute_required", err), http.StatusConflict
	case errors.Is(err, match.ErrConcurrentModification):
		return errMsg("concurrent_modification", err), http.StatusConflict
	case errors.Is(err, match.ErrNotInMatch):
		return errMsg("not_in_match", err), http.StatusForbidden
	case errors.Is(err, match.ErrNotAuthorized):
		return errMsg("not_authorized", err), http.StatusForbidden
	case errors.Is(err, match.ErrNotFound):
		return errMsg("not_found", err), http.StatusNotFound
	case errors.Is(err, match.ErrInvalidPool):
		return errMsg("invalid_pool", err), http.StatusBadRequest
	case errors.Is(err, match.ErrUnsupportedCommand):
		return errMsg("unsupported", err), http.StatusBadRequest
	default:
		return errMsg("internal", err), http.StatusInternalServerError
	}
}

func errMsg(code string, err error) ErrorMessage {
	return ErrorMessage{Type: "Error", Code: code, Message: err.Error()}
}

// Package service is the public operation surface of the engine. Every
// mutating operation is one guarded read-modify-write: validate against a
// freshly read snapshot, apply a pure transform, write conditionally on the
// version read. A conflicting write surfaces as ErrConcurrentModification
// and leaves the record untouched; callers re-read and retry.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/arbiter"
	"github.com/tourneyops/match-engine/internal/engine"
	"github.com/tourneyops/match-engine/internal/match"
	"github.com/tourneyops/match-engine/internal/score"
	"github.com/tourneyops/match-engine/internal/store"
)

type Service struct {
	store store.Store
	log   *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// CreateMatch pairs two teams into a new drafting match. A nil pool uses
// the default rotation.
func (s *Service) CreateMatch(ctx context.Context, format match.Format, teamAID, teamBID string, pool []string) (store.Snapshot, error) {
	m := match.New(uuid.NewString(), format, teamAID, teamBID, pool)
	if err := match.ValidatePool(format, m.MapPool); err != nil {
		return store.Snapshot{}, err
	}
	snap, err := s.store.Create(ctx, m)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.log.Info("match created",
		zap.String("match_id", m.ID),
		zap.String("format", string(format)),
		zap.String("team_a", teamAID),
		zap.String("team_b", teamBID))
	return snap, nil
}

func (s *Service) Get(ctx context.Context, matchID string) (store.Snapshot, error) {
	return s.store.Read(ctx, matchID)
}

func (s *Service) Ban(ctx context.Context, matchID, teamID, mapName string) (store.Snapshot, error) {
	return s.draftOp(ctx, matchID, teamID, "ban", func(seat match.Team) engine.Command {
		return engine.Command{Type: engine.CmdBanMap, Team: seat, MapName: mapName}
	})
}

func (s *Service) SelectMap(ctx context.Context, matchID, teamID, mapName string) (store.Snapshot, error) {
	return s.draftOp(ctx, matchID, teamID, "select_map", func(seat match.Team) engine.Command {
		return engine.Command{Type: engine.CmdSelectMap, Team: seat, MapName: mapName}
	})
}

func (s *Service) SelectSide(ctx context.Context, matchID, teamID string, side match.Side) (store.Snapshot, error) {
	return s.draftOp(ctx, matchID, teamID, "select_side", func(seat match.Team) engine.Command {
		return engine.Command{Type: engine.CmdSelectSide, Team: seat, Side: side}
	})
}

func (s *Service) draftOp(ctx context.Context, matchID, teamID, op string, build func(match.Team) engine.Command) (store.Snapshot, error) {
	snap, err := s.store.Read(ctx, matchID)
	if err != nil {
		return store.Snapshot{}, err
	}
	seat, err := snap.Match.SeatOf(teamID)
	if err != nil {
		return store.Snapshot{}, err
	}
	events, next, err := engine.Apply(snap.Match, build(seat))
	if err != nil {
		return store.Snapshot{}, err
	}
	if len(events) == 0 {
		// Duplicate of an already-recorded action; nothing to write.
		return snap, nil
	}
	out, err := s.write(ctx, snap, next)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.logDraft(op, matchID, teamID, events)
	return out, nil
}

func (s *Service) SubmitScore(ctx context.Context, matchID, teamID string, unit int, sc match.Score) (store.Snapshot, error) {
	return s.scoreOp(ctx, matchID, teamID, "submit_score", func(m match.Match, seat match.Team) ([]score.Event, match.Match, error) {
		return score.Submit(m, seat, unit, sc)
	})
}

func (s *Service) AgreeToScore(ctx context.Context, matchID, teamID string, unit int) (store.Snapshot, error) {
	return s.scoreOp(ctx, matchID, teamID, "agree_to_score", func(m match.Match, seat match.Team) ([]score.Event, match.Match, error) {
		return score.Agree(m, seat, unit)
	})
}

func (s *Service) RaiseDispute(ctx context.Context, matchID, teamID, reason string) (store.Snapshot, error) {
	return s.scoreOp(ctx, matchID, teamID, "raise_dispute", func(m match.Match, seat match.Team) ([]score.Event, match.Match, error) {
		return score.Dispute(m, seat, reason)
	})
}

func (s *Service) scoreOp(ctx context.Context, matchID, teamID, op string, apply func(match.Match, match.Team) ([]score.Event, match.Match, error)) (store.Snapshot, error) {
	snap, err := s.store.Read(ctx, matchID)
	if err != nil {
		return store.Snapshot{}, err
	}
	seat, err := snap.Match.SeatOf(teamID)
	if err != nil {
		return store.Snapshot{}, err
	}
	events, next, err := apply(snap.Match, seat)
	if err != nil {
		return store.Snapshot{}, err
	}
	if len(events) == 0 {
		return snap, nil
	}
	out, err := s.write(ctx, snap, next)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.logScore(op, matchID, teamID, events)
	return out, nil
}

// AdminReset returns a match to active play with every submission unit
// cleared. The caller must already be authorized.
func (s *Service) AdminReset(ctx context.Context, matchID string) (store.Snapshot, error) {
	snap, err := s.store.Read(ctx, matchID)
	if err != nil {
		return store.Snapshot{}, err
	}
	next, err := arbiter.Reset(snap.Match)
	if err != nil {
		return store.Snapshot{}, err
	}
	out, err := s.write(ctx, snap, next)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.log.Info("match reset by admin", zap.String("match_id", matchID))
	return out, nil
}

// AdminForceSubmit records a final result bypassing reconciliation.
func (s *Service) AdminForceSubmit(ctx context.Context, matchID string, scoreA, scoreB int, winnerID string) (store.Snapshot, error) {
	snap, err := s.store.Read(ctx, matchID)
	if err != nil {
		return store.Snapshot{}, err
	}
	next, err := arbiter.ForceSubmit(snap.Match, scoreA, scoreB, winnerID)
	if err != nil {
		return store.Snapshot{}, err
	}
	out, err := s.write(ctx, snap, next)
	if err != nil {
		return store.Snapshot{}, err
	}
	s.log.Info("result forced by admin",
		zap.String("match_id", matchID),
		zap.String("winner_id", winnerID),
		zap.Int("score_a", scoreA),
		zap.Int("score_b", scoreB))
	return out, nil
}

func (s *Service) write(ctx context.Context, snap store.Snapshot, next match.Match) (store.Snapshot, error) {
	out, err := s.store.ConditionalWrite(ctx, snap.Match.ID, snap.Version, next)
	if errors.Is(err, store.ErrConflict) {
		return store.Snapshot{}, match.ErrConcurrentModification
	}
	return out, err
}

func (s *Service) logDraft(op, matchID, teamID string, events []engine.Event) {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = string(e.Type)
	}
	s.log.Info("draft action applied",
		zap.String("op", op),
		zap.String("match_id", matchID),
		zap.String("team_id", teamID),
		zap.Strings("events", types))
}

func (s *Service) logScore(op, matchID, teamID string, events []score.Event) {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = string(e.Type)
	}
	s.log.Info("score action applied",
		zap.String("op", op),
		zap.String("match_id", matchID),
		zap.String("team_id", teamID),
		zap.Strings("events", types))
}

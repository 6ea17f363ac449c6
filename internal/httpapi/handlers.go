package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tourneyops/match-engine/internal/match"
	"github.com/tourneyops/match-engine/internal/service"
	"github.com/tourneyops/match-engine/internal/store"
	"github.com/tourneyops/match-engine/internal/wire"
)

type createMatchRequest struct {
	Format  string   `json:"format"`
	TeamAID string   `json:"team_a_id"`
	TeamBID string   `json:"team_b_id"`
	MapPool []string `json:"map_pool,omitempty"`
}

type banRequest struct {
	TeamID  string `json:"team_id"`
	MapName string `json:"map_name"`
}

type selectMapRequest struct {
	TeamID  string `json:"team_id"`
	MapName string `json:"map_name"`
}

type selectSideRequest struct {
	TeamID string `json:"team_id"`
	Side   string `json:"side"`
}

type submitScoreRequest struct {
	TeamID string `json:"team_id"`
	Unit   int    `json:"unit"`
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
}

type agreeRequest struct {
	TeamID string `json:"team_id"`
	Unit   int    `json:"unit"`
}

type disputeRequest struct {
	TeamID string `json:"team_id"`
	Reason string `json:"reason"`
}

type forceSubmitRequest struct {
	ScoreA   int    `json:"score_a"`
	ScoreB   int    `json:"score_b"`
	WinnerID string `json:"winner_id"`
}

func CreateMatch(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMatchRequest
		if !decode(w, r, &req) {
			return
		}
		format, ok := match.ParseFormat(req.Format)
		if !ok {
			badRequest(w, "unknown format")
			return
		}
		if req.TeamAID == "" || req.TeamBID == "" || req.TeamAID == req.TeamBID {
			badRequest(w, "two distinct team ids required")
			return
		}
		snap, err := svc.CreateMatch(r.Context(), format, req.TeamAID, req.TeamBID, req.MapPool)
		respond(w, snap, err, http.StatusCreated)
	}
}

func GetMatch(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		respond(w, snap, err, http.StatusOK)
	}
}

func Ban(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req banRequest
		if !decode(w, r, &req) {
			return
		}
		snap, err := svc.Ban(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.MapName)
		respond(w, snap, err, http.StatusOK)
	}
}

func SelectMap(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectMapRequest
		if !decode(w, r, &req) {
			return
		}
		snap, err := svc.SelectMap(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.MapName)
		respond(w, snap, err, http.StatusOK)
	}
}

func SelectSide(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectSideRequest
		if !decode(w, r, &req) {
			return
		}
		side, ok := match.ParseSide(req.Side)
		if !ok {
			badRequest(w, "side must be attack or defense")
			return
		}
		snap, err := svc.SelectSide(r.Context(), chi.URLParam(r, "id"), req.TeamID, side)
		respond(w, snap, err, http.StatusOK)
	}
}

func SubmitScore(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitScoreRequest
		if !decode(w, r, &req) {
			return
		}
		sc := match.Score{A: req.ScoreA, B: req.ScoreB}
		snap, err := svc.SubmitScore(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.Unit, sc)
		respond(w, snap, err, http.StatusOK)
	}
}

func AgreeToScore(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agreeRequest
		if !decode(w, r, &req) {
			return
		}
		snap, err := svc.AgreeToScore(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.Unit)
		respond(w, snap, err, http.StatusOK)
	}
}

func RaiseDispute(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req disputeRequest
		if !decode(w, r, &req) {
			return
		}
		snap, err := svc.RaiseDispute(r.Context(), chi.URLParam(r, "id"), req.TeamID, req.Reason)
		respond(w, snap, err, http.StatusOK)
	}
}

func AdminReset(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.AdminReset(r.Context(), chi.URLParam(r, "id"))
		respond(w, snap, err, http.StatusOK)
	}
}

func AdminForceSubmit(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forceSubmitRequest
		if !decode(w, r, &req) {
			return
		}
		snap, err := svc.AdminForceSubmit(r.Context(), chi.URLParam(r, "id"), req.ScoreA, req.ScoreB, req.WinnerID)
		respond(w, snap, err, http.StatusOK)
	}
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "bad json")
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, wire.ErrorMessage{Type: "Error", Code: "bad_request", Message: msg})
}

func respond(w http.ResponseWriter, snap store.Snapshot, err error, okStatus int) {
	if err != nil {
		msg, status := wire.NewError(err)
		writeJSON(w, status, msg)
		return
	}
	writeJSON(w, okStatus, wire.NewSnapshot(snap))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

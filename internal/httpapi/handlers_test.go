package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/hub"
	"github.com/tourneyops/match-engine/internal/match"
	"github.com/tourneyops/match-engine/internal/service"
	"github.com/tourneyops/match-engine/internal/store"
	"github.com/tourneyops/match-engine/internal/wire"
)

const adminToken = "hunter2"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st := store.NewMemory()
	log := zap.NewNop()
	svc := service.New(st, log)
	h := hub.NewHub(ctx, st, log)

	srv := httptest.NewServer(SetupRoutes(svc, h, adminToken, []string{"*"}, log))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) (*http.Response, wire.SnapshotMessage, wire.ErrorMessage) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	var snap wire.SnapshotMessage
	var errMsg wire.ErrorMessage
	if resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(raw, &snap))
	} else {
		require.NoError(t, json.Unmarshal(raw, &errMsg))
	}
	return resp, snap, errMsg
}

func TestCreateAndBanOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, snap, _ := postJSON(t, srv.URL+"/matches", createMatchRequest{
		Format:  "single_map",
		TeamAID: "alpha",
		TeamBID: "bravo",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, snap.Version)
	require.Equal(t, "alpha", snap.ActiveTeamID)

	url := fmt.Sprintf("%s/matches/%s/ban", srv.URL, snap.Match.ID)
	resp, snap, _ = postJSON(t, url, banRequest{TeamID: "alpha", MapName: "Abyss"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"Abyss"}, snap.Match.BansA)
	require.Equal(t, "bravo", snap.ActiveTeamID)

	// Out of turn comes back as a conflict with a typed code.
	resp, _, errMsg := postJSON(t, url, banRequest{TeamID: "alpha", MapName: "Bind"}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "invalid_turn", errMsg.Code)
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	srv := newTestServer(t)

	_, snap, _ := postJSON(t, srv.URL+"/matches", createMatchRequest{
		Format:  "single_map",
		TeamAID: "alpha",
		TeamBID: "bravo",
	}, nil)

	url := fmt.Sprintf("%s/matches/%s/admin/force-submit", srv.URL, snap.Match.ID)
	body := forceSubmitRequest{ScoreA: 13, ScoreB: 7, WinnerID: "alpha"}

	resp, _, errMsg := postJSON(t, url, body, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "not_authorized", errMsg.Code)

	resp, got, _ := postJSON(t, url, body, map[string]string{"X-Admin-Token": adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, match.StateCompleted, got.Match.State)
	require.Equal(t, "alpha", got.Match.WinnerID)
}

func TestScoreInvalidCarriesRuleNumber(t *testing.T) {
	srv := newTestServer(t)

	_, snap, _ := postJSON(t, srv.URL+"/matches", createMatchRequest{
		Format:  "single_map",
		TeamAID: "alpha",
		TeamBID: "bravo",
	}, nil)
	id := snap.Match.ID

	bans := []banRequest{
		{TeamID: "alpha", MapName: "Abyss"}, {TeamID: "bravo", MapName: "Bind"},
		{TeamID: "alpha", MapName: "Corrode"}, {TeamID: "bravo", MapName: "Haven"},
		{TeamID: "alpha", MapName: "Pearl"}, {TeamID: "bravo", MapName: "Split"},
	}
	for _, b := range bans {
		resp, _, _ := postJSON(t, fmt.Sprintf("%s/matches/%s/ban", srv.URL, id), b, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _, errMsg := postJSON(t, fmt.Sprintf("%s/matches/%s/submit-score", srv.URL, id),
		submitScoreRequest{TeamID: "alpha", Unit: 0, ScoreA: 13, ScoreB: 12}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "score_invalid", errMsg.Code)
	require.Equal(t, 5, errMsg.Rule)
}

func TestCreateMatchRejectsBadPool(t *testing.T) {
	srv := newTestServer(t)

	resp, _, errMsg := postJSON(t, srv.URL+"/matches", createMatchRequest{
		Format:  "three_map_series",
		TeamAID: "alpha",
		TeamBID: "bravo",
		MapPool: []string{"Abyss", "Bind", "Corrode", "Haven", "Pearl", "Split"},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_pool", errMsg.Code)
}

func TestGetUnknownMatch(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/matches/nope/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

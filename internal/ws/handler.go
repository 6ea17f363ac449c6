package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/hub"
	"github.com/tourneyops/match-engine/internal/service"
	"github.com/tourneyops/match-engine/internal/store"
	"github.com/tourneyops/match-engine/internal/wire"
)

// Handler streams match snapshots to a client. The socket is push-only:
// mutations go through the HTTP operations, the store notifies, the hub
// fans out.
func Handler(h *hub.Hub, svc *service.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("match")
		if matchID == "" {
			http.Error(w, "missing match", http.StatusBadRequest)
			return
		}

		if _, err := svc.Get(r.Context(), matchID); err != nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan store.Snapshot, 8)
		clientID := uuid.NewString()

		h.Inbox() <- hub.Join{MatchID: matchID, ClientID: clientID, Outbox: out}
		defer func() { h.Inbox() <- hub.Leave{MatchID: matchID, ClientID: clientID} }()

		// The hub replies with the current snapshot as part of Join, so the
		// first frame comes through the outbox like every later one.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				payload, _ := json.Marshal(wire.NewSnapshot(snap))
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop only watches for the client going away; inbound
		// frames are ignored.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("websocket closed", zap.String("match_id", matchID), zap.Error(err))
				return
			}
		}
	}
}

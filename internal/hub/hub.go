// Package hub fans store change notifications out to connected clients,
// one subscriber group per match.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/tourneyops/match-engine/internal/store"
)

type Msg interface{ isHubMsg() }

type Join struct {
	MatchID  string
	ClientID string
	Outbox   chan store.Snapshot
}

type Leave struct {
	MatchID  string
	ClientID string
}

type Shutdown struct{}

// publish carries one store notification into the hub loop.
type publish struct {
	MatchID string
	Snap    store.Snapshot
}

func (Join) isHubMsg()     {}
func (Leave) isHubMsg()    {}
func (Shutdown) isHubMsg() {}
func (publish) isHubMsg()  {}

type group struct {
	clients   map[string]chan store.Snapshot
	last      store.Snapshot // zero Version until first read or publish
	done      chan struct{}
	cancelSub func()
}

type Hub struct {
	inbox  chan Msg
	groups map[string]*group
	store  store.Store
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, st store.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		groups: make(map[string]*group),
		store:  st,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				g, err := h.ensureGroup(msg.MatchID)
				if err != nil {
					h.log.Warn("subscription unavailable", zap.String("match_id", msg.MatchID), zap.Error(err))
					close(msg.Outbox)
					break
				}
				g.clients[msg.ClientID] = msg.Outbox
				// Register client + send current snapshot immediately.
				if g.last.Version > 0 {
					select {
					case msg.Outbox <- g.last:
					default:
					}
				}

			case Leave:
				g := h.groups[msg.MatchID]
				if g == nil {
					break
				}
				// A client already dropped by broadcast is gone from the
				// map, so this never double-closes.
				if ch, ok := g.clients[msg.ClientID]; ok {
					close(ch)
					delete(g.clients, msg.ClientID)
				}
				if len(g.clients) == 0 {
					h.dropGroup(msg.MatchID)
				}

			case publish:
				g := h.groups[msg.MatchID]
				if g == nil {
					break
				}
				// Notifications can race; never replay an older version.
				if msg.Snap.Version <= g.last.Version {
					break
				}
				g.last = msg.Snap
				h.broadcast(g, msg.Snap)

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensureGroup(matchID string) (*group, error) {
	if g := h.groups[matchID]; g != nil {
		return g, nil
	}

	feed := make(chan store.Snapshot, 16)
	cancelSub, err := h.store.Subscribe(matchID, feed)
	if err != nil {
		return nil, err
	}
	g := &group{
		clients:   make(map[string]chan store.Snapshot),
		done:      make(chan struct{}),
		cancelSub: cancelSub,
	}
	// Read only after subscribing: a write landing in between arrives as a
	// notification instead of vanishing into the gap.
	if snap, err := h.store.Read(h.ctx, matchID); err == nil {
		g.last = snap
	} else {
		h.log.Warn("initial read failed", zap.String("match_id", matchID), zap.Error(err))
	}
	h.groups[matchID] = g

	// Forward the store feed into the hub loop so one select serves every
	// group.
	go func() {
		for {
			select {
			case <-g.done:
				return
			case snap := <-feed:
				select {
				case h.inbox <- publish{MatchID: matchID, Snap: snap}:
				case <-g.done:
					return
				}
			}
		}
	}()

	return g, nil
}

func (h *Hub) dropGroup(matchID string) {
	g := h.groups[matchID]
	if g == nil {
		return
	}
	g.cancelSub()
	close(g.done)
	delete(h.groups, matchID)
}

func (h *Hub) broadcast(g *group, snap store.Snapshot) {
	for id, ch := range g.clients {
		select {
		case ch <- snap:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(g.clients, id)
		}
	}
}

func (h *Hub) shutdown() {
	for id := range h.groups {
		g := h.groups[id]
		for cid, ch := range g.clients {
			close(ch)
			delete(g.clients, cid)
		}
		h.dropGroup(id)
	}
	h.cancel()
}

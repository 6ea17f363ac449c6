// Package store is the MatchRecordStore boundary: a versioned document per
// match with conditional writes and push-based change notification. The
// version check is what keeps two teams' near-simultaneous actions from both
// landing; everything above this layer assumes it.
package store

import (
	"context"
	"errors"

	"github.com/tourneyops/match-engine/internal/match"
)

// ErrConflict means the record changed between the caller's read and write.
var ErrConflict = errors.New("store: version conflict")

// Snapshot is one observed state of a match record.
type Snapshot struct {
	Version int         `json:"version"`
	Match   match.Match `json:"match"`
}

type Store interface {
	Create(ctx context.Context, m match.Match) (Snapshot, error)
	Read(ctx context.Context, id string) (Snapshot, error)

	// ConditionalWrite replaces the record only if its version still equals
	// expected; otherwise it returns ErrConflict and the record is untouched.
	ConditionalWrite(ctx context.Context, id string, expected int, m match.Match) (Snapshot, error)

	// Subscribe delivers every subsequent snapshot of the match to out until
	// the returned cancel is called. Sends never block: a full channel drops
	// that update for that subscriber.
	Subscribe(id string, out chan<- Snapshot) (cancel func(), err error)
}

// Notifier carries change notification across process boundaries for stores
// that have no push channel of their own.
type Notifier interface {
	Publish(ctx context.Context, snap Snapshot) error
	Subscribe(id string, out chan<- Snapshot) (cancel func(), err error)
}

// ErrNoNotifier is returned by Subscribe when the store was opened without a
// notification backend.
var ErrNoNotifier = errors.New("store: no notifier configured, subscriptions unavailable")

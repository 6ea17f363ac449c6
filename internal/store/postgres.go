package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tourneyops/match-engine/internal/match"
)

// matchRecord is the persisted row: the match document as JSON plus the
// version column the conditional write compares against.
type matchRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Version   int    `gorm:"not null"`
	Doc       []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (matchRecord) TableName() string { return "match_records" }

// Postgres is the gorm-backed Store. Change notification is delegated to a
// Notifier (redis pub/sub in production) since postgres itself pushes
// nothing; opened without one, Subscribe fails with ErrNoNotifier.
type Postgres struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

func OpenPostgres(dsn string, notifier Notifier, log *zap.Logger) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&matchRecord{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db, notifier: notifier, log: log}, nil
}

func (s *Postgres) Create(ctx context.Context, m match.Match) (Snapshot, error) {
	doc, err := json.Marshal(m)
	if err != nil {
		return Snapshot{}, err
	}
	rec := matchRecord{ID: m.ID, Version: 1, Doc: doc}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Snapshot{}, ErrConflict
		}
		return Snapshot{}, err
	}
	return Snapshot{Version: 1, Match: m}, nil
}

func (s *Postgres) Read(ctx context.Context, id string) (Snapshot, error) {
	var rec matchRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, match.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	var m match.Match
	if err := json.Unmarshal(rec.Doc, &m); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Version: rec.Version, Match: m}, nil
}

func (s *Postgres) ConditionalWrite(ctx context.Context, id string, expected int, m match.Match) (Snapshot, error) {
	doc, err := json.Marshal(m)
	if err != nil {
		return Snapshot{}, err
	}
	res := s.db.WithContext(ctx).
		Model(&matchRecord{}).
		Where("id = ? AND version = ?", id, expected).
		Updates(map[string]any{"version": expected + 1, "doc": doc})
	if res.Error != nil {
		return Snapshot{}, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the record is gone or someone wrote in between.
		var count int64
		if err := s.db.WithContext(ctx).Model(&matchRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return Snapshot{}, err
		}
		if count == 0 {
			return Snapshot{}, match.ErrNotFound
		}
		return Snapshot{}, ErrConflict
	}

	snap := Snapshot{Version: expected + 1, Match: m}
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, snap); err != nil {
			s.log.Warn("change notification failed", zap.String("match_id", id), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Postgres) Subscribe(id string, out chan<- Snapshot) (func(), error) {
	if s.notifier == nil {
		return nil, ErrNoNotifier
	}
	return s.notifier.Subscribe(id, out)
}

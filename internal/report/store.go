package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/askwhyharsh/arlocations/internal/storage"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
)

// Store persists the latest distance report of every session in redis and
// publishes each new report on the session's channel.
type Store struct {
	redis storage.RedisClient
	ttl   time.Duration
}

type Entry struct {
	PlaceID int     `json:"place_id"`
	Name    string  `json:"name"`
	Meters  float64 `json:"meters"`
	Cell    string  `json:"cell,omitempty"`
}

type DistanceReport struct {
	SessionID string    `json:"session_id"`
	Distances []Entry   `json:"distances"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewStore(redisClient storage.RedisClient, ttl time.Duration) *Store {
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Save overwrites the stored report for r.SessionID. Entries are written in
// place id order.
func (s *Store) Save(ctx context.Context, r *DistanceReport) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	sort.Slice(r.Distances, func(i, j int) bool {
		return r.Distances[i].PlaceID < r.Distances[j].PlaceID
	})

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := s.reportKey(r.SessionID)
	if err := s.redis.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	// Publish to Redis pub/sub for dashboards following a session
	if err := s.redis.Publish(ctx, key, data); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*DistanceReport, error) {
	data, err := s.redis.Get(ctx, s.reportKey(sessionID))
	if errors.Is(err, storage.Nil) {
		return nil, apperrors.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var r DistanceReport
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, s.reportKey(sessionID))
}

// Channel is the pub/sub channel new reports of sessionID are published on.
func (s *Store) Channel(sessionID string) string {
	return s.reportKey(sessionID)
}

func (s *Store) reportKey(sessionID string) string {
	return fmt.Sprintf("distances:%s", sessionID)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgredis "alpools-bot/pkg/redis"
)

const defaultStateTTL = 24 * time.Hour

type Storage struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// New returns a dialog state store. A zero ttl keeps states for a day.
func New(client *pkgredis.Client, ttl time.Duration) *Storage {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	return &Storage{client: client, ttl: ttl}
}

func (s *Storage) SetUserDialogState(ctx context.Context, chatID int64, state *UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.client.Set(ctx, buildStateKey(chatID), data, s.ttl)
}

// GetUserDialogState returns an empty state when nothing is stored.
func (s *Storage) GetUserDialogState(ctx context.Context, chatID int64) (*UserState, error) {
	data, err := s.client.Get(ctx, buildStateKey(chatID))
	if errors.Is(err, pkgredis.ErrNil) {
		return &UserState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &state, nil
}

func (s *Storage) DropUserDialogState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, buildStateKey(chatID))
}

func buildStateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}

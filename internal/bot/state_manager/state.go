package state_manager

import (
	"context"
	"fmt"

	"alpools-bot/internal/storage/redis"
)

type UserDialogStateManager struct {
	redisStorage RedisStorage
}

func New(redisStorage RedisStorage) *UserDialogStateManager {
	return &UserDialogStateManager{redisStorage: redisStorage}
}

func (u *UserDialogStateManager) GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error) {
	state, err := u.redisStorage.GetUserDialogState(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("redisStorage.GetUserDialogState failed: %w", err)
	}
	return state, nil
}

func (u *UserDialogStateManager) SetUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error {
	if err := u.redisStorage.SetUserDialogState(ctx, chatID, state); err != nil {
		return fmt.Errorf("redisStorage.SetUserDialogState failed: %w", err)
	}
	return nil
}

// EnterFlow switches the chat to a flow, dropping whatever the previous flow
// kept. User data survives.
func (u *UserDialogStateManager) EnterFlow(ctx context.Context, chatID int64, flow, stage string) (*redis.UserState, error) {
	prev, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("GetUserDialogState failed: %w", err)
	}

	state := &redis.UserState{
		Flow:     flow,
		Stage:    stage,
		Userdata: prev.Userdata,
	}
	if err := u.SetUserDialogState(ctx, chatID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ResetDialogState returns the chat to the main menu and keeps user data.
func (u *UserDialogStateManager) ResetDialogState(ctx context.Context, chatID int64) error {
	_, err := u.EnterFlow(ctx, chatID, "", "")
	return err
}

// RememberUser stores the Telegram profile and, when known, the phone.
func (u *UserDialogStateManager) RememberUser(ctx context.Context, chatID int64, displayName, username string, phone *string) error {
	state, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("GetUserDialogState failed: %w", err)
	}

	if state.Userdata == nil {
		state.Userdata = &redis.UserData{}
	}
	state.Userdata.DisplayName = displayName
	state.Userdata.Username = username
	if phone != nil {
		state.Userdata.PhoneNumber = phone
	}
	return u.SetUserDialogState(ctx, chatID, state)
}

func (u *UserDialogStateManager) ClearState(ctx context.Context, chatID int64) error {
	return u.redisStorage.DropUserDialogState(ctx, chatID)
}

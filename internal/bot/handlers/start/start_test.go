package start

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/keyboards"
)

type fakeState struct {
	remembered []string
	resets     int
	resetErr   error
}

func (f *fakeState) RememberUser(_ context.Context, _ int64, displayName, username string, _ *string) error {
	f.remembered = append(f.remembered, displayName+"|"+username)
	return nil
}

func (f *fakeState) ResetDialogState(context.Context, int64) error {
	f.resets++
	return f.resetErr
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestHandle(t *testing.T) {
	state := &fakeState{}
	sender := &fakeSender{}
	h := New(zap.NewNop(), sender, state)

	h.Handle(context.Background(), &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 10},
		From: &tgbotapi.User{ID: 10, FirstName: "Иван", LastName: "Петров", UserName: "ivan"},
	})

	assert.Equal(t, []string{"Иван Петров|ivan"}, state.remembered)
	assert.Equal(t, 1, state.resets)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(10), sender.sent[0].ChatID)
	assert.Equal(t, welcomeMsg, sender.sent[0].Text)
	assert.Equal(t, keyboards.MainMenu(), sender.sent[0].ReplyMarkup)
}

func TestShowMainMenu_ResetFailure(t *testing.T) {
	state := &fakeState{resetErr: errors.New("redis down")}
	sender := &fakeSender{}

	New(zap.NewNop(), sender, state).ShowMainMenu(context.Background(), 5, MenuMsg)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, MenuMsg, sender.sent[0].Text)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Иван", DisplayName(&tgbotapi.User{FirstName: "Иван"}))
	assert.Empty(t, DisplayName(nil))
}

package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alpools-bot/internal/bot/handlers/start"
	"alpools-bot/internal/bot/keyboards"
	"alpools-bot/internal/bot/state_manager"
	"alpools-bot/internal/config"
	"alpools-bot/internal/draft"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage/redis"
	pkgredis "alpools-bot/pkg/redis"
)

const testChatID int64 = 42

type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m.Text
		}
	}
	return ""
}

func (f *fakeAPI) documents() []tgbotapi.DocumentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []tgbotapi.DocumentConfig
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			docs = append(docs, d)
		}
	}
	return docs
}

func (f *fakeAPI) lastCallback() (tgbotapi.CallbackConfig, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if c, ok := f.requests[i].(tgbotapi.CallbackConfig); ok {
			return c, true
		}
	}
	return tgbotapi.CallbackConfig{}, false
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *recordingNotifier) last(t *testing.T) notify.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.notes)
	return r.notes[len(r.notes)-1]
}

type adminSet map[int64]bool

func (a adminSet) IsAdmin(userID int64) bool { return a[userID] }

type fakeJournal struct {
	data []byte
	err  error
}

func (j fakeJournal) Read() ([]byte, error) { return j.data, j.err }
func (j fakeJournal) FileName() string      { return "leads.xlsx" }

type memDraftRepo struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]draft.Draft
}

func (r *memDraftRepo) Create(_ context.Context, d *draft.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.drafts {
		if existing.UserID == d.UserID && existing.Status.Active() && !existing.IsDeleted {
			return draft.ErrActiveDraftExists
		}
	}
	r.drafts[d.ID] = *d
	return nil
}

func (r *memDraftRepo) Get(_ context.Context, id uuid.UUID) (*draft.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.IsDeleted {
		return nil, draft.ErrNotFound
	}
	return &d, nil
}

func (r *memDraftRepo) ActiveForUser(_ context.Context, userID int64) (*draft.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drafts {
		if d.UserID == userID && d.Status.Active() && !d.IsDeleted {
			return &d, nil
		}
	}
	return nil, draft.ErrNotFound
}

func (r *memDraftRepo) Update(_ context.Context, d *draft.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = *d
	return nil
}

func (r *memDraftRepo) SetPhase(_ context.Context, id uuid.UUID, phase draft.Phase) error {
	return r.modify(id, func(d *draft.Draft) { d.Phase = phase })
}

func (r *memDraftRepo) SetStatus(_ context.Context, id uuid.UUID, status draft.Status) error {
	return r.modify(id, func(d *draft.Draft) { d.Status = status })
}

func (r *memDraftRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	return r.modify(id, func(d *draft.Draft) { d.IsDeleted = true })
}

func (r *memDraftRepo) modify(id uuid.UUID, fn func(*draft.Draft)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.IsDeleted {
		return draft.ErrNotFound
	}
	fn(&d)
	r.drafts[id] = d
	return nil
}

type harness struct {
	bot      *Bot
	api      *fakeAPI
	state    *state_manager.UserDialogStateManager
	notifier *recordingNotifier
	drafts   *memDraftRepo
	user     *tgbotapi.User
}

func newHarness(t *testing.T, admins adminSet, journal fakeJournal) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), pkgredis.Options{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	logger := zap.NewNop()
	api := &fakeAPI{}
	stateManager := state_manager.New(redis.New(client, time.Hour))
	repo := &memDraftRepo{drafts: make(map[uuid.UUID]draft.Draft)}
	notifier := &recordingNotifier{}

	b := New(HandlerDependencies{
		BotAPI:   api,
		Logger:   logger,
		State:    stateManager,
		Drafts:   draft.NewService(repo, nil, logger),
		Notifier: notifier,
		Admins:   admins,
		Journal:  journal,
		Start:    start.New(logger, api, stateManager),
		Cfg: &config.Config{
			Workers:         2,
			SiteURL:         "https://example.com",
			TZDocumentPath:  "testdata/missing.docx",
			CompanyCardPath: "testdata/missing.doc",
		},
	})

	return &harness{
		bot:      b,
		api:      api,
		state:    stateManager,
		notifier: notifier,
		drafts:   repo,
		user:     &tgbotapi.User{ID: testChatID, FirstName: "Иван", LastName: "Петров", UserName: "ivan"},
	}
}

func (h *harness) text(text string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChatID},
		From: h.user,
		Text: text,
	}})
}

func (h *harness) command(name string) {
	text := "/" + name
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChatID},
		From:     h.user,
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}})
}

func (h *harness) contact(phone string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: testChatID},
		From:    h.user,
		Contact: &tgbotapi.Contact{PhoneNumber: phone, UserID: h.user.ID},
	}})
}

func (h *harness) press(data string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    h.user,
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}})
}

// pressInline sends a callback from an inline-mode message, which has no
// Message attached.
func (h *harness) pressInline(data string) {
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:              "cb",
		From:            h.user,
		InlineMessageID: "inline",
		Data:            data,
	}})
}

func (h *harness) userState(t *testing.T) *redis.UserState {
	t.Helper()
	state, err := h.state.GetUserDialogState(context.Background(), testChatID)
	require.NoError(t, err)
	return state
}

func TestConfigurator_QuoteAndContacts(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnConfigurator)
	assert.Equal(t, flowConfigurator, h.userState(t).Flow)

	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionToggle, "technology"))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionNext))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionSelect, "private"))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionSelect, "outdoor"))

	state := h.userState(t)
	require.Equal(t, stageAttractions, state.Stage)
	assert.Equal(t, []string{"technology"}, state.Configurator.Choices.Multi("sections"))

	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionPlus))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionPlus))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionCalc))

	state = h.userState(t)
	require.Equal(t, stageQuote, state.Stage)
	require.NotNil(t, state.Configurator.Total)
	// 120 000 + 15% + 2 x 25 000
	assert.Equal(t, int64(188_000), *state.Configurator.Total)
	assert.Contains(t, h.api.lastText(), "ИТОГО: 188 000 ₽")

	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionSend))
	assert.Equal(t, stageContacts, h.userState(t).Stage)

	h.contact("89991234567")
	h.text("-")

	n := h.notifier.last(t)
	assert.Equal(t, notify.KindQuote, n.Kind)
	assert.Equal(t, "+79991234567", n.Phone)
	assert.Equal(t, msgEmailSkipped, n.Email)
	require.NotNil(t, n.Total)
	assert.Equal(t, int64(188_000), *n.Total)

	state = h.userState(t)
	assert.Empty(t, state.Flow)
	require.NotNil(t, state.Userdata)
	require.NotNil(t, state.Userdata.PhoneNumber)
	assert.Equal(t, "+79991234567", *state.Userdata.PhoneNumber)
	assert.Equal(t, msgQuoteSent, h.api.lastText())
}

func TestConfigurator_AttractionsBackKeepsChoices(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnConfigurator)
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionToggle, "electric"))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionNext))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionSelect, "public"))
	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionSelect, "indoor"))
	require.Equal(t, stageAttractions, h.userState(t).Stage)

	h.press(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionBack))

	state := h.userState(t)
	assert.Equal(t, stageWizard, state.Stage)
	require.NotNil(t, state.Wizard)
	assert.Equal(t, 2, state.Wizard.StepIndex)
	assert.Equal(t, []string{"electric"}, state.Wizard.Answers.Multi("sections"))
}

func TestCostEstimate_EscalationAndCancel(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnCostEstimate)
	assert.Equal(t, flowCost, h.userState(t).Flow)

	h.text("десять на четыре")
	assert.True(t, strings.HasPrefix(h.api.lastText(), "❌ "))
	assert.Equal(t, 0, h.userState(t).Wizard.StepIndex)

	h.press(keyboards.Data(keyboards.ScopeCost, keyboards.ActionEngineer))
	n := h.notifier.last(t)
	assert.Equal(t, notify.KindEscalation, n.Kind)
	assert.Equal(t, "Размеры бассейна", n.Step)
	assert.Equal(t, flowCost, h.userState(t).Flow)

	h.text("10x4x1.6")
	assert.Equal(t, 1, h.userState(t).Wizard.StepIndex)

	h.press(keyboards.Data(keyboards.ScopeCost, keyboards.ActionCancel))
	assert.Empty(t, h.userState(t).Flow)
	assert.Equal(t, msgCostCancelled, h.api.lastText())
}

func TestCallback_StaleScope(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.press(keyboards.Data(keyboards.ScopeCost, keyboards.ActionSelect, "private"))

	cb, ok := h.api.lastCallback()
	require.True(t, ok)
	assert.Equal(t, msgStaleButton, cb.Text)
	assert.True(t, cb.ShowAlert)
	assert.Empty(t, h.notifier.notes)
}

func TestCallback_WithoutMessage(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnConfigurator)
	h.pressInline(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionToggle, "technology"))
	h.pressInline(keyboards.Data(keyboards.ScopeConfig, keyboards.ActionNext))
	assert.Equal(t, 1, h.userState(t).Wizard.StepIndex)

	h.text(keyboards.BtnCostEstimate)
	h.pressInline(keyboards.Data(keyboards.ScopeCost, keyboards.ActionEngineer))
	assert.Equal(t, notify.KindEscalation, h.notifier.last(t).Kind)

	h.text(keyboards.BtnContacts)
	h.pressInline(keyboards.Data(keyboards.ScopeMenu, keyboards.ActionConsult))
	assert.Equal(t, flowConsult, h.userState(t).Flow)
	assert.Equal(t, msgConsult, h.api.lastText())
}

func TestCallback_Malformed(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.press("garbage")

	cb, ok := h.api.lastCallback()
	require.True(t, ok)
	assert.Empty(t, cb.Text)
}

func TestProject_FillEditConfirm(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.command("project")
	state := h.userState(t)
	require.Equal(t, flowProject, state.Flow)
	assert.Equal(t, string(draft.FieldFullName), state.Project.Field)

	for _, answer := range []string{"Иван Петров", "+7 999 123-45-67", "ivan@example.com", "Москва", "10", "4", "1,5"} {
		h.text(answer)
	}

	state = h.userState(t)
	require.Equal(t, stageReview, state.Stage)
	assert.Contains(t, h.api.lastText(), "Иван Петров")
	assert.Contains(t, h.api.lastText(), "Средняя глубина: 1.5")

	h.press(keyboards.Data(keyboards.ScopeDraft, keyboards.ActionEditGeometry))
	state = h.userState(t)
	assert.Equal(t, string(draft.FieldLength), state.Project.Field)
	assert.Equal(t, string(draft.PhaseGeometry), state.Project.EditPhase)

	for _, answer := range []string{"12", "5", "2"} {
		h.text(answer)
	}
	require.Equal(t, stageReview, h.userState(t).Stage)
	assert.Contains(t, h.api.lastText(), "Длина: 12")

	h.press(keyboards.Data(keyboards.ScopeDraft, keyboards.ActionConfirm))

	n := h.notifier.last(t)
	assert.Equal(t, notify.KindProject, n.Kind)
	assert.Equal(t, "ivan@example.com", n.Email)
	assert.Equal(t, msgDraftConfirmed, h.api.lastText())
	assert.Empty(t, h.userState(t).Flow)

	d, err := h.drafts.ActiveForUser(context.Background(), testChatID)
	assert.ErrorIs(t, err, draft.ErrNotFound)
	assert.Nil(t, d)
}

func TestProject_ResumeAfterLeaving(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.command("project")
	h.text("Иван Петров")
	h.text(keyboards.BtnContacts)
	assert.Empty(t, h.userState(t).Flow)

	h.command("project")
	state := h.userState(t)
	require.Equal(t, stageChoice, state.Stage)
	assert.Equal(t, msgDraftResume, h.api.lastText())

	h.press(keyboards.Data(keyboards.ScopeDraft, keyboards.ActionContinue))
	state = h.userState(t)
	assert.Equal(t, stageField, state.Stage)
	assert.Equal(t, string(draft.FieldPhone), state.Project.Field)

	h.contact("+7 (999) 765-43-21")
	assert.Equal(t, string(draft.FieldEmail), h.userState(t).Project.Field)
}

func TestProject_StartOverCancelsOldDraft(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.command("project")
	first := h.userState(t).Project.DraftID
	h.text("Иван Петров")

	h.command("project")
	h.press(keyboards.Data(keyboards.ScopeDraft, keyboards.ActionNew))

	state := h.userState(t)
	assert.NotEqual(t, first, state.Project.DraftID)
	assert.Equal(t, string(draft.FieldFullName), state.Project.Field)
	assert.True(t, strings.HasPrefix(h.api.lastText(), msgDraftNew))
}

func TestProject_RejectsInvalidAnswers(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.command("project")
	h.text("   ")
	assert.Equal(t, "❌ "+msgEmptyAnswer, h.api.lastText())
	assert.Equal(t, string(draft.FieldFullName), h.userState(t).Project.Field)

	h.text("Иван Петров")
	h.text("не телефон")
	assert.True(t, strings.HasPrefix(h.api.lastText(), "❌ "))
	assert.Equal(t, string(draft.FieldPhone), h.userState(t).Project.Field)
}

func TestConsultation_Lead(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnConsultation)
	assert.Equal(t, flowConsult, h.userState(t).Flow)

	h.text("позвоните мне")
	assert.True(t, strings.HasPrefix(h.api.lastText(), "❌ "))
	assert.Empty(t, h.notifier.notes)

	h.text("8 999 123-45-67")
	n := h.notifier.last(t)
	assert.Equal(t, notify.KindLead, n.Kind)
	assert.Equal(t, "+7 (999) 123-45-67", n.Phone)
	assert.Equal(t, "Иван Петров", n.DisplayName)
	assert.Equal(t, msgLeadThanks, h.api.lastText())
	assert.Empty(t, h.userState(t).Flow)
}

func TestTZDocument_MissingFile(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnDownloadTZ)

	assert.Empty(t, h.api.documents())
	assert.Equal(t, msgTZFollowUp, h.api.lastText())
	assert.Equal(t, flowConsult, h.userState(t).Flow)
}

func TestExport(t *testing.T) {
	t.Run("non admin", func(t *testing.T) {
		h := newHarness(t, adminSet{}, fakeJournal{data: []byte("xlsx")})
		h.command("export")
		assert.Equal(t, "❌ "+msgNotAdmin, h.api.lastText())
		assert.Empty(t, h.api.documents())
	})

	t.Run("empty journal", func(t *testing.T) {
		h := newHarness(t, adminSet{testChatID: true}, fakeJournal{err: notify.ErrJournalEmpty})
		h.command("export")
		assert.Equal(t, msgJournalEmpty, h.api.lastText())
	})

	t.Run("journal error", func(t *testing.T) {
		h := newHarness(t, adminSet{testChatID: true}, fakeJournal{err: errors.New("disk")})
		h.command("export")
		assert.Equal(t, "❌ "+msgInternalError, h.api.lastText())
	})

	t.Run("sends workbook", func(t *testing.T) {
		h := newHarness(t, adminSet{testChatID: true}, fakeJournal{data: []byte("xlsx")})
		h.command("export")
		docs := h.api.documents()
		require.Len(t, docs, 1)
		assert.Equal(t, msgJournalCap, docs[0].Caption)
		file, ok := docs[0].File.(tgbotapi.FileBytes)
		require.True(t, ok)
		assert.Equal(t, "leads.xlsx", file.Name)
		assert.Equal(t, []byte("xlsx"), file.Bytes)
	})
}

func TestCommands(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.command("help")
	assert.Equal(t, helpText, h.api.lastText())

	h.command("unknown")
	assert.Equal(t, "❌ "+msgUnknownCommand, h.api.lastText())

	h.text(keyboards.BtnConfigurator)
	h.command("cancel")
	assert.Equal(t, msgCancelled, h.api.lastText())
	assert.Empty(t, h.userState(t).Flow)

	h.text("просто текст")
	assert.Equal(t, msgFallback, h.api.lastText())
}

func TestContacts(t *testing.T) {
	h := newHarness(t, nil, fakeJournal{})

	h.text(keyboards.BtnContacts)

	h.api.mu.Lock()
	var sawLocation bool
	for _, c := range h.api.sent {
		if loc, ok := c.(tgbotapi.LocationConfig); ok {
			sawLocation = true
			assert.InDelta(t, officeLatitude, loc.Latitude, 1e-9)
		}
	}
	h.api.mu.Unlock()
	assert.True(t, sawLocation)

	h.press(keyboards.Data(keyboards.ScopeMenu, keyboards.ActionCard))
	assert.Equal(t, msgFileUnavailable, h.api.lastText())

	h.press(keyboards.Data(keyboards.ScopeMenu, keyboards.ActionConsult))
	assert.Equal(t, flowConsult, h.userState(t).Flow)
}

package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxQueuedPerChat caps the updates waiting behind a running handler of one
// chat.
const maxQueuedPerChat = 32

// dispatcher runs updates of one chat strictly in arrival order while
// different chats proceed in parallel, at most workers at a time.
type dispatcher struct {
	handle func(ctx context.Context, update tgbotapi.Update)

	mu      sync.Mutex
	pending map[int64][]tgbotapi.Update // a key exists while the chat has a runner

	slots chan struct{}
	wg    sync.WaitGroup
}

func newDispatcher(workers int, handle func(ctx context.Context, update tgbotapi.Update)) *dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &dispatcher{
		handle:  handle,
		pending: make(map[int64][]tgbotapi.Update),
		slots:   make(chan struct{}, workers),
	}
}

// Dispatch queues the update behind earlier updates of the same chat and
// reports false when the chat's queue is full and the update was dropped.
// Handlers keep ctx values but not its cancellation, so updates accepted
// before shutdown still finish their storage calls.
func (d *dispatcher) Dispatch(ctx context.Context, chatID int64, update tgbotapi.Update) bool {
	d.mu.Lock()
	if queue, running := d.pending[chatID]; running {
		if len(queue) >= maxQueuedPerChat {
			d.mu.Unlock()
			return false
		}
		d.pending[chatID] = append(queue, update)
		d.mu.Unlock()
		return true
	}
	d.pending[chatID] = nil
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(context.WithoutCancel(ctx), chatID, update)
	return true
}

func (d *dispatcher) run(ctx context.Context, chatID int64, update tgbotapi.Update) {
	defer d.wg.Done()

	for {
		d.slots <- struct{}{}
		d.handle(ctx, update)
		<-d.slots

		d.mu.Lock()
		queue := d.pending[chatID]
		if len(queue) == 0 {
			delete(d.pending, chatID)
			d.mu.Unlock()
			return
		}
		update = queue[0]
		d.pending[chatID] = queue[1:]
		d.mu.Unlock()
	}
}

// Wait blocks until every queued update has been handled.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}

func chatIDOf(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository persists drafts. Get and ActiveForUser never return soft-deleted
// rows and report ErrNotFound when nothing matches.
type Repository interface {
	Create(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)
	ActiveForUser(ctx context.Context, userID int64) (*Draft, error)
	Update(ctx context.Context, d *Draft) error
	SetPhase(ctx context.Context, id uuid.UUID, phase Phase) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Locker is a cross-process mutex keyed by string.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Service runs the draft lifecycle. Creating a draft for a user happens in a
// per-user critical section so a user never holds two active drafts.
type Service struct {
	repo   Repository
	locker Locker
	logger *zap.Logger
	locks  userLocks
	now    func() time.Time
}

// NewService builds a Service. locker may be nil for a single process.
func NewService(repo Repository, locker Locker, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		logger: logger,
		locks:  userLocks{m: make(map[int64]*userLock)},
		now:    time.Now,
	}
}

// Begin returns the user's active draft, or creates one in the general_info
// phase. resumed is true when an existing draft was found.
func (s *Service) Begin(ctx context.Context, userID int64) (d *Draft, resumed bool, err error) {
	const operation = "draft.Service.Begin"

	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", operation, err)
	}
	defer unlock()

	active, err := s.repo.ActiveForUser(ctx, userID)
	switch {
	case err == nil:
		return active, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, fmt.Errorf("%s: lookup active draft: %w", operation, err)
	}

	d, err = s.create(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", operation, err)
	}
	return d, false, nil
}

// StartOver cancels the user's active draft, if any, and creates a new one.
func (s *Service) StartOver(ctx context.Context, userID int64) (*Draft, error) {
	const operation = "draft.Service.StartOver"

	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer unlock()

	active, err := s.repo.ActiveForUser(ctx, userID)
	switch {
	case err == nil:
		if err := s.repo.SetStatus(ctx, active.ID, StatusCancelled); err != nil {
			return nil, fmt.Errorf("%s: cancel draft %s: %w", operation, active.ID, err)
		}
		s.logger.Info("Draft cancelled by a new one",
			zap.Int64("user_id", userID),
			zap.String("draft_id", active.ID.String()))
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("%s: lookup active draft: %w", operation, err)
	}

	d, err := s.create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return d, nil
}

func (s *Service) create(ctx context.Context, userID int64) (*Draft, error) {
	d := New(userID, s.now())
	d.Phase = PhaseGeneralInfo
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	s.logger.Info("Draft created",
		zap.Int64("user_id", userID),
		zap.String("draft_id", d.ID.String()))
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("draft.Service.Get: %w", err)
	}
	return d, nil
}

// Resume resolves where the draft continues and stores the phase when the
// resolver moved it.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*Draft, Resolution, error) {
	const operation = "draft.Service.Resume"

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, Resolution{}, fmt.Errorf("%s: %w", operation, err)
	}

	res := Resolve(d)
	if res.PhaseChanged {
		if err := s.repo.SetPhase(ctx, id, res.Phase); err != nil {
			return nil, Resolution{}, fmt.Errorf("%s: store phase: %w", operation, err)
		}
		d.Phase = res.Phase
	}
	return d, res, nil
}

// Answer writes one field and moves the draft into that field's phase.
// An unknown field aborts without touching storage.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, field Field, value any) (*Draft, error) {
	const operation = "draft.Service.Answer"

	d, err := s.activeDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if err := d.Set(field, value); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if phase, ok := PhaseOf(field); ok {
		d.Phase = phase
	}
	d.Status = StatusInProgress
	d.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return d, nil
}

// EnterPhase stores the phase, used for review and the edit actions.
func (s *Service) EnterPhase(ctx context.Context, id uuid.UUID, phase Phase) (*Draft, error) {
	const operation = "draft.Service.EnterPhase"

	d, err := s.activeDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if err := s.repo.SetPhase(ctx, id, phase); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	d.Phase = phase
	return d, nil
}

// Complete marks the draft confirmed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Draft, error) {
	const operation = "draft.Service.Complete"

	d, err := s.activeDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	d.Status = StatusCompleted
	d.Phase = PhaseCompleted
	d.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return d, nil
}

// activeDraft loads the draft and reports cancelled or completed ones as
// not found.
func (s *Service) activeDraft(ctx context.Context, id uuid.UUID) (*Draft, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.Status.Active() {
		return nil, fmt.Errorf("draft %s is %s: %w", id, d.Status, ErrNotFound)
	}
	return d, nil
}

// Delete soft-deletes the draft; it disappears from every lookup.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("draft.Service.Delete: %w", err)
	}
	return nil
}

func (s *Service) lockUser(ctx context.Context, userID int64) (func(), error) {
	unlockLocal := s.locks.lock(userID)
	if s.locker == nil {
		return unlockLocal, nil
	}

	unlockRemote, err := s.locker.Lock(ctx, fmt.Sprintf("draft-lock:%d", userID))
	if err != nil {
		unlockLocal()
		return nil, fmt.Errorf("lock user %d: %w", userID, err)
	}
	return func() {
		unlockRemote()
		unlockLocal()
	}, nil
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks is a set of per-user mutexes that are dropped once unused.
type userLocks struct {
	mu sync.Mutex
	m  map[int64]*userLock
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}

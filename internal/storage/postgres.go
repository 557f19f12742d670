package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"alpools-bot/internal/config"
	"alpools-bot/internal/draft"
)

const uniqueViolation = "23505"

// Connect opens the Postgres pool, retrying until the server answers.
func Connect(ctx context.Context, cfg config.Database, logger *zap.Logger) (*sqlx.DB, error) {
	const operation = "storage.Connect"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := conn.PingContext(ctx); err != nil {
				_ = conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// DraftRepository stores project drafts in the project_drafts table.
type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

var _ draft.Repository = (*DraftRepository)(nil)

const draftColumns = `id, user_id, status, current_step, project_type,
	full_name, phone, email, address, length, width, average_depth,
	created_at, updated_at, is_deleted`

func (r *DraftRepository) Create(ctx context.Context, d *draft.Draft) error {
	const query = `
		INSERT INTO project_drafts (` + draftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.Status, d.Phase, d.ProjectType,
		d.FullName, d.Phone, d.Email, d.Address,
		d.Length, d.Width, d.AverageDepth,
		d.CreatedAt, d.UpdatedAt, d.IsDeleted,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("storage.DraftRepository.Create: user %d: %w", d.UserID, draft.ErrActiveDraftExists)
		}
		return fmt.Errorf("storage.DraftRepository.Create: %w", err)
	}
	return nil
}

func (r *DraftRepository) Get(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	const query = `SELECT ` + draftColumns + ` FROM project_drafts WHERE id = $1 AND NOT is_deleted`

	var d draft.Draft
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", id, draft.ErrNotFound)
		}
		return nil, fmt.Errorf("storage.DraftRepository.Get: %w", err)
	}
	return &d, nil
}

func (r *DraftRepository) ActiveForUser(ctx context.Context, userID int64) (*draft.Draft, error) {
	const query = `
		SELECT ` + draftColumns + ` FROM project_drafts
		WHERE user_id = $1 AND status IN ('draft', 'in_progress') AND NOT is_deleted
		ORDER BY updated_at DESC
		LIMIT 1`

	var d draft.Draft
	if err := r.db.GetContext(ctx, &d, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active draft of user %d: %w", userID, draft.ErrNotFound)
		}
		return nil, fmt.Errorf("storage.DraftRepository.ActiveForUser: %w", err)
	}
	return &d, nil
}

func (r *DraftRepository) Update(ctx context.Context, d *draft.Draft) error {
	const query = `
		UPDATE project_drafts SET
			status = $2, current_step = $3, project_type = $4,
			full_name = $5, phone = $6, email = $7, address = $8,
			length = $9, width = $10, average_depth = $11,
			updated_at = $12
		WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query,
		d.ID, d.Status, d.Phase, d.ProjectType,
		d.FullName, d.Phone, d.Email, d.Address,
		d.Length, d.Width, d.AverageDepth,
		d.UpdatedAt,
	)
	return r.checkAffected("Update", d.ID, res, err)
}

func (r *DraftRepository) SetPhase(ctx context.Context, id uuid.UUID, phase draft.Phase) error {
	const query = `UPDATE project_drafts SET current_step = $2, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query, id, phase)
	return r.checkAffected("SetPhase", id, res, err)
}

func (r *DraftRepository) SetStatus(ctx context.Context, id uuid.UUID, status draft.Status) error {
	const query = `UPDATE project_drafts SET status = $2, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query, id, status)
	return r.checkAffected("SetStatus", id, res, err)
}

func (r *DraftRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE project_drafts SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query, id)
	return r.checkAffected("SoftDelete", id, res, err)
}

func (r *DraftRepository) checkAffected(op string, id uuid.UUID, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("storage.DraftRepository.%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.DraftRepository.%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("draft %s: %w", id, draft.ErrNotFound)
	}
	return nil
}

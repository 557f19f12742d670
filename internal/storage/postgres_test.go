package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpools-bot/internal/draft"
)

var draftColumnNames = []string{
	"id", "user_id", "status", "current_step", "project_type",
	"full_name", "phone", "email", "address", "length", "width", "average_depth",
	"created_at", "updated_at", "is_deleted",
}

func newMockRepo(t *testing.T) (*DraftRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewDraftRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestDraftRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	d := draft.New(42, time.Now())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO project_drafts")).
		WithArgs(d.ID, int64(42), "draft", "start", nil,
			nil, nil, nil, nil, nil, nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), d))
}

func TestDraftRepository_CreateSecondActive(t *testing.T) {
	repo, mock := newMockRepo(t)
	d := draft.New(42, time.Now())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO project_drafts")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "project_drafts_one_active_per_user"})

	err := repo.Create(context.Background(), d)
	assert.ErrorIs(t, err, draft.ErrActiveDraftExists)
}

func TestDraftRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows(draftColumnNames).
		AddRow(id.String(), 7, "in_progress", "geometry", "pool",
			"Иван", "+79990000000", "ivan@example.com", "Казань", 10.0, nil, nil,
			now, now, false)

	mock.ExpectQuery(regexp.QuoteMeta("FROM project_drafts WHERE id = $1 AND NOT is_deleted")).
		WithArgs(id).
		WillReturnRows(rows)

	d, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, draft.StatusInProgress, d.Status)
	assert.Equal(t, draft.PhaseGeometry, d.Phase)
	require.NotNil(t, d.ProjectType)
	assert.Equal(t, draft.ProjectPool, *d.ProjectType)
	assert.Equal(t, "Казань", *d.Address)
	assert.Equal(t, 10.0, *d.Length)
	assert.Nil(t, d.Width)

	res := draft.Resolve(d)
	assert.Equal(t, draft.FieldWidth, res.Field)
}

func TestDraftRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM project_drafts WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestDraftRepository_ActiveForUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND status IN ('draft', 'in_progress') AND NOT is_deleted")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(draftColumnNames))

	_, err := repo.ActiveForUser(context.Background(), 5)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestDraftRepository_Update(t *testing.T) {
	repo, mock := newMockRepo(t)
	d := draft.New(1, time.Now())
	require.NoError(t, d.Set(draft.FieldFullName, "Иван"))
	require.NoError(t, d.Set(draft.FieldWidth, 4.0))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE project_drafts SET")).
		WithArgs(d.ID, "draft", "start", nil,
			"Иван", nil, nil, nil,
			nil, 4.0, nil,
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), d))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE project_drafts SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), d), draft.ErrNotFound)
}

func TestDraftRepository_SetPhaseStatusDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET current_step = $2")).
		WithArgs(id, "review").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET status = $2")).
		WithArgs(id, "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET is_deleted = TRUE")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetPhase(ctx, id, draft.PhaseReview))
	require.NoError(t, repo.SetStatus(ctx, id, draft.StatusCancelled))
	assert.ErrorIs(t, repo.SoftDelete(ctx, id), draft.ErrNotFound)
}

func TestEmbeddedMigrations(t *testing.T) {
	require.NoError(t, setupGoose())

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	index, err := migrationsFS.ReadFile("migrations/00002_one_active_draft_per_user.sql")
	require.NoError(t, err)
	assert.Contains(t, string(index), "WHERE status IN ('draft', 'in_progress') AND NOT is_deleted")
}

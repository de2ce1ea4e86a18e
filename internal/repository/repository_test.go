package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := repo.CreateUser(context.Background(), &model.User{UserID: "u1", Email: "a@b.c"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJobNotFound(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE job_id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "job not found", apperr.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJobReferenced(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs")).
		WithArgs("j1").
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolation})

	err := repo.DeleteJob(context.Background(), "j1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestIncrementApplicationCountIsSingleStatement(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("SET application_count = GREATEST(application_count + $2, 0)")).
		WithArgs("j1", -1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.IncrementApplicationCount(context.Background(), "j1", -1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementViewCountBatch(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("view_count = view_count + 1 WHERE job_id = ANY($1)")).
		WithArgs([]string{"j1", "j2"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, repo.IncrementViewCount(context.Background(), "j1", "j2"))
	require.NoError(t, repo.IncrementViewCount(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetApplicationStatusAppendsInOneUpdate(t *testing.T) {
	mock, repo := newMock(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := model.StatusChangedEntry(model.StatusReviewed, "r1", "", at)

	mock.ExpectQuery(regexp.QuoteMeta("timeline = timeline || $3::jsonb, notes = notes || $4::jsonb")).
		WithArgs("a1", model.StatusReviewed, []model.TimelineEntry{entry}, []model.Note{}, at).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.SetApplicationStatus(context.Background(), "a1", model.StatusReviewed, entry, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReadMarkerAlreadyRead(t *testing.T) {
	mock, repo := newMock(t)
	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("SET read_by = read_by ||")).
		WithArgs("m1", "u2", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("m1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, repo.AddReadMarker(context.Background(), "m1", "u2", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReadMarkerMissingMessage(t *testing.T) {
	mock, repo := newMock(t)
	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("SET read_by = read_by ||")).
		WithArgs("nope", "u2", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.AddReadMarker(context.Background(), "nope", "u2", at)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCountUnread(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM chat_messages")).
		WithArgs("u1", "").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountUnread(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJobWhere(t *testing.T) {
	minSalary := 50000
	w := jobWhere(model.JobFilter{
		Status:    model.JobStatusActive,
		Search:    "go & rust",
		Location:  "berlin",
		MinSalary: &minSalary,
	})
	assert.Equal(t,
		" WHERE status = $1 AND search @@ to_tsquery('english', $2) AND "+
			"(location ->> 'city' ILIKE '%' || $3 || '%' OR location ->> 'state' ILIKE '%' || $3 || '%' OR location ->> 'country' ILIKE '%' || $3 || '%' OR location ->> 'type' = $3)"+
			" AND (salary ->> 'min')::int >= $4",
		w.String())
	assert.Equal(t, []any{model.JobStatusActive, "'go' | 'rust'", "berlin", 50000}, w.args)
	assert.Equal(t, "$5", w.next())
}

func TestQuoteTermsStripsOperators(t *testing.T) {
	assert.Equal(t, []string{"'go'", "'c'"}, quoteTerms([]string{"go:*", "(c)", "&"}))
	assert.Equal(t, []string{"''"}, quoteTerms(nil))
}

package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NotFound("job"), http.StatusNotFound},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"conflict", Conflict("dup"), http.StatusBadRequest},
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"invalid state", InvalidState("closed"), http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("token"), http.StatusUnauthorized},
		{"wrapped", errors.Wrap(NotFound("application"), "load application"), http.StatusNotFound},
		{"fmt wrapped", fmt.Errorf("outer: %w", Forbidden("x")), http.StatusForbidden},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, KindOf(tc.err).Status)
		})
	}
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("pq: connection refused")))
	assert.Equal(t, "job not found", Message(NotFound("job")))
	assert.Equal(t, "job not found", Message(errors.Wrap(NotFound("job"), "submit application")))
}

func TestKindsMatchStandardErrorsIs(t *testing.T) {
	err := errors.Wrap(Conflict("already applied to this job"), "submit application")

	assert.True(t, stderrors.Is(err, ErrConflict))
	assert.False(t, stderrors.Is(err, ErrNotFound))
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, fmt.Errorf("load: %w", NotFound("room")), ErrNotFound)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "already applied to this job", Message(err))
	assert.Equal(t, "already applied to this job", Conflict("already applied to this job").Error())
}

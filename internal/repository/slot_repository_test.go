package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205}, true},
		{"wrapped deadlock", fmt.Errorf("commit: %w", &mysql.MySQLError{Number: 1213}), true},
		{"duplicate key", &mysql.MySQLError{Number: 1062}, false},
		{"slot full", ErrSlotFull, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(tc.err))
		})
	}
}

func TestPromoteAndBookRetriesUntilExhausted(t *testing.T) {
	r := NewSlotRepo(nil)
	calls := 0
	r.attempt = func(ctx context.Context, req BookRequest) (BookResult, error) {
		calls++
		return BookResult{}, &mysql.MySQLError{Number: 1213}
	}

	_, err := r.PromoteAndBook(context.Background(), BookRequest{TemplateID: 1, Date: "2024-01-09"})

	assert.ErrorIs(t, err, ErrWriteConflict)
	assert.Equal(t, maxBookAttempts, calls, "every attempt must be spent before giving up")
}

func TestPromoteAndBookRecoversFromTransientDeadlock(t *testing.T) {
	r := NewSlotRepo(nil)
	calls := 0
	r.attempt = func(ctx context.Context, req BookRequest) (BookResult, error) {
		calls++
		if calls == 1 {
			return BookResult{}, &mysql.MySQLError{Number: 1205}
		}
		return BookResult{BookedCount: 1, Capacity: 5}, nil
	}

	res, err := r.PromoteAndBook(context.Background(), BookRequest{TemplateID: 1, Date: "2024-01-09"})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint32(1), res.BookedCount)
}

func TestPromoteAndBookDoesNotRetryBusinessErrors(t *testing.T) {
	for _, sentinel := range []error{ErrSlotFull, ErrSlotCancelled, ErrTemplateInactive, ErrNotAnOccurrence} {
		r := NewSlotRepo(nil)
		calls := 0
		r.attempt = func(ctx context.Context, req BookRequest) (BookResult, error) {
			calls++
			return BookResult{}, sentinel
		}

		_, err := r.PromoteAndBook(context.Background(), BookRequest{TemplateID: 1, Date: "2024-01-09"})

		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls, "%v must surface on the first attempt", sentinel)
	}
}

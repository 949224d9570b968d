package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheongSzesuen/eventsWeb/internal/domain"
	"github.com/CheongSzesuen/eventsWeb/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewInMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSubmission(id string) *domain.Submission {
	now := time.Now().UTC()
	return &domain.Submission{
		ID: id,
		Event: domain.Event{
			Type:     domain.EventTypeRandom,
			Question: "放学路上捡到十块钱",
			Choices:  map[string]string{"1": "交给警察"},
			Results:  map[string]domain.ResultValue{"1": {Text: "好市民"}},
		},
		Contributor: "张三",
		Status:      domain.SubmissionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAndGetSubmission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := testSubmission("sub-abc123")
	require.NoError(t, s.CreateSubmission(ctx, sub))

	got, err := s.GetSubmission(ctx, "sub-abc123")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, sub.Event.Question, got.Event.Question)
	assert.Equal(t, sub.Contributor, got.Contributor)
	assert.Equal(t, domain.SubmissionStatusPending, got.Status)
}

func TestCreateSubmission_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := testSubmission("sub-dup")
	require.NoError(t, s.CreateSubmission(ctx, sub))
	assert.Error(t, s.CreateSubmission(ctx, sub))
}

func TestGetSubmission_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSubmission(context.Background(), "sub-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateSubmissionStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := testSubmission("sub-upd")
	require.NoError(t, s.CreateSubmission(ctx, sub))

	updated, err := s.UpdateSubmissionStatus(ctx, "sub-upd", domain.SubmissionStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStatusApproved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(sub.CreatedAt) || updated.UpdatedAt.Equal(sub.CreatedAt))

	// The index must follow the status move.
	pending, err := s.CountSubmissions(ctx, domain.SubmissionStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	approved, err := s.CountSubmissions(ctx, domain.SubmissionStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, 1, approved)
}

func TestUpdateSubmissionStatus_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateSubmissionStatus(context.Background(), "sub-missing", domain.SubmissionStatusRejected)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListSubmissions_ByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		sub := testSubmission(fmt.Sprintf("sub-p%d", i))
		require.NoError(t, s.CreateSubmission(ctx, sub))
	}
	rejected := testSubmission("sub-r0")
	rejected.Status = domain.SubmissionStatusRejected
	require.NoError(t, s.CreateSubmission(ctx, rejected))

	result, err := s.ListSubmissions(ctx, domain.SubmissionStatusPending, PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.False(t, result.HasMore)

	result, err = s.ListSubmissions(ctx, domain.SubmissionStatusRejected, PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "sub-r0", result.Items[0].ID)
}

func TestListSubmissions_All(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	statuses := []domain.SubmissionStatus{
		domain.SubmissionStatusPending,
		domain.SubmissionStatusApproved,
		domain.SubmissionStatusRejected,
	}
	for i, status := range statuses {
		sub := testSubmission(fmt.Sprintf("sub-a%d", i))
		sub.Status = status
		require.NoError(t, s.CreateSubmission(ctx, sub))
	}

	result, err := s.ListSubmissions(ctx, "", PaginationParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.False(t, result.HasMore)
}

func TestListSubmissions_CursorPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := range 5 {
		sub := testSubmission(fmt.Sprintf("sub-c%d", i))
		require.NoError(t, s.CreateSubmission(ctx, sub))
	}

	first, err := s.ListSubmissions(ctx, domain.SubmissionStatusPending, PaginationParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := s.ListSubmissions(ctx, domain.SubmissionStatusPending, PaginationParams{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	require.True(t, second.HasMore)

	third, err := s.ListSubmissions(ctx, domain.SubmissionStatusPending, PaginationParams{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.False(t, third.HasMore)

	seen := map[string]bool{}
	for _, page := range [][]*domain.Submission{first.Items, second.Items, third.Items} {
		for _, sub := range page {
			assert.False(t, seen[sub.ID], "submission %s returned twice", sub.ID)
			seen[sub.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestListSubmissions_InvalidCursor(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ListSubmissions(context.Background(), "", PaginationParams{Limit: 10, Cursor: "not base64!"})
	assert.Error(t, err)
}

func TestCountSubmissions_Empty(t *testing.T) {
	s := newTestStore(t)

	count, err := s.CountSubmissions(context.Background(), domain.SubmissionStatusPending)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPaginationParams_Validate(t *testing.T) {
	p := PaginationParams{}
	p.Validate()
	assert.Equal(t, 50, p.Limit)

	p = PaginationParams{Limit: 9999}
	p.Validate()
	assert.Equal(t, 500, p.Limit)

	p = PaginationParams{Limit: 7}
	p.Validate()
	assert.Equal(t, 7, p.Limit)
}

package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/openverse-dev/weekly-digest/internal/domain"
	"github.com/openverse-dev/weekly-digest/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchMergedPRs(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error) {
	args := m.Called(ctx, org, repo, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityItem), args.Error(1)
}

func (m *mockFetcher) FetchClosedIssues(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error) {
	args := m.Called(ctx, org, repo, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityItem), args.Error(1)
}

func (m *mockFetcher) FetchReviewQueue(ctx context.Context, org, repo string) (gateway.ReviewQueue, error) {
	args := m.Called(ctx, org, repo)
	return args.Get(0).(gateway.ReviewQueue), args.Error(1)
}

func item(repo string, kind domain.ActivityKind, number int) domain.ActivityItem {
	return domain.ActivityItem{Repo: repo, Kind: kind, Number: number, Title: "t", URL: "https://x"}
}

func TestDigest_Collect(t *testing.T) {
	window := domain.NewWindow(time.Date(2022, 8, 19, 0, 0, 0, 0, time.UTC))
	logger := log.New(io.Discard, "", 0)

	t.Run("keeps repo input order and drops inactive repos", func(t *testing.T) {
		fetcher := new(mockFetcher)
		// repo-b has no activity at all and must be dropped; repo-a and
		// repo-c keep their configured order.
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-a", window).
			Return([]domain.ActivityItem{item("repo-a", domain.MergedPR, 1)}, nil)
		fetcher.On("FetchClosedIssues", mock.Anything, "org", "repo-a", window).
			Return([]domain.ActivityItem{}, nil)
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-b", window).
			Return([]domain.ActivityItem{}, nil)
		fetcher.On("FetchClosedIssues", mock.Anything, "org", "repo-b", window).
			Return([]domain.ActivityItem{}, nil)
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-c", window).
			Return([]domain.ActivityItem{}, nil)
		fetcher.On("FetchClosedIssues", mock.Anything, "org", "repo-c", window).
			Return([]domain.ActivityItem{item("repo-c", domain.ClosedIssue, 7)}, nil)

		digest := NewDigest(fetcher, logger)

		activities, err := digest.Collect(context.Background(), "org", []string{"repo-a", "repo-b", "repo-c"}, window)

		assert.NoError(t, err)
		assert.Equal(t, []domain.RepoActivity{
			{Repo: "repo-a", MergedPRs: []domain.ActivityItem{item("repo-a", domain.MergedPR, 1)}, ClosedIssues: []domain.ActivityItem{}},
			{Repo: "repo-c", MergedPRs: []domain.ActivityItem{}, ClosedIssues: []domain.ActivityItem{item("repo-c", domain.ClosedIssue, 7)}},
		}, activities)
		fetcher.AssertExpectations(t)
	})

	t.Run("no active repos yields an empty collection", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-a", window).
			Return([]domain.ActivityItem{}, nil)
		fetcher.On("FetchClosedIssues", mock.Anything, "org", "repo-a", window).
			Return([]domain.ActivityItem{}, nil)

		digest := NewDigest(fetcher, logger)

		activities, err := digest.Collect(context.Background(), "org", []string{"repo-a"}, window)

		assert.NoError(t, err)
		assert.Empty(t, activities)
		fetcher.AssertExpectations(t)
	})

	t.Run("one failed query aborts the whole collection", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetchErr := errors.New("github api error")
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-a", window).
			Return(nil, fetchErr)
		// The sibling repo's fetches may or may not run before the
		// group is cancelled.
		fetcher.On("FetchMergedPRs", mock.Anything, "org", "repo-b", window).
			Return([]domain.ActivityItem{}, nil).Maybe()
		fetcher.On("FetchClosedIssues", mock.Anything, "org", "repo-b", window).
			Return([]domain.ActivityItem{}, nil).Maybe()

		digest := NewDigest(fetcher, logger)

		activities, err := digest.Collect(context.Background(), "org", []string{"repo-a", "repo-b"}, window)

		assert.ErrorIs(t, err, fetchErr)
		assert.Nil(t, activities)
	})
}

func TestBuildPost(t *testing.T) {
	window := domain.NewWindow(time.Date(2022, 8, 19, 0, 0, 0, 0, time.UTC))

	post := BuildPost(window, "<h2>report</h2>")

	assert.Equal(t, "A week in Openverse: 2022-08-12 - 2022-08-19", post.Title)
	assert.Equal(t, "last-week-openverse-2022-08-12-2022-08-19", post.Slug)
	assert.Equal(t, "Closed issues and merged pull requests in Openverse repositories from 2022-08-12 to 2022-08-19.", post.Excerpt)
	assert.Equal(t, "<h2>report</h2>", post.Content)
	assert.Equal(t, "publish", post.Status)
	assert.Equal(t, []int{406}, post.Tags)
}

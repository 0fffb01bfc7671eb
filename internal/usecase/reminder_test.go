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

	"github.com/openverse-dev/weekly-digest/internal/gateway"
)

func TestReminder_Summarize(t *testing.T) {
	now := time.Date(2022, 8, 19, 0, 0, 0, 0, time.UTC)
	logger := log.New(io.Discard, "", 0)

	t.Run("computes counts and median age, drops quiet repos", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("FetchReviewQueue", mock.Anything, "org", "repo-a").
			Return(gateway.ReviewQueue{Repo: "repo-a", OpenedAt: []time.Time{
				now.Add(-2 * 24 * time.Hour),
				now.Add(-4 * 24 * time.Hour),
				now.Add(-6 * 24 * time.Hour),
			}}, nil)
		fetcher.On("FetchReviewQueue", mock.Anything, "org", "repo-b").
			Return(gateway.ReviewQueue{Repo: "repo-b"}, nil)

		reminder := NewReminder(fetcher, logger)

		backlogs, err := reminder.Summarize(context.Background(), "org", []string{"repo-a", "repo-b"}, now)

		assert.NoError(t, err)
		assert.Equal(t, []RepoBacklog{
			{Repo: "repo-a", Pending: 3, MedianAgeDays: 4},
		}, backlogs)
		fetcher.AssertExpectations(t)
	})

	t.Run("a failed queue query aborts the summary", func(t *testing.T) {
		fetcher := new(mockFetcher)
		queueErr := errors.New("github api error")
		fetcher.On("FetchReviewQueue", mock.Anything, "org", "repo-a").
			Return(gateway.ReviewQueue{}, queueErr)
		fetcher.On("FetchReviewQueue", mock.Anything, "org", "repo-b").
			Return(gateway.ReviewQueue{Repo: "repo-b"}, nil).Maybe()

		reminder := NewReminder(fetcher, logger)

		backlogs, err := reminder.Summarize(context.Background(), "org", []string{"repo-a", "repo-b"}, now)

		assert.ErrorIs(t, err, queueErr)
		assert.Nil(t, backlogs)
	})
}

func TestFormatMessage(t *testing.T) {
	t.Run("empty backlog posts an all-clear", func(t *testing.T) {
		msg := FormatMessage("WordPress", nil)

		assert.Contains(t, msg, "All caught up!")
		assert.Contains(t, msg, "WordPress")
	})

	t.Run("lists each repo with count and median age", func(t *testing.T) {
		msg := FormatMessage("WordPress", []RepoBacklog{
			{Repo: "openverse-api", Pending: 3, MedianAgeDays: 4},
			{Repo: "openverse-frontend", Pending: 1, MedianAgeDays: 0.5},
		})

		assert.Contains(t, msg, "Pull requests in WordPress waiting for review:")
		assert.Contains(t, msg, "openverse-api: 3 open (median age 4.0 days)")
		assert.Contains(t, msg, "openverse-frontend: 1 open (median age 0.5 days)")
	})
}

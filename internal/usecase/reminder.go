package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/openverse-dev/weekly-digest/internal/gateway"
)

// Reminder is the use case nudging contributors about open review backlogs.
type Reminder struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewReminder creates a new Reminder instance.
func NewReminder(fetcher gateway.Fetcher, logger *log.Logger) *Reminder {
	return &Reminder{
		fetcher: fetcher,
		logger:  logger,
	}
}

// RepoBacklog summarizes one repository's open review queue.
type RepoBacklog struct {
	Repo          string
	Pending       int
	MedianAgeDays float64
}

// Summarize queries every repository's review queue and keeps the input
// repo order. Repositories with nothing waiting for review are dropped.
func (r *Reminder) Summarize(ctx context.Context, org string, repos []string, now time.Time) ([]RepoBacklog, error) {
	r.logger.Printf("Usecase: Summarizing review queues for %d repositories...", len(repos))

	results := make([]RepoBacklog, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			queue, err := r.fetcher.FetchReviewQueue(egCtx, org, repo)
			if err != nil {
				return err
			}
			if len(queue.OpenedAt) == 0 {
				return nil
			}
			ages := make([]float64, len(queue.OpenedAt))
			for j, opened := range queue.OpenedAt {
				ages[j] = now.Sub(opened).Hours() / 24
			}
			median, err := stats.Median(ages)
			if err != nil {
				return fmt.Errorf("failed to compute median age for %s: %w", repo, err)
			}
			results[i] = RepoBacklog{Repo: repo, Pending: len(queue.OpenedAt), MedianAgeDays: median}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	backlogs := make([]RepoBacklog, 0, len(results))
	for _, b := range results {
		if b.Pending == 0 {
			continue
		}
		backlogs = append(backlogs, b)
	}
	r.logger.Printf("Usecase: %d of %d repositories have pending reviews.", len(backlogs), len(repos))
	return backlogs, nil
}

// FormatMessage renders the chat message for a backlog summary. An
// empty backlog produces an all-clear message rather than silence so
// the channel can tell the reminder ran.
func FormatMessage(org string, backlogs []RepoBacklog) string {
	if len(backlogs) == 0 {
		return fmt.Sprintf("All caught up! No pull requests in %s are waiting for review. :tada:", org)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Pull requests in %s waiting for review:\n", org)
	for _, bl := range backlogs {
		fmt.Fprintf(&b, "• %s: %d open (median age %.1f days)\n", bl.Repo, bl.Pending, bl.MedianAgeDays)
	}
	return strings.TrimRight(b.String(), "\n")
}
